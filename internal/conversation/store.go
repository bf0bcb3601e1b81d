// Package conversation holds the client's conversations and the active pointer.
package conversation

import (
	"sync"
	"time"

	"github.com/RichardoC/athena/internal/models"
)

// Persister receives the full state after every mutation.
type Persister interface {
	Save(state models.State)
	Clear()
	Seed() models.Conversation
}

// Store is the single owner of models.State. Methods are safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	state     models.State
	persist   Persister
	newID     func() string
	now       func() time.Time
	listeners []func()
}

func NewStore(initial models.State, persist Persister, newID func() string) *Store {
	return &Store{
		state:   initial.Clone(),
		persist: persist,
		newID:   newID,
		now:     time.Now,
	}
}

// Subscribe registers fn to run after each mutation, outside the lock.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) Snapshot() models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Store) Mode() models.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Mode
}

// NewConversation inserts a conversation at the head of the list and activates it.
func (s *Store) NewConversation(titleHint string) models.Conversation {
	s.mu.Lock()
	c := s.newConversationLocked(titleHint)
	s.commitLocked()
	return c
}

func (s *Store) newConversationLocked(titleHint string) models.Conversation {
	title := titleHint
	if title == "" {
		title = models.PlaceholderTitle
	}
	c := models.Conversation{ID: s.newID(), Title: title, Messages: []models.Message{}}
	s.state.Conversations = append([]models.Conversation{c}, s.state.Conversations...)
	s.state.ActiveID = c.ID
	return c
}

// SetActive is a no-op for ids that do not resolve.
func (s *Store) SetActive(id string) bool {
	s.mu.Lock()
	if s.state.Find(id) < 0 {
		s.mu.Unlock()
		return false
	}
	s.state.ActiveID = id
	s.commitLocked()
	return true
}

// Cycle activates the conversation delta places away from the active one, wrapping.
func (s *Store) Cycle(delta int) bool {
	return s.SetActive(s.neighbour(delta))
}

func (s *Store) neighbour(delta int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.state.Conversations)
	if n == 0 {
		return ""
	}
	i := s.state.Find(s.state.ActiveID)
	if i < 0 {
		i = 0
	} else {
		i = ((i+delta)%n + n) % n
	}
	return s.state.Conversations[i].ID
}

// AddMessage appends to the active conversation, creating one if none is active.
func (s *Store) AddMessage(role models.Role, content string) models.Message {
	s.mu.Lock()
	c := s.state.Active()
	if c == nil {
		s.newConversationLocked("")
		c = s.state.Active()
	}
	msg := models.Message{
		ID:      s.newID(),
		Role:    role,
		Content: content,
		Time:    s.now().Format(models.TimeLayout),
	}
	c.Messages = append(c.Messages, msg)
	if c.HasPlaceholderTitle() {
		c.Title = models.DeriveTitle(content)
	}
	s.commitLocked()
	return msg
}

// ClearAll drops every conversation and reseeds the Welcome one.
func (s *Store) ClearAll() {
	s.mu.Lock()
	s.state.Conversations = []models.Conversation{}
	s.state.ActiveID = ""
	s.persist.Clear()
	seed := s.persist.Seed()
	s.state.Conversations = append(s.state.Conversations, seed)
	s.state.ActiveID = seed.ID
	s.commitLocked()
}

func (s *Store) SetMode(m models.Mode) {
	s.mu.Lock()
	s.state.Mode = models.ParseMode(string(m))
	s.commitLocked()
}

func (s *Store) ToggleMode() models.Mode {
	s.mu.Lock()
	s.state.Mode = s.state.Mode.Toggle()
	m := s.state.Mode
	s.commitLocked()
	return m
}

func (s *Store) SetTheme(t models.Theme) {
	s.mu.Lock()
	s.state.Theme = models.ParseTheme(string(t))
	s.commitLocked()
}

func (s *Store) ToggleTheme() models.Theme {
	s.mu.Lock()
	s.state.Theme = s.state.Theme.Toggle()
	t := s.state.Theme
	s.commitLocked()
	return t
}

// commitLocked persists, releases the lock and notifies listeners.
func (s *Store) commitLocked() {
	snapshot := s.state.Clone()
	listeners := append([]func(){}, s.listeners...)
	s.persist.Save(snapshot)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}
