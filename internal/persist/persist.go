// Package persist maps the client state onto a durable key-value store.
package persist

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/RichardoC/athena/internal/db"
	"github.com/RichardoC/athena/internal/models"
)

// Storage keys. They must not change between releases.
const (
	StateKey = "athena_ai_v1"
	ModeKey  = "athena_mode"
	ThemeKey = "athena_theme"
)

type payload struct {
	Convos   []models.Conversation `json:"convos"`
	ActiveID string                `json:"activeId"`
}

// Store reads and writes models.State. Failures are logged, never returned.
type Store struct {
	kv     db.KV
	logger *zap.Logger
	newID  func() string
	now    func() time.Time
}

func New(kv db.KV, newID func() string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{kv: kv, logger: logger, newID: newID, now: time.Now}
}

// Save writes all three keys. A failed key does not stop the others.
func (s *Store) Save(state models.State) {
	if err := s.save(state); err != nil {
		s.logger.Warn("Failed to save state", zap.Error(err))
	}
}

func (s *Store) save(state models.State) error {
	convos := state.Conversations
	if convos == nil {
		convos = []models.Conversation{}
	}
	raw, err := json.Marshal(payload{Convos: convos, ActiveID: state.ActiveID})
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	return multierr.Combine(
		s.kv.Set(StateKey, string(raw)),
		s.kv.Set(ModeKey, string(state.Mode)),
		s.kv.Set(ThemeKey, string(state.Theme)),
	)
}

// Load returns the persisted state or the seed state. It never fails.
func (s *Store) Load() models.State {
	state := models.State{
		Mode:  models.ParseMode(s.read(ModeKey)),
		Theme: models.ParseTheme(s.read(ThemeKey)),
	}

	raw := s.read(StateKey)
	if raw == "" {
		s.seed(&state)
		return state
	}

	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		s.logger.Warn("Failed to load state, seeding new conversation", zap.Error(err))
		s.seed(&state)
		return state
	}
	if len(p.Convos) == 0 {
		s.seed(&state)
		return state
	}

	state.Conversations = p.Convos
	state.ActiveID = p.ActiveID
	if state.Find(state.ActiveID) < 0 {
		state.ActiveID = state.Conversations[0].ID
	}
	return state
}

// Clear drops the stored conversation list. Mode and theme survive.
func (s *Store) Clear() {
	if err := s.kv.Delete(StateKey); err != nil {
		s.logger.Warn("Failed to clear stored conversations", zap.Error(err))
	}
}

// Seed returns a fresh Welcome conversation.
func (s *Store) Seed() models.Conversation {
	return SeedConversation(s.newID, s.now())
}

func (s *Store) seed(state *models.State) {
	first := s.Seed()
	state.Conversations = []models.Conversation{first}
	state.ActiveID = first.ID
}

func (s *Store) read(key string) string {
	v, ok, err := s.kv.Get(key)
	if err != nil {
		s.logger.Warn("Failed to read stored value", zap.String("key", key), zap.Error(err))
		return ""
	}
	if !ok {
		return ""
	}
	return v
}

// SeedConversation builds the Welcome conversation with its greeting.
func SeedConversation(newID func() string, now time.Time) models.Conversation {
	return models.Conversation{
		ID:    newID(),
		Title: models.WelcomeTitle,
		Messages: []models.Message{{
			ID:      newID(),
			Role:    models.RoleAssistant,
			Content: models.Greeting,
			Time:    now.Format(models.TimeLayout),
		}},
	}
}
