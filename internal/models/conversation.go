package models

import "encoding/json"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"

	// legacyAssistant is how older clients stored assistant turns.
	legacyAssistant = "Athena"
)

// UnmarshalJSON accepts the legacy "Athena" role. Any other unknown role
// decodes as assistant so the role set stays closed.
func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if role := Role(s); role.Valid() {
		*r = role
		return nil
	}
	*r = RoleAssistant
	return nil
}

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

type Mode string

const (
	ModeMean Mode = "mean"
	ModeNice Mode = "nice"
)

// ParseMode coerces anything but "nice" to mean.
func ParseMode(s string) Mode {
	if Mode(s) == ModeNice {
		return ModeNice
	}
	return ModeMean
}

func (m Mode) Toggle() Mode {
	if m == ModeMean {
		return ModeNice
	}
	return ModeMean
}

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme coerces anything but "light" to dark.
func ParseTheme(s string) Theme {
	if Theme(s) == ThemeLight {
		return ThemeLight
	}
	return ThemeDark
}

func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

const (
	PlaceholderTitle = "Untitled"
	WelcomeTitle     = "Welcome"
	Greeting         = "Hey — what are we building today?"

	// TitleLimit is the number of runes kept when deriving a title.
	TitleLimit = 40
	ellipsis   = "…"

	// TimeLayout renders message times as two-digit hour and minute.
	TimeLayout = "15:04"
)

type Message struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Time    string `json:"time"`
}

type Conversation struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Messages []Message `json:"messages"`
}

// HasPlaceholderTitle reports whether the title is still eligible for auto-titling.
func (c *Conversation) HasPlaceholderTitle() bool {
	return c.Title == "" || c.Title == PlaceholderTitle
}

// DeriveTitle returns content cut to TitleLimit runes, with an ellipsis when cut.
func DeriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= TitleLimit {
		return content
	}
	return string(runes[:TitleLimit]) + ellipsis
}

// State is everything the client persists between sessions.
type State struct {
	Conversations []Conversation
	ActiveID      string
	Mode          Mode
	Theme         Theme
}

// Find returns the index of the conversation with id, or -1.
func (s State) Find(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.Conversations {
		if s.Conversations[i].ID == id {
			return i
		}
	}
	return -1
}

// Active returns the active conversation, or nil when the pointer does not resolve.
// The result points into s.Conversations.
func (s State) Active() *Conversation {
	i := s.Find(s.ActiveID)
	if i < 0 {
		return nil
	}
	return &s.Conversations[i]
}

// Clone returns a deep copy safe to hand to renderers.
func (s State) Clone() State {
	out := s
	out.Conversations = make([]Conversation, len(s.Conversations))
	for i, c := range s.Conversations {
		if c.Messages != nil {
			c.Messages = append(make([]Message, 0, len(c.Messages)), c.Messages...)
		}
		out.Conversations[i] = c
	}
	return out
}
