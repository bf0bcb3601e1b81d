// Package render projects client state into a toolkit-independent view model.
package render

import (
	"strings"

	"github.com/RichardoC/athena/internal/models"
)

const (
	PersonaLabel = "Athena"
	UserLabel    = "You"
)

// Suggestions are canned prompts the client pre-fills and sends immediately.
var Suggestions = []string{
	"How do I point my custom domain at my deploy?",
	"Give me feedback on my portfolio hero design",
	"What should I build next?",
}

type Row struct {
	ID     string
	Title  string
	Count  int
	Active bool
}

type Bubble struct {
	Role    models.Role
	Label   string
	Content string
	Time    string
}

type View struct {
	Rows        []Row
	Bubbles     []Bubble
	ScrollToEnd bool
	Mode        models.Mode
	ModeLabel   string
	Theme       models.Theme
	Suggestions []string
}

// Project builds the full view for state. It does not modify state.
func Project(state models.State) View {
	v := View{
		Rows:        make([]Row, 0, len(state.Conversations)),
		Mode:        state.Mode,
		ModeLabel:   ModeLabel(state.Mode),
		Theme:       state.Theme,
		Suggestions: Suggestions,
	}
	for _, c := range state.Conversations {
		title := c.Title
		if title == "" {
			title = models.PlaceholderTitle
		}
		v.Rows = append(v.Rows, Row{
			ID:     c.ID,
			Title:  title,
			Count:  len(c.Messages),
			Active: c.ID == state.ActiveID,
		})
	}

	active := state.Active()
	if active == nil || len(active.Messages) == 0 {
		v.Bubbles = []Bubble{{Role: models.RoleAssistant, Label: PersonaLabel, Content: models.Greeting}}
		return v
	}
	v.Bubbles = make([]Bubble, 0, len(active.Messages))
	for _, m := range active.Messages {
		v.Bubbles = append(v.Bubbles, Bubble{
			Role:    m.Role,
			Label:   Label(m.Role),
			Content: m.Content,
			Time:    m.Time,
		})
	}
	v.ScrollToEnd = true
	return v
}

func Label(r models.Role) string {
	if r == models.RoleUser {
		return UserLabel
	}
	return PersonaLabel
}

// ModeLabel renders "Mode: Mean" or "Mode: Nice".
func ModeLabel(m models.Mode) string {
	s := string(models.ParseMode(string(m)))
	return "Mode: " + strings.ToUpper(s[:1]) + s[1:]
}

// Meta is the line under a bubble: "Athena • 09:30", or just the label without a time.
func (b Bubble) Meta() string {
	if b.Time == "" {
		return b.Label
	}
	return b.Label + " • " + b.Time
}
