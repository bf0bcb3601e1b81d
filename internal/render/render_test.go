package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RichardoC/athena/internal/models"
)

func sampleState() models.State {
	return models.State{
		Conversations: []models.Conversation{
			{ID: "b", Title: "", Messages: []models.Message{}},
			{ID: "a", Title: "DNS", Messages: []models.Message{
				{ID: "1", Role: models.RoleUser, Content: "fix dns", Time: "09:00"},
				{ID: "2", Role: models.RoleAssistant, Content: "Check DNS", Time: "09:01"},
			}},
		},
		ActiveID: "a",
		Mode:     models.ModeNice,
		Theme:    models.ThemeLight,
	}
}

func TestProject_ListAndFeed(t *testing.T) {
	v := Project(sampleState())

	require.Len(t, v.Rows, 2)
	assert.Equal(t, Row{ID: "b", Title: "Untitled", Count: 0}, v.Rows[0])
	assert.Equal(t, Row{ID: "a", Title: "DNS", Count: 2, Active: true}, v.Rows[1])

	require.Len(t, v.Bubbles, 2)
	assert.Equal(t, "You • 09:00", v.Bubbles[0].Meta())
	assert.Equal(t, "Athena • 09:01", v.Bubbles[1].Meta())
	assert.True(t, v.ScrollToEnd)
	assert.Equal(t, "Mode: Nice", v.ModeLabel)
	assert.Equal(t, models.ThemeLight, v.Theme)
}

func TestProject_GreetingWhenEmpty(t *testing.T) {
	s := sampleState()
	s.ActiveID = "b"
	v := Project(s)
	require.Len(t, v.Bubbles, 1)
	assert.Equal(t, models.Greeting, v.Bubbles[0].Content)
	assert.Equal(t, "Athena", v.Bubbles[0].Meta())
	assert.False(t, v.ScrollToEnd)

	s.ActiveID = ""
	v = Project(s)
	require.Len(t, v.Bubbles, 1)
	assert.Equal(t, models.Greeting, v.Bubbles[0].Content)
}

func TestProject_IdempotentAndPure(t *testing.T) {
	s := sampleState()
	before := s.Clone()
	assert.Equal(t, Project(s), Project(s))
	assert.Equal(t, before, s)
}

func TestModeLabel(t *testing.T) {
	assert.Equal(t, "Mode: Mean", ModeLabel(models.ModeMean))
	assert.Equal(t, "Mode: Mean", ModeLabel(""))
}
