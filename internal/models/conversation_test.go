package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"short", "Fix my DNS", "Fix my DNS"},
		{"exactly limit", strings.Repeat("a", 40), strings.Repeat("a", 40)},
		{"over limit", strings.Repeat("b", 41), strings.Repeat("b", 40) + "…"},
		{"multibyte", strings.Repeat("é", 45), strings.Repeat("é", 40) + "…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveTitle(tt.content))
		})
	}
}

func TestParseModeAndTheme(t *testing.T) {
	assert.Equal(t, ModeNice, ParseMode("nice"))
	assert.Equal(t, ModeMean, ParseMode("mean"))
	assert.Equal(t, ModeMean, ParseMode("weird"))
	assert.Equal(t, ModeNice, ModeMean.Toggle())

	assert.Equal(t, ThemeLight, ParseTheme("light"))
	assert.Equal(t, ThemeDark, ParseTheme(""))
	assert.Equal(t, ThemeDark, ThemeLight.Toggle())
}

func TestRole_LegacyAssistant(t *testing.T) {
	var m Message
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","role":"Athena","content":"hi","time":"09:00"}`), &m))
	assert.Equal(t, RoleAssistant, m.Role)
	assert.True(t, m.Role.Valid())
}

func TestRole_UnknownDecodesAsAssistant(t *testing.T) {
	var msgs []Message
	require.NoError(t, json.Unmarshal([]byte(`[{"role":"user"},{"role":"system"},{"role":""}]`), &msgs))
	require.Len(t, msgs, 3)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assert.Equal(t, RoleAssistant, msgs[2].Role)
}

func stateFrom(s State) State { return s }

func TestState_ActiveOnReturnedValue(t *testing.T) {
	s := State{
		Conversations: []Conversation{{ID: "a", Title: "A"}},
		ActiveID:      "a",
	}
	// Callable on a non-addressable value, and still aliases the slice.
	c := stateFrom(s).Active()
	require.NotNil(t, c)
	c.Title = "renamed"
	assert.Equal(t, "renamed", s.Conversations[0].Title)
	assert.Equal(t, 0, stateFrom(s).Find("a"))
}

func TestState_ActiveAndClone(t *testing.T) {
	s := State{
		Conversations: []Conversation{
			{ID: "a", Title: "A", Messages: []Message{{ID: "m1", Role: RoleUser, Content: "x"}}},
			{ID: "b", Title: "B"},
		},
		ActiveID: "a",
	}
	require.NotNil(t, s.Active())
	assert.Equal(t, "A", s.Active().Title)

	c := s.Clone()
	c.Conversations[0].Messages[0].Content = "changed"
	assert.Equal(t, "x", s.Conversations[0].Messages[0].Content)

	s.ActiveID = "gone"
	assert.Nil(t, s.Active())
}
