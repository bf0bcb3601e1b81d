package llm

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/RichardoC/athena/internal/db"
	"github.com/RichardoC/athena/internal/models"
)

type fakeModel struct {
	reply string
	err   error
	last  []llms.MessageContent
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.last = messages
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func textOf(t *testing.T, m llms.MessageContent) string {
	t.Helper()
	require.Len(t, m.Parts, 1)
	part, ok := m.Parts[0].(llms.TextContent)
	require.True(t, ok)
	return part.Text
}

func newService(t *testing.T, model Generator, database *db.Database) *Service {
	t.Helper()
	return NewWithGenerator(model, database, Options{CountTokens: estimateTokens})
}

func TestReply_KeepsHistoryPerSession(t *testing.T) {
	model := &fakeModel{reply: " Obviously. "}
	svc := newService(t, model, nil)

	reply, err := svc.Reply(context.Background(), "s1", models.ModeMean, "first")
	require.NoError(t, err)
	assert.Equal(t, "Obviously.", reply)

	_, err = svc.Reply(context.Background(), "s1", models.ModeMean, "second")
	require.NoError(t, err)

	require.Len(t, model.last, 4)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.last[0].Role)
	assert.Equal(t, MeanPrompt, textOf(t, model.last[0]))
	assert.Equal(t, "first", textOf(t, model.last[1]))
	assert.Equal(t, llms.ChatMessageTypeAI, model.last[2].Role)
	assert.Equal(t, "second", textOf(t, model.last[3]))

	assert.Empty(t, svc.History("other"))
}

func TestReply_ModeSwitchResetsHistory(t *testing.T) {
	model := &fakeModel{reply: "ok"}
	svc := newService(t, model, nil)

	_, err := svc.Reply(context.Background(), "s1", models.ModeMean, "one")
	require.NoError(t, err)
	_, err = svc.Reply(context.Background(), "s1", models.ModeNice, "two")
	require.NoError(t, err)

	require.Len(t, model.last, 2)
	assert.Equal(t, NicePrompt, textOf(t, model.last[0]))
	assert.Equal(t, "two", textOf(t, model.last[1]))
}

func TestReply_ModelError(t *testing.T) {
	svc := newService(t, &fakeModel{err: errors.New("rate limited")}, nil)
	_, err := svc.Reply(context.Background(), "s1", models.ModeMean, "hi")
	assert.ErrorContains(t, err, "rate limited")
}

func TestReply_RecordsTurnsAndReset(t *testing.T) {
	database, err := db.New(filepath.Join(t.TempDir(), "memory.db"))
	require.NoError(t, err)
	defer database.Close()

	svc := newService(t, &fakeModel{reply: "fine"}, database)
	_, err = svc.Reply(context.Background(), "s1", models.ModeNice, "hello")
	require.NoError(t, err)

	turns, err := database.LoadMessages("s1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "user", turns[0].Role)
	assert.Equal(t, "fine", turns[1].Content)

	require.NoError(t, svc.Reset("s1"))
	assert.Empty(t, svc.History("s1"))
	turns, err = database.LoadMessages("s1")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestTrim_DropsOldestTurns(t *testing.T) {
	svc := NewWithGenerator(&fakeModel{reply: "ok"}, nil, Options{
		TokenBudget: 3,
		CountTokens: func(string) int { return 1 },
	})
	for _, m := range []string{"a", "b", "c"} {
		_, err := svc.Reply(context.Background(), "s", models.ModeMean, m)
		require.NoError(t, err)
	}

	h := svc.History("s")
	// Trimming runs before each call, so the last reply sits past the budget.
	require.Len(t, h, 4)
	assert.Equal(t, MeanPrompt, textOf(t, h[0]))
	assert.Equal(t, "c", textOf(t, h[2]))
	assert.Equal(t, "ok", textOf(t, h[3]))
}

func TestSystemPrompt(t *testing.T) {
	assert.Equal(t, NicePrompt, SystemPrompt(models.ModeNice))
	assert.Equal(t, MeanPrompt, SystemPrompt("anything"))
}
