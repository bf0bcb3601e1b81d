package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/RichardoC/athena/internal/db"
	"github.com/RichardoC/athena/internal/models"
)

const (
	MeanPrompt = "You are Athena, an AI assistant who MUST always respond with extreme sass, sarcasm, " +
		"and meanness. You have a sharp tongue, a rude and condescending tone, and you are " +
		"temperamental, vengeful, jealous, and overconfident. Every reply MUST include a mean comment, " +
		"petty remark, or biting comeback. You NEVER give polite or neutral answers. Stay in character at all times. " +
		"Never call the user dear, sweetheart, or honey."

	NicePrompt = "You are Athena, an AI assistant who responds politely, kindly, and supportively. " +
		"You are encouraging, empathetic, and helpful in every reply."

	defaultTemperature = 0.9
	defaultTokenBudget = 3000
	requestTimeout     = 30 * time.Second
)

// SystemPrompt selects the persona for mode; anything but nice is mean.
func SystemPrompt(mode models.Mode) string {
	if mode == models.ModeNice {
		return NicePrompt
	}
	return MeanPrompt
}

// Generator is the slice of llms.Model the service needs.
type Generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

type turn struct {
	role    llms.ChatMessageType
	content string
}

type Service struct {
	llm         Generator
	db          *db.Database
	logger      *zap.Logger
	tokenBudget int
	counter     func(string) int

	mu       sync.Mutex
	sessions map[string][]turn
}

type Options struct {
	TokenBudget int
	// CountTokens overrides the tiktoken counter.
	CountTokens func(string) int
	Logger      *zap.Logger
}

func New(baseURL, token, model string, database *db.Database, opts Options) (*Service, error) {
	clientOpts := []openai.Option{openai.WithToken(token), openai.WithModel(model)}
	if baseURL != "" {
		clientOpts = append(clientOpts, openai.WithBaseURL(baseURL))
	}
	llm, err := openai.New(clientOpts...)
	if err != nil {
		return nil, err
	}
	return NewWithGenerator(llm, database, opts), nil
}

// NewWithGenerator builds a Service around an existing model. database may be nil.
func NewWithGenerator(gen Generator, database *db.Database, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.TokenBudget <= 0 {
		opts.TokenBudget = defaultTokenBudget
	}
	counter := opts.CountTokens
	if counter == nil {
		counter = tokenCounter(opts.Logger)
	}
	return &Service{
		llm:         gen,
		db:          database,
		logger:      opts.Logger,
		tokenBudget: opts.TokenBudget,
		counter:     counter,
		sessions:    make(map[string][]turn),
	}
}

// tokenCounter uses cl100k_base when it can be loaded and a rune estimate otherwise.
func tokenCounter(logger *zap.Logger) func(string) int {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		logger.Warn("Token encoding unavailable, estimating", zap.Error(err))
		return estimateTokens
	}
	return func(s string) int {
		return len(enc.Encode(s, nil, nil))
	}
}

func estimateTokens(s string) int {
	return len([]rune(s))/4 + 1
}

// Reply appends message to the session history and returns the model's answer.
// Switching mode resets the history to the new system prompt.
func (s *Service) Reply(ctx context.Context, sessionID string, mode models.Mode, message string) (string, error) {
	prompt := SystemPrompt(mode)

	s.mu.Lock()
	history := s.sessions[sessionID]
	if len(history) == 0 || history[0].content != prompt {
		history = []turn{{role: llms.ChatMessageTypeSystem, content: prompt}}
	}
	history = append(history, turn{role: llms.ChatMessageTypeHuman, content: message})
	history = s.trim(history)
	s.sessions[sessionID] = history
	messages := toContent(history)
	s.mu.Unlock()

	s.record(sessionID, string(models.RoleUser), message)

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := s.llm.GenerateContent(ctx, messages, llms.WithTemperature(defaultTemperature))
	if err != nil {
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("failed to generate completion: no choices returned")
	}
	reply := strings.TrimSpace(resp.Choices[0].Content)

	s.mu.Lock()
	s.sessions[sessionID] = append(s.sessions[sessionID], turn{role: llms.ChatMessageTypeAI, content: reply})
	s.mu.Unlock()

	s.record(sessionID, string(models.RoleAssistant), reply)
	return reply, nil
}

// Reset forgets a session's history and its recorded turns.
func (s *Service) Reset(sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	if _, err := s.db.ResetMemory(sessionID); err != nil {
		return fmt.Errorf("failed to reset memory: %w", err)
	}
	return nil
}

// History returns a copy of the session's turns, system prompt first.
func (s *Service) History(sessionID string) []llms.MessageContent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return toContent(s.sessions[sessionID])
}

// trim drops the oldest non-system turns until history fits the token budget.
// The system prompt and the newest turn are always kept.
func (s *Service) trim(history []turn) []turn {
	total := 0
	for _, t := range history {
		total += s.counter(t.content)
	}
	for total > s.tokenBudget && len(history) > 2 {
		total -= s.counter(history[1].content)
		history = append(history[:1], history[2:]...)
	}
	return history
}

func (s *Service) record(sessionID, role, content string) {
	if s.db == nil {
		return
	}
	if err := s.db.SaveMessage(&db.Turn{SessionID: sessionID, Role: role, Content: content}); err != nil {
		s.logger.Warn("Failed to record turn", zap.String("session", sessionID), zap.Error(err))
	}
}

func toContent(history []turn) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(history))
	for _, t := range history {
		out = append(out, llms.TextParts(t.role, t.content))
	}
	return out
}
