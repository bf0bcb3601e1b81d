// Package client talks to the reply service's POST /ask and POST /reset endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/RichardoC/athena/internal/models"
)

var ErrEmptyReply = errors.New("reply service returned no reply")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("reply service returned %d: %s", e.StatusCode, e.Body)
}

type AskRequest struct {
	Message string      `json:"message"`
	Mode    models.Mode `json:"mode"`
}

type AskResponse struct {
	Reply string `json:"reply"`
}

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxFailures = 3
	defaultOpenFor     = 30 * time.Second
)

type Config struct {
	BaseURL string
	Timeout time.Duration
	// MaxFailures consecutive failures open the breaker for OpenFor.
	MaxFailures uint32
	OpenFor     time.Duration
}

type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[string]
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultMaxFailures
	}
	openFor := cfg.OpenFor
	if openFor <= 0 {
		openFor = defaultOpenFor
	}

	// The server keys chat history on a session cookie.
	jar, _ := cookiejar.New(nil)

	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "reply-service",
		MaxRequests: 1,
		Timeout:     openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout, Jar: jar},
		breaker: breaker,
		logger:  logger,
	}
}

// Ask sends message and mode and returns the trimmed reply.
func (c *Client) Ask(ctx context.Context, message string, mode models.Mode) (string, error) {
	reply, err := c.breaker.Execute(func() (string, error) {
		return c.ask(ctx, message, mode)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("reply service unavailable: %w", err)
		}
		return "", err
	}
	return reply, nil
}

func (c *Client) ask(ctx context.Context, message string, mode models.Mode) (string, error) {
	body, err := json.Marshal(AskRequest{Message: message, Mode: mode})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ask", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach reply service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var out AskResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode reply: %w", err)
	}
	reply := strings.TrimSpace(out.Reply)
	if reply == "" {
		return "", ErrEmptyReply
	}
	c.logger.Debug("Received reply", zap.Int("length", len(reply)))
	return reply, nil
}

// Reset asks the server to forget this client's session history.
func (c *Client) Reset(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/reset", nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach reply service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	c.logger.Debug("Remote session reset")
	return nil
}

// State exposes the breaker state for status display.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}
