// Package chat drives a single send: optimistic user message, remote reply, local fallback.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/RichardoC/athena/internal/models"
)

var (
	ErrEmptyInput     = errors.New("message is empty")
	ErrSendInProgress = errors.New("a send is already in progress")
)

const DefaultTypingTimeout = 10 * time.Second

// Replier is the remote reply service.
type Replier interface {
	Ask(ctx context.Context, message string, mode models.Mode) (string, error)
}

// Resetter is implemented by repliers that keep server-side session history.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Store is the part of the conversation store the controller mutates.
type Store interface {
	AddMessage(role models.Role, content string) models.Message
	Mode() models.Mode
	ClearAll()
	ToggleMode() models.Mode
	ToggleTheme() models.Theme
}

// Indicator shows and hides the typing indicator.
type Indicator interface {
	Show()
	Hide()
}

type nopIndicator struct{}

func (nopIndicator) Show() {}
func (nopIndicator) Hide() {}

type Phase int

const (
	Idle Phase = iota
	Sending
	Replied
	FallbackApplied
)

func (p Phase) String() string {
	switch p {
	case Sending:
		return "sending"
	case Replied:
		return "replied"
	case FallbackApplied:
		return "fallback"
	default:
		return "idle"
	}
}

// Result describes how a completed send ended.
type Result struct {
	User     models.Message
	Reply    models.Message
	Outcome  Phase
	ReplyErr error
}

type Options struct {
	Indicator     Indicator
	TypingTimeout time.Duration
	MarkFallback  bool
	Logger        *zap.Logger
}

type Controller struct {
	store   Store
	replier Replier
	opts    Options

	mu    sync.Mutex
	phase Phase
}

func NewController(store Store, replier Replier, opts Options) *Controller {
	if opts.Indicator == nil {
		opts.Indicator = nopIndicator{}
	}
	if opts.TypingTimeout <= 0 {
		opts.TypingTimeout = DefaultTypingTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Controller{store: store, replier: replier, opts: opts}
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Busy reports whether a send is in flight.
func (c *Controller) Busy() bool {
	return c.Phase() == Sending
}

// Send runs one exchange. It blocks until the reply or fallback has been appended.
func (c *Controller) Send(ctx context.Context, text string) (Result, error) {
	text = strings.TrimSpace(strings.ToValidUTF8(text, "\uFFFD"))
	if text == "" {
		return Result{}, ErrEmptyInput
	}
	if !c.begin() {
		return Result{}, ErrSendInProgress
	}

	mode := c.store.Mode()
	res := Result{User: c.store.AddMessage(models.RoleUser, text)}
	hide := c.showTyping()

	reply, err := c.replier.Ask(ctx, text, mode)
	reply = strings.TrimSpace(reply)
	hide()

	res.Outcome = Replied
	if err != nil || reply == "" {
		res.Outcome = FallbackApplied
		res.ReplyErr = err
		c.opts.Logger.Info("Applying local fallback",
			zap.String("mode", string(mode)),
			zap.Error(err))
		reply = LocalTone(mode, text)
		if c.opts.MarkFallback {
			reply += FallbackNote
		}
	}
	c.finish(res.Outcome)
	res.Reply = c.store.AddMessage(models.RoleAssistant, reply)
	c.finish(Idle)
	return res, nil
}

func (c *Controller) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != Idle {
		return false
	}
	c.phase = Sending
	return true
}

func (c *Controller) finish(p Phase) {
	c.mu.Lock()
	c.phase = p
	c.mu.Unlock()
}

// showTyping schedules a hide after TypingTimeout. The returned func cancels it
// and hides immediately.
func (c *Controller) showTyping() func() {
	ind := c.opts.Indicator
	ind.Show()
	timer := time.AfterFunc(c.opts.TypingTimeout, ind.Hide)
	var once sync.Once
	return func() {
		once.Do(func() {
			timer.Stop()
			ind.Hide()
		})
	}
}

// Reset clears every local conversation, then asks the replier to forget the
// session. The local clear stands when the remote reset fails.
func (c *Controller) Reset(ctx context.Context) error {
	c.store.ClearAll()
	r, ok := c.replier.(Resetter)
	if !ok {
		return nil
	}
	if err := r.Reset(ctx); err != nil {
		c.opts.Logger.Warn("Failed to reset remote session", zap.Error(err))
		return fmt.Errorf("remote reset: %w", err)
	}
	return nil
}

func (c *Controller) ToggleMode() models.Mode {
	return c.store.ToggleMode()
}

func (c *Controller) ToggleTheme() models.Theme {
	return c.store.ToggleTheme()
}
