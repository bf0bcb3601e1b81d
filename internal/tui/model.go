// Package tui paints the render view model in a Bubble Tea terminal UI.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/RichardoC/athena/internal/chat"
	"github.com/RichardoC/athena/internal/models"
	"github.com/RichardoC/athena/internal/render"
)

const (
	Farewell     = "Finally, some peace and quiet. Bye."
	ResetPhrase  = "these arent the droids youre looking for"
	confirmClear = "Clear all conversations? This will remove saved chats locally. (y/n)"
	listWidth    = 30
)

// Store is what the painter reads and mutates directly.
type Store interface {
	Snapshot() models.State
	NewConversation(titleHint string) models.Conversation
	Cycle(delta int) bool
	ClearAll()
	Subscribe(fn func())
}

// Sender is implemented by chat.Controller.
type Sender interface {
	Send(ctx context.Context, text string) (chat.Result, error)
	Busy() bool
	Reset(ctx context.Context) error
	ToggleMode() models.Mode
	ToggleTheme() models.Theme
}

// refreshMsg asks the model to re-project state.
type refreshMsg struct{}

// sendDoneMsg reports a finished exchange.
type sendDoneMsg struct {
	Result chat.Result
	Err    error
}

// resetDoneMsg reports a finished reset phrase.
type resetDoneMsg struct {
	Err error
}

// Indicator is a chat.Indicator that repaints the program on change.
type Indicator struct {
	visible atomic.Bool
	program atomic.Pointer[tea.Program]
}

func NewIndicator() *Indicator { return &Indicator{} }

func (i *Indicator) Show() {
	i.visible.Store(true)
	i.poke()
}

func (i *Indicator) Hide() {
	i.visible.Store(false)
	i.poke()
}

func (i *Indicator) Visible() bool { return i.visible.Load() }

func (i *Indicator) poke() {
	if p := i.program.Load(); p != nil {
		// Send blocks until the event loop reads it; never block the caller.
		go p.Send(refreshMsg{})
	}
}

type Model struct {
	ctx       context.Context
	store     Store
	sender    Sender
	indicator *Indicator
	logger    *zap.Logger

	view    render.View
	styles  styles
	input   textinput.Model
	spinner spinner.Model

	pending    bool
	confirming bool
	notice     string
	farewell   string
	width      int
	height     int
}

func NewModel(ctx context.Context, store Store, sender Sender, indicator *Indicator, logger *zap.Logger) Model {
	if indicator == nil {
		indicator = NewIndicator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	in := textinput.New()
	in.Placeholder = "Ask Athena something..."
	in.Prompt = "> "
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:       ctx,
		store:     store,
		sender:    sender,
		indicator: indicator,
		logger:    logger,
		input:     in,
		spinner:   sp,
		width:     100,
		height:    30,
	}
	m.refresh()
	return m
}

// NewProgram wires store and indicator changes into a running program.
func NewProgram(m Model, opts ...tea.ProgramOption) *tea.Program {
	p := tea.NewProgram(m, opts...)
	m.indicator.program.Store(p)
	m.store.Subscribe(func() { go p.Send(refreshMsg{}) })
	return p
}

// Farewell is the line to print after the program exits, if any.
func (m Model) Farewell() string { return m.farewell }

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		return m.handleKey(msg)

	case sendDoneMsg:
		m.pending = false
		if msg.Err != nil && !errors.Is(msg.Err, chat.ErrSendInProgress) {
			m.logger.Warn("Send failed", zap.Error(msg.Err))
		}
		if msg.Result.Outcome == chat.FallbackApplied {
			m.notice = "Reply service unavailable, answered locally."
		} else {
			m.notice = ""
		}

	case resetDoneMsg:
		m.notice = "Memory wiped."
		if msg.Err != nil {
			m.notice = "Memory wiped locally, server unreachable."
		}

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)

	case refreshMsg:
	}
	m.refresh()
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirming {
		m.confirming = false
		if msg.String() == "y" || msg.String() == "Y" {
			m.store.ClearAll()
			m.notice = "All conversations cleared."
		} else {
			m.notice = ""
		}
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		return m.submit(m.input.Value())
	case "f1", "f2", "f3":
		i := int(msg.String()[1] - '1')
		if i < len(m.view.Suggestions) {
			m.input.SetValue(m.view.Suggestions[i])
			return m.submit(m.view.Suggestions[i])
		}
	case "ctrl+n":
		m.store.NewConversation("")
	case "tab":
		m.store.Cycle(1)
	case "shift+tab":
		m.store.Cycle(-1)
	case "ctrl+x":
		m.confirming = true
	case "ctrl+o":
		m.sender.ToggleMode()
	case "ctrl+t":
		m.sender.ToggleTheme()
	default:
		m.input, cmd = m.input.Update(msg)
	}
	m.refresh()
	return m, cmd
}

func (m Model) submit(raw string) (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(raw)
	switch {
	case text == "":
		return m, nil
	case strings.EqualFold(text, "exit"), strings.EqualFold(text, "quit"):
		m.farewell = "Athena: " + Farewell
		return m, tea.Quit
	case strings.EqualFold(text, ResetPhrase):
		if m.pending || m.sender.Busy() {
			return m, nil
		}
		m.input.Reset()
		return m, m.resetCmd()
	}
	if m.pending || m.sender.Busy() {
		return m, nil
	}
	m.pending = true
	m.notice = ""
	m.input.Reset()
	m.refresh()
	return m, m.sendCmd(text)
}

func (m Model) sendCmd(text string) tea.Cmd {
	ctx, sender := m.ctx, m.sender
	return func() tea.Msg {
		res, err := sender.Send(ctx, text)
		return sendDoneMsg{Result: res, Err: err}
	}
}

func (m Model) resetCmd() tea.Cmd {
	ctx, sender := m.ctx, m.sender
	return func() tea.Msg {
		return resetDoneMsg{Err: sender.Reset(ctx)}
	}
}

func (m *Model) refresh() {
	m.view = render.Project(m.store.Snapshot())
	m.styles = newStyles(m.view.Theme)
}

func (m Model) View() string {
	s := m.styles
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		s.title.Render("Athena"),
		"  ",
		s.mode(m.view.Mode).Render(m.view.ModeLabel),
		"  ",
		s.dim.Render("theme: "+string(m.view.Theme)),
	)

	bodyHeight := m.height - 8
	if bodyHeight < 5 {
		bodyHeight = 5
	}
	feedWidth := m.width - listWidth - 6
	if feedWidth < 20 {
		feedWidth = 20
	}

	list := s.pane.Width(listWidth).Height(bodyHeight).Render(m.renderList())
	feed := s.pane.Width(feedWidth).Height(bodyHeight).Render(m.renderFeed(feedWidth-2, bodyHeight))
	body := lipgloss.JoinHorizontal(lipgloss.Top, list, feed)

	status := ""
	switch {
	case m.confirming:
		status = s.warn.Render(confirmClear)
	case m.indicator.Visible():
		status = s.dim.Render(m.spinner.View() + " Athena is typing...")
	case m.notice != "":
		status = s.dim.Render(m.notice)
	}

	help := s.dim.Render("enter send • ctrl+n new • tab switch • ctrl+x clear • ctrl+o mode • ctrl+t theme • f1-f3 suggestions • esc quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, body, status, m.input.View(), help)
}

func (m Model) renderList() string {
	s := m.styles
	var b strings.Builder
	b.WriteString(s.title.Render("Conversations"))
	b.WriteString("\n")
	maxTitle := listWidth - 8
	for _, r := range m.view.Rows {
		title := r.Title
		if runes := []rune(title); len(runes) > maxTitle {
			title = string(runes[:maxTitle-1]) + "…"
		}
		line := fmt.Sprintf("%s (%d)", title, r.Count)
		if r.Active {
			b.WriteString(s.rowActive.Render("● " + line))
		} else {
			b.WriteString(s.row.Render(line))
		}
		b.WriteString("\n")
	}
	for i, sug := range m.view.Suggestions {
		if i == 0 {
			b.WriteString("\n")
			b.WriteString(s.title.Render("Try"))
			b.WriteString("\n")
		}
		b.WriteString(s.dim.Render(fmt.Sprintf("f%d %s", i+1, sug)))
		b.WriteString("\n")
	}
	return b.String()
}

// renderFeed draws every bubble and keeps the newest lines when ScrollToEnd is set.
func (m Model) renderFeed(width, height int) string {
	s := m.styles
	blocks := make([]string, 0, len(m.view.Bubbles))
	for _, bub := range m.view.Bubbles {
		label := s.assistant
		if bub.Role == models.RoleUser {
			label = s.user
		}
		content := s.text.Width(width).Render(bub.Content)
		blocks = append(blocks, label.Render(bub.Meta())+"\n"+content)
	}
	feed := strings.Join(blocks, "\n\n")
	if !m.view.ScrollToEnd {
		return feed
	}
	lines := strings.Split(feed, "\n")
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	return strings.Join(lines, "\n")
}
