package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/zaril/internal/format"
	"github.com/diogo/zaril/internal/models"
	"github.com/diogo/zaril/internal/render"
	"github.com/diogo/zaril/internal/session"
	"github.com/diogo/zaril/internal/transcript"
)

// Animation tick message
type animationTickMsg time.Time

// Message types for the TUI
type (
	// snapshotMsg carries the latest Store state
	snapshotMsg transcript.State
	// submitDoneMsg is sent when a submission has finished streaming
	submitDoneMsg struct {
		id    uint64
		input string
		err   error
	}
	// copiedMsg reports the result of /copy
	copiedMsg struct {
		err error
	}
	// feedClosedMsg is sent when the snapshot feed has been closed
	feedClosedMsg struct{}
)

// Model represents the TUI state
type Model struct {
	ctrl      *session.Controller
	store     *transcript.Store
	feed      *transcript.Feed
	modelName string

	renderOpts render.Options
	cache      *render.Cache
	copyText   func(string) error

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	state          transcript.State
	cancel         context.CancelFunc
	submitID       uint64
	ready          bool
	err            error
	notice         string
	animationFrame int

	// Dimensions
	width  int
	height int
}

// ModelOption configures a Model
type ModelOption func(*Model)

// WithRenderOptions sets the message rendering options
func WithRenderOptions(opts render.Options) ModelOption {
	return func(m *Model) {
		m.renderOpts = opts
	}
}

// WithRenderCache sets the cache of rendered messages
func WithRenderCache(cache *render.Cache) ModelOption {
	return func(m *Model) {
		m.cache = cache
	}
}

// WithClipboard replaces the clipboard writer used by /copy
func WithClipboard(fn func(string) error) ModelOption {
	return func(m *Model) {
		m.copyText = fn
	}
}

// NewChatModel creates a chat TUI bound to the controller's Store
func NewChatModel(ctrl *session.Controller, modelName string, opts ...ModelOption) Model {
	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	store := ctrl.Store()
	m := Model{
		ctrl:       ctrl,
		store:      store,
		feed:       transcript.NewFeed(store),
		modelName:  modelName,
		renderOpts: render.DefaultOptions(),
		copyText:   clipboard.WriteAll,
		textarea:   ta,
		spinner:    s,
		state:      store.Snapshot(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.cache == nil {
		m.cache, _ = render.NewCache(render.DefaultCacheSize)
	}
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		waitForSnapshot(m.feed),
	)
}

// waitForSnapshot blocks until the Store publishes
func waitForSnapshot(feed *transcript.Feed) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-feed.C()
		if !ok {
			return feedClosedMsg{}
		}
		return snapshotMsg(st)
	}
}

// animationTick returns a command that sends animation tick messages
func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 3
		inputHeight := 5
		statusHeight := 1
		padding := 3

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}

		contentWidth := m.width - 4
		if contentWidth < 20 {
			contentWidth = 20
		}

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.updateViewport()
		m.viewport.GotoBottom()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m.quit()

		case "esc":
			if m.inFlight() {
				if m.cancel != nil {
					m.cancel()
				}
				m.notice = "Cancelled"
				return m, nil
			}
			return m.quit()

		case "enter":
			if m.inFlight() {
				// the submit control is disabled while streaming
				return m, nil
			}
			return m.handleEnter()
		}

	case snapshotMsg:
		wasBusy := m.state.Busy
		m.state = transcript.State(msg)
		if m.ready {
			atBottom := m.viewport.AtBottom()
			m.updateViewport()
			if atBottom || !wasBusy {
				m.viewport.GotoBottom()
			}
		}
		cmds = append(cmds, waitForSnapshot(m.feed))
		if m.state.Busy && !wasBusy {
			m.animationFrame = 0
			cmds = append(cmds, m.spinner.Tick, animationTick())
		}

	case feedClosedMsg:
		// nothing more will be published

	case submitDoneMsg:
		if msg.id == m.submitID && m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		switch {
		case msg.err == nil,
			errors.Is(msg.err, session.ErrEmptyInput):
		case errors.Is(msg.err, session.ErrBusy):
			// another request owns the session; give the text back
			if m.textarea.Value() == "" {
				m.textarea.SetValue(msg.input)
				m.store.SetInput(msg.input)
			}
			m.notice = "A response is still being generated"
		case errors.Is(msg.err, context.Canceled):
			m.notice = "Cancelled"
		default:
			m.err = msg.err
		}

	case copiedMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("copy to clipboard: %w", msg.err)
		} else {
			m.notice = "Copied last answer to clipboard"
		}

	case spinner.TickMsg:
		if m.state.Busy {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.state.Busy {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}
	}

	// Only keys reach the textarea, and only while it accepts input
	if !m.inFlight() {
		if _, ok := msg.(tea.KeyMsg); ok {
			before := m.textarea.Value()
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
			if after := m.textarea.Value(); after != before {
				m.store.SetInput(after)
			}
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleEnter runs slash commands or submits the input
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	raw := m.textarea.Value()
	input := strings.TrimSpace(raw)

	switch input {
	case "":
		return m, nil
	case "exit", "quit", "/exit", "/quit":
		return m.quit()
	case "/copy":
		m.textarea.Reset()
		m.store.SetInput("")
		return m, m.copyLastAnswer()
	}

	m.err = nil
	m.notice = ""
	m.textarea.Reset()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.submitID++

	return m, m.submit(ctx, m.submitID, raw)
}

// inFlight reports whether a request is running or about to start. The
// busy flag arrives with the next snapshot; cancel is set at once.
func (m Model) inFlight() bool {
	return m.state.Busy || m.cancel != nil
}

// submit runs the controller off the UI goroutine
func (m Model) submit(ctx context.Context, id uint64, input string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return submitDoneMsg{id: id, input: input, err: ctrl.Submit(ctx, input)}
	}
}

// copyLastAnswer copies the display text of the latest assistant message
func (m Model) copyLastAnswer() tea.Cmd {
	content, ok := m.state.LastAssistant()
	copyText := m.copyText
	return func() tea.Msg {
		if !ok || strings.TrimSpace(content) == "" {
			return copiedMsg{err: errors.New("nothing to copy")}
		}
		return copiedMsg{err: copyText(format.Format(content).Plain())}
	}
}

// quit cancels any in-flight request and leaves the program
func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	m.feed.Close()
	return m, tea.Quit
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.viewport.Width

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("✦ Zaril"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.modelName),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(header))

	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(m.viewport.View()))

	var inputContent string
	if m.state.Busy {
		inputContent = m.renderLoadingAnimation()
	} else {
		inputContent = lipgloss.JoinVertical(lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.err != nil {
		sections = append(sections, FormatError(m.err))
	} else if m.notice != "" {
		sections = append(sections, noticeStyle.Render(m.notice))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderLoadingAnimation renders the animated indicator shown while busy
func (m Model) renderLoadingAnimation() string {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	frame := m.animationFrame

	spin := lipgloss.NewStyle().
		Foreground(gradientColors[frame%len(gradientColors)]).
		Bold(true).
		Render(chars[frame%len(chars)])

	barWidth := 16
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		style := lipgloss.NewStyle().Foreground(gradientColors[(i+frame)%len(gradientColors)])
		bar.WriteString(style.Render(barChars[(i+frame/2)%len(barChars)]))
	}

	text := lipgloss.NewStyle().Foreground(colorText).Render(" Zaril is typing ")
	hint := hintStyle.Render("(esc to cancel)")

	return fmt.Sprintf("%s %s %s %s", spin, bar.String(), text, hint)
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Esc", "Cancel/Quit"},
		{"/copy", "Copy answer"},
		{"↑↓", "Scroll"},
	}

	items := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// updateViewport re-renders the transcript into the viewport
func (m *Model) updateViewport() {
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 8
	if bubbleWidth < 10 {
		bubbleWidth = 10
	}
	opts := m.renderOpts.WithWidth(bubbleWidth - 4)

	last := len(m.state.Messages) - 1
	for i, msg := range m.state.Messages {
		if i > 0 {
			content.WriteString("\n")
		}

		streaming := i == last && m.state.Busy && msg.Role == models.RoleAssistant
		body, _ := m.cache.Message(msg, opts, !streaming)

		if msg.Role == models.RoleUser {
			content.WriteString(userLabelStyle.Render("● You") + "\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(body))
		} else {
			content.WriteString(assistantLabelStyle.Render("✦ Zaril") + "\n")
			if streaming && msg.Content == "" {
				body = m.spinner.View()
			}
			content.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(body))
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// RunChat starts the chat TUI
func RunChat(ctrl *session.Controller, modelName string, opts ...ModelOption) error {
	m := NewChatModel(ctrl, modelName, opts...)
	defer m.feed.Close()

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
