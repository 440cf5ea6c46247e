package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/symposium/internal/core/config"
	"github.com/hay-kot/symposium/internal/core/forum"
	"github.com/hay-kot/symposium/internal/engine"
	"github.com/hay-kot/symposium/internal/symposium"
)

// sessionState tracks who holds the floor.
type sessionState int

const (
	stateComposing sessionState = iota // input open, waiting on the human
	stateWaiting                       // agents are producing
	stateEnded                         // forum closed, read only
)

// Model is the Bubble Tea model for the chat view.
type Model struct {
	ctx     context.Context
	service *symposium.Service
	cfg     *config.Config

	forum  forum.Forum
	names  map[string]string
	colors map[string]lipgloss.Style

	messages []forum.Message

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	state  sessionState
	status string
	err    error

	width  int
	height int
	ready  bool
}

// Messages passed back from async service calls.
type (
	submittedMsg struct {
		message forum.Message
		err     error
	}

	repliesMsg struct {
		produced []forum.Message
		decision engine.Decision
		err      error
	}

	summaryDoneMsg struct {
		err error
	}

	refreshMsg struct {
		forum    forum.Forum
		messages []forum.Message
		err      error
	}

	endedMsg struct {
		forum *forum.Forum
		err   error
	}
)

// New loads the forum and builds the chat model.
func New(ctx context.Context, svc *symposium.Service, cfg *config.Config, forumID string) (Model, error) {
	frm, err := svc.GetForum(ctx, forumID)
	if err != nil {
		return Model{}, fmt.Errorf("get forum: %w", err)
	}
	parts, err := svc.Participants(ctx, forumID)
	if err != nil {
		return Model{}, fmt.Errorf("list participants: %w", err)
	}
	msgs, err := svc.Messages(ctx, forumID, 0)
	if err != nil {
		return Model{}, fmt.Errorf("list messages: %w", err)
	}

	names := map[string]string{
		engine.HumanSenderID: "You",
		"oracle":             "Oracle",
	}
	colors := map[string]lipgloss.Style{
		engine.HumanSenderID: humanStyle,
		"oracle":             oracleStyle,
	}
	agents := 0
	for _, pt := range parts {
		if pt.Kind == forum.KindHuman {
			continue
		}
		names[pt.ID] = pt.DisplayName
		colors[pt.ID] = agentStyle(agents)
		agents++
	}

	ta := textarea.New()
	ta.Placeholder = "Speak your mind..."
	ta.Prompt = "┃ "
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	// Enter sends; pasted newlines are kept as-is.
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(spinnerStyle),
	)

	m := Model{
		ctx:      ctx,
		service:  svc,
		cfg:      cfg,
		forum:    frm,
		names:    names,
		colors:   colors,
		messages: msgs,
		textarea: ta,
		spinner:  sp,
		state:    stateComposing,
	}

	switch {
	case frm.State == forum.StateEnded:
		m.state = stateEnded
		m.status = "This forum has ended"
		m.textarea.Blur()
	case len(msgs) > 0 && msgs[len(msgs)-1].Kind == forum.KindHuman:
		// A seeded forum that has not been cycled yet gets its first
		// replies on open.
		m.state = stateWaiting
		m.textarea.Blur()
	}

	return m, nil
}

func (m Model) Init() tea.Cmd {
	if m.state == stateWaiting {
		return tea.Batch(m.runCyclesCmd(), m.spinner.Tick)
	}
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		vpHeight := msg.Height - m.chromeHeight()
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(msg.Width - 2)
		m.refreshViewport(true)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.ScrollUp):
			m.viewport.HalfViewUp()
			return m, nil

		case key.Matches(msg, keys.ScrollDown):
			m.viewport.HalfViewDown()
			return m, nil

		case key.Matches(msg, keys.Summarize):
			if m.state != stateComposing || len(m.messages) == 0 {
				return m, nil
			}
			m.beginWait()
			return m, tea.Batch(m.summarizeCmd(), m.spinner.Tick)

		case key.Matches(msg, keys.End):
			if m.state == stateEnded {
				return m, nil
			}
			return m, m.endCmd()

		case key.Matches(msg, keys.Send):
			if m.state != stateComposing {
				return m, nil
			}
			text := strings.TrimSpace(m.textarea.Value())
			if text == "" {
				return m, nil
			}
			m.textarea.Reset()
			m.beginWait()
			return m, tea.Batch(m.submitCmd(text), m.spinner.Tick)
		}

	case submittedMsg:
		if msg.err != nil {
			m.fail(msg.err)
			return m, m.textarea.Focus()
		}
		m.messages = append(m.messages, msg.message)
		// Human input consumes a turn, mirroring the session counter.
		m.forum.TurnCount++
		m.refreshViewport(true)
		return m, m.runCyclesCmd()

	case repliesMsg:
		m.messages = append(m.messages, msg.produced...)
		m.forum.TurnCount += len(msg.produced)
		if msg.err != nil {
			m.fail(msg.err)
			m.refreshViewport(true)
			return m, m.textarea.Focus()
		}
		m.applyDecision(msg.decision)
		m.refreshViewport(true)
		if m.state == stateComposing {
			return m, m.textarea.Focus()
		}
		return m, nil

	case summaryDoneMsg:
		if msg.err != nil {
			m.fail(msg.err)
			return m, m.textarea.Focus()
		}
		return m, m.reloadCmd()

	case refreshMsg:
		if msg.err != nil {
			m.fail(msg.err)
			return m, m.textarea.Focus()
		}
		m.forum = msg.forum
		m.messages = msg.messages
		if m.forum.State == forum.StateEnded {
			m.state = stateEnded
			m.status = "This forum has ended"
		} else {
			m.state = stateComposing
			m.status = "Summary added to the transcript"
		}
		m.refreshViewport(true)
		if m.state == stateComposing {
			return m, m.textarea.Focus()
		}
		return m, nil

	case endedMsg:
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.forum = *msg.forum
		m.state = stateEnded
		m.status = "This forum has ended"
		m.textarea.Blur()
		return m, nil

	case spinner.TickMsg:
		if m.state != stateWaiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Remaining key events belong to the input; everything else (mouse
	// wheel and friends) belongs to the viewport.
	if _, isKey := msg.(tea.KeyMsg); isKey {
		if m.state == stateComposing {
			var cmd tea.Cmd
			m.textarea, cmd = m.textarea.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	title, meta := headerLine(m.forum)
	header := headerStyle.Render(title) + " " + headerMetaStyle.Render(meta)
	divider := dividerStyle.Render(strings.Repeat("─", max(m.width, 1)))

	var input string
	switch m.state {
	case stateWaiting:
		input = lipgloss.NewStyle().
			Height(m.textarea.Height()).
			PaddingLeft(1).
			Render(m.spinner.View() + " The panel is thinking")
	case stateEnded:
		input = lipgloss.NewStyle().
			Height(m.textarea.Height()).
			PaddingLeft(1).
			Render(systemStyle.Render("Input closed"))
	default:
		input = m.textarea.View()
	}

	status := " "
	if m.err != nil {
		status = errorStyle.Render(m.err.Error())
	} else if m.status != "" {
		status = statusStyle.Render(m.status)
	}

	help := helpStyle.Render(renderHelp(helpEntries(m.state == stateEnded)))

	return fmt.Sprintf("%s\n\n%s\n%s\n%s\n%s\n%s",
		header,
		m.viewport.View(),
		divider,
		input,
		status,
		help,
	)
}

// chromeHeight is the number of rows around the viewport: header, blank,
// divider, input area, status, and help.
func (m Model) chromeHeight() int {
	return 5 + m.textarea.Height()
}

// beginWait hands the floor to the agents.
func (m *Model) beginWait() {
	m.state = stateWaiting
	m.status = ""
	m.err = nil
	m.textarea.Blur()
}

// fail surfaces an error and reopens the input unless the forum is closed.
func (m *Model) fail(err error) {
	m.err = err
	if m.state != stateEnded {
		m.state = stateComposing
	}
}

// applyDecision maps a coordinator decision onto the view state.
func (m *Model) applyDecision(d engine.Decision) {
	switch d.Outcome {
	case engine.OutcomeAwaitingHuman:
		m.state = stateComposing
		m.status = "The panel is waiting on you"
	case engine.OutcomeTerminated:
		if d.Reason == engine.ReasonRoundComplete {
			m.state = stateComposing
			m.status = "Your turn"
			return
		}
		m.state = stateEnded
		m.status = "Forum ended: " + string(d.Reason)
		m.forum.State = forum.StateEnded
	default:
		m.state = stateComposing
	}
}

func (m *Model) refreshViewport(bottom bool) {
	if !m.ready {
		return
	}
	m.viewport.SetContent(renderTranscript(m.messages, m.names, m.styleFor, m.viewport.Width-2))
	if bottom {
		m.viewport.GotoBottom()
	}
}

func (m Model) styleFor(senderID string) lipgloss.Style {
	if st, ok := m.colors[senderID]; ok {
		return st
	}
	return humanStyle
}

func (m Model) submitCmd(text string) tea.Cmd {
	return func() tea.Msg {
		msg, err := m.service.SubmitHuman(m.ctx, m.forum.ID, text)
		return submittedMsg{message: msg, err: err}
	}
}

func (m Model) runCyclesCmd() tea.Cmd {
	return func() tea.Msg {
		produced, decision, err := m.service.RunCycles(m.ctx, m.forum.ID)
		return repliesMsg{produced: produced, decision: decision, err: err}
	}
}

func (m Model) summarizeCmd() tea.Cmd {
	return func() tea.Msg {
		_, err := m.service.Summarize(m.ctx, m.forum.ID)
		return summaryDoneMsg{err: err}
	}
}

// reloadCmd refetches the forum and transcript; used after operations
// that append outside the local slice, like summaries.
func (m Model) reloadCmd() tea.Cmd {
	return func() tea.Msg {
		frm, err := m.service.GetForum(m.ctx, m.forum.ID)
		if err != nil {
			return refreshMsg{err: err}
		}
		msgs, err := m.service.Messages(m.ctx, m.forum.ID, 0)
		if err != nil {
			return refreshMsg{err: err}
		}
		return refreshMsg{forum: frm, messages: msgs}
	}
}

func (m Model) endCmd() tea.Cmd {
	return func() tea.Msg {
		frm, err := m.service.EndForum(m.ctx, m.forum.ID)
		return endedMsg{forum: frm, err: err}
	}
}
