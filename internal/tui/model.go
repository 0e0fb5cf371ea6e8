package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/diogo/quizbot/internal/api"
	apierrors "github.com/diogo/quizbot/internal/errors"
	"github.com/diogo/quizbot/internal/logging"
	"github.com/diogo/quizbot/internal/models"
)

// Message types for the TUI
type (
	responseMsg struct {
		prompt  string
		text    string
		latency time.Duration
	}
	failureMsg struct {
		prompt string
		err    error
	}
)

// Model is the chat screen: instruction panel, conversation and input line.
type Model struct {
	ctx       context.Context
	asker     api.QuizAsker
	endpoint  string
	sessionID string

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// State
	conversation *models.Conversation
	pending      int // requests sent and not yet resolved
	notice       string
	ready        bool

	// Dimensions
	width  int
	height int
}

// NewChatModel creates a chat model that sends prompts through asker
func NewChatModel(asker api.QuizAsker, endpoint string) Model {
	ti := textinput.New()
	ti.Placeholder = `Type "Go" to start the quiz...`
	ti.Prompt = ""
	ti.CharLimit = 2000
	ti.TextStyle = lipgloss.NewStyle().Foreground(colorText)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(colorTextDim)
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		ctx:          context.Background(),
		asker:        asker,
		endpoint:     endpoint,
		sessionID:    uuid.NewString(),
		input:        ti,
		spinner:      s,
		conversation: models.NewConversation(),
	}
}

// Conversation returns the message history of the session
func (m Model) Conversation() *models.Conversation {
	return m.conversation
}

// Pending returns the number of outstanding requests
func (m Model) Pending() int {
	return m.pending
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit(m.input.Value())
		case tea.KeyCtrlY:
			m.copyLastAnswer()
			return m, nil
		}
		m.notice = ""
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)

	case responseMsg:
		m.pending--
		m.conversation.Append(models.BotMessage(msg.text))
		logging.Debug("quiz answer received",
			"session", m.sessionID,
			"latency_ms", msg.latency.Milliseconds(),
			"lines", len(models.BotMessage(msg.text).Lines()),
		)
		m.refreshViewport()
		return m, nil

	case failureMsg:
		// The conversation is left as it is; the log is the only trace.
		m.pending--
		logging.Warn("quiz request failed",
			"session", m.sessionID,
			"endpoint", m.endpoint,
			"status", apierrors.GetHTTPStatus(msg.err),
			"error", msg.err,
		)
		return m, nil

	case spinner.TickMsg:
		if m.pending > 0 {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// submit records the raw input as a user message and fires the request for it.
// Whitespace-only input is ignored and left in the field.
func (m Model) submit(value string) (tea.Model, tea.Cmd) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return m, nil
	}
	if trimmed == "/quit" || trimmed == "/exit" {
		return m, tea.Quit
	}

	m.conversation.Append(models.UserMessage(value))
	m.input.Reset()
	m.notice = ""
	m.pending++
	m.refreshViewport()

	cmds := []tea.Cmd{m.ask(value)}
	if m.pending == 1 {
		cmds = append(cmds, m.spinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

// ask returns the command performing one request
func (m Model) ask(prompt string) tea.Cmd {
	ctx, asker := m.ctx, m.asker
	return func() tea.Msg {
		start := time.Now()
		text, err := asker.Ask(ctx, prompt)
		if err != nil {
			return failureMsg{prompt: prompt, err: err}
		}
		return responseMsg{prompt: prompt, text: text, latency: time.Since(start)}
	}
}

func (m *Model) copyLastAnswer() {
	last, ok := m.conversation.Last(models.SenderBot)
	if !ok {
		m.notice = "Nothing to copy yet"
		return
	}
	if err := clipboard.WriteAll(last.Text); err != nil {
		logging.Warn("clipboard copy failed", "session", m.sessionID, "error", err)
		m.notice = "Copy failed"
		return
	}
	m.notice = "Last answer copied"
}

// layout sizes the components for the current window
func (m *Model) layout() {
	headerHeight := 3 // title line plus border
	inputHeight := 3  // input line plus border
	statusHeight := 1
	borderHeight := messagesAreaStyle.GetVerticalFrameSize()

	vpHeight := m.height - headerHeight - inputHeight - statusHeight - borderHeight
	if vpHeight < 3 {
		vpHeight = 3
	}

	vpWidth := m.chatWidth() - messagesAreaStyle.GetHorizontalFrameSize()
	if vpWidth < 10 {
		vpWidth = 10
	}

	if !m.ready {
		m.viewport = viewport.New(vpWidth, vpHeight)
		m.viewport.KeyMap = scrollKeys()
		m.ready = true
	} else {
		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
	}
	m.input.Width = m.width - inputPanelStyle.GetHorizontalFrameSize() - 8
	m.refreshViewport()
}

// scrollKeys keeps letter keys for the input line
func scrollKeys() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
		Up:       key.NewBinding(key.WithKeys("up")),
		Down:     key.NewBinding(key.WithKeys("down")),
	}
}

func (m Model) wide() bool {
	return m.width >= sidePanelMinWidth
}

func (m Model) chatWidth() int {
	if m.wide() {
		return m.width - sidePanelWidth
	}
	return m.width
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(renderConversation(m.conversation.Messages(), m.viewport.Width))
	m.viewport.GotoBottom()
}

// renderConversation lays out the messages in order, each under its sender
// label. Bot text gets one row per line of the answer.
func renderConversation(msgs []models.Message, width int) string {
	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		if msg.Sender == models.SenderBot {
			b.WriteString(botLabelStyle.Render(msg.Sender.Label()))
			for _, line := range msg.Lines() {
				b.WriteString("\n")
				b.WriteString(botLineStyle.Width(width).Render(line))
			}
		} else {
			b.WriteString(userLabelStyle.Render(msg.Sender.Label()))
			b.WriteString("\n")
			b.WriteString(userTextStyle.Width(width).Render(msg.Text))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	chatWidth := m.chatWidth()

	// Header
	headerParts := []string{
		titleStyle.Render("QuizBot"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.endpoint),
	}
	if !m.wide() && m.conversation.Len() > 0 {
		headerParts = append(headerParts, hintStyle.Render("  •  "+instructionHint()))
	}
	header := headerStyle.Width(m.width - headerStyle.GetHorizontalBorderSize()).
		Render(lipgloss.JoinHorizontal(lipgloss.Center, headerParts...))

	// Messages
	var messagesContent string
	if m.conversation.Len() == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	messagesPanel := messagesAreaStyle.
		Width(chatWidth - messagesAreaStyle.GetHorizontalBorderSize()).
		Height(m.viewport.Height).
		Render(messagesContent)

	body := messagesPanel
	if m.wide() {
		side := lipgloss.NewStyle().
			Width(sidePanelWidth).
			Height(lipgloss.Height(messagesPanel)).
			Render(renderInstructions(sidePanelWidth))
		body = lipgloss.JoinHorizontal(lipgloss.Top, side, messagesPanel)
	}

	// Input
	inputContent := lipgloss.JoinHorizontal(
		lipgloss.Left,
		inputLabelStyle.Render(models.SenderUser.Label()),
		m.input.View(),
	)
	inputPanel := inputPanelStyle.Width(m.width - inputPanelStyle.GetHorizontalBorderSize()).Render(inputContent)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, inputPanel, m.renderStatusBar(m.width))
}

// renderWelcome centres the instructions in the empty conversation area
func (m Model) renderWelcome() string {
	content := hintStyle.Render(`Type "Go" and press Enter to start!`)
	if !m.wide() {
		w := m.viewport.Width
		if w > 60 {
			w = 60
		}
		content = renderInstructions(w)
	}
	return lipgloss.Place(m.viewport.Width, m.viewport.Height, lipgloss.Center, lipgloss.Center, content)
}

// renderStatusBar renders the bottom line with shortcuts and activity
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Ctrl+Y", "Copy answer"},
		{"PgUp/PgDn", "Scroll"},
		{"Esc", "Quit"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	bar := strings.Join(items, "  │  ")

	switch {
	case m.pending > 0:
		thinking := "QuizBot is thinking"
		if m.pending > 1 {
			thinking = fmt.Sprintf("QuizBot is thinking (%d)", m.pending)
		}
		bar += "    " + m.spinner.View() + loadingStyle.Render(" "+thinking)
	case m.notice != "":
		bar += "    " + noticeStyle.Render(m.notice)
	}

	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// RunChat starts the chat TUI and blocks until the user quits
func RunChat(ctx context.Context, asker api.QuizAsker, endpoint string) error {
	m := NewChatModel(asker, endpoint)
	m.ctx = ctx

	logging.Info("chat session started", "session", m.sessionID, "endpoint", endpoint)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	logging.Info("chat session ended", "session", m.sessionID, "messages", m.conversation.Len())
	return err
}
