package tui

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/gemchat/internal/chat"
	"github.com/diogo/gemchat/internal/config"
	"github.com/diogo/gemchat/internal/models"
	"github.com/diogo/gemchat/internal/render"
)

// StartFunc creates the session handle during bootstrap. It runs off the UI
// loop, so it may block on network calls.
type StartFunc func() (chat.Streamer, error)

// Internal messages
type (
	bootstrapDoneMsg struct{}
	submitDoneMsg    struct{}
	stateChangedMsg  struct{}
)

// Model is the bubbletea model for the chat view. All conversation state
// lives in the controller; the model only holds presentation concerns.
type Model struct {
	controller *chat.Controller
	updates    chan struct{}
	start      StartFunc

	modelName string
	markdown  config.MarkdownConfig
	autoCopy  bool

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	booting bool
	ready   bool
	notice  string

	width  int
	height int
}

// NewChatModel creates the chat view. The session handle is created later by
// the bootstrap command; until then sending is disabled.
func NewChatModel(start StartFunc, modelName string, cfg config.Config) Model {
	updates := make(chan struct{}, 1)
	controller := chat.NewController(chat.WithNotify(func() {
		select {
		case updates <- struct{}{}:
		default:
		}
	}))

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

	return Model{
		controller: controller,
		updates:    updates,
		start:      start,
		modelName:  modelName,
		markdown:   cfg.Markdown,
		autoCopy:   cfg.CopyToClipboard,
		textarea:   ta,
		spinner:    s,
		booting:    true,
	}
}

// Init starts the bootstrap and the state-change relay
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.bootstrapCmd(),
		m.waitForUpdate(),
	)
}

// bootstrapCmd creates the session handle off the UI loop. Failures surface
// through the controller's error banner, never as a crash.
func (m Model) bootstrapCmd() tea.Cmd {
	return func() tea.Msg {
		m.controller.Bootstrap(m.start)
		return bootstrapDoneMsg{}
	}
}

// waitForUpdate relays controller state changes into the UI loop. It re-arms
// itself after every message.
func (m Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		<-m.updates
		return stateChangedMsg{}
	}
}

// submitCmd runs one submission cycle. It blocks for the whole stream;
// incremental repaints arrive through the update relay.
func (m Model) submitCmd(text string) tea.Cmd {
	return func() tea.Msg {
		// Guard errors (busy, no session) are already reflected in the UI
		_ = m.controller.Submit(text)
		return submitDoneMsg{}
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	state := m.controller.State()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		m.notice = ""

		switch msg.String() {
		case "ctrl+c":
			m.controller.Cancel()
			return m, tea.Quit

		case "esc":
			if state.Streaming {
				m.controller.Cancel()
			} else {
				return m, tea.Quit
			}

		case "ctrl+y":
			if text := lastReply(state); text != "" {
				if err := clipboard.WriteAll(text); err == nil {
					m.notice = "Copied last reply"
				}
			}

		case "enter":
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				break
			}
			if input == "exit" || input == "quit" || input == "/exit" || input == "/quit" {
				return m, tea.Quit
			}
			if m.booting || !state.CanSend {
				break
			}

			m.textarea.Reset()
			return m, tea.Batch(
				m.submitCmd(input),
				m.spinner.Tick,
			)
		}

	case bootstrapDoneMsg:
		m.booting = false
		m.refreshViewport(m.controller.State())

	case stateChangedMsg:
		m.refreshViewport(m.controller.State())
		m.viewport.GotoBottom()
		cmds = append(cmds, m.waitForUpdate())

	case submitDoneMsg:
		state = m.controller.State()
		m.refreshViewport(state)
		m.viewport.GotoBottom()
		if m.autoCopy {
			if text := lastReply(state); text != "" {
				_ = clipboard.WriteAll(text)
			}
		}

	case spinner.TickMsg:
		if state.Streaming || m.booting {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	// Only pass key events to the textarea to prevent escape sequence leaks
	if !state.Streaming && !m.booting {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) resize() {
	headerHeight := 4
	inputHeight := 6
	statusHeight := 1
	padding := 2

	vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
	if vpHeight < 5 {
		vpHeight = 5
	}
	contentWidth := m.width - 4

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth - 4)
	m.refreshViewport(m.controller.State())
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	state := m.controller.State()
	contentWidth := m.width - 4
	var sections []string

	header := headerStyle.Width(contentWidth).Render(
		lipgloss.JoinHorizontal(
			lipgloss.Center,
			titleStyle.Render("✦ Gemini Chat"),
			hintStyle.Render("  •  "),
			subtitleStyle.Render(m.modelName),
		),
	)
	sections = append(sections, header)

	var messagesContent string
	if len(state.Messages) == 0 {
		messagesContent = m.renderWelcome(state)
	} else {
		messagesContent = m.viewport.View()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent))

	var inputContent string
	switch {
	case m.booting:
		inputContent = loadingStyle.Render(m.spinner.View() + " Connecting...")
	case state.Streaming:
		inputContent = loadingStyle.Render(m.spinner.View()+" Gemini is thinking") +
			hintStyle.Render("   Esc to stop")
	case !state.CanSend:
		inputContent = hintStyle.Render("Sending is disabled")
	default:
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth, state))

	if state.Err != "" {
		sections = append(sections, bannerStyle.Width(contentWidth).Render("⚠ "+state.Err))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderWelcome(state chat.State) string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	subtitleText := "Start a conversation by typing a message below"
	if !state.CanSend && !m.booting {
		subtitleText = "No session available"
	}

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		welcomeIconStyle.Width(width).Render("✦"),
		"",
		welcomeTitleStyle.Width(width).Render("Welcome to Gemini Chat"),
		"",
		welcomeStyle.Width(width).Render(subtitleText),
		"",
	)

	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

func (m Model) renderStatusBar(width int, state chat.State) string {
	if m.notice != "" {
		return statusBarStyle.Width(width).Align(lipgloss.Center).Render(
			statusDescStyle.Render(m.notice),
		)
	}

	escDesc := "Quit"
	if state.Streaming {
		escDesc = "Stop"
	}
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Esc", escDesc},
		{"Ctrl+Y", "Copy reply"},
		{"↑↓", "Scroll"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(
		strings.Join(items, "  │  "),
	)
}

// refreshViewport rebuilds the viewport content from a conversation snapshot
func (m *Model) refreshViewport(state chat.State) {
	if !m.ready {
		return
	}

	bubbleWidth := m.viewport.Width - 6
	var content strings.Builder

	for i, msg := range state.Messages {
		if i > 0 {
			content.WriteString("\n")
		}

		if msg.Role == models.RoleUser {
			content.WriteString(userLabelStyle.Render("⬤ " + msg.Role.DisplayName()))
			content.WriteString("\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(msg.Text))
		} else {
			content.WriteString(modelLabelStyle.Render("✦ " + msg.Role.DisplayName()))
			content.WriteString("\n")
			content.WriteString(modelBubbleStyle.Width(bubbleWidth).Render(m.renderReply(msg, bubbleWidth-4)))
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// renderReply formats a model record. Streaming records are shown as plain
// text with a cursor; terminal records get full markdown rendering.
func (m Model) renderReply(msg models.Message, width int) string {
	if msg.Streaming {
		return msg.Text + "▌"
	}

	rendered, err := render.Markdown(msg.Text, render.FromConfig(m.markdown, width))
	if err != nil {
		return msg.Text
	}
	return strings.TrimRight(rendered, "\n")
}

// lastReply returns the text of the newest terminal model record
func lastReply(state chat.State) string {
	for i := len(state.Messages) - 1; i >= 0; i-- {
		msg := state.Messages[i]
		if msg.Role == models.RoleModel && !msg.Streaming {
			return msg.Text
		}
	}
	return ""
}

// Run starts the chat TUI and blocks until the user quits
func Run(start StartFunc, modelName string, cfg config.Config) error {
	p := tea.NewProgram(
		NewChatModel(start, modelName, cfg),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
