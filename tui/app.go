// Package tui implements the interactive chat screen: a transcript
// viewport, a prompt textarea, an optional staged image attachment,
// and a history overlay over the stored conversation log.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nachoal/vision-chat-go/chat"
	"github.com/nachoal/vision-chat-go/imaging"
	"github.com/nachoal/vision-chat-go/store"
	"github.com/nachoal/vision-chat-go/tui/styles"
)

// Message represents a chat message in the transcript
type Message struct {
	Role      string
	Content   string
	Timestamp time.Time
}

// Model is the TUI model
type Model struct {
	svc       *chat.Service
	modelName string

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model
	styles   *styles.Styles

	// State
	messages     []Message
	attachment   string
	isProcessing bool
	showHistory  bool
	historyBody  string
	width        int
	height       int
	ready        bool
}

// New creates the chat TUI
func New(svc *chat.Service, modelName string) *Model {
	ta := textarea.New()
	ta.Placeholder = "Enter your prompt..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false) // Enter sends the message

	st := styles.NewStyles(styles.DefaultTheme)

	s := spinner.New(spinner.WithSpinner(spinner.Line))
	s.Style = st.Spinner

	return &Model{
		svc:       svc,
		modelName: modelName,
		textarea:  ta,
		spinner:   s,
		styles:    st,
		messages:  []Message{},
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		textarea.Blink,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-7) // room for header and input
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 7
		}

		m.textarea.SetWidth(msg.Width - 4)
		m.textarea.SetHeight(3)

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlD:
			return m, tea.Quit

		case tea.KeyCtrlL:
			m.messages = []Message{}
			m.viewport.SetContent("")
			return m, nil

		case tea.KeyCtrlH:
			return m.toggleHistory()

		case tea.KeyEnter:
			if !m.isProcessing {
				value := m.textarea.Value()
				m.textarea.Reset()
				if cmd := m.handleInput(value); cmd != nil {
					cmds = append(cmds, cmd)
				}
			}
			return m, tea.Batch(cmds...)

		case tea.KeyCtrlC:
			if m.textarea.Value() != "" {
				m.textarea.Reset()
			} else {
				return m, tea.Quit
			}
		}

	case responseMsg:
		m.isProcessing = false
		if msg.err != nil {
			// Pre-flight failure: nothing was sent or stored
			m.addMessage("error", msg.err.Error())
		} else if msg.result.Err != nil {
			// API failure: the stored record carries the same text
			m.addMessage("error", msg.result.Response)
		} else {
			m.addMessage("assistant", msg.result.Response)
		}
		m.attachment = ""
		m.updateView()

	case historyMsg:
		if msg.err != nil {
			m.addMessage("error", fmt.Sprintf("Error loading history: %v", msg.err))
			m.updateView()
		} else {
			m.showHistory = true
			m.historyBody = msg.body
			m.viewport.SetContent(m.historyBody)
			m.viewport.GotoTop()
		}

	case spinner.TickMsg:
		if m.isProcessing {
			s, cmd := m.spinner.Update(msg)
			m.spinner = s
			cmds = append(cmds, cmd)
		}
	}

	// Handle textarea input
	if !m.isProcessing {
		ta, cmd := m.textarea.Update(msg)
		m.textarea = ta
		cmds = append(cmds, cmd)
	}

	// Handle viewport scrolling
	vp, cmd := m.viewport.Update(msg)
	m.viewport = vp
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if !m.ready {
		return "\nInitializing..."
	}

	var b strings.Builder

	title := "Vision Chat"
	if m.showHistory {
		title = "Vision Chat | Stored Conversations (newest first)"
	}
	header := fmt.Sprintf("%s | Model: %s\n", title, m.modelName)
	b.WriteString(m.styles.Header.Render(header))
	b.WriteString("\n")
	if m.attachment != "" {
		b.WriteString(m.styles.Attachment.Render(fmt.Sprintf("Attached: %s", m.attachment)))
		b.WriteString("\n")
	}
	b.WriteString(strings.Repeat("─", m.width) + "\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.isProcessing {
		b.WriteString(fmt.Sprintf("%s Analyzing...\n", m.spinner.View()))
	} else {
		b.WriteString(m.textarea.View())
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("enter send · /attach <path> · /history (ctrl+h) · /help · ctrl+d quit"))

	return b.String()
}

// handleInput dispatches a submitted line: slash commands run locally,
// anything else goes to the model.
func (m *Model) handleInput(input string) tea.Cmd {
	trimmed := strings.TrimSpace(input)

	if strings.HasPrefix(trimmed, "/") {
		return m.handleCommand(trimmed)
	}

	// Leaving the history overlay happens on any submission
	if m.showHistory {
		m.closeHistory()
	}

	if trimmed == "" && m.attachment == "" {
		m.addMessage("system", "Please provide a prompt or an image.")
		m.updateView()
		return nil
	}

	m.addMessage("user", m.describeSubmission(trimmed))
	m.updateView()
	return m.sendMessage(trimmed)
}

func (m *Model) handleCommand(input string) tea.Cmd {
	cmd, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "/help":
		m.addMessage("system", helpText)
		m.updateView()
	case "/clear":
		m.messages = []Message{}
		m.closeHistory()
		m.viewport.SetContent("")
	case "/attach":
		if rest == "" {
			m.addMessage("system", "Usage: /attach <path-to-png-or-jpeg>")
			m.updateView()
			return nil
		}
		// Decode now so a bad file is reported at attach time
		if _, err := imaging.Load(rest); err != nil {
			m.addMessage("error", fmt.Sprintf("Error reading image: %v", err))
			m.updateView()
			return nil
		}
		m.attachment = rest
		m.addMessage("system", fmt.Sprintf("Image attached: %s", rest))
		m.updateView()
	case "/detach":
		m.attachment = ""
		m.addMessage("system", "Attachment removed.")
		m.updateView()
	case "/history":
		_, cmd := m.toggleHistory()
		return cmd
	case "/quit", "/exit":
		return tea.Quit
	default:
		m.addMessage("system", fmt.Sprintf("Unknown command: %s", cmd))
		m.updateView()
	}
	return nil
}

func (m *Model) toggleHistory() (tea.Model, tea.Cmd) {
	if m.showHistory {
		m.closeHistory()
		m.updateView()
		return m, nil
	}
	return m, m.loadHistory()
}

func (m *Model) closeHistory() {
	m.showHistory = false
	m.historyBody = ""
}

func (m *Model) describeSubmission(prompt string) string {
	if m.attachment == "" {
		return prompt
	}
	if prompt == "" {
		return fmt.Sprintf("[image: %s]", m.attachment)
	}
	return fmt.Sprintf("%s [image: %s]", prompt, m.attachment)
}

func (m *Model) addMessage(role, content string) {
	m.messages = append(m.messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
}

func (m *Model) updateView() {
	var content strings.Builder

	for _, msg := range m.messages {
		switch msg.Role {
		case "user":
			content.WriteString("\n" + m.styles.UserMessage.Render("> "+msg.Content) + "\n")
		case "assistant":
			content.WriteString("\n" + m.styles.AssistantMessage.Render(msg.Content) + "\n")
		case "system":
			content.WriteString("\n" + m.styles.SystemMessage.Render("["+msg.Content+"]") + "\n")
		case "error":
			content.WriteString("\n" + m.styles.ErrorMessage.Render(msg.Content) + "\n")
		}
	}

	m.viewport.SetContent(content.String())
	m.viewport.GotoBottom()
}

func (m *Model) sendMessage(prompt string) tea.Cmd {
	m.isProcessing = true
	imagePath := m.attachment

	return func() tea.Msg {
		result, err := m.svc.Ask(context.Background(), prompt, imagePath)
		return responseMsg{result: result, err: err}
	}
}

func (m *Model) loadHistory() tea.Cmd {
	return func() tea.Msg {
		recs, err := m.svc.History()
		if err != nil {
			return historyMsg{err: err}
		}
		return historyMsg{body: renderHistory(recs, m.styles)}
	}
}

// renderHistory formats stored records newest-first. Image blobs are
// decoded for their dimensions; blobs that fail to decode are skipped
// without comment.
func renderHistory(recs []store.Conversation, st *styles.Styles) string {
	if len(recs) == 0 {
		return st.SystemMessage.Render("No conversations found.")
	}

	var b strings.Builder
	for i, rec := range recs {
		b.WriteString(st.HistoryTitle.Render(fmt.Sprintf("%d. %s", i+1, rec.Timestamp)))
		b.WriteString("\n")
		b.WriteString(st.HistoryEntry.Render("You: " + rec.UserPrompt))
		b.WriteString("\n")
		if rec.Base64Image != "" {
			if img, err := imaging.DecodeBase64(rec.Base64Image); err == nil {
				bounds := img.Bounds()
				b.WriteString(st.ImageMarker.Render(fmt.Sprintf("[image %dx%d]", bounds.Dx(), bounds.Dy())))
				b.WriteString("\n")
			}
		}
		b.WriteString(st.HistoryEntry.Render("Bot: " + rec.BotResponse))
		b.WriteString("\n")
		if i < len(recs)-1 {
			b.WriteString(st.SystemMessage.Render("---"))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Message types
type responseMsg struct {
	result *chat.Result
	err    error
}

type historyMsg struct {
	body string
	err  error
}

const helpText = `Available commands:
/help            - Show this help message
/attach <path>   - Attach a PNG or JPEG to the next message
/detach          - Remove the current attachment
/history         - Browse stored conversations (newest first)
/clear           - Clear the transcript
/quit            - Exit application`
