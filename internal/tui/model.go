package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"intentbot/internal/domain"
	"intentbot/internal/preprocess"
)

// AssistantPort is the TUI-facing subset of the assistant service.
type AssistantPort interface {
	Reply(ctx context.Context, conversationID, input string) (domain.Reply, error)
	Explain(input string, topK int) ([]domain.Candidate, error)
}

const explainTopK = 3

// replyMsg carries the outcome of one turn back into the update loop.
type replyMsg struct {
	seq   int
	reply domain.Reply
	err   error
}

// Model is the Bubble Tea model for the chat window.
type Model struct {
	service        AssistantPort
	conversationID string
	input          textinput.Model
	viewport       viewport.Model
	spinner        spinner.Model
	turns          []domain.ConversationTurn
	candidates     []domain.Candidate
	showExplain    bool
	pending        bool
	seq            int
	cancel         context.CancelFunc
	status         string
	ready          bool
	lastQuery      string
}

// New creates a new chat model bound to one conversation.
func New(service AssistantPort, conversationID string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Say something and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		service:        service,
		conversationID: conversationID,
		input:          ti,
		viewport:       vp,
		spinner:        sp,
		status:         "Ready. ctrl+e toggles match details, esc cancels a pending reply.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and reply events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 + explainTopK + 1 // header, status, input box, spacer, explain
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width-4)
		m.viewport.Height = max(3, vh-ch)
		m.refresh()
		return m, nil
	case replyMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.pending = false
		m.cancel = nil
		if msg.err != nil {
			m.status = "Reply discarded: " + msg.err.Error()
		} else {
			m.turns = append(m.turns, domain.ConversationTurn{Text: msg.reply.Text, Sender: domain.SenderAI})
			m.status = describe(msg.reply)
		}
		m.refresh()
		return m, nil
	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.pending {
				return m, nil
			}
			return m.submit(q)
		case "esc":
			if m.pending && m.cancel != nil {
				m.cancel()
			}
			return m, nil
		case "ctrl+e":
			m.showExplain = !m.showExplain
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit records the user turn immediately so history reflects submission
// order, then resolves the reply off the update loop.
func (m Model) submit(q string) (tea.Model, tea.Cmd) {
	m.turns = append(m.turns, domain.ConversationTurn{Text: q, Sender: domain.SenderUser})
	m.input.SetValue("")
	m.lastQuery = q
	if cands, err := m.service.Explain(q, explainTopK); err == nil {
		m.candidates = cands
	} else {
		m.candidates = nil
	}
	m.seq++
	m.pending = true
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.status = "Thinking..."
	m.refresh()

	service, id, seq := m.service, m.conversationID, m.seq
	ask := func() tea.Msg {
		reply, err := service.Reply(ctx, id, q)
		return replyMsg{seq: seq, reply: reply, err: err}
	}
	return m, tea.Batch(ask, m.spinner.Tick)
}

// View renders the conversation, optional match details, input and status.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Assistant")
	chat := chatBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	if m.pending {
		status = m.spinner.View() + " " + status
	}
	parts := []string{header, chat}
	if m.showExplain {
		parts = append(parts, m.renderExplain())
	}
	parts = append(parts, input, status)
	return strings.Join(parts, "\n")
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

func (m Model) renderConversation() string {
	if len(m.turns) == 0 {
		return "No messages yet."
	}
	width := max(10, m.viewport.Width)
	lines := make([]string, 0, len(m.turns))
	for _, t := range m.turns {
		if t.Sender == domain.SenderUser {
			lines = append(lines, userStyle.Width(width).Render("You: "+t.Text))
		} else {
			lines = append(lines, botStyle.Width(width).Render("Bot: "+t.Text))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderExplain() string {
	if len(m.candidates) == 0 {
		return statusStyle.Render("No match details.")
	}
	rows := make([]string, 0, len(m.candidates))
	for i, c := range m.candidates {
		rows = append(rows, fmt.Sprintf("%d. %.3f  %-12s %s", i+1, c.Score, c.Intent, highlightSharedTerms(c.Phrase, m.lastQuery)))
	}
	return strings.Join(rows, "\n")
}

func describe(r domain.Reply) string {
	switch {
	case r.Fallback && r.Reason != nil:
		return "No confident match (" + r.Reason.Error() + ")"
	case r.Fallback:
		return "No confident match"
	case r.Match != nil:
		return fmt.Sprintf("Matched %s via %q (score=%.3f)", r.Intent, r.Match.Phrase, r.Match.Score)
	default:
		return "Matched " + r.Intent
	}
}

var (
	chatBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Align(lipgloss.Right)
	botStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// highlightSharedTerms emphasises the words of phrase that also occur in query.
func highlightSharedTerms(phrase, query string) string {
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return phrase
	}
	words := strings.Fields(phrase)
	for i, w := range words {
		norm := preprocess.Words(w)
		if len(norm) == 1 {
			if _, ok := qTokens[norm[0]]; ok {
				words[i] = highlightStyle.Render(w)
			}
		}
	}
	return strings.Join(words, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := preprocess.Words(s)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}
