package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"storyweaver/internal/domain"
)

// StoryPort is the TUI-facing subset of the story orchestrator.
type StoryPort interface {
	GenerateStory(ctx context.Context, prompt string, history []domain.ConversationTurn, theme string, storyLength int, language string) domain.StoryResult
}

// Session holds the fixed settings of one interactive storytelling session.
type Session struct {
	Theme       string
	StoryLength int
	Language    string
}

// Model is the Bubble Tea model for the interactive story session.
type Model struct {
	port     StoryPort
	session  Session
	input    textinput.Model
	viewport viewport.Model
	history  []domain.ConversationTurn
	last     *domain.StoryResult
	status   string
	ready    bool
	busy     bool
}

// New creates a new story session model.
func New(port StoryPort, session Session) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "What should the story be about? Press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		port:     port,
		session:  session,
		input:    ti,
		viewport: vp,
		status:   fmt.Sprintf("Theme %q, length %d. Type to begin.", session.Theme, session.StoryLength),
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

type storyMsg struct {
	prompt string
	result domain.StoryResult
}

func (m Model) generateCmd(prompt string) tea.Cmd {
	port, session, history := m.port, m.session, m.history
	return func() tea.Msg {
		res := port.GenerateStory(context.Background(), prompt, history,
			session.Theme, session.StoryLength, session.Language)
		return storyMsg{prompt: prompt, result: res}
	}
}

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around story and input boxes
		_, sh := storyBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		totalHeaderLines := 1
		totalFooterLines := 1
		reserved := totalHeaderLines + totalFooterLines + ih + 1 // 1 spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-sh)
		m.viewport.SetContent(m.renderStory())
		return m, nil
	case storyMsg:
		m.busy = false
		m.history = append(m.history,
			domain.ConversationTurn{Role: domain.RoleUser, Content: msg.prompt},
			domain.ConversationTurn{Role: domain.RoleAssistant, Content: msg.result.Text},
		)
		m.last = &msg.result
		m.status = "What happens next? Type to continue the story."
		m.viewport.SetContent(m.renderStory())
		m.viewport.GotoBottom()
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.busy {
			prompt := strings.TrimSpace(m.input.Value())
			if prompt != "" {
				m.busy = true
				m.status = "Weaving the story..."
				m.input.SetValue("")
				return m, m.generateCmd(prompt)
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and the latest story parts.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Storyweaver")
	story := storyBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + story + "\n" + input + "\n" + status
}

func (m Model) renderStory() string {
	if m.last == nil {
		return "No story yet."
	}
	var b strings.Builder
	parts := []struct {
		name string
		text string
	}{
		{domain.PartBeginning, m.last.Parts.Beginning},
		{domain.PartMiddle, m.last.Parts.Middle},
		{domain.PartEnd, m.last.Parts.End},
	}
	for i, p := range parts {
		if i > 0 {
			b.WriteString("\n\n")
		}
		title := partTitleStyle.Render(capitalize(p.name))
		b.WriteString(title)
		if _, ok := m.last.Images[p.name]; ok {
			b.WriteString(" " + imageNoteStyle.Render("[illustrated]"))
		}
		b.WriteString("\n")
		b.WriteString(p.text)
	}
	return b.String()
}

var (
	storyBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	partTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	imageNoteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
