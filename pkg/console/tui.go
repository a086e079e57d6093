package console

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// maxLogLines bounds the scrollback kept by the terminal UI.
const maxLogLines = 1000

// lineMsg carries one rendered bridge notification.
type lineMsg string

// resultMsg carries the outcome of a command.
type resultMsg struct {
	input string
	out   string
	err   error
}

// model is the bubbletea state of the terminal UI.
type model struct {
	viewport viewport.Model
	input    textinput.Model

	ctx       context.Context
	commander *Commander
	queue     *Queue

	lines []string
	busy  bool

	width  int
	height int
	ready  bool
}

func newModel(ctx context.Context, commander *Commander, queue *Queue) *model {
	in := textinput.New()
	in.Placeholder = "open https://example.com"
	in.Prompt = promptStyle.Render("> ")
	in.Focus()

	return &model{
		viewport:  viewport.New(80, 20),
		input:     in,
		ctx:       ctx,
		commander: commander,
		queue:     queue,
		lines:     []string{tipsStyle.Render("Type help for commands, quit or ctrl+c to exit.")},
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForLine(m.queue))
}

func waitForLine(q *Queue) tea.Cmd {
	return func() tea.Msg {
		return lineMsg(<-q.C())
	}
}

func (m *model) run(input string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.commander.Execute(m.ctx, input)
		return resultMsg{input: input, out: out, err: err}
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-lipgloss.Height(m.footer())-1)
		m.input.Width = max(10, msg.Width-8)
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			input := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if input == "" {
				return m, nil
			}
			m.busy = true
			m.append(promptStyle.Render("> ") + input)
			return m, m.run(input)
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case lineMsg:
		m.append(string(msg))
		return m, waitForLine(m.queue)

	case resultMsg:
		m.busy = false
		if errors.Is(msg.err, ErrQuit) {
			return m, tea.Quit
		}
		if msg.err != nil {
			m.append(errorStyle.Render("error: " + msg.err.Error()))
		} else if msg.out != "" {
			m.append(msg.out)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) append(text string) {
	m.lines = append(m.lines, strings.Split(text, "\n")...)
	if over := len(m.lines) - maxLogLines; over > 0 {
		m.lines = m.lines[over:]
	}
	m.refresh()
}

func (m *model) refresh() {
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func (m *model) footer() string {
	status := "ready"
	if m.busy {
		status = "working..."
	}
	if n := m.queue.Dropped(); n > 0 {
		status += fmt.Sprintf(" · %d events dropped", n)
	}
	return inputBoxStyle.Render(m.input.View()) + "\n" + statusBarStyle.Render(status)
}

func (m *model) View() string {
	if !m.ready {
		return "Starting..."
	}
	header := headerStyle.Render("tabbridge")
	return header + "\n" + m.viewport.View() + "\n" + m.footer()
}

// RunTUI runs the full-screen terminal UI until the user quits or ctx is done.
func RunTUI(ctx context.Context, commander *Commander, queue *Queue) error {
	program := tea.NewProgram(
		newModel(ctx, commander, queue),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to run TUI program: %w", err)
	}
	return nil
}
