package display

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Prompter blocks until the analyst enters one line. io.EOF means the input
// is gone and the session should end.
type Prompter interface {
	Prompt(message string) (string, error)
}

type LinePrompter struct {
	In  *bufio.Reader
	Out io.Writer
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{In: bufio.NewReader(in), Out: out}
}

func (p *LinePrompter) Prompt(message string) (string, error) {
	fmt.Fprintln(p.Out, message)
	line, err := p.In.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// TeaPrompter reads the line through a small bubbletea program, which keeps
// the prompt usable when the terminal is in raw mode.
type TeaPrompter struct {
	In  io.Reader
	Out io.Writer
}

var promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)

type lineModel struct {
	message string
	value   []rune
	done    bool
	aborted bool
}

func (m lineModel) Init() tea.Cmd { return nil }

func (m lineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyEnter:
		m.done = true
		return m, tea.Quit
	case tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc:
		m.aborted = true
		return m, tea.Quit
	case tea.KeyBackspace:
		if len(m.value) > 0 {
			m.value = m.value[:len(m.value)-1]
		}
	case tea.KeySpace:
		m.value = append(m.value, ' ')
	case tea.KeyRunes:
		m.value = append(m.value, key.Runes...)
	}
	return m, nil
}

func (m lineModel) View() string {
	if m.done || m.aborted {
		return ""
	}
	return promptStyle.Render(m.message) + "\n> " + string(m.value)
}

func (p *TeaPrompter) Prompt(message string) (string, error) {
	opts := []tea.ProgramOption{}
	if p.In != nil {
		opts = append(opts, tea.WithInput(p.In))
	}
	if p.Out != nil {
		opts = append(opts, tea.WithOutput(p.Out))
	}
	final, err := tea.NewProgram(lineModel{message: message}, opts...).Run()
	if err != nil {
		return "", err
	}
	m := final.(lineModel)
	if m.aborted {
		return "", io.EOF
	}
	return string(m.value), nil
}
