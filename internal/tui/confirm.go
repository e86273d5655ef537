package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type confirmKeyMap struct {
	Yes key.Binding
	No  key.Binding
}

var confirmKeys = confirmKeyMap{
	Yes: key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
	No:  key.NewBinding(key.WithKeys("n", "N", "esc", "enter", "q", "ctrl+c"), key.WithHelp("n", "no")),
}

type confirmModel struct {
	prompt    string
	confirmed bool
	done      bool
}

func (m *confirmModel) Init() tea.Cmd { return nil }

func (m *confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, confirmKeys.Yes):
		m.confirmed = true
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, confirmKeys.No):
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *confirmModel) View() string {
	if m.done {
		return ""
	}
	help := helpStyle.Render(fmt.Sprintf("%s %s | %s %s",
		confirmKeys.Yes.Help().Key, confirmKeys.Yes.Help().Desc,
		confirmKeys.No.Help().Key, confirmKeys.No.Help().Desc))
	return lipgloss.JoinVertical(lipgloss.Left, warningStyle.Render(m.prompt), help) + "\n"
}

var warningStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("161"))

// Confirm asks a yes/no question. Anything but y counts as no.
func Confirm(prompt string) (bool, error) {
	finalModel, err := runProgram(&confirmModel{prompt: prompt})
	if err != nil {
		return false, err
	}

	if typed, ok := finalModel.(*confirmModel); ok {
		return typed.confirmed, nil
	}
	return false, fmt.Errorf("unexpected program result")
}
