// Package tui provides interactive terminal UI components.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/bookcatalog/internal/catalog"
)

const (
	defaultListWidth  = 72
	defaultListHeight = 20
)

var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m).Run()
}

// SelectionAction represents the user's action in the selection UI.
type SelectionAction int

const (
	// ActionNone indicates no action was taken.
	ActionNone SelectionAction = iota
	// ActionSelected indicates the user selected an item.
	ActionSelected
	// ActionSkipped indicates the user skipped the selection.
	ActionSkipped
	// ActionStopped indicates the user stopped processing entirely.
	ActionStopped
)

// Copy is one book in a group of duplicates together with its metadata score.
type Copy struct {
	Book  catalog.Book
	Score int
}

// SelectionResult holds the result of a TUI selection.
type SelectionResult struct {
	Action SelectionAction
	Keeper *catalog.Book
}

type copyItem struct {
	Copy
}

func (i copyItem) Title() string {
	return fmt.Sprintf("#%d %s", i.Book.ID, i.Book.Title)
}

func (i copyItem) FilterValue() string {
	return i.Book.Title
}

func (i copyItem) Description() string {
	return i.Book.Author
}

type itemStyles struct {
	normal        lipgloss.Style
	selected      lipgloss.Style
	titleStyle    lipgloss.Style
	scoreStyle    lipgloss.Style
	metadataStyle lipgloss.Style
}

func newItemStyles() itemStyles {
	asciiBorder := lipgloss.Border{
		Top:         "-",
		Bottom:      "-",
		Left:        "|",
		Right:       "|",
		TopLeft:     "+",
		TopRight:    "+",
		BottomLeft:  "+",
		BottomRight: "+",
	}

	container := lipgloss.NewStyle().
		Border(asciiBorder).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		Foreground(lipgloss.Color("252"))

	selected := container.Copy().
		BorderForeground(lipgloss.Color("214")).
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("237"))

	return itemStyles{
		normal:   container,
		selected: selected,
		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("254")),
		scoreStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("178")),
		metadataStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("247")).
			Faint(true),
	}
}

type copyDelegate struct {
	styles itemStyles
}

func newDelegate() copyDelegate {
	return copyDelegate{styles: newItemStyles()}
}

func (d copyDelegate) Height() int                         { return 4 }
func (d copyDelegate) Spacing() int                        { return 1 }
func (d copyDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d copyDelegate) Render(w io.Writer, m list.Model, idx int, item list.Item) {
	c, ok := item.(copyItem)
	if !ok {
		return
	}

	titleLine := d.styles.titleStyle.Render(truncate(c.Title(), m.Width()-4))
	authorLine := d.styles.metadataStyle.Render(truncate(c.Book.Author, m.Width()-4))
	metadataLine := d.styles.metadataStyle.Render(formatMetadata(c.Book, m.Width()-4))
	scoreLine := d.styles.scoreStyle.Render(fmt.Sprintf("score %d", c.Score))

	content := lipgloss.JoinVertical(lipgloss.Left, titleLine, authorLine, metadataLine, scoreLine)

	container := d.styles.normal
	if idx == m.Index() {
		container = d.styles.selected
	}
	_, _ = fmt.Fprint(w, container.Render(content))
}

type model struct {
	list   list.Model
	title  string
	result SelectionResult
}

func newModel(title string, items []copyItem) *model {
	listItems := make([]list.Item, len(items))
	for i, item := range items {
		listItems[i] = item
	}

	l := list.New(listItems, newDelegate(), defaultListWidth, defaultListHeight)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetShowPagination(false)
	l.DisableQuitKeybindings()
	l.Styles.NoItems = lipgloss.NewStyle()

	return &model{
		list:   l,
		title:  title,
		result: SelectionResult{Action: ActionNone},
	}
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if selected, ok := m.list.SelectedItem().(copyItem); ok {
				book := selected.Book
				m.result = SelectionResult{Action: ActionSelected, Keeper: &book}
				return m, tea.Quit
			}
		case "s", "esc":
			m.result = SelectionResult{Action: ActionSkipped}
			return m, tea.Quit
		case "ctrl+c", "q":
			m.result = SelectionResult{Action: ActionStopped}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		width := clamp(defaultListWidth, msg.Width-4, 40)
		height := clamp(defaultListHeight, msg.Height-6, 5)
		m.list.SetSize(width, height)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *model) View() string {
	header := headerStyle.Render(fmt.Sprintf("Duplicates of: %s", m.title))
	help := helpStyle.Render("Up/Down navigate | Enter keep this copy | s skip | q stop")
	return lipgloss.JoinVertical(lipgloss.Left, header, m.list.View(), help)
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(lipgloss.Color("244"))
)

// SelectKeeper lets the user pick which copy of a duplicated book survives.
// Copies are shown in the order given; the first one is preselected.
func SelectKeeper(title string, copies []Copy) (SelectionResult, error) {
	if len(copies) == 0 {
		return SelectionResult{Action: ActionSkipped}, nil
	}

	items := make([]copyItem, len(copies))
	for i, c := range copies {
		items[i] = copyItem{Copy: c}
	}

	finalModel, err := runProgram(newModel(title, items))
	if err != nil {
		return SelectionResult{}, err
	}

	if typed, ok := finalModel.(*model); ok {
		return typed.result, nil
	}

	return SelectionResult{}, fmt.Errorf("unexpected program result")
}

func truncate(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	if width <= 0 || len(value) <= width {
		return value
	}
	if width <= 3 {
		return value[:width]
	}
	return value[:width-3] + "..."
}

// formatMetadata summarises what metadata a copy carries
func formatMetadata(b catalog.Book, availableWidth int) string {
	var parts []string

	if b.PageCount > 0 {
		parts = append(parts, fmt.Sprintf("%d pages", b.PageCount))
	}
	if len(b.Themes) > 0 {
		parts = append(parts, strings.Join(b.Themes, ","))
	}
	if b.CoverURL != "" {
		parts = append(parts, "cover")
	}
	if b.Summary != "" {
		parts = append(parts, "summary")
	}
	if b.IsRecommended {
		parts = append(parts, "recommended")
	}

	if len(parts) == 0 {
		return "No metadata"
	}

	return truncate(strings.Join(parts, " | "), availableWidth)
}

func clamp(defaultValue, available, minimum int) int {
	width := defaultValue
	if available > 0 && available < defaultValue {
		width = available
	}
	if width < minimum {
		width = minimum
	}
	return width
}
