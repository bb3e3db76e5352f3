package tui

import (
	"fmt"
	"strings"

	"insightcast/internal/core"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// item is one insight row: the category it was found under and the section.
type item struct {
	category core.Category
	section  core.Section
}

// model browses an insight set: a list of sections on the left, the selected
// section's content on the right.
type model struct {
	selection   string
	items       []item
	selectedIdx int
	width       int
	height      int
	quitting    bool
}

// newModel flattens the set in category order.
func newModel(selection string, set core.InsightSet) model {
	m := model{selection: selection, width: 100, height: 30}
	for _, c := range core.Categories() {
		for _, s := range set.Get(c) {
			m.items = append(m.items, item{category: c, section: s})
		}
	}
	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model accordingly.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.selectedIdx > 0 {
				m.selectedIdx--
			}
		case "down", "j":
			if m.selectedIdx < len(m.items)-1 {
				m.selectedIdx++
			}
		case "home", "g":
			m.selectedIdx = 0
		case "end", "G":
			if len(m.items) > 0 {
				m.selectedIdx = len(m.items) - 1
			}
		}
	}

	return m, nil
}

var (
	docStyle      = lipgloss.NewStyle().Margin(1, 2)
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// View renders the TUI.
func (m model) View() string {
	if m.quitting {
		return ""
	}

	paneWidth := max(m.width/2-5, 20)
	listStyle := lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(0, 1).Width(paneWidth)
	detailStyle := lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(0, 1).Width(paneWidth)

	var list strings.Builder
	if len(m.items) == 0 {
		list.WriteString("No insights found for this selection.")
	}
	var current core.Category
	for i, it := range m.items {
		if it.category != current {
			current = it.category
			list.WriteString(categoryStyle.Render(strings.ToUpper(string(current))) + "\n")
		}
		line := fmt.Sprintf("  %s p.%d", it.section.DocumentName, it.section.PageNumber)
		if i == m.selectedIdx {
			line = cursorStyle.Render("> " + strings.TrimPrefix(line, "  "))
		}
		list.WriteString(line + "\n")
	}

	detail := "Select a section."
	if m.selectedIdx < len(m.items) {
		s := m.items[m.selectedIdx].section
		title := s.SectionTitle
		if path := s.PathString(); path != "" {
			title = path
		}
		detail = headerStyle.Render(title) + "\n" +
			categoryStyle.Render(fmt.Sprintf("%s · page %d · %s", s.DocumentName, s.PageNumber, m.items[m.selectedIdx].category.Singular())) +
			"\n\n" + s.OriginalContent
	}

	header := headerStyle.Render("Insights for: ") + truncate(m.selection, m.width-20)
	panes := lipgloss.JoinHorizontal(lipgloss.Top, listStyle.Render(list.String()), detailStyle.Render(detail))
	help := helpStyle.Render("[↑/k] Up | [↓/j] Down | [g/G] Top/Bottom | [q] Quit")

	return docStyle.Render(header + "\n\n" + panes + "\n" + help)
}

func truncate(s string, n int) string {
	n = max(n, 10)
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "…"
	}
	return s
}

// Browse opens an interactive browser over an insight set and blocks until
// the user quits.
func Browse(selection string, set core.InsightSet) error {
	p := tea.NewProgram(newModel(selection, set), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
