package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"insightcast/internal/core"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	sectionStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).PaddingLeft(1).MarginBottom(1)
	hostStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	analystStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	emptyStyle   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("8"))
)

const contentPreview = 400

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderSections(w io.Writer, title string, sections []core.Section) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s (%d)", title, len(sections))))
	if len(sections) == 0 {
		fmt.Fprintln(w, emptyStyle.Render("  nothing found"))
		fmt.Fprintln(w)
		return
	}
	for i, s := range sections {
		header := fmt.Sprintf("%d. %s · page %d", i+1, s.DocumentName, s.PageNumber)
		if path := s.PathString(); path != "" {
			header += " · " + path
		} else if s.SectionTitle != "" {
			header += " · " + s.SectionTitle
		}
		body := labelStyle.Render(header) + "\n" + truncate(s.OriginalContent, contentPreview)
		fmt.Fprintln(w, sectionStyle.Render(body))
	}
}

func renderConversation(w io.Writer, persona core.Persona, conv core.Conversation) {
	fmt.Fprintln(w, titleStyle.Render("Podcast · "+string(persona)))
	for i, line := range conv {
		style := hostStyle
		if i%2 == 1 {
			style = analystStyle
		}
		fmt.Fprintf(w, "%s %s\n", style.Render(conv.Speaker(i)+":"), line)
	}
	fmt.Fprintln(w)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "…"
	}
	return s
}
