package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	accentColor = lipgloss.AdaptiveColor{Light: "4", Dark: "12"}
	dimColor    = lipgloss.AdaptiveColor{Light: "240", Dark: "245"}
	errorColor  = lipgloss.AdaptiveColor{Light: "1", Dark: "9"}
	okColor     = lipgloss.AdaptiveColor{Light: "2", Dark: "10"}

	mutedText  = lipgloss.NewStyle().Foreground(dimColor)
	errorText  = lipgloss.NewStyle().Foreground(errorColor)
	okText     = lipgloss.NewStyle().Foreground(okColor)
	headerText = lipgloss.NewStyle().Bold(true)
	activeTab  = lipgloss.NewStyle().Bold(true).Foreground(accentColor).Underline(true)
	brandText  = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
)

// MinContentWidth is the narrowest content area the layout renders into.
const MinContentWidth = 20

// Frame returns the rounded border drawn around page content.
func Frame() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor)
}

// Navbar renders the brand and navbar links, highlighting current.
// Pages outside the navbar highlight nothing.
func Navbar(current Page) string {
	parts := make([]string, 0, len(navPages))
	for i, p := range navPages {
		label := string(rune('1'+i)) + " " + p.Title()
		if p == current {
			parts = append(parts, activeTab.Render(label))
		} else {
			parts = append(parts, mutedText.Render(label))
		}
	}
	return brandText.Render("Anime Blog") + "   " + strings.Join(parts, "  ")
}

// statusLine renders the status text, red for errors.
func statusLine(text string, isErr bool) string {
	if text == "" {
		return ""
	}
	if isErr {
		return errorText.Render(text)
	}
	return okText.Render(text)
}

// truncate shortens s to at most width runes, marking the cut with "…".
func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 {
		return ""
	}
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
