package resume

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

//go:embed templates/resume.html.tmpl
var templateFS embed.FS

var htmlTemplate = template.Must(template.ParseFS(templateFS, "templates/resume.html.tmpl"))

// Markdown renders v as a Markdown document.
func (v View) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", escapeMarkdown(v.Name))
	fmt.Fprintf(&b, "%s\n\n---\n", escapeMarkdown(v.ContactLine))
	for _, s := range v.Sections {
		fmt.Fprintf(&b, "\n## %s\n\n", s.Title)
		for _, it := range s.Items {
			if it.Value == "" {
				continue
			}
			fmt.Fprintf(&b, "- **%s:** %s\n", it.Label, markdownLines(it.Value))
		}
		if s.Body != "" {
			if len(s.Items) > 0 {
				b.WriteString("\n")
			}
			b.WriteString(markdownLines(s.Body))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// escapeMarkdown neutralizes characters that would otherwise start emphasis
// or headings inside user-entered text.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `_`, `\_`, `#`, `\#`, "`", "\\`")
	return r.Replace(s)
}

// markdownLines keeps the user's line breaks as hard breaks.
func markdownLines(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, l := range lines {
		lines[i] = escapeMarkdown(strings.TrimRight(l, " "))
	}
	return strings.Join(lines, "  \n")
}

// PlainText renders v without markup, suitable for a line printer.
func (v View) PlainText() string {
	var b strings.Builder
	b.WriteString(v.Name + "\n")
	b.WriteString(v.ContactLine + "\n")
	b.WriteString(rule("=", max(lipgloss.Width(v.ContactLine), lipgloss.Width(v.Name))) + "\n")

	width := 0
	for _, s := range v.Sections {
		for _, it := range s.Items {
			width = max(width, lipgloss.Width(it.Label))
		}
	}
	for _, s := range v.Sections {
		fmt.Fprintf(&b, "\n%s\n%s\n", s.Title, rule("-", lipgloss.Width(s.Title)))
		for _, it := range s.Items {
			if it.Value == "" {
				continue
			}
			indent := strings.Repeat(" ", width+2)
			value := strings.ReplaceAll(it.Value, "\n", "\n"+indent)
			pad := strings.Repeat(" ", width-lipgloss.Width(it.Label))
			fmt.Fprintf(&b, "%s%s  %s\n", it.Label, pad, value)
		}
		if s.Body != "" {
			b.WriteString(s.Body + "\n")
		}
	}
	return b.String()
}

// rule repeats ch to cover n terminal cells.
func rule(ch string, n int) string { return strings.Repeat(ch, n) }

// HTML renders v as a standalone HTML page laid out for A4 printing.
func (v View) HTML() (string, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("resume: rendering html: %w", err)
	}
	return buf.String(), nil
}

// Terminal renders v for a terminal of the given width using glamour.
// It falls back to PlainText when the renderer cannot be built.
func (v View) Terminal(width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return v.PlainText()
	}
	out, err := r.Render(v.Markdown())
	if err != nil {
		return v.PlainText()
	}
	return out
}
