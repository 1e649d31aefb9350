package dashboard

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/otakublog/internal/contact"
)

// CursorMarker is the prefix shown on the selected row.
const CursorMarker = "▸ "

// PageSizes lists the selectable rows per page.
var PageSizes = []int{5, 10, 25}

// contactsState manages the contacts table: records, cursor and paging.
type contactsState struct {
	records  []contact.Record
	cursor   int
	pageSize int
}

// newContactsState returns an empty table with pageSize rows per page.
// Unsupported sizes fall back to the first of PageSizes.
func newContactsState(pageSize int) contactsState {
	cs := contactsState{pageSize: PageSizes[0]}
	for _, s := range PageSizes {
		if s == pageSize {
			cs.pageSize = s
		}
	}
	return cs
}

// setRecords replaces the rows, keeping the cursor in range.
func (cs contactsState) setRecords(recs []contact.Record) contactsState {
	cs.records = recs
	if cs.cursor >= len(recs) {
		cs.cursor = len(recs) - 1
	}
	if cs.cursor < 0 {
		cs.cursor = 0
	}
	return cs
}

// page returns the zero-based page holding the cursor.
func (cs contactsState) page() int { return cs.cursor / cs.pageSize }

// pageCount returns the number of pages, at least 1.
func (cs contactsState) pageCount() int {
	if len(cs.records) == 0 {
		return 1
	}
	return (len(cs.records) + cs.pageSize - 1) / cs.pageSize
}

// Update processes key messages for the table.
func (cs contactsState) Update(msg tea.Msg) (contactsState, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		return cs.handleKey(msg)
	}
	return cs, nil
}

func (cs contactsState) handleKey(msg tea.KeyMsg) (contactsState, tea.Cmd) {
	n := len(cs.records)
	switch msg.String() {
	case "up", "k":
		if n > 0 {
			cs.cursor--
			if cs.cursor < 0 {
				cs.cursor = n - 1
			}
		}
		return cs, nil

	case "down", "j":
		if n > 0 {
			cs.cursor++
			if cs.cursor >= n {
				cs.cursor = 0
			}
		}
		return cs, nil

	case "left", "h", "pgup":
		if p := cs.page(); p > 0 {
			cs.cursor = (p - 1) * cs.pageSize
		}
		return cs, nil

	case "right", "l", "pgdown":
		if next := (cs.page() + 1) * cs.pageSize; next < n {
			cs.cursor = next
		}
		return cs, nil

	case "r":
		cs.pageSize = contact.Next(PageSizes, cs.pageSize)
		return cs, nil

	case "n":
		return cs, func() tea.Msg { return NewContactMsg{} }
	}

	id := cs.SelectedID()
	if id == "" {
		return cs, nil
	}
	switch msg.String() {
	case "e":
		return cs, func() tea.Msg { return EditContactMsg{ID: id} }
	case "d":
		return cs, func() tea.Msg { return DeleteContactMsg{ID: id} }
	case "v", "enter":
		return cs, func() tea.Msg { return ViewResumeMsg{ID: id} }
	}
	return cs, nil
}

// SelectedID returns the record ID under the cursor, or "" when empty.
func (cs contactsState) SelectedID() string {
	if cs.cursor < 0 || cs.cursor >= len(cs.records) {
		return ""
	}
	return cs.records[cs.cursor].ID
}

// column widths for the fixed columns; the name column takes the rest.
const (
	colEmail  = 26
	colMobile = 12
	colStatus = 20
	colCourse = 16
	minName   = 12
)

// View renders the table for the given dimensions.
func (cs contactsState) View(width, height int) string {
	if len(cs.records) == 0 {
		return "No contacts yet. Press n to add one."
	}

	marker := lipgloss.Width(CursorMarker)
	nameWidth := width - marker - colEmail - colMobile - colStatus - colCourse - 4
	showWide := nameWidth >= minName
	if !showWide {
		nameWidth = max(width-marker-colMobile-1, minName)
	}

	row := func(name, email, mobile, status, course string) string {
		if !showWide {
			return fmt.Sprintf("%-*s %-*s", nameWidth, truncate(name, nameWidth), colMobile, mobile)
		}
		return fmt.Sprintf("%-*s %-*s %-*s %-*s %s",
			nameWidth, truncate(name, nameWidth),
			colEmail, truncate(email, colEmail),
			colMobile, truncate(mobile, colMobile),
			colStatus, truncate(status, colStatus),
			truncate(course, colCourse))
	}

	var b strings.Builder
	b.WriteString("  " + headerText.Render(row("Name", "Email", "Mobile", "Status", "Course")))

	start := cs.page() * cs.pageSize
	end := min(start+cs.pageSize, len(cs.records))
	for i := start; i < end; i++ {
		r := cs.records[i]
		b.WriteByte('\n')
		if i == cs.cursor {
			b.WriteString(CursorMarker)
		} else {
			b.WriteString("  ")
		}
		b.WriteString(row(r.FullName(), r.Email, r.MobileNumber, r.Status.Label(), r.Course.Label()))
	}

	fmt.Fprintf(&b, "\n\n%s", mutedText.Render(fmt.Sprintf(
		"Rows per page: %d   %d-%d of %d   page %d/%d",
		cs.pageSize, start+1, end, len(cs.records), cs.page()+1, cs.pageCount())))
	return b.String()
}
