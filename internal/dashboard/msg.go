// Package dashboard implements the terminal UI: a navbar over the Home, About
// and Contacts pages, the contact form and the resume view.
package dashboard

import (
	"context"

	"github.com/smileynet/otakublog/internal/contact"
	"github.com/smileynet/otakublog/internal/resume"
)

// Page identifies the screen being shown.
type Page int

const (
	PageHome     Page = iota // Anime catalog.
	PageAbout                // About page.
	PageContacts             // Contacts table.
	PageForm                 // Add or edit a contact.
	PageResume               // Resume of the selected contact.
)

// navPages lists the pages reachable from the navbar, in order.
var navPages = []Page{PageHome, PageAbout, PageContacts}

// Title returns the navbar label for p.
func (p Page) Title() string {
	switch p {
	case PageHome:
		return "Home"
	case PageAbout:
		return "About"
	case PageContacts:
		return "Contacts"
	case PageForm:
		return "Contact Form"
	case PageResume:
		return "Resume"
	}
	return "?"
}

// --- Consumer-side interfaces ---

// RecordStore is the part of the record store the dashboard reads and
// deletes through. Adds and updates go through the form controller.
type RecordStore interface {
	List() []contact.Record
	Get(id string) (contact.Record, bool)
	Remove(id string) bool
	PersistErr() error
}

// Exporter writes a resume to dst, falling back to printing.
type Exporter interface {
	Export(ctx context.Context, v resume.View, dst string) (resume.Result, error)
}

// --- tea.Msg types ---

// ExportDoneMsg carries the result of an asynchronous export.
type ExportDoneMsg struct {
	Name   string
	Result resume.Result
	Err    error
}

// StatusMsg replaces the status line.
type StatusMsg struct {
	Text  string
	Error bool
}

// NewContactMsg asks for an empty contact form.
type NewContactMsg struct{}

// EditContactMsg asks for the form loaded with the record ID.
type EditContactMsg struct {
	ID string
}

// DeleteContactMsg asks for confirmation before deleting the record ID.
type DeleteContactMsg struct {
	ID string
}

// ViewResumeMsg asks for the resume of the record ID.
type ViewResumeMsg struct {
	ID string
}
