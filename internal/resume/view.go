// Package resume projects a contact record into a read-only resume view and
// renders or exports it.
package resume

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/smileynet/otakublog/internal/contact"
)

// ErrNoSelection is returned by Present when no record is selected.
var ErrNoSelection = errors.New("resume: no record selected")

// Selection holds the record currently chosen for the resume view.
// It is safe for concurrent use.
type Selection struct {
	mu  sync.RWMutex
	rec *contact.Record
}

// Select stores a copy of rec as the current selection.
func (s *Selection) Select(rec contact.Record) {
	c := rec.Clone()
	s.mu.Lock()
	s.rec = &c
	s.mu.Unlock()
}

// Clear drops the current selection.
func (s *Selection) Clear() {
	s.mu.Lock()
	s.rec = nil
	s.mu.Unlock()
}

// Current returns a copy of the selected record.
func (s *Selection) Current() (contact.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rec == nil {
		return contact.Record{}, false
	}
	return s.rec.Clone(), true
}

// Item is one labelled line of a section.
type Item struct {
	Label string
	Value string
}

// Section is a titled group of items. Body holds free text shown after the
// items, with line breaks preserved.
type Section struct {
	Title string
	Items []Item
	Body  string
}

// View is the read-only projection of one record.
type View struct {
	ID          string
	Name        string
	ContactLine string
	Sections    []Section
}

// Section titles.
const (
	TitlePersonal    = "Personal Information"
	TitleEducation   = "Education & Skills"
	TitleExperiences = "Work/Project Experiences"
)

// DisplayDateLayout is the date format shown on the resume.
const DisplayDateLayout = "January 2, 2006"

// Present projects the selected record, or returns ErrNoSelection.
func Present(sel *Selection) (View, error) {
	if sel == nil {
		return View{}, ErrNoSelection
	}
	rec, ok := sel.Current()
	if !ok {
		return View{}, ErrNoSelection
	}
	return Project(rec), nil
}

// Project builds the view for rec. Optional sections and items are omitted
// when empty.
func Project(rec contact.Record) View {
	v := View{
		ID:          rec.ID,
		Name:        rec.FullName(),
		ContactLine: rec.Email + " | " + rec.MobileNumber,
	}

	personal := Section{Title: TitlePersonal, Items: []Item{
		{"Full Name", rec.FullName()},
		{"Email", rec.Email},
		{"Mobile", rec.MobileNumber},
		{"Gender", rec.Gender.Label()},
		{"Date of Birth", formatDate(rec.DateOfBirth)},
		{"Address", strings.TrimSpace(rec.Address)},
	}}

	education := Section{Title: TitleEducation, Items: []Item{
		{"Status", rec.Status.Label()},
		{"Course", rec.Course.Label()},
	}}
	if len(rec.Languages) > 0 {
		labels := make([]string, len(rec.Languages))
		for i, l := range rec.Languages {
			labels[i] = l.Label()
		}
		education.Items = append(education.Items, Item{"Languages Known", strings.Join(labels, ", ")})
	}
	if s := strings.TrimSpace(rec.Skills); s != "" {
		education.Items = append(education.Items, Item{"Skills", s})
	}

	v.Sections = []Section{personal, education}
	if e := strings.TrimSpace(rec.Experiences); e != "" {
		v.Sections = append(v.Sections, Section{Title: TitleExperiences, Body: e})
	}
	return v
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DisplayDateLayout)
}
