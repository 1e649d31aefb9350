package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/otakublog/internal/contact"
	"github.com/smileynet/otakublog/internal/form"
)

// FormSubmittedMsg reports a successful submit.
type FormSubmittedMsg struct {
	Record  contact.Record
	Updated bool
}

// FormCancelledMsg reports that the form was abandoned.
type FormCancelledMsg struct{}

// dateFormatError is shown while the date input cannot be parsed.
const dateFormatError = "Use YYYY-MM-DD"

// formState drives the contact form on top of a form.Controller.
type formState struct {
	ctrl       *form.Controller
	inputs     map[form.Field]textinput.Model
	focus      int
	langCursor int
	dateErr    string
}

// isTextField reports whether f is edited through a text input.
func isTextField(f form.Field) bool {
	switch f {
	case form.FieldGender, form.FieldLanguages, form.FieldStatus, form.FieldCourse:
		return false
	}
	return true
}

var placeholders = map[form.Field]string{
	form.FieldEmail:        "aya@example.com",
	form.FieldMobileNumber: "10 digits",
	form.FieldDate:         "YYYY-MM-DD",
}

// newFormState builds inputs from the controller's current draft and focuses
// the first field.
func newFormState(ctrl *form.Controller) formState {
	fs := formState{ctrl: ctrl, inputs: make(map[form.Field]textinput.Model)}
	draft := ctrl.Draft()
	for _, f := range form.Fields {
		if !isTextField(f) {
			continue
		}
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[f]
		ti.CharLimit = 500
		ti.Cursor.SetMode(cursor.CursorStatic)
		ti.SetValue(fieldText(draft, f))
		fs.inputs[f] = ti
	}
	fs.focusField(0)
	return fs
}

func fieldText(r contact.Record, f form.Field) string {
	switch f {
	case form.FieldFirstName:
		return r.FirstName
	case form.FieldLastName:
		return r.LastName
	case form.FieldEmail:
		return r.Email
	case form.FieldMobileNumber:
		return r.MobileNumber
	case form.FieldDate:
		if r.DateOfBirth.IsZero() {
			return ""
		}
		return r.DateOfBirth.Format(contact.DateLayout)
	case form.FieldAddress:
		return r.Address
	case form.FieldSkills:
		return r.Skills
	case form.FieldExperiences:
		return r.Experiences
	}
	return ""
}

// focused returns the field under focus.
func (fs formState) focused() form.Field { return form.Fields[fs.focus] }

// focusField moves focus to index i, updating input focus.
func (fs *formState) focusField(i int) {
	n := len(form.Fields)
	fs.focus = ((i % n) + n) % n
	for f, ti := range fs.inputs {
		if f == fs.focused() {
			ti.Focus()
		} else {
			ti.Blur()
		}
		fs.inputs[f] = ti
	}
}

// Update processes messages for the form.
func (fs formState) Update(msg tea.Msg) (formState, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return fs.updateInput(msg)
	}

	switch key.String() {
	case "tab", "down":
		fs.focusField(fs.focus + 1)
		return fs, nil
	case "shift+tab", "up":
		fs.focusField(fs.focus - 1)
		return fs, nil
	case "esc":
		fs.ctrl.Reset()
		return fs, func() tea.Msg { return FormCancelledMsg{} }
	case "enter":
		return fs.submit()
	}

	switch fs.focused() {
	case form.FieldGender:
		fs.cycle(key.String(), func(dir int) {
			cur := fs.ctrl.Draft().Gender
			_ = fs.ctrl.SetField(form.FieldGender, string(step(contact.Genders, cur, dir)))
		})
		return fs, nil
	case form.FieldStatus:
		fs.cycle(key.String(), func(dir int) {
			cur := fs.ctrl.Draft().Status
			_ = fs.ctrl.SetField(form.FieldStatus, string(step(contact.Statuses, cur, dir)))
		})
		return fs, nil
	case form.FieldCourse:
		fs.cycle(key.String(), func(dir int) {
			cur := fs.ctrl.Draft().Course
			_ = fs.ctrl.SetField(form.FieldCourse, string(step(contact.Courses, cur, dir)))
		})
		return fs, nil
	case form.FieldLanguages:
		n := len(contact.Languages)
		switch key.String() {
		case "left":
			fs.langCursor = (fs.langCursor + n - 1) % n
		case "right":
			fs.langCursor = (fs.langCursor + 1) % n
		case " ", "space", "x":
			fs.ctrl.ToggleLanguage(contact.Languages[fs.langCursor])
		}
		return fs, nil
	}

	return fs.updateInput(msg)
}

// cycle calls apply with -1 or +1 for left or right.
func (fs formState) cycle(key string, apply func(dir int)) {
	switch key {
	case "left":
		apply(-1)
	case "right", " ", "space":
		apply(1)
	}
}

func step[T comparable](values []T, cur T, dir int) T {
	if dir < 0 {
		return contact.Prev(values, cur)
	}
	return contact.Next(values, cur)
}

// updateInput forwards msg to the focused text input and copies its value
// into the draft.
func (fs formState) updateInput(msg tea.Msg) (formState, tea.Cmd) {
	f := fs.focused()
	ti, ok := fs.inputs[f]
	if !ok {
		return fs, nil
	}
	before := ti.Value()
	ti, cmd := ti.Update(msg)
	fs.inputs[f] = ti
	if ti.Value() != before {
		fs.sync(f)
	}
	return fs, cmd
}

// sync copies one input's value into the draft.
func (fs *formState) sync(f form.Field) {
	err := fs.ctrl.SetField(f, fs.inputs[f].Value())
	if f == form.FieldDate {
		fs.dateErr = ""
		if err != nil {
			fs.dateErr = dateFormatError
		}
	}
}

// submit validates and saves the draft. On failure focus moves to the first
// failing field.
func (fs formState) submit() (formState, tea.Cmd) {
	if fs.dateErr != "" {
		fs.focusField(indexOf(form.FieldDate))
		return fs, nil
	}
	updated := fs.ctrl.Editing()
	rec, errs := fs.ctrl.Submit()
	if msg, gone := errs[form.FieldID]; gone {
		return fs, func() tea.Msg { return StatusMsg{Text: msg, Error: true} }
	}
	if len(errs) > 0 {
		fs.focusField(indexOf(errs.Fields()[0]))
		return fs, nil
	}
	return fs, func() tea.Msg { return FormSubmittedMsg{Record: rec, Updated: updated} }
}

func indexOf(f form.Field) int {
	for i, g := range form.Fields {
		if g == f {
			return i
		}
	}
	return 0
}

// View renders the form, scrolled so the focused field is visible.
func (fs formState) View(width, height int) string {
	title := "Add Contact"
	if fs.ctrl.Editing() {
		title = "Edit Contact"
	}
	errs := fs.ctrl.Errors()
	draft := fs.ctrl.Draft()

	blocks := make([]string, len(form.Fields))
	for i, f := range form.Fields {
		var b strings.Builder
		marker := "  "
		label := mutedText.Render(f.Label() + ":")
		if i == fs.focus {
			marker = CursorMarker
			label = headerText.Render(f.Label() + ":")
		}
		fmt.Fprintf(&b, "%s%s %s", marker, label, fs.fieldView(f, draft, i == fs.focus))
		msg := errs[f]
		if f == form.FieldDate && fs.dateErr != "" {
			msg = fs.dateErr
		}
		if msg != "" {
			b.WriteString("\n    " + errorText.Render(msg))
		}
		blocks[i] = b.String()
	}

	// Drop leading fields until the focused one fits under the title.
	avail := height - 2
	start := 0
	for start < fs.focus && lines(blocks[start:fs.focus+1]) > avail {
		start++
	}
	return headerText.Render(title) + "\n\n" + strings.Join(blocks[start:], "\n")
}

func lines(blocks []string) int {
	n := 0
	for _, b := range blocks {
		n += strings.Count(b, "\n") + 1
	}
	return n
}

func (fs formState) fieldView(f form.Field, draft contact.Record, focused bool) string {
	choice := func(label string) string {
		if label == "" {
			label = mutedText.Render("choose")
		}
		if focused {
			return "‹ " + label + " ›"
		}
		return label
	}
	switch f {
	case form.FieldGender:
		return choice(labelOrEmpty(string(draft.Gender), draft.Gender.Label()))
	case form.FieldStatus:
		return choice(labelOrEmpty(string(draft.Status), draft.Status.Label()))
	case form.FieldCourse:
		return choice(labelOrEmpty(string(draft.Course), draft.Course.Label()))
	case form.FieldLanguages:
		parts := make([]string, len(contact.Languages))
		for i, l := range contact.Languages {
			box := "[ ]"
			if draft.HasLanguage(l) {
				box = "[x]"
			}
			item := box + " " + l.Label()
			if focused && i == fs.langCursor {
				item = activeTab.Render(item)
			}
			parts[i] = item
		}
		return strings.Join(parts, "  ")
	}
	return fs.inputs[f].View()
}

func labelOrEmpty(raw, label string) string {
	if raw == "" {
		return ""
	}
	return label
}
