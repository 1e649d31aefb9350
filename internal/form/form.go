// Package form holds the in-progress contact draft, validates it and submits
// it to the record store.
package form

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/smileynet/otakublog/internal/contact"
	"github.com/smileynet/otakublog/internal/kv"
)

// DraftSlotKey is the slot mirroring the in-progress draft.
const DraftSlotKey = "draft"

// Field names a draft field. Values match the stored JSON names.
type Field string

const (
	FieldFirstName    Field = "firstName"
	FieldLastName     Field = "lastName"
	FieldEmail        Field = "email"
	FieldMobileNumber Field = "mobileNumber"
	FieldGender       Field = "gender"
	FieldLanguages    Field = "lang"
	FieldDate         Field = "date"
	FieldAddress      Field = "address"
	FieldStatus       Field = "status"
	FieldCourse       Field = "courses"
	FieldSkills       Field = "skills"
	FieldExperiences  Field = "experiences"

	// FieldID carries submit errors about the record itself rather than
	// an input. It is not part of Fields.
	FieldID Field = "id"
)

// MsgRecordGone is reported under FieldID when an edited record was deleted
// before the draft was submitted.
const MsgRecordGone = "Contact no longer exists"

// Fields lists the draft fields in form order.
var Fields = []Field{
	FieldFirstName, FieldLastName, FieldEmail, FieldMobileNumber, FieldGender,
	FieldLanguages, FieldDate, FieldAddress, FieldStatus, FieldCourse,
	FieldSkills, FieldExperiences,
}

// Label returns the form label for f.
func (f Field) Label() string {
	switch f {
	case FieldFirstName:
		return "First Name"
	case FieldLastName:
		return "Last Name"
	case FieldEmail:
		return "Email"
	case FieldMobileNumber:
		return "Mobile Number"
	case FieldGender:
		return "Gender"
	case FieldLanguages:
		return "Languages"
	case FieldDate:
		return "Date of Birth"
	case FieldAddress:
		return "Your Address"
	case FieldStatus:
		return "Your Status"
	case FieldCourse:
		return "Your Course"
	case FieldSkills:
		return "Skills"
	case FieldExperiences:
		return "Work/Project Experiences"
	}
	return string(f)
}

// Errors maps a field to its validation message.
type Errors map[Field]string

// Fields returns the failing fields in form order.
func (e Errors) Fields() []Field {
	var out []Field
	for _, f := range Fields {
		if _, ok := e[f]; ok {
			out = append(out, f)
		}
	}
	// Unknown keys last, sorted, so output is stable.
	var extra []Field
	for f := range e {
		if !slices.Contains(Fields, f) {
			extra = append(extra, f)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

// ErrUnknownField is returned by SetField for a name that is not a draft field.
var ErrUnknownField = errors.New("form: unknown field")

// Writer is the part of the record store the controller submits to.
type Writer interface {
	Add(draft contact.Record) contact.Record
	Update(id string, patch contact.Record) bool
}

// Controller mediates edits to a single draft.
type Controller struct {
	draft     contact.Record
	errs      Errors
	store     Writer
	slots     kv.Store
	validator *Validator
	log       *zap.Logger
	now       func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithClock overrides the time source used for defaults and validation.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithDraftSlots mirrors the draft to the DraftSlotKey slot of slots and
// restores a previously saved draft on construction.
func WithDraftSlots(slots kv.Store) Option {
	return func(c *Controller) { c.slots = slots }
}

// New creates a Controller submitting to store.
func New(store Writer, opts ...Option) *Controller {
	c := &Controller{
		store: store,
		errs:  Errors{},
		log:   zap.NewNop(),
		now:   time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	c.validator = NewValidator(c.now)
	c.draft = c.defaultDraft()
	c.restoreDraft()
	return c
}

// defaultDraft mirrors the form's initial state: today's date, college, engineering.
func (c *Controller) defaultDraft() contact.Record {
	y, m, d := c.now().Date()
	return contact.Record{
		DateOfBirth: time.Date(y, m, d, 0, 0, 0, 0, time.Local),
		Status:      contact.StatusCollege,
		Course:      contact.CourseEngineering,
	}
}

// Draft returns a copy of the current draft.
func (c *Controller) Draft() contact.Record { return c.draft.Clone() }

// Errors returns a copy of the current validation errors.
func (c *Controller) Errors() Errors {
	out := make(Errors, len(c.errs))
	for k, v := range c.errs {
		out[k] = v
	}
	return out
}

// Editing reports whether the draft is a copy of a stored record.
func (c *Controller) Editing() bool { return c.draft.ID != "" }

// SetField merges one field into the draft and clears that field's error.
// Dates use contact.DateLayout. Languages accept a comma-separated list.
func (c *Controller) SetField(name Field, value string) error {
	switch name {
	case FieldFirstName:
		c.draft.FirstName = value
	case FieldLastName:
		c.draft.LastName = value
	case FieldEmail:
		c.draft.Email = value
	case FieldMobileNumber:
		c.draft.MobileNumber = value
	case FieldGender:
		c.draft.Gender = contact.NormalizeGender(value)
	case FieldLanguages:
		c.draft.Languages = nil
		for _, part := range strings.Split(value, ",") {
			if l := contact.NormalizeLanguage(part); l != "" && !c.draft.HasLanguage(l) {
				c.draft.Languages = append(c.draft.Languages, l)
			}
		}
	case FieldDate:
		if strings.TrimSpace(value) == "" {
			c.draft.DateOfBirth = time.Time{}
			break
		}
		t, err := time.ParseInLocation(contact.DateLayout, strings.TrimSpace(value), time.Local)
		if err != nil {
			return fmt.Errorf("form: date must be YYYY-MM-DD: %w", err)
		}
		c.draft.DateOfBirth = t
	case FieldAddress:
		c.draft.Address = value
	case FieldStatus:
		c.draft.Status = contact.NormalizeStatus(value)
	case FieldCourse:
		c.draft.Course = contact.NormalizeCourse(value)
	case FieldSkills:
		c.draft.Skills = value
	case FieldExperiences:
		c.draft.Experiences = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	delete(c.errs, name)
	c.saveDraft()
	return nil
}

// SetDate sets the date of birth directly.
func (c *Controller) SetDate(t time.Time) {
	c.draft.DateOfBirth = t
	delete(c.errs, FieldDate)
	c.saveDraft()
}

// ToggleLanguage adds or removes lang from the draft's languages.
func (c *Controller) ToggleLanguage(lang contact.Language) {
	c.draft.ToggleLanguage(lang)
	if len(c.draft.Languages) > 0 {
		delete(c.errs, FieldLanguages)
	}
	c.saveDraft()
}

// Validate checks the draft and records the result as the current errors.
// The returned map is empty when the draft is valid.
func (c *Controller) Validate() Errors {
	c.errs = c.validator.Validate(c.draft)
	return c.Errors()
}

// Normalize returns r with surrounding whitespace removed from its free-text
// fields, so the stored values are the ones validation checked.
func Normalize(r contact.Record) contact.Record {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
	r.MobileNumber = strings.TrimSpace(r.MobileNumber)
	r.Address = strings.TrimSpace(r.Address)
	return r
}

// Submit normalizes and validates the draft. A valid draft is added (no ID)
// or updated (with ID) in the store and the form is reset; the stored record
// is returned with nil errors. An invalid draft is left in place and the
// errors are returned.
//
// If the record being edited no longer exists, nothing is saved and
// FieldID reports MsgRecordGone. The draft keeps its values but loses the
// ID, so submitting again adds it as a new contact.
func (c *Controller) Submit() (contact.Record, Errors) {
	c.draft = Normalize(c.draft)
	if errs := c.Validate(); len(errs) > 0 {
		c.saveDraft()
		return contact.Record{}, errs
	}

	var saved contact.Record
	if c.draft.ID != "" {
		if !c.store.Update(c.draft.ID, c.draft) {
			c.log.Warn("submitted draft for missing record", zap.String("id", c.draft.ID))
			c.draft.ID = ""
			c.errs = Errors{FieldID: MsgRecordGone}
			c.saveDraft()
			return contact.Record{}, c.Errors()
		}
		saved = c.draft.Clone()
	} else {
		saved = c.store.Add(c.draft)
	}
	c.Reset()
	return saved, nil
}

// LoadForEdit replaces the draft with a copy of rec, so the next Submit
// updates it.
func (c *Controller) LoadForEdit(rec contact.Record) {
	c.draft = rec.Clone()
	c.errs = Errors{}
	c.saveDraft()
}

// Reset restores the default draft and clears errors and the draft slot.
func (c *Controller) Reset() {
	c.draft = c.defaultDraft()
	c.errs = Errors{}
	if c.slots == nil {
		return
	}
	if err := c.slots.Delete(DraftSlotKey); err != nil {
		c.log.Warn("clearing draft slot", zap.Error(err))
	}
}

func (c *Controller) saveDraft() {
	if c.slots == nil {
		return
	}
	data, err := contact.EncodeDraft(c.draft)
	if err == nil {
		err = c.slots.Set(DraftSlotKey, data)
	}
	if err != nil {
		c.log.Warn("saving draft", zap.Error(err))
	}
}

func (c *Controller) restoreDraft() {
	if c.slots == nil {
		return
	}
	data, ok, err := c.slots.Get(DraftSlotKey)
	if err != nil {
		c.log.Warn("reading draft slot", zap.Error(err))
		return
	}
	if !ok {
		return
	}
	draft, err := contact.DecodeDraft(data, c.now())
	var de *contact.DateError
	switch {
	case err == nil:
	case errors.As(err, &de):
		c.log.Warn("draft date unparseable, using current time", zap.Error(err))
	default:
		c.log.Warn("discarding malformed draft", zap.Error(err))
		return
	}
	c.draft = draft
}
