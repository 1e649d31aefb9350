package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/smileynet/otakublog/internal/contact"
	"github.com/smileynet/otakublog/internal/form"
	"github.com/smileynet/otakublog/internal/records"
	"github.com/smileynet/otakublog/internal/resume"
)

var (
	errInvalid      = errors.New("invalid contact")
	errNotFound     = errors.New("contact not found")
	errNotSaved     = errors.New("changes were not saved")
	errExportFailed = errors.New("export failed")
)

// checkSaved reports the store's last persistence failure as errNotSaved.
func checkSaved(store *records.Store) error {
	if err := store.PersistErr(); err != nil {
		return fmt.Errorf("%w: %w", errNotSaved, err)
	}
	return nil
}

// lookup returns the record with id or errNotFound.
func lookup(store *records.Store, id string) (contact.Record, error) {
	rec, ok := store.Get(id)
	if !ok {
		return contact.Record{}, fmt.Errorf("%w: %q", errNotFound, id)
	}
	return rec, nil
}

// --- List command ---

// ListCmd prints every contact.
type ListCmd struct {
	JSON bool `help:"Print the stored JSON form."`
}

// Run executes the list command.
func (l *ListCmd) Run(g *Globals) error {
	a, err := openApp(g)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	defer a.close()
	return l.run(os.Stdout, a.store)
}

// run prints the contacts to w, enabling testable wiring.
func (l *ListCmd) run(w io.Writer, store *records.Store) error {
	recs := store.List()
	if l.JSON {
		data, err := contact.EncodeList(recs)
		if err != nil {
			return fmt.Errorf("list: %w", err)
		}
		_, _ = fmt.Fprintln(w, string(data))
		return nil
	}
	if len(recs) == 0 {
		_, _ = fmt.Fprintln(w, "No contacts yet.")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Name", "Email", "Mobile", "Status", "Course")
	for _, r := range recs {
		t.Row(r.ID, r.FullName(), r.Email, r.MobileNumber, r.Status.Label(), r.Course.Label())
	}
	_, _ = fmt.Fprintln(w, t.Render())
	return nil
}

// --- Add and edit commands ---

// ContactFlags are the per-field flags shared by add and edit. Empty flags
// leave the field unchanged.
type ContactFlags struct {
	FirstName   string `help:"First name."`
	LastName    string `help:"Last name."`
	Email       string `help:"Email address."`
	Mobile      string `help:"Ten-digit mobile number."`
	Gender      string `help:"male, female or other."`
	Lang        string `help:"Comma-separated languages: tamil, english, japanese."`
	Date        string `help:"Date of birth (YYYY-MM-DD). Defaults to today when adding."`
	Address     string `help:"Postal address."`
	Status      string `help:"school, college or working."`
	Course      string `help:"engineering, arts or poly."`
	Skills      string `help:"Free-text skills."`
	Experiences string `help:"Free-text work or project experiences."`
}

// apply writes every set flag into the controller's draft.
func (f ContactFlags) apply(ctrl *form.Controller) error {
	values := []struct {
		field form.Field
		value string
	}{
		{form.FieldFirstName, f.FirstName},
		{form.FieldLastName, f.LastName},
		{form.FieldEmail, f.Email},
		{form.FieldMobileNumber, f.Mobile},
		{form.FieldGender, f.Gender},
		{form.FieldLanguages, f.Lang},
		{form.FieldDate, f.Date},
		{form.FieldAddress, f.Address},
		{form.FieldStatus, f.Status},
		{form.FieldCourse, f.Course},
		{form.FieldSkills, f.Skills},
		{form.FieldExperiences, f.Experiences},
	}
	for _, v := range values {
		if v.value == "" {
			continue
		}
		if err := ctrl.SetField(v.field, v.value); err != nil {
			return fmt.Errorf("%w: %w", errInvalid, err)
		}
	}
	return nil
}

// printErrors lists validation messages in form order.
func printErrors(w io.Writer, errs form.Errors) {
	for _, f := range errs.Fields() {
		_, _ = fmt.Fprintf(w, "  %s: %s\n", f.Label(), errs[f])
	}
}

// submit validates and saves the draft, printing any field errors to w.
func submit(w io.Writer, ctrl *form.Controller) (contact.Record, error) {
	rec, errs := ctrl.Submit()
	if msg, gone := errs[form.FieldID]; gone {
		return contact.Record{}, fmt.Errorf("%w: %s", errNotFound, msg)
	}
	if len(errs) > 0 {
		printErrors(w, errs)
		return contact.Record{}, errInvalid
	}
	return rec, nil
}

// AddCmd adds a contact from flags.
type AddCmd struct {
	ContactFlags `embed:""`
}

// Run executes the add command.
func (c *AddCmd) Run(g *Globals) error {
	a, err := openApp(g)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	defer a.close()
	return c.run(os.Stdout, a.store, form.New(a.store, form.WithLogger(a.log.Named("form"))))
}

// run validates and adds the contact, enabling testable wiring.
func (c *AddCmd) run(w io.Writer, store *records.Store, ctrl *form.Controller) error {
	if err := c.apply(ctrl); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	rec, err := submit(w, ctrl)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Added %s (%s)\n", rec.FullName(), rec.ID)
	return checkSaved(store)
}

// EditCmd changes the fields given as flags on an existing contact.
type EditCmd struct {
	ID           string `arg:"" help:"Contact ID."`
	ContactFlags `embed:""`
}

// Run executes the edit command.
func (c *EditCmd) Run(g *Globals) error {
	a, err := openApp(g)
	if err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	defer a.close()
	return c.run(os.Stdout, a.store, form.New(a.store, form.WithLogger(a.log.Named("form"))))
}

// run loads, patches and saves the contact, enabling testable wiring.
func (c *EditCmd) run(w io.Writer, store *records.Store, ctrl *form.Controller) error {
	rec, err := lookup(store, c.ID)
	if err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	ctrl.LoadForEdit(rec)
	if err := c.apply(ctrl); err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	rec, err = submit(w, ctrl)
	if err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Updated %s (%s)\n", rec.FullName(), rec.ID)
	return checkSaved(store)
}

// --- Delete command ---

// DeleteCmd removes a contact.
type DeleteCmd struct {
	ID string `arg:"" help:"Contact ID."`
}

// Run executes the delete command.
func (c *DeleteCmd) Run(g *Globals) error {
	a, err := openApp(g)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	defer a.close()
	return c.run(os.Stdout, a.store)
}

// run removes the contact, enabling testable wiring.
func (c *DeleteCmd) run(w io.Writer, store *records.Store) error {
	rec, err := lookup(store, c.ID)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	store.Remove(rec.ID)
	_, _ = fmt.Fprintf(w, "Deleted %s\n", rec.FullName())
	return checkSaved(store)
}

// --- Show command ---

// ShowCmd prints a contact's resume.
type ShowCmd struct {
	ID       string `arg:"" help:"Contact ID."`
	Markdown bool   `help:"Print Markdown instead of styled output."`
}

// Run executes the show command.
func (c *ShowCmd) Run(g *Globals) error {
	a, err := openApp(g)
	if err != nil {
		return fmt.Errorf("show: %w", err)
	}
	defer a.close()
	return c.run(os.Stdout, a.store, termWidth(os.Stdout, 80), isTTY(os.Stdout))
}

// run renders the resume to w, enabling testable wiring. Styled output is
// rendered for a terminal of the given width; otherwise plain text is printed.
func (c *ShowCmd) run(w io.Writer, store *records.Store, width int, styled bool) error {
	rec, err := lookup(store, c.ID)
	if err != nil {
		return fmt.Errorf("show: %w", err)
	}
	var sel resume.Selection
	sel.Select(rec)
	v, err := resume.Present(&sel)
	if err != nil {
		return fmt.Errorf("show: %w", err)
	}
	switch {
	case c.Markdown:
		_, _ = fmt.Fprint(w, v.Markdown())
	case styled:
		_, _ = fmt.Fprint(w, v.Terminal(width))
	default:
		_, _ = fmt.Fprint(w, v.PlainText())
	}
	return nil
}

// --- Export command ---

// ExportCmd writes a contact's resume as a PDF.
type ExportCmd struct {
	ID  string `arg:"" help:"Contact ID."`
	Out string `help:"Output file. Defaults to NAME_resume.pdf under export.output_dir." type:"path"`
}

// resumeExporter abstracts resume.Exporter for testing.
type resumeExporter interface {
	Export(ctx context.Context, v resume.View, dst string) (resume.Result, error)
}

// Run executes the export command.
func (c *ExportCmd) Run(g *Globals) error {
	a, err := openApp(g)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer a.close()

	ctx, stop := signalContext()
	defer stop()
	return c.run(ctx, os.Stdout, a.store, a.exporter(), a.cfg.Export.OutputDir)
}

// run exports the resume, enabling testable wiring.
func (c *ExportCmd) run(ctx context.Context, w io.Writer, store *records.Store, exp resumeExporter, dir string) error {
	rec, err := lookup(store, c.ID)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	v := resume.Project(rec)
	dst := c.Out
	if dst == "" {
		dst = filepath.Join(dir, resume.FileName(v))
	}

	res, err := exp.Export(ctx, v, dst)
	if err != nil {
		return fmt.Errorf("%w: %w", errExportFailed, err)
	}
	if res.Printed {
		_, _ = fmt.Fprintf(w, "warning: PDF generation failed: %v\n", res.PDFErr)
		_, _ = fmt.Fprintf(w, "Sent %s to the printer\n", v.Name)
		return nil
	}
	_, _ = fmt.Fprintf(w, "Wrote %s\n", res.Path)
	return nil
}

// --- Import command ---

// ImportCmd adds contacts from a JSON array in the stored format.
type ImportCmd struct {
	File string `arg:"" help:"JSON file to import." type:"existingfile"`
}

// Run executes the import command.
func (c *ImportCmd) Run(g *Globals) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	a, err := openApp(g)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	defer a.close()
	return c.run(os.Stdout, a.store, data, time.Now)
}

// run validates each record and adds the valid ones in a single write,
// enabling testable wiring. Invalid records are skipped with a warning.
func (c *ImportCmd) run(w io.Writer, store *records.Store, data []byte, now func() time.Time) error {
	recs, dateErrs, err := contact.DecodeList(data, now())
	if err != nil {
		return fmt.Errorf("import: %w: %w", errInvalid, err)
	}
	for _, de := range dateErrs {
		_, _ = fmt.Fprintf(w, "warning: %v; using today\n", de)
	}

	val := form.NewValidator(now)
	added, skipped := 0, 0
	store.Batch(func() {
		for i, rec := range recs {
			rec = form.Normalize(rec)
			if errs := val.Validate(rec); len(errs) > 0 {
				first := errs.Fields()[0]
				_, _ = fmt.Fprintf(w, "warning: skipping entry %d (%s): %s\n", i+1, rec.FullName(), errs[first])
				skipped++
				continue
			}
			store.Add(rec)
			added++
		}
	})

	_, _ = fmt.Fprintf(w, "Imported %d contacts", added)
	if skipped > 0 {
		_, _ = fmt.Fprintf(w, " (%d skipped)", skipped)
	}
	_, _ = fmt.Fprintln(w)
	return checkSaved(store)
}
