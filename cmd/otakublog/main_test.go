package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/otakublog"
	"github.com/smileynet/otakublog/internal/contact"
	"github.com/smileynet/otakublog/internal/form"
	"github.com/smileynet/otakublog/internal/kv"
	"github.com/smileynet/otakublog/internal/records"
	"github.com/smileynet/otakublog/internal/resume"
)

// errExitCalled is a sentinel used to catch kong's os.Exit calls in tests.
var errExitCalled = errors.New("exit called")

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.Local)

func clock() time.Time { return testNow }

func sampleRecord() contact.Record {
	return contact.Record{
		FirstName:    "Aya",
		LastName:     "Sato",
		Email:        "aya@example.com",
		MobileNumber: "1234567890",
		Gender:       contact.GenderFemale,
		Languages:    []contact.Language{contact.LanguageEnglish},
		DateOfBirth:  time.Date(2001, 4, 3, 0, 0, 0, 0, time.Local),
		Address:      "123 Main Street",
		Status:       contact.StatusCollege,
		Course:       contact.CourseEngineering,
	}
}

// newStore returns a store over an in-memory backend holding recs.
func newStore(recs ...contact.Record) *records.Store {
	s := records.New(kv.NewMemoryStore(), records.WithClock(clock))
	for _, r := range recs {
		s.Add(r)
	}
	return s
}

func newController(s *records.Store) *form.Controller {
	return form.New(s, form.WithClock(clock))
}

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	k, err := kong.New(&cli, kong.Vars{"version": "test"})
	if err != nil {
		t.Fatal(err)
	}
	kctx, err := k.Parse(args)
	if err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return &cli, kctx
}

func TestFeature_CommandLine(t *testing.T) {
	t.Run("version flag prints version commit and date", func(t *testing.T) {
		// Given: a CLI parser with version, commit, and date fields
		var cli CLI
		var buf bytes.Buffer
		versionStr := "v1.0.0 abc1234 2026-01-01T00:00:00Z"
		k, err := kong.New(&cli,
			kong.Vars{"version": versionStr},
			kong.Writers(&buf, &buf),
			kong.Exit(func(int) { panic(errExitCalled) }),
		)
		if err != nil {
			t.Fatal(err)
		}

		// When: --version flag is passed
		defer func() {
			r := recover()
			if r == nil {
				t.Fatal("expected panic from --version flag")
			}
			err, ok := r.(error)
			if !ok || !errors.Is(err, errExitCalled) {
				panic(r)
			}

			// Then: version, commit, and date are all present in output
			output := buf.String()
			for _, want := range []string{"v1.0.0", "abc1234", "2026-01-01T00:00:00Z"} {
				if !strings.Contains(output, want) {
					t.Errorf("version output = %q, want to contain %q", output, want)
				}
			}
		}()

		k.Parse([]string{"--version"}) //nolint:errcheck // --version triggers panic via Exit hook
	})

	t.Run("no args shows usage and errors", func(t *testing.T) {
		var cli CLI
		k, err := kong.New(&cli, kong.Vars{"version": "test"})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := k.Parse([]string{}); err == nil {
			t.Fatal("expected error when no command provided")
		}
	})

	t.Run("add flags fill the contact fields", func(t *testing.T) {
		// Given: an add command line with field flags
		cli, kctx := parse(t, "add",
			"--first-name", "Aya", "--email", "aya@example.com",
			"--lang", "english,tamil", "--date", "2001-04-03")

		// Then: the command and flags are parsed
		if kctx.Command() != "add" {
			t.Errorf("command = %q, want add", kctx.Command())
		}
		f := cli.Add.ContactFlags
		if f.FirstName != "Aya" || f.Email != "aya@example.com" || f.Lang != "english,tamil" || f.Date != "2001-04-03" {
			t.Errorf("flags = %+v", f)
		}
	})

	t.Run("global flags are accepted before the command", func(t *testing.T) {
		cli, kctx := parse(t, "--backend", "memory", "--log-level", "off", "show", "abc", "--markdown")

		if kctx.Command() != "show <id>" {
			t.Errorf("command = %q, want %q", kctx.Command(), "show <id>")
		}
		if cli.Backend != "memory" || cli.LogLevel != "off" || cli.Show.ID != "abc" || !cli.Show.Markdown {
			t.Errorf("parsed = %+v", cli)
		}
	})

	t.Run("ui rejects an unknown start page", func(t *testing.T) {
		var cli CLI
		k, err := kong.New(&cli, kong.Vars{"version": "test"})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := k.Parse([]string{"ui", "--start", "resume"}); err == nil {
			t.Error("expected enum error for --start resume")
		}
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitSuccess},
		{"invalid", fmt.Errorf("add: %w", errInvalid), exitFailure},
		{"not found", fmt.Errorf("edit: %w", errNotFound), exitFailure},
		{"not saved", fmt.Errorf("%w: disk full", errNotSaved), exitFailure},
		{"export", fmt.Errorf("%w: boom", errExportFailed), exitFailure},
		{"setup", errors.New("config: bad yaml"), exitSetup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("flags override env and files", func(t *testing.T) {
		// Given: a project config, an env override and a flag
		dir := t.TempDir()
		t.Setenv("HOME", dir)
		t.Chdir(dir)
		writeFile(t, filepath.Join(dir, ".otakublog", "config.yaml"), "storage:\n  backend: sqlite\nlog:\n  level: debug\n")
		t.Setenv("OTAKUBLOG_LOG_LEVEL", "warn")

		// When: config is loaded with a backend flag
		cfg, err := loadConfig(&Globals{Backend: "memory"})
		if err != nil {
			t.Fatal(err)
		}

		// Then: each layer wins in turn
		if cfg.Storage.Backend != "memory" {
			t.Errorf("backend = %q, want memory", cfg.Storage.Backend)
		}
		if cfg.Log.Level != "warn" {
			t.Errorf("log level = %q, want warn", cfg.Log.Level)
		}
	})

	t.Run("invalid flag value fails validation", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("HOME", dir)
		t.Chdir(dir)

		_, err := loadConfig(&Globals{LogLevel: "loud"})
		if err == nil {
			t.Fatal("expected validation error")
		}
		if exitCode(err) != exitSetup {
			t.Errorf("exitCode = %d, want %d", exitCode(err), exitSetup)
		}
	})
}

func TestFeature_UICommand(t *testing.T) {
	t.Run("run returns error when not a TTY", func(t *testing.T) {
		cmd := &UICmd{}
		err := cmd.run(false, nil)
		if err == nil || !strings.Contains(err.Error(), "terminal") {
			t.Errorf("error = %v, want terminal error", err)
		}
	})

	t.Run("run executes tea program when TTY", func(t *testing.T) {
		cmd := &UICmd{}
		mock := &mockTeaRunner{}
		if err := cmd.run(true, mock); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !mock.ran {
			t.Error("tea program was not run")
		}
	})

	t.Run("run returns tea program error", func(t *testing.T) {
		cmd := &UICmd{}
		mock := &mockTeaRunner{err: fmt.Errorf("tea: terminal error")}
		err := cmd.run(true, mock)
		if err == nil || !strings.Contains(err.Error(), "tea: terminal error") {
			t.Errorf("error = %v, want tea error", err)
		}
	})
}

func TestFeature_ListCommand(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		var buf bytes.Buffer
		if err := (&ListCmd{}).run(&buf, newStore()); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "No contacts yet.") {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("table lists each contact", func(t *testing.T) {
		store := newStore(sampleRecord())
		id := store.List()[0].ID
		var buf bytes.Buffer
		if err := (&ListCmd{}).run(&buf, store); err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{id, "Aya Sato", "aya@example.com", "College", "Engineering"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("output missing %q:\n%s", want, buf.String())
			}
		}
	})

	t.Run("json uses the stored field names", func(t *testing.T) {
		var buf bytes.Buffer
		if err := (&ListCmd{JSON: true}).run(&buf, newStore(sampleRecord())); err != nil {
			t.Fatal(err)
		}
		recs, _, err := contact.DecodeList(buf.Bytes(), testNow)
		if err != nil {
			t.Fatalf("output is not a stored list: %v\n%s", err, buf.String())
		}
		if len(recs) != 1 || recs[0].Email != "aya@example.com" {
			t.Errorf("decoded = %+v", recs)
		}
		for _, key := range []string{`"lang"`, `"courses"`, `"date"`} {
			if !strings.Contains(buf.String(), key) {
				t.Errorf("json missing key %s", key)
			}
		}
	})
}

func TestFeature_AddEditDelete(t *testing.T) {
	t.Run("add stores a valid contact", func(t *testing.T) {
		// Given: flags for every required field
		store := newStore()
		cmd := &AddCmd{ContactFlags: ContactFlags{
			FirstName: "Aya", LastName: "Sato", Email: "aya@example.com",
			Mobile: "1234567890", Gender: "female", Lang: "english",
			Date: "2001-04-03", Address: "123 Main Street",
		}}
		var buf bytes.Buffer

		// When: add runs
		err := cmd.run(&buf, store, newController(store))

		// Then: the record is stored with the form defaults for status and course
		if err != nil {
			t.Fatalf("add: %v\n%s", err, buf.String())
		}
		list := store.List()
		if len(list) != 1 {
			t.Fatalf("store has %d records, want 1", len(list))
		}
		if list[0].Status != contact.StatusCollege || list[0].Course != contact.CourseEngineering {
			t.Errorf("status/course = %q/%q", list[0].Status, list[0].Course)
		}
		if !strings.Contains(buf.String(), "Added Aya Sato ("+list[0].ID+")") {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("add reports every failing field", func(t *testing.T) {
		store := newStore()
		cmd := &AddCmd{ContactFlags: ContactFlags{FirstName: "Aya"}}
		var buf bytes.Buffer

		err := cmd.run(&buf, store, newController(store))

		if !errors.Is(err, errInvalid) {
			t.Fatalf("err = %v, want errInvalid", err)
		}
		for _, want := range []string{"Email is required", "Address is required", "Please select at least one language"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("output missing %q:\n%s", want, buf.String())
			}
		}
		if store.Len() != 0 {
			t.Errorf("store should be unchanged, has %d", store.Len())
		}
	})

	t.Run("add rejects a malformed date flag", func(t *testing.T) {
		store := newStore()
		cmd := &AddCmd{ContactFlags: ContactFlags{Date: "03/04/2001"}}

		err := cmd.run(&bytes.Buffer{}, store, newController(store))

		if !errors.Is(err, errInvalid) {
			t.Errorf("err = %v, want errInvalid", err)
		}
	})

	t.Run("add surfaces persistence failures", func(t *testing.T) {
		store := records.New(kv.NewMemoryStore(kv.WithMaxSlotBytes(10)))
		cmd := &AddCmd{ContactFlags: ContactFlags{
			FirstName: "Aya", LastName: "Sato", Email: "aya@example.com",
			Mobile: "1234567890", Gender: "female", Lang: "english",
			Date: "2001-04-03", Address: "123 Main Street",
		}}

		err := cmd.run(&bytes.Buffer{}, store, newController(store))

		if !errors.Is(err, errNotSaved) || !errors.Is(err, kv.ErrQuotaExceeded) {
			t.Errorf("err = %v, want errNotSaved wrapping quota error", err)
		}
	})

	t.Run("edit changes only the given fields", func(t *testing.T) {
		store := newStore(sampleRecord())
		id := store.List()[0].ID
		cmd := &EditCmd{ID: id, ContactFlags: ContactFlags{Email: "aya@anime.example", Status: "working"}}
		var buf bytes.Buffer

		if err := cmd.run(&buf, store, newController(store)); err != nil {
			t.Fatalf("edit: %v\n%s", err, buf.String())
		}

		got, _ := store.Get(id)
		if got.Email != "aya@anime.example" || got.Status != contact.StatusWorking {
			t.Errorf("record = %+v", got)
		}
		if got.FirstName != "Aya" || got.Address != "123 Main Street" {
			t.Errorf("untouched fields changed: %+v", got)
		}
		if !strings.Contains(buf.String(), "Updated Aya Sato") {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("edit of unknown id", func(t *testing.T) {
		store := newStore()
		err := (&EditCmd{ID: "missing"}).run(&bytes.Buffer{}, store, newController(store))
		if !errors.Is(err, errNotFound) {
			t.Errorf("err = %v, want errNotFound", err)
		}
	})

	t.Run("delete removes the contact", func(t *testing.T) {
		store := newStore(sampleRecord())
		id := store.List()[0].ID
		var buf bytes.Buffer

		if err := (&DeleteCmd{ID: id}).run(&buf, store); err != nil {
			t.Fatal(err)
		}
		if store.Len() != 0 {
			t.Errorf("store has %d records after delete", store.Len())
		}
		if !strings.Contains(buf.String(), "Deleted Aya Sato") {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("delete of unknown id", func(t *testing.T) {
		err := (&DeleteCmd{ID: "missing"}).run(&bytes.Buffer{}, newStore())
		if !errors.Is(err, errNotFound) {
			t.Errorf("err = %v, want errNotFound", err)
		}
	})
}

func TestFeature_ShowCommand(t *testing.T) {
	store := newStore(sampleRecord())
	id := store.List()[0].ID

	t.Run("plain text outside a terminal", func(t *testing.T) {
		var buf bytes.Buffer
		if err := (&ShowCmd{ID: id}).run(&buf, store, 80, false); err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{"Aya Sato", resume.TitlePersonal, resume.TitleEducation, "April 3, 2001"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("output missing %q:\n%s", want, buf.String())
			}
		}
	})

	t.Run("markdown flag", func(t *testing.T) {
		var buf bytes.Buffer
		if err := (&ShowCmd{ID: id, Markdown: true}).run(&buf, store, 80, true); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "## "+resume.TitlePersonal) {
			t.Errorf("output is not markdown:\n%s", buf.String())
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		err := (&ShowCmd{ID: "missing"}).run(&bytes.Buffer{}, store, 80, false)
		if !errors.Is(err, errNotFound) {
			t.Errorf("err = %v, want errNotFound", err)
		}
	})
}

// fakeExporter records the export request and returns a canned result.
type fakeExporter struct {
	gotDst  string
	gotName string
	result  resume.Result
	err     error
}

func (f *fakeExporter) Export(_ context.Context, v resume.View, dst string) (resume.Result, error) {
	f.gotDst, f.gotName = dst, v.Name
	if f.result.Path == "" && !f.result.Printed {
		f.result.Path = dst
	}
	return f.result, f.err
}

func TestFeature_ExportCommand(t *testing.T) {
	store := newStore(sampleRecord())
	id := store.List()[0].ID

	t.Run("default destination under the output dir", func(t *testing.T) {
		exp := &fakeExporter{}
		var buf bytes.Buffer

		if err := (&ExportCmd{ID: id}).run(context.Background(), &buf, store, exp, "exports"); err != nil {
			t.Fatal(err)
		}
		want := filepath.Join("exports", "Aya_Sato_resume.pdf")
		if exp.gotDst != want {
			t.Errorf("dst = %q, want %q", exp.gotDst, want)
		}
		if !strings.Contains(buf.String(), "Wrote "+want) {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("out flag overrides the destination", func(t *testing.T) {
		exp := &fakeExporter{}
		if err := (&ExportCmd{ID: id, Out: "cv.pdf"}).run(context.Background(), &bytes.Buffer{}, store, exp, "exports"); err != nil {
			t.Fatal(err)
		}
		if exp.gotDst != "cv.pdf" {
			t.Errorf("dst = %q, want cv.pdf", exp.gotDst)
		}
	})

	t.Run("printer fallback is reported as a warning", func(t *testing.T) {
		exp := &fakeExporter{result: resume.Result{Printed: true, PDFErr: errors.New("no browser")}}
		var buf bytes.Buffer

		if err := (&ExportCmd{ID: id}).run(context.Background(), &buf, store, exp, "exports"); err != nil {
			t.Fatal(err)
		}
		out := buf.String()
		if !strings.Contains(out, "warning: PDF generation failed: no browser") || !strings.Contains(out, "Sent Aya Sato to the printer") {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("export failure maps to the failure exit code", func(t *testing.T) {
		exp := &fakeExporter{err: errors.New("both failed")}
		err := (&ExportCmd{ID: id}).run(context.Background(), &bytes.Buffer{}, store, exp, "exports")
		if !errors.Is(err, errExportFailed) || exitCode(err) != exitFailure {
			t.Errorf("err = %v (exit %d)", err, exitCode(err))
		}
	})
}

// countingSlots counts slot writes.
type countingSlots struct {
	*kv.MemoryStore
	sets int
}

func (c *countingSlots) Set(key string, value []byte) error {
	c.sets++
	return c.MemoryStore.Set(key, value)
}

func TestFeature_ImportCommand(t *testing.T) {
	t.Run("valid entries are added in one write", func(t *testing.T) {
		// Given: a file with one valid, one invalid and one bad-date entry
		data := []byte(`[
  {"firstName":"Aya","lastName":"Sato","email":"aya@example.com","mobileNumber":"1234567890",
   "gender":"female","lang":["english"],"date":"2001-04-03T00:00:00Z",
   "address":"123 Main Street","status":"college","courses":"engineering"},
  {"firstName":"Ren","lastName":"Ito","email":"","mobileNumber":"1234567890",
   "gender":"male","lang":["japanese"],"date":"2000-01-01T00:00:00Z",
   "address":"456 Side Street","status":"working","courses":"arts"},
  {"firstName":"Mio","lastName":"Kato","email":"mio@example.com","mobileNumber":"0987654321",
   "gender":"others","lang":["tamil"],"date":"someday",
   "address":"789 Back Street","status":"workingProfessional","courses":"poly"}
]`)
		slots := &countingSlots{MemoryStore: kv.NewMemoryStore()}
		store := records.New(slots, records.WithClock(clock))
		var buf bytes.Buffer

		// When: import runs
		err := (&ImportCmd{File: "contacts.json"}).run(&buf, store, data, clock)

		// Then: two records are added with a single slot write
		if err != nil {
			t.Fatalf("import: %v\n%s", err, buf.String())
		}
		if store.Len() != 2 {
			t.Errorf("store has %d records, want 2", store.Len())
		}
		if slots.sets != 1 {
			t.Errorf("slot written %d times, want 1", slots.sets)
		}
		out := buf.String()
		for _, want := range []string{"skipping entry 2 (Ren Ito): Email is required", "using today", "Imported 2 contacts (1 skipped)"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("padded fields are stored trimmed", func(t *testing.T) {
		// Given: an entry whose email and mobile carry surrounding spaces
		data := []byte(`[
  {"firstName":" Aya ","lastName":"Sato","email":" aya@example.com ","mobileNumber":" 1234567890 ",
   "gender":"female","lang":["english"],"date":"2001-04-03T00:00:00Z",
   "address":"123 Main Street","status":"college","courses":"engineering"}
]`)
		store := newStore()

		// When: import runs
		if err := (&ImportCmd{}).run(&bytes.Buffer{}, store, data, clock); err != nil {
			t.Fatalf("import: %v", err)
		}

		// Then: the stored values are the trimmed ones that were validated
		list := store.List()
		if len(list) != 1 {
			t.Fatalf("store has %d records, want 1", len(list))
		}
		got := list[0]
		if got.FirstName != "Aya" || got.Email != "aya@example.com" || got.MobileNumber != "1234567890" {
			t.Errorf("stored %q %q %q, want trimmed values", got.FirstName, got.Email, got.MobileNumber)
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		err := (&ImportCmd{}).run(&bytes.Buffer{}, newStore(), []byte("{not json"), clock)
		if !errors.Is(err, errInvalid) {
			t.Errorf("err = %v, want errInvalid", err)
		}
	})
}

func TestFeature_PageCommand(t *testing.T) {
	t.Run("home lists the catalog", func(t *testing.T) {
		var buf bytes.Buffer
		if err := (&PageCmd{Name: "home"}).run(&buf, otakublog.Content, 80, false); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "# Spring 2024 Top Anime") {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("about is rendered for a terminal", func(t *testing.T) {
		var buf bytes.Buffer
		if err := (&PageCmd{Name: "about"}).run(&buf, otakublog.Content, 80, true); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "About Us") {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("unknown page", func(t *testing.T) {
		if err := (&PageCmd{Name: "faq"}).run(&bytes.Buffer{}, otakublog.Content, 80, false); err == nil {
			t.Error("expected error for unknown page")
		}
	})
}

// mockTeaRunner stubs tea program execution for UICmd testing.
type mockTeaRunner struct {
	ran bool
	err error
}

func (m *mockTeaRunner) Run() (tea.Model, error) {
	m.ran = true
	return nil, m.err
}

// Compile-time check: mockTeaRunner satisfies teaRunner.
var _ teaRunner = (*mockTeaRunner)(nil)
