package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/smileynet/otakublog"
	"github.com/smileynet/otakublog/internal/config"
	"github.com/smileynet/otakublog/internal/dashboard"
	"github.com/smileynet/otakublog/internal/form"
	"github.com/smileynet/otakublog/internal/kv"
	"github.com/smileynet/otakublog/internal/logging"
	"github.com/smileynet/otakublog/internal/records"
	"github.com/smileynet/otakublog/internal/resume"
	"github.com/smileynet/otakublog/internal/site"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Globals holds flags shared by every command. Set flags override config
// files and environment variables.
type Globals struct {
	Backend  string `help:"Storage backend (file, sqlite, memory)."`
	DataDir  string `help:"Storage directory." type:"path"`
	LogLevel string `help:"Log level (debug, info, warn, error, off)."`
}

// CLI is the top-level command structure for otakublog.
type CLI struct {
	Globals `embed:""`

	Version kong.VersionFlag `help:"Show version." short:"V"`
	UI      UICmd            `cmd:"" help:"Open the interactive terminal UI."`
	List    ListCmd          `cmd:"" help:"List contacts."`
	Add     AddCmd           `cmd:"" help:"Add a contact."`
	Edit    EditCmd          `cmd:"" help:"Edit a contact."`
	Delete  DeleteCmd        `cmd:"" help:"Delete a contact."`
	Show    ShowCmd          `cmd:"" help:"Show a contact's resume."`
	Export  ExportCmd        `cmd:"" help:"Export a contact's resume as PDF, printing it if PDF generation fails."`
	Import  ImportCmd        `cmd:"" help:"Import contacts from a JSON file."`
	Page    PageCmd          `cmd:"" help:"Show the home or about page."`
}

// loadConfig loads layered config from user and project paths with env and
// flag overrides, then validates the result.
func loadConfig(g *Globals) (*config.Config, error) {
	cfg, err := config.LoadLayered(
		os.ExpandEnv("$HOME/.config/otakublog/config.yaml"),
		".otakublog/config.yaml",
	)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if g.Backend != "" {
		cfg.Storage.Backend = g.Backend
	}
	if g.DataDir != "" {
		cfg.Storage.Dir = g.DataDir
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// app holds the dependencies opened for one command.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	slots kv.Store
	store *records.Store
	close func()
}

// openApp loads config, installs the logger, opens the slot backend and
// loads the contact records.
func openApp(g *Globals) (*app, error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return nil, err
	}
	logger, restore, err := logging.Install(cfg.Log)
	if err != nil {
		return nil, err
	}
	slots, err := kv.DefaultRegistry().Open(cfg.Storage.Backend, kv.Options{
		Dir:          cfg.Storage.Dir,
		MaxSlotBytes: cfg.Storage.MaxSlotBytes,
	})
	if err != nil {
		restore()
		return nil, err
	}
	store := records.New(slots, records.WithLogger(logger.Named("records")))
	store.Load()
	logger.Debug("opened store",
		zap.String("backend", cfg.Storage.Backend),
		zap.Int("records", store.Len()))

	return &app{
		cfg:   cfg,
		log:   logger,
		slots: slots,
		store: store,
		close: func() {
			if err := slots.Close(); err != nil {
				logger.Warn("closing store", zap.Error(err))
			}
			restore()
		},
	}, nil
}

// exporter builds the resume exporter from config. A nil PDF renderer sends
// every export straight to the printer.
func (a *app) exporter() *resume.Exporter {
	var pdf resume.PDFRenderer
	if a.cfg.Export.PDF {
		pdf = resume.RodPDF{Bin: a.cfg.Export.Browser}
	}
	var printer resume.Printer
	if a.cfg.Export.PrintCommand != "" {
		printer = resume.CommandPrinter{Command: a.cfg.Export.PrintCommand}
	}
	return resume.NewExporter(pdf, printer,
		resume.WithLogger(a.log.Named("export")),
		resume.WithTimeout(a.cfg.Export.Timeout),
	)
}

// content returns the site content, preferring files under ui.content_dir.
func (a *app) content() fs.FS {
	return otakublog.OverlayFS(a.cfg.UI.ContentDir, otakublog.Content)
}

// isTTY reports whether f is an interactive terminal.
func isTTY(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// termWidth returns the width of f, or fallback when f is not a terminal.
func termWidth(f *os.File, fallback int) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}

// --- UI command ---

// UICmd opens the interactive terminal UI.
type UICmd struct {
	Start string `help:"Page shown first." enum:"home,about,contacts" default:"home"`
}

// teaRunner abstracts Bubble Tea program execution for testing.
type teaRunner interface {
	Run() (tea.Model, error)
}

// Run builds real dependencies and launches the terminal UI.
func (u *UICmd) Run(g *Globals) error {
	if !isTTY(os.Stdout) {
		return fmt.Errorf("ui: requires a terminal (TTY)")
	}
	a, err := openApp(g)
	if err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	defer a.close()

	ctrl := form.New(a.store,
		form.WithLogger(a.log.Named("form")),
		form.WithDraftSlots(a.slots),
	)
	m := dashboard.NewModel(a.store, ctrl, &resume.Selection{},
		dashboard.WithExporter(a.exporter(), a.cfg.Export.OutputDir),
		dashboard.WithContent(a.content()),
		dashboard.WithPageSize(a.cfg.UI.PageSize),
		dashboard.WithStartPage(startPage(u.Start)),
		dashboard.WithLogger(a.log.Named("ui")),
	)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	return u.run(true, prog)
}

// run executes the tea program, enabling testable wiring.
func (u *UICmd) run(isTTY bool, prog teaRunner) error {
	if !isTTY {
		return fmt.Errorf("ui: requires a terminal (TTY)")
	}
	_, err := prog.Run()
	return err
}

func startPage(name string) dashboard.Page {
	switch name {
	case "about":
		return dashboard.PageAbout
	case "contacts":
		return dashboard.PageContacts
	}
	return dashboard.PageHome
}

// --- Page command ---

// PageCmd prints one of the static site pages.
type PageCmd struct {
	Name  string `arg:"" help:"Page to show." enum:"home,about"`
	Plain bool   `help:"Print raw Markdown instead of styled output."`
}

// Run executes the page command.
func (p *PageCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return fmt.Errorf("page: %w", err)
	}
	content := otakublog.OverlayFS(cfg.UI.ContentDir, otakublog.Content)
	styled := !p.Plain && isTTY(os.Stdout)
	return p.run(os.Stdout, content, termWidth(os.Stdout, 80), styled)
}

// run renders the page to w, enabling testable wiring.
func (p *PageCmd) run(w io.Writer, content fs.FS, width int, styled bool) error {
	md, err := site.Markdown(content, site.Page(p.Name))
	if err != nil {
		return fmt.Errorf("page: %w", err)
	}
	if styled {
		md = site.Render(md, width)
	}
	_, _ = fmt.Fprint(w, md)
	return nil
}

// --- Exit codes ---

const (
	exitSuccess = 0
	exitFailure = 1 // Invalid input, unknown contact or failed operation.
	exitSetup   = 2 // Configuration, storage or terminal problem.
)

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	if errors.Is(err, errInvalid) || errors.Is(err, errNotFound) ||
		errors.Is(err, errNotSaved) || errors.Is(err, errExportFailed) {
		return exitFailure
	}
	return exitSetup
}

// signalContext returns a context cancelled on interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("otakublog"),
		kong.Description("Anime blog with a contact manager and resume export."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run(&cli.Globals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
