package resume

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// ErrExportInProgress is returned when an export is requested while another
// one is still running.
var ErrExportInProgress = errors.New("resume: export already in progress")

// DefaultPrintCommand is the platform print command used as the fallback.
const DefaultPrintCommand = "lp"

// PDFRenderer turns a standalone HTML page into PDF bytes.
type PDFRenderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

// Printer sends plain text to the platform print facility.
type Printer interface {
	Print(ctx context.Context, text string) error
}

// Result describes how an export finished.
type Result struct {
	// Path is the written PDF file, empty when the print fallback was used.
	Path string
	// Printed is true when PDF generation failed and the view was printed.
	Printed bool
	// PDFErr is the PDF failure that triggered the fallback.
	PDFErr error
}

// Exporter produces a PDF of a view, falling back to printing when PDF
// generation fails. Only one export runs at a time.
type Exporter struct {
	pdf      PDFRenderer
	printer  Printer
	log      *zap.Logger
	timeout  time.Duration
	inFlight atomic.Bool
}

// ExportOption configures an Exporter.
type ExportOption func(*Exporter)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) ExportOption {
	return func(e *Exporter) { e.log = l }
}

// WithTimeout bounds a whole export, including the fallback. Zero means no
// bound beyond the caller's context.
func WithTimeout(d time.Duration) ExportOption {
	return func(e *Exporter) { e.timeout = d }
}

// NewExporter creates an Exporter. A nil pdf renderer always uses the
// printer; a nil printer turns a PDF failure into an error.
func NewExporter(pdf PDFRenderer, printer Printer, opts ...ExportOption) *Exporter {
	e := &Exporter{pdf: pdf, printer: printer, log: zap.NewNop()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Busy reports whether an export is running.
func (e *Exporter) Busy() bool { return e.inFlight.Load() }

// Export writes v as a PDF to dst. If the PDF cannot be produced, the plain
// text rendering is sent to the printer instead. When both fail the returned
// error joins the two causes.
func (e *Exporter) Export(ctx context.Context, v View, dst string) (Result, error) {
	if !e.inFlight.CompareAndSwap(false, true) {
		return Result{}, ErrExportInProgress
	}
	defer e.inFlight.Store(false)

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	pdfErr := e.writePDF(ctx, v, dst)
	if pdfErr == nil {
		e.log.Info("resume exported", zap.String("id", v.ID), zap.String("path", dst))
		return Result{Path: dst}, nil
	}
	e.log.Warn("pdf export failed, falling back to print", zap.String("id", v.ID), zap.Error(pdfErr))

	if e.printer == nil {
		return Result{PDFErr: pdfErr}, pdfErr
	}
	if err := e.printer.Print(ctx, v.PlainText()); err != nil {
		return Result{PDFErr: pdfErr}, errors.Join(pdfErr, fmt.Errorf("resume: print fallback: %w", err))
	}
	return Result{Printed: true, PDFErr: pdfErr}, nil
}

func (e *Exporter) writePDF(ctx context.Context, v View, dst string) error {
	if e.pdf == nil {
		return errors.New("resume: pdf export disabled")
	}
	html, err := v.HTML()
	if err != nil {
		return err
	}
	data, err := e.pdf.RenderPDF(ctx, html)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("resume: creating output dir: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("resume: writing pdf: %w", err)
	}
	return nil
}

// FileName returns the default PDF file name for v.
func FileName(v View) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		case r == ' ' || r == '_':
			return '_'
		}
		return -1
	}, v.Name)
	if name == "" {
		name = "resume"
	}
	return name + "_resume.pdf"
}

// A4 paper size in inches.
const (
	a4Width  = 8.27
	a4Height = 11.69
)

// RodPDF renders PDFs with a headless Chromium driven by go-rod.
type RodPDF struct {
	// Bin is the browser binary. Empty lets the launcher find or download one.
	Bin string
}

// RenderPDF launches a browser, loads html and prints it to an A4 PDF.
func (r RodPDF) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	l := launcher.New().Headless(true).Context(ctx)
	if r.Bin != "" {
		l = l.Bin(r.Bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("resume: launching browser: %w", err)
	}
	defer l.Kill()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("resume: connecting to browser: %w", err)
	}
	defer func() { _ = browser.Close() }()

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("resume: opening page: %w", err)
	}
	if err := page.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("resume: loading html: %w", err)
	}

	w, h := a4Width, a4Height
	stream, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground: true,
		PaperWidth:      &w,
		PaperHeight:     &h,
	})
	if err != nil {
		return nil, fmt.Errorf("resume: printing to pdf: %w", err)
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("resume: reading pdf stream: %w", err)
	}
	return data, nil
}

// CommandPrinter pipes text to a shell command, by default DefaultPrintCommand.
type CommandPrinter struct {
	Command string
}

// Print runs the command via sh -c with text on stdin. A non-zero exit is
// returned as an error carrying the command's output.
func (p CommandPrinter) Print(ctx context.Context, text string) error {
	command := p.Command
	if command == "" {
		command = DefaultPrintCommand
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdin = strings.NewReader(text)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("resume: %s: %w: %s", command, err, strings.TrimSpace(string(output)))
	}
	return nil
}
