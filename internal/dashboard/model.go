package dashboard

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/smileynet/otakublog/internal/form"
	"github.com/smileynet/otakublog/internal/resume"
	"github.com/smileynet/otakublog/internal/site"
)

// navbarHeight is the number of lines used by the navbar and its spacing.
const navbarHeight = 2

// footerHeight is the number of lines reserved for the status line and help bar.
const footerHeight = 2

// borderChrome is the number of lines consumed by top + bottom borders.
const borderChrome = 2

// Model is the root Bubble Tea model for the terminal UI.
// It routes messages to the current page and owns the shared layout.
type Model struct {
	page     Page
	width    int
	height   int
	viewport viewport.Model
	help     help.Model

	store     RecordStore
	ctrl      *form.Controller
	selection *resume.Selection
	exporter  Exporter
	exportDir string
	content   fs.FS
	cache     *Cache
	log       *zap.Logger

	contacts  contactsState
	form      formState
	confirm   *confirmState
	view      resume.View
	exporting bool

	status    string
	statusErr bool
}

// Option configures a Model.
type Option func(*Model)

// WithExporter enables resume export into dir.
func WithExporter(e Exporter, dir string) Option {
	return func(m *Model) {
		m.exporter = e
		m.exportDir = dir
	}
}

// WithContent sets the filesystem holding the static pages.
func WithContent(fsys fs.FS) Option {
	return func(m *Model) { m.content = fsys }
}

// WithPageSize sets the initial contacts rows per page.
func WithPageSize(n int) Option {
	return func(m *Model) { m.contacts = newContactsState(n) }
}

// WithStartPage sets the page shown first.
func WithStartPage(p Page) Option {
	return func(m *Model) { m.page = p }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Model) { m.log = l }
}

// NewModel creates a Model on the Home page over the given store, form
// controller and resume selection.
func NewModel(store RecordStore, ctrl *form.Controller, sel *resume.Selection, opts ...Option) Model {
	m := Model{
		page:      PageHome,
		viewport:  viewport.New(0, 0),
		help:      help.New(),
		store:     store,
		ctrl:      ctrl,
		selection: sel,
		cache:     NewCache(),
		log:       zap.NewNop(),
		contacts:  newContactsState(PageSizes[0]),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.contacts = m.contacts.setRecords(store.List())
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages with page-based routing.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.viewport.Width = m.contentWidth()
		m.viewport.Height = m.contentHeight()
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StatusMsg:
		m.setStatus(msg.Text, msg.Error)
		return m, nil

	case NewContactMsg:
		if m.ctrl.Editing() {
			m.ctrl.Reset()
		}
		return m.openForm(), nil

	case EditContactMsg:
		rec, ok := m.store.Get(msg.ID)
		if !ok {
			m.setStatus("Contact no longer exists", true)
			return m, nil
		}
		m.ctrl.LoadForEdit(rec)
		return m.openForm(), nil

	case DeleteContactMsg:
		rec, ok := m.store.Get(msg.ID)
		if !ok {
			return m, nil
		}
		m.confirm = &confirmState{id: rec.ID, name: rec.FullName(), email: rec.Email}
		return m, nil

	case ViewResumeMsg:
		if rec, ok := m.store.Get(msg.ID); ok {
			m.selection.Select(rec)
		}
		return m.openResume(), nil

	case FormSubmittedMsg:
		if msg.Updated {
			m.setStatus("Contact updated successfully!", false)
		} else {
			m.setStatus("Contact added successfully!", false)
		}
		if cur, ok := m.selection.Current(); ok && cur.ID == msg.Record.ID {
			m.selection.Select(msg.Record)
		}
		m.reportPersistErr()
		m.reloadContacts()
		m.page = PageContacts
		return m, nil

	case FormCancelledMsg:
		m.page = PageContacts
		return m, nil

	case ExportDoneMsg:
		m.exporting = false
		switch {
		case errors.Is(msg.Err, resume.ErrExportInProgress):
			m.setStatus("An export is already running", true)
		case msg.Err != nil:
			m.log.Error("export failed", zap.String("name", msg.Name), zap.Error(msg.Err))
			m.setStatus("Export failed: "+msg.Err.Error(), true)
		case msg.Result.Printed:
			m.setStatus("PDF generation failed; sent "+msg.Name+" to the printer", false)
		default:
			m.setStatus("Exported "+msg.Result.Path, false)
		}
		return m, nil
	}

	if m.page == PageForm {
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKey processes key messages with global and page-specific routing.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.confirm != nil {
		return m.handleConfirmKey(msg)
	}
	if m.page == PageForm {
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "1", "2", "3":
		return m.goTo(navPages[msg.String()[0]-'1']), nil
	case "tab":
		i := slices.Index(navPages, m.page)
		return m.goTo(navPages[(i+1)%len(navPages)]), nil
	}

	switch m.page {
	case PageContacts:
		var cmd tea.Cmd
		m.contacts, cmd = m.contacts.Update(msg)
		return m, cmd

	case PageResume:
		switch msg.String() {
		case "esc", "b":
			m.page = PageContacts
			return m, nil
		case "x":
			return m.startExport()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		id, name := m.confirm.id, m.confirm.name
		m.confirm = nil
		if m.store.Remove(id) {
			if cur, ok := m.selection.Current(); ok && cur.ID == id {
				m.selection.Clear()
			}
			m.setStatus("Deleted "+name, false)
			m.reportPersistErr()
		}
		m.reloadContacts()
	case "n", "esc":
		m.confirm = nil
	}
	return m, nil
}

// goTo switches to a navbar page.
func (m Model) goTo(p Page) Model {
	m.page = p
	if p == PageContacts {
		m.reloadContacts()
	}
	m.refreshViewport()
	return m
}

func (m Model) openForm() Model {
	m.form = newFormState(m.ctrl)
	m.page = PageForm
	return m
}

// openResume shows the selected record, or redirects to Contacts when
// nothing is selected.
func (m Model) openResume() Model {
	v, err := resume.Present(m.selection)
	if err != nil {
		m.page = PageContacts
		m.setStatus("Select a contact to view their resume", true)
		return m
	}
	m.view = v
	m.page = PageResume
	m.refreshViewport()
	return m
}

func (m Model) startExport() (tea.Model, tea.Cmd) {
	if m.exporter == nil {
		m.setStatus("Export is not configured", true)
		return m, nil
	}
	if m.exporting {
		m.setStatus("An export is already running", true)
		return m, nil
	}
	m.exporting = true
	m.setStatus("Exporting "+m.view.Name+"...", false)
	exporter, v := m.exporter, m.view
	dst := filepath.Join(m.exportDir, resume.FileName(v))
	return m, func() tea.Msg {
		res, err := exporter.Export(context.Background(), v, dst)
		return ExportDoneMsg{Name: v.Name, Result: res, Err: err}
	}
}

func (m *Model) reloadContacts() {
	m.contacts = m.contacts.setRecords(m.store.List())
}

func (m *Model) reportPersistErr() {
	if err := m.store.PersistErr(); err != nil {
		m.setStatus("Saved for this session only: "+err.Error(), true)
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// refreshViewport loads the viewport with the current page's rendering.
func (m *Model) refreshViewport() {
	if m.width == 0 {
		return
	}
	switch m.page {
	case PageHome, PageAbout:
		m.viewport.SetContent(m.renderStatic(m.page))
		m.viewport.GotoTop()
	case PageResume:
		m.viewport.SetContent(m.view.Terminal(m.contentWidth()))
		m.viewport.GotoTop()
	}
}

func (m *Model) renderStatic(p Page) string {
	width := m.contentWidth()
	if s, ok := m.cache.Get(p, width); ok {
		return s
	}
	if m.content == nil {
		return "No content available."
	}
	sp := site.PageHome
	if p == PageAbout {
		sp = site.PageAbout
	}
	md, err := site.Markdown(m.content, sp)
	if err != nil {
		m.log.Warn("loading page", zap.String("page", p.Title()), zap.Error(err))
		return errorText.Render("Could not load page: " + err.Error())
	}
	out := site.Render(md, width)
	m.cache.Set(p, width, out)
	return out
}

// contentWidth returns the usable width inside the frame.
func (m Model) contentWidth() int {
	return max(m.width-borderChrome, MinContentWidth)
}

// contentHeight returns the usable height for page content,
// accounting for the navbar, border chrome, status line and help bar.
func (m Model) contentHeight() int {
	h := m.height - navbarHeight - borderChrome - footerHeight
	if h < 1 {
		return 1
	}
	return h
}

// View renders the navbar, the framed page and the footer.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	width, height := m.contentWidth(), m.contentHeight()
	var body string
	switch {
	case m.confirm != nil:
		body = m.confirm.View(width, height)
	case m.page == PageContacts:
		body = m.contacts.View(width, height)
	case m.page == PageForm:
		body = m.form.View(width, height)
	default:
		body = m.viewport.View()
	}

	frame := Frame().Width(width).Height(height).Render(body)
	footer := statusLine(m.status, m.statusErr)
	helpView := m.help.View(HelpBindings(m.page, m.confirm != nil))

	return lipgloss.JoinVertical(lipgloss.Left,
		Navbar(m.page)+"\n",
		frame,
		footer,
		helpView,
	)
}

// CurrentPage returns the page being shown.
func (m Model) CurrentPage() Page { return m.page }

// Status returns the status line text and whether it reports an error.
func (m Model) Status() (string, bool) { return m.status, m.statusErr }
