package dashboard

import "github.com/charmbracelet/bubbles/key"

// navKeys holds bindings shared by the static pages.
type navKeys struct {
	Pages key.Binding
	Tab   key.Binding
	Up    key.Binding
	Down  key.Binding
	Quit  key.Binding
}

// ShortHelp returns the page bindings for the help bar.
func (k navKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Pages, k.Tab, k.Up, k.Down, k.Quit}
}

// FullHelp returns the page bindings grouped for expanded help.
func (k navKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pages, k.Tab},
		{k.Up, k.Down, k.Quit},
	}
}

// contactsKeys holds bindings for the contacts table.
type contactsKeys struct {
	Up       key.Binding
	Down     key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	PageSize key.Binding
	New      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	View     key.Binding
	Tab      key.Binding
	Quit     key.Binding
}

// ShortHelp returns the contacts bindings for the help bar.
func (k contactsKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.New, k.Edit, k.Delete, k.View, k.Quit}
}

// FullHelp returns the contacts bindings grouped for expanded help.
func (k contactsKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevPage, k.NextPage, k.PageSize},
		{k.New, k.Edit, k.Delete, k.View},
		{k.Tab, k.Quit},
	}
}

// formKeys holds bindings for the contact form.
type formKeys struct {
	Next   key.Binding
	Prev   key.Binding
	Cycle  key.Binding
	Toggle key.Binding
	Submit key.Binding
	Cancel key.Binding
}

// ShortHelp returns the form bindings for the help bar.
func (k formKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Cycle, k.Toggle, k.Submit, k.Cancel}
}

// FullHelp returns the form bindings grouped for expanded help.
func (k formKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev},
		{k.Cycle, k.Toggle},
		{k.Submit, k.Cancel},
	}
}

// resumeKeys holds bindings for the resume view.
type resumeKeys struct {
	Up     key.Binding
	Down   key.Binding
	Export key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// ShortHelp returns the resume bindings for the help bar.
func (k resumeKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Export, k.Back, k.Quit}
}

// FullHelp returns the resume bindings grouped for expanded help.
func (k resumeKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Export, k.Back, k.Quit},
	}
}

// confirmKeys holds bindings for the delete confirmation.
type confirmKeys struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns the confirmation bindings for the help bar.
func (k confirmKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}

// FullHelp returns the confirmation bindings grouped for expanded help.
func (k confirmKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Confirm, k.Cancel}}
}

// NavKeyMap returns the key bindings for the Home and About pages.
func NavKeyMap() navKeys {
	return navKeys{
		Pages: key.NewBinding(
			key.WithKeys("1", "2", "3"),
			key.WithHelp("1-3", "pages"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next page"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ContactsKeyMap returns the key bindings for the contacts table.
func ContactsKeyMap() contactsKeys {
	return contactsKeys{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "h", "pgup"),
			key.WithHelp("←/h", "prev page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "l", "pgdown"),
			key.WithHelp("→/l", "next page"),
		),
		PageSize: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rows per page"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		View: key.NewBinding(
			key.WithKeys("v", "enter"),
			key.WithHelp("v", "resume"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next page"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// FormKeyMap returns the key bindings for the contact form.
func FormKeyMap() formKeys {
	return formKeys{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab/↓", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab/↑", "prev field"),
		),
		Cycle: key.NewBinding(
			key.WithKeys("left", "right"),
			key.WithHelp("←/→", "choose"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle language"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ResumeKeyMap returns the key bindings for the resume view.
func ResumeKeyMap() resumeKeys {
	return resumeKeys{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		Export: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "export pdf"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc", "back to contacts"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ConfirmKeyMap returns the key bindings for the delete confirmation.
func ConfirmKeyMap() confirmKeys {
	return confirmKeys{
		Confirm: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y", "delete"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n/esc", "keep"),
		),
	}
}
