package dashboard

import "github.com/charmbracelet/bubbles/help"

// HelpBindings returns the help.KeyMap for the given page,
// providing context-aware help bar content.
func HelpBindings(page Page, confirming bool) help.KeyMap {
	if confirming {
		return ConfirmKeyMap()
	}
	switch page {
	case PageContacts:
		return ContactsKeyMap()
	case PageForm:
		return FormKeyMap()
	case PageResume:
		return ResumeKeyMap()
	default:
		return NavKeyMap()
	}
}
