package dashboard

import (
	"fmt"
	"strings"
)

// confirmState holds the record awaiting delete confirmation.
type confirmState struct {
	id    string
	name  string
	email string
}

// View renders the confirmation prompt for the given dimensions.
func (cs confirmState) View(width, height int) string {
	var b strings.Builder
	name := cs.name
	if name == "" {
		name = cs.id
	}
	fmt.Fprintf(&b, "Delete %s?\n", name)
	if cs.email != "" {
		fmt.Fprintf(&b, "\n  %s\n", cs.email)
	}
	b.WriteString("\n  The contact is removed from storage. This cannot be undone.")
	b.WriteString("\n\n  [y] Delete   [n/Esc] Keep")
	return b.String()
}
