package action

import "strings"

// Generic prompt fallbacks. The UI renders these verbatim when the
// descriptor requires confirmation but omits the strings.
const (
	defaultConfirmTitle   = "Confirm action"
	defaultConfirmMessage = "Are you sure you want to proceed?"
	defaultConfirmLabel   = "Confirm"
	defaultCancelLabel    = "Cancel"
)

// ResolveConfirm inspects the descriptor's confirmation fields and returns a
// fully-populated prompt, or nil when no confirmation is required.
// Confirmation is required iff confirm_required is set, or a non-empty
// confirm_message or confirm_title is supplied.
func ResolveConfirm(d *RawDescriptor) *Confirm {
	title := strings.TrimSpace(d.ConfirmTitle)
	message := strings.TrimSpace(d.ConfirmMessage)
	if !d.ConfirmRequired && title == "" && message == "" {
		return nil
	}

	c := &Confirm{
		Title:        title,
		Message:      message,
		ConfirmLabel: strings.TrimSpace(d.ConfirmLabel),
		CancelLabel:  strings.TrimSpace(d.CancelLabel),
	}
	if c.Title == "" {
		c.Title = defaultConfirmTitle
	}
	if c.Message == "" {
		c.Message = defaultConfirmMessage
	}
	if c.ConfirmLabel == "" {
		c.ConfirmLabel = defaultConfirmLabel
	}
	if c.CancelLabel == "" {
		c.CancelLabel = defaultCancelLabel
	}
	return c
}
