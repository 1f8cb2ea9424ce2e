package console

import (
	"errors"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// FormConfirmer asks through a huh confirm field.  It needs a terminal on
// stdin; piped input goes through the console's line prompt instead.
type FormConfirmer struct{}

// Confirm shows prompt with Remove/Keep choices.  Aborting the form
// (Ctrl+C, Esc) declines.
func (FormConfirmer) Confirm(prompt string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(prompt).
		Affirmative("Remove").
		Negative("Keep").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

var isTerminal = term.IsTerminal

// WithTerminal switches to FormConfirmer when fd is a terminal and keeps
// the line prompt otherwise.
func (c *Console) WithTerminal(fd int) *Console {
	if isTerminal(fd) {
		c.confirm = FormConfirmer{}
	}
	return c
}
