package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/huh/spinner"
	"golang.org/x/term"
)

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// RunWithSpinner runs fn, showing a spinner titled title on w while it
// works. When w is not a terminal fn simply runs. fn is never retried.
func RunWithSpinner(w io.Writer, title string, fn func() error) error {
	if !IsTerminal(w) {
		return fn()
	}

	accessible := os.Getenv("ACCESSIBLE") != ""
	var fnErr error
	spinErr := spinner.New().
		Title(title).
		Accessible(accessible).
		Output(w).
		Action(func() {
			fnErr = fn()
		}).
		Run()
	if spinErr != nil {
		return spinErr
	}
	return fnErr
}
