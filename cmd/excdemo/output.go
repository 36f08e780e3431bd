package main

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	header = color.New(color.FgCyan, color.Bold).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
)

// configureColor disables color when asked to, or when out is not a terminal.
func configureColor(noColor bool, out io.Writer) {
	if noColor || !isTerminal(out) {
		color.NoColor = true
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// diagWriter renders fatal diagnostics in red.
type diagWriter struct {
	w io.Writer
}

func (d *diagWriter) Write(p []byte) (int, error) {
	if _, err := io.WriteString(d.w, red(string(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}
