package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const (
	terminalWidthBackup = 80
	maxTextWidth        = 100
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
)

// printer writes command output, styling it only for terminals.
// The first write error is kept and returned by Err.
type printer struct {
	w      io.Writer
	styled bool
	width  int
	err    error
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w, styled: shouldUseColor(w), width: terminalWidth(w)}
}

func (p *printer) Printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) Println(args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.w, args...)
}

func (p *printer) Err() error {
	if p.err != nil {
		return fmt.Errorf("failed to write output: %w", p.err)
	}
	return nil
}

func (p *printer) heading(s string) string {
	return p.render(headingStyle, s)
}

func (p *printer) muted(s string) string {
	return p.render(mutedStyle, s)
}

func (p *printer) accent(s string) string {
	return p.render(accentStyle, s)
}

func (p *printer) render(style lipgloss.Style, s string) string {
	if !p.styled {
		return s
	}
	return style.Render(s)
}

// textWidth is the wrap width for long text.
func (p *printer) textWidth() int {
	return min(p.width, maxTextWidth)
}

func terminalWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok {
		return terminalWidthBackup
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
