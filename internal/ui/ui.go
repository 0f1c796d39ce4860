package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	noticeColor  = color.New(color.FgYellow)

	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	hintStyle   = lipgloss.NewStyle().Faint(true)
)

// Success prints a green line
func Success(w io.Writer, format string, args ...interface{}) {
	successColor.Fprintln(w, fmt.Sprintf(format, args...))
}

// Error prints err in red
func Error(w io.Writer, err error) {
	errorColor.Fprintln(w, err.Error())
}

// Notice prints a yellow line
func Notice(w io.Writer, format string, args ...interface{}) {
	noticeColor.Fprintln(w, fmt.Sprintf(format, args...))
}

// Models prints ids below a green "Models:" header, one per line
func Models(w io.Writer, ids []string) {
	successColor.Fprintln(w, "Models: ")
	for _, id := range ids {
		fmt.Fprintln(w, id)
	}
}

// Banner returns the text shown when a conversation starts
func Banner(model string) string {
	var b strings.Builder
	b.WriteString(bannerStyle.Render("Conversation with " + model))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("Type q or quit to exit."))
	return b.String()
}
