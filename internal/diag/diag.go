// Package diag renders errors and status lines for the terminal.
package diag

import (
	"errors"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Terminal styles shared by the turf commands.
// Lipgloss automatically degrades colors based on terminal capabilities.
var (
	// StylePath is used for file names and section headers.
	StylePath = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	// StyleError is used for the "Error:" prefix.
	StyleError = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	// StyleWarn is used for warnings and the "Caused by:" header.
	StyleWarn = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	// StyleOK is used for success lines.
	StyleOK = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	// StyleHint is used for secondary details.
	StyleHint = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// RenderStyle applies a lipgloss style to text when colors are enabled.
// When useColors is false, the text is returned unmodified.
func RenderStyle(style lipgloss.Style, text string, useColors bool) string {
	if !useColors {
		return text
	}
	return style.Render(text)
}

// ShouldUseColors determines if colors should be enabled for stream.
func ShouldUseColors(force bool, stream *os.File) bool {
	// Explicit flag wins
	if force {
		return true
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	// Check for FORCE_COLOR environment variable (GitHub Actions, etc.)
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}

	// GitHub Actions supports colors
	if os.Getenv("GITHUB_ACTIONS") == "true" {
		return true
	}

	if stream == nil {
		return false
	}
	return term.IsTerminal(int(stream.Fd()))
}

// messager describes an error that can report its own message without the chain.
type messager interface {
	Message() string
}

// Chain lists the message of err followed by the message of each cause.
// Errors that cannot report their own message end the chain with their
// full Error text.
func Chain(err error) []string {
	var messages []string
	for current := err; current != nil; {
		m, ok := current.(messager)
		if !ok {
			messages = append(messages, current.Error())
			break
		}
		messages = append(messages, m.Message())
		current = errors.Unwrap(current)
	}
	return messages
}

// Format renders err without colors. See Render.
func Format(err error) string {
	return Render(err, false)
}

// Render renders err as "Error: <message>" followed, when err has causes,
// by a "Caused by:" line and one indented line per cause.
func Render(err error, useColors bool) string {
	return render("Error:", StyleError, err, useColors)
}

// Warning renders err like Render with a "Warning:" prefix.
func Warning(err error, useColors bool) string {
	return render("Warning:", StyleWarn, err, useColors)
}

func render(prefix string, style lipgloss.Style, err error, useColors bool) string {
	if err == nil {
		return ""
	}

	messages := Chain(err)

	var sb strings.Builder
	for i, msg := range messages {
		lines := strings.Split(msg, "\n")
		if i == 0 {
			sb.WriteString(RenderStyle(style, prefix, useColors))
			sb.WriteString(" " + lines[0])
			for _, line := range lines[1:] {
				sb.WriteString("\n" + strings.Repeat(" ", len(prefix)+1) + line)
			}
			continue
		}
		if i == 1 {
			sb.WriteString("\n" + RenderStyle(StyleWarn, "Caused by:", useColors))
		}
		sb.WriteString("\n    " + lines[0])
		for _, line := range lines[1:] {
			sb.WriteString("\n      " + line)
		}
	}
	return sb.String()
}
