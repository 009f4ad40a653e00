// Package display provides terminal formatting for courseta output.
package display

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/courseta/courseta/internal/merge"
	"github.com/courseta/courseta/internal/slack"
)

var (
	// Styles
	Muted    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	Dim      = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af"))
	Bold     = lipgloss.NewStyle().Bold(true)
	Success  = lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a"))
	ErrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))
)

// Truncate shortens a string to maxLen, adding ellipsis if needed.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// SuccessMsg prints a green checkmark + message.
func SuccessMsg(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(Success.Render("✓") + " " + msg)
}

// ErrorMsg prints a red X + message to stderr.
func ErrorMsg(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, ErrStyle.Render("✗")+" "+msg)
}

// Header prints a section header.
func Header(title string) {
	fmt.Println(Bold.Render(title))
}

// oneLine collapses whitespace so a message fits one report row.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// DeliveryReport renders the itemized outcome of a send batch: one line per
// confirmed send, one line per failed recipient, and a summary.
func DeliveryReport(report *slack.DeliveryReport) string {
	var b strings.Builder

	b.WriteString(Bold.Render("Delivery report") + " " + Dim.Render(report.BatchID) + "\n")

	channels := make([]string, 0, len(report.Sent))
	for ch := range report.Sent {
		channels = append(channels, ch)
	}
	sort.Strings(channels)

	for _, ch := range channels {
		text := Truncate(oneLine(report.Sent[ch]), 60)
		b.WriteString(Success.Render("✓") + " " + ch + " " + Muted.Render(text) + "\n")
	}
	for _, f := range report.Failed {
		b.WriteString(ErrStyle.Render("✗") + " " + f.Username + " " + Muted.Render(f.Err.Error()) + "\n")
	}

	summary := fmt.Sprintf("%d sent, %d failed", len(report.Sent), len(report.Failed))
	b.WriteString(Dim.Render(summary) + "\n")
	return b.String()
}

// Preview renders merged messages for inspection before sending, each entry
// under a styled key header.
func Preview(results merge.Results) string {
	var b strings.Builder
	for _, e := range results.Entries() {
		b.WriteString(Bold.Render(e.Key) + "\n")
		b.WriteString(e.Text)
		if !strings.HasSuffix(e.Text, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
