// Package ui holds the small amount of terminal presentation bosh-ladle
// does: a colour palette, a few text styles and a progress spinner.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	White = lipgloss.Color("#E2E2E2")
	Gray  = lipgloss.Color("#888888")
	Blue  = lipgloss.Color("#5FAFFF")

	Green  = lipgloss.Color("#5FD787")
	Yellow = lipgloss.Color("#FFD787")
	Red    = lipgloss.Color("#FF8787")
)

var (
	// Label is used for field names in detail views.
	Label = lipgloss.NewStyle().
		Foreground(Gray).
		Bold(true)

	// ErrorText is for error messages.
	ErrorText = lipgloss.NewStyle().
			Foreground(Red).
			Bold(true)

	// SuccessText is for success messages.
	SuccessText = lipgloss.NewStyle().
			Foreground(Green).
			Bold(true)
)

// StateStyle returns the style for an EC2 instance state name.
func StateStyle(state string) lipgloss.Style {
	switch state {
	case "running":
		return lipgloss.NewStyle().Foreground(Green).Bold(true)
	case "pending":
		return lipgloss.NewStyle().Foreground(Yellow).Bold(true)
	case "stopping", "shutting-down", "terminated", "stopped":
		return lipgloss.NewStyle().Foreground(Red)
	default:
		return lipgloss.NewStyle().Foreground(White)
	}
}
