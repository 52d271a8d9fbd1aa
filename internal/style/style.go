// Package style renders variant's terminal output using Lipgloss.
package style

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	success = lipgloss.NewStyle().
		Foreground(lipgloss.Color("10")). // Green
		Bold(true)

	warning = lipgloss.NewStyle().
		Foreground(lipgloss.Color("11")). // Yellow
		Bold(true)

	failure = lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")). // Red
		Bold(true)

	// Variant renders a variant name.
	Variant = lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")) // Blue

	// Path renders key and file paths.
	Path = lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")) // Gray

	// Hint renders help text under a result, such as a doctor fix hint.
	Hint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Italic(true)

	// Heading renders check names and prompt titles.
	Heading = lipgloss.NewStyle().
		Bold(true)

	SuccessPrefix = success.Render("✓")
	WarningPrefix = warning.Render("⚠")
	ErrorPrefix   = failure.Render("✗")

	// ActiveMarker flags the variant git is signing with.
	ActiveMarker = success.Render("*")
)

// VariantLine renders one entry of the variant list, marked when active.
func VariantLine(name string, active bool) string {
	marker := " "
	if active {
		marker = ActiveMarker
	}
	return marker + " " + Variant.Render(name)
}

// Identity renders a git identity as "Name <email>".
func Identity(name, email string) string {
	return fmt.Sprintf("%s <%s>", name, email)
}
