// Package ui holds terminal styles for ftree CLI output.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Color styles for consistent output
var (
	// Status indicators
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	// Entities
	PersonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("213"))

	RelationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	// UI elements
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(lipgloss.Color("99"))

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// FormatSuccess formats a success message
func FormatSuccess(msg string) string {
	return SuccessStyle.Render("✅ " + msg)
}

// FormatError formats an error message
func FormatError(msg string) string {
	return ErrorStyle.Render("❌ " + msg)
}

// FormatWarning formats a warning message
func FormatWarning(msg string) string {
	return WarningStyle.Render("⚠️  " + msg)
}

// FormatInfo formats an info message
func FormatInfo(msg string) string {
	return InfoStyle.Render("ℹ️  " + msg)
}

// FormatPerson renders a person id and display name for listings
func FormatPerson(id, fullName string) string {
	return PersonStyle.Render(fullName) + " " + DimStyle.Render("("+id+")")
}
