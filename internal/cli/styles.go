// Package cli provides shared styling for terminal output.
package cli

import "github.com/charmbracelet/lipgloss"

// Styles used across commands.
var (
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	InfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	WarnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	SubtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)
