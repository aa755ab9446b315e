package tui

import "github.com/charmbracelet/lipgloss"

var helpStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("8"))
