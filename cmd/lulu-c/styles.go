package main

import "github.com/charmbracelet/lipgloss"

// Palette shared by the command output
var (
	accent      = lipgloss.Color("#8BC34A")
	primary     = lipgloss.Color("#2196F3")
	muted       = lipgloss.Color("#6b7785")
	destructive = lipgloss.Color("#e53935")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(primary)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(destructive).Bold(true)
)
