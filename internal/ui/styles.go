package ui

import "github.com/charmbracelet/lipgloss"

var textStyle = lipgloss.NewStyle()
