package ui

import (
	gloss "github.com/charmbracelet/lipgloss"
)

var (
	HeaderTitleStyle = gloss.NewStyle().
				Foreground(gloss.Color("#89b4fa")).
				Bold(true)

	HeaderAuthorStyle = gloss.NewStyle().
				Foreground(gloss.Color("#585b70")).
				Italic(true)

	TextStyle = gloss.NewStyle().
			Foreground(gloss.Color("#CDD6F4"))

	QuoteStyle = gloss.NewStyle().
			Foreground(gloss.Color("#a6adc8")).
			Italic(true)

	GutterStyle = gloss.NewStyle().
			Foreground(gloss.Color("#585b70"))

	StatusStyle = gloss.NewStyle().
			Foreground(gloss.Color("#89b4fa"))

	StatusMutedStyle = gloss.NewStyle().
				Foreground(gloss.Color("#585b70"))

	PanelStyle = gloss.NewStyle().
			Border(gloss.RoundedBorder()).
			BorderForeground(gloss.Color("#89b4fa")).
			Padding(0, 1)

	PanelTitleStyle = gloss.NewStyle().
			Foreground(gloss.Color("#89b4fa")).
			Bold(true)

	PromptStyle = gloss.NewStyle().
			Foreground(gloss.Color("#f9e2af"))

	SelectedStyle = gloss.NewStyle().
			Foreground(gloss.Color("#89b4fa")).
			Bold(true)

	DimStyle = gloss.NewStyle().
			Foreground(gloss.Color("#585b70"))

	MatchStyle = gloss.NewStyle().
			Foreground(gloss.Color("#1e1e2e")).
			Background(gloss.Color("#f9e2af"))
)

var headingColors = []string{
	"#89b4fa", // h1
	"#74c7ec",
	"#89dceb",
	"#94e2d5",
	"#a6e3a1",
	"#cdd6f4", // h6
}

// HeadingStyle picks the style for a heading of the given level (1-6).
func HeadingStyle(level int) gloss.Style {
	if level < 1 {
		level = 1
	}
	if level > len(headingColors) {
		level = len(headingColors)
	}
	return gloss.NewStyle().Foreground(gloss.Color(headingColors[level-1])).Bold(true)
}
