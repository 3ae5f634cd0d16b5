package ui

import (
	"github.com/charmbracelet/lipgloss"

	"bible-study/internal/config"
)

type styles struct {
	title     lipgloss.Style
	verseNum  lipgloss.Style
	text      lipgloss.Style
	dim       lipgloss.Style
	bold      lipgloss.Style
	cursor    lipgloss.Style
	selected  lipgloss.Style
	read      lipgloss.Style
	errorText lipgloss.Style
	help      lipgloss.Style
	pane      lipgloss.Style
	focused   lipgloss.Style
}

func newStyles(t config.Theme) styles {
	highlight := lipgloss.Color(t.HighlightColor)
	verseNum := lipgloss.Color(t.VerseNumColor)
	text := lipgloss.Color(t.TextColor)
	dim := lipgloss.Color(t.DimColor)

	pane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(0, 1)

	return styles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(highlight),
		verseNum:  lipgloss.NewStyle().Foreground(verseNum).Bold(true),
		text:      lipgloss.NewStyle().Foreground(text),
		dim:       lipgloss.NewStyle().Foreground(dim),
		bold:      lipgloss.NewStyle().Bold(true).Foreground(highlight),
		cursor:    lipgloss.NewStyle().Foreground(highlight).Bold(true),
		selected:  lipgloss.NewStyle().Foreground(highlight),
		read:      lipgloss.NewStyle().Foreground(verseNum),
		errorText: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		help: lipgloss.NewStyle().
			Foreground(verseNum).
			PaddingLeft(1),
		pane:    pane,
		focused: pane.BorderForeground(highlight),
	}
}
