package ui

import (
	"github.com/charmbracelet/lipgloss"
)

const (
	brandPurple = "#2a003d"
	brandYellow = "#f9d923"
	brandViolet = "#440154"
)

var styles = NewPalette(brandPurple, brandYellow, brandViolet, "#FF5F87", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	brand    lipgloss.Style
	subtitle lipgloss.Style
	track    lipgloss.Style
	button   lipgloss.Style
	time     lipgloss.Style
	admin    lipgloss.Style
	err      lipgloss.Style
	help     lipgloss.Style
}

func NewPalette(bg, accent, panel, e, h string) *Palette {
	return &Palette{
		brand:    NewBold(accent).Background(lipgloss.Color(bg)).Padding(0, 2),
		subtitle: NewEm(accent),
		track:    NewStyle(h),
		button:   NewBold(bg).Background(lipgloss.Color(accent)).Padding(0, 1),
		time:     NewStyle(accent),
		admin:    NewBold(accent).Background(lipgloss.Color(panel)).Padding(0, 1),
		err:      NewBold(e),
		help:     NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
