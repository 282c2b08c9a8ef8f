package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Colours shared by styles and probability bars
const (
	colorRed   = "#FF6B6B"
	colorBlack = "#495057"
	colorRank  = "#74B9FF"
	colorCard  = "#55EFC4"
	colorMuted = "#626262"
)

// Static styles for content elements
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Bold(true)

	SectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	RedCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorRed)).
			Bold(true)

	BlackCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorMuted))

	PaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorMuted)).
			Padding(0, 1)

	BannerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#04B575")).
			Padding(0, 1)
)

// Remaining cards are tinted towards shadeTarget by their draw probability,
// over a white base. Cards likely enough to read poorly get white text.
var shadeTarget = [3]float64{0, 100, 255}

const (
	shadeFloor     = 0.1
	shadeLightText = 0.2
)

// shadeColor blends white towards shadeTarget with alpha p
func shadeColor(p float64) string {
	alpha := p
	if alpha <= 0 {
		alpha = shadeFloor
	}
	alpha = min(alpha, 1)

	var rgb [3]int
	for i, target := range shadeTarget {
		rgb[i] = int(255 + (target-255)*alpha + 0.5)
	}
	return fmt.Sprintf("#%02X%02X%02X", rgb[0], rgb[1], rgb[2])
}

// cardShade styles a remaining card by its probability
func cardShade(p float64) lipgloss.Style {
	fg := "#000000"
	if p > shadeLightText {
		fg = "#FFFFFF"
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(fg)).
		Background(lipgloss.Color(shadeColor(p))).
		Padding(0, 1)
}
