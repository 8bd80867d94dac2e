package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// barStyle paints text onto a filled bar. lipgloss resets the background
// after every styled segment, so each word and gap is painted separately.
// See https://github.com/charmbracelet/lipgloss/discussions/78
type barStyle struct {
	bg    lipgloss.Color
	blank lipgloss.Style
}

func newBarStyle(bgColor string) barStyle {
	bg := lipgloss.Color(bgColor)
	return barStyle{bg: bg, blank: lipgloss.NewStyle().Background(bg)}
}

// text renders s in style with every rune, spaces included, on the bar color.
func (b barStyle) text(s string, style lipgloss.Style) string {
	if s == "" {
		return ""
	}
	painted := style.Background(b.bg)
	words := strings.Split(s, " ")
	for i, w := range words {
		if w != "" {
			words[i] = painted.Render(w)
		}
	}
	return strings.Join(words, b.blank.Render(" "))
}

func (b barStyle) join(parts []string, sep string) string {
	return strings.Join(parts, b.blank.Render(sep))
}

// fill pads content to width with the bar color.
func (b barStyle) fill(content string, width int) string {
	return b.blank.Width(width).Render(content)
}
