package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// Rows taken by the header, command bar and status bar.
const chromeLines = 3

func (m Model) bodyHeight() int {
	return max(m.height-chromeLines, 1)
}

// listHeight is the number of make rows that fit below the search line.
func (m Model) listHeight() int {
	h := m.bodyHeight()
	if m.searching || m.data.search != "" {
		h--
	}
	return max(h, 1)
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	switch m.screen {
	case screenDetail:
		b.WriteString(m.detail.View())
	default:
		b.WriteString(m.renderMakes())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bar := newBarStyle(m.theme.Surface)

	parts := []string{styles.Logo.Render("vpick")}
	switch m.screen {
	case screenDetail:
		name := m.data.currentName()
		if name == "" {
			name = fmt.Sprintf("make %d", m.data.currentID)
		}
		parts = append(parts, bar.text(name, styles.AccentText))
	default:
		count := fmt.Sprintf("%d makes", len(m.data.all))
		if m.data.search != "" {
			count = fmt.Sprintf("%d of %d makes", len(m.data.makes), len(m.data.all))
		}
		parts = append(parts, bar.text(count, styles.MutedText))
	}
	if m.data.loading {
		parts = append(parts, bar.text("loading…", styles.WarningText))
	}
	return bar.fill(bar.join(parts, "  "), m.width)
}

func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()
	bindings := m.keys.ShortHelp()
	if m.screen == screenDetail {
		bindings = []key.Binding{m.keys.Escape, m.keys.Open, m.keys.CycleTheme, m.keys.Help, m.keys.Quit}
	}
	items := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		items = append(items, styles.WarningText.Render("<"+h.Key+">")+" "+styles.MutedText.Render(h.Desc))
	}
	return truncateLine(strings.Join(items, "  "), m.width)
}

func (m Model) renderMakes() string {
	styles := m.theme.Styles()
	var lines []string

	if m.searching {
		lines = append(lines, m.search.View())
	} else if m.data.search != "" {
		lines = append(lines, styles.AccentText.Render("/"+m.data.search))
	}

	height := m.listHeight()
	switch {
	case len(m.data.makes) == 0 && m.data.loading:
		lines = append(lines, styles.MutedText.Render("Loading makes…"))
	case len(m.data.makes) == 0 && m.data.search != "":
		lines = append(lines, styles.MutedText.Render("No makes match "+fmt.Sprintf("%q", m.data.search)))
	case len(m.data.makes) == 0:
		lines = append(lines, styles.MutedText.Render("No makes loaded. Press r to reload."))
	default:
		start, end := visibleWindow(m.selected, len(m.data.makes), height)
		for i := start; i < end; i++ {
			mk := m.data.makes[i]
			row := fmt.Sprintf("%-8d %s", mk.ID, mk.Name)
			if i == m.selected {
				lines = append(lines, styles.Selected.Width(max(m.width, 1)).Render(row))
			} else {
				lines = append(lines, styles.Text.Render(row))
			}
		}
	}

	for len(lines) < m.bodyHeight() {
		lines = append(lines, "")
	}
	return strings.Join(lines[:m.bodyHeight()], "\n")
}

// visibleWindow returns the slice bounds of a list of n rows that keeps
// selected on screen.
func visibleWindow(selected, n, height int) (int, int) {
	if n <= height {
		return 0, n
	}
	start := selected - height/2
	start = max(start, 0)
	start = min(start, n-height)
	return start, start + height
}

// updateDetailViewport rebuilds the make detail content.
func (m *Model) updateDetailViewport() {
	if !m.ready {
		return
	}
	m.detail.Width = m.width
	m.detail.Height = m.bodyHeight()
	m.detail.SetContent(m.detailContent())
}

func (m Model) detailContent() string {
	styles := m.theme.Styles()
	if !m.data.hasCurrent {
		return styles.MutedText.Render("No make selected.")
	}

	var b strings.Builder
	section := func(title string, count int, loaded bool) {
		label := title
		if loaded {
			label = fmt.Sprintf("%s (%d)", title, count)
		}
		b.WriteString(styles.AccentText.Bold(true).Render(label))
		b.WriteString("\n")
		switch {
		case !loaded && m.data.loading:
			b.WriteString(styles.MutedText.Render("  loading…"))
			b.WriteString("\n")
		case !loaded:
			b.WriteString(styles.FaintText.Render("  not loaded (enter to retry)"))
			b.WriteString("\n")
		case count == 0:
			b.WriteString(styles.FaintText.Render("  none"))
			b.WriteString("\n")
		}
	}

	section("Vehicle types", len(m.data.types), m.data.typesLoaded)
	if m.data.typesLoaded {
		for _, t := range m.data.types {
			fmt.Fprintf(&b, "  %s\n", styles.Text.Render(t.Name))
		}
	}
	b.WriteString("\n")

	section("Models", len(m.data.models), m.data.modelsLoaded)
	if m.data.modelsLoaded {
		for _, mdl := range m.data.models {
			fmt.Fprintf(&b, "  %-8d %s\n", mdl.ID, styles.Text.Render(mdl.Name))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderStatus() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bar := newBarStyle(m.theme.Surface)

	var text string
	switch {
	case m.data.err != "":
		text = bar.text("error: "+m.data.err, styles.DangerText)
	case m.notice != "":
		text = bar.text(m.notice, styles.InfoText)
	case m.data.loading:
		text = bar.text("fetching…", styles.WarningText)
	default:
		text = bar.text("ready", styles.SuccessText)
	}
	return bar.fill(text, m.width)
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
