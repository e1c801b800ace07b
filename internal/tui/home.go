package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/roam/internal/catalog"
	"github.com/naveenspark/roam/pkg/domain"
)

// perSection is how many top-rated places each Home section shows.
const perSection = 3

type homeSection struct {
	category string
	places   []domain.Place
}

type homeModel struct {
	sections []homeSection
	rows     []domain.Place // sections flattened in display order
	cursor   int
	width    int
	height   int
}

func (m homeModel) setPlaces(places []domain.Place) homeModel {
	m.sections = nil
	m.rows = nil
	for _, c := range domain.Categories {
		if c == domain.CategoryAll {
			continue
		}
		top := catalog.TopRated(places, c, perSection)
		if len(top) == 0 {
			continue
		}
		m.sections = append(m.sections, homeSection{category: c, places: top})
		m.rows = append(m.rows, top...)
	}
	if m.cursor >= len(m.rows) {
		m.cursor = 0
	}
	return m
}

func (m homeModel) Update(msg tea.Msg) (homeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "enter":
			if m.cursor < len(m.rows) {
				p := m.rows[m.cursor]
				return m, func() tea.Msg { return openDetailsMsg{place: p} }
			}
		}
	}
	return m, nil
}

func (m homeModel) View(name string) string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("Welcome back, "+name) + "\n")
	b.WriteString(" " + dimStyle.Render("Discover amazing places near you") + "\n\n")

	if len(m.rows) == 0 {
		b.WriteString(" " + dimStyle.Render("loading places..."))
		return b.String()
	}

	nameWidth := m.width - 34
	if nameWidth > 36 {
		nameWidth = 36
	}
	if nameWidth < 12 {
		nameWidth = 12
	}

	row := 0
	for _, s := range m.sections {
		b.WriteString(" " + CategoryStyle(s.category).Render(s.category) + "\n")
		for _, p := range s.places {
			line := "   " + placeLine(p, nameWidth)
			if row == m.cursor {
				line = " " + accentStyle.Render("›") + " " + placeLine(p, nameWidth)
				line = selectedRowBg.Render(line)
			}
			b.WriteString(line + "\n")
			row++
		}
		b.WriteString("\n")
	}
	return b.String()
}
