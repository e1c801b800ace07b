package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/roam/internal/catalog"
	"github.com/naveenspark/roam/pkg/domain"
)

// ratingSteps are the minimum-rating filter values cycled with "m".
var ratingSteps = []float64{0, 3, 4, 4.5}

type exploreModel struct {
	places    []domain.Place
	results   []domain.Place
	filter    catalog.Filter
	ratingIdx int
	cursor    int
	editing   bool
	width     int
	height    int
}

func newExploreModel() exploreModel {
	return exploreModel{filter: catalog.Filter{Category: domain.CategoryAll}}
}

func (m exploreModel) setPlaces(places []domain.Place) exploreModel {
	m.places = places
	return m.apply()
}

func (m exploreModel) apply() exploreModel {
	m.results = catalog.Search(m.places, m.filter)
	if m.cursor >= len(m.results) {
		m.cursor = 0
	}
	return m
}

func (m exploreModel) Update(msg tea.Msg) (exploreModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		if m.editing {
			return m.updateSearch(msg), nil
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m exploreModel) updateSearch(msg tea.KeyMsg) exploreModel {
	switch msg.String() {
	case "enter":
		m.editing = false
	case "esc":
		m.editing = false
		m.filter.Query = ""
	default:
		m.filter.Query = editRune(m.filter.Query, msg.String())
	}
	return m.apply()
}

func (m exploreModel) updateList(msg tea.KeyMsg) (exploreModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.results)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "/":
		m.editing = true
	case "c":
		m.filter.Category = nextCategory(m.filter.Category)
		m.cursor = 0
		return m.apply(), nil
	case "p":
		m.filter.MaxPrice = (m.filter.MaxPrice + 1) % (domain.MaxPriceLevel + 1)
		m.cursor = 0
		return m.apply(), nil
	case "m":
		m.ratingIdx = (m.ratingIdx + 1) % len(ratingSteps)
		m.filter.MinRating = ratingSteps[m.ratingIdx]
		m.cursor = 0
		return m.apply(), nil
	case "x":
		m.filter = catalog.Filter{Category: domain.CategoryAll}
		m.ratingIdx = 0
		m.cursor = 0
		return m.apply(), nil
	case "enter":
		if m.cursor < len(m.results) {
			p := m.results[m.cursor]
			return m, func() tea.Msg { return openDetailsMsg{place: p} }
		}
	}
	return m, nil
}

func nextCategory(current string) string {
	for i, c := range domain.Categories {
		if c == current {
			return domain.Categories[(i+1)%len(domain.Categories)]
		}
	}
	return domain.CategoryAll
}

func (m exploreModel) View() string {
	var b strings.Builder

	switch {
	case m.editing:
		b.WriteString(" " + searchStyle.Render("/ "+m.filter.Query+"█"))
	case m.filter.Query != "":
		b.WriteString(" " + searchStyle.Render("/ "+m.filter.Query))
	default:
		b.WriteString(" " + dimStyle.Render("/ search places..."))
	}
	b.WriteString("\n ")

	for i, c := range domain.Categories {
		if i > 0 {
			b.WriteString("  ")
		}
		if c == m.filter.Category {
			b.WriteString(CategoryStyle(c).Underline(true).Render(c))
		} else {
			b.WriteString(dimStyle.Render(c))
		}
	}
	b.WriteString("  " + helpKeyStyle.Render("c") + "\n")

	price := "any"
	if m.filter.MaxPrice > 0 {
		price = "≤ " + domain.PriceLabel(m.filter.MaxPrice)
	}
	rating := "any"
	if m.filter.MinRating > 0 {
		rating = fmt.Sprintf("≥ %.1f", m.filter.MinRating)
	}
	b.WriteString(" " + dimStyle.Render("price ") + priceStyle.Render(price) + " " + helpKeyStyle.Render("p") +
		"   " + dimStyle.Render("rating ") + starStyle.Render(rating) + " " + helpKeyStyle.Render("m") + "\n")

	sepW := m.width - 2
	if sepW < 4 {
		sepW = 4
	}
	b.WriteString(" " + metaStyle.Render(strings.Repeat("─", sepW)) + "\n")

	if len(m.results) == 0 {
		if len(m.places) == 0 {
			b.WriteString(" " + dimStyle.Render("loading places..."))
		} else {
			b.WriteString(" " + dimStyle.Render("no places match these filters"))
		}
		return b.String()
	}

	nameWidth := m.width - 34
	if nameWidth > 36 {
		nameWidth = 36
	}
	if nameWidth < 12 {
		nameWidth = 12
	}
	for i, p := range m.results {
		if i == m.cursor {
			b.WriteString(selectedRowBg.Render(" "+accentStyle.Render("›")+" "+placeLine(p, nameWidth)) + "\n")
			continue
		}
		b.WriteString("   " + placeLine(p, nameWidth) + "\n")
	}
	b.WriteString(" " + metaStyle.Render(fmt.Sprintf("%d of %d places", len(m.results), len(m.places))) + "\n")
	return b.String()
}

func (m exploreModel) helpKeys() string {
	if m.editing {
		return helpEntry("enter", "done") + "  " + helpEntry("esc", "clear")
	}
	return helpEntry("1-3", "tabs") + "  " + helpEntry("/", "search") + "  " + helpEntry("c", "category") + "  " +
		helpEntry("p", "price") + "  " + helpEntry("m", "rating") + "  " + helpEntry("x", "reset") + "  " + helpEntry("enter", "open")
}
