package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/roam/internal/bookmarks"
	"github.com/naveenspark/roam/internal/browser"
	"github.com/naveenspark/roam/internal/reviews"
	"github.com/naveenspark/roam/pkg/domain"
)

type bookmarkStateMsg struct {
	placeID string
	saved   bool
}

type bookmarkToggledMsg struct {
	placeID string
	saved   bool
	err     error
}

type copyResultMsg struct {
	err error
}

type directionsResultMsg struct {
	err error
}

func toggleBookmark(bm *bookmarks.Manager, p domain.Place) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		saved, err := bm.Toggle(ctx, p)
		return bookmarkToggledMsg{placeID: p.ID, saved: saved, err: err}
	}
}

type detailsModel struct {
	place     domain.Place
	bookmarks *bookmarks.Manager
	board     *reviews.Board
	author    string
	saved     bool
	reviews   []domain.Review
	composing bool
	rating    int
	comment   string
	status    string
	statusErr bool
	closed    bool
	width     int
	height    int
}

func newDetailsModel(p domain.Place, bm *bookmarks.Manager, board *reviews.Board, author string) detailsModel {
	m := detailsModel{place: p, bookmarks: bm, board: board, author: author}
	if board != nil {
		m.reviews = board.List(p.ID)
	}
	return m
}

// Init looks up the bookmark state for the place.
func (m detailsModel) Init() tea.Cmd {
	if m.bookmarks == nil {
		return nil
	}
	bm, id := m.bookmarks, m.place.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return bookmarkStateMsg{placeID: id, saved: bm.IsBookmarked(ctx, id)}
	}
}

func (m detailsModel) Update(msg tea.Msg) (detailsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case bookmarkStateMsg:
		if msg.placeID == m.place.ID {
			m.saved = msg.saved
		}

	case bookmarkToggledMsg:
		if msg.placeID != m.place.ID {
			return m, nil
		}
		if msg.err != nil {
			m.setStatus("could not update saved places", true)
			return m, nil
		}
		m.saved = msg.saved
		if msg.saved {
			m.setStatus("saved", false)
		} else {
			m.setStatus("removed from saved", false)
		}

	case copyResultMsg:
		if msg.err != nil {
			m.setStatus("clipboard unavailable", true)
		} else {
			m.setStatus("coordinates copied", false)
		}

	case directionsResultMsg:
		if msg.err != nil {
			m.setStatus("could not open directions: "+msg.err.Error(), true)
		} else {
			m.setStatus("opened directions in browser", false)
		}

	case tea.KeyMsg:
		if m.composing {
			return m.updateCompose(msg), nil
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m detailsModel) updateKeys(msg tea.KeyMsg) (detailsModel, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.closed = true
	case "s":
		if m.bookmarks != nil {
			return m, toggleBookmark(m.bookmarks, m.place)
		}
	case "c":
		text := m.place.Coordinate.String()
		return m, func() tea.Msg {
			return copyResultMsg{err: clipboard.WriteAll(text)}
		}
	case "d":
		p := m.place
		return m, func() tea.Msg {
			return directionsResultMsg{err: browser.Directions(p)}
		}
	case "a":
		if m.board != nil {
			m.composing = true
			m.rating = 0
			m.comment = ""
			m.status = ""
		}
	}
	return m, nil
}

func (m detailsModel) updateCompose(msg tea.KeyMsg) detailsModel {
	key := msg.String()
	switch {
	case key == "esc":
		m.composing = false
	case key == "enter":
		r, err := m.board.Add(m.place.ID, m.author, m.rating, m.comment)
		if err != nil {
			m.setStatus(composeError(err), true)
			return m
		}
		m.reviews = m.board.List(m.place.ID)
		m.composing = false
		m.setStatus(fmt.Sprintf("review posted (%d★)", r.Rating), false)
	case m.comment == "" && len(key) == 1 && key[0] >= '1' && key[0] <= '5':
		m.rating = int(key[0] - '0')
	default:
		m.comment = editRune(m.comment, key)
	}
	return m
}

func composeError(err error) string {
	switch err {
	case reviews.ErrRating:
		return "pick a rating from 1 to 5"
	case reviews.ErrComment:
		return "write a comment first"
	}
	return err.Error()
}

func (m *detailsModel) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m detailsModel) View() string {
	var b strings.Builder
	p := m.place

	mark := dimStyle.Render("☆ not saved")
	if m.saved {
		mark = savedStyle.Render("★ saved")
	}
	b.WriteString(" " + titleStyle.Render(p.Name) + "  " + mark + "\n")
	b.WriteString(" " + CategoryStyle(p.Category).Render(p.Category) + "  " +
		starStyle.Render(fmt.Sprintf("★ %.1f", p.Rating)) + "  " +
		priceStyle.Render(domain.PriceLabel(p.Price)) + "\n")
	b.WriteString(" " + metaStyle.Render("location "+p.Coordinate.String()) + "\n\n")

	avg := reviews.Average(m.reviews)
	header := fmt.Sprintf("Reviews (%d)", len(m.reviews))
	if avg > 0 {
		header += fmt.Sprintf("  avg %.1f", avg)
	}
	b.WriteString(" " + sectionHeaderStyle.Render(header) + "\n")

	if m.composing {
		b.WriteString(" " + dimStyle.Render("rating ") + renderStars(m.rating) + "\n")
		b.WriteString(" " + renderField("comment", m.comment, "type 1-5 to rate, then write", true) + "\n\n")
	}

	width := m.width - 6
	if width < 20 {
		width = 20
	}
	for _, r := range m.reviews {
		b.WriteString(" " + normalStyle.Render(r.User) + "  " + renderStars(r.Rating) + "  " + metaStyle.Render(r.Date) + "\n")
		b.WriteString("   " + dimStyle.Render(truncStr(r.Comment, width)) + "\n")
	}
	return b.String()
}

func (m detailsModel) statusLine() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return " " + errorStyle.Render(m.status)
	}
	return " " + accentStyle.Render(m.status)
}

func (m detailsModel) helpKeys() string {
	if m.composing {
		return helpEntry("1-5", "rate") + "  " + helpEntry("enter", "post") + "  " + helpEntry("esc", "cancel")
	}
	save := "save"
	if m.saved {
		save = "unsave"
	}
	return helpEntry("s", save) + "  " + helpEntry("c", "copy coords") + "  " + helpEntry("d", "directions") + "  " +
		helpEntry("a", "review") + "  " + helpEntry("esc", "back")
}
