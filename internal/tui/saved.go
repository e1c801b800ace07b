package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/roam/internal/bookmarks"
	"github.com/naveenspark/roam/pkg/domain"
)

type savedLoadedMsg struct {
	places []domain.Place
	notice string // set when the stored list was unreadable and discarded
	err    error
}

type savedModel struct {
	bookmarks *bookmarks.Manager
	places    []domain.Place
	cursor    int
	loaded    bool
	notice    string
	err       error
	width     int
	height    int
}

func (m savedModel) load(bm *bookmarks.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		places, err := bm.Load(ctx)
		var corrupt *bookmarks.CorruptError
		if errors.As(err, &corrupt) {
			return savedLoadedMsg{places: places, notice: "saved list was unreadable and has been reset"}
		}
		return savedLoadedMsg{places: places, err: err}
	}
}

func (m savedModel) Update(msg tea.Msg) (savedModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case savedLoadedMsg:
		m.loaded = true
		m.err = msg.err
		m.notice = msg.notice
		if msg.err == nil {
			m.places = msg.places
		}
		if m.cursor >= len(m.places) {
			m.cursor = max(len(m.places)-1, 0)
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.places)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "enter":
			if m.cursor < len(m.places) {
				p := m.places[m.cursor]
				return m, func() tea.Msg { return openDetailsMsg{place: p} }
			}
		case "x":
			if m.cursor < len(m.places) && m.bookmarks != nil {
				return m, toggleBookmark(m.bookmarks, m.places[m.cursor])
			}
		}
	}
	return m, nil
}

func (m savedModel) View() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("Saved places") + "\n\n")

	switch {
	case m.err != nil:
		b.WriteString(" " + errorStyle.Render(m.err.Error()))
		return b.String()
	case !m.loaded:
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}
	if m.notice != "" {
		b.WriteString(" " + errorStyle.Render(m.notice) + "\n\n")
	}
	if len(m.places) == 0 {
		b.WriteString(" " + dimStyle.Render("nothing saved yet. press s on a place to save it"))
		return b.String()
	}

	nameWidth := m.width - 34
	if nameWidth > 36 {
		nameWidth = 36
	}
	if nameWidth < 12 {
		nameWidth = 12
	}
	for i, p := range m.places {
		if i == m.cursor {
			b.WriteString(selectedRowBg.Render(" "+accentStyle.Render("›")+" "+placeLine(p, nameWidth)) + "\n")
			continue
		}
		b.WriteString("   " + placeLine(p, nameWidth) + "\n")
	}
	b.WriteString(" " + metaStyle.Render(fmt.Sprintf("%d saved", len(m.places))) + "\n")
	return b.String()
}
