package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/roam/internal/bookmarks"
	"github.com/naveenspark/roam/internal/catalog"
	"github.com/naveenspark/roam/internal/reviews"
	"github.com/naveenspark/roam/internal/session"
	"github.com/naveenspark/roam/pkg/domain"
)

// loadTimeout bounds every background call made from the UI.
const loadTimeout = 10 * time.Second

// expiryCheckInterval is how often the session token's exp claim is checked.
const expiryCheckInterval = 30 * time.Second

type stack int

const (
	stackAuth stack = iota
	stackMain
)

type view int

const (
	viewHome view = iota
	viewExplore
	viewSaved
)

// PlaceLister is the place source: catalog.Static or the HTTP client.
type PlaceLister interface {
	ListPlaces(ctx context.Context, category string) ([]domain.Place, error)
}

// Deps are the services the UI drives.
type Deps struct {
	Sessions  *session.Manager
	Bookmarks *bookmarks.Manager
	Reviews   *reviews.Board
	Places    PlaceLister
	Version   string
	Logger    *slog.Logger
}

type placesLoadedMsg struct {
	places []domain.Place
	err    string
}

type openDetailsMsg struct {
	place domain.Place
}

type expiryTickMsg time.Time

func expiryTickCmd() tea.Cmd {
	return tea.Tick(expiryCheckInterval, func(t time.Time) tea.Msg {
		return expiryTickMsg(t)
	})
}

// App is the root Bubbletea model. It mounts the auth stack while signed
// out and the main stack while signed in.
type App struct {
	deps        Deps
	session     session.State
	stack       stack
	auth        authModel
	view        view
	home        homeModel
	explore     exploreModel
	saved       savedModel
	details     detailsModel
	detailsOpen bool
	helpOpen    bool
	places      []domain.Place
	placesErr   string
	width       int
	height      int
	frame       int
}

// NewApp creates the UI. d.Sessions and d.Bookmarks are required.
func NewApp(d Deps) App {
	if d.Reviews == nil {
		d.Reviews = reviews.NewBoard()
	}
	if d.Places == nil {
		d.Places = catalog.Static(catalog.Places)
	}
	if d.Logger == nil {
		d.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	a := App{
		deps:    d,
		session: d.Sessions.State(),
		auth:    newAuthModel(d.Sessions),
		explore: newExploreModel(),
		saved:   savedModel{bookmarks: d.Bookmarks},
	}
	if a.session.Authenticated() {
		a.stack = stackMain
	}
	return a
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{shimmerTickCmd(), expiryTickCmd()}
	if a.stack == stackMain {
		cmds = append(cmds, a.loadPlaces())
	}
	return tea.Batch(cmds...)
}

func (a App) loadPlaces() tea.Cmd {
	places, sessions, logger := a.deps.Places, a.deps.Sessions, a.deps.Logger
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		ps, err := places.ListPlaces(ctx, domain.CategoryAll)
		if err != nil {
			logger.Warn("load places failed", slog.String("error", err.Error()))
			c := sessions.HandleFailure(ctx, err)
			return placesLoadedMsg{err: c.Message}
		}
		return placesLoadedMsg{places: ps}
	}
}

func (a App) checkExpiry() tea.Cmd {
	sessions := a.deps.Sessions
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		sessions.CheckExpiry(ctx)
		return nil
	}
}

func (a App) signOut() tea.Cmd {
	sessions := a.deps.Sessions
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		sessions.SignOut(ctx) //nolint:errcheck // failure is logged by the manager
		return sessionChangedMsg{}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + status(1) + help(1) = 5 lines
		body := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 5}
		a.home, _ = a.home.Update(body)
		a.explore, _ = a.explore.Update(body)
		a.saved, _ = a.saved.Update(body)
		a.details, _ = a.details.Update(body)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case expiryTickMsg:
		return a, tea.Batch(a.checkExpiry(), expiryTickCmd())

	case sessionChangedMsg:
		a.session = a.deps.Sessions.State()
		return a.syncStack()

	case authDoneMsg:
		a.session = a.deps.Sessions.State()
		return a.syncStack()

	case navigateMsg:
		return a.navigate(msg)

	case placesLoadedMsg:
		a.placesErr = msg.err
		if msg.err == "" {
			a.places = msg.places
			a.home = a.home.setPlaces(msg.places)
			a.explore = a.explore.setPlaces(msg.places)
		}
		return a, nil

	case openDetailsMsg:
		return a.openDetails(msg.place)

	case savedLoadedMsg:
		var cmd tea.Cmd
		a.saved, cmd = a.saved.Update(msg)
		return a, cmd

	case bookmarkToggledMsg:
		var cmd tea.Cmd
		if a.detailsOpen {
			a.details, cmd = a.details.Update(msg)
		}
		if a.view == viewSaved {
			return a, tea.Batch(cmd, a.saved.load(a.deps.Bookmarks))
		}
		return a, cmd

	case bookmarkStateMsg, copyResultMsg, directionsResultMsg:
		if a.detailsOpen {
			var cmd tea.Cmd
			a.details, cmd = a.details.Update(msg)
			return a, cmd
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	if a.helpOpen {
		switch msg.String() {
		case "h", "esc", "?":
			a.helpOpen = false
		case "q":
			return a, tea.Quit
		}
		return a, nil
	}

	if a.stack == stackAuth {
		if !a.auth.editing() {
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "?":
				a.helpOpen = true
				return a, nil
			}
		}
		var cmd tea.Cmd
		a.auth, cmd = a.auth.Update(msg, a.session)
		return a, cmd
	}

	if a.detailsOpen {
		var cmd tea.Cmd
		a.details, cmd = a.details.Update(msg)
		if a.details.closed {
			a.detailsOpen = false
		}
		return a, cmd
	}

	if !a.isEditing() {
		switch msg.String() {
		case "q":
			return a, tea.Quit
		case "h", "?":
			a.helpOpen = true
			return a, nil
		case "1":
			return a.switchView(viewHome)
		case "2":
			return a.switchView(viewExplore)
		case "3":
			return a.switchView(viewSaved)
		case "o":
			return a, a.signOut()
		case "r":
			return a, a.loadPlaces()
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewHome:
		a.home, cmd = a.home.Update(msg)
	case viewExplore:
		a.explore, cmd = a.explore.Update(msg)
	case viewSaved:
		a.saved, cmd = a.saved.Update(msg)
	}
	return a, cmd
}

func (a App) isEditing() bool {
	if a.stack == stackAuth {
		return a.auth.editing()
	}
	if a.detailsOpen {
		return a.details.composing
	}
	return a.view == viewExplore && a.explore.editing
}

func (a App) switchView(v view) (App, tea.Cmd) {
	a.view = v
	if v == viewSaved {
		return a, a.saved.load(a.deps.Bookmarks)
	}
	return a, nil
}

// syncStack mounts the stack matching session presence.
func (a App) syncStack() (App, tea.Cmd) {
	switch {
	case a.session.Authenticated() && a.stack == stackAuth:
		a.stack = stackMain
		a.view = viewHome
		a.auth = newAuthModel(a.deps.Sessions)
		return a, a.loadPlaces()
	case !a.session.Authenticated() && a.stack == stackMain:
		a.stack = stackAuth
		a.detailsOpen = false
		a.helpOpen = false
		a.auth = newAuthModel(a.deps.Sessions)
	}
	return a, nil
}

func (a App) navigate(msg navigateMsg) (App, tea.Cmd) {
	a.session = a.deps.Sessions.State()
	authed := a.session.Authenticated()

	if isAuthScreen(msg.screen) {
		if authed {
			return a, nil
		}
		a.stack = stackAuth
		a.detailsOpen = false
		a.helpOpen = false
		a.auth = a.auth.show(msg.screen)
		return a, nil
	}

	if !authed {
		return a.syncStack()
	}

	var cmd tea.Cmd
	if a.stack == stackAuth {
		a, cmd = a.syncStack()
	}
	a.detailsOpen = false
	switch msg.screen {
	case ScreenHome:
		a.view = viewHome
	case ScreenExplore:
		a.view = viewExplore
	case ScreenSaved:
		var load tea.Cmd
		a, load = a.switchView(viewSaved)
		cmd = tea.Batch(cmd, load)
	case ScreenPlaceDetails:
		id, _ := msg.params["placeId"].(string)
		p, ok := catalog.ByID(a.places, id)
		if !ok {
			p, ok = catalog.ByID(catalog.Places, id)
		}
		if ok {
			var open tea.Cmd
			a, open = a.openDetails(p)
			cmd = tea.Batch(cmd, open)
		}
	}
	return a, cmd
}

func (a App) openDetails(p domain.Place) (App, tea.Cmd) {
	author := ""
	if a.session.Session != nil {
		author = a.session.Session.User.DisplayName()
	}
	a.details = newDetailsModel(p, a.deps.Bookmarks, a.deps.Reviews, author)
	a.details.width = a.width
	a.details.height = a.height - 5
	a.detailsOpen = true
	return a, a.details.Init()
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)
	logoPad := (a.width - lipgloss.Width(logo)) / 2
	if logoPad < 0 {
		logoPad = 0
	}
	header := strings.Repeat(" ", logoPad) + logo + "\n"

	var tabs, body, status, help string

	switch {
	case a.helpOpen:
		body = helpView(a.deps.Version)
		help = " " + helpEntry("esc", "close") + "  " + helpEntry("q", "quit")

	case a.stack == stackAuth:
		tabs = centered(dimStyle.Render("discover places worth the trip"), a.width)
		body = a.auth.View(a.session, a.width)
		if a.session.Error != "" {
			status = " " + errorStyle.Render(a.session.Error)
		}
		help = " " + a.auth.helpKeys()

	default:
		tabs = a.renderTabs()
		if a.detailsOpen {
			body = a.details.View()
			status = a.details.statusLine()
			help = " " + a.details.helpKeys()
		} else {
			switch a.view {
			case viewHome:
				body = a.home.View(a.userName())
				help = " " + helpEntry("1-3", "tabs") + "  " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "open") + "  " + helpEntry("o", "sign out") + "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
			case viewExplore:
				body = a.explore.View()
				help = " " + a.explore.helpKeys()
			case viewSaved:
				body = a.saved.View()
				help = " " + helpEntry("1-3", "tabs") + "  " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "open") + "  " + helpEntry("x", "remove") + "  " + helpEntry("q", "quit")
			}
			if a.placesErr != "" {
				status = " " + errorStyle.Render(a.placesErr)
			} else if a.session.Error != "" {
				status = " " + errorStyle.Render(a.session.Error)
			}
		}
	}

	// Chrome budget: header(2) + tabs(1) + status(1) + help(1) = 5 lines + body
	body = strings.TrimRight(truncateToHeight(body, a.height-5), "\n")
	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, tabs, body, status, help)
}

func (a App) userName() string {
	if a.session.Session == nil {
		return (*domain.User)(nil).DisplayName()
	}
	return a.session.Session.User.DisplayName()
}

func (a App) renderTabs() string {
	type tabEntry struct {
		key  string
		name string
		v    view
	}
	tabs := []tabEntry{
		{"1", "Home", viewHome},
		{"2", "Explore", viewExplore},
		{"3", "Saved", viewSaved},
	}

	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if t.v == a.view && !a.detailsOpen {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		labelWidth := lipgloss.Width(label)
		leftPad := (colWidth - labelWidth) / 2
		if leftPad < 0 {
			leftPad = 0
		}
		rightPad := colWidth - labelWidth - leftPad
		if rightPad < 0 {
			rightPad = 0
		}
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}
	return tabBar.String()
}

func centered(s string, width int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}
