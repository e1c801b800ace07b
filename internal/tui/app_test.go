package tui

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/roam/internal/apierr"
	"github.com/naveenspark/roam/internal/authmock"
	"github.com/naveenspark/roam/internal/bookmarks"
	"github.com/naveenspark/roam/internal/catalog"
	"github.com/naveenspark/roam/internal/kv"
	"github.com/naveenspark/roam/internal/session"
	"github.com/naveenspark/roam/pkg/client"
	"github.com/naveenspark/roam/pkg/domain"
)

type navRecorder struct {
	mu      sync.Mutex
	screens []string
}

func (n *navRecorder) Navigate(screen string, _ map[string]any) {
	n.mu.Lock()
	n.screens = append(n.screens, screen)
	n.mu.Unlock()
}

func (n *navRecorder) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.screens) == 0 {
		return ""
	}
	return n.screens[len(n.screens)-1]
}

type failingPlaces struct{ err error }

func (f failingPlaces) ListPlaces(context.Context, string) ([]domain.Place, error) {
	return nil, f.err
}

type testEnv struct {
	store    *kv.Memory
	sessions *session.Manager
	marks    *bookmarks.Manager
	nav      *navRecorder
}

func newTestEnv() testEnv {
	store := kv.NewMemory()
	nav := &navRecorder{}
	return testEnv{
		store:    store,
		sessions: session.NewManager(authmock.New(authmock.WithDelay(0)), store, session.WithNavigator(nav)),
		marks:    bookmarks.NewManager(store),
		nav:      nav,
	}
}

func (e testEnv) app(places PlaceLister) App {
	a := NewApp(Deps{Sessions: e.sessions, Bookmarks: e.marks, Places: places, Version: "test"})
	model, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return model.(App)
}

func (e testEnv) signIn(t *testing.T) {
	t.Helper()
	if err := e.sessions.SignIn(context.Background(), "a@b.com", "whateverpw"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(a App, keys ...string) (App, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var model tea.Model
		model, cmd = a.Update(key(k))
		a = model.(App)
	}
	return a, cmd
}

func typeText(a App, text string) App {
	for _, r := range text {
		a, _ = press(a, string(r))
	}
	return a
}

func TestAppMountsAuthStackWhenSignedOut(t *testing.T) {
	a := newTestEnv().app(nil)
	if a.stack != stackAuth {
		t.Fatalf("expected auth stack without a session, got %d", a.stack)
	}
	if !strings.Contains(a.View(), "Welcome to Roam") {
		t.Errorf("expected welcome screen, got:\n%s", a.View())
	}
}

func TestAppMountsMainStackWhenSignedIn(t *testing.T) {
	env := newTestEnv()
	env.signIn(t)
	a := env.app(nil)
	if a.stack != stackMain {
		t.Fatalf("expected main stack with a session, got %d", a.stack)
	}
	view := a.View()
	for _, tab := range []string{"Home", "Explore", "Saved"} {
		if !strings.Contains(view, tab) {
			t.Errorf("expected %q tab in view", tab)
		}
	}
}

func TestAppSignInFlow(t *testing.T) {
	env := newTestEnv()
	a := env.app(nil)

	a, _ = press(a, "l")
	if a.auth.screen != authLogin {
		t.Fatalf("expected login screen after 'l', got %d", a.auth.screen)
	}
	a = typeText(a, "a@b.com")
	a, _ = press(a, "tab")
	a = typeText(a, "whateverpw")

	a, cmd := press(a, "enter")
	if cmd == nil {
		t.Fatal("expected a sign-in command on submit")
	}
	msg := cmd()
	done, ok := msg.(authDoneMsg)
	if !ok {
		t.Fatalf("expected authDoneMsg, got %T", msg)
	}
	if done.err != nil {
		t.Fatalf("sign in failed: %v", done.err)
	}

	model, _ := a.Update(done)
	a = model.(App)
	if a.stack != stackMain {
		t.Fatalf("expected main stack after sign in, got %d", a.stack)
	}
	if a.view != viewHome {
		t.Errorf("expected Home after sign in, got %d", a.view)
	}
	if got := a.session.Session.Token; got != authmock.MockToken {
		t.Errorf("token = %q, want %q", got, authmock.MockToken)
	}
}

func TestAppLoginValidationBlocksSubmit(t *testing.T) {
	a := newTestEnv().app(nil)
	a, _ = press(a, "l")
	a = typeText(a, "not-an-email")
	a, _ = press(a, "tab")
	a = typeText(a, "short")

	a, cmd := press(a, "enter")
	if cmd != nil {
		t.Error("expected no command when the form is invalid")
	}
	view := a.View()
	if !strings.Contains(view, "Invalid email address") {
		t.Errorf("expected email error in view, got:\n%s", view)
	}
}

func TestAppQuitKeyTypedIntoLoginForm(t *testing.T) {
	a := newTestEnv().app(nil)
	a, _ = press(a, "l")
	a, cmd := press(a, "q")
	if cmd != nil {
		t.Error("expected 'q' to be typed, not quit")
	}
	if a.auth.values[fieldEmail] != "q" {
		t.Errorf("email = %q, want %q", a.auth.values[fieldEmail], "q")
	}
}

func TestAppGlobalQuitOnQ(t *testing.T) {
	env := newTestEnv()
	env.signIn(t)
	a := env.app(nil)
	_, cmd := press(a, "q")
	if cmd == nil {
		t.Fatal("expected quit command on 'q', got nil")
	}
}

func TestAppTabSwitching(t *testing.T) {
	env := newTestEnv()
	env.signIn(t)

	tests := []struct {
		key  string
		want view
	}{
		{"1", viewHome},
		{"2", viewExplore},
		{"3", viewSaved},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			a, _ := press(env.app(nil), tc.key)
			if a.view != tc.want {
				t.Errorf("after key %q: expected view=%d, got %d", tc.key, tc.want, a.view)
			}
		})
	}
}

func TestAppSessionChangedRemountsAuthStack(t *testing.T) {
	env := newTestEnv()
	env.signIn(t)
	a := env.app(nil)

	if err := env.sessions.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	model, _ := a.Update(sessionChangedMsg{})
	a = model.(App)
	if a.stack != stackAuth {
		t.Errorf("expected auth stack after sign out, got %d", a.stack)
	}
}

func TestAppUnauthorizedLoadNavigatesToLogin(t *testing.T) {
	env := newTestEnv()
	env.signIn(t)
	a := env.app(failingPlaces{err: &client.HTTPError{StatusCode: http.StatusUnauthorized, Message: "expired"}})

	msg := a.loadPlaces()()
	loaded, ok := msg.(placesLoadedMsg)
	if !ok {
		t.Fatalf("expected placesLoadedMsg, got %T", msg)
	}
	if loaded.err != apierr.MsgSessionExpired {
		t.Errorf("err = %q, want %q", loaded.err, apierr.MsgSessionExpired)
	}
	if env.sessions.Current() != nil {
		t.Error("expected session cleared after 401")
	}
	if got := env.nav.last(); got != ScreenLogin {
		t.Errorf("navigated to %q, want %q", got, ScreenLogin)
	}

	model, _ := a.Update(navigateMsg{screen: ScreenLogin})
	a = model.(App)
	if a.stack != stackAuth || a.auth.screen != authLogin {
		t.Errorf("expected login screen, got stack=%d screen=%d", a.stack, a.auth.screen)
	}
	if !strings.Contains(a.View(), apierr.MsgSessionExpired) {
		t.Errorf("expected session expired message on login screen, got:\n%s", a.View())
	}
}

func TestAppForbiddenLoadKeepsSession(t *testing.T) {
	env := newTestEnv()
	env.signIn(t)
	a := env.app(failingPlaces{err: &client.HTTPError{StatusCode: http.StatusForbidden}})

	model, _ := a.Update(a.loadPlaces()())
	a = model.(App)
	if env.sessions.Current() == nil {
		t.Error("expected session kept after 403")
	}
	if env.nav.last() != "" {
		t.Errorf("expected no navigation, got %q", env.nav.last())
	}
	if !strings.Contains(a.View(), apierr.MsgForbidden) {
		t.Errorf("expected forbidden message in view")
	}
}

func TestAppNetworkErrorShowsGenericMessage(t *testing.T) {
	env := newTestEnv()
	env.signIn(t)
	a := env.app(failingPlaces{err: errors.New("dial tcp: connection refused")})

	msg := a.loadPlaces()().(placesLoadedMsg)
	if msg.err != apierr.MsgUnknown {
		t.Errorf("err = %q, want %q", msg.err, apierr.MsgUnknown)
	}
}

func TestAppNavigateToPlaceDetails(t *testing.T) {
	env := newTestEnv()
	env.signIn(t)
	a := env.app(nil)

	model, _ := a.Update(navigateMsg{screen: ScreenPlaceDetails, params: map[string]any{"placeId": "1"}})
	a = model.(App)
	if !a.detailsOpen {
		t.Fatal("expected details open")
	}
	if a.details.place.Name != "Central Park" {
		t.Errorf("place = %q, want Central Park", a.details.place.Name)
	}

	a, _ = press(a, "esc")
	if a.detailsOpen {
		t.Error("expected details closed after esc")
	}
}

func TestAppNavigateToMainScreenWhileSignedOutStaysOnAuth(t *testing.T) {
	a := newTestEnv().app(nil)
	model, _ := a.Update(navigateMsg{screen: ScreenSaved})
	a = model.(App)
	if a.stack != stackAuth {
		t.Errorf("expected auth stack, got %d", a.stack)
	}
}

func TestAppPlacesLoadedFillsHome(t *testing.T) {
	env := newTestEnv()
	env.signIn(t)
	a := env.app(nil)

	model, _ := a.Update(placesLoadedMsg{places: catalog.Places})
	a = model.(App)
	view := a.View()
	if !strings.Contains(view, "Welcome back, Test User") {
		t.Errorf("expected greeting in view, got:\n%s", view)
	}
	if !strings.Contains(view, "Central Park") {
		t.Errorf("expected Central Park in home view")
	}
}

func TestAppShimmerFrameIncrements(t *testing.T) {
	a := newTestEnv().app(nil)
	initial := a.frame
	model, _ := a.Update(shimmerTickMsg{})
	if got := model.(App).frame; got != initial+1 {
		t.Errorf("expected frame=%d after shimmerTickMsg, got %d", initial+1, got)
	}
}

func TestAppViewFitsTerminal(t *testing.T) {
	env := newTestEnv()
	env.signIn(t)
	a := env.app(nil)
	model, _ := a.Update(placesLoadedMsg{places: catalog.Places})
	a = model.(App)
	a, _ = press(a, "2")

	lines := strings.Split(a.View(), "\n")
	if len(lines) > a.height {
		t.Errorf("App.View() has %d lines, want at most %d", len(lines), a.height)
	}
}

func TestNavigatorSendsNavigateMsg(t *testing.T) {
	got := make(chan tea.Msg, 1)
	nav := Navigator(func(m tea.Msg) { got <- m })
	nav.Navigate(ScreenLogin, nil)

	msg, ok := (<-got).(navigateMsg)
	if !ok || msg.screen != ScreenLogin {
		t.Errorf("expected navigateMsg to %q, got %#v", ScreenLogin, msg)
	}
}

func TestSessionListenerSendsChange(t *testing.T) {
	got := make(chan tea.Msg, 1)
	SessionListener(func(m tea.Msg) { got <- m })(session.State{})
	if _, ok := (<-got).(sessionChangedMsg); !ok {
		t.Error("expected sessionChangedMsg")
	}
}
