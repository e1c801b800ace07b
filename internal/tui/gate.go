package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/roam/internal/apierr"
	"github.com/naveenspark/roam/internal/session"
)

// Screen names accepted by navigation requests.
const (
	ScreenWelcome      = "Welcome"
	ScreenLogin        = apierr.ScreenLogin
	ScreenRegister     = "Register"
	ScreenHome         = "Home"
	ScreenExplore      = "Explore"
	ScreenSaved        = "Saved"
	ScreenPlaceDetails = "PlaceDetails"
)

// navigateMsg asks the gate to show a screen by name.
type navigateMsg struct {
	screen string
	params map[string]any
}

// sessionChangedMsg tells the gate to re-read the session state.
type sessionChangedMsg struct{}

// Navigator returns a session.Navigator that forwards requests into the
// running program. send is normally (*tea.Program).Send; it is called on
// its own goroutine so a request made from inside Update cannot block the
// event loop.
func Navigator(send func(tea.Msg)) session.Navigator {
	return session.NavigatorFunc(func(screen string, params map[string]any) {
		go send(navigateMsg{screen: screen, params: params})
	})
}

// SessionListener returns a session.Manager subscriber that wakes the
// gate on every state change.
func SessionListener(send func(tea.Msg)) func(session.State) {
	return func(session.State) {
		go send(sessionChangedMsg{})
	}
}

func isAuthScreen(screen string) bool {
	switch screen {
	case ScreenWelcome, ScreenLogin, ScreenRegister:
		return true
	}
	return false
}
