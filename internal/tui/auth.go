package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/roam/internal/session"
	"github.com/naveenspark/roam/internal/validate"
)

type authScreen int

const (
	authWelcome authScreen = iota
	authLogin
	authRegister
)

// Form field indexes.
const (
	fieldName = iota
	fieldEmail
	fieldPassword
	fieldConfirm
)

// authDoneMsg carries the result of a sign-in or sign-up.
type authDoneMsg struct {
	err error
}

type formField struct {
	key         string // JSON name used by validate.Errors
	label       string
	placeholder string
	secret      bool
}

var allFields = [...]formField{
	fieldName:     {"name", "Name    ", "your name", false},
	fieldEmail:    {"email", "Email   ", "you@example.com", false},
	fieldPassword: {"password", "Password", "at least 8 characters", true},
	fieldConfirm:  {"confirmPassword", "Confirm ", "repeat password", true},
}

type authModel struct {
	sessions  *session.Manager
	validator *validate.Validator
	screen    authScreen
	values    [len(allFields)]string
	focus     int
	errs      validate.Errors
}

func newAuthModel(s *session.Manager) authModel {
	return authModel{sessions: s, validator: validate.New()}
}

// show switches to the named auth screen on behalf of the gate. The
// session error is kept so a forced sign-out can explain itself.
func (m authModel) show(screen string) authModel {
	switch screen {
	case ScreenLogin:
		return m.reset(authLogin)
	case ScreenRegister:
		return m.reset(authRegister)
	}
	return m.reset(authWelcome)
}

// open switches screens at the user's request and clears any stale error.
func (m authModel) open(s authScreen) authModel {
	if m.sessions != nil {
		m.sessions.ClearError()
	}
	return m.reset(s)
}

func (m authModel) reset(s authScreen) authModel {
	m.screen = s
	m.errs = nil
	m.focus = m.fields()[0]
	return m
}

// fields returns the field indexes shown on the current screen.
func (m authModel) fields() []int {
	switch m.screen {
	case authLogin:
		return []int{fieldEmail, fieldPassword}
	case authRegister:
		return []int{fieldName, fieldEmail, fieldPassword, fieldConfirm}
	}
	return []int{fieldEmail}
}

func (m authModel) editing() bool {
	return m.screen != authWelcome
}

func (m authModel) Update(msg tea.KeyMsg, st session.State) (authModel, tea.Cmd) {
	if m.screen == authWelcome {
		switch msg.String() {
		case "l", "enter":
			m = m.open(authLogin)
		case "r":
			m = m.open(authRegister)
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		return m.open(authWelcome), nil
	case "ctrl+r":
		if m.screen == authLogin {
			return m.open(authRegister), nil
		}
		return m.open(authLogin), nil
	case "tab", "down":
		m.focus = m.step(1)
	case "shift+tab", "up":
		m.focus = m.step(-1)
	case "enter":
		fields := m.fields()
		if m.focus != fields[len(fields)-1] {
			m.focus = m.step(1)
			return m, nil
		}
		return m.submit(st)
	default:
		m.values[m.focus] = editRune(m.values[m.focus], msg.String())
		delete(m.errs, allFields[m.focus].key)
	}
	return m, nil
}

func (m authModel) step(delta int) int {
	fields := m.fields()
	for i, f := range fields {
		if f == m.focus {
			return fields[(i+delta+len(fields))%len(fields)]
		}
	}
	return fields[0]
}

func (m authModel) submit(st session.State) (authModel, tea.Cmd) {
	if st.Loading {
		return m, nil
	}
	m.sessions.ClearError()

	email := strings.TrimSpace(m.values[fieldEmail])
	password := m.values[fieldPassword]

	var form any
	if m.screen == authRegister {
		form = validate.RegisterForm{
			Name:            strings.TrimSpace(m.values[fieldName]),
			Email:           email,
			Password:        password,
			ConfirmPassword: m.values[fieldConfirm],
		}
	} else {
		form = validate.LoginForm{Email: email, Password: password}
	}
	if err := m.validator.Validate(form); err != nil {
		if errs, ok := err.(validate.Errors); ok {
			m.errs = errs
		} else {
			m.errs = validate.Errors{"form": err.Error()}
		}
		return m, nil
	}
	m.errs = nil

	sessions := m.sessions
	if m.screen == authRegister {
		name := strings.TrimSpace(m.values[fieldName])
		return m, func() tea.Msg {
			return authDoneMsg{err: sessions.SignUp(context.Background(), name, email, password)}
		}
	}
	return m, func() tea.Msg {
		return authDoneMsg{err: sessions.SignIn(context.Background(), email, password)}
	}
}

func (m authModel) View(st session.State, width int) string {
	var b strings.Builder
	b.WriteString("\n")

	switch m.screen {
	case authWelcome:
		b.WriteString(centered(titleStyle.Render("Welcome to Roam"), width) + "\n\n")
		b.WriteString(centered(dimStyle.Render("Find restaurants, attractions, activities and nightlife near you."), width) + "\n\n")
		b.WriteString(centered(accentStyle.Render("l")+" "+normalStyle.Render("Sign in")+"     "+accentStyle.Render("r")+" "+normalStyle.Render("Create account"), width) + "\n")
		return b.String()
	case authLogin:
		b.WriteString(" " + titleStyle.Render("Welcome Back") + "\n\n")
	case authRegister:
		b.WriteString(" " + titleStyle.Render("Create Account") + "\n\n")
	}

	for _, f := range m.fields() {
		field := allFields[f]
		value := m.values[f]
		if field.secret {
			value = maskPassword(value)
		}
		b.WriteString(" " + renderField(field.label, value, field.placeholder, f == m.focus) + "\n")
		if msg := m.errs[field.key]; msg != "" {
			b.WriteString("          " + errorStyle.Render(msg) + "\n")
		}
		if f == fieldPassword && m.screen == authRegister {
			b.WriteString("          " + renderStrength(m.values[fieldPassword], 18) + "\n")
		}
	}
	if msg := m.errs["form"]; msg != "" {
		b.WriteString(" " + errorStyle.Render(msg) + "\n")
	}

	b.WriteString("\n")
	switch {
	case st.Loading && m.screen == authRegister:
		b.WriteString(" " + dimStyle.Render("creating account..."))
	case st.Loading:
		b.WriteString(" " + dimStyle.Render("signing in..."))
	case m.screen == authRegister:
		b.WriteString(" " + dimStyle.Render("Already have an account? ") + accentStyle.Render("ctrl+r") + dimStyle.Render(" to sign in"))
	default:
		b.WriteString(" " + dimStyle.Render("Don't have an account? ") + accentStyle.Render("ctrl+r") + dimStyle.Render(" to sign up"))
	}
	b.WriteString("\n")
	return b.String()
}

func (m authModel) helpKeys() string {
	if m.screen == authWelcome {
		return helpEntry("l", "sign in") + "  " + helpEntry("r", "register") + "  " + helpEntry("?", "help") + "  " + helpEntry("q", "quit")
	}
	return helpEntry("tab", "next") + "  " + helpEntry("enter", "submit") + "  " + helpEntry("ctrl+r", "switch") + "  " + helpEntry("esc", "back")
}
