// Package session owns the client's authentication state: the current
// session, the in-flight flag and the last user-facing error. Tokens are
// mirrored into a kv.Store so a session survives restarts.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/naveenspark/roam/internal/apierr"
	"github.com/naveenspark/roam/internal/kv"
	"github.com/naveenspark/roam/pkg/domain"
)

const tracerName = "github.com/naveenspark/roam/internal/session"

// Authenticator is the remote auth endpoint. *client.Client and
// *authmock.Authenticator both satisfy it.
type Authenticator interface {
	Authenticate(ctx context.Context, creds domain.Credentials) (*domain.Session, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.Session, error)
}

// Navigator switches screens by name. The gate owns stack composition.
type Navigator interface {
	Navigate(screen string, params map[string]any)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(screen string, params map[string]any)

func (f NavigatorFunc) Navigate(screen string, params map[string]any) { f(screen, params) }

// State is a snapshot of the manager.
type State struct {
	Session *domain.Session
	Loading bool
	Error   string
}

// Authenticated reports whether a session is present.
func (s State) Authenticated() bool {
	return s.Session != nil
}

// Manager is safe for concurrent use. Overlapping operations are not
// ordered: a slow SignIn started before a fast SignOut may land after it,
// so callers gate input on State().Loading.
type Manager struct {
	auth    Authenticator
	store   kv.Store
	nav     Navigator
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics managerMetrics
	now     func() time.Time

	mu          sync.Mutex
	state       State
	subscribers []func(State)
}

// Option configures a Manager.
type Option func(*Manager)

// WithNavigator sets the navigator used on authentication failures.
func WithNavigator(n Navigator) Option {
	return func(m *Manager) { m.nav = n }
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(m *Manager) { m.tracer = tr }
}

func WithMeter(meter metric.Meter) Option {
	return func(m *Manager) { m.metrics = newManagerMetrics(meter) }
}

// NewManager creates a signed-out manager. Call Restore to pick up a
// persisted session.
func NewManager(auth Authenticator, store kv.Store, opts ...Option) *Manager {
	m := &Manager{
		auth:   auth,
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer: nooptrace.NewTracerProvider().Tracer(tracerName),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	if m.logger == nil {
		m.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if m.tracer == nil {
		m.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return m
}

// SetNavigator replaces the navigator after construction; the TUI
// program that implements it only exists once the manager does.
func (m *Manager) SetNavigator(n Navigator) {
	m.mu.Lock()
	m.nav = n
	m.mu.Unlock()
}

// Subscribe registers fn to be called with a snapshot after every state
// change. fn runs on the goroutine that made the change.
func (m *Manager) Subscribe(fn func(State)) {
	m.mu.Lock()
	m.subscribers = append(m.subscribers, fn)
	m.mu.Unlock()
}

// State returns a snapshot of the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Current returns the current session, or nil when signed out.
func (m *Manager) Current() *domain.Session {
	return m.State().Session
}

// SignIn authenticates and persists the resulting tokens. On failure the
// classified message is stored in State().Error and the prior session is
// left untouched.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	ctx, span := m.tracer.Start(ctx, "Session.SignIn", trace.WithAttributes(attribute.String("user.email", email)))
	defer span.End()

	return m.acquire(ctx, span, "sign in", func() (*domain.Session, error) {
		return m.auth.Authenticate(ctx, domain.Credentials{Email: email, Password: password})
	})
}

// SignUp registers a new account and signs it in.
func (m *Manager) SignUp(ctx context.Context, name, email, password string) error {
	ctx, span := m.tracer.Start(ctx, "Session.SignUp", trace.WithAttributes(attribute.String("user.email", email)))
	defer span.End()

	return m.acquire(ctx, span, "sign up", func() (*domain.Session, error) {
		return m.auth.Register(ctx, domain.Registration{Name: name, Email: email, Password: password})
	})
}

func (m *Manager) acquire(ctx context.Context, span trace.Span, op string, call func() (*domain.Session, error)) error {
	m.update(func(s *State) { s.Loading = true })

	sess, err := call()
	if err == nil && sess == nil {
		err = errors.New("empty session in response")
	}
	if err == nil {
		err = m.persist(ctx, sess)
	}
	if err != nil {
		c := apierr.FromError(err)
		m.update(func(s *State) {
			s.Loading = false
			s.Error = c.Message
		})
		m.metrics.recordSignIn(ctx, false)
		return m.handleError(ctx, span, fmt.Errorf("session.%s: %w", opName(op), err), op+" failed",
			slog.String("kind", c.Kind.String()))
	}

	m.update(func(s *State) {
		s.Session = sess
		s.Loading = false
		s.Error = ""
	})
	m.metrics.recordSignIn(ctx, true)
	m.logger.LogAttrs(ctx, slog.LevelInfo, op+" succeeded", slog.String("email", sess.User.Email))
	return nil
}

func opName(op string) string {
	if op == "sign up" {
		return "SignUp"
	}
	return "SignIn"
}

func (m *Manager) persist(ctx context.Context, sess *domain.Session) error {
	user, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	prior, err := m.snapshotPersisted(ctx)
	if err != nil {
		return err
	}
	writes := []struct{ key, value string }{
		{kv.KeyToken, sess.Token},
		{kv.KeyRefreshToken, sess.RefreshToken},
		{kv.KeyUser, string(user)},
	}
	for i, w := range writes {
		if err := m.store.Set(ctx, w.key, w.value); err != nil {
			written := make([]string, 0, i)
			for _, done := range writes[:i] {
				written = append(written, done.key)
			}
			if rbErr := m.restorePersisted(ctx, prior, written); rbErr != nil {
				m.logger.LogAttrs(ctx, slog.LevelError, "rollback of persisted session failed", slog.String("error", rbErr.Error()))
			}
			return fmt.Errorf("persist %s: %w", w.key, err)
		}
	}
	return nil
}

// persistedValue is one session key as it was before a write.
type persistedValue struct {
	value string
	found bool
}

var sessionKeys = []string{kv.KeyToken, kv.KeyRefreshToken, kv.KeyUser}

func (m *Manager) snapshotPersisted(ctx context.Context) (map[string]persistedValue, error) {
	prior := make(map[string]persistedValue, len(sessionKeys))
	for _, key := range sessionKeys {
		v, found, err := m.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		prior[key] = persistedValue{value: v, found: found}
	}
	return prior, nil
}

// restorePersisted puts keys back to a snapshot, so a failed write leaves
// the previous session restorable.
func (m *Manager) restorePersisted(ctx context.Context, prior map[string]persistedValue, keys []string) error {
	var errs []error
	for _, key := range keys {
		p := prior[key]
		var err error
		if p.found {
			err = m.store.Set(ctx, key, p.value)
		} else {
			err = m.store.Delete(ctx, key)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("restore %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// SignOut clears the in-memory session and the persisted tokens. Calling
// it while signed out is a no-op.
func (m *Manager) SignOut(ctx context.Context) error {
	ctx, span := m.tracer.Start(ctx, "Session.SignOut")
	defer span.End()

	wasSignedIn := m.State().Authenticated()
	m.update(func(s *State) { s.Session = nil })
	if err := m.clearPersisted(ctx); err != nil {
		return m.handleError(ctx, span, fmt.Errorf("session.SignOut: %w", err), "sign out failed")
	}
	if wasSignedIn {
		m.metrics.recordSignOut(ctx)
		m.logger.LogAttrs(ctx, slog.LevelInfo, "signed out")
	}
	return nil
}

func (m *Manager) clearPersisted(ctx context.Context) error {
	var errs []error
	for _, key := range sessionKeys {
		if err := m.store.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// ClearError resets the user-facing error.
func (m *Manager) ClearError() {
	m.update(func(s *State) { s.Error = "" })
}

// Restore loads a persisted session without contacting the server. A
// token is trusted until an authenticated call fails, except for JWTs
// whose exp claim has already passed: those are discarded.
func (m *Manager) Restore(ctx context.Context) (bool, error) {
	ctx, span := m.tracer.Start(ctx, "Session.Restore")
	defer span.End()

	token, found, err := m.store.Get(ctx, kv.KeyToken)
	if err != nil {
		return false, m.handleError(ctx, span, fmt.Errorf("session.Restore: %w", err), "restore failed")
	}
	if !found || token == "" {
		return false, nil
	}
	if TokenExpired(token, m.now()) {
		m.logger.LogAttrs(ctx, slog.LevelInfo, "persisted token expired, discarding")
		if err := m.SignOut(ctx); err != nil {
			return false, err
		}
		return false, nil
	}

	sess := &domain.Session{Token: token}
	if refresh, ok, err := m.store.Get(ctx, kv.KeyRefreshToken); err == nil && ok {
		sess.RefreshToken = refresh
	}
	if raw, ok, err := m.store.Get(ctx, kv.KeyUser); err == nil && ok {
		if err := json.Unmarshal([]byte(raw), &sess.User); err != nil {
			m.logger.LogAttrs(ctx, slog.LevelWarn, "persisted user unreadable", slog.String("error", err.Error()))
			sess.User = domain.User{}
		}
	}

	m.update(func(s *State) { s.Session = sess })
	m.logger.LogAttrs(ctx, slog.LevelInfo, "session restored", slog.String("email", sess.User.Email))
	return true, nil
}

// HandleFailure is the hook for any failed authenticated call. The error
// is classified and its message stored; a 401 additionally signs out and
// navigates to the login screen.
func (m *Manager) HandleFailure(ctx context.Context, err error) apierr.Classification {
	c := apierr.FromError(err)
	if c.RequiresSignOut() {
		if signOutErr := m.SignOut(ctx); signOutErr != nil {
			m.logger.LogAttrs(ctx, slog.LevelError, "forced sign out failed", slog.String("error", signOutErr.Error()))
		}
	}
	m.update(func(s *State) { s.Error = c.Message })
	m.logger.LogAttrs(ctx, slog.LevelWarn, "authenticated call failed",
		slog.Int("status", c.Status), slog.String("kind", c.Kind.String()))

	if c.Navigate != "" {
		m.mu.Lock()
		nav := m.nav
		m.mu.Unlock()
		if nav != nil {
			nav.Navigate(c.Navigate, nil)
		}
	}
	return c
}

// CheckExpiry signs out through HandleFailure when the current token is a
// JWT past its exp claim. It reports whether that happened.
func (m *Manager) CheckExpiry(ctx context.Context) bool {
	sess := m.Current()
	if sess == nil || !TokenExpired(sess.Token, m.now()) {
		return false
	}
	m.HandleFailure(ctx, errExpired)
	return true
}

var errExpired = expiredError{}

type expiredError struct{}

func (expiredError) Error() string   { return "session token expired" }
func (expiredError) HTTPStatus() int { return 401 }

func (m *Manager) update(fn func(*State)) {
	m.mu.Lock()
	fn(&m.state)
	snapshot := m.state
	subs := slices.Clone(m.subscribers)
	m.mu.Unlock()

	for _, sub := range subs {
		sub(snapshot)
	}
}

func (m *Manager) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	m.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	return err
}

type managerMetrics struct {
	signIns        metric.Int64Counter
	signInFailures metric.Int64Counter
	signOuts       metric.Int64Counter
}

func newManagerMetrics(m metric.Meter) managerMetrics {
	if m == nil {
		return managerMetrics{}
	}
	signIns, _ := m.Int64Counter("session.sign_in", metric.WithDescription("Number of successful sign-ins and sign-ups"))
	failures, _ := m.Int64Counter("session.sign_in.failures", metric.WithDescription("Number of failed sign-ins and sign-ups"))
	signOuts, _ := m.Int64Counter("session.sign_out", metric.WithDescription("Number of sign-outs"))
	return managerMetrics{signIns: signIns, signInFailures: failures, signOuts: signOuts}
}

func (m managerMetrics) recordSignIn(ctx context.Context, ok bool) {
	c := m.signInFailures
	if ok {
		c = m.signIns
	}
	if c != nil {
		c.Add(ctx, 1)
	}
}

func (m managerMetrics) recordSignOut(ctx context.Context) {
	if m.signOuts != nil {
		m.signOuts.Add(ctx, 1)
	}
}
