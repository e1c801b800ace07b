// Package authmock stands in for the remote authentication endpoint. It
// is used in-process when no API URL is configured, and served over HTTP
// by cmd/roam-authd.
package authmock

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/naveenspark/roam/pkg/client"
	"github.com/naveenspark/roam/pkg/domain"
)

// Fixed tokens handed out by the mock.
const (
	MockToken        = "mock-token-123"
	MockRefreshToken = "mock-refresh-token-123"
)

// DefaultDelay simulates network latency.
const DefaultDelay = time.Second

// Authenticator accepts any non-empty email/password pair.
type Authenticator struct {
	delay     time.Duration
	jwtSecret []byte
	jwtTTL    time.Duration
	now       func() time.Time

	mu        sync.Mutex
	lastEmail string // holder of MockToken when no JWT secret is set
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithDelay overrides the simulated latency. Zero disables it.
func WithDelay(d time.Duration) Option {
	return func(a *Authenticator) { a.delay = d }
}

// WithJWT makes the mock issue HS256 access tokens that expire after ttl
// instead of the fixed MockToken.
func WithJWT(secret []byte, ttl time.Duration) Option {
	return func(a *Authenticator) {
		a.jwtSecret = secret
		a.jwtTTL = ttl
	}
}

// New creates a mock Authenticator.
func New(opts ...Option) *Authenticator {
	a := &Authenticator{delay: DefaultDelay, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Authenticate signs in. Empty email or password fails with 401.
func (a *Authenticator) Authenticate(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	if creds.Email == "" || creds.Password == "" {
		return nil, &client.HTTPError{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}
	}
	return a.issue(creds.Email, "")
}

// Register behaves like Authenticate and echoes the supplied name.
func (a *Authenticator) Register(ctx context.Context, reg domain.Registration) (*domain.Session, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	if reg.Email == "" || reg.Password == "" {
		return nil, &client.HTTPError{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}
	}
	return a.issue(reg.Email, reg.Name)
}

func (a *Authenticator) wait(ctx context.Context) error {
	if a.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(a.delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Authenticator) issue(email, name string) (*domain.Session, error) {
	if name == "" {
		name = "Test User"
	}
	token := MockToken
	if len(a.jwtSecret) == 0 {
		a.mu.Lock()
		a.lastEmail = email
		a.mu.Unlock()
	} else {
		signed, err := a.signToken(email)
		if err != nil {
			return nil, err
		}
		token = signed
	}
	return &domain.Session{
		Token:        token,
		RefreshToken: MockRefreshToken,
		User: domain.User{
			ID:    1,
			Email: email,
			Name:  name,
			Preferences: domain.Preferences{
				CuisineTypes: []string{"Italian", "Japanese"},
				BudgetRange:  "medium",
			},
		},
	}, nil
}

func (a *Authenticator) signToken(email string) (string, error) {
	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		Issuer:    "roam-authd",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.jwtTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.jwtSecret)
}

// VerifyToken reports whether token was issued by this mock and is still
// valid. The fixed MockToken is always valid and belongs to the most
// recent sign-in.
func (a *Authenticator) VerifyToken(token string) (email string, ok bool) {
	if len(a.jwtSecret) == 0 {
		if token != MockToken {
			return "", false
		}
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.lastEmail, true
	}
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return a.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil || !parsed.Valid {
		return "", false
	}
	return claims.Subject, true
}
