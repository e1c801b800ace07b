package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/naveenspark/roam/pkg/domain"
)

func TestAuthenticate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var creds domain.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(domain.Session{ //nolint:errcheck
			Token:        "tok-1",
			RefreshToken: "ref-1",
			User:         domain.User{ID: 7, Email: creds.Email, Name: "Ada"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	sess, err := c.Authenticate(context.Background(), domain.Credentials{Email: "a@b.com", Password: "whateverpw"})
	if err != nil {
		t.Fatalf("Authenticate() error: %v", err)
	}
	if sess.Token != "tok-1" {
		t.Errorf("Token = %q, want %q", sess.Token, "tok-1")
	}
	if sess.User.Email != "a@b.com" {
		t.Errorf("User.Email = %q, want %q", sess.User.Email, "a@b.com")
	}
}

func TestAuthenticate_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	_, err := c.Authenticate(context.Background(), domain.Credentials{})
	if err == nil {
		t.Fatal("expected error for unauthorized request")
	}
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Errorf("IsStatus(err, 401) = false, err = %v", err)
	}
	if got := err.Error(); !strings.Contains(got, "Invalid credentials") {
		t.Errorf("error = %q, want it to contain 'Invalid credentials'", got)
	}
}

func TestRegister(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/register" {
			http.NotFound(w, r)
			return
		}
		var reg domain.Registration
		if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(domain.Session{ //nolint:errcheck
			Token: "tok-2",
			User:  domain.User{Email: reg.Email, Name: reg.Name},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	sess, err := c.Register(context.Background(), domain.Registration{Name: "Ada", Email: "ada@x.io", Password: "pw"})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if sess.User.Name != "Ada" {
		t.Errorf("User.Name = %q, want %q", sess.User.Name, "Ada")
	}
}

func TestGetMe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/me" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "not authenticated"}) //nolint:errcheck
			return
		}
		json.NewEncoder(w).Encode(domain.User{ID: 1, Email: "a@b.com"}) //nolint:errcheck
	}))
	defer srv.Close()

	me, err := New(srv.URL, "test-token").GetMe(context.Background())
	if err != nil {
		t.Fatalf("GetMe() error: %v", err)
	}
	if me.Email != "a@b.com" {
		t.Errorf("Email = %q, want %q", me.Email, "a@b.com")
	}

	_, err = New(srv.URL, "bad").GetMe(context.Background())
	if got := err.Error(); !strings.Contains(got, "HTTP 401") || !strings.Contains(got, "not authenticated") {
		t.Errorf("error = %q, want HTTP 401 with message", got)
	}
}

func TestWithToken(t *testing.T) {
	c := New("http://example.invalid/", "")
	authed := c.WithToken("abc")
	if c.token != "" {
		t.Errorf("original token mutated: %q", c.token)
	}
	if authed.token != "abc" {
		t.Errorf("token = %q, want abc", authed.token)
	}
	if authed.baseURL != "http://example.invalid" {
		t.Errorf("baseURL = %q, want trailing slash trimmed", authed.baseURL)
	}
}

func TestListPlaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/places" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("category"); got != "Attractions" {
			t.Errorf("category = %q, want Attractions", got)
		}
		json.NewEncoder(w).Encode([]domain.Place{{ID: "1", Name: "Central Park"}}) //nolint:errcheck
	}))
	defer srv.Close()

	places, err := New(srv.URL, "tok").ListPlaces(context.Background(), "Attractions")
	if err != nil {
		t.Fatalf("ListPlaces() error: %v", err)
	}
	if len(places) != 1 || places[0].Name != "Central Park" {
		t.Errorf("places = %+v, want Central Park", places)
	}
}

func TestGetPlace_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "tok").GetPlace(context.Background(), "nope")
	if !IsStatus(err, http.StatusNotFound) {
		t.Errorf("IsStatus(err, 404) = false, err = %v", err)
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.HTTPStatus() != http.StatusNotFound {
		t.Errorf("HTTPStatus() mismatch for %v", err)
	}
}

func TestDoRequest_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(500 * time.Millisecond)
		json.NewEncoder(w).Encode(domain.User{}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", WithTimeout(50*time.Millisecond))
	if _, err := c.GetMe(context.Background()); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestDoRequest_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(time.Second)
		json.NewEncoder(w).Encode(domain.User{}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	_, err := c.GetMe(ctx)
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
}
