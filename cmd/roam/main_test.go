package main

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/naveenspark/roam/internal/authmock"
)

// setupEnv points config at a throwaway file store and log file.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("ROAM_API_URL", "")
	t.Setenv("ROAM_STORE", "file")
	t.Setenv("ROAM_STORE_PATH", filepath.Join(dir, "store.json"))
	t.Setenv("ROAM_LOG_FILE", filepath.Join(dir, "roam.log"))
	t.Setenv("ROAM_TRACE_FILE", "")
	t.Setenv("ROAM_MOCK_DELAY", "0s")
	return dir
}

func runArgs(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(args, &out)
	return out.String(), err
}

func TestRunVersion(t *testing.T) {
	out, err := runArgs(t, "version")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.TrimSpace(out) != "roam "+version {
		t.Errorf("output = %q", out)
	}
}

func TestRunHelp(t *testing.T) {
	out, err := runArgs(t, "help")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"roam login", "roam logout", "roam whoami"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q", want)
		}
	}
}

func TestRunUnknownCommand(t *testing.T) {
	setupEnv(t)
	if _, err := runArgs(t, "teleport"); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestLoginWhoamiLogout(t *testing.T) {
	setupEnv(t)

	out, err := runArgs(t, "login", "a@b.com", "whateverpw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "Signed in as Test User") {
		t.Errorf("login output = %q", out)
	}

	// A fresh run restores the session from the file store.
	out, err = runArgs(t, "whoami")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if !strings.Contains(out, "a@b.com") {
		t.Errorf("whoami output = %q", out)
	}

	out, err = runArgs(t, "logout")
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	if !strings.Contains(out, "Signed out.") {
		t.Errorf("logout output = %q", out)
	}

	out, err = runArgs(t, "logout")
	if err != nil {
		t.Fatalf("second logout: %v", err)
	}
	if !strings.Contains(out, "Already signed out.") {
		t.Errorf("second logout output = %q", out)
	}
}

func TestLoginUsage(t *testing.T) {
	setupEnv(t)
	if _, err := runArgs(t, "login", "a@b.com"); err == nil || !strings.Contains(err.Error(), "usage") {
		t.Errorf("expected usage error, got %v", err)
	}
}

func TestLoginAgainstAPI(t *testing.T) {
	setupEnv(t)
	mock := authmock.New(authmock.WithDelay(0), authmock.WithJWT([]byte("test-secret"), time.Hour))
	srv := httptest.NewServer(authmock.NewRouter(mock))
	defer srv.Close()
	t.Setenv("ROAM_API_URL", srv.URL)

	if _, err := runArgs(t, "login", "api@example.com", "whateverpw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	out, err := runArgs(t, "whoami")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if !strings.Contains(out, "api@example.com") {
		t.Errorf("whoami output = %q", out)
	}
}

func TestWhoamiAgainstFixedTokenAPI(t *testing.T) {
	setupEnv(t)
	srv := httptest.NewServer(authmock.NewRouter(authmock.New(authmock.WithDelay(0))))
	t.Setenv("ROAM_API_URL", srv.URL)

	if _, err := runArgs(t, "login", "fixed@example.com", "whateverpw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	out, err := runArgs(t, "whoami")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if !strings.Contains(out, "<fixed@example.com>") {
		t.Errorf("whoami output = %q", out)
	}
	srv.Close()

	// A restarted server no longer knows who holds the token.
	srv = httptest.NewServer(authmock.NewRouter(authmock.New(authmock.WithDelay(0))))
	defer srv.Close()
	t.Setenv("ROAM_API_URL", srv.URL)

	out, err = runArgs(t, "whoami")
	if err != nil {
		t.Fatalf("whoami after restart: %v", err)
	}
	if !strings.Contains(out, "<fixed@example.com>") {
		t.Errorf("whoami output after restart = %q", out)
	}
}

func TestLoginAgainstAPIRejectsEmptyPassword(t *testing.T) {
	setupEnv(t)
	srv := httptest.NewServer(authmock.NewRouter(authmock.New(authmock.WithDelay(0))))
	defer srv.Close()
	t.Setenv("ROAM_API_URL", srv.URL)

	_, err := runArgs(t, "login", "api@example.com", "")
	if err == nil {
		t.Fatal("expected login to fail")
	}
	if !strings.Contains(err.Error(), "Session expired") {
		t.Errorf("err = %v, want the 401 message", err)
	}
}
