package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/roam/internal/config"
	"github.com/naveenspark/roam/internal/tui"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// shutdownTimeout bounds flushing logs and spans on exit.
const shutdownTimeout = 3 * time.Second

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) > 0 {
		switch args[0] {
		case "--version", "version", "-v":
			fmt.Fprintln(out, "roam "+version)
			return nil
		case "help", "--help", "-h":
			printHelp(out)
			return nil
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	rt, err := newRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		rt.Close(shutCtx) //nolint:errcheck // exit path; errors were logged
	}()

	if _, err := rt.sessions.Restore(ctx); err != nil {
		rt.logger.Warn("restore session failed", slog.String("error", err.Error()))
	}

	if len(args) > 0 {
		switch args[0] {
		case "login":
			return runLogin(ctx, rt, args[1:], out)
		case "logout":
			return runLogout(ctx, rt, out)
		case "whoami":
			return runWhoami(ctx, rt, out)
		default:
			return fmt.Errorf("unknown command %q (try: roam help)", args[0])
		}
	}

	return runTUI(rt)
}

func runTUI(rt *runtime) error {
	app := tui.NewApp(tui.Deps{
		Sessions:  rt.sessions,
		Bookmarks: rt.bookmarks,
		Reviews:   rt.reviews,
		Places:    rt.places,
		Version:   version,
		Logger:    rt.logger,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	rt.sessions.SetNavigator(tui.Navigator(p.Send))
	rt.sessions.Subscribe(tui.SessionListener(p.Send))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func runLogin(ctx context.Context, rt *runtime, args []string, out io.Writer) error {
	if len(args) != 2 {
		return errors.New("usage: roam login <email> <password>")
	}
	if err := rt.sessions.SignIn(ctx, args[0], args[1]); err != nil {
		if msg := rt.sessions.State().Error; msg != "" {
			return errors.New(msg)
		}
		return err
	}
	printWelcome(out, rt.sessions.Current().User.DisplayName())
	return nil
}

func runLogout(ctx context.Context, rt *runtime, out io.Writer) error {
	if rt.sessions.Current() == nil {
		fmt.Fprintln(out, "Already signed out.")
		return nil
	}
	if err := rt.sessions.SignOut(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "Signed out.")
	return nil
}

func runWhoami(ctx context.Context, rt *runtime, out io.Writer) error {
	sess := rt.sessions.Current()
	if sess == nil {
		fmt.Fprintln(out, "Not signed in. Run: roam login <email> <password>")
		return nil
	}
	user := sess.User
	if rt.api != nil {
		me, err := rt.api.WithToken(sess.Token).GetMe(ctx)
		if err != nil {
			c := rt.sessions.HandleFailure(ctx, err)
			return errors.New(c.Message)
		}
		user = *me
		if user.Email == "" {
			user.Email = sess.User.Email
		}
	}
	fmt.Fprintf(out, "%s <%s>\n", user.DisplayName(), user.Email)
	return nil
}
