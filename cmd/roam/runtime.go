package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/naveenspark/roam/internal/authmock"
	"github.com/naveenspark/roam/internal/bookmarks"
	"github.com/naveenspark/roam/internal/catalog"
	"github.com/naveenspark/roam/internal/config"
	"github.com/naveenspark/roam/internal/kv"
	"github.com/naveenspark/roam/internal/observability"
	"github.com/naveenspark/roam/internal/reviews"
	"github.com/naveenspark/roam/internal/session"
	"github.com/naveenspark/roam/internal/tui"
	"github.com/naveenspark/roam/pkg/client"
	"github.com/naveenspark/roam/pkg/domain"
)

const serviceName = "roam"

// runtime holds the services shared by the TUI and the subcommands.
type runtime struct {
	logger    *slog.Logger
	sessions  *session.Manager
	bookmarks *bookmarks.Manager
	reviews   *reviews.Board
	places    tui.PlaceLister
	// api is nil when the in-process mock is used.
	api *client.Client

	closeStore func() error
	shutdown   func(context.Context) error
}

func newRuntime(ctx context.Context, cfg config.Config) (*runtime, error) {
	logFile := cfg.LogFile
	if logFile == "" {
		path, err := observability.DefaultLogFile()
		if err != nil {
			return nil, err
		}
		logFile = path
	}
	inst, shutdown, err := observability.Init(ctx, observability.Options{
		ServiceName: serviceName,
		Level:       cfg.LogLevel,
		LogFile:     logFile,
		TraceFile:   cfg.TraceFile,
	})
	if err != nil {
		return nil, err
	}

	store, closeStore, err := kv.Open(ctx, cfg.Store)
	if err != nil {
		shutdown(ctx) //nolint:errcheck // already failing
		return nil, err
	}

	rt := &runtime{
		logger:     inst.Logger,
		reviews:    reviews.NewBoard(),
		closeStore: closeStore,
		shutdown:   shutdown,
	}

	var auth session.Authenticator
	if cfg.UseMock() {
		auth = authmock.New(authmock.WithDelay(cfg.MockDelay))
		rt.places = catalog.Static(catalog.Places)
	} else {
		rt.api = client.New(cfg.APIURL, "", client.WithTimeout(cfg.APITimeout))
		auth = rt.api
	}

	rt.sessions = session.NewManager(auth, store,
		session.WithLogger(inst.Logger.With("component", "session")),
		session.WithTracer(inst.Tracer("github.com/naveenspark/roam/internal/session")),
		session.WithMeter(inst.Meter("github.com/naveenspark/roam/internal/session")),
	)
	rt.bookmarks = bookmarks.NewManager(store,
		bookmarks.WithLogger(inst.Logger.With("component", "bookmarks")),
		bookmarks.WithTracer(inst.Tracer("github.com/naveenspark/roam/internal/bookmarks")),
		bookmarks.WithMeter(inst.Meter("github.com/naveenspark/roam/internal/bookmarks")),
	)
	if rt.api != nil {
		rt.places = sessionPlaces{api: rt.api, sessions: rt.sessions}
	}

	inst.Logger.Info("roam started",
		slog.String("version", version),
		slog.String("store", cfg.Store.Backend),
		slog.Bool("mock", cfg.UseMock()))
	return rt, nil
}

// Close releases the store and flushes telemetry.
func (rt *runtime) Close(ctx context.Context) error {
	err := rt.closeStore()
	if err != nil {
		rt.logger.Error("close store failed", slog.String("error", err.Error()))
	}
	return errors.Join(err, rt.shutdown(ctx))
}

// sessionPlaces lists places from the API with the current session's token.
type sessionPlaces struct {
	api      *client.Client
	sessions *session.Manager
}

func (s sessionPlaces) ListPlaces(ctx context.Context, category string) ([]domain.Place, error) {
	sess := s.sessions.Current()
	if sess == nil {
		return nil, &client.HTTPError{StatusCode: http.StatusUnauthorized, Message: "not signed in"}
	}
	places, err := s.api.WithToken(sess.Token).ListPlaces(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list places: %w", err)
	}
	return places, nil
}
