// Package bookmarks keeps the user's saved places as a JSON list under a
// single kv key.
package bookmarks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/naveenspark/roam/internal/kv"
	"github.com/naveenspark/roam/pkg/domain"
)

const tracerName = "github.com/naveenspark/roam/internal/bookmarks"

// CorruptError reports a stored list that could not be decoded.
type CorruptError struct {
	Err error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("bookmarks: stored list is corrupt: %v", e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// Manager reads and writes the bookmark list. Its read-modify-write
// cycles are serialized within the process; two processes sharing one
// store can still overwrite each other.
type Manager struct {
	store   kv.Store
	logger  *slog.Logger
	tracer  trace.Tracer
	toggles metric.Int64Counter

	mu sync.Mutex
}

type Option func(*Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(m *Manager) { m.tracer = tr }
}

func WithMeter(meter metric.Meter) Option {
	return func(m *Manager) {
		if meter == nil {
			return
		}
		m.toggles, _ = meter.Int64Counter("bookmarks.toggle", metric.WithDescription("Number of bookmark toggles"))
	}
}

func NewManager(store kv.Store, opts ...Option) *Manager {
	m := &Manager{store: store}
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

// Load returns the stored list. A missing key is an empty list. An
// undecodable value yields an empty list and a *CorruptError so the
// caller can decide whether to warn.
func (m *Manager) Load(ctx context.Context) ([]domain.Place, error) {
	raw, ok, err := m.store.Get(ctx, kv.KeyBookmarks)
	if err != nil {
		return nil, fmt.Errorf("bookmarks.Load: %w", err)
	}
	if !ok || raw == "" {
		return []domain.Place{}, nil
	}
	var places []domain.Place
	if err := json.Unmarshal([]byte(raw), &places); err != nil {
		return []domain.Place{}, &CorruptError{Err: err}
	}
	if places == nil {
		places = []domain.Place{}
	}
	return places, nil
}

// List is Load with the corrupt case treated as empty.
func (m *Manager) List(ctx context.Context) ([]domain.Place, error) {
	return m.read(ctx)
}

// IsBookmarked reports whether placeID is in the list. Read failures
// count as not bookmarked.
func (m *Manager) IsBookmarked(ctx context.Context, placeID string) bool {
	places, err := m.read(ctx)
	if err != nil {
		m.logger.LogAttrs(ctx, slog.LevelWarn, "bookmark lookup failed", slog.String("error", err.Error()))
		return false
	}
	return contains(places, placeID)
}

// Toggle removes every entry with place.ID if any exist, otherwise
// appends place. It returns the new membership.
func (m *Manager) Toggle(ctx context.Context, place domain.Place) (bool, error) {
	ctx, span := m.tracer.Start(ctx, "Bookmarks.Toggle", trace.WithAttributes(attribute.String("place.id", place.ID)))
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	places, err := m.read(ctx)
	if err != nil {
		return false, m.handleError(ctx, span, err)
	}

	saved := !contains(places, place.ID)
	if saved {
		places = append(places, place)
	} else {
		places = without(places, place.ID)
	}

	raw, err := json.Marshal(places)
	if err != nil {
		return false, m.handleError(ctx, span, fmt.Errorf("bookmarks.Toggle: encode: %w", err))
	}
	if err := m.store.Set(ctx, kv.KeyBookmarks, string(raw)); err != nil {
		return false, m.handleError(ctx, span, fmt.Errorf("bookmarks.Toggle: %w", err))
	}

	if m.toggles != nil {
		m.toggles.Add(ctx, 1, metric.WithAttributes(attribute.Bool("saved", saved)))
	}
	m.logger.LogAttrs(ctx, slog.LevelInfo, "bookmark toggled",
		slog.String("place_id", place.ID), slog.Bool("saved", saved), slog.Int("count", len(places)))
	return saved, nil
}

// read applies the silent recovery policy: corrupt data reads as empty.
func (m *Manager) read(ctx context.Context) ([]domain.Place, error) {
	places, err := m.Load(ctx)
	if corrupt, ok := err.(*CorruptError); ok {
		m.logger.LogAttrs(ctx, slog.LevelWarn, "discarding corrupt bookmark list", slog.String("error", corrupt.Err.Error()))
		return places, nil
	}
	return places, err
}

func (m *Manager) handleError(ctx context.Context, span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	m.logger.LogAttrs(ctx, slog.LevelError, "bookmark toggle failed", slog.String("error", err.Error()))
	return err
}

func contains(places []domain.Place, id string) bool {
	for _, p := range places {
		if p.ID == id {
			return true
		}
	}
	return false
}

func without(places []domain.Place, id string) []domain.Place {
	out := make([]domain.Place, 0, len(places))
	for _, p := range places {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}
