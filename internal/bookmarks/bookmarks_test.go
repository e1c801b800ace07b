package bookmarks_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveenspark/roam/internal/authmock"
	"github.com/naveenspark/roam/internal/bookmarks"
	"github.com/naveenspark/roam/internal/catalog"
	"github.com/naveenspark/roam/internal/kv"
	"github.com/naveenspark/roam/internal/session"
	"github.com/naveenspark/roam/pkg/domain"
)

func centralPark(t *testing.T) domain.Place {
	t.Helper()
	p, ok := catalog.ByID(catalog.Places, "1")
	require.True(t, ok)
	require.Equal(t, "Central Park", p.Name)
	return p
}

func persisted(t *testing.T, store kv.Store) []domain.Place {
	t.Helper()
	raw, ok, err := store.Get(context.Background(), kv.KeyBookmarks)
	require.NoError(t, err)
	if !ok {
		return nil
	}
	var places []domain.Place
	require.NoError(t, json.Unmarshal([]byte(raw), &places))
	return places
}

func TestToggle(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	m := bookmarks.NewManager(store)
	park := centralPark(t)

	assert.False(t, m.IsBookmarked(ctx, park.ID))

	saved, err := m.Toggle(ctx, park)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.True(t, m.IsBookmarked(ctx, park.ID))
	require.Len(t, persisted(t, store), 1)
	assert.Equal(t, park, persisted(t, store)[0])

	saved, err = m.Toggle(ctx, park)
	require.NoError(t, err)
	assert.False(t, saved)
	assert.False(t, m.IsBookmarked(ctx, park.ID))
	assert.Empty(t, persisted(t, store))
}

func TestToggle_PairLeavesLengthUnchanged(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	m := bookmarks.NewManager(store)

	for _, p := range catalog.Places[1:4] {
		_, err := m.Toggle(ctx, p)
		require.NoError(t, err)
	}
	before := len(persisted(t, store))

	park := centralPark(t)
	_, err := m.Toggle(ctx, park)
	require.NoError(t, err)
	_, err = m.Toggle(ctx, park)
	require.NoError(t, err)

	assert.Len(t, persisted(t, store), before)
}

func TestToggle_RemovesDuplicates(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	park := centralPark(t)
	other := catalog.Places[1]

	raw, err := json.Marshal([]domain.Place{park, other, park, park})
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, kv.KeyBookmarks, string(raw)))

	m := bookmarks.NewManager(store)
	saved, err := m.Toggle(ctx, park)
	require.NoError(t, err)
	assert.False(t, saved)

	got := persisted(t, store)
	require.Len(t, got, 1)
	assert.Equal(t, other.ID, got[0].ID)
}

func TestLoad_Missing(t *testing.T) {
	m := bookmarks.NewManager(kv.NewMemory())
	places, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, places)
	assert.Empty(t, places)
}

func TestLoad_Corrupt(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, kv.KeyBookmarks, "{oops"))
	m := bookmarks.NewManager(store)

	places, err := m.Load(ctx)
	assert.Empty(t, places)
	var corrupt *bookmarks.CorruptError
	require.True(t, errors.As(err, &corrupt))
	assert.Contains(t, err.Error(), "corrupt")

	list, err := m.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.False(t, m.IsBookmarked(ctx, "1"))

	// Toggling over a corrupt list starts a fresh one.
	saved, err := m.Toggle(ctx, centralPark(t))
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Len(t, persisted(t, store), 1)
}

func TestToggle_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	m := bookmarks.NewManager(store)

	var wg sync.WaitGroup
	for _, p := range catalog.Places {
		wg.Add(1)
		go func(p domain.Place) {
			defer wg.Done()
			_, err := m.Toggle(ctx, p)
			assert.NoError(t, err)
		}(p)
	}
	wg.Wait()

	assert.Len(t, persisted(t, store), len(catalog.Places))
}

func TestToggle_FileStore(t *testing.T) {
	ctx := context.Background()
	store, err := kv.NewFile(t.TempDir() + "/store.json")
	require.NoError(t, err)
	m := bookmarks.NewManager(store)

	saved, err := m.Toggle(ctx, centralPark(t))
	require.NoError(t, err)
	assert.True(t, saved)
	assert.True(t, bookmarks.NewManager(store).IsBookmarked(ctx, "1"))
}

// The end-to-end scenario: sign in with the mock, bookmark Central Park,
// unbookmark it again.
func TestScenario(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	sessions := session.NewManager(authmock.New(authmock.WithDelay(0)), store)
	marks := bookmarks.NewManager(store)

	require.NoError(t, sessions.SignIn(ctx, "a@b.com", "whateverpw"))
	token, ok, err := store.Get(ctx, kv.KeyToken)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "mock-token-123", token)

	park := centralPark(t)
	saved, err := marks.Toggle(ctx, park)
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = marks.Toggle(ctx, park)
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Len(t, persisted(t, store), 0)

	require.NoError(t, sessions.SignOut(ctx))
	restored := session.NewManager(authmock.New(authmock.WithDelay(0)), store)
	ok, err = restored.Restore(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
