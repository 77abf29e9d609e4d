package board_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/school-board-api/board"
	"github.com/linesmerrill/school-board-api/databases"
	"github.com/linesmerrill/school-board-api/models"
)

func sampleBoard() models.BoardData {
	b := models.DefaultBoard()
	b.Quotes = []models.Quote{{ID: "q1", Type: "hadith", Text: "Kolaylaştırınız, zorlaştırmayınız", Source: "Buhârî"}}
	b.Countdowns = []models.Countdown{{ID: "c1", Name: "LGS", Date: "2024-06-15", Type: "exam", Icon: "📝"}}
	b.Birthdays = []models.Birthday{{Name: "Zeynep", Date: "2010-03-08", Class: "8-A", Type: "student"}}
	b.Config.SchoolName = "Atatürk Ortaokulu"
	return b
}

func newTestStore(backend databases.BoardBackend) (*board.Store, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)}
	return board.NewStore(backend, board.Options{Now: clock.Now, CacheTTL: 5 * time.Minute}), clock
}

func TestStore_SaveThenLoadRoundTrips(t *testing.T) {
	backend := newFakeBackend()
	store, _ := newTestStore(backend)
	ctx := context.Background()

	data := sampleBoard()
	require.NoError(t, store.Save(ctx, data))

	assert.Equal(t, data, store.Load(ctx))
	loads, saves := backend.counts()
	assert.Equal(t, 0, loads, "a fresh cache answers without the backend")
	assert.Equal(t, 1, saves)
}

func TestStore_RoundTripAcrossBackends(t *testing.T) {
	ctx := context.Background()
	files, err := databases.NewFileStore(t.TempDir())
	require.NoError(t, err)
	bolt, err := databases.OpenBoltStore(filepath.Join(t.TempDir(), "board.db"))
	require.NoError(t, err)
	defer bolt.Close()
	sqlite, err := databases.OpenSQLiteStore(ctx, filepath.Join(t.TempDir(), "board.sqlite"))
	require.NoError(t, err)
	defer sqlite.Close()

	for _, backend := range []databases.BoardBackend{files, bolt, sqlite} {
		t.Run(string(backend.Kind()), func(t *testing.T) {
			store, _ := newTestStore(backend)
			data := sampleBoard()
			require.NoError(t, store.Save(ctx, data))
			assert.Equal(t, data, store.Load(ctx))

			// a second store over the same backend has an empty cache
			cold, _ := newTestStore(backend)
			assert.Equal(t, data, cold.Load(ctx))
		})
	}
}

func TestStore_LoadSeedsDefaultWhenNothingStored(t *testing.T) {
	backend := newFakeBackend()
	store, _ := newTestStore(backend)
	ctx := context.Background()

	assert.Equal(t, models.DefaultBoard(), store.Load(ctx))
	require.NotNil(t, backend.stored())
	assert.Equal(t, models.DefaultBoard(), *backend.stored())

	store.Load(ctx)
	loads, saves := backend.counts()
	assert.Equal(t, 1, loads)
	assert.Equal(t, 1, saves)
}

func TestStore_LoadNeverFails(t *testing.T) {
	backend := newFakeBackend()
	backend.loadErr = errors.Wrap(databases.ErrUnavailable, "disk on fire")
	backend.saveErr = errors.Wrap(databases.ErrUnavailable, "disk on fire")
	store, _ := newTestStore(backend)
	ctx := context.Background()

	assert.Equal(t, models.DefaultBoard(), store.Load(ctx))
	assert.Equal(t, models.DefaultBoard(), store.Load(ctx))

	loads, _ := backend.counts()
	assert.Equal(t, 2, loads, "an unpersisted default is not cached")
}

func TestStore_LoadFallsBackToStaleCache(t *testing.T) {
	backend := newFakeBackend()
	store, clock := newTestStore(backend)
	ctx := context.Background()

	data := sampleBoard()
	require.NoError(t, store.Save(ctx, data))
	clock.Advance(time.Hour)
	backend.set(func(f *fakeBackend) { f.loadErr = errors.New("connection refused") })

	assert.Equal(t, data, store.Load(ctx))
	loads, _ := backend.counts()
	assert.Equal(t, 1, loads)
}

func TestStore_MalformedDocumentIsNotOverwritten(t *testing.T) {
	backend := newFakeBackend()
	stored := sampleBoard()
	backend.board = &stored
	backend.loadErr = errors.Wrap(databases.ErrMalformed, "unexpected end of JSON input")
	store, _ := newTestStore(backend)

	assert.Equal(t, models.DefaultBoard(), store.Load(context.Background()))
	_, saves := backend.counts()
	assert.Equal(t, 0, saves)
	assert.Equal(t, stored, *backend.stored())
}

func TestStore_LoadFillsMissingFields(t *testing.T) {
	backend := newFakeBackend()
	stored := sampleBoard()
	stored.Slides = nil
	stored.Duty = nil
	stored.Config.Timezone = ""
	backend.board = &stored
	store, _ := newTestStore(backend)

	got := store.Load(context.Background())
	assert.Equal(t, models.DefaultBoard().Slides, got.Slides)
	assert.Equal(t, models.DefaultBoard().Duty, got.Duty)
	assert.Equal(t, models.DefaultTimezone, got.Config.Timezone)
	assert.Equal(t, stored.Quotes, got.Quotes)
	assert.Equal(t, "Atatürk Ortaokulu", got.Config.SchoolName)
}

func TestStore_CacheExpires(t *testing.T) {
	backend := newFakeBackend()
	store, clock := newTestStore(backend)
	ctx := context.Background()

	first := sampleBoard()
	require.NoError(t, store.Save(ctx, first))

	second := sampleBoard()
	second.Config.SchoolName = "Cumhuriyet Lisesi"
	backend.set(func(f *fakeBackend) { f.board = &second })

	clock.Advance(4 * time.Minute)
	assert.Equal(t, first, store.Load(ctx))

	clock.Advance(2 * time.Minute)
	assert.Equal(t, second, store.Load(ctx))
}

func TestStore_SaveFailureStillUpdatesCache(t *testing.T) {
	backend := newFakeBackend()
	backend.saveErr = errors.Wrap(databases.ErrUnavailable, "read-only file system")
	events := &recorder{}
	clock := &fakeClock{now: time.Now()}
	store := board.NewStore(backend, board.Options{Now: clock.Now, Notifier: events})
	ctx := context.Background()

	data := sampleBoard()
	err := store.Save(ctx, data)
	assert.ErrorIs(t, err, databases.ErrUnavailable)
	assert.Nil(t, backend.stored())

	assert.Equal(t, data, store.Load(ctx))
	assert.Empty(t, events.names())
}

func TestStore_SaveNotifies(t *testing.T) {
	events := &recorder{}
	store := board.NewStore(newFakeBackend(), board.Options{Notifier: events})

	data := sampleBoard()
	require.NoError(t, store.Save(context.Background(), data))
	require.Equal(t, []string{board.EventBoardSaved}, events.names())
	assert.Equal(t, board.BoardSavedPayload{Revision: board.Revision(data)}, events.events[0].payload)
}

func TestStore_ConcurrentLoadsShareOneBackendRead(t *testing.T) {
	backend := newFakeBackend()
	stored := sampleBoard()
	backend.board = &stored
	gate := make(chan struct{})
	backend.loadGate = gate
	store, _ := newTestStore(backend)

	var wg sync.WaitGroup
	results := make([]models.BoardData, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = store.Load(context.Background())
		}(i)
	}

	require.Eventually(t, func() bool {
		loads, _ := backend.counts()
		return loads == 1
	}, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	loads, _ := backend.counts()
	assert.Equal(t, 1, loads)
	for _, got := range results {
		assert.Equal(t, stored, got)
	}
	results[0].Quotes[0].Text = "changed"
	assert.NotEqual(t, results[0].Quotes, results[1].Quotes, "callers get independent copies")
}

func TestStore_AppMeta(t *testing.T) {
	store, _ := newTestStore(newFakeBackend())
	ctx := context.Background()

	require.NoError(t, store.SetAppMeta(ctx, "lastSeenVersion", "v1.4.0"))
	require.NoError(t, store.SetAppMeta(ctx, "theme", "dark"))
	require.NoError(t, store.SetAppMeta(ctx, "theme", ""))

	meta, err := store.AppMeta(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"lastSeenVersion": "v1.4.0"}, meta)
}

func TestMemoryCache(t *testing.T) {
	cache := board.NewMemoryCache()
	ctx := context.Background()

	_, ok := cache.Get(ctx)
	assert.False(t, ok)

	data := sampleBoard()
	now := time.Now()
	cache.Set(ctx, models.CacheEntry{Data: data, StoredAt: now})
	data.Quotes[0].Text = "mutated after set"

	entry, ok := cache.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, sampleBoard(), entry.Data)
	assert.Equal(t, now, entry.StoredAt)
}

func TestRevision(t *testing.T) {
	a := sampleBoard()
	b := sampleBoard()
	assert.Equal(t, board.Revision(a), board.Revision(b))
	assert.Len(t, board.Revision(a), 64)

	b.Config.SchoolName = "Başka Okul"
	assert.NotEqual(t, board.Revision(a), board.Revision(b))
}

func TestStore_SaveFillsMissingFieldsBeforeCaching(t *testing.T) {
	backend := newFakeBackend()
	store, clock := newTestStore(backend)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, sampleBoard()))

	require.NoError(t, store.UpdateSection(ctx, models.SectionSlides, []byte(`null`)))
	cached := store.Load(ctx)
	assert.Equal(t, models.DefaultBoard().Slides, cached.Slides)
	assert.Equal(t, cached, *backend.stored(), "cache and backend hold the same document")

	clock.Advance(10 * time.Minute)
	assert.Equal(t, cached, store.Load(ctx))

	partial := models.BoardData{Quotes: []models.Quote{{ID: "q9", Type: "quote", Text: "Bilgi güçtür"}}}
	require.NoError(t, store.Save(ctx, partial))
	got := store.Load(ctx)
	assert.Equal(t, partial.Quotes, got.Quotes)
	assert.NotNil(t, got.Duty)
	assert.Equal(t, models.DefaultBoard().Config.SchoolName, got.Config.SchoolName)
}

func TestStore_SlowReadDoesNotOverwriteNewerSave(t *testing.T) {
	backend := newFakeBackend()
	old := sampleBoard()
	backend.board = &old
	gate := make(chan struct{})
	backend.loadGate = gate
	store, _ := newTestStore(backend)
	ctx := context.Background()

	done := make(chan models.BoardData)
	go func() { done <- store.Refresh(ctx) }()
	require.Eventually(t, func() bool {
		loads, _ := backend.counts()
		return loads == 1
	}, time.Second, time.Millisecond)

	fresh := sampleBoard()
	fresh.Quotes = []models.Quote{{ID: "fresh", Type: "quote", Text: "Yeni söz"}}
	require.NoError(t, store.Save(ctx, fresh))

	close(gate)
	assert.Equal(t, old.Quotes, (<-done).Quotes, "the slow read returns what it read")
	assert.Equal(t, fresh, store.Load(ctx))
	loads, _ := backend.counts()
	assert.Equal(t, 1, loads, "the saved board is served from the cache")
}
