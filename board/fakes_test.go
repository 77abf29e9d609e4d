package board_test

import (
	"context"
	"sync"
	"time"

	"github.com/linesmerrill/school-board-api/databases"
	"github.com/linesmerrill/school-board-api/models"
)

// fakeBackend is an in-memory BoardBackend with switchable failures
type fakeBackend struct {
	mu      sync.Mutex
	board   *models.BoardData
	meta    map[string]string
	loadErr error
	saveErr error
	loads   int
	saves   int

	// beforeStore runs inside SaveBoard before the board is stored, without the lock held
	beforeStore func(call int)
	// loadGate blocks LoadBoard until it is closed
	loadGate chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{meta: map[string]string{}}
}

func (f *fakeBackend) Kind() models.BackendKind { return models.BackendLocal }

func (f *fakeBackend) Close() error { return nil }

func (f *fakeBackend) LoadBoard(_ context.Context) (models.BoardData, error) {
	f.mu.Lock()
	f.loads++
	gate := f.loadGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return models.BoardData{}, f.loadErr
	}
	if f.board == nil {
		return models.BoardData{}, databases.ErrNotFound
	}
	return f.board.Clone(), nil
}

func (f *fakeBackend) SaveBoard(_ context.Context, board models.BoardData) error {
	f.mu.Lock()
	f.saves++
	call := f.saves
	hook := f.beforeStore
	err := f.saveErr
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := board.Clone()
	f.board = &stored
	return nil
}

func (f *fakeBackend) LoadMeta(_ context.Context) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	meta := make(map[string]string, len(f.meta))
	for k, v := range f.meta {
		meta[k] = v
	}
	return meta, nil
}

func (f *fakeBackend) SaveMeta(_ context.Context, meta map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meta = meta
	return nil
}

func (f *fakeBackend) stored() *models.BoardData {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.board == nil {
		return nil
	}
	b := f.board.Clone()
	return &b
}

func (f *fakeBackend) counts() (loads, saves int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads, f.saves
}

func (f *fakeBackend) set(fn func(f *fakeBackend)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordedEvent struct {
	name    string
	payload interface{}
}

type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recorder) Notify(event string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{name: event, payload: payload})
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.events))
	for _, e := range r.events {
		names = append(names, e.name)
	}
	return names
}
