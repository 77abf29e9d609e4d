package testhelpers

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/school-board-api/board"
	"github.com/linesmerrill/school-board-api/databases"
)

// NewFileStore returns a board store backed by a file store in a temporary directory
func NewFileStore(t *testing.T) (*board.Store, *databases.FileStore) {
	t.Helper()
	files, err := databases.NewFileStore(t.TempDir())
	require.NoError(t, err)
	store := board.NewStore(files, board.Options{})
	t.Cleanup(func() { _ = store.Close() })
	return store, files
}

// Event is one notification captured by Recorder
type Event struct {
	Name    string
	Payload interface{}
}

// Recorder is a board.Notifier that keeps every event it receives
type Recorder struct {
	mutex  sync.Mutex
	events []Event
}

// Notify implements board.Notifier
func (r *Recorder) Notify(event string, payload interface{}) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.events = append(r.events, Event{Name: event, Payload: payload})
}

// Names returns the names of the recorded events in order
func (r *Recorder) Names() []string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	names := make([]string, 0, len(r.events))
	for _, e := range r.events {
		names = append(names, e.Name)
	}
	return names
}
