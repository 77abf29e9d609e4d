package board

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/linesmerrill/school-board-api/api"
	"github.com/linesmerrill/school-board-api/databases"
	"github.com/linesmerrill/school-board-api/models"
)

// DefaultCacheTTL is how long a cached board is served without asking the backend
const DefaultCacheTTL = 5 * time.Minute

const loadKey = "board"

// Options configures a Store. Zero values select the defaults.
type Options struct {
	Cache          Cache
	CacheTTL       time.Duration
	BackendTimeout time.Duration
	// Uploads receives new media instead of the backend, e.g. Cloudinary
	Uploads  databases.MediaStore
	Notifier Notifier
	Now      func() time.Time
}

// Store is the single entry point for reading and writing the board. Reads never fail:
// they fall back to the cache and then to the default board. Writes report backend errors.
type Store struct {
	backend  databases.BoardBackend
	local    databases.MediaStore
	uploads  databases.MediaStore
	registry map[models.BackendKind]databases.MediaStore

	cache    Cache
	ttl      time.Duration
	timeout  time.Duration
	notifier Notifier
	now      func() time.Time

	loads singleflight.Group
	// writes is bumped before and after every Save
	writes atomic.Uint64
}

// NewStore wraps backend. A backend that also stores media becomes the default upload target.
func NewStore(backend databases.BoardBackend, opts Options) *Store {
	s := &Store{
		backend:  backend,
		registry: map[models.BackendKind]databases.MediaStore{},
		cache:    opts.Cache,
		ttl:      opts.CacheTTL,
		timeout:  opts.BackendTimeout,
		notifier: opts.Notifier,
		now:      opts.Now,
	}
	if s.cache == nil {
		s.cache = NewMemoryCache()
	}
	if s.ttl <= 0 {
		s.ttl = DefaultCacheTTL
	}
	if s.timeout <= 0 {
		s.timeout = api.QueryTimeout
	}
	if s.notifier == nil {
		s.notifier = Notifiers{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if media, ok := backend.(databases.MediaStore); ok {
		s.local = media
		s.RegisterMedia(media)
	}
	s.uploads = s.local
	if opts.Uploads != nil {
		s.uploads = opts.Uploads
		s.RegisterMedia(opts.Uploads)
	}
	return s
}

// RegisterMedia makes references minted by media resolvable, e.g. after switching backends
func (s *Store) RegisterMedia(media databases.MediaStore) {
	s.registry[media.Kind()] = media
}

// Kind returns the active backend kind
func (s *Store) Kind() models.BackendKind {
	return s.backend.Kind()
}

// SetNotifier replaces the event notifier. It must be called before the store is shared.
func (s *Store) SetNotifier(n Notifier) {
	if n == nil {
		n = Notifiers{}
	}
	s.notifier = n
}

// Close closes the backend
func (s *Store) Close() error {
	return s.backend.Close()
}

// Load returns the board. A cached copy younger than the cache TTL is served as is;
// otherwise concurrent callers share a single backend read.
func (s *Store) Load(ctx context.Context) models.BoardData {
	if entry, ok := s.cache.Get(ctx); ok && s.now().Sub(entry.StoredAt) < s.ttl {
		return entry.Data.Clone()
	}
	return s.Refresh(ctx)
}

// Refresh reads the board from the backend, bypassing the cache freshness check
func (s *Store) Refresh(ctx context.Context) models.BoardData {
	v, _, _ := s.loads.Do(loadKey, func() (interface{}, error) {
		return s.loadFromBackend(context.WithoutCancel(ctx)), nil
	})
	return v.(models.BoardData).Clone()
}

func (s *Store) loadFromBackend(ctx context.Context) models.BoardData {
	gen := s.writes.Load()
	tctx, cancel := api.WithQueryTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	data, err := s.backend.LoadBoard(tctx)
	api.ObserveBackendCall("load", string(s.Kind()), start, err)

	switch {
	case err == nil:
		data = models.FillDefaults(data)
		s.cacheUnlessWritten(ctx, gen, data)
		return data
	case errors.Is(err, databases.ErrNotFound):
		zap.S().Infow("no board stored yet, seeding default", "backend", s.Kind())
		return s.seed(ctx, gen)
	case errors.Is(err, databases.ErrMalformed):
		// the stored document is left untouched so it can be repaired by hand
		zap.S().Errorw("stored board is malformed, serving default", "backend", s.Kind(), "error", err)
		return models.DefaultBoard()
	default:
		zap.S().Warnw("failed to load board", "backend", s.Kind(), "error", err)
		if entry, ok := s.cache.Get(ctx); ok {
			return entry.Data
		}
		return s.seed(ctx, gen)
	}
}

// seed returns the default board and persists it best-effort. The cache only takes
// the default once the backend holds it too.
func (s *Store) seed(ctx context.Context, gen uint64) models.BoardData {
	data := models.DefaultBoard()
	if s.writes.Load() != gen {
		return data
	}
	tctx, cancel := api.WithQueryTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := s.backend.SaveBoard(tctx, data)
	api.ObserveBackendCall("seed", string(s.Kind()), start, err)
	if err != nil {
		zap.S().Warnw("failed to persist default board", "backend", s.Kind(), "error", err)
		return data
	}
	s.cacheUnlessWritten(ctx, gen, data)
	return data
}

// cacheUnlessWritten caches data read by a load that started at write generation gen,
// unless a Save ran in the meantime.
func (s *Store) cacheUnlessWritten(ctx context.Context, gen uint64, data models.BoardData) {
	if s.writes.Load() != gen {
		zap.S().Debugw("board saved during backend read, keeping the saved copy", "backend", s.Kind())
		return
	}
	s.cache.Set(ctx, models.CacheEntry{Data: data, StoredAt: s.now()})
}

// Save writes the whole board through the backend. Missing top-level fields take the
// default board's value first. The cache takes data whether or not the write succeeded;
// the backend error is returned to the caller.
func (s *Store) Save(ctx context.Context, data models.BoardData) error {
	data = models.FillDefaults(data)
	s.writes.Add(1)
	defer s.writes.Add(1)

	tctx, cancel := api.WithQueryTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := s.backend.SaveBoard(tctx, data)
	api.ObserveBackendCall("save", string(s.Kind()), start, err)
	s.cache.Set(ctx, models.CacheEntry{Data: data, StoredAt: s.now()})
	if err != nil {
		return errors.Wrap(err, "save board")
	}
	s.notifier.Notify(EventBoardSaved, BoardSavedPayload{Revision: Revision(data)})
	return nil
}

// AppMeta returns the app metadata key/values
func (s *Store) AppMeta(ctx context.Context) (map[string]string, error) {
	tctx, cancel := api.WithQueryTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	meta, err := s.backend.LoadMeta(tctx)
	api.ObserveBackendCall("load_meta", string(s.Kind()), start, err)
	if err != nil {
		return nil, errors.Wrap(err, "load app meta")
	}
	return meta, nil
}

// SetAppMeta sets one app metadata value. An empty value removes the key.
func (s *Store) SetAppMeta(ctx context.Context, key, value string) error {
	meta, err := s.AppMeta(ctx)
	if err != nil {
		return err
	}
	if value == "" {
		delete(meta, key)
	} else {
		meta[key] = value
	}

	tctx, cancel := api.WithQueryTimeout(ctx, s.timeout)
	defer cancel()
	start := time.Now()
	err = s.backend.SaveMeta(tctx, meta)
	api.ObserveBackendCall("save_meta", string(s.Kind()), start, err)
	return errors.Wrap(err, "save app meta")
}
