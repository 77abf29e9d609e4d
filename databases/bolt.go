package databases

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/linesmerrill/school-board-api/models"
)

var (
	boardBucket = []byte("board")
	mediaBucket = []byte("media")
	metaBucket  = []byte("meta")

	boardKey = []byte("data")
)

// BoltStore is the embedded key/value backend used when the board runs without a server
type BoltStore struct {
	db *bbolt.DB
}

// OpenBoltStore opens (or creates) the bbolt file at path and ensures its buckets exist
func OpenBoltStore(path string) (*BoltStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "create storage directory")
	}
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open storage db")
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{boardBucket, mediaBucket, metaBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return errors.Wrapf(err, "create %s bucket", bucket)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

// Kind returns models.BackendLocal
func (s *BoltStore) Kind() models.BackendKind { return models.BackendLocal }

// Close closes the underlying bbolt database
func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// LoadBoard reads the board document
func (s *BoltStore) LoadBoard(ctx context.Context) (models.BoardData, error) {
	var board models.BoardData
	err := s.view(ctx, boardBucket, func(b *bbolt.Bucket) error {
		payload := b.Get(boardKey)
		if payload == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(payload, &board); err != nil {
			return errors.Wrap(ErrMalformed, err.Error())
		}
		return nil
	})
	return board, err
}

// SaveBoard replaces the board document
func (s *BoltStore) SaveBoard(ctx context.Context, board models.BoardData) error {
	payload, err := json.Marshal(board)
	if err != nil {
		return errors.Wrap(err, "marshal board")
	}
	return s.update(ctx, boardBucket, func(b *bbolt.Bucket) error {
		return b.Put(boardKey, payload)
	})
}

// LoadMeta reads every app metadata key
func (s *BoltStore) LoadMeta(ctx context.Context) (map[string]string, error) {
	meta := map[string]string{}
	err := s.view(ctx, metaBucket, func(b *bbolt.Bucket) error {
		return b.ForEach(func(k, v []byte) error {
			meta[string(k)] = string(v)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return meta, nil
}

// SaveMeta replaces the app metadata
func (s *BoltStore) SaveMeta(ctx context.Context, meta map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return ErrUnavailable
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(metaBucket); err != nil && err != bbolt.ErrBucketNotFound {
			return errors.Wrap(err, "reset meta bucket")
		}
		b, err := tx.CreateBucket(metaBucket)
		if err != nil {
			return errors.Wrap(err, "create meta bucket")
		}
		for k, v := range meta {
			if err := b.Put([]byte(k), []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
}

// PutMedia stores the asset under a new UUID
func (s *BoltStore) PutMedia(ctx context.Context, media models.Media) (models.MediaRef, error) {
	media.ID = uuid.NewString()
	if media.CreatedAt.IsZero() {
		media.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(boltMedia{Media: media, Data: media.Data})
	if err != nil {
		return models.MediaRef{}, errors.Wrap(err, "marshal media")
	}
	err = s.update(ctx, mediaBucket, func(b *bbolt.Bucket) error {
		return b.Put([]byte(media.ID), payload)
	})
	if err != nil {
		return models.MediaRef{}, err
	}
	return models.MediaRef{Backend: models.BackendLocal, ID: media.ID}, nil
}

// GetMedia reads an asset by id
func (s *BoltStore) GetMedia(ctx context.Context, id string) (models.Media, error) {
	var stored boltMedia
	err := s.view(ctx, mediaBucket, func(b *bbolt.Bucket) error {
		payload := b.Get([]byte(id))
		if payload == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(payload, &stored); err != nil {
			return errors.Wrap(ErrMalformed, err.Error())
		}
		return nil
	})
	if err != nil {
		return models.Media{}, err
	}
	media := stored.Media
	media.Data = stored.Data
	return media, nil
}

// MediaURL returns the public path the HTTP API serves the asset from
func (s *BoltStore) MediaURL(id string) string {
	return MediaPath(id)
}

// boltMedia carries the payload that models.Media leaves out of its JSON form
type boltMedia struct {
	models.Media
	Data []byte `json:"data"`
}

func (s *BoltStore) view(ctx context.Context, bucket []byte, fn func(*bbolt.Bucket) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return ErrUnavailable
	}
	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return errors.Wrapf(ErrUnavailable, "%s bucket is missing", bucket)
		}
		return fn(b)
	})
}

func (s *BoltStore) update(ctx context.Context, bucket []byte, fn func(*bbolt.Bucket) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return ErrUnavailable
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return errors.Wrapf(ErrUnavailable, "%s bucket is missing", bucket)
		}
		return fn(b)
	})
}
