package databases

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/linesmerrill/school-board-api/databases/migrations"
	"github.com/linesmerrill/school-board-api/models"
)

// SQLiteStore is the desktop shell's SQL store
type SQLiteStore struct {
	db *sqlx.DB
}

type mediaRow struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	ContentType string `db:"content_type"`
	Data        []byte `db:"data"`
	CreatedAt   int64  `db:"created_at"`
}

type metaRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// OpenSQLiteStore opens and migrates the SQLite database at path
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "create storage directory")
	}

	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite db")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping sqlite db")
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "run migrations")
	}
	return &SQLiteStore{db: db}, nil
}

// Kind returns models.BackendDesktop
func (s *SQLiteStore) Kind() models.BackendKind { return models.BackendDesktop }

// Close releases the underlying connection
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// LoadBoard reads the single board row
func (s *SQLiteStore) LoadBoard(ctx context.Context) (models.BoardData, error) {
	if s == nil || s.db == nil {
		return models.BoardData{}, ErrUnavailable
	}
	var payload string
	err := s.db.GetContext(ctx, &payload, `SELECT payload FROM board_data WHERE id = 1`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.BoardData{}, ErrNotFound
		}
		return models.BoardData{}, errors.Wrap(ErrUnavailable, err.Error())
	}
	var board models.BoardData
	if err := json.Unmarshal([]byte(payload), &board); err != nil {
		return models.BoardData{}, errors.Wrap(ErrMalformed, err.Error())
	}
	return board, nil
}

// SaveBoard upserts the single board row
func (s *SQLiteStore) SaveBoard(ctx context.Context, board models.BoardData) error {
	if s == nil || s.db == nil {
		return ErrUnavailable
	}
	payload, err := json.Marshal(board)
	if err != nil {
		return errors.Wrap(err, "marshal board")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO board_data (id, payload, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		string(payload), time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return errors.Wrap(ErrUnavailable, err.Error())
	}
	return nil
}

// LoadMeta reads every app_meta row
func (s *SQLiteStore) LoadMeta(ctx context.Context) (map[string]string, error) {
	if s == nil || s.db == nil {
		return nil, ErrUnavailable
	}
	var rows []metaRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT key, value FROM app_meta`); err != nil {
		return nil, errors.Wrap(err, "select app meta")
	}
	meta := make(map[string]string, len(rows))
	for _, row := range rows {
		meta[row.Key] = row.Value
	}
	return meta, nil
}

// SaveMeta replaces the app_meta table in one transaction
func (s *SQLiteStore) SaveMeta(ctx context.Context, meta map[string]string) error {
	if s == nil || s.db == nil {
		return ErrUnavailable
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin app meta transaction")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM app_meta`); err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "clear app meta")
	}
	for k, v := range meta {
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO app_meta (key, value) VALUES (:key, :value)`, metaRow{Key: k, Value: v}); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "insert app meta %s", k)
		}
	}
	return errors.Wrap(tx.Commit(), "commit app meta")
}

// PutMedia inserts the asset under a new UUID
func (s *SQLiteStore) PutMedia(ctx context.Context, media models.Media) (models.MediaRef, error) {
	if s == nil || s.db == nil {
		return models.MediaRef{}, ErrUnavailable
	}
	row := mediaRow{
		ID:          uuid.NewString(),
		Name:        media.Name,
		ContentType: media.ContentType,
		Data:        media.Data,
		CreatedAt:   time.Now().UTC().UnixMilli(),
	}
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO media (id, name, content_type, data, created_at)
		 VALUES (:id, :name, :content_type, :data, :created_at)`, row)
	if err != nil {
		return models.MediaRef{}, errors.Wrap(err, "insert media")
	}
	return models.MediaRef{Backend: models.BackendDesktop, ID: row.ID}, nil
}

// GetMedia reads an asset by id
func (s *SQLiteStore) GetMedia(ctx context.Context, id string) (models.Media, error) {
	if s == nil || s.db == nil {
		return models.Media{}, ErrUnavailable
	}
	var row mediaRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, name, content_type, data, created_at FROM media WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Media{}, ErrNotFound
		}
		return models.Media{}, errors.Wrap(err, "select media")
	}
	return models.Media{
		ID:          row.ID,
		Name:        row.Name,
		ContentType: row.ContentType,
		Data:        row.Data,
		CreatedAt:   time.UnixMilli(row.CreatedAt).UTC(),
	}, nil
}

// MediaURL returns the public path the HTTP API serves the asset from
func (s *SQLiteStore) MediaURL(id string) string {
	return MediaPath(id)
}
