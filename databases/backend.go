package databases

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/linesmerrill/school-board-api/models"
)

var (
	// ErrNotFound is returned when no board document or media item is stored
	ErrNotFound = errors.New("not found")
	// ErrMalformed is returned when the stored document cannot be decoded
	ErrMalformed = errors.New("malformed stored document")
	// ErrUnavailable is returned when a backend is not configured or already closed
	ErrUnavailable = errors.New("backend unavailable")
)

// BoardBackend persists the board document and the app metadata for one backend family
type BoardBackend interface {
	Kind() models.BackendKind
	LoadBoard(ctx context.Context) (models.BoardData, error)
	SaveBoard(ctx context.Context, board models.BoardData) error
	LoadMeta(ctx context.Context) (map[string]string, error)
	SaveMeta(ctx context.Context, meta map[string]string) error
	Close() error
}

// MediaStore persists binary assets and mints references for them
type MediaStore interface {
	Kind() models.BackendKind
	PutMedia(ctx context.Context, media models.Media) (models.MediaRef, error)
	GetMedia(ctx context.Context, id string) (models.Media, error)
	MediaURL(id string) string
}

// DetectKind decides which backend family is active. An explicit BOARD_BACKEND wins,
// then the desktop shell marker, and anything else is the server path.
func DetectKind(getenv func(string) string) models.BackendKind {
	if explicit := models.BackendKind(strings.ToLower(strings.TrimSpace(getenv("BOARD_BACKEND")))); explicit.Valid() && explicit != models.BackendCloudinary {
		return explicit
	}
	if strings.TrimSpace(getenv("BOARD_DESKTOP")) != "" {
		return models.BackendDesktop
	}
	return models.BackendServer
}

// MediaPath is the public path media are served from by the HTTP API
func MediaPath(name string) string {
	return "/media/" + name
}
