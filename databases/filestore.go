package databases

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/linesmerrill/school-board-api/models"
)

const (
	boardFileName = "board.json"
	metaFileName  = "app-meta.json"
	mediaDirName  = "media"
)

// FileStore keeps the board as one JSON file and media as flat files in a directory
type FileStore struct {
	dir string
	now func() time.Time
}

// NewFileStore prepares the data directory layout under dir
func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("data directory is required")
	}
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(filepath.Join(dir, mediaDirName), 0o755); err != nil {
		return nil, errors.Wrap(err, "create data directory")
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

// Kind returns models.BackendServer
func (f *FileStore) Kind() models.BackendKind { return models.BackendServer }

// Dir returns the data directory
func (f *FileStore) Dir() string { return f.dir }

// Close is a no-op for files
func (f *FileStore) Close() error { return nil }

// LoadBoard reads board.json
func (f *FileStore) LoadBoard(ctx context.Context) (models.BoardData, error) {
	if err := ctx.Err(); err != nil {
		return models.BoardData{}, err
	}
	raw, err := os.ReadFile(filepath.Join(f.dir, boardFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return models.BoardData{}, ErrNotFound
		}
		return models.BoardData{}, errors.Wrap(ErrUnavailable, err.Error())
	}
	var board models.BoardData
	if err := json.Unmarshal(raw, &board); err != nil {
		return models.BoardData{}, errors.Wrap(ErrMalformed, err.Error())
	}
	return board, nil
}

// SaveBoard replaces board.json
func (f *FileStore) SaveBoard(ctx context.Context, board models.BoardData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(board, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal board")
	}
	return f.writeFile(filepath.Join(f.dir, boardFileName), raw)
}

// LoadMeta reads app-meta.json, an empty map when the file does not exist yet
func (f *FileStore) LoadMeta(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	meta := map[string]string{}
	raw, err := os.ReadFile(filepath.Join(f.dir, metaFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return meta, nil
		}
		return nil, errors.Wrap(err, "read app meta")
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, errors.Wrap(ErrMalformed, err.Error())
	}
	return meta, nil
}

// SaveMeta replaces app-meta.json
func (f *FileStore) SaveMeta(ctx context.Context, meta map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal app meta")
	}
	return f.writeFile(filepath.Join(f.dir, metaFileName), raw)
}

// PutMedia writes the asset under a name derived from the suggested name and content type.
// An existing file with the same name is never overwritten; a numeric suffix is added instead.
func (f *FileStore) PutMedia(ctx context.Context, media models.Media) (models.MediaRef, error) {
	if err := ctx.Err(); err != nil {
		return models.MediaRef{}, err
	}
	name := MediaFileName(media.Name, media.ContentType, f.now())
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		target := filepath.Join(f.dir, mediaDirName, name)
		file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if os.IsExist(err) {
			name = fmt.Sprintf("%s-%d%s", base, i, ext)
			continue
		}
		if err != nil {
			return models.MediaRef{}, errors.Wrap(err, "create media file")
		}
		if _, err := file.Write(media.Data); err != nil {
			_ = file.Close()
			_ = os.Remove(target)
			return models.MediaRef{}, errors.Wrap(err, "write media file")
		}
		if err := file.Close(); err != nil {
			return models.MediaRef{}, errors.Wrap(err, "close media file")
		}
		return models.MediaRef{Backend: models.BackendServer, ID: name}, nil
	}
}

// GetMedia reads a media file by name
func (f *FileStore) GetMedia(ctx context.Context, id string) (models.Media, error) {
	if err := ctx.Err(); err != nil {
		return models.Media{}, err
	}
	name := filepath.Base(filepath.Clean("/" + id))
	if name == "/" || name == "." || name != id {
		return models.Media{}, ErrNotFound
	}
	target := filepath.Join(f.dir, mediaDirName, name)
	raw, err := os.ReadFile(target)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Media{}, ErrNotFound
		}
		return models.Media{}, errors.Wrap(err, "read media file")
	}
	media := models.Media{
		ID:          name,
		Name:        name,
		ContentType: ContentTypeForName(name),
		Data:        raw,
	}
	if info, err := os.Stat(target); err == nil {
		media.CreatedAt = info.ModTime()
	}
	return media, nil
}

// MediaURL returns the public path of a media file
func (f *FileStore) MediaURL(id string) string {
	return MediaPath(id)
}

// writeFile replaces target atomically so readers never see a partial document
func (f *FileStore) writeFile(target string, raw []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*")
	if err != nil {
		return errors.Wrap(ErrUnavailable, err.Error())
	}
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return errors.Wrap(ErrUnavailable, err.Error())
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(ErrUnavailable, err.Error())
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(ErrUnavailable, err.Error())
	}
	return nil
}
