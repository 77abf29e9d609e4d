package board

import (
	"context"
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/linesmerrill/school-board-api/models"
)

// BackupVersion is the snapshot format written by Backup
const BackupVersion = 1

// ErrInvalidBackup is returned by Restore for input that is not a board snapshot
var ErrInvalidBackup = errors.New("invalid backup")

// Backup writes the current board as a snapshot
func (s *Store) Backup(ctx context.Context, w io.Writer) error {
	snapshot := models.BackupSnapshot{
		Version:   BackupVersion,
		CreatedAt: s.now().UTC(),
		Board:     s.Load(ctx),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(snapshot), "write backup")
}

// Restore replaces the whole board with the snapshot read from r
func (s *Store) Restore(ctx context.Context, r io.Reader) error {
	var snapshot models.BackupSnapshot
	if err := json.NewDecoder(r).Decode(&snapshot); err != nil {
		return errors.Wrap(ErrInvalidBackup, err.Error())
	}
	if snapshot.Version < 1 || snapshot.Version > BackupVersion {
		return errors.Wrapf(ErrInvalidBackup, "unsupported version %d", snapshot.Version)
	}
	return s.Save(ctx, models.FillDefaults(snapshot.Board))
}
