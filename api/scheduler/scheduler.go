package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/linesmerrill/school-board-api/board"
)

const (
	// backupSpec runs the nightly backup at 3 AM UTC
	backupSpec = "0 3 * * *"
	// warmSpec refreshes the cached board every five minutes
	warmSpec = "*/5 * * * *"

	backupPrefix = "board-"
	backupLayout = "20060102-150405"

	// LastBackupKey is the app meta key holding the path of the newest backup
	LastBackupKey = "lastBackup"
)

// Scheduler handles periodic background jobs for the board
type Scheduler struct {
	cron      *cron.Cron
	store     *board.Store
	backupDir string
	retention int
	now       func() time.Time
}

// NewScheduler creates a new scheduler writing backups under dataDir/backups and keeping
// the newest retention files
func NewScheduler(store *board.Store, dataDir string, retention int) *Scheduler {
	if retention < 1 {
		retention = 1
	}
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		store:     store,
		backupDir: filepath.Join(dataDir, "backups"),
		retention: retention,
		now:       time.Now,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	_, err := s.cron.AddFunc(backupSpec, s.backupJob)
	if err != nil {
		zap.S().Errorw("failed to register backup job", "error", err)
	}

	_, err = s.cron.AddFunc(warmSpec, s.warmCache)
	if err != nil {
		zap.S().Errorw("failed to register cache warm job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("board scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("board scheduler stopped")
}

func (s *Scheduler) backupJob() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	path, err := s.BackupNow(ctx)
	if err != nil {
		zap.S().Errorw("nightly backup failed", "error", err)
		return
	}
	zap.S().Infow("nightly backup written", "path", path)
}

// BackupNow writes a snapshot file, records it in the app meta and prunes old snapshots
func (s *Scheduler) BackupNow(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return "", errors.Wrap(err, "create backup directory")
	}
	path := filepath.Join(s.backupDir, backupPrefix+s.now().UTC().Format(backupLayout)+".json")

	file, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "create backup file")
	}
	if err := s.store.Backup(ctx, file); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", errors.Wrap(err, "close backup file")
	}

	if err := s.store.SetAppMeta(ctx, LastBackupKey, path); err != nil {
		zap.S().Warnw("failed to record last backup", "error", err)
	}
	if err := s.prune(); err != nil {
		zap.S().Warnw("failed to prune old backups", "error", err)
	}
	return path, nil
}

// Backups lists the snapshot files, oldest first
func (s *Scheduler) Backups() ([]string, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read backup directory")
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), backupPrefix) && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, filepath.Join(s.backupDir, e.Name()))
		}
	}
	// timestamps in the names sort chronologically
	sort.Strings(names)
	return names, nil
}

func (s *Scheduler) prune() error {
	names, err := s.Backups()
	if err != nil {
		return err
	}
	for len(names) > s.retention {
		if err := os.Remove(names[0]); err != nil {
			return errors.Wrapf(err, "remove %s", names[0])
		}
		names = names[1:]
	}
	return nil
}

// warmCache reloads the board from the backend so displays polling between saves are
// served from a fresh cache
func (s *Scheduler) warmCache() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	s.store.Refresh(ctx)
	zap.S().Debug("board cache warmed")
}
