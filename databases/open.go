package databases

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/linesmerrill/school-board-api/config"
	"github.com/linesmerrill/school-board-api/models"
)

// File names of the embedded stores inside the data directory
const (
	SQLiteFileName = "board.sqlite"
	BoltFileName   = "board.db"
)

// Open opens the backend family selected by the config
func Open(ctx context.Context, conf *config.Config) (BoardBackend, error) {
	switch DetectKind(conf.Getenv) {
	case models.BackendDesktop:
		return OpenSQLiteStore(ctx, filepath.Join(conf.DataDir, SQLiteFileName))
	case models.BackendLocal:
		return OpenBoltStore(filepath.Join(conf.DataDir, BoltFileName))
	case models.BackendMongo:
		client, err := NewClient(conf)
		if err != nil {
			return nil, errors.Wrap(err, "create mongo client")
		}
		cctx, cancel := context.WithTimeout(ctx, conf.BackendTimeout)
		defer cancel()
		if err := client.Connect(cctx); err != nil {
			return nil, errors.Wrap(err, "connect to mongo")
		}
		return NewMongoStore(NewDatabase(conf, client), client), nil
	default:
		return NewFileStore(conf.DataDir)
	}
}
