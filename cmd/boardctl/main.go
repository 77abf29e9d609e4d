package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/linesmerrill/school-board-api/board"
	"github.com/linesmerrill/school-board-api/config"
	"github.com/linesmerrill/school-board-api/databases"
)

func main() {
	conf := config.New()
	defer zap.S().Sync() // nolint: errcheck

	backend, err := databases.Open(context.Background(), conf)
	if err != nil {
		zap.S().Fatalw("failed to open storage backend", "error", err)
	}
	store := board.NewStore(backend, board.Options{
		CacheTTL:       conf.CacheTTL,
		BackendTimeout: conf.BackendTimeout,
	})

	cli := commandLine{store: store, out: os.Stdout}
	err = cli.run(os.Args)
	_ = store.Close()
	if err != nil {
		if err != errHelp {
			zap.S().Errorw("boardctl failed", "error", err)
		}
		os.Exit(1)
	}
}
