package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/linesmerrill/school-board-api/api/handlers"
	"github.com/linesmerrill/school-board-api/api/scheduler"
	"github.com/linesmerrill/school-board-api/config"
)

func main() {
	a := handlers.App{}
	a.Config = *config.New()
	defer zap.S().Sync() // nolint: errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Initialize(ctx); err != nil { //initialize storage backend and router
		zap.S().Fatalw("failed to initialize", "error", err)
	}

	jobs := scheduler.NewScheduler(a.Store, a.Config.DataDir, a.Config.BackupRetention)
	jobs.Start()

	srv := &http.Server{
		Addr:              ":" + a.Config.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zap.S().Infow("school-board-api is up and running",
			"port", a.Config.Port,
			"url", a.Config.BaseURL,
			"backend", a.Store.Kind(),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.S().Fatalw("server stopped", "error", err)
		}
	}()

	<-ctx.Done()
	zap.S().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.S().Errorw("failed to shut down the server", "error", err)
	}
	jobs.Stop()
	if err := a.Close(); err != nil {
		zap.S().Errorw("failed to close the app", "error", err)
	}
}
