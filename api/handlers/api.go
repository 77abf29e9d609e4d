package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/linesmerrill/school-board-api/api"
	"github.com/linesmerrill/school-board-api/board"
	"github.com/linesmerrill/school-board-api/config"
	"github.com/linesmerrill/school-board-api/databases"
	"github.com/linesmerrill/school-board-api/models"
	"github.com/linesmerrill/school-board-api/updates"
)

// App stores the router and the board store, so it can be reused
type App struct {
	Router  *mux.Router
	Config  config.Config
	Store   *board.Store
	Updates *updates.Checker

	bridge  *Bridge
	sockets *SocketServer
	closers []io.Closer
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	if a.Updates == nil {
		a.Updates = updates.NewChecker(a.Config.UpdateFeedURL, a.Config.AppVersion)
	}
	if a.bridge == nil {
		a.bridge = NewBridge(a.Store, a.Updates)
	}
	notifiers := board.Notifiers{a.bridge}
	if a.sockets != nil {
		notifiers = append(notifiers, a.sockets)
	}
	a.Store.SetNotifier(notifiers)

	r := mux.NewRouter()
	r.Use(api.MetricsMiddleware)
	r.Use(api.TimeoutMiddleware(a.Config.RequestTimeout, "/bridge", "/socket.io/"))

	b := Board{Store: a.Store}
	m := Media{Store: a.Store}
	u := Update{Checker: a.Updates, Notifier: notifiers}

	// healthchex
	r.HandleFunc("/health", a.healthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())

	apiRouter := r.PathPrefix("/api").Subrouter()

	apiRouter.HandleFunc("/board", b.BoardHandler).Methods("GET")
	apiRouter.HandleFunc("/board", b.SaveBoardHandler).Methods("PUT")
	apiRouter.HandleFunc("/board/{section}", b.SectionHandler).Methods("PUT")
	apiRouter.HandleFunc("/display", b.DisplayHandler).Methods("GET")
	apiRouter.HandleFunc("/backup", b.BackupHandler).Methods("GET")
	apiRouter.HandleFunc("/restore", b.RestoreHandler).Methods("POST")
	apiRouter.HandleFunc("/meta", b.MetaHandler).Methods("GET")
	apiRouter.HandleFunc("/meta", b.SetMetaHandler).Methods("PUT")

	apiRouter.HandleFunc("/upload", m.UploadHandler).Methods("POST")
	apiRouter.HandleFunc("/media/resolve", m.ResolveHandler).Methods("GET")

	apiRouter.HandleFunc("/update", u.CheckHandler).Methods("GET")

	r.HandleFunc("/media/{filename}", m.MediaHandler).Methods("GET")
	r.Handle("/bridge", a.bridge)
	if a.sockets != nil {
		r.PathPrefix("/socket.io/").Handler(a.sockets)
	}
	return r
}

// Initialize is invoked by main to open the storage backend and create a router
func (a *App) Initialize(ctx context.Context) error {
	backend, err := databases.Open(ctx, &a.Config)
	if err != nil {
		zap.S().Errorw("failed to open storage backend", "error", err)
		return err
	}
	zap.S().Infow("school-board-api has opened its storage backend", "backend", backend.Kind())

	opts := board.Options{
		CacheTTL:       a.Config.CacheTTL,
		BackendTimeout: a.Config.BackendTimeout,
	}
	if a.Config.RedisAddr != "" {
		cache, err := databases.NewRedisCache(ctx, a.Config.RedisAddr)
		if err != nil {
			zap.S().Warnw("redis unavailable, using the in-memory cache", "addr", a.Config.RedisAddr, "error", err)
		} else {
			opts.Cache = cache
			a.closers = append(a.closers, cache)
		}
	}
	if a.Config.CloudinaryURL != "" {
		uploads, err := databases.NewCloudinaryStore(a.Config.CloudinaryURL)
		if err != nil {
			_ = backend.Close()
			return errors.Wrap(err, "configure cloudinary")
		}
		opts.Uploads = uploads
	}

	a.Store = board.NewStore(backend, opts)
	a.closers = append(a.closers, a.Store)
	a.Updates = updates.NewChecker(a.Config.UpdateFeedURL, a.Config.AppVersion)

	a.sockets = NewSocketServer(a.Store, a.Updates)
	a.closers = append(a.closers, a.sockets)

	// initialize api router
	a.initializeRoutes()
	return nil
}

// Close releases the socket server, the cache and the storage backend
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func (a *App) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive:   true,
		Backend: string(a.Store.Kind()),
	})
	_, _ = io.WriteString(w, string(b))
}
