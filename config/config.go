package config

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/linesmerrill/school-board-api/logging"
	"github.com/linesmerrill/school-board-api/models"
)

// Config holds the project config values
type Config struct {
	Env             string        `env:"ENV" envDefault:"local"`
	Port            string        `env:"PORT" envDefault:"8080"`
	BaseURL         string        `env:"BASE_URL"`
	DataDir         string        `env:"BOARD_DATA_DIR"`
	Backend         string        `env:"BOARD_BACKEND"`
	Desktop         string        `env:"BOARD_DESKTOP"`
	URL             string        `env:"DB_URI"`
	DatabaseName    string        `env:"DB_NAME" envDefault:"school-board"`
	RedisAddr       string        `env:"REDIS_ADDR"`
	CacheTTL        time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	BackendTimeout  time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	CloudinaryURL   string        `env:"CLOUDINARY_URL"`
	UpdateFeedURL   string        `env:"UPDATE_FEED_URL"`
	AppVersion      string        `env:"APP_VERSION" envDefault:"v0.1.0"`
	BackupRetention int           `env:"BACKUP_RETENTION" envDefault:"7"`
}

// Load reads an optional .env file and parses the environment into a Config.
// The returned Config keeps every value that parsed even when err is not nil.
func Load() (*Config, error) {
	// a missing .env is the normal case outside local development
	_ = godotenv.Load()

	conf := &Config{}
	err := env.Parse(conf)
	if conf.DataDir == "" {
		conf.DataDir = defaultDataDir()
	}
	return conf, errors.Wrap(err, "parse environment")
}

// New sets up all config related services
func New() *Config {
	conf, err := Load()

	//setup zap logger and replace default logger
	logger, lerr := setLogger(conf.Env)
	if lerr != nil {
		logger = zap.NewExample()
	}
	_ = zap.ReplaceGlobals(logger)
	if err != nil {
		zap.S().Warnw("failed to parse environment, continuing with defaults", "error", err)
	}
	return conf
}

// Getenv lets callers read the environment through the loaded config first
func (c *Config) Getenv(key string) string {
	switch key {
	case "BOARD_BACKEND":
		return c.Backend
	case "BOARD_DESKTOP":
		return c.Desktop
	}
	return os.Getenv(key)
}

func setLogger(env string) (*zap.Logger, error) {
	return logging.ForEnv(env)
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "school-board")
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	if httpStatusCode >= http.StatusInternalServerError {
		zap.S().Errorw(message, "error", err, "status", httpStatusCode)
	} else {
		zap.S().Debugw(message, "error", err, "status", httpStatusCode)
	}
	resp := models.ErrorMessageResponse{Response: models.MessageError{Message: message}}
	if err != nil {
		resp.Response.Error = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	_ = json.NewEncoder(w).Encode(resp)
}
