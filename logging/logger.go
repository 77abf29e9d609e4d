package logging

import "go.uber.org/zap"

// ForEnv builds the zap logger used in the given environment: development output
// for local runs, JSON at info level in production and the example logger otherwise.
func ForEnv(env string) (*zap.Logger, error) {
	switch env {
	case "local", "development":
		return zap.NewDevelopment()
	case "production":
		return zap.NewProduction()
	default:
		return zap.NewExample(), nil
	}
}
