package wire

import (
	"io"
	"log/slog"
	"os"

	"github.com/google/wire"

	"github.com/sevigo/reposcribe/internal/app"
	"github.com/sevigo/reposcribe/internal/config"
	"github.com/sevigo/reposcribe/internal/db"
	"github.com/sevigo/reposcribe/internal/logger"
)

// AppSet is the full provider set for the documentation pipeline process.
var AppSet = wire.NewSet(
	app.NewApp,
	config.LoadConfig,
	db.NewDatabase,
	provideDBConfig,
	provideLoggerConfig,
	provideLogWriter,
	provideSlogLogger,
)

func provideDBConfig(cfg *config.Config) *config.DBConfig {
	return &cfg.Database
}

func provideLoggerConfig(cfg *config.Config) logger.Config {
	return cfg.Logging
}

func provideLogWriter(cfg *config.Config) io.Writer {
	switch cfg.Logging.Output {
	case "stderr":
		return os.Stderr
	case "file":
		f, err := os.OpenFile("reposcribe.log", os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
		if err != nil {
			return os.Stdout
		}
		return f
	default:
		return os.Stdout
	}
}

func provideSlogLogger(loggerConfig logger.Config, writer io.Writer) *slog.Logger {
	l := logger.NewLogger(loggerConfig, writer)
	slog.SetDefault(l)
	return l
}
