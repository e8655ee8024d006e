// Code generated manually. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package wire

import (
	"context"
	"fmt"
	"io"

	"github.com/sevigo/reposcribe/internal/app"
	"github.com/sevigo/reposcribe/internal/config"
	"github.com/sevigo/reposcribe/internal/db"
)

// InitializeApp creates and wires all application dependencies.
func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	loggerConfig := provideLoggerConfig(cfg)
	var logWriter io.Writer = provideLogWriter(cfg)
	slogLogger := provideSlogLogger(loggerConfig, logWriter)

	dbConfig := provideDBConfig(cfg)
	dbConn, dbCleanup, err := db.NewDatabase(dbConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	application, appCleanup, err := app.NewApp(ctx, cfg, dbConn, slogLogger)
	if err != nil {
		dbCleanup()
		return nil, nil, fmt.Errorf("failed to initialize app: %w", err)
	}

	cleanup := func() {
		appCleanup()
		dbCleanup()
	}

	return application, cleanup, nil
}
