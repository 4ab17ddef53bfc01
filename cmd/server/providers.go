package main

import (
	"rps_backend/internal/app"
	"rps_backend/internal/config"
	"rps_backend/internal/platform/database"
	"rps_backend/internal/platform/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// application is what the injector hands to main.
type application struct {
	server *app.Server
	logger *zap.Logger
}

func newApplication(server *app.Server, logger *zap.Logger) *application {
	return &application{server: server, logger: logger}
}

func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	l, err := logger.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return l, func() { logger.Sync(l) }, nil
}

func provideDatabase(cfg *config.Config, l *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.NewGORM(cfg, l)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { database.CloseGORMDB(db, l) }, nil
}
