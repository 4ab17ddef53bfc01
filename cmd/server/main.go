// File: cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"log" // Standard log for critical startup/shutdown messages before/after zap is active
	"os"
	"os/signal"
	"syscall"

	"rps_backend/internal/config"
	"rps_backend/internal/platform/crypto"
	"rps_backend/internal/platform/database"
	"rps_backend/internal/platform/logger"
	"rps_backend/internal/user"

	"go.uber.org/zap"
)

func main() {
	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	// keygen runs before configuration is loaded; it produces the keys Load requires.
	if command == "keygen" {
		if err := printSessionKeys(); err != nil {
			log.Fatalf("FATAL: Failed to generate session keys: %v", err)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	switch command {
	case "serve":
		startServer(cfg)
	case "migrate":
		if err := runMigrations(cfg); err != nil {
			log.Fatalf("FATAL: Migration failed: %v", err)
		}
	default:
		log.Fatalf("FATAL: Unknown command %q (expected serve, migrate or keygen)", command)
	}
}

func printSessionKeys() error {
	keys, err := crypto.GenerateSessionKeys()
	if err != nil {
		return err
	}
	fmt.Printf("SESSION_HASH_KEY=%s\nSESSION_BLOCK_KEY=%s\n", keys.HashKey, keys.BlockKey)
	return nil
}

// runMigrations creates or updates the tables and exits.
func runMigrations(cfg *config.Config) error {
	appLogger, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync(appLogger)

	db, err := database.NewGORM(cfg, appLogger)
	if err != nil {
		return err
	}
	defer database.CloseGORMDB(db, appLogger)

	if err := database.AutoMigrate(db, &user.User{}); err != nil {
		return err
	}
	appLogger.Info("Database migrations applied")
	return nil
}

func startServer(cfg *config.Config) {
	application, cleanup, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}
	defer cleanup()

	errCh := make(chan error, 1)
	go func() {
		errCh <- application.server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		application.logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			application.logger.Error("Server failed", zap.Error(err))
		}
		return
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := application.server.Shutdown(shutdownCtx); err != nil {
		application.logger.Error("Server forced to shutdown", zap.Error(err))
	} else {
		application.logger.Info("Server shutdown complete")
	}
}
