package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/wolfman30/whatsapp-sender/internal/app/bootstrap"
	appconfig "github.com/wolfman30/whatsapp-sender/internal/config"
	"github.com/wolfman30/whatsapp-sender/pkg/logging"
)

func main() {
	// Load .env before reading configuration; a missing file is fine.
	envLoaded, envErr := loadDotEnv(os.Getenv("DOTENV_PATH"))

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting whatsapp sender API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"dotenv_loaded", envLoaded,
	)
	if envErr != nil {
		logger.Warn("failed to load .env file", "error", envErr)
	}

	srv := newServer(cfg, bootstrap.BuildHTTPHandler(cfg, logger, nil))

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func newServer(cfg *appconfig.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

// loadDotEnv loads path (or ".env") into the process environment without
// overriding variables that are already set. A missing default file is not
// an error; a missing explicit path is.
func loadDotEnv(path string) (bool, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return false, nil
		}
		return false, err
	}
	if err := godotenv.Load(path); err != nil {
		return false, err
	}
	return true, nil
}
