package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/todo-service/internal/config"
	"github.com/Dan9191/todo-service/internal/handler"
	"github.com/Dan9191/todo-service/internal/repository"
	"github.com/Dan9191/todo-service/internal/scheduler"
	"github.com/Dan9191/todo-service/internal/service"
	"github.com/Dan9191/todo-service/internal/utils"
	"github.com/Dan9191/todo-service/internal/utils/email"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Initialize storage
	store, err := openStore(cfg)
	if err != nil {
		logger.Fatalf("Failed to open %s store: %v", cfg.StorageDriver, err)
	}
	defer store.Close()
	logger.Infof("Using %s store", cfg.StorageDriver)

	// Initialize layers
	var authOpts []service.AuthOption
	if cfg.GenericLoginErrors {
		authOpts = append(authOpts, service.WithGenericLoginErrors())
	}
	auth := service.NewAuthService(store, utils.NewBcryptHasher(cfg.BcryptCost), utils.NewJWTSigner(cfg.JWTSecret, cfg.TokenTTL), logger, authOpts...)
	todos := service.NewTodoService(store, logger)
	h := handler.NewHandler(auth, todos, logger)

	// Due-date reminders
	if cfg.RemindersEnabled() {
		reminder := scheduler.NewReminder(store, store, email.NewSender(cfg, logger), logger)
		if err := reminder.Start(cfg.ReminderSchedule); err != nil {
			logger.Fatalf("Failed to start reminders: %v", err)
		}
		defer reminder.Stop()
	}

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler.NewRouter(h, auth, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Shutdown failed: %v", err)
	}
}

func openStore(cfg *config.Config) (repository.Store, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return repository.NewMemoryStore(), nil
	case config.DriverFile:
		return repository.OpenFileStore(cfg.DataFile)
	case config.DriverPostgres, config.DriverSQLite:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return repository.OpenSQLStore(ctx, cfg.StorageDriver, cfg.DBConn)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
