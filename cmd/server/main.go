package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/serenolabs/sereno/internal/server/ai"
	"github.com/serenolabs/sereno/internal/server/auth"
	"github.com/serenolabs/sereno/internal/server/config"
	"github.com/serenolabs/sereno/internal/server/db"
	"github.com/serenolabs/sereno/internal/server/handlers"
	"github.com/serenolabs/sereno/internal/server/health"
	"github.com/serenolabs/sereno/internal/server/logger"
	"github.com/serenolabs/sereno/internal/server/repository/postgres"
)

var version = "dev"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "sereno-server",
		Short:   "Sereno personal-assistant backend",
		Version: version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Initialize(cfg.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // stderr sync failure at shutdown is harmless

	log := logger.Get()
	log.Info("starting sereno server", zap.String("version", version), zap.String("environment", cfg.Environment))

	if cfg.Auth.InsecureSecret() {
		log.Warn("signing secret is the insecure default; set SERENO_AUTH_SECRET in any real deployment")
	}

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	log.Info("database initialized")

	healthService := health.NewService(version)
	healthService.RegisterChecker("postgres", health.NewPostgresChecker(pool.Pool))

	router := handlers.NewRouter(handlers.Deps{
		Users:    postgres.NewUserRepository(pool.Pool),
		Scripts:  postgres.NewScriptRepository(pool.Pool),
		Settings: postgres.NewSettingRepository(pool.Pool),
		Events:   postgres.NewEventRepository(pool.Pool),
		Backups:  postgres.NewBackupRepository(pool.Pool),

		Tx:     postgres.NewTransactor(pool.Pool),
		Tokens: auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.TokenLifetime),
		Completer: ai.NewClient(ai.Config{
			APIKey:    cfg.AI.APIKey,
			BaseURL:   cfg.AI.BaseURL,
			Model:     cfg.AI.Model,
			Timeout:   cfg.AI.Timeout,
			MaxTokens: cfg.AI.MaxTokens,
		}),
		Health: healthService,

		Limits:     cfg.Limits,
		EnableCORS: cfg.HTTP.EnableCORS,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", cfg.HTTP.Addr))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown timeout, forcing close", zap.Error(err))
		return server.Close()
	}

	log.Info("server stopped gracefully")
	return nil
}
