// Package cli implements the tonkit command line wrapper.
package cli

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/openton/tonkit"
	"github.com/openton/tonkit/internal/core/config"
	"github.com/openton/tonkit/internal/infra/tonapi"
)

var (
	cfgPath string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "tonkit",
	Short: "TON account tracker",
	Long:  `tonkit follows a TON account: it syncs its event history, balances and jetton holdings and serves live updates.`,
	Run:   runWatch,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

func runWatch(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := setupLogging(cfg)

	kitCfg, err := kitConfig(cfg, logger)
	if err != nil {
		slog.Error("Invalid config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	kit, err := tonkit.New(ctx, kitCfg)
	cancel()
	if err != nil {
		slog.Error("Failed to initialize kit", "error", err)
		os.Exit(1)
	}

	kit.Start()
	go func() {
		if err := kit.Sync(context.Background()); err != nil {
			slog.Error("Initial sync failed", "error", err)
		}
	}()

	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler: promhttp.Handler(),
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Metrics server failed", "error", err)
		}
	}()

	slog.Info("tonkit started", "address", kit.Address(), "watch_only", kit.WatchOnly(), "config", cfgPath)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	slog.Info("Received signal, shutting down...", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	_ = metricsSrv.Shutdown(shutdownCtx)

	if err := kit.Close(); err != nil {
		slog.Error("Error during shutdown", "error", err)
		os.Exit(1)
	}
}

func setupLogging(cfg *config.AppConfig) *slog.Logger {
	level := slog.LevelInfo
	if isDebug || cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	}))
	slog.SetDefault(logger)
	return logger
}

func kitConfig(cfg *config.AppConfig, logger *slog.Logger) (tonkit.Config, error) {
	kitCfg := tonkit.Config{
		Network:     tonapi.Network(cfg.Network),
		BaseURL:     cfg.API.BaseURL,
		APIKey:      cfg.API.APIKey,
		APITimeout:  cfg.API.Timeout,
		Address:     cfg.Address,
		PostgresURL: cfg.Database.URL,
		Redis:       cfg.Redis,
		Logger:      logger,
	}
	if cfg.SecretKey != "" {
		key, err := hex.DecodeString(cfg.SecretKey)
		if err != nil {
			return tonkit.Config{}, fmt.Errorf("failed to decode secret key: %w", err)
		}
		kitCfg.SecretKey = key
	}
	return kitCfg, nil
}
