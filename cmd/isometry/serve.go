package isometry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/isometry-app/isometry"
	"github.com/isometry-app/isometry/pkg/config"
	"github.com/isometry-app/isometry/pkg/logger"
	"github.com/isometry-app/isometry/pkg/server"
	"github.com/isometry-app/isometry/pkg/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the isometry HTTP server",
	Long: `Start the isometry HTTP server to provide REST API access to the knowledge graph.

The server provides endpoints for:
- Node lifecycle (create, read, update, delete, duplicate)
- LATCH filter queries and presets
- Graph neighborhood lookups
- Statistics and health checks

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServe,
}

var (
	serveHost string
	servePort int
	serveMode string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "localhost", "Server host")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Server port")
	serveCmd.Flags().StringVar(&serveMode, "mode", "debug", "Server mode (debug, release, test)")
	serveCmd.Flags().String("presets-dir", "", "Badger directory for stored presets")
	serveCmd.Flags().String("presets-file", "", "YAML file of presets to load at startup")
	serveCmd.Flags().String("telemetry-parquet-path", "", "Directory for warning/error telemetry")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}

	log, flush, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer flush()
	slog.SetDefault(log)

	client, err := isometry.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open knowledge graph: %w", err)
	}
	defer client.Close()

	srv := server.New(cfg, client)
	srv.Setup()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("server listening", "host", cfg.Server.Host, "port", cfg.Server.Port)
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		log.Info("shutting down", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil
	}
}

// loadConfig loads configuration and applies command-line flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serveHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serveMode
	}
	if v, _ := rootCmd.PersistentFlags().GetString("db"); v != "" {
		cfg.Database.Path = v
	}
	if cmd.Flags().Changed("presets-dir") {
		cfg.Presets.Dir, _ = cmd.Flags().GetString("presets-dir")
	}
	if cmd.Flags().Changed("presets-file") {
		cfg.Presets.SeedFile, _ = cmd.Flags().GetString("presets-file")
	}
	if cmd.Flags().Changed("telemetry-parquet-path") {
		cfg.Telemetry.ParquetPath, _ = cmd.Flags().GetString("telemetry-parquet-path")
	}
	return cfg, nil
}

// setupLogging builds the colored stderr logger, layered with Parquet
// telemetry when a path is configured. The returned flush func drains any
// buffered telemetry.
func setupLogging(cfg *config.Config) (*slog.Logger, func(), error) {
	level := logger.ParseLevel(cfg.Log.Level)
	colorHandler := logger.NewColorHandler(os.Stderr, &slog.HandlerOptions{Level: level})

	if cfg.Telemetry.ParquetPath == "" {
		return slog.New(colorHandler), func() {}, nil
	}

	parquetHandler, err := telemetry.NewParquetHandler(colorHandler, cfg.Telemetry.ParquetPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	flush := func() {
		if err := parquetHandler.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "telemetry flush failed: %v\n", err)
		}
	}
	return slog.New(parquetHandler), flush, nil
}
