package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ecochain/ecochain/internal/api"
	"github.com/ecochain/ecochain/internal/syncer"
	"github.com/ecochain/ecochain/pkg/config"
	"github.com/ecochain/ecochain/pkg/connector/registry"
	"github.com/ecochain/ecochain/pkg/logger"
	"github.com/ecochain/ecochain/pkg/store"

	// Import all connectors to register them
	_ "github.com/ecochain/ecochain/pkg/connector/sources/api"
	_ "github.com/ecochain/ecochain/pkg/connector/sources/mongodb"
	_ "github.com/ecochain/ecochain/pkg/connector/sources/mssql"
	_ "github.com/ecochain/ecochain/pkg/connector/sources/mysql"
	_ "github.com/ecochain/ecochain/pkg/connector/sources/postgres"
	_ "github.com/ecochain/ecochain/pkg/connector/sources/snowflake"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "ecochain",
		Short: "EcoChain - carbon accounting backend",
		Long: `EcoChain is a carbon-accounting backend. It manages emission records,
bulk imports, and external data-source integrations with scheduled sync.`,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("EcoChain v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "connectors",
		Short: "List available data source connectors",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Available connectors:")
			for _, typ := range registry.Default().Types() {
				fmt.Printf("  - %s\n", typ)
			}
		},
	})

	var configFile string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configFile)
		},
	}
	serveCmd.Flags().StringVarP(&configFile, "config", "c", "", "path to a YAML config file")
	root.AddCommand(serveCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	logCfg := logger.Config{Level: cfg.LogLevel, Development: cfg.Development}
	if cfg.Development {
		logCfg.Encoding = "console"
	}
	if err := logger.Init(logCfg); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mem := store.NewMemory()
	if cfg.SeedDemoData {
		if err := mem.SeedDemo(ctx); err != nil {
			return err
		}
		log.Info("seeded demo users")
	}

	sy := syncer.New(mem, registry.Default(), syncer.Options{
		TestTimeout: cfg.TestTimeout,
		SyncTimeout: cfg.SyncTimeout,
		SyncLease:   cfg.SyncLease,
	})

	if cfg.SchedulerInterval > 0 {
		go syncer.NewScheduler(sy, cfg.SchedulerInterval).Run(ctx)
	}

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.NewServer(mem, sy).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", cfg.ListenAddr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
