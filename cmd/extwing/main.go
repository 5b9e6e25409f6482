package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"extwing/internal/api"
	"extwing/pkg/config"
	"extwing/pkg/db"
	"extwing/pkg/db/maintenance"
	"extwing/pkg/logging"
	"extwing/pkg/probe"
	"extwing/pkg/store"
	"extwing/pkg/tracker"
	"extwing/pkg/version"
	"extwing/pkg/vessel"
)

const defaultConfigPath = "configs/extwing.yaml"

var initConfig = flag.Bool("init-config", false, "Generate default config file and exit")

func main() {
	flag.Parse()

	// A missing .env is fine
	_ = godotenv.Load()

	configPath := os.Getenv("EXTWING_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	// Handle --init-config flag
	if *initConfig {
		if err := config.GenerateDefault(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config file generated: %s\n", configPath)
		return
	}

	if err := run(context.Background(), configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("ExtWing Started", "version", version.Version)

	dbConn, st, err := initDB(appCfg)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	names := make([]string, len(appCfg.Actuators))
	for i, a := range appCfg.Actuators {
		names[i] = a.Name
	}
	if err := maintenance.Run(ctx, st, dbConn, names); err != nil {
		slog.Error("Maintenance tasks failed", "error", err)
	}

	prov := config.NewProvider(appCfg, st)

	simClient, err := initializeSimClient(ctx, prov)
	if err != nil {
		return fmt.Errorf("failed to initialize sim client: %w", err)
	}
	defer simClient.Close()

	// Startup Probes
	results := probe.Run(ctx, []probe.Probe{
		probe.Database(dbConn),
		probe.Telemetry(simClient),
	})
	if err := probe.AnalyzeResults(results); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	tr := tracker.New()
	v, err := vessel.FromConfig(ctx, prov, tr)
	if err != nil {
		return fmt.Errorf("failed to build vessel: %w", err)
	}
	v.SetEventStore(st)
	v.SetLogger(slog.Default())
	slog.Info("Vessel ready", "id", v.ID, "actuators", v.Names())

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := v.Run(ctx, simClient, prov.TelemetryLoop(ctx)); err != nil && ctx.Err() == nil {
			slog.Error("Vessel loop stopped", "error", err)
		}
	}()

	err = runServer(ctx, appCfg, prov, v, st)

	// The loop must stop before the store closes
	cancel()
	<-loopDone
	return err
}

func initDB(appCfg *config.Config) (*db.DB, store.Store, error) {
	dbConn, err := db.Init(appCfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return dbConn, store.NewSQLiteStore(dbConn), nil
}

func runServer(ctx context.Context, cfg *config.Config, prov config.Provider, v *vessel.Vessel, st store.Store) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	srv := api.NewServer(cfg.Server.Address,
		api.NewActuatorHandler(v),
		api.NewStatsHandler(v.Tracker()),
		api.NewEventsHandler(st),
		api.NewConfigHandler(st, prov),
		api.NewStreamHandler(v),
		shutdownFunc,
	)

	srv.Handler = loggingMiddleware(srv.Handler)
	return runServerLifecycle(ctx, srv, quit)
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.Trace(slog.Default(), "Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
