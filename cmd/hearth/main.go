// Hearth Core - Home Telemetry Federation Node
//
// Hearth polls a single air-treatment appliance over its on-board MQTT
// broker, persists environmental readings into TimescaleDB, and serves
// aggregated series to the rest of the home federation over an
// access-key-protected HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/hearth-core/migrations"

	"github.com/nerrad567/hearth-core/internal/api"
	"github.com/nerrad567/hearth-core/internal/collector"
	"github.com/nerrad567/hearth-core/internal/infrastructure/cache"
	"github.com/nerrad567/hearth-core/internal/infrastructure/caller"
	"github.com/nerrad567/hearth-core/internal/infrastructure/config"
	"github.com/nerrad567/hearth-core/internal/infrastructure/database"
	"github.com/nerrad567/hearth-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/hearth-core/internal/infrastructure/logging"
	"github.com/nerrad567/hearth-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/hearth-core/internal/infrastructure/store"
	"github.com/nerrad567/hearth-core/internal/journal"
	"github.com/nerrad567/hearth-core/internal/reading"
	"github.com/nerrad567/hearth-core/internal/retention"
	"github.com/nerrad567/hearth-core/internal/trace"
	"github.com/nerrad567/hearth-core/internal/upstream"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Hearth Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, cfg.Service.Name, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// One instance trace ID for the process lifetime.
	instanceID := trace.NewInstanceID()
	log.Info("instance trace identity assigned", "instance_trace_id", instanceID)

	// Open the poll journal
	db, err := database.Open(cfg.Journal)
	if err != nil {
		return fmt.Errorf("opening journal database: %w", err)
	}
	defer func() {
		log.Info("closing journal database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing journal database", "error", closeErr)
		}
	}()

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running journal migrations: %w", migrateErr)
	}
	log.Info("journal ready", "path", cfg.Journal.Path)

	recorder := journal.NewRecorder(db)

	// Open the time-series store
	tsStore, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("opening time-series store: %w", err)
	}
	defer func() {
		log.Info("closing time-series store")
		tsStore.Close()
	}()

	if schemaErr := tsStore.EnsureSchema(ctx); schemaErr != nil {
		return fmt.Errorf("preparing readings schema: %w", schemaErr)
	}
	log.Info("time-series store ready", "timescale", cfg.Store.Timescale)

	readings := reading.NewRepository(tsStore.Pool)

	// Shared outbound caller for sibling services
	httpCaller := caller.New(cfg.Caller, cfg.Security.ClientAccessKey, instanceID, log)

	// Fetch the device credential if it is not configured locally
	if cfg.Device.Password == "" && cfg.Upstream.SecretsURL != "" {
		secrets := upstream.NewSecretsClient(httpCaller, cfg.Upstream.SecretsURL)
		log.Info("fetching device credential", "secrets_url", cfg.Upstream.SecretsURL)

		creds, credErr := secrets.DeviceCredentials(ctx, cfg.Device.Username)
		if credErr != nil {
			return fmt.Errorf("fetching device credential: %w", credErr)
		}
		cfg.Device.Password = creds.Password
		log.Info("device credential fetched")
	}

	// Connect to the appliance
	device, err := mqtt.Connect(cfg.Device)
	if err != nil {
		return fmt.Errorf("connecting to device: %w", err)
	}
	defer func() {
		log.Info("disconnecting from device")
		if closeErr := device.Close(); closeErr != nil {
			log.Error("error closing device connection", "error", closeErr)
		}
	}()
	device.SetLogger(log)
	device.SetOnDisconnect(func(err error) {
		log.Warn("device connection lost", "error", err)
	})
	log.Info("device transport ready",
		"broker", fmt.Sprintf("%s:%d", cfg.Device.Host, cfg.Device.Port),
		"serial", cfg.Device.Username,
	)

	// Optional latest-reading cache
	var latestCache *cache.Cache
	latestCache, err = cache.Connect(cfg.Cache, cfg.CacheTTL())
	switch {
	case errors.Is(err, cache.ErrDisabled):
		log.Info("latest-reading cache disabled")
		latestCache = nil
	case err != nil:
		return fmt.Errorf("connecting to cache: %w", err)
	default:
		defer func() {
			log.Info("closing cache")
			if closeErr := latestCache.Close(); closeErr != nil {
				log.Error("error closing cache", "error", closeErr)
			}
		}()
		log.Info("latest-reading cache connected", "addr", cfg.Cache.Addr)
	}

	// Optional InfluxDB mirror
	var mirror *influxdb.Mirror
	mirror, err = influxdb.Connect(cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("influxdb mirror disabled")
		mirror = nil
	case err != nil:
		return fmt.Errorf("connecting to influxdb: %w", err)
	default:
		defer func() {
			log.Info("closing influxdb mirror")
			if closeErr := mirror.Close(); closeErr != nil {
				log.Error("error closing influxdb mirror", "error", closeErr)
			}
		}()
		mirror.SetOnError(func(err error) {
			log.Error("influxdb mirror write error", "error", err)
		})
		log.Info("influxdb mirror connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	}

	// Collector
	deps := collector.Deps{
		Transport: device,
		Store:     readings,
		Journal:   recorder,
		Logger:    log.With("component", "collector"),
	}
	if mirror != nil {
		deps.Mirror = mirror
	}
	if latestCache != nil {
		deps.Cache = latestCache
	}
	poller := collector.New(cfg, deps)

	collectorDone := make(chan error, 1)
	go func() {
		collectorDone <- poller.Run(ctx)
	}()

	// Retention janitor
	if cfg.Retention.Enabled {
		janitor := retention.New(cfg.Retention, readings, log.With("component", "retention"))
		if startErr := janitor.Start(); startErr != nil {
			return fmt.Errorf("starting retention janitor: %w", startErr)
		}
		defer janitor.Stop()
	} else {
		log.Info("retention janitor disabled")
	}

	// API server
	apiDeps := api.Deps{
		Config:     cfg.API,
		Security:   cfg.Security,
		Logger:     log.With("component", "api"),
		Readings:   readings,
		Journal:    recorder,
		Collector:  poller,
		InstanceID: instanceID,
		Version:    version,
	}
	if latestCache != nil {
		apiDeps.Cache = latestCache
	}

	server, err := api.New(apiDeps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, cleaning up")
	case err := <-collectorDone:
		if err != nil {
			return fmt.Errorf("collector stopped: %w", err)
		}
	}

	log.Info("Hearth Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses HEARTH_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HEARTH_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
