// AssetFlow Core - device allocation lifecycle service
//
// This is the main entry point. It loads configuration, opens the database,
// wires the registry, directory, request and allocation managers behind the
// lifecycle coordinator, and serves the REST API until interrupted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/assetflow-core/migrations"

	"github.com/nerrad567/assetflow-core/internal/allocation"
	"github.com/nerrad567/assetflow-core/internal/api"
	"github.com/nerrad567/assetflow-core/internal/audit"
	"github.com/nerrad567/assetflow-core/internal/device"
	"github.com/nerrad567/assetflow-core/internal/directory"
	"github.com/nerrad567/assetflow-core/internal/infrastructure/config"
	"github.com/nerrad567/assetflow-core/internal/infrastructure/database"
	"github.com/nerrad567/assetflow-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/assetflow-core/internal/infrastructure/logging"
	"github.com/nerrad567/assetflow-core/internal/infrastructure/metrics"
	"github.com/nerrad567/assetflow-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/assetflow-core/internal/infrastructure/redislock"
	"github.com/nerrad567/assetflow-core/internal/lifecycle"
	"github.com/nerrad567/assetflow-core/internal/reporting"
	"github.com/nerrad567/assetflow-core/internal/request"
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

// Default .env file, loaded before the configuration when present.
const defaultEnvFile = ".env"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// It returns nil on clean shutdown.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting AssetFlow Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	if err := config.LoadEnvFile(defaultEnvFile); err != nil {
		return fmt.Errorf("loading %s: %w", defaultEnvFile, err)
	}

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version).With("instance", cfg.Instance.ID)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Core components
	devices := device.NewRegistry(device.NewSQLiteRepository(db.DB))
	devices.SetLogger(log)

	dir := directory.New(
		directory.NewSQLiteDepartmentRepository(db.DB),
		directory.NewSQLiteEmployeeRepository(db.DB),
	)
	dir.SetLogger(log)

	requests := request.NewManager(request.NewSQLiteRepository(db.DB), devices, dir)
	requests.SetLogger(log)

	allocations := allocation.NewManager(allocation.NewSQLiteRepository(db.DB), requests)
	allocations.SetLogger(log)

	trail := audit.NewTrail(audit.NewSQLiteRepository(db.DB))

	// Per-device lock
	locker, closeLocker, err := newLocker(cfg.Locking, log)
	if err != nil {
		return err
	}
	defer closeLocker()

	// Prometheus metrics (optional)
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		log.Info("metrics enabled", "path", cfg.Metrics.Path)
	}

	// MQTT event bus (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		mqttClient.SetLogger(log)
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	// InfluxDB telemetry (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	coordinator, err := lifecycle.New(lifecycle.Deps{
		Devices:     devices,
		Requests:    requests,
		Allocations: allocations,
		Locker:      locker,
		LockTimeout: cfg.Locking.Timeout,
		Logger:      log,
		Notifiers:   lifecycleNotifiers(trail, mqttClient, influxClient, m),
	})
	if err != nil {
		return fmt.Errorf("creating lifecycle coordinator: %w", err)
	}

	reporter, err := reporting.NewReporter(reporting.Sources{
		Devices:     devices,
		Requests:    requests,
		Allocations: allocations,
		Directory:   dir,
	})
	if err != nil {
		return fmt.Errorf("creating reporter: %w", err)
	}

	if cfg.Reporting.Enabled {
		scheduler, schedErr := reporting.NewScheduler(reporter, cfg.Reporting.Schedule,
			snapshotSinks(cfg.Instance.ID, influxClient, m)...)
		if schedErr != nil {
			return fmt.Errorf("creating report scheduler: %w", schedErr)
		}
		scheduler.SetLogger(log)
		scheduler.Start(ctx)
		defer func() {
			log.Info("stopping report scheduler")
			<-scheduler.Stop().Done()
		}()
		log.Info("report scheduler started", "schedule", cfg.Reporting.Schedule)
	}

	server, err := api.New(api.Deps{
		Config:      cfg.API,
		Security:    cfg.Security,
		Logger:      log,
		Devices:     devices,
		Directory:   dir,
		Requests:    requests,
		Allocations: allocations,
		Coordinator: coordinator,
		Audit:       trail,
		Reporter:    reporter,
		Metrics:     m,
		MetricsPath: cfg.Metrics.Path,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if cfg.Security.JWT.Secret == "" {
		log.Warn("no JWT secret configured; actors are taken from X-Actor-ID headers")
	}

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order: API server, scheduler,
	// InfluxDB, MQTT, lock backend, database.
	log.Info("AssetFlow Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses ASSETFLOW_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("ASSETFLOW_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// newLocker returns the per-device lock for the configured backend and a
// function releasing its resources. The memory backend returns a nil Locker,
// which the coordinator replaces with its in-process KeyedLocker.
func newLocker(cfg config.LockingConfig, log *logging.Logger) (lifecycle.Locker, func(), error) {
	if cfg.Backend != config.LockingRedis {
		log.Info("device locking in process")
		return nil, func() {}, nil
	}

	client, err := redislock.Connect(cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to Redis: %w", err)
	}
	locker := redislock.New(client, cfg.Redis)
	locker.SetLogger(log)
	log.Info("device locking via Redis", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)

	return locker, func() {
		log.Info("closing Redis connection")
		if closeErr := client.Close(); closeErr != nil {
			log.Error("error closing Redis", "error", closeErr)
		}
	}, nil
}

// healthCheck verifies all infrastructure connections are healthy.
// The MQTT and InfluxDB clients may be nil when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
