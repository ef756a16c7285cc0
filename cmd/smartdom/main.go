// SmartDom Core - home automation management backend
//
// This is the main entry point for the SmartDom Core application. It wires
// together the SQLite store, the provisioning pipeline, the telemetry
// ingestion paths (HTTP and MQTT) and the REST/WebSocket API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/smartdom/smartdom-core/migrations"

	"github.com/smartdom/smartdom-core/internal/api"
	"github.com/smartdom/smartdom-core/internal/application"
	"github.com/smartdom/smartdom-core/internal/auth"
	"github.com/smartdom/smartdom-core/internal/catalog"
	"github.com/smartdom/smartdom-core/internal/control"
	"github.com/smartdom/smartdom-core/internal/home"
	"github.com/smartdom/smartdom-core/internal/infrastructure/config"
	"github.com/smartdom/smartdom-core/internal/infrastructure/database"
	"github.com/smartdom/smartdom-core/internal/infrastructure/influxdb"
	"github.com/smartdom/smartdom-core/internal/infrastructure/logging"
	"github.com/smartdom/smartdom-core/internal/infrastructure/mqtt"
	"github.com/smartdom/smartdom-core/internal/provision"
	"github.com/smartdom/smartdom-core/internal/telemetry"
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
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting SmartDom Core",
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
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
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

	// Repositories
	users := auth.NewUserRepository(db.DB)
	tokens := auth.NewTokenRepository(db.DB)
	apps := application.NewRepository(db.DB)
	rooms := home.NewRoomRepository(db.DB)
	sensors := home.NewSensorRepository(db.DB)
	modes := control.NewModeRepository(db.DB)

	// First boot: create the admin account if no users exist. The generated
	// password is logged once and must be changed immediately.
	if _, seedErr := auth.SeedAdmin(ctx, users, log.Logger); seedErr != nil {
		return fmt.Errorf("seeding admin account: %w", seedErr)
	}

	// Domain services
	cat := catalog.Default()
	provisioner := provision.NewEngine(db.DB, cat, log)
	telemetrySvc := telemetry.NewService(rooms, sensors, log)
	controlSvc := control.NewService(modes, rooms, sensors, log)

	// Connect to MQTT broker (optional). Without it, telemetry arrives only
	// over HTTP and toggles skip the device command publication.
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
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

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		qos := byte(cfg.MQTT.QoS)
		consumer := telemetry.NewConsumer(mqttClient, telemetrySvc, qos, log)
		if startErr := consumer.Start(); startErr != nil {
			return fmt.Errorf("starting telemetry consumer: %w", startErr)
		}
		log.Info("telemetry consumer started")

		controlSvc.SetCommandPublisher(mqttClient, qos)
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional). It receives the sensor reading history
	// and gas alerts.
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
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})

		telemetrySvc.SetHistory(influxClient)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Start the API server
	server, err := api.New(api.Deps{
		Config:      cfg.API,
		WS:          cfg.WebSocket,
		Security:    cfg.Security,
		Logger:      log,
		Catalog:     cat,
		Users:       users,
		Tokens:      tokens,
		Apps:        apps,
		Rooms:       rooms,
		Sensors:     sensors,
		Provisioner: provisioner,
		Telemetry:   telemetrySvc,
		Control:     controlSvc,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("SmartDom Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SMARTDOM_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SMARTDOM_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy. The MQTT
// and InfluxDB clients may be nil when those integrations are disabled.
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
