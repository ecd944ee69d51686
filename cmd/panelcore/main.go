// panel-core - LCD front panel controller
//
// This is the main entry point for the panel-core daemon. panel-core
// owns the chassis front panel of a managed server platform:
//   - Reconciles platform signals (presence, power, boot progress,
//     policies, event log) into one authoritative panel state
//   - Derives the operating mode from the policy triple
//   - Drives the panel hardware through a single serialised action queue
//
// For architecture details, see: docs/architecture.md
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/panelworks/panel-core/migrations"

	"github.com/panelworks/panel-core/internal/api"
	"github.com/panelworks/panel-core/internal/executor"
	"github.com/panelworks/panel-core/internal/handler"
	"github.com/panelworks/panel-core/internal/infrastructure/config"
	"github.com/panelworks/panel-core/internal/infrastructure/database"
	"github.com/panelworks/panel-core/internal/infrastructure/influxdb"
	"github.com/panelworks/panel-core/internal/infrastructure/logging"
	"github.com/panelworks/panel-core/internal/infrastructure/mqtt"
	"github.com/panelworks/panel-core/internal/monitor"
	"github.com/panelworks/panel-core/internal/pel"
	"github.com/panelworks/panel-core/internal/state"
	"github.com/panelworks/panel-core/internal/transport"
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

// pelPruneInterval is how often the event log is pruned to its cap.
const pelPruneInterval = time.Hour

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
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting panel-core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
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

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Event log storage
	pelRepo := pel.NewSQLiteRepository(db.DB)

	// Build the operating-mode table and state manager
	modeTable, err := state.NewModeTable(cfg.Modes)
	if err != nil {
		return fmt.Errorf("building mode table: %w", err)
	}
	manager := state.NewManager(modeTable)
	manager.SetLogger(log)
	log.Info("state manager initialised", "mode", manager.OperatingMode())

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
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

	// Set up MQTT logging callbacks
	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB (optional)
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
	} else {
		log.Info("InfluxDB disabled")
	}

	// Panel hardware link
	panelLink, err := transport.NewPanelLink(cfg.Panel)
	if err != nil {
		return fmt.Errorf("creating panel link: %w", err)
	}
	panelLink.SetLogger(log)
	log.Info("panel link configured", "endpoint", cfg.Panel.Endpoint)

	// Action executor: single consumer, drops on panel absence.
	// The telemetry recorder tolerates a nil InfluxDB client.
	exec := executor.New(panelLink, manager, cfg.Panel.QueueSize)
	exec.SetLogger(log)
	exec.SetRecorder(influxdb.NewRecorder(influxClient, manager))
	exec.Start(ctx)
	defer func() {
		log.Info("stopping executor")
		exec.Stop()
	}()
	log.Info("executor started", "queue_size", cfg.Panel.QueueSize)

	qos := byte(cfg.MQTT.QoS)

	// Bus-facing monitors. Order matters only for readability; each owns
	// its own topics and state fields.
	presenceMon := monitor.NewPresenceMonitor(mqttClient, manager, exec, cfg.Panel.DefaultDisplay, qos)
	presenceMon.SetLogger(log)
	if startErr := presenceMon.Start(); startErr != nil {
		return fmt.Errorf("starting presence monitor: %w", startErr)
	}

	statusMon := monitor.NewSystemStatusMonitor(mqttClient, manager, qos)
	statusMon.SetLogger(log)
	if startErr := statusMon.Start(); startErr != nil {
		return fmt.Errorf("starting system status monitor: %w", startErr)
	}

	pelMon := monitor.NewPELMonitor(mqttClient, manager, exec, pelRepo, cfg.PEL, cfg.Panel.DisplayColumns, qos)
	pelMon.SetLogger(log)
	if startErr := pelMon.Start(); startErr != nil {
		return fmt.Errorf("starting event log monitor: %w", startErr)
	}

	bootReactor := monitor.NewBootProgressReactor(manager, exec, cfg.Panel.DefaultDisplay)
	bootReactor.SetLogger(log)

	publisher := monitor.NewStatePublisher(manager, mqttClient, qos)
	publisher.SetLogger(log)

	// Command handler (bus command topics)
	cmdHandler := handler.New(mqttClient, manager, exec, cfg.Panel, qos)
	cmdHandler.SetLogger(log)
	if startErr := cmdHandler.Start(); startErr != nil {
		return fmt.Errorf("starting command handler: %w", startErr)
	}
	log.Info("monitors and command handler started")

	// Local HTTP API
	apiServer, err := api.New(api.Deps{
		Config:  cfg.API,
		WS:      cfg.WebSocket,
		Panel:   cfg.Panel,
		Logger:  log,
		Manager: manager,
		Actions: exec,
		PELRepo: pelRepo,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Periodic event log pruning
	if cfg.PEL.Enabled && cfg.PEL.MaxEntries > 0 {
		go prunePELLoop(ctx, pelRepo, cfg.PEL.MaxEntries, log)
	}

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. Executor (drains the action queue)
	// 3. InfluxDB (if enabled)
	// 4. MQTT
	// 5. Database

	log.Info("panel-core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses PANELCORE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("PANELCORE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	// Panel link health is implicit: every action dials the panel, and
	// unreachable sends are logged and recorded without failing startup.

	return nil
}

// prunePELLoop trims the event log to its configured cap once at startup
// and then once per interval until the context is cancelled.
func prunePELLoop(ctx context.Context, repo pel.Repository, keep int, log *logging.Logger) {
	prune := func() {
		pruneCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		removed, err := repo.Prune(pruneCtx, keep)
		if err != nil {
			log.Error("event log prune failed", "error", err)
			return
		}
		if removed > 0 {
			log.Info("event log pruned", "removed", removed, "keep", keep)
		}
	}

	prune()

	ticker := time.NewTicker(pelPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			prune()
		case <-ctx.Done():
			return
		}
	}
}
