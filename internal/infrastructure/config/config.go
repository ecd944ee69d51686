package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for panel-core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Panel     PanelConfig     `yaml:"panel"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Database  DatabaseConfig  `yaml:"database"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Logging   LoggingConfig   `yaml:"logging"`
	Modes     ModesConfig     `yaml:"modes"`
	PEL       PELConfig       `yaml:"pel"`
}

// PanelConfig contains settings for the physical panel link and display geometry.
type PanelConfig struct {
	// Endpoint is the panel microcontroller connection URL.
	// Supported schemes: "tcp://host:port" and "unix:///path/to/socket".
	Endpoint string `yaml:"endpoint"`

	// DisplayLines is the number of text lines on the LCD. Default: 2.
	DisplayLines int `yaml:"display_lines"`

	// DisplayColumns is the width of each LCD line in characters. Default: 16.
	DisplayColumns int `yaml:"display_columns"`

	// QueueSize is the executor action queue depth. Default: 64.
	QueueSize int `yaml:"queue_size"`

	// DefaultDisplay is shown when the panel is (re)attached or a lamp test ends.
	DefaultDisplay DisplayConfig `yaml:"default_display"`
}

// DisplayConfig holds a two-line display text pair.
type DisplayConfig struct {
	Line1 string `yaml:"line1"`
	Line2 string `yaml:"line2"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// InfluxDBConfig contains InfluxDB telemetry settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket state-feed settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// PELConfig contains platform event log listener settings.
type PELConfig struct {
	// Enabled gates the PEL listener entirely. When false, event log
	// notifications are ignored and nothing is persisted.
	Enabled bool `yaml:"enabled"`

	// MaxEntries caps the stored event log. Oldest entries beyond the cap
	// are pruned periodically. 0 keeps everything.
	MaxEntries int `yaml:"max_entries"`

	// DisplayFunction is the panel function that must be enabled for an
	// event notification to drive the display. Default: 64.
	DisplayFunction int `yaml:"display_function"`
}

// ModesConfig holds the operating-mode derivation table.
//
// The mapping from the (logging, power policy, reboot) policy triple to an
// operating mode is a business rule, so it ships as configuration data rather
// than code. Rules are evaluated first-match-wins; Default applies when no
// rule matches.
type ModesConfig struct {
	Rules   []ModeRule `yaml:"rules"`
	Default string     `yaml:"default"`
}

// ModeRule matches one combination of the policy triple.
// Nil fields are wildcards; PowerPolicy "*" (or empty) is a wildcard.
type ModeRule struct {
	Logging     *bool  `yaml:"logging"`
	PowerPolicy string `yaml:"power_policy"`
	Reboot      *bool  `yaml:"reboot"`
	Mode        string `yaml:"mode"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: PANELCORE_SECTION_KEY
// For example: PANELCORE_DATABASE_PATH, PANELCORE_MQTT_HOST
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Panel: PanelConfig{
			Endpoint:       "tcp://127.0.0.1:7171",
			DisplayLines:   2,
			DisplayColumns: 16,
			QueueSize:      64,
			DefaultDisplay: DisplayConfig{
				Line1: "01",
				Line2: "",
			},
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "panelcore",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Database: DatabaseConfig{
			Path:        "data/panelcore.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		InfluxDB: InfluxDBConfig{
			Enabled:       false,
			BatchSize:     100,
			FlushInterval: 10,
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8090,
			Timeouts: APITimeoutConfig{
				Read:  15,
				Write: 15,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/api/v1/ws",
			MaxMessageSize: 4096,
			PingInterval:   30,
			PongTimeout:    60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		PEL: PELConfig{
			Enabled:         true,
			MaxEntries:      1000,
			DisplayFunction: 64,
		},
	}
}

// applyEnvOverrides applies PANELCORE_* environment variables over file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PANELCORE_PANEL_ENDPOINT"); v != "" {
		cfg.Panel.Endpoint = v
	}
	if v := os.Getenv("PANELCORE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("PANELCORE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("PANELCORE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("PANELCORE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
	if v := os.Getenv("PANELCORE_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("PANELCORE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Panel.Endpoint == "" {
		errs = append(errs, "panel.endpoint is required")
	}
	if !strings.HasPrefix(c.Panel.Endpoint, "tcp://") && !strings.HasPrefix(c.Panel.Endpoint, "unix://") {
		errs = append(errs, "panel.endpoint must use tcp:// or unix:// scheme")
	}
	if c.Panel.DisplayLines < 1 {
		errs = append(errs, "panel.display_lines must be at least 1")
	}
	if c.Panel.DisplayColumns < 1 {
		errs = append(errs, "panel.display_columns must be at least 1")
	}
	if c.Panel.QueueSize < 1 {
		errs = append(errs, "panel.queue_size must be at least 1")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Broker.ClientID == "" {
		errs = append(errs, "mqtt.broker.client_id is required")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	for i, rule := range c.Modes.Rules {
		if rule.Mode == "" {
			errs = append(errs, fmt.Sprintf("modes.rules[%d].mode is required", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
