// Package influxdb provides InfluxDB connectivity for panel-core.
//
// It wraps the official influxdb-client-go v2 library with panel-core's
// patterns for connection management, metric writing, and health monitoring.
//
// # Purpose
//
// This package handles time-series data storage for:
//   - Operating mode transitions
//   - Host boot progress stage changes
//   - Hardware action dispatch outcomes
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "panelworks",
//	    Bucket: "panel_metrics",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteModeTransition("normal", "safe")
//
// Telemetry is optional: when the config section is disabled, Connect
// returns ErrDisabled and callers run without a client.
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection and health check errors are returned directly.
//
// # Performance
//
// Writes are batched according to config.yaml settings (batch_size, flush_interval).
// Recording a metric never stalls a control path.
package influxdb
