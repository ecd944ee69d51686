package influxdb

import "errors"

// Sentinel errors for the telemetry writer, matched with errors.Is.
// Telemetry is optional: callers treat ErrDisabled as "keep going
// without action metrics", not as a startup failure.
var (
	// ErrNotConnected indicates the client has no InfluxDB connection.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed indicates the initial connection attempt failed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrWriteFailed indicates a point write failed. Most write errors
	// surface asynchronously through the error callback instead.
	ErrWriteFailed = errors.New("influxdb: write failed")

	// ErrDisabled indicates the integration is switched off in config.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
