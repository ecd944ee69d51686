package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteModeTransition records an operating mode change.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - from: The previous operating mode (e.g., "normal")
//   - to: The new operating mode (e.g., "safe")
func (c *Client) WriteModeTransition(from, to string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"operating_mode",
		map[string]string{
			"from": from,
			"to":   to,
		},
		map[string]interface{}{
			"value": 1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteBootProgress records a host boot progress stage change.
//
// Parameters:
//   - stage: The boot stage name (e.g., "memory_init")
//   - order: The stage's position in the boot sequence
func (c *Client) WriteBootProgress(stage string, order int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"boot_progress",
		map[string]string{
			"stage": stage,
		},
		map[string]interface{}{
			"order": order,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteActionOutcome records the dispatch outcome of one hardware action.
//
// Parameters:
//   - kind: The action kind (e.g., "display", "lamp_test", "function_mask")
//   - result: The outcome ("ok", "dropped", "unreachable", "protocol_error")
func (c *Client) WriteActionOutcome(kind, result string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"panel_actions",
		map[string]string{
			"kind":   kind,
			"result": result,
		},
		map[string]interface{}{
			"count": 1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "panel-01"},
//	    map[string]interface{}{"cpu_percent": 45.2, "memory_mb": 512})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
