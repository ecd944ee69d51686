// Package api implements the local HTTP REST API and WebSocket server
// for panel-core.
//
// This package provides:
//   - Read endpoints for the authoritative panel state and the platform
//     event log
//   - Command endpoints for display text, lamp tests, and function
//     enablement, feeding the same action queue as the message bus
//   - WebSocket hub broadcasting panel state changes in real time
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Architecture
//
// The API server sits beside the bus-facing monitors: both surfaces
// converge on the state manager and the action queue, so a command is
// validated and serialised identically regardless of where it arrived.
// State reads never touch hardware; they return the manager's snapshot.
//
// The server binds to localhost by default and carries no
// authentication layer. Access control is the responsibility of the
// platform it is deployed on.
//
// # Graceful Degradation
//
// The server operates without a connected panel — reads and WebSocket
// connections work, and commands are queued and dropped by the
// executor's presence check. This enables inspection of a chassis whose
// panel has been removed.
package api
