// Package executor serializes hardware actions onto the panel link.
//
// A single worker goroutine consumes a bounded FIFO queue, so actions
// reach the panel one at a time, in submission order. Submit never
// blocks: when the queue is full the action is dropped and logged, which
// only happens when the panel link is wedged for an extended period.
//
// Immediately before each send the worker re-checks panel presence and
// silently drops the action if the panel has vanished since submission.
// Dropped and failed actions are never retried; every action is a
// full-state write, so the next state change supersedes anything lost.
package executor
