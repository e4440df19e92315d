// Package orchestrator coordinates capture, OCR, state synthesis and reminders
package orchestrator

// Orchestration constants
const (
	// AdvisoryBufferSize is the capacity of the advisory fan-out channel.
	// Slow websocket consumers drop rather than stall the poll loop.
	AdvisoryBufferSize = 100
)
