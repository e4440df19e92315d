// Package server provides HTTP and WebSocket handlers
package server

import "time"

// Server configuration constants
const (
	// Per-connection inbound message rate limiting
	RateLimitMessages = 10          // Max messages per window
	RateLimitWindow   = time.Second // Sliding window duration

	// StatePushInterval is how often the latest snapshot is pushed to
	// connected clients.
	StatePushInterval = 2 * time.Second

	// History query limits
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)
