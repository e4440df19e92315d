// Package notify delivers advisories to the player's desktop.
package notify

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gen2brain/beeep"

	apperrors "github.com/overmind-labs/sc2copilot/internal/errors"
	"github.com/overmind-labs/sc2copilot/internal/reminder"
	"github.com/overmind-labs/sc2copilot/internal/resilience"
)

const deliverTimeout = 5 * time.Second

// Desktop sends advisories as native desktop notifications. Critical
// advisories use the alert variant which also plays the system sound.
type Desktop struct {
	// alert and banner are injectable for tests.
	alert  func(title, message, icon string) error
	banner func(title, message, icon string) error
}

// NewDesktop creates a desktop notifier.
func NewDesktop() *Desktop {
	return &Desktop{alert: beeep.Alert, banner: beeep.Notify}
}

// Notify delivers a single advisory.
func (d *Desktop) Notify(title, message string, urgency reminder.Urgency) error {
	send := d.banner
	if urgency == reminder.UrgencyCritical {
		send = d.alert
	}
	if err := send(title, message, ""); err != nil {
		return apperrors.Wrap(err, apperrors.CodeNotifyFailed, "desktop notification failed")
	}
	return nil
}

// Logger writes advisories to the structured log instead of the
// desktop. Used when notifications are unavailable or during tests.
type Logger struct{}

// NewLogger creates a log-only notifier.
func NewLogger() *Logger { return &Logger{} }

// Notify logs the advisory.
func (l *Logger) Notify(title, message string, urgency reminder.Urgency) error {
	slog.Info("advisory", "urgency", urgency, "title", title, "message", message)
	return nil
}

// Switchable wraps a notifier with a runtime on/off toggle. Disabled
// delivery drops the advisory silently; the engine still records it.
type Switchable struct {
	inner   reminder.Notifier
	enabled atomic.Bool
}

// NewSwitchable wraps a notifier, initially enabled per the flag.
func NewSwitchable(inner reminder.Notifier, enabled bool) *Switchable {
	s := &Switchable{inner: inner}
	s.enabled.Store(enabled)
	return s
}

// Notify delivers if enabled, drops otherwise.
func (s *Switchable) Notify(title, message string, urgency reminder.Urgency) error {
	if !s.enabled.Load() {
		return nil
	}
	return s.inner.Notify(title, message, urgency)
}

// SetEnabled toggles delivery.
func (s *Switchable) SetEnabled(on bool) {
	s.enabled.Store(on)
	slog.Info("notifications toggled", "enabled", on)
}

// Enabled reports the current toggle state.
func (s *Switchable) Enabled() bool {
	return s.enabled.Load()
}

// Retrying wraps a notifier with bounded retries for transient
// delivery failures.
type Retrying struct {
	inner reminder.Notifier
	cfg   resilience.RetryConfig
}

// NewRetrying wraps a notifier with notification-tuned retry settings.
func NewRetrying(inner reminder.Notifier) *Retrying {
	return &Retrying{inner: inner, cfg: resilience.NotifyRetryConfig()}
}

// Notify delivers with retries; gives up after the timeout.
func (r *Retrying) Notify(title, message string, urgency reminder.Urgency) error {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()
	return resilience.Retry(ctx, r.cfg, func() error {
		return r.inner.Notify(title, message, urgency)
	})
}

var (
	_ reminder.Notifier = (*Desktop)(nil)
	_ reminder.Notifier = (*Logger)(nil)
	_ reminder.Notifier = (*Switchable)(nil)
	_ reminder.Notifier = (*Retrying)(nil)
)
