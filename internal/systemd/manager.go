// Package systemd reports daemon lifecycle to the service manager.
package systemd

import (
	"context"
	"log/slog"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

// Notifier sends sd_notify messages. Without NOTIFY_SOCKET every call is a no-op.
type Notifier struct {
	logger *slog.Logger
}

// NewNotifier creates a notifier that logs delivery failures to logger.
func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{logger: logger}
}

// Ready signals that startup finished.
func (n *Notifier) Ready() bool {
	return n.notify(daemon.SdNotifyReady)
}

// Stopping signals that shutdown began.
func (n *Notifier) Stopping() bool {
	return n.notify(daemon.SdNotifyStopping)
}

// Status sets the free-form status line shown by systemctl status.
func (n *Notifier) Status(msg string) bool {
	return n.notify("STATUS=" + msg)
}

// HealthCheck reports whether the daemon can still make progress. It must
// return before ctx expires.
type HealthCheck func(ctx context.Context) error

// Watchdog pings the service manager at half the configured WatchdogSec
// until ctx is done. Before each ping it runs check with a quarter of the
// interval as deadline and skips the ping when check fails, so a wedged
// daemon gets restarted. It returns immediately when the watchdog is disabled.
func (n *Notifier) Watchdog(ctx context.Context, check HealthCheck) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		n.logger.Warn("Invalid watchdog configuration", "error", err)
		return
	}
	if interval == 0 {
		return
	}

	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()
	n.logger.Debug("Systemd watchdog enabled", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if check != nil {
				checkCtx, cancel := context.WithTimeout(ctx, interval/4)
				err := check(checkCtx)
				cancel()
				if err != nil {
					n.logger.Warn("Health check failed, skipping watchdog ping", "error", err)
					continue
				}
			}
			n.notify(daemon.SdNotifyWatchdog)
		}
	}
}

func (n *Notifier) notify(state string) bool {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		n.logger.Warn("Failed to notify systemd", "state", state, "error", err)
		return false
	}
	return sent
}
