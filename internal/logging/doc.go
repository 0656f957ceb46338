// Package logging provides slog loggers with per-module levels.
//
// Every module logger fans out to up to three sinks: stdout (text or json)
// when stdout is a terminal, pipe, socket or file; the systemd journal when
// journald is reachable; and an in-memory ring buffer that backs
// /api/logs/stream. New buffer entries are also handed to the callback set
// with SetLogCallback, which the daemon uses to publish them on the event bus.
//
// Initialize once at startup, then ask for loggers by module name:
//
//	logging.Initialize(logging.Config{
//		Level:   "info",
//		Format:  "text",
//		Modules: map[string]string{"sysfs": "debug"},
//	})
//	logger := logging.GetLogger("led")
//	logger.Info("LED sysfs backend: vanilla", "can_breathe", true)
//
// Loggers obtained before Initialize keep working and pick up the configured
// level and sinks. SetModuleLevel changes one module at runtime.
//
// The daemon uses the modules main, led, sysfs, loop, backlight, patterns,
// api, http and systemd. In the journal, attributes become upper-case fields:
//
//	journalctl -t indicatord MODULE=sysfs -p err
package logging
