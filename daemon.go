package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/smazurov/indicatord/cmd"
	"github.com/smazurov/indicatord/internal/api"
	"github.com/smazurov/indicatord/internal/backlight"
	"github.com/smazurov/indicatord/internal/config"
	"github.com/smazurov/indicatord/internal/events"
	"github.com/smazurov/indicatord/internal/led"
	"github.com/smazurov/indicatord/internal/logging"
	"github.com/smazurov/indicatord/internal/loop"
	"github.com/smazurov/indicatord/internal/metrics"
	"github.com/smazurov/indicatord/internal/metrics/exporters"
	"github.com/smazurov/indicatord/internal/patterns"
	"github.com/smazurov/indicatord/internal/systemd"
)

const shutdownTimeout = 5 * time.Second

// daemon owns the long-running components started by the root command.
type daemon struct {
	opts     *Options
	ledOpts  *cmd.LEDOptions
	eventBus *events.Bus
	logger   *slog.Logger
	notifier *systemd.Notifier

	// ready is closed once run has built everything shutdown needs.
	ready chan struct{}

	cancel   context.CancelFunc
	loop     *loop.Loop
	manager  *led.Manager
	watcher  *config.Watcher[map[string]led.Pattern]
	exporter *exporters.SSEExporter
	server   *api.Server
}

func newDaemon(opts *Options, ledOpts *cmd.LEDOptions, eventBus *events.Bus, logger *slog.Logger) *daemon {
	return &daemon{
		opts:     opts,
		ledOpts:  ledOpts,
		eventBus: eventBus,
		logger:   logger,
		notifier: systemd.NewNotifier(logging.GetLogger("systemd")),
		ready:    make(chan struct{}),
	}
}

// run builds every component and serves HTTP until shutdown.
func (d *daemon) run() {
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel

	d.loop = loop.New(logging.GetLogger("loop"))
	go func() {
		if err := d.loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Error("Event loop stopped", "error", err)
		}
	}()

	if err := d.start(ctx); err != nil {
		d.logger.Error("Failed to start", "error", err)
		os.Exit(1)
	}
	close(d.ready)

	d.notifier.Ready()
	go d.notifier.Watchdog(ctx, d.loopAlive)

	d.logger.Info("Starting HTTP server", "port", d.opts.Port)
	if err := d.server.Start(d.opts.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		d.logger.Error("Failed to start HTTP server", "error", err)
		os.Exit(1)
	}
}

// loopAlive round-trips an empty call through the event loop. A loop stuck
// in a callback fails it and systemd stops receiving watchdog pings.
func (d *daemon) loopAlive(ctx context.Context) error {
	return d.loop.Call(ctx, func() {})
}

func (d *daemon) start(ctx context.Context) error {
	ledLogger := logging.GetLogger("led")

	store := patterns.NewStore(d.eventBus, logging.GetLogger("patterns"))
	if d.opts.LEDPatternsFile != "" {
		w, err := patterns.Watch(d.opts.LEDPatternsFile, store, logging.GetLogger("patterns"))
		switch {
		case err == nil:
			d.watcher = w
		case errors.Is(err, os.ErrNotExist):
			d.logger.Info("No pattern file, named patterns disabled", "path", d.opts.LEDPatternsFile)
		default:
			d.logger.Warn("Failed to load patterns", "path", d.opts.LEDPatternsFile, "error", err)
		}
	}

	var ctl led.Controller
	if err := d.loop.Call(ctx, func() {
		if d.opts.LEDEnabled {
			ctl = led.New(d.loop, d.ledOpts.Probes(logging.GetLogger("sysfs")), ledLogger, d.ledOpts.IndicatorOptions(ledLogger)...)
		} else {
			ctl = led.NewDisabled(ledLogger)
		}
	}); err != nil {
		return fmt.Errorf("failed to create LED controller: %w", err)
	}

	d.manager = led.NewManager(ctl, d.loop, d.eventBus, ledLogger,
		led.WithPatterns(store),
		led.WithFollowBacklight(d.opts.LEDFollowBacklight))
	d.manager.Start()
	if _, err := d.manager.SetBrightness(ctx, d.opts.LEDDefaultBrightness, "startup"); err != nil {
		return fmt.Errorf("failed to apply default brightness: %w", err)
	}

	apiOpts := &api.Options{
		AuthUsername:      d.opts.AuthUsername,
		AuthPassword:      d.opts.AuthPassword,
		LED:               d.manager,
		Patterns:          store,
		EventBus:          d.eventBus,
		PrometheusHandler: exporters.HTTPHandler(),
	}

	if d.opts.BacklightEnabled {
		root := filepath.Join(d.ledOpts.LEDSysfsRoot, "sys/class/backlight")
		bl, err := backlight.Open(root, d.opts.BacklightDevice,
			backlight.WithEventBus(d.eventBus),
			backlight.WithRecorder(metrics.LED{}),
			backlight.WithLogger(logging.GetLogger("backlight")))
		if err != nil {
			d.logger.Warn("Backlight unavailable", "root", root, "device", d.opts.BacklightDevice, "error", err)
		} else {
			apiOpts.Backlight = bl
		}
	}

	if d.opts.MetricsSSEEnabled {
		d.exporter = exporters.NewSSEExporter(d.eventBus)
		d.exporter.Start(ctx)
	}

	d.server = api.NewServer(apiOpts)

	snap, err := d.manager.Snapshot(ctx)
	if err != nil {
		return err
	}
	backend := snap.Backend
	if backend == "" {
		backend = "none"
	}
	d.notifier.Status(fmt.Sprintf("LED backend %s, listening on %s", backend, d.opts.Port))
	return nil
}

// shutdown stops the components in reverse order and turns the LED off.
func (d *daemon) shutdown() {
	select {
	case <-d.ready:
	case <-time.After(shutdownTimeout):
		d.logger.Warn("Shutdown before startup finished")
		return
	}

	d.logger.Info("Shutting down")
	d.notifier.Stopping()

	if err := d.server.Stop(); err != nil {
		d.logger.Error("Error stopping HTTP server", "error", err)
	}
	if d.exporter != nil {
		d.exporter.Stop()
	}
	if d.watcher != nil {
		if err := d.watcher.Stop(); err != nil {
			d.logger.Warn("Error stopping pattern watcher", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := d.manager.Stop(ctx); err != nil {
		d.logger.Error("Error turning LED off", "error", err)
	}

	d.cancel()
	<-d.loop.Done()
}
