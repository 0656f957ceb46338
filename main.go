package main

import (
	"log/slog"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/indicatord/cmd"
	"github.com/smazurov/indicatord/internal/api"
	"github.com/smazurov/indicatord/internal/config"
	"github.com/smazurov/indicatord/internal/events"
	"github.com/smazurov/indicatord/internal/logging"
	"github.com/smazurov/indicatord/internal/version"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8091" toml:"server.port" env:"SERVER_PORT"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"admin" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"password" toml:"auth.password" env:"AUTH_PASSWORD"`

	// LED settings
	LEDEnabled           bool   `help:"Enable indicator LED control" default:"true" toml:"led.enabled" env:"LED_ENABLED"`
	LEDSysfsRoot         string `help:"Root under which sys/class is found" default:"/" toml:"led.sysfs_root" env:"LED_SYSFS_ROOT"`
	LEDBackend           string `help:"Only try this LED backend" toml:"led.backend" env:"LED_BACKEND"`
	LEDQuirkBreathing    string `help:"Override breathing support (true, false)" toml:"led.quirk_breathing" env:"LED_QUIRK_BREATHING"`
	LEDQuirkBreathType   string `help:"Override breath type (none, half-sine, hard-step)" toml:"led.quirk_breath_type" env:"LED_QUIRK_BREATH_TYPE"`
	LEDPatternsFile      string `help:"Named pattern definitions file" default:"patterns.toml" toml:"led.patterns_file" env:"LED_PATTERNS_FILE"`
	LEDDefaultBrightness int    `help:"LED brightness level at startup (1-255)" default:"255" toml:"led.default_brightness" env:"LED_DEFAULT_BRIGHTNESS"`
	LEDFollowBacklight   bool   `help:"Scale LED brightness with the display backlight" default:"false" toml:"led.follow_backlight" env:"LED_FOLLOW_BACKLIGHT"`

	// Backlight settings
	BacklightEnabled bool   `help:"Enable display backlight control" default:"false" toml:"backlight.enabled" env:"BACKLIGHT_ENABLED"`
	BacklightDevice  string `help:"Backlight device name, empty picks the first" toml:"backlight.device" env:"BACKLIGHT_DEVICE"`

	// Metrics settings
	MetricsSSEEnabled bool `help:"Publish LED metrics on the event stream" default:"true" toml:"metrics.sse_enabled" env:"METRICS_SSE_ENABLED"`

	// Logging settings
	LoggingLevel     string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat    string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingMain      string `help:"Main logging level" default:"info" toml:"logging.main" env:"LOGGING_MAIN"`
	LoggingLED       string `help:"LED logging level" default:"info" toml:"logging.led" env:"LOGGING_LED"`
	LoggingSysfs     string `help:"Sysfs backend logging level" default:"info" toml:"logging.sysfs" env:"LOGGING_SYSFS"`
	LoggingLoop      string `help:"Event loop logging level" default:"info" toml:"logging.loop" env:"LOGGING_LOOP"`
	LoggingBacklight string `help:"Backlight logging level" default:"info" toml:"logging.backlight" env:"LOGGING_BACKLIGHT"`
	LoggingPatterns  string `help:"Patterns logging level" default:"info" toml:"logging.patterns" env:"LOGGING_PATTERNS"`
	LoggingAPI       string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingHTTP      string `help:"HTTP request logging level" default:"info" toml:"logging.http" env:"LOGGING_HTTP"`
}

func main() {
	var cli humacli.CLI

	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"main":      opts.LoggingMain,
				"led":       opts.LoggingLED,
				"sysfs":     opts.LoggingSysfs,
				"loop":      opts.LoggingLoop,
				"backlight": opts.LoggingBacklight,
				"patterns":  opts.LoggingPatterns,
				"api":       opts.LoggingAPI,
				"http":      opts.LoggingHTTP,
			},
		})
		logger := logging.GetLogger("main")

		// The backend_config map has no flag form, so it only comes from file or env
		ledOpts := cmd.LEDOptions{Config: opts.Config}
		if loadErr := config.LoadConfig(&ledOpts, nil); loadErr != nil {
			logger.Warn("Failed to load LED backend config", "error", loadErr)
		}
		ledOpts.LEDSysfsRoot = opts.LEDSysfsRoot
		ledOpts.LEDBackend = opts.LEDBackend
		ledOpts.LEDQuirkBreathing = opts.LEDQuirkBreathing
		ledOpts.LEDQuirkBreathType = opts.LEDQuirkBreathType

		eventBus := events.New()
		logging.SetLogCallback(api.PublishLogEntry(eventBus))

		d := newDaemon(opts, &ledOpts, eventBus, logger)

		hooks.OnStart(d.run)
		hooks.OnStop(d.shutdown)
	})

	cli.Root().Use = "indicatord"
	cli.Root().Short = "Indicator LED and display backlight daemon"
	cli.Root().Version = version.Get().String()

	cli.Root().AddCommand(cmd.CreateProbeCmd())
	cli.Root().AddCommand(cmd.CreatePatternCmd())

	// Run the CLI
	cli.Run()
}
