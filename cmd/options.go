package cmd

import (
	"log/slog"
	"path/filepath"

	"github.com/smazurov/indicatord/internal/led"
	"github.com/smazurov/indicatord/internal/led/sysfs"
	"github.com/smazurov/indicatord/internal/metrics"
	"github.com/spf13/cobra"
)

// LEDOptions are the LED settings shared by the daemon and the subcommands.
// BackendConfig only comes from the config file or the environment.
type LEDOptions struct {
	Config string

	LEDSysfsRoot       string            `toml:"led.sysfs_root" env:"LED_SYSFS_ROOT"`
	LEDBackend         string            `toml:"led.backend" env:"LED_BACKEND"`
	LEDQuirkBreathing  string            `toml:"led.quirk_breathing" env:"LED_QUIRK_BREATHING"`
	LEDQuirkBreathType string            `toml:"led.quirk_breath_type" env:"LED_QUIRK_BREATH_TYPE"`
	LEDBackendConfig   map[string]string `toml:"led.backend_config" env:"LED_BACKEND_CONFIG"`
}

// BindFlags registers the flags a subcommand accepts for o.
func (o *LEDOptions) BindFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.Config, "config", "c", "config.toml", "Path to configuration file")
	cmd.Flags().StringVar(&o.LEDSysfsRoot, "led-sysfs-root", "/", "Root under which sys/class/leds is found")
	cmd.Flags().StringVar(&o.LEDBackend, "led-backend", "", "Only try this backend, with paths from led.backend_config")
}

// Probes returns the sysfs backend probes rooted at LEDSysfsRoot.
func (o *LEDOptions) Probes(logger *slog.Logger) []led.Probe {
	root := o.LEDSysfsRoot
	if root == "" {
		root = "/"
	}
	return sysfs.Registry(sysfs.Settings{
		Root:    filepath.Join(root, "sys/class/leds"),
		Config:  sysfs.Config(o.LEDBackendConfig),
		Logger:  logger,
		OnError: metrics.LED{}.ObserveSysfsError,
		OnWrite: metrics.LED{}.ObserveSysfsWrite,
	})
}

// Quirks parses the quirk settings. Invalid values are logged and ignored.
func (o *LEDOptions) Quirks(logger *slog.Logger) led.Quirks {
	q, err := led.ParseQuirks(o.LEDQuirkBreathing, o.LEDQuirkBreathType)
	if err != nil {
		logger.Warn("Ignoring invalid LED quirk", "error", err)
		return led.Quirks{}
	}
	return q
}

// IndicatorOptions returns the led.Option set for these settings.
func (o *LEDOptions) IndicatorOptions(logger *slog.Logger) []led.Option {
	opts := []led.Option{
		led.WithQuirks(o.Quirks(logger)),
		led.WithRecorder(metrics.LED{}),
	}
	if o.LEDBackend != "" {
		opts = append(opts, led.WithBackend(o.LEDBackend))
	}
	return opts
}
