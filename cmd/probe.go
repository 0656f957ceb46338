package cmd

import (
	"fmt"
	"strings"

	"github.com/smazurov/indicatord/internal/config"
	"github.com/smazurov/indicatord/internal/led"
	"github.com/smazurov/indicatord/internal/led/sysfs"
	"github.com/smazurov/indicatord/internal/logging"
	"github.com/spf13/cobra"
)

// CreateProbeCmd creates the probe command.
func CreateProbeCmd() *cobra.Command {
	opts := &LEDOptions{}
	var verbose bool

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Report the indicator LED backend for this device",
		Long: `Tries the sysfs LED backends in order (` + strings.Join(sysfs.Names(), ", ") + `) ` +
			`and prints the first that matches with its breathing capabilities. The LED is not touched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			level := "warn"
			if verbose {
				level = "debug"
			}
			logging.Initialize(logging.Config{Level: level, Format: "text"})
			logger := logging.GetLogger("sysfs")

			if err := config.LoadConfig(opts, cmd); err != nil {
				return err
			}

			name, caps, ok := led.Detect(opts.Probes(logger), opts.LEDBackend, opts.Quirks(logger), logger)
			out := cmd.OutOrStdout()
			if !ok {
				if opts.LEDBackend != "" {
					return fmt.Errorf("backend %q did not match under %s", opts.LEDBackend, opts.LEDSysfsRoot)
				}
				return fmt.Errorf("no indicator LED found under %s", opts.LEDSysfsRoot)
			}

			fmt.Fprintf(out, "backend:     %s\n", name)
			fmt.Fprintf(out, "can_breathe: %t\n", caps.CanBreathe)
			fmt.Fprintf(out, "breath_type: %s\n", caps.BreathType)
			return nil
		},
	}

	opts.BindFlags(cmd)
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Log every probe attempt")
	return cmd
}
