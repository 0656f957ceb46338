package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/smazurov/indicatord/internal/config"
	"github.com/smazurov/indicatord/internal/events"
	"github.com/smazurov/indicatord/internal/led"
	"github.com/smazurov/indicatord/internal/logging"
	"github.com/smazurov/indicatord/internal/loop"
	"github.com/spf13/cobra"
)

// patternArgs is a parsed "R G B [ON_MS OFF_MS]" argument list.
type patternArgs struct {
	r, g, b     int
	onMs, offMs int
}

func parsePatternArgs(args []string) (patternArgs, error) {
	if len(args) != 3 && len(args) != 5 {
		return patternArgs{}, fmt.Errorf("expected R G B [ON_MS OFF_MS], got %d arguments", len(args))
	}

	names := []string{"R", "G", "B", "ON_MS", "OFF_MS"}
	vals := make([]int, 5)
	for i, arg := range args {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return patternArgs{}, fmt.Errorf("%s: %w", names[i], err)
		}
		if v < 0 {
			return patternArgs{}, fmt.Errorf("%s must not be negative", names[i])
		}
		vals[i] = v
	}
	return patternArgs{r: vals[0], g: vals[1], b: vals[2], onMs: vals[3], offMs: vals[4]}, nil
}

// CreatePatternCmd creates the pattern command.
func CreatePatternCmd() *cobra.Command {
	opts := &LEDOptions{}
	var breathe bool
	var brightness int
	var hold time.Duration

	cmd := &cobra.Command{
		Use:   "pattern R G B [ON_MS OFF_MS]",
		Short: "Drive the indicator LED directly",
		Long: `Probes the LED like the daemon does, shows the given color and holds it until ` +
			`interrupted or until --hold elapses, then turns the LED off. Do not run it next to the daemon.`,
		Args: cobra.RangeArgs(3, 5),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePatternArgs(args)
			if err != nil {
				return err
			}

			logging.Initialize(logging.Config{Level: "info", Format: "text"})

			if err := config.LoadConfig(opts, cmd); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if hold > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, hold)
				defer cancel()
			}

			return runPattern(ctx, opts, p, breathe, brightness, cmd)
		},
	}

	opts.BindFlags(cmd)
	cmd.Flags().BoolVar(&breathe, "breathe", false, "Breathe instead of hard blinking where supported")
	cmd.Flags().IntVar(&brightness, "brightness", 255, "Brightness level 1-255")
	cmd.Flags().DurationVar(&hold, "hold", 0, "How long to show the pattern, 0 until interrupted")
	return cmd
}

func runPattern(ctx context.Context, opts *LEDOptions, p patternArgs, breathe bool, brightness int, cmd *cobra.Command) error {
	logger := logging.GetLogger("led")

	l := loop.New(logging.GetLogger("loop"))
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go func() {
		if err := l.Run(loopCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Event loop failed", "error", err)
		}
	}()

	var ctl led.Controller
	if err := l.Call(loopCtx, func() {
		ctl = led.New(l, opts.Probes(logging.GetLogger("sysfs")), logger, opts.IndicatorOptions(logger)...)
	}); err != nil {
		return err
	}
	if ctl.Backend() == "" {
		return fmt.Errorf("no indicator LED found under %s", opts.LEDSysfsRoot)
	}

	m := led.NewManager(ctl, l, events.New(), logger)
	if _, err := m.SetBrightness(loopCtx, brightness, "cli"); err != nil {
		return err
	}
	if _, err := m.SetPattern(loopCtx, p.r, p.g, p.b, p.onMs, p.offMs, "cli"); err != nil {
		return err
	}
	snap, err := m.SetBreathing(loopCtx, breathe, "cli")
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s r=%d g=%d b=%d on=%dms off=%dms level=%d\n",
		snap.Backend, snap.Style, snap.State.R, snap.State.G, snap.State.B,
		snap.State.OnMs, snap.State.OffMs, snap.State.Level)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return m.Stop(stopCtx)
}
