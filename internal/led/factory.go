package led

import (
	"log/slog"
	"os"
	"strings"

	"github.com/smazurov/indicatord/internal/loop"
)

const deviceTreeModelPath = "/proc/device-tree/model"

// New probes for an indicator LED and returns a ready Controller.
// Falls back to a no-op controller when no backend matches.
// Must be called on the scheduler's loop goroutine.
func New(sched loop.Scheduler, probes []Probe, logger *slog.Logger, opts ...Option) Controller {
	logger.Info("Detecting board for LED control", "board_model", detectBoard())

	ind := NewIndicator(sched, probes, logger, opts...)
	if ind.Init() {
		return ind
	}

	logger.Info("No indicator LED detected, using no-op controller")
	return newNoop(logger)
}

// NewDisabled returns the no-op controller.
func NewDisabled(logger *slog.Logger) Controller {
	return newNoop(logger)
}

// detectBoard reads the device tree model to identify the board.
func detectBoard() string {
	data, err := os.ReadFile(deviceTreeModelPath)
	if err != nil {
		return "unknown"
	}

	// Device tree model contains null bytes, trim them
	return strings.TrimRight(string(data), "\x00")
}
