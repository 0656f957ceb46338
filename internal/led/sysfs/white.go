package sysfs

import (
	"fmt"
	"path/filepath"

	"github.com/smazurov/indicatord/internal/led"
	"github.com/smazurov/indicatord/internal/mathx"
)

// white drives a single color LED at the brightest requested channel
// (Moto G 2nd gen).
type white struct {
	maxval int
	val    *value
}

func openWhite(s Settings) (led.Backend, bool) {
	w := &white{val: s.value()}
	dir := s.path("white")

	if w.maxval = readNumber(filepath.Join(dir, "max_brightness")); w.maxval <= 0 {
		return nil, false
	}
	if !w.val.openWrite(filepath.Join(dir, "brightness")) {
		return nil, false
	}
	return w, true
}

func (w *white) Name() string { return "white" }

func (w *white) Capabilities() led.Capabilities { return led.DefaultCapabilities }

func (w *white) Value(r, g, b int) {
	w.val.write(fmt.Sprint(mathx.ScaleValue(max(r, g, b), w.maxval)))
}

func (w *white) Close() {
	w.val.close()
}
