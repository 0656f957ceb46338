package sysfs

import (
	"path/filepath"

	"github.com/smazurov/indicatord/internal/led"
	"github.com/smazurov/indicatord/internal/mathx"
)

// binary drives an on/off only LED such as a button backlight.
type binary struct {
	val *value
}

func openBinary(s Settings) (led.Backend, bool) {
	bin := &binary{val: s.value()}
	if !bin.val.openWrite(filepath.Join(s.path("button-backlight"), "brightness")) {
		return nil, false
	}
	return bin, true
}

func (bin *binary) Name() string { return "binary" }

// Capabilities reports hard-step breathing, which stands in for blinking.
func (bin *binary) Capabilities() led.Capabilities {
	return led.Capabilities{CanBreathe: true, BreathType: led.RampHardStep}
}

func (bin *binary) Value(r, g, b int) {
	mono := 0
	if r != 0 || g != 0 || b != 0 {
		mono = 255
	}
	bin.val.set(mathx.ScaleValue(mono, 1))
}

func (bin *binary) Close() {
	bin.val.close()
}
