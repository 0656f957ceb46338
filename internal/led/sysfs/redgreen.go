package sysfs

import (
	"path/filepath"

	"github.com/smazurov/indicatord/internal/led"
	"github.com/smazurov/indicatord/internal/mathx"
)

// redgreen drives a two color LED. It shares directory names with the RGB
// layouts and must be probed after them.
type redgreen struct {
	ch [2]redgreenChannel
}

type redgreenChannel struct {
	maxBrightness *value
	brightness    *value
}

var redgreenLayouts = [][2]string{
	{"red", "green"},
}

func openRedGreen(s Settings) (led.Backend, bool) {
	rg := &redgreen{}
	for i := range rg.ch {
		rg.ch[i] = redgreenChannel{maxBrightness: s.value(), brightness: s.value()}
	}

	for _, layout := range redgreenLayouts {
		if rg.ch[0].probe(s.path(layout[0])) && rg.ch[1].probe(s.path(layout[1])) {
			return rg, true
		}
		rg.Close()
	}
	return nil, false
}

func (c *redgreenChannel) probe(dir string) bool {
	ok := c.brightness.openWrite(filepath.Join(dir, "brightness"))
	if ok {
		if c.maxBrightness.openRead(filepath.Join(dir, "max_brightness")) {
			c.maxBrightness.refresh()
		} else {
			c.maxBrightness.invalidate()
		}
		ok = c.maxBrightness.get() > 0
	}

	c.maxBrightness.close()
	if !ok {
		c.brightness.close()
	}
	return ok
}

func (c *redgreenChannel) close() {
	c.maxBrightness.close()
	c.brightness.close()
}

// mapRedGreen keeps red and green as requested. A blue-only request lights
// both so that it does not turn the LED off.
func mapRedGreen(r, g, b int) (red, green int) {
	if r != 0 || g != 0 {
		return r, g
	}
	return b, b
}

func (rg *redgreen) Name() string { return "redgreen" }

// Capabilities reports hard-step breathing, which stands in for blinking.
func (rg *redgreen) Capabilities() led.Capabilities {
	return led.Capabilities{CanBreathe: true, BreathType: led.RampHardStep}
}

func (rg *redgreen) Value(r, g, b int) {
	red, green := mapRedGreen(r, g, b)
	for i, v := range [2]int{red, green} {
		c := &rg.ch[i]
		c.brightness.set(mathx.ScaleValue(v, c.maxBrightness.get()))
	}
}

func (rg *redgreen) Close() {
	for i := range rg.ch {
		rg.ch[i].close()
	}
}
