package sysfs

import (
	"fmt"
	"path/filepath"

	"github.com/smazurov/indicatord/internal/led"
	"github.com/smazurov/indicatord/internal/mathx"
)

// hammerhead drives three LED class devices that latch color and blink
// timing behind an rgb_start switch (Nexus 5).
type hammerhead struct {
	ch [3]hammerheadChannel
}

type hammerheadChannel struct {
	maxval int
	val    *value
	onOff  *value
	enable *value
}

var hammerheadLayouts = [][3]string{
	{"red", "green", "blue"},
}

func openHammerhead(s Settings) (led.Backend, bool) {
	h := &hammerhead{}
	for i := range h.ch {
		h.ch[i] = hammerheadChannel{
			val:    s.value(),
			onOff:  s.value(),
			enable: s.value(),
		}
	}

	for _, layout := range hammerheadLayouts {
		ok := true
		for i := range h.ch {
			if !h.ch[i].probe(s.path(layout[i])) {
				ok = false
				break
			}
		}
		if ok {
			return h, true
		}
		h.Close()
	}
	return nil, false
}

func (c *hammerheadChannel) probe(dir string) bool {
	c.close()

	if c.maxval = readNumber(filepath.Join(dir, "max_brightness")); c.maxval <= 0 {
		return false
	}
	if !c.val.openWrite(filepath.Join(dir, "brightness")) ||
		!c.onOff.openWrite(filepath.Join(dir, "on_off_ms")) ||
		!c.enable.openWrite(filepath.Join(dir, "rgb_start")) {
		c.close()
		return false
	}
	return true
}

func (c *hammerheadChannel) close() {
	c.val.close()
	c.onOff.close()
	c.enable.close()
}

func (h *hammerhead) Name() string { return "hammerhead" }

// Capabilities reports no breathing: every parameter change is slow and
// costs a lot of CPU on this driver.
func (h *hammerhead) Capabilities() led.Capabilities {
	return led.Capabilities{}
}

func (h *hammerhead) Enable(on bool) {
	for i := range h.ch {
		h.ch[i].enable.write(boolDigit(on))
	}
}

func (h *hammerhead) Blink(onMs, offMs int) {
	for i := range h.ch {
		h.ch[i].onOff.write(fmt.Sprintf("%d %d", onMs, offMs))
	}
}

func (h *hammerhead) Value(r, g, b int) {
	for i, v := range [3]int{r, g, b} {
		c := &h.ch[i]
		c.val.write(fmt.Sprint(mathx.ScaleValue(v, c.maxval)))
	}
}

func (h *hammerhead) Close() {
	for i := range h.ch {
		h.ch[i].close()
	}
}
