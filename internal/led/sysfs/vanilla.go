package sysfs

import (
	"path/filepath"

	"github.com/smazurov/indicatord/internal/led"
	"github.com/smazurov/indicatord/internal/mathx"
)

// vanilla drives three standard LED class devices with optional blink
// timing controls.
type vanilla struct {
	ch [3]vanillaChannel
}

type vanillaChannel struct {
	maxval int
	val    *value
	on     *value
	off    *value
	blink  *value
}

// vanillaPaths names the control files of one channel. In the layout
// tables they are relative to dir. An empty max uses maxval instead of
// reading max_brightness.
type vanillaPaths struct {
	dir    string
	val    string
	max    string
	on     string
	off    string
	blink  string
	maxval int
}

var vanillaLayouts = [][3]vanillaPaths{
	// led:rgb_* with trigger-style delays
	{
		{dir: "led:rgb_red", max: "max_brightness", on: "blink_delay_on", off: "blink_delay_off"},
		{dir: "led:rgb_green", max: "max_brightness", on: "blink_delay_on", off: "blink_delay_off"},
		{dir: "led:rgb_blue", max: "max_brightness", on: "blink_delay_on", off: "blink_delay_off"},
	},
	// Galaxy S3
	{
		{dir: "led_r", max: "max_brightness", on: "delay_on", off: "delay_off", blink: "blink"},
		{dir: "led_g", max: "max_brightness", on: "delay_on", off: "delay_off", blink: "blink"},
		{dir: "led_b", max: "max_brightness", on: "delay_on", off: "delay_off", blink: "blink"},
	},
	// lm3533, no usable max_brightness
	{
		{dir: "lm3533-red", maxval: 255},
		{dir: "lm3533-green", maxval: 255},
		{dir: "lm3533-blue", maxval: 255},
	},
	// OnePlus X
	{
		{dir: "red", max: "max_brightness", on: "pause_hi", off: "pause_lo", blink: "blink"},
		{dir: "green", max: "max_brightness", on: "pause_hi", off: "pause_lo", blink: "blink"},
		{dir: "blue", max: "max_brightness", on: "pause_hi", off: "pause_lo", blink: "blink"},
	},
}

func openVanilla(s Settings, useConfig bool) (led.Backend, bool) {
	v := &vanilla{}
	for i := range v.ch {
		v.ch[i] = vanillaChannel{
			val:   s.value(),
			on:    s.value(),
			off:   s.value(),
			blink: s.value(),
		}
	}

	if useConfig && v.probeConfig(s) {
		return v, true
	}
	v.Close()

	for _, layout := range vanillaLayouts {
		ok := true
		for i := range v.ch {
			if !v.ch[i].probe(layout[i].in(s.path(layout[i].dir))) {
				ok = false
				break
			}
		}
		if ok {
			return v, true
		}
		v.Close()
	}
	return nil, false
}

// in returns p with every file name joined onto dir.
func (p vanillaPaths) in(dir string) vanillaPaths {
	join := func(name string) string {
		if name == "" {
			return ""
		}
		return filepath.Join(dir, name)
	}
	return vanillaPaths{
		dir:    dir,
		val:    join("brightness"),
		max:    join(p.max),
		on:     join(p.on),
		off:    join(p.off),
		blink:  join(p.blink),
		maxval: p.maxval,
	}
}

func (v *vanilla) probeConfig(s Settings) bool {
	for i, chn := range rgbChannels {
		var p vanillaPaths
		members := []member{
			{key: "Brightness", def: "brightness", dest: &p.val},
			{key: "MaxBrightness", def: "max_brightness", dest: &p.max},
			{key: "BlinkDelayOn", dest: &p.on},
			{key: "BlinkDelayOff", dest: &p.off},
			{key: "Blink", dest: &p.blink},
		}
		if !s.Config.resolve(chn, members, s.Logger) {
			return false
		}
		if override := parseNumber(s.Config[chn+"MaxBrightnessOverride"]); override > 0 {
			p.max, p.maxval = "", override
		}
		if !v.ch[i].probe(p) {
			return false
		}
	}
	return true
}

func (c *vanillaChannel) probe(p vanillaPaths) bool {
	c.close()

	c.maxval = p.maxval
	if p.max != "" {
		c.maxval = readNumber(p.max)
	}
	if c.maxval <= 0 {
		return false
	}

	if !c.val.openWrite(p.val) {
		return false
	}

	// Period controls are optional but come in pairs.
	if c.on.openWrite(p.on) {
		if !c.off.openWrite(p.off) {
			c.on.close()
		}
	}
	c.blink.openWrite(p.blink)
	return true
}

func (c *vanillaChannel) setValue(v int) {
	if c.val.isOpen() {
		v = mathx.ScaleValue(v, c.maxval)
		if c.val.get() != v {
			c.val.set(v)
			c.blink.invalidate()
		}
	}

	if c.blink.isOpen() {
		on := c.on.isOpen() && c.on.get() > 0 && c.off.get() > 0
		if on {
			c.blink.set(1)
		} else {
			c.blink.set(0)
		}
	}
}

// setBlink writes new periods. The driver applies them on the next
// brightness write, so the cached brightness is dropped.
func (c *vanillaChannel) setBlink(onMs, offMs int) {
	if c.on.isOpen() && c.on.get() != onMs {
		c.on.set(onMs)
		c.val.invalidate()
		c.blink.invalidate()
	}
	if c.off.isOpen() && c.off.get() != offMs {
		c.off.set(offMs)
		c.val.invalidate()
		c.blink.invalidate()
	}
}

func (c *vanillaChannel) close() {
	c.val.close()
	c.on.close()
	c.off.close()
	c.blink.close()
}

func (v *vanilla) Name() string { return "vanilla" }

func (v *vanilla) Capabilities() led.Capabilities { return led.DefaultCapabilities }

func (v *vanilla) Blink(onMs, offMs int) {
	for i := range v.ch {
		v.ch[i].setBlink(onMs, offMs)
	}
}

func (v *vanilla) Value(r, g, b int) {
	for i, n := range [3]int{r, g, b} {
		v.ch[i].setValue(n)
	}
}

func (v *vanilla) Close() {
	for i := range v.ch {
		v.ch[i].close()
	}
}
