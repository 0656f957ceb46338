package sysfs

import (
	"path/filepath"

	"github.com/smazurov/indicatord/internal/led"
	"github.com/smazurov/indicatord/internal/mathx"
)

// f5121 drives LEDs whose blink and brightness controls affect each other
// (Sony Xperia X). Blink requests are cached and applied together with the
// next color write.
type f5121 struct {
	ch [3]f5121Channel
}

type f5121Channel struct {
	maxBrightness *value
	brightness    *value
	blink         *value

	controlBlink bool
}

type f5121Paths struct {
	maxBrightness string
	brightness    string
	blink         string
	maxOverride   string
}

var f5121Layouts = [][3]struct{ dir, override string }{
	{{"led:rgb_red", "255"}, {"led:rgb_green", "255"}, {"led:rgb_blue", "255"}},
	{{"red", ""}, {"green", ""}, {"blue", ""}},
}

func openF5121(s Settings, useConfig bool) (led.Backend, bool) {
	f := &f5121{}
	for i := range f.ch {
		f.ch[i] = f5121Channel{
			maxBrightness: s.value(),
			brightness:    s.value(),
			blink:         s.value(),
		}
	}

	if useConfig && f.probeConfig(s) {
		return f, true
	}
	f.Close()

	for _, layout := range f5121Layouts {
		ok := true
		for i := range f.ch {
			dir := s.path(layout[i].dir)
			p := f5121Paths{
				maxBrightness: filepath.Join(dir, "max_brightness"),
				brightness:    filepath.Join(dir, "brightness"),
				blink:         filepath.Join(dir, "blink"),
				maxOverride:   layout[i].override,
			}
			if !f.ch[i].probe(p) {
				ok = false
				break
			}
		}
		if ok {
			return f, true
		}
		f.Close()
	}
	return nil, false
}

func (f *f5121) probeConfig(s Settings) bool {
	for i, chn := range rgbChannels {
		var p f5121Paths
		members := []member{
			{key: "Brightness", def: "brightness", dest: &p.brightness},
			{key: "MaxBrightness", def: "max_brightness", dest: &p.maxBrightness},
			{key: "Blink", def: "blink", dest: &p.blink},
		}
		if !s.Config.resolve(chn, members, s.Logger) {
			return false
		}
		p.maxOverride = s.Config[chn+"MaxBrightnessOverride"]
		if !f.ch[i].probe(p) {
			return false
		}
	}
	return true
}

// probe opens the control files in reverse likelihood of existence: most
// LED directories have brightness, fewer have max_brightness, and only
// some have blink.
func (c *f5121Channel) probe(p f5121Paths) bool {
	ok := c.probeFiles(p)

	// max_brightness is only needed during probing.
	c.maxBrightness.close()
	if !ok {
		c.brightness.close()
		c.blink.close()
	}
	return ok
}

func (c *f5121Channel) probeFiles(p f5121Paths) bool {
	if !c.blink.openRW(p.blink) {
		return false
	}
	if !c.maxBrightness.openRead(p.maxBrightness) {
		return false
	}

	if override := parseNumber(p.maxOverride); override > 0 {
		c.maxBrightness.assume(override)
	} else {
		c.maxBrightness.refresh()
	}
	c.maxBrightness.logger.Debug("LED max brightness", "path", p.maxBrightness, "effective", c.maxBrightness.get())
	if c.maxBrightness.get() <= 0 {
		return false
	}

	return c.brightness.openRW(p.brightness)
}

func (c *f5121Channel) setValue(v int) {
	v = mathx.ScaleValue(v, c.maxBrightness.get())

	// Blinking at zero brightness is not blinking.
	if v <= 0 {
		c.controlBlink = false
	}

	// Switching modes leaves stale state on some kernels unless the old
	// mode is cancelled first: brightness=0 before blink=1, and blink=0
	// before brightness=n.
	if c.controlBlink {
		c.brightness.set(0)
		c.blink.set(1)
	} else {
		c.blink.set(0)
		c.brightness.set(v)
	}
}

func (c *f5121Channel) close() {
	c.maxBrightness.close()
	c.brightness.close()
	c.blink.close()
}

func (f *f5121) Name() string { return "f5121" }

// Capabilities reports no software breathing; the hardware soft-blink is preferred.
func (f *f5121) Capabilities() led.Capabilities {
	return led.Capabilities{}
}

func (f *f5121) Blink(onMs, offMs int) {
	for i := range f.ch {
		f.ch[i].controlBlink = onMs != 0 && offMs != 0
	}
}

func (f *f5121) Value(r, g, b int) {
	for i, v := range [3]int{r, g, b} {
		f.ch[i].setValue(v)
	}
}

func (f *f5121) Close() {
	for i := range f.ch {
		f.ch[i].close()
	}
}
