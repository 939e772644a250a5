package maplayer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// rgb is a parsed 24-bit color.
type rgb struct {
	r, g, b uint8
}

// namedColors covers the CSS basic palette, which is all the layer styles
// in the wild use.
var namedColors = map[string]rgb{
	"black":   {0x00, 0x00, 0x00},
	"white":   {0xff, 0xff, 0xff},
	"red":     {0xff, 0x00, 0x00},
	"green":   {0x00, 0x80, 0x00},
	"blue":    {0x00, 0x00, 0xff},
	"yellow":  {0xff, 0xff, 0x00},
	"orange":  {0xff, 0xa5, 0x00},
	"purple":  {0x80, 0x00, 0x80},
	"gray":    {0x80, 0x80, 0x80},
	"grey":    {0x80, 0x80, 0x80},
	"cyan":    {0x00, 0xff, 0xff},
	"magenta": {0xff, 0x00, 0xff},
}

// parseColor accepts a CSS color name or a #rrggbb hex string.
func parseColor(s string) (rgb, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[name]; ok {
		return c, nil
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		v, err := strconv.ParseUint(name[1:], 16, 32)
		if err == nil {
			return rgb{uint8(v >> 16), uint8(v >> 8 & 0xff), uint8(v & 0xff)}, nil
		}
	}
	return rgb{}, eris.Errorf("maplayer: unknown color %q", s)
}

// lerp interpolates between lo and hi at t in [0,1].
func lerp(lo, hi rgb, t float64) rgb {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
	}
	return rgb{mix(lo.r, hi.r), mix(lo.g, hi.g), mix(lo.b, hi.b)}
}

// hex renders the color as #rrggbb.
func (c rgb) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b)
}
