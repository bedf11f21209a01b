// Package color converts between the editor colour representation (24-bit RGB, written as
// #rrggbb) and the device's native 5-6-5 encoding.
package color

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is a 24-bit editor colour.
type RGB struct {
	R, G, B uint8
}

var (
	Black = RGB{}
	White = RGB{0xff, 0xff, 0xff}
)

// OffSentinel is what the device sends for an unlit pixel on older firmware.
const OffSentinel = "#0"

func (c RGB) Hex() string {
	return RGBToHex(c.R, c.G, c.B)
}

func (c RGB) String() string {
	return c.Hex()
}

func (c RGB) IsBlack() bool {
	return c == Black
}

// MarshalText lets RGB travel as "#rrggbb" in JSON and YAML.
func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

func (c *RGB) UnmarshalText(b []byte) error {
	v, err := ParseHex(string(b))
	if err != nil {
		return err
	}

	*c = v
	return nil
}

func RGBToHex(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// ParseHex parses #rrggbb, rrggbb and #rgb. The device's "#0" sentinel is black.
func ParseHex(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if s == OffSentinel {
		return Black, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}

	c, err := colorful.Hex(strings.ToLower(s))
	if err != nil {
		return Black, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}

	return fromColorful(c), nil
}

// MustParseHex is ParseHex for literals.
func MustParseHex(s string) RGB {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}

	return c
}

var (
	rgbFunc   = regexp.MustCompile(`^rgb\(?\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*\)?$`)
	rgbTriple = regexp.MustCompile(`^(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})$`)
	hexOnly   = regexp.MustCompile(`^#?[0-9A-Fa-f]{6}$`)
)

// ParseLoose accepts the formats a user may paste into a colour field: #rrggbb, rrggbb,
// rgb(r, g, b) and r, g, b. ok is false when nothing matches or a channel exceeds 255.
func ParseLoose(s string) (c RGB, ok bool) {
	s = strings.TrimSpace(s)

	if hexOnly.MatchString(s) {
		c, err := ParseHex(s)
		return c, err == nil
	}

	m := rgbFunc.FindStringSubmatch(s)
	if m == nil {
		m = rgbTriple.FindStringSubmatch(s)
	}
	if m == nil {
		return Black, false
	}

	var ch [3]uint8
	for i := range ch {
		v, err := strconv.Atoi(m[i+1])
		if err != nil || v > 255 {
			return Black, false
		}
		ch[i] = uint8(v)
	}

	return RGB{ch[0], ch[1], ch[2]}, true
}

// Blend mixes a towards b by t in [0,1].
func Blend(a, b RGB, t float64) RGB {
	return fromColorful(toColorful(a).BlendRgb(toColorful(b), t))
}

// Contrast picks black or white text for display on top of c.
func Contrast(c RGB) RGB {
	brightness := (int(c.R)*299 + int(c.G)*587 + int(c.B)*114) / 1000
	if brightness > 130 {
		return Black
	}

	return White
}

func toColorful(c RGB) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{r, g, b}
}
