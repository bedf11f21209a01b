package color

import (
	"fmt"
	"strconv"
	"strings"
)

// Device is a 5-6-5 packed colour as understood by the matrix firmware.
type Device uint16

const MaxDevice Device = 0xffff

// String renders the value the way the firmware parses it (strtol base 16).
func (d Device) String() string {
	return fmt.Sprintf("0x%04x", uint16(d))
}

func (d Device) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Device) UnmarshalText(b []byte) error {
	v, err := ParseDevice(string(b))
	if err != nil {
		return err
	}

	*d = v
	return nil
}

// ToDevice re-quantizes an 8-bit-per-channel colour to 5-6-5. The coefficients round to
// the nearest representable level and match the values the firmware has always received.
func ToDevice(c RGB) Device {
	r := (uint32(c.R)*249 + 1014) >> 11
	g := (uint32(c.G)*253 + 505) >> 10
	b := (uint32(c.B)*249 + 1014) >> 11

	return Device(r<<11 | g<<5 | b)
}

// FromDevice expands a 5-6-5 value back to 8 bits per channel.
func FromDevice(d Device) RGB {
	r := (uint32(d) & 0xf800) >> 11
	g := (uint32(d) & 0x07e0) >> 5
	b := uint32(d) & 0x001f

	return RGB{
		R: uint8(r * 255 / 31),
		G: uint8(g * 255 / 63),
		B: uint8(b * 255 / 31),
	}
}

// Quantize returns the colour the device will actually show for c.
func Quantize(c RGB) RGB {
	return FromDevice(ToDevice(c))
}

// ParseDevice accepts "0x1f" style strings as produced by Device.String.
func ParseDevice(s string) (Device, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")

	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid device colour %q: %w", s, err)
	}

	return Device(v), nil
}
