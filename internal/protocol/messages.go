// Package protocol speaks to the matrix over its websocket: it encodes commands, decodes
// frames, paces pixel uploads and reassembles the pixel dumps the device sends back.
package protocol

import (
	"PixelCtl/internal/color"
	"PixelCtl/internal/pixel"
	"PixelCtl/internal/textlayer"
)

// Outbound is a message the panel sends to the device.
type Outbound interface {
	Action() string
	payload() any
}

type (
	Clear     struct{}
	Reset     struct{}
	GetPixels struct{}
	GetState  struct{}

	// SetText replaces every text line on the device.
	SetText struct {
		Lines []textlayer.Line
	}

	SetCustomData struct {
		Options CustomData
	}

	SetCompositionMode struct {
		Mode pixel.Mode
	}

	SetBrightness struct {
		Brightness int
	}

	SetLocale struct {
		Locale string
	}

	SetTimezone struct {
		Timezone string
	}

	Fill struct {
		Color color.RGB
	}

	// DrawPixel is one chunk of an incremental edit.
	DrawPixel struct {
		Pixels pixel.Batch
	}

	// DrawImage is a whole background in row-major order without coordinates.
	DrawImage struct {
		Colors []color.RGB
	}
)

// CustomData points the device at a server it polls for extra text.
type CustomData struct {
	UpdateInterval int    `json:"updateInterval" yaml:"updateInterval"`
	Server         string `json:"server" yaml:"server"`
}

// Brightness limits of the matrix driver.
const (
	MinBrightness = 1
	MaxBrightness = 15
)

func ClampBrightness(b int) int {
	if b < MinBrightness {
		return MinBrightness
	}
	if b > MaxBrightness {
		return MaxBrightness
	}

	return b
}

func (Clear) Action() string              { return "clear" }
func (Reset) Action() string              { return "reset" }
func (GetPixels) Action() string          { return "getPixels" }
func (GetState) Action() string           { return "getState" }
func (SetText) Action() string            { return "setText" }
func (SetCustomData) Action() string      { return "customData" }
func (SetCompositionMode) Action() string { return "compositionMode" }
func (SetBrightness) Action() string      { return "setBrightness" }
func (SetLocale) Action() string          { return "setLocale" }
func (SetTimezone) Action() string        { return "setTimeZone" }
func (Fill) Action() string               { return "fill" }
func (DrawPixel) Action() string          { return "drawpixel" }
func (DrawImage) Action() string          { return "drawImage" }

type wireLine struct {
	Text    string          `json:"text"`
	Size    int             `json:"size"`
	Align   textlayer.Align `json:"align"`
	OffsetX int             `json:"offsetX"`
	OffsetY int             `json:"offsetY"`
	Color   color.Device    `json:"color"`
	Font    int             `json:"font"`
	Line    int             `json:"line"`
}

type wirePixel struct {
	P [2]int       `json:"p"`
	C color.Device `json:"c"`
}

func (Clear) payload() any     { return nil }
func (Reset) payload() any     { return nil }
func (GetPixels) payload() any { return nil }
func (GetState) payload() any  { return nil }

func (m SetText) payload() any {
	lines := make([]wireLine, 0, len(m.Lines))
	for _, l := range textlayer.ClampAll(m.Lines) {
		lines = append(lines, wireLine{
			Text:    l.Text,
			Size:    l.Size,
			Align:   l.Align,
			OffsetX: l.OffsetX,
			OffsetY: l.OffsetY,
			Color:   color.ToDevice(l.Color),
			Font:    int(l.Font),
			Line:    l.Line,
		})
	}

	return struct {
		Text []wireLine `json:"text"`
	}{lines}
}

func (m SetCustomData) payload() any {
	return struct {
		Options CustomData `json:"options"`
	}{m.Options}
}

func (m SetCompositionMode) payload() any {
	return struct {
		Mode int `json:"mode"`
	}{int(pixel.NormalizeMode(int(m.Mode)))}
}

func (m SetBrightness) payload() any {
	return struct {
		Brightness int `json:"brightness"`
	}{ClampBrightness(m.Brightness)}
}

func (m SetLocale) payload() any {
	return struct {
		Locale string `json:"locale"`
	}{m.Locale}
}

func (m SetTimezone) payload() any {
	return struct {
		Timezone string `json:"timezone"`
	}{m.Timezone}
}

func (m Fill) payload() any {
	return struct {
		Color color.Device `json:"color"`
	}{color.ToDevice(m.Color)}
}

func (m DrawPixel) payload() any {
	data := make([]wirePixel, len(m.Pixels))
	for i, p := range m.Pixels {
		data[i] = wirePixel{P: [2]int{p.X, p.Y}, C: color.ToDevice(p.C)}
	}

	return struct {
		Data []wirePixel `json:"data"`
	}{data}
}

func (m DrawImage) payload() any {
	data := make([]color.Device, len(m.Colors))
	for i, c := range m.Colors {
		data[i] = color.ToDevice(c)
	}

	return struct {
		Data []color.Device `json:"data"`
	}{data}
}

// Kind names a category of inbound message. Listeners subscribe by kind.
type Kind string

const (
	KindPixels   Kind = "matrixPixels"
	KindSettings Kind = "matrixSettings"
	KindProgress Kind = "updateProgress"
	KindUnknown  Kind = ""
)

// Inbound is a message the device sends to the panel.
type Inbound interface {
	Kind() Kind
}

// PixelFrame carries rows [Start, End) of one layer. Colours are "#rrggbb" strings or the
// off sentinel.
type PixelFrame struct {
	Start int        `json:"line-start"`
	End   int        `json:"line-end"`
	Layer string     `json:"layer"`
	Data  [][]string `json:"data"`
}

// Progress reports a firmware update in percent.
type Progress struct {
	Progress int `json:"progress"`
}

// Unknown is anything with an action this package does not know. It is never delivered.
type Unknown struct {
	Action string
}

func (PixelFrame) Kind() Kind    { return KindPixels }
func (SettingsFrame) Kind() Kind { return KindSettings }
func (Progress) Kind() Kind      { return KindProgress }
func (Unknown) Kind() Kind       { return KindUnknown }

// Background and text layer names used in pixel frames.
const (
	LayerBackground = "bg"
	LayerText       = "text"
)
