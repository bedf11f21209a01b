package protocol

import (
	"encoding/json"

	"github.com/Jeffail/gabs/v2"

	"PixelCtl/internal/textlayer"
)

// SettingsFrame is the device's view of its configuration. Firmware versions differ in
// which fields they send, so every accessor reports whether its field was present.
type SettingsFrame struct {
	c *gabs.Container
}

func NewSettingsFrame(c *gabs.Container) SettingsFrame {
	if c == nil {
		c = gabs.New()
	}

	return SettingsFrame{c: c}
}

func (f SettingsFrame) number(path string) (int, bool) {
	v, ok := f.c.Path(path).Data().(float64)
	if !ok {
		return 0, false
	}

	return int(v), true
}

func (f SettingsFrame) text(path string) (string, bool) {
	v, ok := f.c.Path(path).Data().(string)
	return v, ok
}

func (f SettingsFrame) Brightness() (int, bool) {
	return f.number("brightness")
}

func (f SettingsFrame) CompositionMode() (int, bool) {
	return f.number("compositionMode")
}

func (f SettingsFrame) Locale() (string, bool) {
	return f.text("locale")
}

func (f SettingsFrame) Timezone() (string, bool) {
	return f.text("timezone")
}

// CustomData merges the flat customData* fields. A disabled feature reads as interval -1.
func (f SettingsFrame) CustomData() (CustomData, bool) {
	server, hasServer := f.text("customDataServer")
	interval, hasInterval := f.number("customDataInterval")
	enabled, hasEnabled := f.c.Path("customData").Data().(bool)

	if !hasServer && !hasInterval && !hasEnabled {
		return CustomData{}, false
	}

	if hasEnabled && !enabled {
		interval = -1
	}

	return CustomData{UpdateInterval: interval, Server: server}, true
}

// Text decodes the text lines. Entries that do not parse end the list.
func (f SettingsFrame) Text() ([]textlayer.Line, bool) {
	if !f.c.Exists("text") {
		return nil, false
	}

	lines := []textlayer.Line{}
	for _, child := range f.c.Path("text").Children() {
		var l textlayer.Line
		if err := json.Unmarshal(child.Bytes(), &l); err != nil {
			break
		}

		lines = append(lines, l.Clamp())
	}

	return lines, true
}

// WithoutText returns a copy of f with the text lines removed. f is left untouched.
func (f SettingsFrame) WithoutText() SettingsFrame {
	c, err := gabs.ParseJSON(f.c.Bytes())
	if err != nil {
		return NewSettingsFrame(nil)
	}

	c.Delete("text")
	return SettingsFrame{c: c}
}

func (f SettingsFrame) Bytes() []byte {
	return f.c.Bytes()
}
