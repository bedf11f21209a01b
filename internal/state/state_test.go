package state

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Jeffail/gabs/v2"

	"PixelCtl/internal/color"
	"PixelCtl/internal/pixel"
	"PixelCtl/internal/protocol"
	"PixelCtl/internal/textlayer"
)

func newStore() *Store {
	return New(64, 32, 10)
}

func TestDefaults(t *testing.T) {
	snap := newStore().Snapshot()

	if snap.Settings.Brightness != 2 || snap.Settings.CompositionMode != pixel.Stack {
		t.Errorf("Settings = %+v", snap.Settings)
	}
	if snap.Settings.Locale != "en_US.UTF-8" {
		t.Errorf("Locale = %v", snap.Settings.Locale)
	}
	if len(snap.Text) != 2 {
		t.Errorf("len(Text) = %v, want 2", len(snap.Text))
	}
	if snap.CustomData.UpdateInterval != -1 {
		t.Errorf("CustomData = %+v", snap.CustomData)
	}
	if snap.Connection.State != protocol.Connecting {
		t.Errorf("Connection = %+v", snap.Connection)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := newStore()
	snap := s.Snapshot()
	snap.Text[0].Text = "changed"

	if s.Snapshot().Text[0].Text == "changed" {
		t.Error("mutating a snapshot changed the store")
	}
}

func TestSetBrightnessClamps(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 1}, {-3, 1}, {1, 1}, {8, 8}, {15, 15}, {16, 15}, {255, 15},
	}

	s := newStore()
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			if got := s.SetBrightness(tt.in); got != tt.want {
				t.Errorf("SetBrightness(%d) = %v, want %v", tt.in, got, tt.want)
			}
			if got := s.Snapshot().Settings.Brightness; got != tt.want {
				t.Errorf("stored brightness = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompositionMode(t *testing.T) {
	s := newStore()

	if got := s.SetCompositionMode(3); got != pixel.Stack {
		t.Errorf("SetCompositionMode(3) = %v, want stack", got)
	}
	if got := s.SetCompositionMode(-1); got != pixel.Stack {
		t.Errorf("SetCompositionMode(-1) = %v, want stack", got)
	}

	want := []pixel.Mode{pixel.Blend, pixel.Silhouette, pixel.Stack, pixel.Blend}
	for i, w := range want {
		if got := s.NextCompositionMode(); got != w {
			t.Errorf("step %d: NextCompositionMode() = %v, want %v", i, got, w)
		}
	}
}

func TestSetLocale(t *testing.T) {
	s := newStore()

	got, err := s.SetLocale("de-DE")
	if err != nil || got != "de_DE.UTF-8" {
		t.Errorf("SetLocale(de-DE) = %v, %v", got, err)
	}

	got, err = s.SetLocale("!!")
	if err == nil {
		t.Error("SetLocale(!!) should fail")
	}
	if got != "de_DE.UTF-8" || s.Snapshot().Settings.Locale != "de_DE.UTF-8" {
		t.Errorf("invalid locale replaced the previous one: %v", got)
	}
}

func TestTextOffsetsClamp(t *testing.T) {
	s := newStore()

	err := s.SetText([]textlayer.Line{
		{Text: "a", OffsetX: -25, OffsetY: 25, Size: 1, Line: 1},
	})
	if err != nil {
		t.Fatal(err)
	}

	l := s.Snapshot().Text[0]
	if l.OffsetX != -20 || l.OffsetY != 20 {
		t.Errorf("offsets = (%v, %v), want (-20, 20)", l.OffsetX, l.OffsetY)
	}
}

func TestTextLimits(t *testing.T) {
	s := newStore()

	if err := s.SetText(make([]textlayer.Line, 6)); !errors.Is(err, ErrTooManyLines) {
		t.Errorf("SetText(6 lines) error = %v, want ErrTooManyLines", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := s.AddText(textlayer.Line{Text: fmt.Sprint(i)}); err != nil {
			t.Fatalf("AddText() error = %v", err)
		}
	}
	if _, err := s.AddText(textlayer.Line{}); !errors.Is(err, ErrTooManyLines) {
		t.Errorf("AddText() past the limit error = %v, want ErrTooManyLines", err)
	}

	if err := s.RemoveText(0); err != nil {
		t.Fatal(err)
	}
	if err := s.RemoveText(9); !errors.Is(err, ErrNotFound) {
		t.Errorf("RemoveText(9) error = %v, want ErrNotFound", err)
	}
	if err := s.UpdateText(-1, textlayer.Line{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateText(-1) error = %v, want ErrNotFound", err)
	}

	if err := s.UpdateText(0, textlayer.Line{Text: "x", Size: 10}); err != nil {
		t.Fatal(err)
	}
	if l := s.Snapshot().Text[0]; l.Text != "x" || l.Size != textlayer.MaxSize {
		t.Errorf("Text[0] = %+v", l)
	}
	if got := len(s.Snapshot().Text); got != 4 {
		t.Errorf("len(Text) = %v, want 4", got)
	}
}

func TestSubscribeScopedToField(t *testing.T) {
	s := newStore()
	var calls []string

	s.Subscribe(FieldSettings, func(Snapshot) { calls = append(calls, "settings-1") })
	s.Subscribe(FieldSettings, func(Snapshot) { calls = append(calls, "settings-2") })
	cancel := s.Subscribe(FieldText, func(Snapshot) { calls = append(calls, "text") })

	s.SetBrightness(9)
	if fmt.Sprint(calls) != "[settings-1 settings-2]" {
		t.Errorf("calls = %v", calls)
	}

	calls = nil
	s.SetBrightness(9)
	if len(calls) != 0 {
		t.Errorf("unchanged value notified %v", calls)
	}

	s.AddText(textlayer.Line{Text: "hi"})
	if fmt.Sprint(calls) != "[text]" {
		t.Errorf("calls = %v, want [text]", calls)
	}

	calls = nil
	cancel()
	s.AddText(textlayer.Line{Text: "again"})
	if len(calls) != 0 {
		t.Errorf("cancelled subscriber still called: %v", calls)
	}
}

func TestSubscriberSeesNewValue(t *testing.T) {
	s := newStore()
	var seen int
	s.Subscribe(FieldSettings, func(snap Snapshot) { seen = snap.Settings.Brightness })

	s.SetBrightness(12)
	if seen != 12 {
		t.Errorf("subscriber saw %v, want 12", seen)
	}
}

func TestConnectionFlags(t *testing.T) {
	s := newStore()
	s.SetConnectionState(protocol.Open)
	s.SetSending(true)
	s.SetReceiving(true)

	c := s.Snapshot().Connection
	if !c.Sending || !c.Receiving || c.State != protocol.Open {
		t.Errorf("Connection = %+v", c)
	}

	s.SetConnectionState(protocol.Closed)
	c = s.Snapshot().Connection
	if c.Sending || c.Receiving {
		t.Errorf("flags survived disconnect: %+v", c)
	}

	s.SetUpdateProgress(40)
	if c := s.Snapshot().Connection; !c.UpdatePending || c.UpdatePercent != 40 {
		t.Errorf("Connection = %+v", c)
	}
	s.SetUpdateProgress(150)
	if c := s.Snapshot().Connection; c.UpdatePending || c.UpdatePercent != 100 {
		t.Errorf("Connection = %+v", c)
	}
}

func TestApplyRemote(t *testing.T) {
	s := newStore()
	var fields []string
	for _, f := range []Field{FieldSettings, FieldCustomData, FieldText} {
		f := f
		s.Subscribe(f, func(Snapshot) { fields = append(fields, f.String()) })
	}

	c, err := gabs.ParseJSON([]byte(`{
		"brightness": 40,
		"compositionMode": 3,
		"locale": "de_DE.UTF-8",
		"customDataServer": "http://x",
		"customDataInterval": 10,
		"customData": true
	}`))
	if err != nil {
		t.Fatal(err)
	}
	s.ApplyRemote(protocol.NewSettingsFrame(c))

	snap := s.Snapshot()
	if snap.Settings.Brightness != 15 || snap.Settings.CompositionMode != pixel.Stack || snap.Settings.Locale != "de_DE.UTF-8" {
		t.Errorf("Settings = %+v", snap.Settings)
	}
	if snap.CustomData != (protocol.CustomData{UpdateInterval: 10, Server: "http://x"}) {
		t.Errorf("CustomData = %+v", snap.CustomData)
	}
	if len(snap.Text) != 2 {
		t.Errorf("text without a text field in the frame changed: %+v", snap.Text)
	}
	if fmt.Sprint(fields) != "[settings customData]" {
		t.Errorf("notified %v", fields)
	}
}

func TestPersistedRoundTrip(t *testing.T) {
	s := newStore()
	s.SetBrightness(7)
	s.SetToolColor(color.RGB{R: 1})
	p := s.Persisted()

	other := newStore()
	if err := other.Restore(p); err != nil {
		t.Fatal(err)
	}

	got := other.Snapshot()
	if got.Settings.Brightness != 7 || got.Tool.Color != (color.RGB{R: 1}) || len(got.Text) != 2 {
		t.Errorf("restored = %+v", got)
	}
}
