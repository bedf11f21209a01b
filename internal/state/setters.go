package state

import (
	"slices"

	"PixelCtl/internal/color"
	"PixelCtl/internal/pixel"
	"PixelCtl/internal/protocol"
	"PixelCtl/internal/textlayer"
)

// SetBrightness clamps b to the driver range and returns the stored value.
func (s *Store) SetBrightness(b int) int {
	b = protocol.ClampBrightness(b)
	s.update(func(snap *Snapshot) []Field {
		old := snap.Settings.Brightness
		snap.Settings.Brightness = b
		return changedIf(old != b, FieldSettings)
	})

	return b
}

// SetCompositionMode wraps anything outside the known modes to Stack.
func (s *Store) SetCompositionMode(m int) pixel.Mode {
	mode := pixel.NormalizeMode(m)
	s.update(func(snap *Snapshot) []Field {
		old := snap.Settings.CompositionMode
		snap.Settings.CompositionMode = mode
		return changedIf(old != mode, FieldSettings)
	})

	return mode
}

// NextCompositionMode cycles stack, blend, silhouette and back.
func (s *Store) NextCompositionMode() pixel.Mode {
	var mode pixel.Mode
	s.update(func(snap *Snapshot) []Field {
		mode = snap.Settings.CompositionMode.Next()
		snap.Settings.CompositionMode = mode
		return []Field{FieldSettings}
	})

	return mode
}

// SetLocale normalises locale to the POSIX form. An unparsable locale leaves the current one
// in place and is returned as an error.
func (s *Store) SetLocale(locale string) (string, error) {
	normalized, err := textlayer.NormalizeLocale(locale)
	if err != nil {
		return s.Snapshot().Settings.Locale, err
	}

	s.update(func(snap *Snapshot) []Field {
		old := snap.Settings.Locale
		snap.Settings.Locale = normalized
		return changedIf(old != normalized, FieldSettings)
	})

	return normalized, nil
}

func (s *Store) SetTimezone(tz string) {
	s.update(func(snap *Snapshot) []Field {
		old := snap.Settings.Timezone
		snap.Settings.Timezone = tz
		return changedIf(old != tz, FieldSettings)
	})
}

func (s *Store) SetCustomData(cd protocol.CustomData) {
	s.update(func(snap *Snapshot) []Field {
		old := snap.CustomData
		snap.CustomData = cd
		return changedIf(old != cd, FieldCustomData)
	})
}

// SetText replaces all lines. More than MaxLines is refused.
func (s *Store) SetText(lines []textlayer.Line) error {
	if len(lines) > textlayer.MaxLines {
		return ErrTooManyLines
	}

	clamped := textlayer.ClampAll(lines)
	s.update(func(snap *Snapshot) []Field {
		if slices.Equal(snap.Text, clamped) {
			return nil
		}
		snap.Text = clamped
		return []Field{FieldText}
	})

	return nil
}

// AddText appends l and returns its index.
func (s *Store) AddText(l textlayer.Line) (int, error) {
	var (
		index int
		err   error
	)
	s.update(func(snap *Snapshot) []Field {
		if len(snap.Text) >= textlayer.MaxLines {
			err = ErrTooManyLines
			return nil
		}
		snap.Text = append(slices.Clone(snap.Text), l.Clamp())
		index = len(snap.Text) - 1
		return []Field{FieldText}
	})

	return index, err
}

// UpdateText replaces the line at index i in place.
func (s *Store) UpdateText(i int, l textlayer.Line) error {
	var err error
	s.update(func(snap *Snapshot) []Field {
		if i < 0 || i >= len(snap.Text) {
			err = ErrNotFound
			return nil
		}
		l = l.Clamp()
		if snap.Text[i] == l {
			return nil
		}
		snap.Text = slices.Clone(snap.Text)
		snap.Text[i] = l
		return []Field{FieldText}
	})

	return err
}

func (s *Store) RemoveText(i int) error {
	var err error
	s.update(func(snap *Snapshot) []Field {
		if i < 0 || i >= len(snap.Text) {
			err = ErrNotFound
			return nil
		}
		snap.Text = slices.Delete(slices.Clone(snap.Text), i, i+1)
		return []Field{FieldText}
	})

	return err
}

func (s *Store) SetToolColor(c color.RGB) {
	s.update(func(snap *Snapshot) []Field {
		old := snap.Tool.Color
		snap.Tool.Color = c
		return changedIf(old != c, FieldTool)
	})
}

// SetConnectionState records a new engine state. Leaving Open clears the in flight flags.
func (s *Store) SetConnectionState(st protocol.State) {
	s.update(func(snap *Snapshot) []Field {
		old := snap.Connection
		snap.Connection.State = st
		if st != protocol.Open {
			snap.Connection.Sending = false
			snap.Connection.Receiving = false
		}
		return changedIf(old != snap.Connection, FieldConnection)
	})
}

func (s *Store) SetSending(v bool) {
	s.update(func(snap *Snapshot) []Field {
		old := snap.Connection.Sending
		snap.Connection.Sending = v
		return changedIf(old != v, FieldConnection)
	})
}

func (s *Store) SetReceiving(v bool) {
	s.update(func(snap *Snapshot) []Field {
		old := snap.Connection.Receiving
		snap.Connection.Receiving = v
		return changedIf(old != v, FieldConnection)
	})
}

// SetUpdateProgress tracks a firmware update. 100 ends it.
func (s *Store) SetUpdateProgress(pct int) {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	s.update(func(snap *Snapshot) []Field {
		old := snap.Connection
		snap.Connection.UpdatePercent = pct
		snap.Connection.UpdatePending = pct < 100
		return changedIf(old != snap.Connection, FieldConnection)
	})
}

// ApplyRemote merges a settings frame from the device. Only fields present in the frame
// are touched, and they go through the same clamps as local edits.
func (s *Store) ApplyRemote(f protocol.SettingsFrame) {
	brightness, hasBrightness := f.Brightness()
	mode, hasMode := f.CompositionMode()
	locale, hasLocale := f.Locale()
	tz, hasTZ := f.Timezone()
	cd, hasCD := f.CustomData()
	lines, hasText := f.Text()

	if hasLocale {
		if n, err := textlayer.NormalizeLocale(locale); err == nil {
			locale = n
		} else {
			hasLocale = false
		}
	}
	if len(lines) > textlayer.MaxLines {
		lines = lines[:textlayer.MaxLines]
	}

	s.update(func(snap *Snapshot) []Field {
		var changed []Field

		settings := snap.Settings
		if hasBrightness {
			settings.Brightness = protocol.ClampBrightness(brightness)
		}
		if hasMode {
			settings.CompositionMode = pixel.NormalizeMode(mode)
		}
		if hasLocale {
			settings.Locale = locale
		}
		if hasTZ {
			settings.Timezone = tz
		}
		if settings != snap.Settings {
			snap.Settings = settings
			changed = append(changed, FieldSettings)
		}

		if hasCD && cd != snap.CustomData {
			snap.CustomData = cd
			changed = append(changed, FieldCustomData)
		}

		if hasText && !slices.Equal(lines, snap.Text) {
			snap.Text = lines
			changed = append(changed, FieldText)
		}

		return changed
	})
}

func (s *Store) Persisted() Persisted {
	snap := s.Snapshot()
	return Persisted{
		Settings:   snap.Settings,
		CustomData: snap.CustomData,
		Text:       snap.Text,
		Tool:       snap.Tool,
	}
}

// Restore loads a saved view's state. The grid size is kept, since it belongs to the
// hardware and not to the view.
func (s *Store) Restore(p Persisted) error {
	if len(p.Text) > textlayer.MaxLines {
		return ErrTooManyLines
	}
	lines := textlayer.ClampAll(p.Text)

	locale, err := textlayer.NormalizeLocale(p.Settings.Locale)

	s.update(func(snap *Snapshot) []Field {
		settings := snap.Settings
		settings.Brightness = protocol.ClampBrightness(p.Settings.Brightness)
		settings.CompositionMode = pixel.NormalizeMode(int(p.Settings.CompositionMode))
		if err == nil {
			settings.Locale = locale
		}
		settings.Timezone = p.Settings.Timezone

		snap.Settings = settings
		snap.CustomData = p.CustomData
		snap.Text = lines
		snap.Tool = p.Tool

		return []Field{FieldSettings, FieldCustomData, FieldText, FieldTool}
	})

	return nil
}
