package protocol

import (
	"context"
	"time"

	"PixelCtl/internal/color"
	"PixelCtl/internal/pixel"
	"PixelCtl/internal/textlayer"
)

// DrawPixels uploads an incremental edit. The batch is split into drawpixel messages of the
// configured chunk size with a pause after each, so the device can keep up. Pixels outside
// the grid are never sent. The first failed send ends the upload; nothing is retried.
func (e *Engine) DrawPixels(ctx context.Context, batch pixel.Batch) error {
	batch = batch.Filter(e.width, e.height)
	if len(batch) == 0 {
		return nil
	}

	start := time.Now()
	e.sending(true)
	defer func() {
		e.sending(false)
		metricDispatchTime.Observe(time.Since(start).Seconds())
	}()

	for i := 0; i < len(batch); i += e.chunkSize {
		end := i + e.chunkSize
		if end > len(batch) {
			end = len(batch)
		}

		if err := e.Send(DrawPixel{Pixels: batch[i:end]}); err != nil {
			return err
		}

		if err := e.sleep(ctx, e.chunkDelay); err != nil {
			return err
		}
	}

	return nil
}

func (e *Engine) sending(v bool) {
	if e.onSending != nil {
		e.onSending(v)
	}
}

// DrawImage replaces the whole background in one message. Only colours travel; the device
// places them row by row. Anything past width*imageRows colours is cut off.
func (e *Engine) DrawImage(batch pixel.Batch) error {
	limit := e.width * e.imageRows
	if len(batch) > limit {
		batch = batch[:limit]
	}

	colors := make([]color.RGB, len(batch))
	for i, p := range batch {
		colors[i] = p.C
	}

	return e.Send(DrawImage{Colors: colors})
}

func (e *Engine) Clear() error {
	return e.Send(Clear{})
}

func (e *Engine) SetText(lines []textlayer.Line) error {
	return e.Send(SetText{Lines: lines})
}

func (e *Engine) SetCustomData(cd CustomData) error {
	return e.Send(SetCustomData{Options: cd})
}

// SetCompositionMode wraps out of range modes to Stack and returns the mode sent.
func (e *Engine) SetCompositionMode(mode int) (pixel.Mode, error) {
	m := pixel.NormalizeMode(mode)
	return m, e.Send(SetCompositionMode{Mode: m})
}

// SetBrightness clamps to the driver range and returns the value sent.
func (e *Engine) SetBrightness(b int) (int, error) {
	b = ClampBrightness(b)
	return b, e.Send(SetBrightness{Brightness: b})
}

func (e *Engine) SetLocale(locale string) error {
	return e.Send(SetLocale{Locale: locale})
}

func (e *Engine) SetTimezone(tz string) error {
	return e.Send(SetTimezone{Timezone: tz})
}

func (e *Engine) Reset() error {
	return e.Send(Reset{})
}

func (e *Engine) GetPixels() error {
	return e.Send(GetPixels{})
}

func (e *Engine) GetState() error {
	return e.Send(GetState{})
}

func (e *Engine) Fill(c color.RGB) error {
	return e.Send(Fill{Color: c})
}

// FullState is everything SyncFullState pushes to the device.
type FullState struct {
	Text            []textlayer.Line
	CustomData      CustomData
	CompositionMode pixel.Mode
	Brightness      int
	Background      pixel.Batch
}

// SyncFullState overwrites the device with s: text, custom data, composition mode,
// brightness and finally the background image, pausing between each step.
func (e *Engine) SyncFullState(ctx context.Context, s FullState) error {
	steps := []Outbound{
		SetText{Lines: s.Text},
		SetCustomData{Options: s.CustomData},
		SetCompositionMode{Mode: s.CompositionMode},
		SetBrightness{Brightness: s.Brightness},
	}

	for _, msg := range steps {
		if err := e.Send(msg); err != nil {
			return err
		}

		if err := e.sleep(ctx, e.stepDelay); err != nil {
			return err
		}
	}

	return e.DrawImage(s.Background)
}
