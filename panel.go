package main

import (
	"context"
	"errors"
	"sync"
	"time"

	"PixelCtl/internal/color"
	"PixelCtl/internal/config"
	"PixelCtl/internal/pixel"
	"PixelCtl/internal/protocol"
	"PixelCtl/internal/state"
	"PixelCtl/internal/textlayer"
	"PixelCtl/internal/views"
)

const (
	textDebounce = 350 * time.Millisecond

	// The device keeps the TZ string in a 64 byte buffer.
	maxTimezoneLen = 63
)

var errInvalidTimezone = errors.New("timezone must be a POSIX TZ string of 1 to 63 bytes")

// panel owns the local copy of the matrix and routes every change to the device.
type panel struct {
	cfg         config.Config
	state       *state.Store
	bg          *pixel.Buffer
	text        *textlayer.Layer
	listeners   *protocol.Listeners
	reassembler *protocol.Reassembler
	views       *views.Store
	queue       *dispatchQueue

	// engineOpts are appended to every engine the panel builds.
	engineOpts   []protocol.Option
	textDebounce time.Duration

	lock         sync.Mutex
	engine       *protocol.Engine
	onTextRender func()

	// textGen counts local text edits; textSent is the last one handed to the device.
	textGen  uint64
	textSent uint64
}

func newPanel(cfg config.Config, vs *views.Store) *panel {
	p := &panel{
		cfg:          cfg,
		state:        state.New(cfg.Width, cfg.Height, cfg.PixelRatio),
		bg:           pixel.New(cfg.Width, cfg.Height),
		listeners:    protocol.NewListeners(),
		views:        vs,
		queue:        newDispatchQueue(),
		textDebounce: textDebounce,
	}

	p.text = textlayer.NewLayer(cfg.Width, cfg.Height,
		textlayer.WithLogger(logger),
		textlayer.WithOnRender(func(*pixel.Buffer) { p.textRendered() }))
	p.reassembler = protocol.NewReassembler(p.bg, p.state.SetReceiving, logger)

	p.listeners.Subscribe(protocol.KindPixels, func(msg protocol.Inbound) {
		p.reassembler.Apply(msg.(protocol.PixelFrame))
	})
	p.listeners.Subscribe(protocol.KindSettings, func(msg protocol.Inbound) {
		f := msg.(protocol.SettingsFrame)
		if p.textPending() {
			// The device still has the text from before the edit.
			f = f.WithoutText()
		}
		p.state.ApplyRemote(f)
	})
	p.listeners.Subscribe(protocol.KindProgress, func(msg protocol.Inbound) {
		p.state.SetUpdateProgress(msg.(protocol.Progress).Progress)
	})

	p.state.Subscribe(state.FieldText, func(s state.Snapshot) {
		p.text.Schedule(s.Text)
	})
	p.state.Subscribe(state.FieldSettings, func(s state.Snapshot) {
		p.text.SetLocale(s.Settings.Locale)
		p.text.Schedule(s.Text)
	})

	snap := p.state.Snapshot()
	p.text.SetLocale(snap.Settings.Locale)
	p.text.Schedule(snap.Text)

	return p
}

// start runs the dispatch queue until ctx is done.
func (p *panel) start(ctx context.Context) {
	go p.queue.queueWatcher(ctx)
	go func() {
		<-ctx.Done()
		p.text.Stop()
	}()
}

// newEngine builds an engine for one device connection. Engines are single use, so the
// supervisor asks for a new one on every dial.
func (p *panel) newEngine() *protocol.Engine {
	opts := []protocol.Option{
		protocol.WithGrid(p.cfg.Width, p.cfg.Height),
		protocol.WithPacing(p.cfg.ChunkSize, p.cfg.ChunkDelay),
		protocol.WithImageRows(p.cfg.ImageRows),
		protocol.WithListeners(p.listeners),
		protocol.WithLogger(logger),
		protocol.OnState(p.state.SetConnectionState),
		protocol.OnSending(p.state.SetSending),
	}

	return protocol.NewEngine(append(opts, p.engineOpts...)...)
}

func (p *panel) setEngine(e *protocol.Engine) {
	p.lock.Lock()
	p.engine = e
	p.lock.Unlock()

	p.state.SetConnectionState(e.State())
}

// setOnTextRender registers fn to run after every clock driven re-render of the text layer.
func (p *panel) setOnTextRender(fn func()) {
	p.lock.Lock()
	p.onTextRender = fn
	p.lock.Unlock()
}

func (p *panel) textRendered() {
	p.lock.Lock()
	fn := p.onTextRender
	p.lock.Unlock()

	if fn != nil {
		fn()
	}
}

func (p *panel) currentEngine() (*protocol.Engine, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.engine == nil {
		return nil, protocol.ErrNotOpen
	}

	return p.engine, nil
}

// dispatch queues fn against the current engine and waits for it.
func (p *panel) dispatch(ctx context.Context, name string, fn func(context.Context, *protocol.Engine) error) error {
	return p.queue.do(ctx, name, func(qctx context.Context) error {
		e, err := p.currentEngine()
		if err != nil {
			return err
		}

		return fn(qctx, e)
	})
}

func (p *panel) send(ctx context.Context, msg protocol.Outbound) error {
	return p.dispatch(ctx, msg.Action(), func(_ context.Context, e *protocol.Engine) error {
		return e.Send(msg)
	})
}

func (p *panel) drawPixels(ctx context.Context, batch pixel.Batch) error {
	batch = batch.Filter(p.cfg.Width, p.cfg.Height)
	p.bg.SetPixels(batch)

	return p.dispatch(ctx, "drawpixel", func(qctx context.Context, e *protocol.Engine) error {
		return e.DrawPixels(qctx, batch)
	})
}

func (p *panel) drawImage(ctx context.Context, batch pixel.Batch) error {
	p.bg.SetPixels(batch)

	return p.dispatch(ctx, "drawImage", func(_ context.Context, e *protocol.Engine) error {
		return e.DrawImage(batch)
	})
}

func (p *panel) fill(ctx context.Context, c color.RGB) error {
	p.bg.Fill(c)
	return p.send(ctx, protocol.Fill{Color: c})
}

func (p *panel) clear(ctx context.Context) error {
	p.bg.Clear()
	return p.send(ctx, protocol.Clear{})
}

// syncText pushes the text lines as they are now once edits have settled. Typing in the
// editor produces a burst of changes and only the last one matters to the device.
func (p *panel) syncText() {
	lines := p.state.Snapshot().Text

	p.lock.Lock()
	p.textGen++
	gen := p.textGen
	p.lock.Unlock()

	fn := func(ctx context.Context) error {
		defer p.textDone(gen)

		e, err := p.currentEngine()
		if err != nil {
			return err
		}
		return e.SetText(lines)
	}

	if p.textDebounce <= 0 {
		if !p.queue.enqueue(job{name: "setText", fn: fn}) {
			p.textDone(gen)
		}
		return
	}

	p.queue.later("setText", p.textDebounce, fn)
}

// textPending reports whether a local edit has not reached the device yet.
func (p *panel) textPending() bool {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.textSent != p.textGen
}

func (p *panel) textDone(gen uint64) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if gen > p.textSent {
		p.textSent = gen
	}
}

func (p *panel) setText(lines []textlayer.Line) error {
	if err := p.state.SetText(lines); err != nil {
		return err
	}

	p.syncText()
	return nil
}

func (p *panel) addText(l textlayer.Line) (int, error) {
	i, err := p.state.AddText(l)
	if err != nil {
		return 0, err
	}

	p.syncText()
	return i, nil
}

func (p *panel) updateText(i int, l textlayer.Line) error {
	if err := p.state.UpdateText(i, l); err != nil {
		return err
	}

	p.syncText()
	return nil
}

func (p *panel) removeText(i int) error {
	if err := p.state.RemoveText(i); err != nil {
		return err
	}

	p.syncText()
	return nil
}

func (p *panel) setBrightness(ctx context.Context, b int) (int, error) {
	b = p.state.SetBrightness(b)
	return b, p.send(ctx, protocol.SetBrightness{Brightness: b})
}

// setCompositionMode stores mode, or the next mode in the cycle when mode is nil.
func (p *panel) setCompositionMode(ctx context.Context, mode *int) (pixel.Mode, error) {
	var m pixel.Mode
	if mode == nil {
		m = p.state.NextCompositionMode()
	} else {
		m = p.state.SetCompositionMode(*mode)
	}

	return m, p.send(ctx, protocol.SetCompositionMode{Mode: m})
}

func (p *panel) setLocale(ctx context.Context, locale string) (string, error) {
	locale, err := p.state.SetLocale(locale)
	if err != nil {
		return locale, err
	}

	return locale, p.send(ctx, protocol.SetLocale{Locale: locale})
}

// setTimezone takes a POSIX TZ string such as "CET-1CEST,M3.5.0,M10.5.0/3".
func (p *panel) setTimezone(ctx context.Context, tz string) error {
	if tz == "" || len(tz) > maxTimezoneLen {
		return errInvalidTimezone
	}

	p.state.SetTimezone(tz)
	return p.send(ctx, protocol.SetTimezone{Timezone: tz})
}

func (p *panel) setCustomData(ctx context.Context, cd protocol.CustomData) error {
	p.state.SetCustomData(cd)
	return p.send(ctx, protocol.SetCustomData{Options: cd})
}

func (p *panel) reset(ctx context.Context) error {
	return p.send(ctx, protocol.Reset{})
}

// pull asks the device for its pixels and settings. The answers arrive through the
// listeners.
func (p *panel) pull(ctx context.Context) error {
	if err := p.send(ctx, protocol.GetPixels{}); err != nil {
		return err
	}

	return p.send(ctx, protocol.GetState{})
}

// sync overwrites the device with the local state.
func (p *panel) sync(ctx context.Context) error {
	snap := p.state.Snapshot()
	full := protocol.FullState{
		Text:            snap.Text,
		CustomData:      snap.CustomData,
		CompositionMode: snap.Settings.CompositionMode,
		Brightness:      snap.Settings.Brightness,
		Background:      p.bg.ReadAll(),
	}

	return p.dispatch(ctx, "sync", func(qctx context.Context, e *protocol.Engine) error {
		return e.SyncFullState(qctx, full)
	})
}

// preview composites both layers the way the device would.
func (p *panel) preview() *pixel.Buffer {
	mode := p.state.Snapshot().Settings.CompositionMode
	return pixel.Composite(p.bg, p.text.Buffer(), mode)
}

func (p *panel) saveView(name, id string) (views.View, error) {
	return p.views.Save(name, p.bg.Lit(), p.state.Persisted(), id)
}

// loadView restores a saved view locally and then pushes it to the device. The local
// restore stands even when the device is unreachable.
func (p *panel) loadView(ctx context.Context, id string) (views.View, error) {
	v, err := p.views.Get(id)
	if err != nil {
		return views.View{}, err
	}

	if err := p.state.Restore(v.State); err != nil {
		return v, err
	}

	p.bg.Clear()
	p.bg.SetPixels(v.Pixels)

	if err := p.sync(ctx); err != nil && !errors.Is(err, protocol.ErrNotOpen) {
		return v, err
	}

	return v, nil
}
