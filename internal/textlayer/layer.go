package textlayer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"PixelCtl/internal/font"
	"PixelCtl/internal/pixel"
)

// Layer owns the text overlay buffer. While any line shows the time it re-renders on a
// ticker; every Schedule call replaces the running ticker.
type Layer struct {
	buf      *pixel.Buffer
	interval time.Duration
	now      func() time.Time
	logger   *zap.SugaredLogger
	onRender func(*pixel.Buffer)

	mu     sync.Mutex
	lines  []Line
	locale string
	cancel context.CancelFunc
}

type Option func(*Layer)

func WithInterval(d time.Duration) Option {
	return func(l *Layer) { l.interval = d }
}

func WithClock(now func() time.Time) Option {
	return func(l *Layer) { l.now = now }
}

// WithOnRender sets a callback invoked after every ticker driven render.
func WithOnRender(fn func(*pixel.Buffer)) Option {
	return func(l *Layer) { l.onRender = fn }
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(l *Layer) { l.logger = logger }
}

func NewLayer(width, height int, opts ...Option) *Layer {
	l := &Layer{
		buf:      pixel.New(width, height),
		interval: time.Second,
		now:      time.Now,
		logger:   zap.NewNop().Sugar(),
	}
	for _, o := range opts {
		o(l)
	}

	return l
}

func (l *Layer) Buffer() *pixel.Buffer {
	return l.buf
}

// SetLocale changes the language of month and day names from the next render on.
func (l *Layer) SetLocale(locale string) {
	l.mu.Lock()
	l.locale = locale
	l.mu.Unlock()
}

// Render clears the overlay and draws lines in order, so later lines win where they
// overlap. The buffer is swapped in one step.
func (l *Layer) Render(lines []Line, now time.Time) {
	l.mu.Lock()
	locale := l.locale
	l.mu.Unlock()

	l.render(lines, locale, now)
}

func (l *Layer) render(lines []Line, locale string, now time.Time) {
	scratch := pixel.New(l.buf.Width(), l.buf.Height())

	for _, line := range lines {
		text := Resolve(line.Text, now, locale)
		x, y := Layout(line, text, scratch.Width())
		font.ForID(line.Font).Render(scratch, text, line.Color, x, y, line.Size)
	}

	l.buf.SetPixels(scratch.ReadAll())
}

// Schedule renders lines now and restarts the periodic re-render. The ticker only runs when
// a line contains a time directive.
func (l *Layer) Schedule(lines []Line) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stopLocked()

	l.lines = append([]Line(nil), lines...)
	l.render(l.lines, l.locale, l.now())

	if !HasClock(l.lines) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	go l.tick(ctx)

	l.logger.Debugw("clock re-render scheduled", "interval", l.interval)
}

func (l *Layer) tick(ctx context.Context) {
	t := time.NewTicker(l.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		l.mu.Lock()
		if ctx.Err() != nil {
			l.mu.Unlock()
			return
		}
		l.render(l.lines, l.locale, l.now())
		l.mu.Unlock()

		if l.onRender != nil {
			l.onRender(l.buf)
		}
	}
}

// Running reports whether a periodic re-render is active.
func (l *Layer) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancel != nil
}

func (l *Layer) Stop() {
	l.mu.Lock()
	l.stopLocked()
	l.mu.Unlock()
}

func (l *Layer) stopLocked() {
	if l.cancel == nil {
		return
	}

	l.cancel()
	l.cancel = nil
}
