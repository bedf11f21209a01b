package main

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/Jeffail/gabs/v2"

	"PixelCtl/internal/color"
	"PixelCtl/internal/config"
	"PixelCtl/internal/pixel"
	"PixelCtl/internal/protocol"
	"PixelCtl/internal/textlayer"
	"PixelCtl/internal/views"
)

// fakeConn records writes and serves reads from a channel.
type fakeConn struct {
	mu   sync.Mutex
	sent []*gabs.Container

	in     chan []byte
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case b, ok := <-c.in:
		if !ok {
			return 0, nil, io.EOF
		}
		return 1, b, nil
	case <-c.closed:
		return 0, nil, errors.New("use of closed connection")
	}
}

func (c *fakeConn) WriteMessage(_ int, b []byte) error {
	msg, err := gabs.ParseJSON(b)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.sent = append(c.sent, msg)
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) actions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, len(c.sent))
	for i, m := range c.sent {
		out[i], _ = m.Path("action").Data().(string)
	}
	return out
}

// last returns the most recent message with action, or nil.
func (c *fakeConn) last(action string) *gabs.Container {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.sent) - 1; i >= 0; i-- {
		if a, _ := c.sent[i].Path("action").Data().(string); a == action {
			return c.sent[i]
		}
	}
	return nil
}

var (
	red   = color.RGB{R: 0xff}
	green = color.RGB{G: 0xff}
	blue  = color.RGB{B: 0xff}
)

func noSleep(context.Context, time.Duration) error { return nil }

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// newTestPanel returns a running panel with no device attached.
func newTestPanel(t *testing.T) *panel {
	t.Helper()

	cfg := config.Default()
	cfg.ChunkDelay = 0
	cfg.ViewsFile = filepath.Join(t.TempDir(), "views.json")

	vs, err := views.Open(cfg.ViewsFile)
	if err != nil {
		t.Fatal(err)
	}

	p := newPanel(cfg, vs)
	p.textDebounce = 0
	p.engineOpts = []protocol.Option{protocol.WithSleeper(noSleep)}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	p.start(ctx)

	return p
}

// connect attaches a fake device to p and returns it once the initial pull is sent.
func connect(t *testing.T, p *panel) *fakeConn {
	t.Helper()

	conn := newFakeConn()
	e := p.newEngine()
	p.setEngine(e)
	if err := e.Attach(conn); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go e.Run(ctx)

	return conn
}

func TestPanelNotConnected(t *testing.T) {
	p := newTestPanel(t)

	b, err := p.setBrightness(context.Background(), 9)
	if !errors.Is(err, protocol.ErrNotOpen) {
		t.Errorf("setBrightness() error = %v, want ErrNotOpen", err)
	}
	if b != 9 || p.state.Snapshot().Settings.Brightness != 9 {
		t.Errorf("brightness not kept locally: %v", b)
	}
}

func TestPanelAttachPulls(t *testing.T) {
	p := newTestPanel(t)
	conn := connect(t, p)

	if got := conn.actions(); !slices.Equal(got, []string{"getPixels", "getState"}) {
		t.Errorf("actions = %v", got)
	}
	if s := p.state.Snapshot().Connection.State; s != protocol.Open {
		t.Errorf("connection state = %v, want open", s)
	}
}

func TestPanelDrawPixels(t *testing.T) {
	p := newTestPanel(t)
	conn := connect(t, p)

	batch := make(pixel.Batch, 0, 60)
	for i := 0; i < 60; i++ {
		batch = append(batch, pixel.Pixel{X: i, Y: 1, C: red})
	}
	batch = append(batch, pixel.Pixel{X: 64, Y: 0, C: red})

	if err := p.drawPixels(context.Background(), batch); err != nil {
		t.Fatal(err)
	}

	var sizes []int
	conn.mu.Lock()
	for _, m := range conn.sent {
		if a, _ := m.Path("action").Data().(string); a == "drawpixel" {
			n, _ := m.Path("data").ArrayCount()
			sizes = append(sizes, n)
		}
	}
	conn.mu.Unlock()

	if !slices.Equal(sizes, []int{25, 25, 10}) {
		t.Errorf("chunk sizes = %v, want [25 25 10]", sizes)
	}
	if c, _ := p.bg.ReadPixel(59, 1); c != red {
		t.Errorf("background not updated locally: %v", c)
	}
	if p.state.Snapshot().Connection.Sending {
		t.Error("sending flag left set after dispatch")
	}
}

func TestPanelDispatchesInOrder(t *testing.T) {
	p := newTestPanel(t)
	conn := connect(t, p)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			batch := pixel.Batch{}
			for x := 0; x < 30; x++ {
				batch = append(batch, pixel.Pixel{X: x, Y: i, C: blue})
			}
			if err := p.drawPixels(context.Background(), batch); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	// Each dispatch is 25 + 5; chunks of one dispatch are never split by another.
	var rows []float64
	conn.mu.Lock()
	for _, m := range conn.sent {
		if a, _ := m.Path("action").Data().(string); a == "drawpixel" {
			y, _ := m.Path("data.0.p.1").Data().(float64)
			rows = append(rows, y)
		}
	}
	conn.mu.Unlock()

	if len(rows) != 6 {
		t.Fatalf("got %d drawpixel messages, want 6", len(rows))
	}
	for i := 0; i < len(rows); i += 2 {
		if rows[i] != rows[i+1] {
			t.Errorf("dispatches interleaved: rows = %v", rows)
		}
	}
}

func TestPanelTextIsSent(t *testing.T) {
	p := newTestPanel(t)
	conn := connect(t, p)

	lines := []textlayer.Line{{Text: "Hi", Size: 1, Color: color.White, Line: 1}}
	if err := p.setText(lines); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "setText", func() bool { return conn.last("setText") != nil })

	msg := conn.last("setText")
	if n, _ := msg.Path("text").ArrayCount(); n != 1 {
		t.Errorf("setText lines = %d, want 1", n)
	}
	if s, _ := msg.Path("text.0.text").Data().(string); s != "Hi" {
		t.Errorf("setText text = %q", s)
	}
}

func TestPanelTextDebounce(t *testing.T) {
	p := newTestPanel(t)
	conn := connect(t, p)
	p.textDebounce = 30 * time.Millisecond

	for _, s := range []string{"H", "He", "Hel", "Hell", "Hello"} {
		if err := p.setText([]textlayer.Line{{Text: s, Size: 1, Color: color.White, Line: 1}}); err != nil {
			t.Fatal(err)
		}
	}

	waitFor(t, "setText", func() bool { return conn.last("setText") != nil })
	time.Sleep(60 * time.Millisecond)

	n := 0
	for _, a := range conn.actions() {
		if a == "setText" {
			n++
		}
	}
	if n != 1 {
		t.Errorf("sent %d setText messages, want 1", n)
	}
	if s, _ := conn.last("setText").Path("text.0.text").Data().(string); s != "Hello" {
		t.Errorf("setText text = %q, want the last edit", s)
	}
}

func TestPanelKeepsTextEditOverDeviceEcho(t *testing.T) {
	p := newTestPanel(t)
	conn := connect(t, p)
	p.textDebounce = 50 * time.Millisecond

	text := func() string {
		lines := p.state.Snapshot().Text
		if len(lines) == 0 {
			return ""
		}
		return lines[0].Text
	}

	if err := p.setText([]textlayer.Line{{Text: "NEW", Size: 1, Color: color.White, Line: 1}}); err != nil {
		t.Fatal(err)
	}

	// The device answers a settings change with its old text while the edit is still waiting.
	conn.in <- []byte(`{"action":"matrixSettings","brightness":7,"text":[{"text":"OLD","size":1,"line":1,"color":"#FFFFFF"}]}`)
	waitFor(t, "settings", func() bool { return p.state.Snapshot().Settings.Brightness == 7 })

	if got := text(); got != "NEW" {
		t.Errorf("local text after echo = %q, want NEW", got)
	}

	waitFor(t, "setText", func() bool { return conn.last("setText") != nil })
	if s, _ := conn.last("setText").Path("text.0.text").Data().(string); s != "NEW" {
		t.Errorf("setText text = %q, want NEW", s)
	}

	// Once the edit is out, the device is authoritative again.
	waitFor(t, "edit delivered", func() bool { return !p.textPending() })
	conn.in <- []byte(`{"action":"matrixSettings","text":[{"text":"REMOTE","size":1,"line":1,"color":"#FFFFFF"}]}`)
	waitFor(t, "remote text", func() bool { return text() == "REMOTE" })
}

func TestPanelAppliesDeviceFrames(t *testing.T) {
	p := newTestPanel(t)
	conn := connect(t, p)

	conn.in <- []byte(`{"action":"matrixSettings","brightness":11,"compositionMode":2,"locale":"de_DE.UTF-8"}`)
	conn.in <- []byte(`{"action":"matrixPixels","line-start":0,"line-end":1,"data":[["#0","#ff0000"]]}`)
	conn.in <- []byte(`{"action":"updateProgress","progress":40}`)

	waitFor(t, "settings", func() bool { return p.state.Snapshot().Settings.Brightness == 11 })
	waitFor(t, "pixels", func() bool {
		c, _ := p.bg.ReadPixel(1, 0)
		return c == red
	})
	waitFor(t, "progress", func() bool { return p.state.Snapshot().Connection.UpdatePercent == 40 })

	s := p.state.Snapshot()
	if s.Settings.CompositionMode != pixel.Silhouette || s.Settings.Locale != "de_DE.UTF-8" {
		t.Errorf("settings = %+v", s.Settings)
	}
	if !s.Connection.UpdatePending {
		t.Error("update should be pending at 40%")
	}
	if !p.reassembler.Receiving() {
		t.Error("receiving should stay set until the last row")
	}
}

func TestPanelCompositionCycle(t *testing.T) {
	p := newTestPanel(t)
	conn := connect(t, p)

	var got []pixel.Mode
	for i := 0; i < 3; i++ {
		m, err := p.setCompositionMode(context.Background(), nil)
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, m)
	}

	if !slices.Equal(got, []pixel.Mode{pixel.Blend, pixel.Silhouette, pixel.Stack}) {
		t.Errorf("cycle = %v", got)
	}

	three := 3
	if m, _ := p.setCompositionMode(context.Background(), &three); m != pixel.Stack {
		t.Errorf("mode 3 = %v, want stack", m)
	}
	if v, _ := conn.last("compositionMode").Path("mode").Data().(float64); v != 0 {
		t.Errorf("sent mode = %v, want 0", v)
	}
}

func TestPanelTimezone(t *testing.T) {
	p := newTestPanel(t)
	conn := connect(t, p)

	if err := p.setTimezone(context.Background(), "CET-1CEST,M3.5.0,M10.5.0/3"); err != nil {
		t.Fatal(err)
	}
	if tz, _ := conn.last("setTimeZone").Path("timezone").Data().(string); tz != "CET-1CEST,M3.5.0,M10.5.0/3" {
		t.Errorf("sent timezone = %q", tz)
	}

	if err := p.setTimezone(context.Background(), ""); !errors.Is(err, errInvalidTimezone) {
		t.Errorf("empty timezone error = %v", err)
	}
}

func TestPanelSync(t *testing.T) {
	p := newTestPanel(t)
	conn := connect(t, p)

	if err := p.sync(context.Background()); err != nil {
		t.Fatal(err)
	}

	want := []string{"getPixels", "getState", "setText", "customData", "compositionMode", "setBrightness", "drawImage"}
	if got := conn.actions(); !slices.Equal(got, want) {
		t.Errorf("actions = %v, want %v", got, want)
	}
	if n, _ := conn.last("drawImage").Path("data").ArrayCount(); n != 64*32 {
		t.Errorf("drawImage has %d colours, want %d", n, 64*32)
	}
}

func TestPanelViews(t *testing.T) {
	p := newTestPanel(t)
	conn := connect(t, p)

	p.bg.SetPixel(3, 4, green)
	p.state.SetBrightness(12)

	v, err := p.saveView("green", "")
	if err != nil {
		t.Fatal(err)
	}

	p.bg.Clear()
	p.state.SetBrightness(1)

	if _, err := p.loadView(context.Background(), v.ID); err != nil {
		t.Fatal(err)
	}

	if c, _ := p.bg.ReadPixel(3, 4); c != green {
		t.Errorf("pixel after load = %v", c)
	}
	if b := p.state.Snapshot().Settings.Brightness; b != 12 {
		t.Errorf("brightness after load = %d", b)
	}
	if v, _ := conn.last("setBrightness").Path("brightness").Data().(float64); v != 12 {
		t.Errorf("sync sent brightness %v", v)
	}
}

func TestPanelPreview(t *testing.T) {
	p := newTestPanel(t)
	if err := p.state.SetText(nil); err != nil {
		t.Fatal(err)
	}
	p.bg.SetPixel(0, 0, red)

	out := p.preview()
	if c, _ := out.ReadPixel(0, 0); c != red {
		t.Errorf("preview pixel = %v", c)
	}
}
