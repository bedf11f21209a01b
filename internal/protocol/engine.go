package protocol

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var (
	ErrNotOpen = errors.New("connection is not open")
	ErrClosed  = errors.New("connection is closed")
)

// State of one device connection. Closed is terminal: reconnecting means a new Engine.
type State int32

const (
	Connecting State = iota
	Open
	Closed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Sleeper waits between paced messages. It returns early with ctx's error.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Engine is one session with the device.
type Engine struct {
	width, height int
	chunkSize     int
	chunkDelay    time.Duration
	stepDelay     time.Duration
	imageRows     int

	sleep     Sleeper
	listeners *Listeners
	logger    *zap.SugaredLogger
	onState   func(State)
	onSending func(bool)

	// writeMu serialises writes; the websocket allows one writer at a time.
	writeMu sync.Mutex
	mu      sync.Mutex
	state   State
	conn    Conn
}

type Option func(*Engine)

func WithGrid(width, height int) Option {
	return func(e *Engine) { e.width, e.height = width, height }
}

// WithPacing sets how many pixels go into one drawpixel message and how long to wait after
// each.
func WithPacing(chunkSize int, chunkDelay time.Duration) Option {
	return func(e *Engine) { e.chunkSize, e.chunkDelay = chunkSize, chunkDelay }
}

// WithStepDelay sets the pause between the messages of a full state push.
func WithStepDelay(d time.Duration) Option {
	return func(e *Engine) { e.stepDelay = d }
}

// WithImageRows caps drawImage at width*rows colours.
func WithImageRows(rows int) Option {
	return func(e *Engine) { e.imageRows = rows }
}

func WithSleeper(s Sleeper) Option {
	return func(e *Engine) { e.sleep = s }
}

// WithListeners shares a registry across engines so subscriptions survive reconnects.
func WithListeners(l *Listeners) Option {
	return func(e *Engine) { e.listeners = l }
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(e *Engine) { e.logger = logger }
}

// OnState is called after every state transition.
func OnState(fn func(State)) Option {
	return func(e *Engine) { e.onState = fn }
}

// OnSending is called with true before the first chunk of a pixel upload and with false
// once the last chunk has gone out.
func OnSending(fn func(bool)) Option {
	return func(e *Engine) { e.onSending = fn }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		width:      64,
		height:     32,
		chunkSize:  25,
		chunkDelay: 50 * time.Millisecond,
		stepDelay:  100 * time.Millisecond,
		imageRows:  200,
		sleep:      sleepContext,
		logger:     zap.NewNop().Sugar(),
		state:      Connecting,
	}
	for _, o := range opts {
		o(e)
	}

	if e.chunkSize < 1 {
		e.chunkSize = 1
	}
	if e.listeners == nil {
		e.listeners = NewListeners()
	}

	metricConnectionState.Set(float64(Connecting))
	return e
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) Listeners() *Listeners {
	return e.listeners
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	if e.state == s || e.state == Closed {
		e.mu.Unlock()
		return
	}
	e.state = s
	e.mu.Unlock()

	metricConnectionState.Set(float64(s))
	e.logger.Infow("device connection state changed", "state", s)

	if e.onState != nil {
		e.onState(s)
	}
}

// Attach hands the engine an established connection. The engine becomes Open and asks the
// device for its pixels and settings to catch up with anything missed while offline.
func (e *Engine) Attach(conn Conn) error {
	e.mu.Lock()
	if e.state != Connecting {
		e.mu.Unlock()
		return ErrClosed
	}
	e.conn = conn
	e.mu.Unlock()

	e.setState(Open)

	if err := e.Send(GetPixels{}); err != nil {
		return err
	}

	return e.Send(GetState{})
}

// Run reads frames and hands them to the listeners until the connection fails or ctx is
// done. The engine is Closed when Run returns.
func (e *Engine) Run(ctx context.Context) error {
	e.mu.Lock()
	conn := e.conn
	e.mu.Unlock()
	if conn == nil {
		return ErrNotOpen
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			e.Close()
		case <-done:
		}
	}()

	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			e.Close()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("device connection lost: %w", err)
		}

		msg, err := Decode(b)
		if err != nil {
			e.logger.Warnw("dropping malformed frame from device",
				"err", err)
			continue
		}

		if u, ok := msg.(Unknown); ok {
			e.logger.Debugw("ignoring frame with unknown action", "action", u.Action)
			metricMessagesRx.WithLabelValues("unknown").Inc()
			continue
		}

		metricMessagesRx.WithLabelValues(string(msg.Kind())).Inc()
		e.listeners.Emit(msg)
	}
}

// Close moves the engine to Closed and drops the connection.
func (e *Engine) Close() error {
	e.mu.Lock()
	conn := e.conn
	e.mu.Unlock()

	e.setState(Closed)

	if conn == nil {
		return nil
	}

	return conn.Close()
}

// Send writes one message. Nothing is queued: while the engine is not Open the message is
// dropped and ErrNotOpen returned.
func (e *Engine) Send(msg Outbound) error {
	e.mu.Lock()
	state, conn := e.state, e.conn
	e.mu.Unlock()

	if state != Open {
		return ErrNotOpen
	}

	b, err := Encode(msg)
	if err != nil {
		return err
	}

	e.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, b)
	e.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("unable to send %s: %w", msg.Action(), err)
	}

	metricMessagesTx.WithLabelValues(msg.Action()).Inc()
	return nil
}
