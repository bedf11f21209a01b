package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"PixelCtl/internal/color"
	"PixelCtl/internal/pixel"
	"PixelCtl/internal/protocol"
	"PixelCtl/internal/state"
	"PixelCtl/internal/textlayer"
)

// Event is the envelope for everything exchanged with browser clients.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Events pushed to clients.
const (
	eventState   = "STATE"
	eventFrame   = "FRAME"
	eventPreview = "PREVIEW"
	eventError   = "ERROR"
)

var metricConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "pixelctl_connected_clients",
	Help: "The number of browser clients currently connected",
})

type Client struct {
	Conn *websocket.Conn
	send chan Event
}

// hub fans panel changes out to every connected browser and applies their edits.
type hub struct {
	panel    *panel
	upgrader websocket.Upgrader

	lock    sync.Mutex
	clients map[*Client]struct{}
}

func newHub(p *panel) *hub {
	h := &hub{
		panel: p,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*Client]struct{}),
	}

	for _, f := range []state.Field{
		state.FieldSettings,
		state.FieldCustomData,
		state.FieldText,
		state.FieldTool,
		state.FieldConnection,
	} {
		p.state.Subscribe(f, h.broadcastState)
	}

	// Browsers keep their own canvas, so device frames are forwarded as they arrive.
	p.listeners.Subscribe(protocol.KindPixels, func(msg protocol.Inbound) {
		h.broadcast(eventFrame, msg)
	})

	// The clock changed the text layer; clients refetch the preview.
	p.setOnTextRender(func() {
		h.broadcast(eventPreview, nil)
	})

	return h
}

func (h *hub) broadcastState(s state.Snapshot) {
	h.broadcast(eventState, s)
}

func (h *hub) broadcast(typ string, v any) {
	e, err := newEvent(typ, v)
	if err != nil {
		logger.Errorw("unable to encode event",
			"event", typ,
			"err", err)
		return
	}

	h.lock.Lock()
	defer h.lock.Unlock()

	for c := range h.clients {
		select {
		case c.send <- e:
		default:
			logger.Debugw("client is not keeping up, dropping event",
				"event", typ,
				"remote", c.Conn.RemoteAddr().String())
		}
	}
}

func newEvent(typ string, v any) (Event, error) {
	if v == nil {
		return Event{Type: typ}, nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return Event{}, err
	}

	return Event{Type: typ, Data: b}, nil
}

func (h *hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnw("unable to upgrade client connection",
			"err", err)
		return
	}

	c := &Client{Conn: conn, send: make(chan Event, 32)}

	h.lock.Lock()
	h.clients[c] = struct{}{}
	h.lock.Unlock()
	metricConnectedClients.Inc()

	logger.Debugw("client connected",
		"remote", conn.RemoteAddr().String())

	if e, err := newEvent(eventState, h.panel.state.Snapshot()); err == nil {
		c.send <- e
	}

	go c.Writer()
	c.Listener(h)

	h.lock.Lock()
	delete(h.clients, c)
	h.lock.Unlock()
	metricConnectedClients.Dec()

	close(c.send)
	conn.Close()
}

// Writer owns the write side of the connection until send is closed.
func (c *Client) Writer() {
	for e := range c.send {
		if err := c.Conn.WriteJSON(e); err != nil {
			logger.Debugw("unable to write to client",
				"err", err)
		}
	}
}

func (c *Client) reply(typ string, v any) {
	e, err := newEvent(typ, v)
	if err != nil {
		return
	}

	select {
	case c.send <- e:
	default:
	}
}

func (c *Client) Listener(h *hub) {
	for {
		var e Event
		err := c.Conn.ReadJSON(&e)
		if err != nil {
			logger.Debugw("client disconnected",
				"err", err)
			return
		}

		// Offline edits are kept locally; the snapshot already tells the client.
		err = c.handle(context.Background(), h.panel, e)
		if err != nil && !errors.Is(err, protocol.ErrNotOpen) {
			logger.Warnw("unable to handle client event",
				"event", e.Type,
				"err", err)
			c.reply(eventError, err.Error())
		}
	}
}

func (c *Client) handle(ctx context.Context, p *panel, e Event) error {
	switch e.Type {
	case "DRAW":
		var batch pixel.Batch
		if err := json.Unmarshal(e.Data, &batch); err != nil {
			return err
		}
		return p.drawPixels(ctx, batch)

	case "FILL":
		var c color.RGB
		if err := json.Unmarshal(e.Data, &c); err != nil {
			return err
		}
		return p.fill(ctx, c)

	case "CLEAR":
		return p.clear(ctx)

	case "TEXT":
		var lines []textlayer.Line
		if err := json.Unmarshal(e.Data, &lines); err != nil {
			return err
		}
		return p.setText(lines)

	case "BRIGHTNESS":
		var b int
		if err := json.Unmarshal(e.Data, &b); err != nil {
			return err
		}
		_, err := p.setBrightness(ctx, b)
		return err

	case "COMPOSITION":
		var mode *int
		if len(e.Data) > 0 {
			if err := json.Unmarshal(e.Data, &mode); err != nil {
				return err
			}
		}
		_, err := p.setCompositionMode(ctx, mode)
		return err

	case "LOCALE":
		var locale string
		if err := json.Unmarshal(e.Data, &locale); err != nil {
			return err
		}
		_, err := p.setLocale(ctx, locale)
		return err

	case "TOOL":
		var c color.RGB
		if err := json.Unmarshal(e.Data, &c); err != nil {
			return err
		}
		p.state.SetToolColor(c)
		return nil

	default:
		logger.Warnw("received unknown event from web client",
			"event", e.Type)
		return nil
	}
}
