package main

import (
	"context"
	"time"

	"PixelCtl/internal/protocol"
)

// dialer opens a connection to the device. protocol.Dial in production.
type dialer func(ctx context.Context, url string) (protocol.Conn, error)

// device keeps the panel connected to the matrix. Each connection gets its own engine,
// since a closed engine never opens again.
type device struct {
	url            string
	reconnectDelay time.Duration
	panel          *panel
	dial           dialer
}

func newDevice(url string, reconnectDelay time.Duration, p *panel) *device {
	return &device{
		url:            url,
		reconnectDelay: reconnectDelay,
		panel:          p,
		dial:           protocol.Dial,
	}
}

// run connects and serves the device until ctx is done. A reconnect delay of 0 means a
// lost connection is not redialled.
func (d *device) run(ctx context.Context) {
	for {
		d.connect(ctx)

		if ctx.Err() != nil || d.reconnectDelay == 0 {
			return
		}

		logger.Infow("reconnecting to device",
			"device", d.url,
			"in", d.reconnectDelay)

		select {
		case <-ctx.Done():
			return
		case <-time.After(d.reconnectDelay):
		}
	}
}

func (d *device) connect(ctx context.Context) {
	e := d.panel.newEngine()
	d.panel.setEngine(e)

	conn, err := d.dial(ctx, d.url)
	if err != nil {
		logger.Warnw("unable to connect to device",
			"device", d.url,
			"err", err)
		e.Close()
		return
	}

	logger.Infow("connected to device", "device", d.url)

	if err := e.Attach(conn); err != nil {
		logger.Warnw("unable to request device state",
			"device", d.url,
			"err", err)
	}

	if err := e.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Warnw("device disconnected",
			"device", d.url,
			"err", err)
	}
}
