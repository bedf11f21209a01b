package protocol

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
)

// Conn is the message oriented link to the device. *websocket.Conn satisfies it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Dial opens the device websocket at url, e.g. ws://pixelclock.local/ws.
func Dial(ctx context.Context, url string) (Conn, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, http.Header{})
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("unable to dial %s (status %d): %w", url, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("unable to dial %s: %w", url, err)
	}

	return conn, nil
}
