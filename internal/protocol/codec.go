package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/Jeffail/gabs/v2"
)

// Encode renders msg as the JSON object the firmware expects, tagged with its action.
func Encode(msg Outbound) ([]byte, error) {
	c := gabs.New()

	if p := msg.payload(); p != nil {
		b, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("unable to marshal %s: %w", msg.Action(), err)
		}

		c, err = gabs.ParseJSON(b)
		if err != nil {
			return nil, fmt.Errorf("unable to parse %s payload: %w", msg.Action(), err)
		}
	}

	if _, err := c.Set(msg.Action(), "action"); err != nil {
		return nil, fmt.Errorf("unable to tag %s: %w", msg.Action(), err)
	}

	return c.Bytes(), nil
}

// Decode parses one frame from the device. Frames with an unfamiliar action decode to
// Unknown; only malformed JSON is an error.
func Decode(b []byte) (Inbound, error) {
	c, err := gabs.ParseJSON(b)
	if err != nil {
		return nil, fmt.Errorf("unable to parse frame: %w", err)
	}

	action, _ := c.Path("action").Data().(string)

	switch Kind(action) {
	case KindPixels:
		var f PixelFrame
		if err := json.Unmarshal(b, &f); err != nil {
			return nil, fmt.Errorf("unable to decode pixel frame: %w", err)
		}
		if f.Layer == "" {
			f.Layer = LayerBackground
		}
		return f, nil

	case KindSettings:
		return NewSettingsFrame(c), nil

	case KindProgress:
		progress, _ := c.Path("progress").Data().(float64)
		return Progress{Progress: int(progress)}, nil

	default:
		return Unknown{Action: action}, nil
	}
}
