package protocol

import (
	"sync"

	"go.uber.org/zap"

	"PixelCtl/internal/color"
	"PixelCtl/internal/pixel"
)

// Reassembler writes the background rows of pixel frames into a buffer. A dump starts with
// a frame at line 0 and ends with the frame whose end line is the buffer height; the device
// splits it over as many frames as it likes.
type Reassembler struct {
	buf         *pixel.Buffer
	onReceiving func(bool)
	logger      *zap.SugaredLogger

	mu        sync.Mutex
	line      int
	receiving bool
}

func NewReassembler(buf *pixel.Buffer, onReceiving func(bool), logger *zap.SugaredLogger) *Reassembler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Reassembler{
		buf:         buf,
		onReceiving: onReceiving,
		logger:      logger,
	}
}

// Apply consumes one frame. Text layer frames are ignored.
func (r *Reassembler) Apply(f PixelFrame) {
	if f.Layer == LayerText {
		return
	}

	r.mu.Lock()

	started := false
	if f.Start == 0 {
		started = !r.receiving
		r.receiving = true
		r.line = 0
	} else if f.Start != r.line {
		r.logger.Debugw("pixel frame out of sequence",
			"expected", r.line,
			"start", f.Start)
		r.line = f.Start
	}

	for _, row := range f.Data {
		if r.line >= r.buf.Height() {
			break
		}

		batch := make(pixel.Batch, 0, len(row))
		for x, s := range row {
			c, err := color.ParseHex(s)
			if err != nil {
				c = color.Black
			}
			batch = append(batch, pixel.Pixel{X: x, Y: r.line, C: c})
		}
		r.buf.SetPixels(batch)

		r.line++
	}

	finished := false
	if f.End == r.buf.Height() {
		finished = r.receiving
		r.receiving = false
	}

	r.mu.Unlock()

	if r.onReceiving == nil {
		return
	}
	if started {
		r.onReceiving(true)
	}
	if finished {
		r.onReceiving(false)
	}
}

func (r *Reassembler) Receiving() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.receiving
}

// Line is the next row the reassembler expects.
func (r *Reassembler) Line() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.line
}
