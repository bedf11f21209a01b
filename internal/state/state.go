// Package state is the panel's single source of truth. Components read snapshots and
// subscribe to the fields they care about; every write goes through a setter that clamps
// its input.
package state

import (
	"errors"
	"slices"
	"sync"

	"PixelCtl/internal/color"
	"PixelCtl/internal/pixel"
	"PixelCtl/internal/protocol"
	"PixelCtl/internal/textlayer"
)

var (
	ErrTooManyLines = errors.New("too many text lines")
	ErrNotFound     = errors.New("no such text line")
)

// Field scopes a subscription.
type Field int

const (
	FieldSettings Field = iota
	FieldCustomData
	FieldText
	FieldTool
	FieldConnection
)

func (f Field) String() string {
	switch f {
	case FieldSettings:
		return "settings"
	case FieldCustomData:
		return "customData"
	case FieldText:
		return "text"
	case FieldTool:
		return "tool"
	case FieldConnection:
		return "connection"
	default:
		return "unknown"
	}
}

type Settings struct {
	Brightness      int        `json:"brightness" yaml:"brightness"`
	CompositionMode pixel.Mode `json:"compositionMode" yaml:"compositionMode"`
	Locale          string     `json:"locale" yaml:"locale"`
	Timezone        string     `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	Width           int        `json:"width" yaml:"width"`
	Height          int        `json:"height" yaml:"height"`
	PixelRatio      int        `json:"pixelRatio" yaml:"pixelRatio"`
}

type Tool struct {
	Color color.RGB `json:"color" yaml:"color"`
}

type Connection struct {
	State         protocol.State `json:"state"`
	Sending       bool           `json:"isSending"`
	Receiving     bool           `json:"isReceiving"`
	UpdatePending bool           `json:"updatePending"`
	UpdatePercent int            `json:"updatePercent"`
}

// Snapshot is a copy of the whole store. Mutating it does not touch the store.
type Snapshot struct {
	Settings   Settings            `json:"settings"`
	CustomData protocol.CustomData `json:"customData"`
	Text       []textlayer.Line    `json:"text"`
	Tool       Tool                `json:"tool"`
	Connection Connection          `json:"connection"`
}

// Persisted is the part of the state that is saved with a view.
type Persisted struct {
	Settings   Settings            `json:"settings"`
	CustomData protocol.CustomData `json:"customData"`
	Text       []textlayer.Line    `json:"text"`
	Tool       Tool                `json:"tool"`
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

type Store struct {
	mu     sync.Mutex
	snap   Snapshot
	nextID int
	subs   map[Field][]subscriber
}

// New returns a store with the panel defaults for a width x height matrix.
func New(width, height, pixelRatio int) *Store {
	return &Store{
		snap: Snapshot{
			Settings: Settings{
				Brightness:      2,
				CompositionMode: pixel.Stack,
				Locale:          "en_US.UTF-8",
				Width:           width,
				Height:          height,
				PixelRatio:      pixelRatio,
			},
			CustomData: protocol.CustomData{UpdateInterval: -1},
			Text:       textlayer.Defaults(),
			Tool:       Tool{Color: color.White},
			Connection: Connection{State: protocol.Connecting},
		},
		subs: make(map[Field][]subscriber),
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

func (s *Store) copyLocked() Snapshot {
	out := s.snap
	out.Text = slices.Clone(s.snap.Text)
	return out
}

// Subscribe calls fn with a fresh snapshot whenever field changes. Subscribers of one field
// run in subscription order, outside the store lock.
func (s *Store) Subscribe(field Field, fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs[field] = append(s.subs[field], subscriber{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.subs[field] = slices.DeleteFunc(slices.Clone(s.subs[field]), func(sub subscriber) bool {
			return sub.id == id
		})
	}
}

// update applies fn under the lock and notifies the fields it reports as changed.
func (s *Store) update(fn func(*Snapshot) []Field) {
	s.mu.Lock()
	changed := fn(&s.snap)
	if len(changed) == 0 {
		s.mu.Unlock()
		return
	}

	snap := s.copyLocked()
	var calls []func(Snapshot)
	for _, f := range changed {
		for _, sub := range s.subs[f] {
			calls = append(calls, sub.fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range calls {
		fn(snap)
	}
}

func changedIf(cond bool, f Field) []Field {
	if cond {
		return []Field{f}
	}

	return nil
}
