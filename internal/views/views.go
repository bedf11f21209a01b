// Package views keeps named snapshots of the panel (background pixels plus settings and
// text) in a JSON file.
package views

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"PixelCtl/internal/pixel"
	"PixelCtl/internal/state"
)

var ErrNotFound = errors.New("view not found")

type View struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Pixels   pixel.Batch     `json:"pixelData"`
	State    state.Persisted `json:"state"`
	Modified time.Time       `json:"modified"`
}

type file struct {
	Views map[string]View `json:"views"`
}

// Store is safe for concurrent use. Every change is written through to disk.
type Store struct {
	path string
	now  func() time.Time

	mu    sync.Mutex
	views map[string]View
}

// Open loads the views at path, creating an empty file when there is none.
func Open(path string) (*Store, error) {
	s := &Store{
		path:  path,
		now:   time.Now,
		views: make(map[string]View),
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		if err := s.save(); err != nil {
			return nil, err
		}
		return s, nil
	} else if err != nil {
		return nil, fmt.Errorf("unable to open views file %s: %w", path, err)
	}
	defer f.Close()

	var data file
	if err := json.NewDecoder(f).Decode(&data); err != nil {
		return nil, fmt.Errorf("unable to parse views file %s: %w", path, err)
	}
	for id, v := range data.Views {
		s.views[id] = v
	}

	return s, nil
}

func (s *Store) save() error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("unable to save views file %s: %w", s.path, err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(file{Views: s.views}); err != nil {
		return fmt.Errorf("unable to encode views file %s: %w", s.path, err)
	}

	return nil
}

// Save stores a view under id, or under a new id when id is empty, and returns it.
func (s *Store) Save(name string, pixels pixel.Batch, st state.Persisted, id string) (View, error) {
	if id == "" {
		id = uuid.NewString()
	}

	v := View{
		ID:       id,
		Name:     name,
		Pixels:   pixels,
		State:    st,
		Modified: s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.views[id]
	s.views[id] = v
	if err := s.save(); err != nil {
		if existed {
			s.views[id] = prev
		} else {
			delete(s.views, id)
		}
		return View{}, err
	}

	return v, nil
}

func (s *Store) Get(id string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[id]
	if !ok {
		return View{}, ErrNotFound
	}

	return v, nil
}

// List returns every view, most recently modified first.
func (s *Store) List() []View {
	s.mu.Lock()
	out := make([]View, 0, len(s.views))
	for _, v := range s.views {
		out = append(out, v)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Modified.Equal(out[j].Modified) {
			return out[i].ID < out[j].ID
		}
		return out[i].Modified.After(out[j].Modified)
	})

	return out
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[id]
	if !ok {
		return ErrNotFound
	}

	delete(s.views, id)
	if err := s.save(); err != nil {
		s.views[id] = v
		return err
	}

	return nil
}
