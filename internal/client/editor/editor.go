// Package editor implements the edit session of a list view: at most one
// draft at a time, either composing a new record or editing an existing one.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/sellingcar/internal/catalog"
	"github.com/dmitrijs2005/sellingcar/internal/client/models"
)

var (
	ErrNotAllowed     = errors.New("not allowed for this resource")
	ErrNoDraft        = errors.New("nothing is being edited")
	ErrUnknownField   = errors.New("unknown field")
	ErrReadOnlyField  = errors.New("field cannot be changed")
	ErrRecordNotFound = errors.New("record not found")
)

type Mode int

const (
	Idle Mode = iota
	Composing
	Editing
)

func (m Mode) String() string {
	switch m {
	case Composing:
		return "composing"
	case Editing:
		return "editing"
	default:
		return "idle"
	}
}

// Target is the part of the list store the session writes through.
type Target interface {
	Descriptor() *catalog.Descriptor
	Find(key models.Key) (models.Record, bool)
	Submit(ctx context.Context, body map[string]any, key models.Key) error
}

// Snapshot is a copy of the session state.
type Snapshot struct {
	Mode  Mode
	Key   models.Key
	Draft models.Draft
	Err   error
}

type Session struct {
	target Target
	desc   *catalog.Descriptor

	mu    sync.Mutex
	mode  Mode
	key   models.Key
	draft models.Draft
	err   error
	// bumped whenever the session switches target
	gen uint64
}

func New(t Target) *Session {
	return &Session{target: t, desc: t.Descriptor()}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Mode: s.mode, Key: s.key, Draft: s.draft.Clone(), Err: s.err}
}

// LastError is the inline error of the current draft.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) reset(mode Mode, key models.Key, draft models.Draft) {
	s.mode = mode
	s.key = key
	s.draft = draft
	s.err = nil
	s.gen++
}

// Add starts composing a new record, discarding any previous draft.
func (s *Session) Add() error {
	if !s.desc.Capabilities.Create {
		return fmt.Errorf("add %s: %w", s.desc.Name, ErrNotAllowed)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(Composing, nil, models.NewDraft(s.desc))
	return nil
}

// Edit starts editing the snapshot record with the given key, prefilling
// the draft from it and discarding any previous draft.
func (s *Session) Edit(key models.Key) error {
	if !s.desc.Capabilities.Edit {
		return fmt.Errorf("edit %s: %w", s.desc.Name, ErrNotAllowed)
	}
	rec, ok := s.target.Find(key)
	if !ok {
		return fmt.Errorf("%w: %s %s", ErrRecordNotFound, s.desc.Name, key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(Editing, key, models.DraftFromRecord(s.desc, rec))
	return nil
}

// SetField stores raw input and clears the last submit error. Key fields
// are locked while editing.
func (s *Session) SetField(name, value string) error {
	f, ok := s.desc.Field(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.mode {
	case Idle:
		return ErrNoDraft
	case Composing:
		if !f.Input {
			return fmt.Errorf("%w: %s", ErrReadOnlyField, name)
		}
	case Editing:
		if !f.Editable {
			return fmt.Errorf("%w: %s", ErrReadOnlyField, name)
		}
	}
	s.draft[name] = value
	s.err = nil
	return nil
}

// Cancel discards the draft.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(Idle, nil, nil)
}

// Submit coerces the draft and writes it through the store. On success the
// session returns to Idle; on failure it keeps the draft and records the
// error.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	mode, key, gen := s.mode, s.key, s.gen
	if mode == Idle {
		s.mu.Unlock()
		return ErrNoDraft
	}
	var (
		body map[string]any
		err  error
	)
	if mode == Composing {
		body, err = models.CreateBody(s.desc, s.draft)
	} else {
		body, err = models.UpdateBody(s.desc, s.draft)
	}
	if err != nil {
		s.err = err
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	err = s.target.Submit(ctx, body, key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		// the user moved on to another draft meanwhile
		return err
	}
	if err != nil {
		s.err = err
		return err
	}
	s.reset(Idle, nil, nil)
	return nil
}
