// Package view binds one resource's list store and edit session to a
// deterministic frame model and a plain-text rendering of it.
package view

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/sellingcar/internal/catalog"
	"github.com/dmitrijs2005/sellingcar/internal/client/client"
	"github.com/dmitrijs2005/sellingcar/internal/client/editor"
	"github.com/dmitrijs2005/sellingcar/internal/client/models"
	"github.com/dmitrijs2005/sellingcar/internal/client/store"
	"github.com/dmitrijs2005/sellingcar/internal/logging"
)

const EmptyMessage = "No records found."

// Event is a user intent routed by Dispatch.
type Event interface{ event() }

type (
	AddIntent     struct{}
	EditIntent    struct{ Key models.Key }
	FieldChange   struct{ Name, Value string }
	SubmitIntent  struct{}
	CancelIntent  struct{}
	DeleteIntent  struct{ Key models.Key }
	RefreshIntent struct{}
)

func (AddIntent) event()     {}
func (EditIntent) event()    {}
func (FieldChange) event()   {}
func (SubmitIntent) event()  {}
func (CancelIntent) event()  {}
func (DeleteIntent) event()  {}
func (RefreshIntent) event() {}

type Option func(*View)

// WithWidth sets the function reporting the available line width; zero
// disables truncation.
func WithWidth(fn func() int) Option {
	return func(v *View) { v.width = fn }
}

type View struct {
	desc   *catalog.Descriptor
	store  *store.Store
	editor *editor.Session
	log    logging.Logger
	width  func() int

	mu      sync.Mutex
	lastErr error
}

func New(st *store.Store, log logging.Logger, opts ...Option) *View {
	v := &View{
		desc:   st.Descriptor(),
		store:  st,
		editor: editor.New(st),
		log:    log,
		width:  TerminalWidth,
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

func (v *View) Descriptor() *catalog.Descriptor { return v.desc }

// Mount performs the initial load. A failure is shown in the frame.
func (v *View) Mount(ctx context.Context) error {
	return v.Dispatch(ctx, RefreshIntent{})
}

// Unmount detaches the view; late results are discarded.
func (v *View) Unmount() {
	v.editor.Cancel()
	v.store.Close()
}

func (v *View) setErr(err error) {
	v.mu.Lock()
	v.lastErr = err
	v.mu.Unlock()
}

// Dispatch applies one event. Failures become the frame's error line and
// are also returned.
func (v *View) Dispatch(ctx context.Context, ev Event) error {
	var err error
	switch e := ev.(type) {
	case AddIntent:
		err = v.editor.Add()
	case EditIntent:
		err = v.editor.Edit(e.Key)
	case FieldChange:
		err = v.editor.SetField(e.Name, e.Value)
	case SubmitIntent:
		err = v.editor.Submit(ctx)
	case CancelIntent:
		v.editor.Cancel()
	case DeleteIntent:
		err = v.delete(ctx, e.Key)
	case RefreshIntent:
		err = v.store.Load(ctx)
	default:
		err = fmt.Errorf("unsupported event %T", ev)
	}
	v.setErr(err)
	if err != nil {
		v.log.Debug(ctx, "dispatch failed", "resource", v.desc.Name, "event", fmt.Sprintf("%T", ev), "error", err)
	}
	return err
}

func (v *View) delete(ctx context.Context, key models.Key) error {
	if !v.desc.Capabilities.Delete {
		return fmt.Errorf("delete %s: %w", v.desc.Name, editor.ErrNotAllowed)
	}
	if err := v.store.Delete(ctx, key); err != nil {
		return err
	}
	if snap := v.editor.Snapshot(); snap.Mode == editor.Editing && snap.Key.Equal(key) {
		v.editor.Cancel()
	}
	return nil
}

// Message turns an error into the inline text shown to the user.
func Message(err error) string {
	var (
		se *client.ServerError
		ve *models.ValidationError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Error()
	case errors.As(err, &se) && se.Message != "":
		return se.Message
	case errors.Is(err, client.ErrUnavailable):
		return "cannot reach the server, try again"
	case errors.Is(err, client.ErrUnauthorized):
		return "not authorized, please log in"
	case errors.Is(err, store.ErrClosed):
		return "view closed"
	default:
		return err.Error()
	}
}
