package window

import (
	"errors"
	"slices"

	"github.com/bryanchriswhite/gamewatch/internal/logger"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Handler is invoked for every window that carries the marker property.
type Handler interface {
	Handle(win xproto.Window) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(win xproto.Window) error

func (f HandlerFunc) Handle(win xproto.Window) error { return f(win) }

// Dispatcher routes server events to a Handler.
type Dispatcher struct {
	conn    Conn
	marker  xproto.Atom
	handler Handler
}

func NewDispatcher(conn Conn, marker xproto.Atom, handler Handler) *Dispatcher {
	return &Dispatcher{conn: conn, marker: marker, handler: handler}
}

// Dispatch handles one event. Per-window failures and handler errors are
// logged and dropped; only a connection failure, whether seen here or by
// the handler, is returned.
func (d *Dispatcher) Dispatch(ev xgb.Event) error {
	switch e := ev.(type) {
	case xproto.CreateNotifyEvent:
		return d.windowCreated(e.Window)
	case xproto.PropertyNotifyEvent:
		if e.Atom == d.marker {
			return d.invoke(e.Window)
		}
	}
	return nil
}

func (d *Dispatcher) windowCreated(win xproto.Window) error {
	atoms, err := d.conn.ListProperties(win)
	if err != nil {
		if errors.Is(err, ErrConnection) {
			return err
		}
		// Short-lived windows are often gone before we get here.
		logger.WithComponent("dispatch").Debug().Err(err).
			Str("window", windowID(win)).
			Msg("Dropping create event for vanished window")
		return nil
	}
	if slices.Contains(atoms, d.marker) {
		return d.invoke(win)
	}
	return nil
}

// invoke runs the handler. A handler that lost the connection stops the
// watch like any other connection failure.
func (d *Dispatcher) invoke(win xproto.Window) error {
	err := d.handler.Handle(win)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrConnection) {
		return err
	}
	logger.WithComponent("dispatch").Warn().Err(err).
		Str("window", windowID(win)).
		Msg("Handler failed")
	return nil
}
