package window

import (
	"fmt"

	"github.com/bryanchriswhite/gamewatch/internal/logger"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/res"
	"github.com/jezek/xgb/xproto"
)

// Conn is the slice of the X11 protocol the watcher needs. Every component
// receives it explicitly; there is no package-level connection.
//
// Errors returned by implementations wrap ErrProtocol or ErrConnection.
type Conn interface {
	// Root returns the root window of the given screen. A negative screen
	// selects the server's default screen.
	Root(screen int) (xproto.Window, error)

	// InternAtom maps a name to its atom, creating it if needed.
	InternAtom(name string) (xproto.Atom, error)

	// SelectEvents sets the event mask on win and waits for the server to
	// accept or reject it.
	SelectEvents(win xproto.Window, mask uint32) error

	// PollEvent returns the next queued event without blocking. It returns
	// nil, nil when the queue is empty.
	PollEvent() (xgb.Event, error)

	// ListProperties returns the atoms of all properties set on win.
	ListProperties(win xproto.Window) ([]xproto.Atom, error)

	// GetProperty reads up to length 32-bit units of prop from win.
	GetProperty(win xproto.Window, prop, typ xproto.Atom, length uint32) (*xproto.GetPropertyReply, error)

	// QueryClientIDs issues an X-Resource QueryClientIds request.
	QueryClientIDs(specs ...res.ClientIdSpec) (*res.QueryClientIdsReply, error)

	// Ping makes a round trip to the server. An empty event queue looks the
	// same as a dead connection to PollEvent; Ping tells them apart.
	Ping() error
}

// X11Conn implements Conn on top of an xgb connection.
type X11Conn struct {
	conn   *xgb.Conn
	resErr error
}

// Dial connects to the X server named by display, or $DISPLAY when empty.
func Dial(display string) (*X11Conn, error) {
	var (
		conn *xgb.Conn
		err  error
	)
	if display == "" {
		conn, err = xgb.NewConn()
	} else {
		conn, err = xgb.NewConnDisplay(display)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to X server: %w", ErrConnection, err)
	}
	return NewX11Conn(conn), nil
}

// NewX11Conn wraps an established xgb connection. The X-Resource extension
// is optional: without it QueryClientIDs fails and pid resolution relies on
// window properties alone.
func NewX11Conn(conn *xgb.Conn) *X11Conn {
	c := &X11Conn{conn: conn}
	if err := res.Init(conn); err != nil {
		c.resErr = err
		logger.WithComponent("x11").Warn().Err(err).
			Msg("X-Resource extension unavailable, client-id pid fallback disabled")
	}
	return c
}

// Close closes the underlying connection.
func (c *X11Conn) Close() error {
	c.conn.Close()
	return nil
}

func (c *X11Conn) Root(screen int) (xproto.Window, error) {
	setup := xproto.Setup(c.conn)
	if screen < 0 {
		return setup.DefaultScreen(c.conn).Root, nil
	}
	if screen >= len(setup.Roots) {
		return 0, fmt.Errorf("screen %d out of range, server has %d", screen, len(setup.Roots))
	}
	return setup.Roots[screen].Root, nil
}

func (c *X11Conn) InternAtom(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(c.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, classify("intern atom "+name, err)
	}
	return reply.Atom, nil
}

func (c *X11Conn) SelectEvents(win xproto.Window, mask uint32) error {
	err := xproto.ChangeWindowAttributesChecked(
		c.conn,
		win,
		xproto.CwEventMask,
		[]uint32{mask},
	).Check()
	return classify("set event mask on "+windowID(win), err)
}

func (c *X11Conn) PollEvent() (xgb.Event, error) {
	ev, err := c.conn.PollForEvent()
	if err != nil {
		return nil, classify("poll for event", err)
	}
	return ev, nil
}

func (c *X11Conn) Ping() error {
	_, err := xproto.GetInputFocus(c.conn).Reply()
	return classify("ping", err)
}

func (c *X11Conn) ListProperties(win xproto.Window) ([]xproto.Atom, error) {
	reply, err := xproto.ListProperties(c.conn, win).Reply()
	if err != nil {
		return nil, classify("list properties of "+windowID(win), err)
	}
	return reply.Atoms, nil
}

func (c *X11Conn) GetProperty(win xproto.Window, prop, typ xproto.Atom, length uint32) (*xproto.GetPropertyReply, error) {
	reply, err := xproto.GetProperty(c.conn, false, win, prop, typ, 0, length).Reply()
	if err != nil {
		return nil, classify("get property of "+windowID(win), err)
	}
	return reply, nil
}

func (c *X11Conn) QueryClientIDs(specs ...res.ClientIdSpec) (*res.QueryClientIdsReply, error) {
	if c.resErr != nil {
		return nil, fmt.Errorf("query client ids: %w: %w", ErrProtocol, c.resErr)
	}
	reply, err := res.QueryClientIds(c.conn, uint32(len(specs)), specs).Reply()
	if err != nil {
		return nil, classify("query client ids", err)
	}
	return reply, nil
}
