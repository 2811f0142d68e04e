package window

import (
	"errors"
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/res"
	"github.com/jezek/xgb/xproto"
)

// fakeConn is an in-memory X server good enough for the watcher.
type fakeConn struct {
	roots []xproto.Window
	atoms map[string]xproto.Atom

	internErr error
	selectErr error
	pingErr   error

	queue   []queued
	onEmpty func()

	// props lists the properties of every live window; absent keys are
	// destroyed windows.
	props    map[xproto.Window][]xproto.Atom
	values   map[xproto.Window]*xproto.GetPropertyReply
	clients  map[xproto.Window]*res.QueryClientIdsReply
	listErr  error
	queryErr error

	calls           []string
	getPropertyHits int
	queryHits       int
}

type queued struct {
	ev  xgb.Event
	err error
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		roots:   []xproto.Window{0x100},
		atoms:   map[string]xproto.Atom{},
		props:   map[xproto.Window][]xproto.Atom{},
		values:  map[xproto.Window]*xproto.GetPropertyReply{},
		clients: map[xproto.Window]*res.QueryClientIdsReply{},
	}
}

func (c *fakeConn) push(ev xgb.Event) { c.queue = append(c.queue, queued{ev: ev}) }

func (c *fakeConn) pushErr(err error) { c.queue = append(c.queue, queued{err: err}) }

func badWindow(win xproto.Window) error {
	return classify("fake", xproto.WindowError{BadValue: uint32(win), NiceName: "Window"})
}

func (c *fakeConn) Root(screen int) (xproto.Window, error) {
	c.calls = append(c.calls, fmt.Sprintf("root %d", screen))
	if screen < 0 {
		return c.roots[0], nil
	}
	if screen >= len(c.roots) {
		return 0, fmt.Errorf("screen %d out of range", screen)
	}
	return c.roots[screen], nil
}

func (c *fakeConn) InternAtom(name string) (xproto.Atom, error) {
	c.calls = append(c.calls, "intern "+name)
	if c.internErr != nil {
		return 0, c.internErr
	}
	if a, ok := c.atoms[name]; ok {
		return a, nil
	}
	a := xproto.Atom(300 + len(c.atoms))
	c.atoms[name] = a
	return a, nil
}

func (c *fakeConn) SelectEvents(win xproto.Window, mask uint32) error {
	c.calls = append(c.calls, fmt.Sprintf("select %s %#x", windowID(win), mask))
	return c.selectErr
}

func (c *fakeConn) PollEvent() (xgb.Event, error) {
	c.calls = append(c.calls, "poll")
	if len(c.queue) == 0 {
		if c.onEmpty != nil {
			c.onEmpty()
		}
		return nil, nil
	}
	q := c.queue[0]
	c.queue = c.queue[1:]
	return q.ev, q.err
}

func (c *fakeConn) Ping() error {
	c.calls = append(c.calls, "ping")
	return c.pingErr
}

func (c *fakeConn) ListProperties(win xproto.Window) ([]xproto.Atom, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	atoms, ok := c.props[win]
	if !ok {
		return nil, badWindow(win)
	}
	return atoms, nil
}

func (c *fakeConn) GetProperty(win xproto.Window, prop, typ xproto.Atom, length uint32) (*xproto.GetPropertyReply, error) {
	c.getPropertyHits++
	if _, ok := c.props[win]; !ok {
		return nil, badWindow(win)
	}
	if reply, ok := c.values[win]; ok {
		return reply, nil
	}
	return &xproto.GetPropertyReply{Type: xproto.AtomNone}, nil
}

func (c *fakeConn) QueryClientIDs(specs ...res.ClientIdSpec) (*res.QueryClientIdsReply, error) {
	c.queryHits++
	if c.queryErr != nil {
		return nil, c.queryErr
	}
	if len(specs) != 1 {
		return nil, errors.New("fake supports one spec")
	}
	if reply, ok := c.clients[xproto.Window(specs[0].Client)]; ok {
		return reply, nil
	}
	return &res.QueryClientIdsReply{}, nil
}

// cardinal builds a GetProperty reply holding one value of the given format.
func cardinal(format byte, v uint32) *xproto.GetPropertyReply {
	buf := make([]byte, 4)
	xgb.Put32(buf, v)
	return &xproto.GetPropertyReply{
		Format:   format,
		Type:     xproto.AtomCardinal,
		ValueLen: 1,
		Value:    buf,
	}
}

func localPID(pid uint32) *res.QueryClientIdsReply {
	return &res.QueryClientIdsReply{
		NumIds: 2,
		Ids: []res.ClientIdValue{
			{Spec: res.ClientIdSpec{Mask: res.ClientIdMaskClientXID}, Length: 4, Value: []uint32{0x3a00000}},
			{Spec: res.ClientIdSpec{Mask: res.ClientIdMaskLocalClientPID}, Length: 4, Value: []uint32{pid}},
		},
	}
}

// recorder is a Handler that remembers every window it saw.
type recorder struct {
	windows []xproto.Window
	err     error
	hook    func(xproto.Window)
}

func (r *recorder) Handle(win xproto.Window) error {
	r.windows = append(r.windows, win)
	if r.hook != nil {
		r.hook(win)
	}
	return r.err
}
