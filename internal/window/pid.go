package window

import (
	"errors"
	"fmt"

	"github.com/bryanchriswhite/gamewatch/internal/logger"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/res"
	"github.com/jezek/xgb/xproto"
)

// DefaultPIDAtom is the EWMH property holding a window's process id.
const DefaultPIDAtom = "_NET_WM_PID"

// PIDSource is one strategy for finding the process that owns a window.
type PIDSource interface {
	Name() string
	PID(win xproto.Window) (uint32, error)
}

// PropertySource reads the pid from a 32-bit CARDINAL window property.
type PropertySource struct {
	conn Conn
	name string
	atom xproto.Atom
}

// NewPropertySource interns the property name once so lookups cost a single
// round trip.
func NewPropertySource(conn Conn, name string) (*PropertySource, error) {
	atom, err := conn.InternAtom(name)
	if err != nil {
		return nil, err
	}
	return &PropertySource{conn: conn, name: name, atom: atom}, nil
}

func (s *PropertySource) Name() string { return s.name }

func (s *PropertySource) PID(win xproto.Window) (uint32, error) {
	reply, err := s.conn.GetProperty(win, s.atom, xproto.AtomCardinal, 1)
	if err != nil {
		return 0, err
	}
	if reply.Type == xproto.AtomNone {
		return 0, fmt.Errorf("window %s has no %s property", windowID(win), s.name)
	}
	if reply.Format != 32 {
		logger.WithComponent("pid").Debug().
			Str("window", windowID(win)).
			Str("atom_name", s.name).
			Uint8("format", reply.Format).
			Uint32("type", uint32(reply.Type)).
			Msg("Property has unexpected format")
		return 0, fmt.Errorf("window %s: %s has format %d, want 32", windowID(win), s.name, reply.Format)
	}
	if reply.ValueLen == 0 || len(reply.Value) < 4 {
		return 0, fmt.Errorf("window %s: %s is empty", windowID(win), s.name)
	}
	return xgb.Get32(reply.Value), nil
}

// ClientIDSource asks the X-Resource extension which local process opened
// the client connection that created the window.
type ClientIDSource struct {
	conn Conn
}

func NewClientIDSource(conn Conn) *ClientIDSource {
	return &ClientIDSource{conn: conn}
}

func (s *ClientIDSource) Name() string { return "XResQueryClientIds" }

func (s *ClientIDSource) PID(win xproto.Window) (uint32, error) {
	reply, err := s.conn.QueryClientIDs(res.ClientIdSpec{Client: uint32(win), Mask: 0})
	if err != nil {
		return 0, err
	}
	for _, id := range reply.Ids {
		if id.Spec.Mask == res.ClientIdMaskLocalClientPID && len(id.Value) > 0 {
			return id.Value[0], nil
		}
	}
	logger.WithComponent("pid").Warn().
		Str("window", windowID(win)).
		Interface("reply", reply).
		Msg("Client id reply has no local client pid")
	return 0, fmt.Errorf("window %s: no local client pid among %d client ids", windowID(win), len(reply.Ids))
}

// PIDResolver tries its sources in order and returns the first pid found.
// Results are never cached.
type PIDResolver struct {
	sources []PIDSource
}

func NewPIDResolver(sources ...PIDSource) *PIDResolver {
	return &PIDResolver{sources: sources}
}

// NewDefaultPIDResolver builds the standard chain: the named pid property
// first, then the X-Resource client id query.
func NewDefaultPIDResolver(conn Conn, pidAtom string) (*PIDResolver, error) {
	if pidAtom == "" {
		pidAtom = DefaultPIDAtom
	}
	prop, err := NewPropertySource(conn, pidAtom)
	if err != nil {
		return nil, fmt.Errorf("failed to intern pid atom: %w", err)
	}
	return NewPIDResolver(prop, NewClientIDSource(conn)), nil
}

// Resolve returns the pid owning win. On failure the returned error wraps
// ErrResolution and the first source's error, which tells a window that
// vanished (ErrProtocol) apart from one that never carried a pid.
func (r *PIDResolver) Resolve(win xproto.Window) (uint32, error) {
	log := logger.WithComponent("pid")

	var first error
	for _, src := range r.sources {
		pid, err := src.PID(win)
		if err == nil {
			log.Debug().
				Str("window", windowID(win)).
				Str("source", src.Name()).
				Uint32("pid", pid).
				Msg("Resolved pid")
			return pid, nil
		}
		log.Debug().Err(err).
			Str("window", windowID(win)).
			Str("source", src.Name()).
			Msg("Pid source failed")
		if first == nil {
			first = err
		}
	}
	if first == nil {
		first = errors.New("no pid sources configured")
	}
	return 0, fmt.Errorf("%w: window %s: %w", ErrResolution, windowID(win), first)
}
