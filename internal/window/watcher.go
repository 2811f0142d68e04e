package window

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bryanchriswhite/gamewatch/internal/logger"
	"github.com/jezek/xgb/xproto"
)

const (
	// DefaultMarkerAtom is the property Steam sets on game windows.
	DefaultMarkerAtom = "STEAM_GAME"

	// DefaultPollInterval bounds both event latency and shutdown latency.
	DefaultPollInterval = 50 * time.Millisecond

	watchEventMask = xproto.EventMaskPropertyChange | xproto.EventMaskSubstructureNotify
)

// Watcher subscribes to window creation and property changes on a root
// window and hands every marked window to a Handler.
type Watcher struct {
	conn     Conn
	screen   int
	running  *atomic.Bool
	handler  Handler
	marker   string
	interval time.Duration
	sleep    func(time.Duration)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithMarker sets the name of the marker property.
func WithMarker(name string) Option {
	return func(w *Watcher) {
		if name != "" {
			w.marker = name
		}
	}
}

// WithPollInterval sets the sleep between drain cycles.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// NewWatcher creates a watcher on the given screen (negative for the default
// screen). The loop keeps going while running is true; the caller flips it
// to false, typically from a signal handler, to stop the watch.
func NewWatcher(conn Conn, screen int, running *atomic.Bool, handler Handler, opts ...Option) *Watcher {
	w := &Watcher{
		conn:     conn,
		screen:   screen,
		running:  running,
		handler:  handler,
		marker:   DefaultMarkerAtom,
		interval: DefaultPollInterval,
		sleep:    time.Sleep,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run sets up the subscription and then drains events until running is
// false. Setup failures and connection failures are returned; everything
// scoped to a single window is logged and skipped.
//
// The running flag is only checked between cycles, so shutdown takes effect
// within one poll interval and events already being drained are still
// dispatched.
func (w *Watcher) Run() error {
	log := logger.WithComponent("watcher")

	dispatcher, err := w.setup()
	if err != nil {
		return err
	}
	log.Info().
		Str("marker", w.marker).
		Dur("interval", w.interval).
		Msg("Watching for new windows")

	for w.running.Load() {
		if err := w.drain(dispatcher); err != nil {
			return err
		}
		w.sleep(w.interval)
	}

	log.Info().Msg("Watch stopped")
	return nil
}

func (w *Watcher) setup() (*Dispatcher, error) {
	root, err := w.conn.Root(w.screen)
	if err != nil {
		return nil, fmt.Errorf("failed to select screen: %w", err)
	}

	marker, err := w.conn.InternAtom(w.marker)
	if err != nil {
		return nil, fmt.Errorf("failed to intern marker atom %s: %w", w.marker, err)
	}

	if err := w.conn.SelectEvents(root, watchEventMask); err != nil {
		return nil, fmt.Errorf("failed to set event mask: %w", err)
	}

	logger.WithComponent("watcher").Debug().
		Str("root", windowID(root)).
		Uint32("marker_atom", uint32(marker)).
		Msg("Subscribed to root window events")

	return NewDispatcher(w.conn, marker, w.handler), nil
}

// alive reports a lost connection. xgb closes the event queue silently when
// the server goes away, so the round trip is the only reliable signal.
func (w *Watcher) alive() error {
	err := w.conn.Ping()
	if err == nil || errors.Is(err, ErrConnection) {
		return err
	}
	logger.WithComponent("watcher").Warn().Err(err).Msg("Ping failed")
	return nil
}

// drain dispatches every queued event without waiting for new ones, then
// checks that the server is still there.
func (w *Watcher) drain(d *Dispatcher) error {
	for {
		ev, err := w.conn.PollEvent()
		if err != nil {
			if errors.Is(err, ErrConnection) {
				return err
			}
			logger.WithComponent("watcher").Warn().Err(err).Msg("Failed to read event")
			return nil
		}
		if ev == nil {
			return w.alive()
		}
		if err := d.Dispatch(ev); err != nil {
			return err
		}
	}
}
