package window

import (
	"errors"
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Error kinds. Concrete errors wrap one of these together with their cause,
// so errors.Is answers both "what kind" and "what happened".
var (
	// ErrConnection is a transport failure. Fatal for the watch loop.
	ErrConnection = errors.New("x11 connection failure")

	// ErrProtocol is an X error reported for a single request. Recoverable
	// per window, fatal during setup.
	ErrProtocol = errors.New("x11 protocol error")

	// ErrResolution means no pid source produced a pid for a window.
	ErrResolution = errors.New("pid resolution failed")

	// ErrAction means the handler's external call failed.
	ErrAction = errors.New("action failed")
)

// classify tags err with ErrProtocol if the server reported it, and with
// ErrConnection otherwise.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var xerr xgb.Error
	if errors.As(err, &xerr) {
		return fmt.Errorf("%s: %w: %w", op, ErrProtocol, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrConnection, err)
}

// windowID formats a window handle the way xprop and xwininfo print it.
func windowID(win xproto.Window) string {
	return fmt.Sprintf("0x%x", uint32(win))
}
