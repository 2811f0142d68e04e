package gamemode

import (
	"fmt"

	"github.com/bryanchriswhite/gamewatch/internal/logger"
	"github.com/bryanchriswhite/gamewatch/internal/window"
	"github.com/jezek/xgb/xproto"
)

// Resolver finds the process owning a window.
type Resolver interface {
	Resolve(win xproto.Window) (uint32, error)
}

// Registrar registers a process with the GameMode daemon.
type Registrar interface {
	RegisterGame(pid uint32) error
}

// RegisterHandler is the window.Handler that puts the owner of every marked
// window into game mode.
type RegisterHandler struct {
	resolver  Resolver
	registrar Registrar
}

func NewRegisterHandler(resolver Resolver, registrar Registrar) *RegisterHandler {
	return &RegisterHandler{resolver: resolver, registrar: registrar}
}

func (h *RegisterHandler) Handle(win xproto.Window) error {
	pid, err := h.resolver.Resolve(win)
	if err != nil {
		return err
	}
	if err := h.registrar.RegisterGame(pid); err != nil {
		return fmt.Errorf("%w: register pid %d for window 0x%x: %w", window.ErrAction, pid, uint32(win), err)
	}
	logger.WithComponent("gamemode").Info().
		Uint32("pid", pid).
		Str("window", fmt.Sprintf("0x%x", uint32(win))).
		Msg("Registered game")
	return nil
}

var _ window.Handler = (*RegisterHandler)(nil)
