package commands

import (
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/bryanchriswhite/gamewatch/internal/gamemode"
	"github.com/bryanchriswhite/gamewatch/internal/logger"
	"github.com/bryanchriswhite/gamewatch/internal/window"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch for marked windows and register their processes",
	Long: `Connect to the X server and the session bus, then register the owner of
every window carrying the marker property with GameMode until interrupted.

This is also what running gamewatch without a subcommand does.`,
	Example: `  # Watch the default display
  gamewatch watch

  # Watch a nested X server with debug logging
  gamewatch watch --display :1 --log-level debug`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := configMgr.Get()
	log := logger.WithComponent("main")

	log.Info().Str("display", cfg.Display).Msg("Connecting to X11 server")
	conn, err := window.Dial(cfg.Display)
	if err != nil {
		return err
	}
	defer conn.Close()

	resolver, err := window.NewDefaultPIDResolver(conn, cfg.PIDAtom)
	if err != nil {
		return err
	}

	gm, err := gamemode.Connect(cfg.GameMode.Options())
	if err != nil {
		return err
	}
	defer gm.Close()

	var running atomic.Bool
	running.Store(true)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		log.Info().Msg("Exiting...")
		running.Store(false)
	}()

	watcher := window.NewWatcher(conn, cfg.Screen, &running,
		gamemode.NewRegisterHandler(resolver, gm),
		window.WithMarker(cfg.MarkerAtom),
		window.WithPollInterval(cfg.PollInterval),
	)
	if err := watcher.Run(); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
