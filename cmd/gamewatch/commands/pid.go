package commands

import (
	"fmt"
	"strconv"

	"github.com/bryanchriswhite/gamewatch/internal/window"
	"github.com/jezek/xgb/xproto"
	"github.com/spf13/cobra"
)

var pidCmd = &cobra.Command{
	Use:   "pid WINDOW",
	Short: "Show the process owning a window",
	Long: `Resolve the pid of a single window the same way the watcher does:
_NET_WM_PID first, then the X-Resource client ids.`,
	Example: `  # Window ids are accepted in hex or decimal
  gamewatch pid 0x3a00007`,
	Args: cobra.ExactArgs(1),
	RunE: runPID,
}

func init() {
	rootCmd.AddCommand(pidCmd)
}

func runPID(cmd *cobra.Command, args []string) error {
	win, err := parseWindow(args[0])
	if err != nil {
		return err
	}

	configMgr, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := configMgr.Get()

	conn, err := window.Dial(cfg.Display)
	if err != nil {
		return err
	}
	defer conn.Close()

	resolver, err := window.NewDefaultPIDResolver(conn, cfg.PIDAtom)
	if err != nil {
		return err
	}
	pid, err := resolver.Resolve(win)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), pid)
	return nil
}

func parseWindow(s string) (xproto.Window, error) {
	id, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid window id %q: %w", s, err)
	}
	if id == 0 {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	return xproto.Window(id), nil
}
