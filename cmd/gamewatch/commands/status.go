package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/bryanchriswhite/gamewatch/internal/gamemode"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status PID",
	Short: "Show the GameMode status of a process",
	Long: `Ask the GameMode daemon whether game mode is active for a process,
optionally unregistering it first.`,
	Example: `  # Check a registered game
  gamewatch status 4242

  # Release game mode for it
  gamewatch status 4242 --unregister`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

var unregisterFlag bool

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&unregisterFlag, "unregister", false, "unregister the process before querying")
}

// statusClient is the part of gamemode.Client the status command uses.
type statusClient interface {
	UnregisterGame(pid uint32) error
	QueryStatus(pid uint32) (int32, error)
}

func runStatus(cmd *cobra.Command, args []string) error {
	pid, err := parsePID(args[0])
	if err != nil {
		return err
	}

	configMgr, err := loadConfig()
	if err != nil {
		return err
	}
	gm, err := gamemode.Connect(configMgr.Get().GameMode.Options())
	if err != nil {
		return err
	}
	defer gm.Close()

	return showStatus(cmd.OutOrStdout(), gm, pid, unregisterFlag)
}

func showStatus(out io.Writer, gm statusClient, pid uint32, unregister bool) error {
	if unregister {
		if err := gm.UnregisterGame(pid); err != nil {
			return err
		}
		fmt.Fprintf(out, "Unregistered %d\n", pid)
	}
	status, err := gm.QueryStatus(pid)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d: %s\n", pid, gamemode.StatusText(status))
	return nil
}

func parsePID(s string) (uint32, error) {
	pid, err := strconv.ParseUint(s, 10, 31)
	if err != nil || pid == 0 {
		return 0, fmt.Errorf("invalid pid %q", s)
	}
	return uint32(pid), nil
}
