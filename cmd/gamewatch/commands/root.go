package commands

import (
	"fmt"
	"os"

	"github.com/bryanchriswhite/gamewatch/internal/config"
	"github.com/bryanchriswhite/gamewatch/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "gamewatch",
		Short: "gamewatch - put marked X11 windows into GameMode",
		Long: `gamewatch watches the X server for windows carrying a marker property
(STEAM_GAME by default), finds the process that owns each one and asks the
GameMode daemon to register it.

The owning process is taken from _NET_WM_PID, or from the X-Resource
extension when a window does not set it.`,
		SilenceUsage: true,
		RunE:         runWatch,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/gamewatch/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "human-readable log output")
	rootCmd.PersistentFlags().String("display", "", "X display (default is $DISPLAY)")
	rootCmd.PersistentFlags().Int("screen", -1, "screen to watch (default is the server's default screen)")
	rootCmd.PersistentFlags().String("marker", "", "marker property name (default is STEAM_GAME)")

	// Bind flags to viper
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))
	viper.BindPFlag("display", rootCmd.PersistentFlags().Lookup("display"))
	viper.BindPFlag("screen", rootCmd.PersistentFlags().Lookup("screen"))
	viper.BindPFlag("marker_atom", rootCmd.PersistentFlags().Lookup("marker"))
}

func initConfig() {
	viper.SetEnvPrefix("GAMEWATCH")
	viper.AutomaticEnv()
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// loadConfig reads the config file, applies flag and environment overrides
// and initializes logging.
func loadConfig() (*config.Manager, error) {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	err = configMgr.Update(func(c *config.Config) {
		applyOverrides(viper.GetViper(), c)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	cfg := configMgr.Get()
	logger.Init(cfg.LogLevel, cfg.LogPretty)
	return configMgr, nil
}

// applyOverrides copies every explicitly set flag or environment value
// over the file configuration.
func applyOverrides(v *viper.Viper, c *config.Config) {
	if v.IsSet("log_level") && v.GetString("log_level") != "" {
		c.LogLevel = v.GetString("log_level")
	}
	if v.IsSet("log_pretty") {
		c.LogPretty = v.GetBool("log_pretty")
	}
	if v.IsSet("display") && v.GetString("display") != "" {
		c.Display = v.GetString("display")
	}
	if v.IsSet("screen") && v.GetInt("screen") >= 0 {
		c.Screen = v.GetInt("screen")
	}
	if v.IsSet("marker_atom") && v.GetString("marker_atom") != "" {
		c.MarkerAtom = v.GetString("marker_atom")
	}
}
