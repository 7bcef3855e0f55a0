package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	monitorspaces "github.com/ln64-git/monitorspaces/internal"
	"github.com/ln64-git/monitorspaces/src/config"
	workspaceswitcher "github.com/ln64-git/monitorspaces/src/features/workspace-switcher"
	"github.com/ln64-git/monitorspaces/src/utility"
)

// CLI holds references to the app and logger for command handlers
type CLI struct {
	version    string
	logger     *utility.Logger
	configPath string
	debug      bool

	config *config.Config
	viper  *viper.Viper
	app    *monitorspaces.App
}

// NewCLI creates a new CLI instance
func NewCLI(version string, logger *utility.Logger) *CLI {
	return &CLI{
		version: version,
		logger:  logger,
	}
}

// Logger returns the logger in use after configuration was applied
func (c *CLI) Logger() *utility.Logger {
	return c.logger
}

// CreateCommands creates all CLI commands
func (c *CLI) CreateCommands() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "monitorspaces",
		Short: "Monitorspaces - per-monitor workspaces",
		Long: `Monitorspaces gives every monitor its own workspaces on an EWMH desktop
whose workspaces are global. Hotkeys switch only the focused monitor; when the
window manager switches all monitors, the others are moved back.`,
		Version:           c.version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		RunE:              c.runDaemon,
	}

	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default: $XDG_CONFIG_HOME/monitorspaces/config.env)")
	rootCmd.PersistentFlags().BoolVar(&c.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(c.createRunCmd())
	rootCmd.AddCommand(c.createSwitchCmd(workspaceswitcher.Up, "Switch the focused monitor to the previous workspace"))
	rootCmd.AddCommand(c.createSwitchCmd(workspaceswitcher.Down, "Switch the focused monitor to the next workspace"))
	rootCmd.AddCommand(c.createStatusCmd())
	rootCmd.AddCommand(c.createMonitorsCmd())
	rootCmd.AddCommand(c.createConfigCmd())

	return rootCmd
}

// setup loads the configuration, applies logging settings and builds the app
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	cfg, v, err := config.LoadWithViper(c.configPath)
	if err != nil {
		return err
	}
	if c.debug {
		cfg.Debug = true
	}

	level := utility.ParseLogLevel(string(cfg.EffectiveLogLevel()))
	if cfg.LogMode != utility.ModeCLI {
		c.logger = utility.NewLoggerInDir(cfg.LogMode, level, cfg.LogDir)
		utility.SetDefault(c.logger)
	} else {
		c.logger.SetLevel(level)
	}

	c.logger.Debug("Loaded %s", cfg)
	c.config = cfg
	c.viper = v
	c.app = monitorspaces.New(c.logger, cfg, v)
	return nil
}

func (c *CLI) runDaemon(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c.logger.Info("Monitorspaces v%s", c.version)
	if err := c.app.Run(ctx); err != nil {
		return err
	}
	c.logger.Info("Shutting down")
	return nil
}

func (c *CLI) createRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the daemon in the foreground",
		RunE:  c.runDaemon,
	}
}

func (c *CLI) createSwitchCmd(direction workspaceswitcher.Direction, short string) *cobra.Command {
	return &cobra.Command{
		Use:   direction.String(),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Switch(commandContext(cmd), direction)
		},
	}
}

func (c *CLI) createStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show windows by monitor and workspace, and the switching state",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := c.app.Status(commandContext(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), status)
			return nil
		},
	}
}

func (c *CLI) createMonitorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "monitors",
		Short: "Show connected monitors",
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := c.app.Monitors(commandContext(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), info)
			return nil
		},
	}
}

func (c *CLI) createConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), formatConfig(c.config))
			return nil
		},
	}
}

func formatConfig(cfg *config.Config) string {
	file := cfg.File
	if file == "" {
		file = "(none, defaults and environment only)"
	}

	lines := []string{
		"Configuration:",
		fmt.Sprintf("  File: %s", file),
		fmt.Sprintf("  Environment: %s", cfg.Environment),
		fmt.Sprintf("  Log Level: %s", cfg.EffectiveLogLevel()),
		fmt.Sprintf("  Log Mode: %s", cfg.LogMode),
		fmt.Sprintf("  Log Dir: %s", cfg.LogDir),
		fmt.Sprintf("  Automatic Switching: %s", boolToYesNo(cfg.AutomaticSwitching)),
		fmt.Sprintf("  %s: %s", config.HotkeyNextName, cfg.HotkeyNext),
		fmt.Sprintf("  %s: %s", config.HotkeyPreviousName, cfg.HotkeyPrevious),
		fmt.Sprintf("  Incompatible Extensions: %s", strings.Join(cfg.IncompatibleExtensions, ", ")),
		fmt.Sprintf("  Extension Poll Interval: %s", formatDuration(cfg.ExtensionPollInterval)),
	}
	return strings.Join(lines, "\n")
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
