package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/nethserver/phonehome-widget/internal/config"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

const badgeLabel = "NethServer installations"

var rootCmd = &cobra.Command{
	Use:   "phonehome",
	Short: "Worldwide NethServer installation counter",
	Long: `phonehome polls the NethServer phone-home service and shows how many
installations are reporting worldwide, as a terminal badge or a tray icon.
Clicking the badge opens the installation map.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadDotEnv,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().Bool("debug", false, "Print debug messages")
}

// loadDotEnv reads PHONEHOME_* variables from ./.env when present.
func loadDotEnv(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// loadConfig resolves defaults, the config file, the environment and the
// command's flags, in that order, and validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd.Flags(), cfg); err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Debug {
		pterm.EnableDebugMessages()
	}
	return cfg, nil
}

// Execute runs the command tree.
func Execute(version string) error {
	return fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(version),
		fang.WithoutCompletions(),
	)
}
