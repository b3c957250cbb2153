package cmd

import (
	"fmt"

	"github.com/nethserver/phonehome-widget/internal/badge"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// OpenCmd opens the installation map.
type OpenCmd struct {
	opener badge.Opener
	url    string
}

func (o OpenCmd) Run() error {
	pterm.Info.Printfln("Opening %s", o.url)
	if err := o.opener.Open(o.url); err != nil {
		pterm.Warning.Printfln("Could not open a browser. Visit %s manually.", o.url)
		return fmt.Errorf("open %s: %w", o.url, err)
	}
	return nil
}

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the installation map in a browser",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return OpenCmd{opener: badge.BrowserOpener{}, url: cfg.WidgetURL}.Run()
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}
