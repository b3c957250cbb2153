package cmd

import (
	"context"
	"fmt"

	"github.com/nethserver/phonehome-widget/internal/phonehome"
	"github.com/nethserver/phonehome-widget/internal/updater"
	"github.com/nethserver/phonehome-widget/pkg/util"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

type countOutput struct {
	Total   int `json:"total"`
	Entries int `json:"entries"`
}

// CountCmd fetches the installation total once.
type CountCmd struct {
	fetcher  updater.Fetcher
	endpoint string
}

type CountInput struct {
	Output string
}

func (c CountCmd) Run(ctx context.Context, in CountInput) error {
	if in.Output != "" && in.Output != "json" {
		return fmt.Errorf("unsupported --output value %q: use 'json'", in.Output)
	}
	if in.Output != "json" {
		pterm.Debug.Printfln("Querying %s", c.endpoint)
	}

	res := c.fetcher.Fetch(ctx)
	if res.Err != nil {
		pterm.Error.Printfln("Could not get the installation count from %s", util.OrDash(c.endpoint))
		return fmt.Errorf("count failed (%s): %w", res.Outcome, res.Err)
	}

	if in.Output == "json" {
		return util.PrintPrettyJSON(countOutput{Total: res.Total, Entries: res.Entries})
	}
	pterm.Success.Printfln("%s NethServer installations worldwide (%d entries)", util.FormatCount(res.Total), res.Entries)
	return nil
}

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the current worldwide installation count",
	Args:  cobra.NoArgs,
	RunE:  runCount,
}

func init() {
	countCmd.Flags().StringP("output", "o", "", "Output format (json)")
	addEndpointFlags(countCmd.Flags())
	rootCmd.AddCommand(countCmd)
}

func runCount(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")

	client := phonehome.NewClient(cfg.Endpoint, cfg.Timeout())
	c := CountCmd{fetcher: client, endpoint: client.Endpoint()}
	return c.Run(cmd.Context(), CountInput{Output: output})
}
