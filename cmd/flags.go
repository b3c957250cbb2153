package cmd

import (
	"time"

	"github.com/nethserver/phonehome-widget/internal/config"
	"github.com/spf13/pflag"
)

func addEndpointFlags(fs *pflag.FlagSet) {
	fs.String("endpoint", "", "Phone-home service URL (overrides config)")
	fs.Duration("timeout", 0, "Per-request timeout, e.g. 30s")
}

func addPollFlags(fs *pflag.FlagSet) {
	fs.Duration("interval", 0, "Time between successful updates, e.g. 1h")
	fs.Duration("error-interval", 0, "Time before retrying a failed update, e.g. 5s")
	fs.Bool("fail-stop", false, "Stop polling after a malformed response")
}

// applyFlags copies every flag the user set onto cfg. Flags a command does
// not define are skipped.
func applyFlags(fs *pflag.FlagSet, cfg *config.Config) error {
	if fs.Changed("endpoint") {
		v, err := fs.GetString("endpoint")
		if err != nil {
			return err
		}
		cfg.Endpoint = v
	}

	durations := []struct {
		name string
		dst  *int
	}{
		{"interval", &cfg.IntervalMs},
		{"error-interval", &cfg.ErrorIntervalMs},
		{"timeout", &cfg.TimeoutMs},
	}
	for _, d := range durations {
		if !fs.Changed(d.name) {
			continue
		}
		v, err := fs.GetDuration(d.name)
		if err != nil {
			return err
		}
		*d.dst = int(v / time.Millisecond)
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"debug", &cfg.Debug},
		{"fail-stop", &cfg.FailStop},
	}
	for _, b := range bools {
		if !fs.Changed(b.name) {
			continue
		}
		v, err := fs.GetBool(b.name)
		if err != nil {
			return err
		}
		*b.dst = v
	}
	return nil
}
