package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nethserver/phonehome-widget/internal/badge"
	"github.com/nethserver/phonehome-widget/internal/config"
	"github.com/nethserver/phonehome-widget/internal/lock"
	"github.com/nethserver/phonehome-widget/internal/phonehome"
	"github.com/nethserver/phonehome-widget/internal/updater"
	"github.com/nethserver/phonehome-widget/pkg/util"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// RunCmd drives a live badge until its context ends.
type RunCmd struct {
	cfg       *config.Config
	fetcher   updater.Fetcher
	opener    badge.Opener
	scheduler updater.Scheduler
	in        io.Reader
	out       io.Writer
}

func (r RunCmd) newUpdater(surface badge.Surface) (*updater.Updater, error) {
	return updater.New(updater.Options{
		Fetcher:       r.fetcher,
		Surface:       surface,
		Opener:        r.opener,
		Scheduler:     r.scheduler,
		URL:           r.cfg.WidgetURL,
		Interval:      r.cfg.Interval(),
		ErrorInterval: r.cfg.ErrorInterval(),
		PaintDelay:    r.cfg.PaintDelay(),
		FailStop:      r.cfg.FailStop,
		Debug:         r.cfg.Debug,
	})
}

// Terminal paints the badge on r.out and treats each line read from r.in
// as a click.
func (r RunCmd) Terminal(ctx context.Context) error {
	surface := badge.NewTerminal(r.out, badgeLabel)
	u, err := r.newUpdater(surface)
	if err != nil {
		return err
	}
	defer u.Close()

	u.Init()
	u.Start()
	pterm.Info.Printfln("Polling %s every %s. Press Enter to open the map, Ctrl+C to quit.",
		r.cfg.Endpoint, util.FormatInterval(r.cfg.Interval()))

	go surface.Listen(ctx, r.in)
	<-ctx.Done()
	return nil
}

// Tray runs the badge in the system tray. It returns once the tray quits,
// either from its menu or because ctx ended.
func (r RunCmd) Tray(ctx context.Context) error {
	var (
		u      *updater.Updater
		runErr error
	)

	onReady := func() {
		surface := badge.NewTray(badgeLabel)
		surface.AddQuit(badge.QuitTray)

		u, runErr = r.newUpdater(surface)
		if runErr != nil {
			badge.QuitTray()
			return
		}
		u.Init()
		u.Start()

		go func() {
			<-ctx.Done()
			badge.QuitTray()
		}()
	}
	onExit := func() {
		if u != nil {
			u.Close()
		}
	}

	badge.RunTray(onReady, onExit)
	return runErr
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Show the live installation badge",
	Long: `Show the worldwide installation count and keep it up to date.

The badge reads "XHR" while a request is in flight, "..." while waiting or
retrying and "?" when the service answer could not be understood.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	addEndpointFlags(runCmd.Flags())
	addPollFlags(runCmd.Flags())
	runCmd.Flags().Bool("tray", false, "Show the badge in the system tray")
	runCmd.Flags().Bool("no-open", false, "Print the map URL on click instead of opening a browser")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	tray, _ := cmd.Flags().GetBool("tray")
	noOpen, _ := cmd.Flags().GetBool("no-open")

	l, err := lock.Acquire(cfg.LockFile)
	if err != nil {
		if errors.Is(err, lock.ErrHeld) {
			pterm.Error.Println("Another phonehome badge is already running.")
		}
		return err
	}
	defer func() {
		if err := l.Release(); err != nil {
			pterm.Warning.Printfln("Could not release %s: %v", l.Path(), err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := RunCmd{
		cfg:     cfg,
		fetcher: phonehome.NewClient(cfg.Endpoint, cfg.Timeout()),
		opener:  badge.BrowserOpener{},
		in:      os.Stdin,
		out:     os.Stdout,
	}
	if noOpen {
		r.opener = nil
	}

	if tray {
		if err := r.Tray(ctx); err != nil {
			return fmt.Errorf("tray: %w", err)
		}
		return nil
	}
	return r.Terminal(ctx)
}
