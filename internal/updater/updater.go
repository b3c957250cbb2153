// Package updater runs the badge update loop: fetch the installation total,
// paint it, and schedule the next fetch.
package updater

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nethserver/phonehome-widget/internal/badge"
	"github.com/nethserver/phonehome-widget/internal/phonehome"
	"github.com/pterm/pterm"
)

// Fetcher performs one phone-home round trip.
type Fetcher interface {
	Fetch(ctx context.Context) phonehome.Result
}

// Options configures an Updater. Zero durations take the defaults.
type Options struct {
	Fetcher   Fetcher
	Surface   badge.Surface
	Opener    badge.Opener
	Scheduler Scheduler

	// URL is opened when the badge is clicked.
	URL string

	Interval      time.Duration
	ErrorInterval time.Duration
	PaintDelay    time.Duration

	// FailStop stops polling after a malformed response instead of retrying.
	FailStop bool
	Debug    bool
}

// Updater owns the poll loop for one badge.
type Updater struct {
	fetcher    Fetcher
	surface    badge.Surface
	opener     badge.Opener
	sched      Scheduler
	url        string
	paintDelay time.Duration
	failStop   bool
	debug      atomic.Bool

	mu       sync.Mutex
	st       PollState
	cancel   context.CancelFunc
	delivery Timer
	closed   bool
	cycles   sync.WaitGroup
}

var debugPrinter = func() pterm.PrefixPrinter {
	p := pterm.Debug
	p.Debugger = false
	return p
}()

// New validates opts and returns an idle Updater.
func New(opts Options) (*Updater, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("updater: fetcher required")
	}
	if opts.Surface == nil {
		return nil, errors.New("updater: badge surface required")
	}
	if opts.Scheduler == nil {
		opts.Scheduler = ClockScheduler{}
	}
	if opts.URL == "" {
		opts.URL = phonehome.WidgetURL
	}
	if opts.PaintDelay < 0 {
		return nil, errors.New("updater: paint delay must be >= 0")
	}

	st := NewPollState()
	if opts.Interval > 0 {
		st.Interval = opts.Interval
	}
	if opts.ErrorInterval > 0 {
		st.ErrorInterval = opts.ErrorInterval
	}

	paintDelay := opts.PaintDelay
	if paintDelay == 0 {
		paintDelay = DefaultPaintDelay
	}

	u := &Updater{
		fetcher:    opts.Fetcher,
		surface:    opts.Surface,
		opener:     opts.Opener,
		sched:      opts.Scheduler,
		url:        opts.URL,
		paintDelay: paintDelay,
		failStop:   opts.FailStop,
		st:         st,
	}
	u.debug.Store(opts.Debug)
	return u, nil
}

// Init paints the placeholder and wires the click handler. Faults are
// logged, never returned.
func (u *Updater) Init() {
	defer u.swallow("init")

	u.paint(badge.Placeholder)
	u.surface.OnClick(u.openWidget)
	u.debugf("initialized")
}

// Start runs an update cycle now. A cycle already scheduled or in flight
// is superseded.
func (u *Updater) Start() {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return
	}
	u.supersedeLocked()
	ctx, cancel, gen := u.beginLocked()
	u.mu.Unlock()

	u.debugf("updating started")
	go u.cycle(ctx, cancel, gen)
}

// Stop cancels the pending timer and any request in flight. A request that
// still completes afterwards is ignored.
func (u *Updater) Stop() {
	u.mu.Lock()
	if u.st.phase == InFlight {
		u.st.generation++
	}
	u.supersedeLocked()
	u.st.phase = Idle
	u.mu.Unlock()

	u.debugf("updating stopped")
}

// Restart is Stop followed by Start.
func (u *Updater) Restart() {
	u.Stop()
	u.Start()
}

// SetDebug toggles verbose logging.
func (u *Updater) SetDebug(enabled bool) {
	u.debug.Store(enabled)
}

// SetIntervalPolling changes the interval between successful updates. If a
// timer is pending the loop restarts so the new value applies right away.
func (u *Updater) SetIntervalPolling(d time.Duration) {
	if d <= 0 {
		pterm.Warning.Printfln("Ignoring non-positive polling interval %s", d)
		return
	}

	u.mu.Lock()
	u.st.Interval = d
	pending := u.st.pending != nil
	u.mu.Unlock()

	u.debugf("polling interval set to %s", d)
	if pending {
		u.Restart()
	}
}

// IDTimeoutUpdate returns the pending timer's id, if one is armed.
func (u *Updater) IDTimeoutUpdate() (TimerID, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.st.pendingID, u.st.pending != nil
}

// URLPhoneHome returns the URL opened on click.
func (u *Updater) URLPhoneHome() string {
	return u.url
}

// State returns the loop's current phase.
func (u *Updater) State() Phase {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.st.phase
}

// Intervals returns the polling and error intervals currently in effect.
func (u *Updater) Intervals() (interval, errorInterval time.Duration) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.st.Interval, u.st.ErrorInterval
}

// Wait blocks until no update cycle is running.
func (u *Updater) Wait() {
	u.cycles.Wait()
}

// Close stops the loop for good and waits for running cycles to return.
func (u *Updater) Close() {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return
	}
	u.closed = true
	u.st.generation++
	u.supersedeLocked()
	u.st.phase = Idle
	if u.delivery != nil {
		u.delivery.Stop()
		u.delivery = nil
	}
	u.mu.Unlock()

	u.cycles.Wait()
}

// supersedeLocked drops the pending timer and cancels the request in flight.
func (u *Updater) supersedeLocked() {
	if u.st.pending != nil {
		u.st.pending.Stop()
		u.st.pending = nil
		u.st.pendingID = 0
	}
	if u.cancel != nil {
		u.cancel()
		u.cancel = nil
	}
}

// beginLocked opens a new generation and marks the loop in flight.
func (u *Updater) beginLocked() (context.Context, context.CancelFunc, uint64) {
	u.st.generation++
	u.st.phase = InFlight
	ctx, cancel := context.WithCancel(context.Background())
	u.cancel = cancel
	u.cycles.Add(1)
	return ctx, cancel, u.st.generation
}

func (u *Updater) armLocked(d time.Duration) TimerID {
	u.st.lastID++
	id := u.st.lastID
	u.st.pending = u.sched.AfterFunc(d, func() { u.fire(id) })
	u.st.pendingID = id
	u.st.phase = Scheduled
	return id
}

func (u *Updater) fire(id TimerID) {
	u.mu.Lock()
	if u.closed || u.st.pending == nil || u.st.pendingID != id {
		u.mu.Unlock()
		return
	}
	u.st.pending = nil
	u.st.pendingID = 0
	ctx, cancel, gen := u.beginLocked()
	u.mu.Unlock()

	u.debugf("timer %d fired", id)
	go u.cycle(ctx, cancel, gen)
}

func (u *Updater) cycle(ctx context.Context, cancel context.CancelFunc, gen uint64) {
	defer u.cycles.Done()
	defer cancel()
	defer u.failStopOnPanic(gen)

	u.debugf("update badge")
	if u.current(gen) {
		u.paint(badge.InFlight)
	}

	res := u.fetcher.Fetch(ctx)
	u.complete(gen, res)
}

func (u *Updater) complete(gen uint64, res phonehome.Result) {
	u.mu.Lock()
	if u.closed || gen != u.st.generation {
		u.mu.Unlock()
		u.debugf("discarding %s result of a stopped cycle", res.Outcome)
		return
	}
	u.cancel = nil

	var (
		text  string
		next  time.Duration
		rearm = true
	)
	switch res.Outcome {
	case phonehome.OutcomeSuccess:
		text = badge.Count(res.Total)
		next = u.st.Interval
	case phonehome.OutcomeTransportFailure:
		text = badge.Retrying
		next = u.st.ErrorInterval
	case phonehome.OutcomeParseFailure:
		if u.failStop {
			text = badge.Unknown
			rearm = false
		} else {
			text = badge.Retrying
			next = u.st.ErrorInterval
		}
	default:
		text = badge.Unknown
		rearm = false
	}

	u.deliverLocked(gen, text)
	var id TimerID
	if rearm {
		id = u.armLocked(next)
	} else {
		u.st.phase = Idle
	}
	u.mu.Unlock()

	switch {
	case res.Outcome == phonehome.OutcomeSuccess:
		u.debugf("%d installations from %d entries, next update in %s (timer %d)", res.Total, res.Entries, next, id)
	case rearm:
		pterm.Error.Printfln("Installation count update failed: %v", res.Err)
		u.debugf("retrying in %s (timer %d)", next, id)
	default:
		pterm.Error.Printfln("Installation count update failed, polling stopped: %v", res.Err)
	}
}

// deliverLocked paints text after the paint delay, so the in-flight glyph
// stays visible for a moment. A newer cycle cancels the delivery.
func (u *Updater) deliverLocked(gen uint64, text string) {
	if u.delivery != nil {
		u.delivery.Stop()
	}
	u.delivery = u.sched.AfterFunc(u.paintDelay, func() {
		defer u.failStopOnPanic(gen)
		if u.current(gen) {
			u.paint(text)
		}
	})
}

func (u *Updater) current(gen uint64) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return !u.closed && gen == u.st.generation
}

// failStopOnPanic turns a panic inside a cycle or a delayed paint into the
// "?" glyph, drops any armed timer and leaves the loop idle until the next
// Start.
func (u *Updater) failStopOnPanic(gen uint64) {
	r := recover()
	if r == nil {
		return
	}
	pterm.Error.Printfln("Installation count update crashed, polling stopped: %v", r)

	u.mu.Lock()
	current := !u.closed && gen == u.st.generation
	if current {
		u.supersedeLocked()
		u.st.phase = Idle
	}
	u.mu.Unlock()

	if current {
		defer u.swallow("paint")
		u.paint(badge.Unknown)
	}
}

func (u *Updater) paint(text string) {
	if err := u.surface.SetText(text); err != nil {
		pterm.Error.Printfln("Could not paint badge %q: %v", text, err)
	}
}

func (u *Updater) openWidget() {
	defer u.swallow("open")

	if u.opener == nil {
		pterm.Info.Printfln("Open %s", u.url)
		return
	}
	if err := u.opener.Open(u.url); err != nil {
		pterm.Error.Printfln("Could not open %s: %v", u.url, err)
	}
}

func (u *Updater) swallow(op string) {
	if r := recover(); r != nil {
		pterm.Error.Printfln("%s: %v", op, r)
	}
}

func (u *Updater) debugf(format string, args ...any) {
	if u.debug.Load() {
		debugPrinter.Printfln(format, args...)
	}
}
