package updater

import "time"

// Default polling intervals.
const (
	DefaultInterval      = time.Hour
	DefaultErrorInterval = 5 * time.Second
	DefaultPaintDelay    = 2 * time.Second
)

// Phase is where the update loop currently is.
type Phase int

const (
	Idle Phase = iota
	Scheduled
	InFlight
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Scheduled:
		return "scheduled"
	case InFlight:
		return "in_flight"
	default:
		return "unknown"
	}
}

// TimerID identifies one armed timer. IDs are never reused.
type TimerID uint64

// PollState is the loop's mutable state. It is owned by one Updater and
// only touched under its lock.
type PollState struct {
	Interval      time.Duration
	ErrorInterval time.Duration

	phase      Phase
	generation uint64

	pending   Timer
	pendingID TimerID
	lastID    TimerID
}

// NewPollState returns state with the default intervals.
func NewPollState() PollState {
	return PollState{
		Interval:      DefaultInterval,
		ErrorInterval: DefaultErrorInterval,
	}
}
