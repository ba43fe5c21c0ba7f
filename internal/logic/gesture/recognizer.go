package gesture

import (
	"time"

	"github.com/HungNguyxn/PreThesis-RotationStage/internal/debug"
)

// Event is a discrete user intent derived from raw button timing.
type Event int

const (
	None Event = iota
	JogLeft
	JogRight
	JogStop
	PositionSaved
	RecallRequested
)

func (e Event) String() string {
	switch e {
	case None:
		return "none"
	case JogLeft:
		return "jog-left"
	case JogRight:
		return "jog-right"
	case JogStop:
		return "jog-stop"
	case PositionSaved:
		return "position-saved"
	case RecallRequested:
		return "recall-requested"
	default:
		return "unknown"
	}
}

// Config holds the gesture timing windows.
type Config struct {
	SaveHold    time.Duration // both buttons held longer than this saves the position
	DoubleClick time.Duration // max gap between two short both-presses for a recall
}

// Recognizer turns the instantaneous state of two buttons into gesture
// events. It must be called exactly once per poll tick; all timing is
// measured on the timestamps it is handed, so a single physical press
// is expected to span many ticks.
//
// Priority per tick: a both-pressed episode first (hold-to-save), then
// the falling edge of that episode (click counting for double-click
// recall), then plain single-button jogging.
type Recognizer struct {
	cfg Config

	bothHeld  bool      // inside a both-pressed episode
	bothStart time.Time // when the current episode began

	// saveFired latches after a save dispatch and stays set until a
	// poll observes both buttons released. It suppresses the click
	// branch and jogging for the remainder of the episode, replacing
	// the blocking wait-for-release a naive loop would do.
	saveFired bool

	clicks    int       // short both-presses counted so far
	lastClick time.Time // timestamp of the most recent qualifying click
}

// NewRecognizer creates a recognizer with the given timing windows.
func NewRecognizer(cfg Config) *Recognizer {
	if cfg.SaveHold <= 0 {
		cfg.SaveHold = 2000 * time.Millisecond
	}
	if cfg.DoubleClick <= 0 {
		cfg.DoubleClick = 500 * time.Millisecond
	}
	return &Recognizer{cfg: cfg}
}

// Recognize consumes one sample of both buttons and returns the event
// for this tick. left/right are the instantaneous pressed states; now
// is a monotonic timestamp for this poll.
func (r *Recognizer) Recognize(left, right bool, now time.Time) Event {
	switch {
	case left && right:
		return r.bothPressed(now)
	case r.bothHeld:
		return r.bothReleased(now)
	default:
		return r.single(left, right, now)
	}
}

// bothPressed handles a tick where both buttons read pressed.
func (r *Recognizer) bothPressed(now time.Time) Event {
	if !r.bothHeld {
		r.bothHeld = true
		r.bothStart = now
		debug.Verbose("both buttons pressed, hold timer started")
	}

	// Save fires once per episode, edge-triggered at the threshold.
	// After a save, saveFired stays latched until both buttons are
	// seen released, so re-pressing the second button without a full
	// release cannot fire another save.
	if !r.saveFired && now.Sub(r.bothStart) > r.cfg.SaveHold {
		r.saveFired = true
		r.clicks = 0
		debug.Gesture(PositionSaved.String())
		return PositionSaved
	}
	return None
}

// bothReleased handles the falling edge of the both-pressed condition:
// at least one button let go after an episode.
func (r *Recognizer) bothReleased(now time.Time) Event {
	r.bothHeld = false

	if r.saveFired {
		// A hold long enough to save is not a click.
		return None
	}

	// Short press: count it toward a double-click.
	if r.clicks > 0 && now.Sub(r.lastClick) < r.cfg.DoubleClick {
		r.clicks++
	} else {
		r.clicks = 1
	}
	r.lastClick = now
	debug.Verbose("both-button click #%d", r.clicks)

	if r.clicks >= 2 {
		r.clicks = 0
		debug.Gesture(RecallRequested.String())
		return RecallRequested
	}
	return None
}

// single handles the normal one-button / no-button state.
func (r *Recognizer) single(left, right bool, now time.Time) Event {
	if r.saveFired {
		// Still waiting for the full release that ends a save episode.
		if left || right {
			return None
		}
		r.saveFired = false
		debug.Verbose("save episode released, recognizer re-armed")
		return JogStop
	}

	// A first click whose partner never arrives expires silently.
	if r.clicks > 0 && now.Sub(r.lastClick) >= r.cfg.DoubleClick {
		r.clicks = 0
		debug.Verbose("double-click window expired, click discarded")
	}

	switch {
	case left:
		return JogLeft
	case right:
		return JogRight
	default:
		return JogStop
	}
}

// PendingClicks reports the number of clicks counted so far in the
// current double-click window. Diagnostics only.
func (r *Recognizer) PendingClicks() int {
	return r.clicks
}
