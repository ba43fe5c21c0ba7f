package motion

import (
	"github.com/HungNguyxn/PreThesis-RotationStage/internal/debug"
	"github.com/HungNguyxn/PreThesis-RotationStage/internal/hw/stepper"
	"github.com/HungNguyxn/PreThesis-RotationStage/internal/logic/gesture"
)

// Mode is the motion state of the axis. Exactly one mode is active at
// any tick.
type Mode int

const (
	Idle       Mode = iota // motor un-driven, no motion pending
	ManualJog              // a button commands continuous stepping
	SeekTarget             // autonomously stepping toward the target
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case ManualJog:
		return "manual-jog"
	case SeekTarget:
		return "seek-target"
	default:
		return "unknown"
	}
}

// Controller owns the motion mode and the saved/target positions, and
// translates gesture events into stepper activity. One axis, one motor.
type Controller struct {
	motor  *stepper.Stepper
	mode   Mode
	saved  int64
	target int64
}

// NewController creates a controller with the given default saved
// position (the recall target before any save gesture happened).
func NewController(motor *stepper.Stepper, defaultSaved int64) *Controller {
	return &Controller{
		motor: motor,
		saved: defaultSaved,
	}
}

func (c *Controller) Mode() Mode            { return c.mode }
func (c *Controller) Position() int64       { return c.motor.Position() }
func (c *Controller) SavedPosition() int64  { return c.saved }
func (c *Controller) TargetPosition() int64 { return c.target }

// Seeking reports whether a recall is in flight. While seeking, the
// polling loop skips button sampling entirely: a seek runs to
// completion and cannot be interrupted.
func (c *Controller) Seeking() bool {
	return c.mode == SeekTarget
}

// Apply consumes one gesture event. Jog events step the motor
// immediately; jogging is a continuous action re-triggered every tick
// the button stays down.
func (c *Controller) Apply(ev gesture.Event) error {
	switch ev {
	case gesture.JogLeft:
		return c.jog(-1)

	case gesture.JogRight:
		return c.jog(+1)

	case gesture.JogStop:
		if c.mode == ManualJog {
			c.mode = Idle
			debug.Live("jog stopped at %d", c.motor.Position())
			return c.motor.Disable()
		}
		return nil

	case gesture.PositionSaved:
		// No mode change: saving is a pure snapshot.
		c.saved = c.motor.Position()
		debug.Saved(c.saved)
		return nil

	case gesture.RecallRequested:
		if c.mode == SeekTarget {
			// Already in flight; ignored, not re-armed.
			return nil
		}
		c.target = c.saved
		c.mode = SeekTarget
		debug.Recall(c.target, c.motor.Position())
		return c.motor.Enable()
	}

	return nil
}

func (c *Controller) jog(dir int) error {
	if c.mode != ManualJog {
		c.mode = ManualJog
		if err := c.motor.Enable(); err != nil {
			return err
		}
	}

	pos, err := c.motor.Step(dir)
	if err != nil {
		return err
	}
	if dir < 0 {
		debug.Jog("left", pos)
	} else {
		debug.Jog("right", pos)
	}
	return nil
}

// Tick performs one seek step toward the target and checks arrival.
// The arrival test is exact equality; every step moves exactly ±1, so
// overshoot is impossible. No-op outside SeekTarget.
func (c *Controller) Tick() error {
	if c.mode != SeekTarget {
		return nil
	}

	pos := c.motor.Position()
	if pos == c.target {
		return c.arrive(pos)
	}

	dir := 1
	if c.target < pos {
		dir = -1
	}
	pos, err := c.motor.Step(dir)
	if err != nil {
		return err
	}
	if pos == c.target {
		return c.arrive(pos)
	}
	return nil
}

func (c *Controller) arrive(pos int64) error {
	c.mode = Idle
	debug.Arrived(pos)
	return c.motor.Disable()
}
