package stepper

import (
	"time"

	"github.com/HungNguyxn/PreThesis-RotationStage/internal/debug"
	"github.com/HungNguyxn/PreThesis-RotationStage/internal/hw/gpio"
)

// Config holds the hardware configuration for a stepper motor.
type Config struct {
	StepPin       int
	DirPin        int
	EnablePin     int           // A4988 ENABLE pin (BCM). 0 = not used. Active LOW (LOW=enabled).
	StepsPerRev   int
	Microstepping int
	StepDelay     time.Duration // delay per half-cycle of STEP pulse. Total step = 2*StepDelay.
}

// Stepper drives a single axis one step at a time and keeps the
// signed absolute position counter. Position 0 is wherever the axis
// was when the process started; each forward step adds 1, each
// backward step subtracts 1.
type Stepper struct {
	gpio     gpio.Driver
	cfg      Config
	delay    time.Duration // delay between STEP pulse half-cycles
	position int64
}

// NewStepper creates a new stepper motor controller.
// cfg.StepDelay: if 0, defaults to 1ms per half-cycle.
func NewStepper(g gpio.Driver, cfg Config) *Stepper {
	_ = g.SetupPin(cfg.StepPin, gpio.Output)
	_ = g.SetupPin(cfg.DirPin, gpio.Output)

	delay := cfg.StepDelay
	if delay <= 0 {
		delay = 1 * time.Millisecond
	}

	s := &Stepper{
		gpio:  g,
		cfg:   cfg,
		delay: delay,
	}

	// A4988 ENABLE: active LOW. LOW = enabled, HIGH = disabled.
	if cfg.EnablePin > 0 {
		_ = g.SetupPin(cfg.EnablePin, gpio.Output)
		_ = g.WritePin(cfg.EnablePin, gpio.Low) // enable by default
	}

	return s
}

// Position returns the current absolute position in steps.
func (s *Stepper) Position() int64 {
	return s.position
}

// Step emits one motor step in the given direction (dir > 0 forward,
// dir < 0 backward) and returns the updated absolute position.
// dir == 0 does nothing.
func (s *Stepper) Step(dir int) (int64, error) {
	if dir == 0 {
		return s.position, nil
	}

	dirLevel := gpio.High
	delta := int64(1)
	if dir < 0 {
		dirLevel = gpio.Low
		delta = -1
	}

	if err := s.gpio.WritePin(s.cfg.DirPin, dirLevel); err != nil {
		return s.position, err
	}
	if err := s.stepPulse(); err != nil {
		return s.position, err
	}

	s.position += delta
	debug.Trace("Stepper: step %+d, position %d", delta, s.position)
	return s.position, nil
}

// MoveSteps moves the motor by a number of steps (positive or negative).
func (s *Stepper) MoveSteps(steps int) error {
	if steps == 0 {
		return nil
	}

	dir := 1
	count := steps
	if steps < 0 {
		dir = -1
		count = -steps
	}

	debug.Live("Stepper: moving %d steps (dir %+d) on pin %d", count, dir, s.cfg.StepPin)

	for i := 0; i < count; i++ {
		if _, err := s.Step(dir); err != nil {
			return err
		}
	}
	return nil
}

func (s *Stepper) stepPulse() error {
	if err := s.gpio.WritePin(s.cfg.StepPin, gpio.High); err != nil {
		return err
	}
	time.Sleep(s.delay)
	if err := s.gpio.WritePin(s.cfg.StepPin, gpio.Low); err != nil {
		return err
	}
	time.Sleep(s.delay)
	return nil
}

// Enable turns on the motor driver (A4988 ENABLE=LOW). Motor holds position.
func (s *Stepper) Enable() error {
	if s.cfg.EnablePin <= 0 {
		return nil
	}
	return s.gpio.WritePin(s.cfg.EnablePin, gpio.Low)
}

// Disable turns off the motor driver (A4988 ENABLE=HIGH). Motor freewheels,
// no holding torque. Used while the axis is idle.
func (s *Stepper) Disable() error {
	if s.cfg.EnablePin <= 0 {
		return nil
	}
	return s.gpio.WritePin(s.cfg.EnablePin, gpio.High)
}
