package motion

import (
	"testing"
	"time"

	"github.com/HungNguyxn/PreThesis-RotationStage/internal/hw/gpio"
	"github.com/HungNguyxn/PreThesis-RotationStage/internal/hw/stepper"
	"github.com/HungNguyxn/PreThesis-RotationStage/internal/logic/gesture"
)

func newMockStepper() *stepper.Stepper {
	drv := gpio.NewMockDriver()
	return stepper.NewStepper(drv, stepper.Config{
		StepPin:       1,
		DirPin:        2,
		EnablePin:     3,
		StepsPerRev:   200,
		Microstepping: 16,
		StepDelay:     1 * time.Microsecond,
	})
}

func TestController_StartsIdle(t *testing.T) {
	c := NewController(newMockStepper(), 1000)
	if c.Mode() != Idle {
		t.Errorf("initial mode = %v, want Idle", c.Mode())
	}
	if c.SavedPosition() != 1000 {
		t.Errorf("initial saved position = %d, want 1000", c.SavedPosition())
	}
	if c.Position() != 0 {
		t.Errorf("initial position = %d, want 0", c.Position())
	}
}

func TestController_JogLeftStepsBackward(t *testing.T) {
	c := NewController(newMockStepper(), 1000)

	for i := 0; i < 5; i++ {
		if err := c.Apply(gesture.JogLeft); err != nil {
			t.Fatalf("Apply(JogLeft): %v", err)
		}
	}
	if c.Mode() != ManualJog {
		t.Errorf("mode = %v, want ManualJog", c.Mode())
	}
	if c.Position() != -5 {
		t.Errorf("position = %d, want -5", c.Position())
	}
}

func TestController_JogRightStepsForward(t *testing.T) {
	c := NewController(newMockStepper(), 1000)

	for i := 0; i < 3; i++ {
		if err := c.Apply(gesture.JogRight); err != nil {
			t.Fatalf("Apply(JogRight): %v", err)
		}
	}
	if c.Position() != 3 {
		t.Errorf("position = %d, want 3", c.Position())
	}
}

func TestController_JogDirectionChange(t *testing.T) {
	c := NewController(newMockStepper(), 1000)

	c.Apply(gesture.JogRight)
	c.Apply(gesture.JogRight)
	c.Apply(gesture.JogLeft)
	if c.Mode() != ManualJog {
		t.Errorf("mode = %v, want ManualJog", c.Mode())
	}
	if c.Position() != 1 {
		t.Errorf("position = %d, want 1", c.Position())
	}
}

func TestController_JogStopReturnsToIdle(t *testing.T) {
	c := NewController(newMockStepper(), 1000)

	c.Apply(gesture.JogLeft)
	if err := c.Apply(gesture.JogStop); err != nil {
		t.Fatalf("Apply(JogStop): %v", err)
	}
	if c.Mode() != Idle {
		t.Errorf("mode = %v, want Idle", c.Mode())
	}
	// Position does not move on stop.
	if c.Position() != -1 {
		t.Errorf("position = %d, want -1", c.Position())
	}
}

func TestController_JogStopWhileIdleIsNoop(t *testing.T) {
	c := NewController(newMockStepper(), 1000)

	if err := c.Apply(gesture.JogStop); err != nil {
		t.Fatalf("Apply(JogStop): %v", err)
	}
	if c.Mode() != Idle {
		t.Errorf("mode = %v, want Idle", c.Mode())
	}
}

func TestController_SaveSnapshotsPositionWithoutModeChange(t *testing.T) {
	c := NewController(newMockStepper(), 1000)

	for i := 0; i < 7; i++ {
		c.Apply(gesture.JogRight)
	}
	if err := c.Apply(gesture.PositionSaved); err != nil {
		t.Fatalf("Apply(PositionSaved): %v", err)
	}
	if c.SavedPosition() != 7 {
		t.Errorf("saved position = %d, want 7", c.SavedPosition())
	}
	// Save does not change the mode.
	if c.Mode() != ManualJog {
		t.Errorf("mode = %v, want ManualJog", c.Mode())
	}
}

func TestController_RecallEntersSeekWithSavedTarget(t *testing.T) {
	c := NewController(newMockStepper(), 42)

	if err := c.Apply(gesture.RecallRequested); err != nil {
		t.Fatalf("Apply(RecallRequested): %v", err)
	}
	if c.Mode() != SeekTarget {
		t.Errorf("mode = %v, want SeekTarget", c.Mode())
	}
	if c.TargetPosition() != 42 {
		t.Errorf("target = %d, want 42", c.TargetPosition())
	}
}

func TestController_SeekStepsExactlyToTarget(t *testing.T) {
	c := NewController(newMockStepper(), 10)

	c.Apply(gesture.RecallRequested)

	// Each tick moves exactly one step closer, never past the target.
	for i := 1; i <= 10; i++ {
		if err := c.Tick(); err != nil {
			t.Fatalf("Tick %d: %v", i, err)
		}
		if got := c.Position(); got != int64(i) {
			t.Fatalf("after tick %d: position = %d, want %d", i, got, i)
		}
	}
	if c.Mode() != Idle {
		t.Errorf("mode after arrival = %v, want Idle", c.Mode())
	}

	// Further ticks do nothing.
	if err := c.Tick(); err != nil {
		t.Fatalf("Tick after arrival: %v", err)
	}
	if c.Position() != 10 {
		t.Errorf("position after extra tick = %d, want 10", c.Position())
	}
}

func TestController_SeekBackward(t *testing.T) {
	c := NewController(newMockStepper(), -4)

	c.Apply(gesture.RecallRequested)
	for i := 0; i < 4; i++ {
		if err := c.Tick(); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
	if c.Position() != -4 {
		t.Errorf("position = %d, want -4", c.Position())
	}
	if c.Mode() != Idle {
		t.Errorf("mode = %v, want Idle", c.Mode())
	}
}

func TestController_RecallWhenAlreadyAtTarget(t *testing.T) {
	c := NewController(newMockStepper(), 0)

	c.Apply(gesture.RecallRequested)
	if err := c.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if c.Mode() != Idle {
		t.Errorf("mode = %v, want Idle (zero-distance seek)", c.Mode())
	}
	if c.Position() != 0 {
		t.Errorf("position = %d, want 0", c.Position())
	}
}

func TestController_RecallWhileSeekingIsIgnored(t *testing.T) {
	c := NewController(newMockStepper(), 10)

	c.Apply(gesture.RecallRequested)
	c.Tick()
	c.Tick()

	// A second recall mid-seek does not restart or retarget.
	if err := c.Apply(gesture.RecallRequested); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if c.TargetPosition() != 10 {
		t.Errorf("target = %d, want 10", c.TargetPosition())
	}
	if c.Position() != 2 {
		t.Errorf("position = %d, want 2", c.Position())
	}
}

func TestController_RecallUsesValueSavedBeforeSeek(t *testing.T) {
	c := NewController(newMockStepper(), 1000)

	for i := 0; i < 5; i++ {
		c.Apply(gesture.JogRight)
	}
	c.Apply(gesture.PositionSaved) // saved = 5
	c.Apply(gesture.JogRight)      // position = 6
	c.Apply(gesture.RecallRequested)

	if c.TargetPosition() != 5 {
		t.Errorf("target = %d, want 5 (last saved value)", c.TargetPosition())
	}

	// Saving mid-seek must not move an in-flight target. The loop
	// never produces events while seeking, but the target is latched
	// at recall time regardless.
	c.Tick()
	if c.TargetPosition() != 5 {
		t.Errorf("target changed mid-seek: %d, want 5", c.TargetPosition())
	}
}

func TestController_ModeExclusivity(t *testing.T) {
	c := NewController(newMockStepper(), 3)

	events := []gesture.Event{
		gesture.JogRight, gesture.JogRight, gesture.JogStop,
		gesture.PositionSaved, gesture.RecallRequested,
	}
	check := func(step string) {
		m := c.Mode()
		if m != Idle && m != ManualJog && m != SeekTarget {
			t.Fatalf("%s: invalid mode %d", step, m)
		}
	}
	check("initial")
	for _, ev := range events {
		if err := c.Apply(ev); err != nil {
			t.Fatalf("Apply(%v): %v", ev, err)
		}
		check(ev.String())
	}
	for i := 0; i < 5; i++ {
		c.Tick()
		check("tick")
	}
}

func TestController_TickOutsideSeekIsNoop(t *testing.T) {
	c := NewController(newMockStepper(), 1000)

	if err := c.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if c.Position() != 0 {
		t.Errorf("position = %d, want 0", c.Position())
	}
	if c.Mode() != Idle {
		t.Errorf("mode = %v, want Idle", c.Mode())
	}
}

func TestMode_String(t *testing.T) {
	cases := []struct {
		mode Mode
		want string
	}{
		{Idle, "idle"},
		{ManualJog, "manual-jog"},
		{SeekTarget, "seek-target"},
		{Mode(99), "unknown"},
	}
	for _, tc := range cases {
		if got := tc.mode.String(); got != tc.want {
			t.Errorf("Mode(%d).String() = %q, want %q", tc.mode, got, tc.want)
		}
	}
}
