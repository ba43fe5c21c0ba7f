package control

import (
	"context"
	"sync"
	"time"

	"github.com/HungNguyxn/PreThesis-RotationStage/internal/hw/button"
	"github.com/HungNguyxn/PreThesis-RotationStage/internal/logic/gesture"
	"github.com/HungNguyxn/PreThesis-RotationStage/internal/logic/motion"
)

// Status is a read-only snapshot of the axis state, safe to serve to
// observers (web handlers) while the loop keeps running.
type Status struct {
	Mode     string `json:"mode"`
	Position int64  `json:"position"`
	Saved    int64  `json:"saved_position"`
	Target   int64  `json:"target_position"`
}

// Loop is the polling loop tying the pieces together. Each tick:
// sample buttons, recognize the gesture, feed the event into the
// motion controller, then let the controller act (jog step happens
// inside Apply, seek step inside Tick).
//
// All mutation happens on the goroutine running Run; only the Status
// snapshot is shared.
type Loop struct {
	left   *button.Button
	right  *button.Button
	rec    *gesture.Recognizer
	motion *motion.Controller

	interval time.Duration
	now      func() time.Time

	mu     sync.RWMutex
	status Status
}

// NewLoop wires buttons, recognizer and motion controller into a
// polling loop with the given tick interval.
func NewLoop(left, right *button.Button, rec *gesture.Recognizer, m *motion.Controller, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = 5 * time.Millisecond
	}
	l := &Loop{
		left:     left,
		right:    right,
		rec:      rec,
		motion:   m,
		interval: interval,
		now:      time.Now,
	}
	l.snapshot()
	return l
}

// Run polls until the context is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := l.Tick(); err != nil {
				return err
			}
		}
	}
}

// Tick runs one poll iteration.
func (l *Loop) Tick() error {
	err := l.tick(l.now())
	l.snapshot()
	return err
}

func (l *Loop) tick(now time.Time) error {
	// While a recall is in flight, button input is ignored until
	// arrival: the recognizer is not even polled.
	if l.motion.Seeking() {
		return l.motion.Tick()
	}

	left, err := l.left.Pressed()
	if err != nil {
		return err
	}
	right, err := l.right.Pressed()
	if err != nil {
		return err
	}

	ev := l.rec.Recognize(left, right, now)
	if err := l.motion.Apply(ev); err != nil {
		return err
	}

	// A recall entered this tick takes its first seek step right away
	// (and a zero-distance recall settles back to idle immediately).
	if l.motion.Seeking() {
		return l.motion.Tick()
	}
	return nil
}

func (l *Loop) snapshot() {
	s := Status{
		Mode:     l.motion.Mode().String(),
		Position: l.motion.Position(),
		Saved:    l.motion.SavedPosition(),
		Target:   l.motion.TargetPosition(),
	}
	l.mu.Lock()
	l.status = s
	l.mu.Unlock()
}

// Status returns the snapshot taken at the end of the last tick.
func (l *Loop) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status
}
