package button

import (
	"github.com/HungNguyxn/PreThesis-RotationStage/internal/hw/gpio"
)

// Button reads one momentary push button through the GPIO driver.
// The default wiring is active-low: the pin is pulled up and the
// button shorts it to ground, so a pressed button reads LOW.
type Button struct {
	gpio       gpio.Driver
	pin        int
	activeHigh bool
}

// New configures the pin as an input and returns the button.
// activeHigh selects the wiring: false (default wiring) means
// pull-up + switch to ground, true means pull-down + switch to VCC.
func New(g gpio.Driver, pin int, activeHigh bool) (*Button, error) {
	mode := gpio.InputPullup
	if activeHigh {
		mode = gpio.Input
	}
	if err := g.SetupPin(pin, mode); err != nil {
		return nil, err
	}
	return &Button{
		gpio:       g,
		pin:        pin,
		activeHigh: activeHigh,
	}, nil
}

// Pin returns the BCM pin number of the button.
func (b *Button) Pin() int {
	return b.pin
}

// Pressed samples the instantaneous state of the button.
// No debouncing is done here; the gesture layer tolerates noise
// because all timing is measured in wall-clock time across polls.
func (b *Button) Pressed() (bool, error) {
	level, err := b.gpio.ReadPin(b.pin)
	if err != nil {
		return false, err
	}
	if b.activeHigh {
		return level == gpio.High, nil
	}
	return level == gpio.Low, nil
}
