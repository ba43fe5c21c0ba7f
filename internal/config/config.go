package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// StepperConfig holds the configuration for the axis stepper motor.
type StepperConfig struct {
	StepPin       int `yaml:"step_pin"`
	DirPin        int `yaml:"dir_pin"`
	EnablePin     int `yaml:"enable_pin"` // A4988 ENABLE pin (BCM). 0 = not used. Active LOW.
	StepsPerRev   int `yaml:"steps_per_rev"`
	Microstepping int `yaml:"microstepping"`
}

// ButtonsConfig holds the two jog/gesture buttons.
type ButtonsConfig struct {
	LeftPin  int `yaml:"left_pin"`
	RightPin int `yaml:"right_pin"`
	// ActiveHigh selects the wiring. Default false: pins are pulled
	// up and the buttons short to ground (pressed reads LOW).
	ActiveHigh bool `yaml:"active_high"`
}

// DefaultsConfig contains generic parameters (timing, debug, mock).
type DefaultsConfig struct {
	StepDelayUs     int   `yaml:"step_delay_us"`          // delay per motor step (µs)
	PollIntervalMs  int   `yaml:"poll_interval_ms"`       // button polling period (ms)
	SaveHoldMs      int   `yaml:"save_hold_ms"`           // hold-both duration to save (ms)
	DoubleClickMs   int   `yaml:"double_click_ms"`        // double-click window (ms)
	DefaultSavedPos int64 `yaml:"default_saved_position"` // recall target before the first save
	DebugLevel      int   `yaml:"debug_level"`            // 0=off, 1=info, 2=live, 3=verbose, 4=trace
	MockGPIO        bool  `yaml:"mock_gpio"`              // use mock GPIO (true=dev/test, false=real Raspberry Pi)
}

// Config aggregates all application configuration.
type Config struct {
	Stepper  StepperConfig  `yaml:"stepper"`
	Buttons  ButtonsConfig  `yaml:"buttons"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// Load reads a YAML file and returns the configuration with defaults
// applied.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	// Basic validation
	if cfg.Stepper.StepPin <= 0 {
		return nil, fmt.Errorf("stepper.step_pin is required")
	}
	if cfg.Stepper.DirPin <= 0 {
		return nil, fmt.Errorf("stepper.dir_pin is required")
	}
	if cfg.Buttons.LeftPin <= 0 || cfg.Buttons.RightPin <= 0 {
		return nil, fmt.Errorf("buttons.left_pin and buttons.right_pin are required")
	}
	if cfg.Buttons.LeftPin == cfg.Buttons.RightPin {
		return nil, fmt.Errorf("buttons.left_pin and buttons.right_pin must differ, both are %d", cfg.Buttons.LeftPin)
	}
	if cfg.Defaults.DebugLevel < 0 || cfg.Defaults.DebugLevel > 4 {
		return nil, fmt.Errorf("debug_level must be between 0 and 4, got %d", cfg.Defaults.DebugLevel)
	}

	// Default values for timing
	if cfg.Defaults.StepDelayUs <= 0 {
		cfg.Defaults.StepDelayUs = 1000 // 1ms per step
	}
	if cfg.Defaults.PollIntervalMs <= 0 {
		cfg.Defaults.PollIntervalMs = 5
	}
	if cfg.Defaults.SaveHoldMs <= 0 {
		cfg.Defaults.SaveHoldMs = 2000
	}
	if cfg.Defaults.DoubleClickMs <= 0 {
		cfg.Defaults.DoubleClickMs = 500
	}
	if cfg.Defaults.DefaultSavedPos == 0 {
		cfg.Defaults.DefaultSavedPos = 1000
	}

	// The gesture windows are measured across polls; a poll period
	// larger than the double-click window can never see a click pair.
	if cfg.Defaults.PollIntervalMs >= cfg.Defaults.DoubleClickMs {
		return nil, fmt.Errorf("poll_interval_ms (%d) must be smaller than double_click_ms (%d)",
			cfg.Defaults.PollIntervalMs, cfg.Defaults.DoubleClickMs)
	}

	return &cfg, nil
}

// StepDelay returns the duration of one full motor step.
func (c *Config) StepDelay() time.Duration {
	return time.Duration(c.Defaults.StepDelayUs) * time.Microsecond
}

// PollInterval returns the button polling period.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Defaults.PollIntervalMs) * time.Millisecond
}

// SaveHold returns the hold-both-buttons duration that saves the
// current position.
func (c *Config) SaveHold() time.Duration {
	return time.Duration(c.Defaults.SaveHoldMs) * time.Millisecond
}

// DoubleClickWindow returns the maximum gap between two short
// both-button presses for a recall.
func (c *Config) DoubleClickWindow() time.Duration {
	return time.Duration(c.Defaults.DoubleClickMs) * time.Millisecond
}
