package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/HungNguyxn/PreThesis-RotationStage/internal/config"
	"github.com/HungNguyxn/PreThesis-RotationStage/internal/debug"
	"github.com/HungNguyxn/PreThesis-RotationStage/internal/hw/button"
	"github.com/HungNguyxn/PreThesis-RotationStage/internal/hw/gpio"
	"github.com/HungNguyxn/PreThesis-RotationStage/internal/hw/stepper"
	"github.com/HungNguyxn/PreThesis-RotationStage/internal/logic/control"
	"github.com/HungNguyxn/PreThesis-RotationStage/internal/logic/gesture"
	"github.com/HungNguyxn/PreThesis-RotationStage/internal/logic/motion"
	"github.com/HungNguyxn/PreThesis-RotationStage/internal/web"
)

// overrides holds CLI values that replace config timings when non-zero.
type overrides struct {
	saveHoldMs    int
	doubleClickMs int
	pollMs        int
}

func main() {
	// CLI flags
	webPort := &webPortFlag{defaultPort: 8080}
	flag.Var(webPort, "web", "start status web server on port; -web= for default 8080, -web 8980 for custom port")
	cfgPath := flag.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	saveHoldMs := flag.Int("save_hold_ms", 0, "override hold-both-to-save threshold in ms")
	doubleClickMs := flag.Int("double_click_ms", 0, "override double-click window in ms")
	pollMs := flag.Int("poll_interval_ms", 0, "override button polling period in ms")
	moveSteps := flag.Int("move", 0, "move N raw steps and exit (maintenance)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	// Validate CLI overrides (only non-zero values are applied; zero means "use config default")
	ov := overrides{saveHoldMs: *saveHoldMs, doubleClickMs: *doubleClickMs, pollMs: *pollMs}
	if err := validateCLIOverrides(ov); err != nil {
		log.Fatalf("invalid CLI override: %v", err)
	}
	applyOverrides(cfg, ov)

	// Initialize debug system
	debug.Init(cfg.Defaults.DebugLevel)
	debug.Section("Initialization")
	debug.Value("Config path", *cfgPath)
	debug.Value("Debug level", cfg.Defaults.DebugLevel)
	debug.Value("Mock GPIO", cfg.Defaults.MockGPIO)

	// Initialize GPIO driver
	gpioDriver, err := gpio.NewDriver(cfg.Defaults.MockGPIO)
	if err != nil {
		log.Fatalf("init GPIO failed: %v", err)
	}
	defer func() {
		if err := gpioDriver.Close(); err != nil {
			log.Printf("closing GPIO driver failed: %v", err)
		}
	}()

	// Initialize the axis motor
	motor := stepper.NewStepper(gpioDriver, stepper.Config{
		StepPin:       cfg.Stepper.StepPin,
		DirPin:        cfg.Stepper.DirPin,
		EnablePin:     cfg.Stepper.EnablePin,
		StepsPerRev:   cfg.Stepper.StepsPerRev,
		Microstepping: cfg.Stepper.Microstepping,
		StepDelay:     cfg.StepDelay() / 2, // per half-cycle of the STEP pulse
	})
	debug.Value("Step pin", cfg.Stepper.StepPin)
	debug.Value("Dir pin", cfg.Stepper.DirPin)
	debug.Value("Enable pin", cfg.Stepper.EnablePin)

	// Maintenance mode: raw move, then exit
	if *moveSteps != 0 {
		debug.Info("maintenance move: %d steps", *moveSteps)
		if err := motor.MoveSteps(*moveSteps); err != nil {
			log.Fatalf("move failed: %v", err)
		}
		return
	}

	// Initialize buttons
	leftBtn, err := button.New(gpioDriver, cfg.Buttons.LeftPin, cfg.Buttons.ActiveHigh)
	if err != nil {
		log.Fatalf("init left button failed: %v", err)
	}
	rightBtn, err := button.New(gpioDriver, cfg.Buttons.RightPin, cfg.Buttons.ActiveHigh)
	if err != nil {
		log.Fatalf("init right button failed: %v", err)
	}
	debug.Value("Left button pin", cfg.Buttons.LeftPin)
	debug.Value("Right button pin", cfg.Buttons.RightPin)

	// Build the two state machines and the polling loop
	recognizer := gesture.NewRecognizer(gesture.Config{
		SaveHold:    cfg.SaveHold(),
		DoubleClick: cfg.DoubleClickWindow(),
	})
	controller := motion.NewController(motor, cfg.Defaults.DefaultSavedPos)
	loop := control.NewLoop(leftBtn, rightBtn, recognizer, controller, cfg.PollInterval())

	debug.Value("Save hold", cfg.SaveHold())
	debug.Value("Double-click window", cfg.DoubleClickWindow())
	debug.Value("Poll interval", cfg.PollInterval())
	debug.Value("Default saved position", cfg.Defaults.DefaultSavedPos)

	// Optional status web server alongside the loop
	if port := webPort.port(); port > 0 {
		broadcaster := web.NewStatusBroadcaster()
		debug.SetOutput(io.MultiWriter(os.Stdout, web.BroadcastWriter(broadcaster)))

		srv := web.NewServer(fmt.Sprintf(":%d", port), broadcaster, loop.Status)
		go func() {
			if err := srv.Run(ctx); err != nil {
				log.Printf("web server: %v", err)
			}
		}()
	}

	debug.Section("Polling Loop Started")
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("control loop: %v", err)
	}
}

// validateCLIOverrides checks that non-zero CLI overrides are within valid ranges.
// Zero values are ignored (they mean "use config default").
func validateCLIOverrides(ov overrides) error {
	if ov.saveHoldMs != 0 && (ov.saveHoldMs < 100 || ov.saveHoldMs > 60000) {
		return fmt.Errorf("save_hold_ms must be between 100 and 60000, got %d", ov.saveHoldMs)
	}
	if ov.doubleClickMs != 0 && (ov.doubleClickMs < 50 || ov.doubleClickMs > 5000) {
		return fmt.Errorf("double_click_ms must be between 50 and 5000, got %d", ov.doubleClickMs)
	}
	if ov.pollMs != 0 && (ov.pollMs < 1 || ov.pollMs > 100) {
		return fmt.Errorf("poll_interval_ms must be between 1 and 100, got %d", ov.pollMs)
	}
	return nil
}

// applyOverrides mutates cfg with overrides. Only non-zero override values are applied.
func applyOverrides(cfg *config.Config, ov overrides) {
	if ov.saveHoldMs > 0 {
		cfg.Defaults.SaveHoldMs = ov.saveHoldMs
	}
	if ov.doubleClickMs > 0 {
		cfg.Defaults.DoubleClickMs = ov.doubleClickMs
	}
	if ov.pollMs > 0 {
		cfg.Defaults.PollIntervalMs = ov.pollMs
	}
}

// webPortFlag implements flag.Value for -web: 0 = disabled, -web= → 8080, -web 8980 → 8980.
type webPortFlag struct {
	val         int
	defaultPort int
}

func (w *webPortFlag) String() string {
	if w.val == 0 {
		return "0"
	}
	return strconv.Itoa(w.val)
}

func (w *webPortFlag) Set(s string) error {
	if s == "" {
		w.val = w.defaultPort
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v <= 0 || v > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", v)
	}
	w.val = v
	return nil
}

func (w *webPortFlag) port() int { return w.val }
