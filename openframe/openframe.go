package openframe

// Package openframe drives the pads, rails and reset of an OpenFrame design
// through a simulator handle. OpenFrame has no management core: tests talk to
// the user project through its GPIOs directly.

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DefaultPins is the number of GPIOs of an OpenFrame design.
const DefaultPins = 44

// PinsMacro overrides the number of active GPIOs.
const PinsMacro = "OPENFRAME_IO_PADS"

const (
	powerCycles = 10
	resetCycles = 20
)

var (
	supplyRails = []string{"vddio_tb", "vdda_tb", "vccd_tb", "vdda1_tb", "vdda2_tb", "vccd1_tb", "vccd2_tb"}
	groundRails = []string{"vssio_tb", "vssa_tb", "vssd_tb", "vssa1_tb", "vssa2_tb", "vssd1_tb", "vssd2_tb"}
)

// Signal is a named net of the testbench.
type Signal interface {
	Set(v uint64) error
	// Get returns the value and whether it resolves to 0/1 bits
	Get() (v uint64, resolvable bool, err error)
}

// Handle is the simulator side of the testbench.
type Handle interface {
	Signal(name string) (Signal, error)
	// ClockCycles waits for n rising edges of the testbench clock.
	ClockCycles(ctx context.Context, n int) error
	StartClock(periodNS int) error
	Plusargs() map[string]string
}

// Range is an inclusive span of pins, written high first.
type Range struct {
	High int
	Low  int
}

// Env is the verification environment of an OpenFrame design.
type Env struct {
	logger zerolog.Logger
	h      Handle
	pins   int
	macros map[string]string
}

// New creates an environment on h. The active pin count comes from the
// OPENFRAME_IO_PADS plusarg when present.
func New(logger zerolog.Logger, h Handle) (*Env, error) {
	e := &Env{
		logger: logger.With().Str("component", "openframe").Logger(),
		h:      h,
		pins:   DefaultPins,
		macros: designMacros(h.Plusargs()),
	}
	if v, ok := e.macros[PinsMacro]; ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, errors.Errorf("invalid %s %q", PinsMacro, v)
		}
		e.pins = n
	}
	return e, nil
}

func designMacros(plusargs map[string]string) map[string]string {
	macros := make(map[string]string, len(plusargs))
	for k, v := range plusargs {
		if strings.HasPrefix(k, "_") || strings.Contains(k, "+") {
			continue
		}
		macros[k] = v
	}
	return macros
}

// Pins returns the number of active GPIOs.
func (e *Env) Pins() int { return e.pins }

// Macros returns the design macros passed as plusargs.
func (e *Env) Macros() map[string]string { return e.macros }

func (e *Env) set(name string, v uint64) error {
	s, err := e.h.Signal(name)
	if err != nil {
		return errors.Wrapf(err, "signal %s", name)
	}
	return errors.Wrapf(s.Set(v), "set %s", name)
}

func (e *Env) wait(ctx context.Context, n int) error {
	return errors.Wrapf(e.h.ClockCycles(ctx, n), "wait %d cycles", n)
}

// StartUp powers the design, resets it and releases all GPIOs.
func (e *Env) StartUp(ctx context.Context) error {
	if err := e.PowerUp(ctx); err != nil {
		return err
	}
	if err := e.Reset(ctx); err != nil {
		return err
	}
	return e.DisableGPIODrivers(ctx)
}

// PowerUp holds all rails low for 10 cycles, then raises the supplies for
// 10 cycles.
func (e *Env) PowerUp(ctx context.Context) error {
	e.logger.Info().Msg("start powering up")
	if err := e.SetVDD(0); err != nil {
		return err
	}
	if err := e.wait(ctx, powerCycles); err != nil {
		return err
	}
	e.logger.Info().Msg("power up -> connect vdd")
	if err := e.SetVDD(1); err != nil {
		return err
	}
	return e.wait(ctx, powerCycles)
}

// SetVDD drives the supply rails to v. Ground rails are always held at 0.
func (e *Env) SetVDD(v uint64) error {
	for _, rail := range supplyRails {
		if err := e.set(rail, v); err != nil {
			return err
		}
	}
	for _, rail := range groundRails {
		if err := e.set(rail, 0); err != nil {
			return err
		}
	}
	return nil
}

// Reset asserts resetb_tb for 20 cycles and releases it for one.
func (e *Env) Reset(ctx context.Context) error {
	e.logger.Info().Msg("start resetting")
	if err := e.set("resetb_tb", 0); err != nil {
		return err
	}
	if err := e.wait(ctx, resetCycles); err != nil {
		return err
	}
	if err := e.set("resetb_tb", 1); err != nil {
		return err
	}
	if err := e.wait(ctx, 1); err != nil {
		return err
	}
	e.logger.Info().Msg("finish resetting")
	return nil
}

// DisableGPIODrivers stops the testbench driving any GPIO.
func (e *Env) DisableGPIODrivers(ctx context.Context) error {
	for i := 0; i < e.pins; i++ {
		if err := e.set(enable(i), 0); err != nil {
			return err
		}
	}
	return e.wait(ctx, 1)
}

// SetupClock starts the testbench clock.
func (e *Env) SetupClock(periodNS int) error {
	e.logger.Info().Int("period_ns", periodNS).Msg("setting up clock")
	return errors.Wrap(e.h.StartClock(periodNS), "start clock")
}

func (e *Env) inRange(n int) bool {
	if n < 0 || n >= e.pins {
		e.logger.Error().Int("gpio", n).Int("max", e.pins-1).Msg("GPIO is out of range")
		return false
	}
	return true
}

func enable(n int) string { return fmt.Sprintf("gpio%d_en", n) }
func pad(n int) string { return fmt.Sprintf("gpio%d", n) }
func monitor(n int) string { return fmt.Sprintf("gpio%d_monitor", n) }

// DriveGPIO drives bit 0 of v onto GPIO n. Pins out of range are logged and
// left alone.
func (e *Env) DriveGPIO(n int, v uint64) error {
	if !e.inRange(n) {
		return nil
	}
	if err := e.set(enable(n), 1); err != nil {
		return err
	}
	if err := e.set(pad(n), v&1); err != nil {
		return err
	}
	e.logger.Debug().Int("gpio", n).Uint64("value", v&1).Msg("drive GPIO")
	return nil
}

// DriveGPIORange drives bit i-Low of v onto each pin i of r.
func (e *Env) DriveGPIORange(r Range, v uint64) error {
	for i := r.Low; i <= r.High; i++ {
		if err := e.DriveGPIO(i, (v>>uint(i-r.Low))&1); err != nil {
			return err
		}
	}
	return nil
}

// ReleaseGPIO stops driving GPIO n.
func (e *Env) ReleaseGPIO(n int) error {
	if !e.inRange(n) {
		return nil
	}
	if err := e.set(enable(n), 0); err != nil {
		return err
	}
	e.logger.Debug().Int("gpio", n).Msg("release GPIO")
	return nil
}

// ReleaseGPIORange stops driving every pin of r.
func (e *Env) ReleaseGPIORange(r Range) error {
	for i := r.Low; i <= r.High; i++ {
		if err := e.ReleaseGPIO(i); err != nil {
			return err
		}
	}
	return nil
}

// MonitorGPIO reads the value the design drives on GPIO n. Unresolved values
// and pins out of range read as 0.
func (e *Env) MonitorGPIO(n int) (uint64, error) {
	if !e.inRange(n) {
		return 0, nil
	}
	name := monitor(n)
	s, err := e.h.Signal(name)
	if err != nil {
		return 0, errors.Wrapf(err, "signal %s", name)
	}
	v, ok, err := s.Get()
	if err != nil {
		return 0, errors.Wrapf(err, "get %s", name)
	}
	if !ok {
		return 0, nil
	}
	return v & 1, nil
}

// MonitorGPIORange packs the pins of r into a value, pin Low at bit 0.
func (e *Env) MonitorGPIORange(r Range) (uint64, error) {
	var value uint64
	for i := r.Low; i <= r.High; i++ {
		bit, err := e.MonitorGPIO(i)
		if err != nil {
			return 0, err
		}
		value |= bit << uint(i-r.Low)
	}
	return value, nil
}
