package model

import (
	"fmt"
	"strings"
)

// Simulator identifies the HDL simulator driving a test.
type Simulator string

const (
	SimulatorIcarus Simulator = "icarus"
	SimulatorVCS    Simulator = "vcs"
)

// CPU identifies the management core the firmware is compiled for.
type CPU string

const (
	CPURiscV CPU = "RISCV"
	CPUArm   CPU = "ARM"
)

// Verbosity controls how much subprocess output reaches the console.
type Verbosity string

const (
	VerbosityQuiet  Verbosity = "quiet"
	VerbosityNormal Verbosity = "normal"
	VerbosityDebug  Verbosity = "debug"
)

// ParseVerbosity validates a verbosity name.
func ParseVerbosity(s string) (Verbosity, error) {
	switch v := Verbosity(strings.ToLower(s)); v {
	case VerbosityQuiet, VerbosityNormal, VerbosityDebug:
		return v, nil
	case "":
		return VerbosityNormal, nil
	}
	return "", fmt.Errorf("invalid verbosity %q: must be one of quiet, normal, debug", s)
}

// ParseSimulator validates a simulator name. iverilog is accepted for icarus.
func ParseSimulator(s string) (Simulator, error) {
	switch strings.ToLower(s) {
	case "", "icarus", "iverilog":
		return SimulatorIcarus, nil
	case "vcs":
		return SimulatorVCS, nil
	}
	return "", fmt.Errorf("invalid simulator %q: must be icarus or vcs", s)
}

// ParseCPU validates a CPU name.
func ParseCPU(s string) (CPU, error) {
	switch c := CPU(strings.ToUpper(s)); c {
	case CPURiscV, CPUArm:
		return c, nil
	case "":
		return CPURiscV, nil
	}
	return "", fmt.Errorf("invalid cpu type %q: must be RISCV or ARM", s)
}

// DefaultImage is the docker image carrying simulators and toolchains.
const DefaultImage = "chipfoundry/dv:cocotb"

// DefaultCocotbModule is the python module cocotb imports the tests from.
const DefaultCocotbModule = "module_trail"

// Options holds the run-wide settings derived from the command line.
type Options struct {
	Simulator   Simulator
	CPU         CPU
	OpenFrame   bool
	NoDocker    bool
	Compile     bool
	CompileOnly bool
	Lint        bool
	CI          bool
	Seed        string
	Verbosity   Verbosity
	Image       string
	Module      string
	Tag         string
	Macros      []string
}

// Quiet reports whether build steps (hex, compile) should stay off the console.
func (o Options) Quiet() bool {
	return o.Verbosity != VerbosityDebug
}

// Debug reports whether debug verbosity is selected.
func (o Options) Debug() bool {
	return o.Verbosity == VerbosityDebug
}
