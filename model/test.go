package model

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SimType is the netlist abstraction a test runs against.
type SimType string

const (
	SimRTL   SimType = "RTL"
	SimGL    SimType = "GL"
	SimGLSDF SimType = "GL_SDF"
)

// ParseSimType validates a simulation type name.
func ParseSimType(s string) (SimType, error) {
	switch t := SimType(strings.ToUpper(s)); t {
	case SimRTL, SimGL, SimGLSDF:
		return t, nil
	}
	return "", fmt.Errorf("invalid sim type %q: must be one of RTL, GL, GL_SDF", s)
}

// Test describes a single test invocation. It is built once per invocation
// with NewTest and only read afterwards.
type Test struct {
	// Test name (the C file and cocotb test function share it)
	Name string
	// Simulation type
	Sim SimType
	// Directory the cocotb test module is imported from
	SourceDir string
	// Output directory of this test
	Dir string
	// Directory holding the compiled simulation binary, shared by tests of the same sim type
	CompilationDir string

	HexLog         string
	CompilationLog string
	TestLog        string
	HashLog        string
	// cocotb JUnit results file
	ResultsFile string

	// Preprocessor macros without the -D/+define+ prefix
	Macros       []string
	LinkerScript string
	// Verilog file whose `define lines become run plusargs
	DefinesFile string
	IncludeDirs []string
	// Directories whose verilog files make up the netlist hash
	NetlistDirs []string
}

// FullName is the display name of the test.
func (t *Test) FullName() string {
	return fmt.Sprintf("%s-%s", t.Sim, t.Name)
}

// NewTest derives all directories, log files and macros of a test.
func NewTest(name string, sim SimType, sourceDir string, paths Paths, opts Options) *Test {
	tag := opts.Tag
	if tag == "" {
		tag = "run"
	}
	runDir := filepath.Join(paths.SimPath, tag)
	dir := filepath.Join(runDir, fmt.Sprintf("%s-%s", sim, name))
	compDir := filepath.Join(runDir, "compilation", string(sim))

	t := &Test{
		Name:           name,
		Sim:            sim,
		SourceDir:      sourceDir,
		Dir:            dir,
		CompilationDir: compDir,
		HexLog:         filepath.Join(dir, "firmware.log"),
		CompilationLog: filepath.Join(dir, "compilation.log"),
		TestLog:        filepath.Join(dir, name+".log"),
		HashLog:        filepath.Join(compDir, "hash.log"),
		ResultsFile:    filepath.Join(dir, "results.xml"),
		DefinesFile:    filepath.Join(paths.CaravelVerilogPath(), "rtl", "defines.v"),
	}

	if fw := paths.FirmwarePath(); fw != "" {
		if opts.CPU == CPUArm {
			t.LinkerScript = filepath.Join(fw, "link.ld")
		} else {
			t.LinkerScript = filepath.Join(fw, "sections.lds")
		}
	}

	t.Macros = buildMacros(t, paths, opts, tag)
	t.IncludeDirs, t.NetlistDirs = buildDirs(sim, paths)
	return t
}

func buildMacros(t *Test, paths Paths, opts Options, tag string) []string {
	macros := []string{
		"USE_POWER_PINS",
		"UNIT_DELAY=#1",
		"COCOTB_SIM",
		fmt.Sprintf("SIM=%q", t.Sim),
		fmt.Sprintf("TESTNAME=%q", t.Name),
		fmt.Sprintf("TAG=%q", tag),
		fmt.Sprintf("MAIN_PATH=%q", paths.SimPath),
	}
	switch t.Sim {
	case SimRTL:
		macros = append(macros, "FUNCTIONAL")
	case SimGL:
		macros = append(macros, "FUNCTIONAL", "GL")
	case SimGLSDF:
		macros = append(macros, "GL", "ENABLE_SDF")
	}
	if opts.CPU == CPUArm {
		macros = append(macros, "ARM")
	}
	if opts.OpenFrame {
		macros = append(macros, "OPENFRAME")
	}
	return append(macros, opts.Macros...)
}

func buildDirs(sim SimType, paths Paths) (includes, netlist []string) {
	level := "rtl"
	if sim != SimRTL {
		level = "gl"
	}
	includes = []string{filepath.Join(paths.CaravelVerilogPath(), "rtl")}
	netlist = []string{
		filepath.Join(paths.UserProjectRoot, "verilog", level),
		filepath.Join(paths.CaravelVerilogPath(), level),
	}
	if v := paths.VerilogPath(); v != "" {
		includes = append(includes, filepath.Join(v, "rtl"))
		netlist = append(netlist, filepath.Join(v, level))
	}
	if sim != SimRTL {
		includes = append(includes,
			filepath.Join(paths.CaravelVerilogPath(), "gl"),
			filepath.Join(paths.UserProjectRoot, "verilog", "gl"))
	}
	return includes, netlist
}
