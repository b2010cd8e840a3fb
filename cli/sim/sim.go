package sim

// Package sim builds the compile and run commands of the supported HDL
// simulators.

import (
	"path/filepath"

	"github.com/chipfoundry/caravelsim/cli/shell"
)

// TopModule is the simulation top level of every design.
const TopModule = "caravel_top"

// Config holds what the simulator commands of one test need.
type Config struct {
	TestName string
	// Directory the simulation runs in
	TestDir string
	// Directory holding the compiled simulation
	CompilationDir string
	// Caravel verilog directory, holding rtl/toplevel_cocotb.v
	CaravelVerilogPath string
	// User project rtl directory
	UserRTL     string
	Macros      []string
	IncludeDirs []string
	Defines     []Define

	// cocotb python module holding the tests
	Module string
	// Directory the module is imported from
	PythonPath  string
	Seed        string
	ResultsFile string

	// RTL simulation. VCS collects coverage and searches UserRTL only for RTL.
	RTL  bool
	Lint bool
}

// Toplevel is the verilog file instantiating the design.
func (c Config) Toplevel() string {
	return filepath.Join(c.CaravelVerilogPath, "rtl", "toplevel_cocotb.v")
}

func (c Config) cocotbEnv(cmd *shell.Command) *shell.Command {
	cmd.SetEnv("TESTCASE", c.TestName).SetEnv("MODULE", c.Module)
	if c.PythonPath != "" {
		cmd.SetEnv("PYTHONPATH", c.PythonPath)
	}
	if c.Seed != "" {
		cmd.SetEnv("RANDOM_SEED", c.Seed)
	}
	if c.ResultsFile != "" {
		cmd.SetEnv("COCOTB_RESULTS_FILE", c.ResultsFile)
	}
	return cmd
}

func (c Config) plusargs() []string {
	args := make([]string, 0, len(c.Macros)+len(c.Defines))
	for _, m := range c.Macros {
		args = append(args, "+"+m)
	}
	return append(args, Plusargs(c.Defines)...)
}
