package sim

import (
	"path/filepath"

	"github.com/chipfoundry/caravelsim/cli/shell"
)

// IcarusBinary returns the compiled simulation of Icarus Verilog.
func IcarusBinary(compilationDir string) string {
	return filepath.Join(compilationDir, "sim.vvp")
}

// IcarusCompileArgs builds the iverilog arguments.
func IcarusCompileArgs(c Config) []string {
	args := []string{"-g2012", "-Ttyp"}
	for _, m := range c.Macros {
		args = append(args, "-D"+m)
	}
	if c.UserRTL != "" {
		args = append(args, "-I", c.UserRTL)
	}
	for _, dir := range c.IncludeDirs {
		args = append(args, "-I", dir)
	}
	return append(args, "-o", IcarusBinary(c.CompilationDir), "-s", TopModule, c.Toplevel())
}

// IcarusCompile builds the command compiling the simulation.
func IcarusCompile(c Config) shell.Script {
	return shell.Script{
		shell.NewCommand("iverilog", IcarusCompileArgs(c)...).In(c.CompilationDir),
	}
}

// IcarusRun builds the command running the compiled simulation under cocotb.
func IcarusRun(c Config) shell.Script {
	cmd := shell.NewCommand("vvp", "-M").
		ArgExpr("$(cocotb-config --prefix)/cocotb/libs").
		Arg("-m", "libcocotbvpi_icarus", IcarusBinary(c.CompilationDir)).
		Arg(c.plusargs()...).
		In(c.TestDir)
	return shell.Script{c.cocotbEnv(cmd)}
}
