package sim

import (
	"path/filepath"

	"github.com/chipfoundry/caravelsim/cli/shell"
)

var coverageArgs = []string{"-cm", "line+tgl+cond+fsm+branch+assert"}

// VCSBinary returns the compiled simulation of VCS.
func VCSBinary(compilationDir string) string {
	return filepath.Join(compilationDir, "simv")
}

// VloganArgs builds the analysis arguments.
func VloganArgs(c Config) []string {
	args := []string{"-full64", "-sverilog", "+error+30", c.Toplevel()}
	if c.RTL && c.UserRTL != "" {
		args = append(args, "+incdir+"+c.UserRTL)
	}
	for _, m := range c.Macros {
		args = append(args, "+define+"+m)
	}
	return append(args, "-l", filepath.Join(c.CompilationDir, "analysis.log"), "-o", c.CompilationDir)
}

// VCSArgs builds the elaboration arguments. The trailing load word is added
// by VCSCompile because it needs shell expansion.
func VCSArgs(c Config) []string {
	var args []string
	if c.Lint {
		args = append(args, "+lint=all")
	}
	args = append(args, "-negdelay")
	if c.RTL {
		args = append(args, coverageArgs...)
	}
	return append(args,
		"-error=noZMMCM", "-debug_access+all", "+error+50", "+vcs+loopreport+1000000",
		"-diag=sdf:verbose", "+sdfverbose", "+neg_tchk", "-full64",
		"-l", filepath.Join(c.CompilationDir, "test_compilation.log"),
		TopModule,
		"-Mdir="+filepath.Join(c.CompilationDir, "csrc"),
		"-o", VCSBinary(c.CompilationDir),
		"+vpi", "-P", "pli.tab", "-load",
	)
}

// VCSCompile builds the analysis and elaboration commands.
func VCSCompile(c Config) shell.Script {
	return shell.Script{
		shell.NewCommand("vlogan", VloganArgs(c)...).In(c.CompilationDir),
		shell.NewCommand("vcs", VCSArgs(c)...).
			ArgExpr("$(cocotb-config --lib-name-path vpi vcs)").
			In(c.CompilationDir),
	}
}

// VCSRun builds the command running the compiled simulation under cocotb.
func VCSRun(c Config) shell.Script {
	cmd := shell.NewCommand(VCSBinary(c.CompilationDir), "+vcs+dumpvars+all")
	if c.RTL {
		cmd.Arg(coverageArgs...)
	}
	cmd.Arg("-cm_name", c.TestName).Arg(c.plusargs()...).In(c.TestDir)
	return shell.Script{c.cocotbEnv(cmd)}
}
