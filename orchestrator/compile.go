package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chipfoundry/caravelsim/cli/shell"
	"github.com/chipfoundry/caravelsim/cli/sim"
	"github.com/chipfoundry/caravelsim/hashcache"
	"github.com/chipfoundry/caravelsim/model"
)

// Reason explains a compile decision.
type Reason int

const (
	ReasonSkip Reason = iota
	ReasonMissing
	ReasonForced
	ReasonChanged
)

func (r Reason) String() string {
	switch r {
	case ReasonMissing:
		return "binary not found"
	case ReasonForced:
		return "compile flag is set"
	case ReasonChanged:
		return "netlist has changed"
	}
	return "netlist has not changed"
}

// Decide returns whether the binary must be rebuilt, in order: it is
// missing, a rebuild is forced, or the netlist changed and the binary is not
// locked in session. The netlist hash is checked, and persisted, only when
// neither of the first two rules applies.
func Decide(binary string, force bool, cache *hashcache.Cache, netlist []string, session *Session) (Reason, error) {
	if _, err := os.Stat(binary); err != nil {
		return ReasonMissing, nil
	}
	if force {
		return ReasonForced, nil
	}
	same, err := cache.IsSame(netlist)
	if err != nil {
		return ReasonSkip, err
	}
	if !same && !session.Locked(binary) {
		return ReasonChanged, nil
	}
	return ReasonSkip, nil
}

func (o *Orchestrator) simConfig(t *model.Test) sim.Config {
	c := sim.Config{
		TestName:           t.Name,
		TestDir:            t.Dir,
		CompilationDir:     t.CompilationDir,
		CaravelVerilogPath: o.paths.CaravelVerilogPath(),
		UserRTL:            filepath.Join(o.paths.UserProjectRoot, "verilog", "rtl"),
		Macros:             t.Macros,
		IncludeDirs:        t.IncludeDirs,
		Module:             o.opts.Module,
		PythonPath:         t.SourceDir,
		Seed:               o.opts.Seed,
		ResultsFile:        t.ResultsFile,
		RTL:                t.Sim == model.SimRTL,
		Lint:               o.opts.Lint,
	}
	if c.Module == "" {
		c.Module = model.DefaultCocotbModule
	}
	return c
}

func (o *Orchestrator) binary(t *model.Test) string {
	if o.opts.Simulator == model.SimulatorVCS {
		return sim.VCSBinary(t.CompilationDir)
	}
	return sim.IcarusBinary(t.CompilationDir)
}

func (o *Orchestrator) compile(ctx context.Context, t *model.Test, res *model.TestResult) error {
	binary := o.binary(t)
	netlist, err := netlistFiles(t.NetlistDirs)
	if err != nil {
		return fmt.Errorf("failed to collect netlist: %w", err)
	}
	cache := hashcache.New(t.HashLog)

	reason, err := Decide(binary, o.opts.Compile, cache, netlist, o.session)
	if err != nil {
		return err
	}

	if reason == ReasonSkip {
		if !o.session.Locked(binary) {
			o.logger.Info().Str("test", t.FullName()).Msg("Skipping compilation as netlist has not changed")
		}
		res.Enter(model.StageSkipCompile)
		o.session.Lock(binary)
		return nil
	}

	o.logger.Info().Str("test", t.FullName()).Str("reason", reason.String()).Msg("Compiling")
	res.Enter(model.StageCompiling)

	if err := os.Remove(binary); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale binary: %w", err)
	}

	c := o.simConfig(t)
	var inv shell.Invocation
	if o.opts.Simulator == model.SimulatorVCS {
		inv = shell.Native(sim.VCSCompile(c))
	} else {
		inv = o.simInvocation(t, sim.IcarusCompile(c))
	}

	code := o.exec.Run(ctx, inv, t.CompilationLog, o.opts.Quiet())
	if code != 0 || !exists(binary) {
		return fmt.Errorf("compilation failed (exit code %d), for more info refer to %s", code, t.CompilationLog)
	}

	if reason != ReasonChanged {
		if _, err := cache.Write(netlist); err != nil {
			return err
		}
	}
	res.Enter(model.StageCompiled)
	o.session.Lock(binary)
	return nil
}

func (o *Orchestrator) run(ctx context.Context, t *model.Test, res *model.TestResult) error {
	c := o.simConfig(t)
	var err error
	if exists(t.DefinesFile) {
		c.Defines, err = sim.ReadDefines(t.DefinesFile)
		if err != nil {
			return err
		}
	} else {
		o.logger.Warn().Str("file", t.DefinesFile).Msg("Defines file not found")
	}

	// stale results would be read as the outcome of this run
	if err := os.Remove(t.ResultsFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove old results: %w", err)
	}

	var inv shell.Invocation
	if o.opts.Simulator == model.SimulatorVCS {
		inv = shell.Native(sim.VCSRun(c))
	} else {
		inv = o.simInvocation(t, sim.IcarusRun(c))
	}

	res.Enter(model.StageRunning)
	o.logger.Debug().Str("test", t.FullName()).Msg("Running simulation")
	res.ExitCode = o.exec.Run(ctx, inv, t.TestLog, o.opts.Verbosity == model.VerbosityQuiet)
	if err := ctx.Err(); err != nil {
		return err
	}

	res.Status, err = ReadStatus(t.ResultsFile, res.ExitCode)
	if err != nil {
		o.logger.Warn().Err(err).Str("test", t.FullName()).Msg("Failed to read results")
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
