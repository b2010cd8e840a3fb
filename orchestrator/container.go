package orchestrator

import (
	"github.com/chipfoundry/caravelsim/cli/docker"
	"github.com/chipfoundry/caravelsim/cli/shell"
	"github.com/chipfoundry/caravelsim/model"
)

func (o *Orchestrator) image() string {
	if o.opts.Image != "" {
		return o.opts.Image
	}
	return model.DefaultImage
}

func (o *Orchestrator) baseSpec() docker.RunSpec {
	return docker.RunSpec{
		Image:       o.image(),
		User:        docker.CurrentUser(),
		Interactive: docker.Interactive(o.opts.CI),
	}
}

// simSpec describes the container simulations run in.
func (o *Orchestrator) simSpec(t *model.Test) docker.RunSpec {
	p := o.paths
	spec := o.baseSpec()
	spec.Extra = docker.DisplaySwitches()

	spec.SetEnv("COCOTB_RESULTS_FILE", t.ResultsFile)
	spec.SetEnv("CARAVEL_PATH", p.CaravelRoot)
	spec.SetEnv("CARAVEL_VERILOG_PATH", p.CaravelVerilogPath())
	spec.SetEnv("PDK_ROOT", p.PDKRoot)
	spec.SetEnv("PDK", p.PDK)
	spec.SetEnv("USER_PROJECT_VERILOG", p.UserProjectRoot+"/verilog")
	if o.opts.OpenFrame {
		spec.SetEnv("OPENFRAME", "1")
	} else if v := p.VerilogPath(); v != "" {
		spec.SetEnv("VERILOG_PATH", v)
	}

	spec.Mount(p.RunPath, p.SimPath, p.CaravelRoot)
	if !o.opts.OpenFrame {
		spec.Mount(p.MCWRoot)
	}
	spec.Mount(p.PDKRoot, p.UserProjectRoot)

	links, err := docker.SymlinkedDirs(p.UserProjectRoot)
	if err != nil {
		o.logger.Warn().Err(err).Msg("Failed to find linked directories")
	}
	spec.Mount(links...)
	if docker.HasScratch() {
		spec.Mount(docker.ScratchRuns)
	}
	return spec
}

// hexSpec describes the container firmware is compiled in.
func (o *Orchestrator) hexSpec(t *model.Test, ipFirmware []string) docker.RunSpec {
	p := o.paths
	spec := o.baseSpec()
	spec.Mount(p.HexDir(), p.RunPath, p.CaravelRoot, p.MCWRoot, t.Dir)
	spec.Mount(ipFirmware...)
	spec.Mount(p.UserProjectRoot)
	return spec
}

// simInvocation runs script for the Icarus flow, in a container unless
// containers are disabled.
func (o *Orchestrator) simInvocation(t *model.Test, script shell.Script) shell.Invocation {
	if o.opts.NoDocker {
		return shell.Native(script)
	}
	return o.docker.Invocation(o.simSpec(t), script)
}
