package orchestrator

// Package orchestrator drives a test through firmware generation, simulator
// compilation and the cocotb run.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/chipfoundry/caravelsim/cli/docker"
	"github.com/chipfoundry/caravelsim/cli/shell"
	"github.com/chipfoundry/caravelsim/model"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
)

var (
	// ErrUnsupported is returned for simulator and sim type combinations that cannot run.
	ErrUnsupported = errors.New("unsupported simulation")
	// ErrTestNotFound is returned when the sources of a test cannot be located.
	ErrTestNotFound = errors.New("test not found")
)

// Executor runs a process to completion and returns its exit code.
type Executor interface {
	Run(ctx context.Context, inv shell.Invocation, logPath string, quiet bool) int
}

// Reporter is notified around each test of RunAll.
type Reporter interface {
	TestStarted(t *model.Test)
	TestFinished(r *model.TestResult)
}

// Orchestrator runs tests of one invocation.
type Orchestrator struct {
	logger   zerolog.Logger
	paths    model.Paths
	opts     model.Options
	session  *Session
	exec     Executor
	docker   *docker.Client
	reporter Reporter
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDocker sets the client used to build container invocations.
func WithDocker(c *docker.Client) Option {
	return func(o *Orchestrator) { o.docker = c }
}

// WithReporter sets the reporter of RunAll.
func WithReporter(r Reporter) Option {
	return func(o *Orchestrator) { o.reporter = r }
}

// New creates an orchestrator.
func New(logger zerolog.Logger, paths model.Paths, opts model.Options, session *Session, exec Executor, options ...Option) *Orchestrator {
	o := &Orchestrator{
		logger:  logger,
		paths:   paths,
		opts:    opts,
		session: session,
		exec:    exec,
		docker:  docker.New("", nil),
	}
	for _, opt := range options {
		opt(o)
	}
	return o
}

// NeedsDocker reports whether any step of a run with opts uses containers.
func NeedsDocker(opts model.Options) bool {
	if opts.NoDocker {
		return false
	}
	if opts.Simulator == model.SimulatorIcarus {
		return true
	}
	return !opts.OpenFrame && opts.CPU == model.CPURiscV
}

// RunTest builds and runs a single test. The returned result is never nil;
// an error means the test could not be run to completion.
func (o *Orchestrator) RunTest(ctx context.Context, t *model.Test) (*model.TestResult, error) {
	start := time.Now()
	res := &model.TestResult{
		Name:     t.Name,
		Sim:      t.Sim,
		Status:   model.StatusUnknown,
		ExitCode: -1,
		Stages:   []model.Stage{model.StageNotCompiled},
	}

	err := o.runTest(ctx, t, res)
	res.Duration = time.Since(start)
	if err != nil {
		res.Status = model.StatusFailed
		res.Error = err.Error()
		return res, err
	}
	res.Enter(model.StageDone)
	return res, nil
}

func (o *Orchestrator) runTest(ctx context.Context, t *model.Test, res *model.TestResult) error {
	if o.opts.Simulator == model.SimulatorIcarus && t.Sim == model.SimGLSDF {
		return fmt.Errorf("%w: icarus can't run SDF for test %s, use another simulator", ErrUnsupported, t.Name)
	}

	for _, dir := range []string{t.Dir, t.CompilationDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if !o.opts.OpenFrame {
		if err := o.generateHex(ctx, t); err != nil {
			return err
		}
	}

	if err := o.compile(ctx, t, res); err != nil {
		return err
	}

	if o.opts.CompileOnly {
		return nil
	}
	return o.run(ctx, t, res)
}

// RunAll runs tests one after another and returns their results in order.
// Failures of individual tests are collected; the remaining tests still run
// unless ctx is cancelled.
func (o *Orchestrator) RunAll(ctx context.Context, tests []*model.Test) ([]model.TestResult, error) {
	var result *multierror.Error
	results := make([]model.TestResult, 0, len(tests))

	for _, t := range tests {
		if err := ctx.Err(); err != nil {
			result = multierror.Append(result, err)
			break
		}
		if o.reporter != nil {
			o.reporter.TestStarted(t)
		}
		res, err := o.RunTest(ctx, t)
		if err != nil {
			o.logger.Error().Err(err).Str("test", t.FullName()).Msg("Test failed to run")
			result = multierror.Append(result, fmt.Errorf("%s: %w", t.FullName(), err))
		}
		if o.reporter != nil {
			o.reporter.TestFinished(res)
		}
		results = append(results, *res)
	}

	return results, result.ErrorOrNil()
}
