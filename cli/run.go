package cli

// This file contains the run command: it resolves the project, prepares the
// simulation image and drives every requested test through the orchestrator.

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/chipfoundry/caravelsim/cli/docker"
	"github.com/chipfoundry/caravelsim/cli/shell"
	"github.com/chipfoundry/caravelsim/config"
	"github.com/chipfoundry/caravelsim/model"
	"github.com/chipfoundry/caravelsim/orchestrator"
	"github.com/chipfoundry/caravelsim/pretty"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

func (a *App) run(ctx *cli.Context) error {
	startTime := time.Now()

	opts, err := parseOptions(ctx)
	if err != nil {
		return err
	}
	if opts.Tag == "" {
		opts.Tag = defaultTag(startTime)
	}
	zerolog.SetGlobalLevel(logLevel(opts.Verbosity, zerolog.GlobalLevel()))

	cases, err := collectCases(append(ctx.StringSlice("test"), ctx.Args().Slice()...), ctx.String("sim"), ctx.String("test-list"))
	if err != nil {
		return err
	}
	if len(cases) == 0 {
		return fmt.Errorf("no tests given: pass test names, --test or --test-list")
	}

	paths, err := loadPaths(ctx)
	if err != nil {
		return err
	}
	a.logger.Debug().
		Str("user_project", paths.UserProjectRoot).
		Str("caravel", paths.CaravelRoot).
		Str("sim_path", paths.SimPath).
		Str("tag", opts.Tag).
		Msg("Resolved project")

	runCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := docker.New("", os.Stderr)
	if orchestrator.NeedsDocker(opts) {
		if err := a.prepareImage(runCtx, client, opts, paths); err != nil {
			return err
		}
	}

	runner := shell.NewRunner(a.logger, shell.WithOutput(a.out), shell.WithDebug(opts.Debug()))
	printer := pretty.NewPrinter(a.out, a.color)
	orch := orchestrator.New(a.logger, paths, opts, orchestrator.NewSession(), runner,
		orchestrator.WithDocker(client),
		orchestrator.WithReporter(reporter{printer}),
	)

	tests := make([]*model.Test, 0, len(cases))
	for _, c := range cases {
		tests = append(tests, model.NewTest(c.Name, c.Sim, paths.CocotbPath(), paths, opts))
	}

	results, runErr := orch.RunAll(runCtx, tests)
	duration := time.Since(startTime)
	printer.Summary(results, duration)

	run := &model.Run{
		ID:        newRunID(),
		Timestamp: startTime,
		Args:      os.Args,
		Tag:       opts.Tag,
		Simulator: opts.Simulator,
		Duration:  duration,
		Paths:     &paths,
		Tests:     results,
	}
	_, failed, _ := run.Counts()
	if runErr != nil || failed > 0 {
		run.ExitCode = 1
	}
	if g, err := gitInfo(paths.UserProjectRoot); err == nil {
		run.Git = g
	} else {
		a.logger.Debug().Err(err).Msg("No git information")
	}
	a.recordRun(filepath.Join(paths.SimPath, opts.Tag), run)

	if runCtx.Err() != nil {
		return fmt.Errorf("interrupted after %d of %d tests", len(results), len(tests))
	}
	if run.ExitCode != 0 {
		return fmt.Errorf("%d of %d tests failed", failed, len(tests))
	}
	return nil
}

// prepareImage pulls the simulation image. A missing docker installation is
// fatal, any other failure is only logged by the manager.
func (a *App) prepareImage(ctx context.Context, client *docker.Client, opts model.Options, paths model.Paths) error {
	var mopts []docker.ManagerOption
	if opts.Verbosity == model.VerbosityNormal && !opts.CI && pretty.IsTerminal(os.Stderr) {
		mopts = append(mopts, docker.WithProgress(os.Stderr))
	}
	mgr := docker.NewManager(a.logger, client, opts.Image, paths.UserProjectRoot, paths.SimPath, mopts...)
	if err := mgr.Run(ctx); err != nil {
		if errors.Is(err, docker.ErrNotInstalled) {
			return fmt.Errorf("%w: install docker or run with --no-docker", err)
		}
		return err
	}
	return nil
}

func (a *App) dockerImage(ctx *cli.Context) error {
	paths, err := loadPaths(ctx)
	if err != nil {
		return err
	}
	runCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := model.Options{Image: ctx.String("image"), Verbosity: model.VerbosityNormal}
	return a.prepareImage(runCtx, docker.New("", os.Stderr), opts, paths)
}

// reporter prints a header before and a result block after every test.
type reporter struct {
	p *pretty.Printer
}

func (r reporter) TestStarted(t *model.Test) { r.p.TestHeader(t.FullName(), t.Sim) }

func (r reporter) TestFinished(res *model.TestResult) { r.p.TestResult(res) }

func parseOptions(ctx *cli.Context) (model.Options, error) {
	simulator, err := model.ParseSimulator(ctx.String("simulator"))
	if err != nil {
		return model.Options{}, err
	}
	cpu, err := model.ParseCPU(ctx.String("cpu"))
	if err != nil {
		return model.Options{}, err
	}
	verbosity, err := model.ParseVerbosity(ctx.String("verbosity"))
	if err != nil {
		return model.Options{}, err
	}
	return model.Options{
		Simulator:   simulator,
		CPU:         cpu,
		OpenFrame:   ctx.Bool("openframe"),
		NoDocker:    ctx.Bool("no-docker"),
		Compile:     ctx.Bool("compile"),
		CompileOnly: ctx.Bool("compile-only"),
		Lint:        ctx.Bool("lint"),
		CI:          ctx.Bool("ci"),
		Seed:        ctx.String("seed"),
		Verbosity:   verbosity,
		Image:       ctx.String("image"),
		Module:      ctx.String("module"),
		Tag:         ctx.String("tag"),
		Macros:      ctx.StringSlice("macro"),
	}, nil
}

// collectCases combines the tests of a test list with the tests given by
// name. Named tests run for every sim type of sims.
func collectCases(names []string, sims, listPath string) ([]config.TestCase, error) {
	var cases []config.TestCase
	if listPath != "" {
		listed, err := config.LoadTestList(listPath)
		if err != nil {
			return nil, err
		}
		cases = append(cases, listed...)
	}

	entries := make([]config.TestEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, config.TestEntry{Name: name, Sim: sims})
	}
	named, err := config.Expand(entries)
	if err != nil {
		return nil, err
	}
	return append(cases, named...), nil
}

// defaultTag names the output directory of a run without --tag.
func defaultTag(t time.Time) string {
	return "run_" + t.Format("02_Jan_15_04_05")
}

// logLevel maps the verbosity onto the log level. An explicit --verbose
// (debug) is kept.
func logLevel(v model.Verbosity, current zerolog.Level) zerolog.Level {
	switch {
	case v == model.VerbosityDebug || current == zerolog.DebugLevel:
		return zerolog.DebugLevel
	case v == model.VerbosityQuiet:
		return zerolog.WarnLevel
	}
	return zerolog.InfoLevel
}

func newRunID() string {
	idBytes := make([]byte, 16)
	if _, err := rand.Read(idBytes); err != nil {
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return hex.EncodeToString(idBytes)
}
