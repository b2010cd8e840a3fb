package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chipfoundry/caravelsim/config"
	"github.com/chipfoundry/caravelsim/model"
	"github.com/chipfoundry/caravelsim/pretty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const AppName = "caravelsim"

type App struct {
	logger zerolog.Logger
	cli    *cli.App

	// Destination of test reports and listings
	out   io.Writer
	color bool
}

func New() *App {

	// Set default log level to info
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	color := pretty.IsTerminal(os.Stderr)
	logger := log.Output(pretty.ConsoleWriter(os.Stderr, color))

	app := &App{
		logger: logger,
		out:    os.Stdout,
		color:  pretty.IsTerminal(os.Stdout),
		cli: &cli.App{
			Name:  AppName,
			Usage: "Run cocotb tests of Caravel and OpenFrame user projects",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "Enable verbose (debug) logging",
				},
			},
			Before: func(ctx *cli.Context) error {
				if ctx.Bool("verbose") {
					zerolog.SetGlobalLevel(zerolog.DebugLevel)
				}
				return nil
			},
		},
	}
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Generate firmware, compile and run cocotb tests",
		ArgsUsage: "[TEST...]",
		Action:    app.run,
		Flags:     append(projectFlags(), runFlags()...),
		Description: `Run cocotb tests against the RTL or gate level netlist.

Tests are given as arguments, with --test or in a YAML test list:

  Tests:
    - {name: gpio_test, sim: RTL}
    - {name: uart_test, sim: "RTL GL"}

Examples:
  caravelsim run gpio_test                  # RTL simulation with icarus in docker
  caravelsim run --sim RTL,GL gpio_test     # RTL and gate level
  caravelsim run --test-list tests.yaml     # Every test of the list
  caravelsim run --simulator vcs --no-docker --lint gpio_test`,
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "docker",
		Usage:  "Pull the simulation image and install the project's python requirements",
		Action: app.dockerImage,
		Flags: append(projectFlags(),
			&cli.StringFlag{
				Name:  "image",
				Usage: "Docker image carrying simulators and toolchains",
				Value: model.DefaultImage,
			},
		),
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "list",
		Usage:  "List previous test runs",
		Action: app.list,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "sim-path",
				Usage: "Directory holding the simulation outputs (default: ./sim)",
			},
			&cli.StringFlag{
				Name:  "tag",
				Usage: "Filter by tag",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Limit number of results (default: 20)",
				Value:   20,
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "view",
		Usage:     "View the results of a previous test run",
		ArgsUsage: "[ID|INDEX]",
		Action:    app.view,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "sim-path",
				Usage: "Directory holding the simulation outputs (default: ./sim)",
			},
		},
		Description: `View the results of a previous test run.

Arguments:
  0           View last test run (default)
  -1          View 2nd last test run
  <hex-id>    View test run matching the hex ID prefix

Examples:
  caravelsim view           # View last test run
  caravelsim view -- -1     # View 2nd last test run
  caravelsim view abc123    # View test run with ID starting with abc123`,
	})

	return app
}

func (a *App) Run(args []string) error {
	return a.cli.Run(args)
}

// SetVersion sets the version information for the CLI application
func (a *App) SetVersion(version, commit, date string) {
	a.cli.Version = version
	if commit != "none" && len(commit) >= 8 {
		a.cli.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit[:8], date)
	}
}

func projectFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "design-info",
			Aliases: []string{"di"},
			Usage:   "Project description with CARAVEL_ROOT, MCW_ROOT, USER_PROJECT_ROOT, PDK_ROOT and PDK",
			Value:   config.DesignInfoFile,
		},
		&cli.StringFlag{
			Name:  "sim-path",
			Usage: "Directory receiving the simulation outputs (default: ./sim)",
		},
	}
}

func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "test",
			Aliases: []string{"t"},
			Usage:   "Test to run, may be repeated",
		},
		&cli.StringFlag{
			Name:    "test-list",
			Aliases: []string{"tl"},
			Usage:   "YAML file listing the tests to run",
		},
		&cli.StringFlag{
			Name:  "sim",
			Usage: "Simulation types of the tests given by name (RTL, GL, GL_SDF)",
			Value: string(model.SimRTL),
		},
		&cli.StringFlag{
			Name:  "tag",
			Usage: "Name of the output directory under the sim path (default: run_<timestamp>)",
		},
		&cli.StringFlag{
			Name:  "simulator",
			Usage: "HDL simulator (icarus, vcs)",
			Value: string(model.SimulatorIcarus),
		},
		&cli.StringFlag{
			Name:  "cpu",
			Usage: "Management core the firmware is built for (RISCV, ARM)",
			Value: string(model.CPURiscV),
		},
		&cli.BoolFlag{
			Name:  "openframe",
			Usage: "The design is an OpenFrame project without management core",
		},
		&cli.BoolFlag{
			Name:  "no-docker",
			Usage: "Run every tool natively instead of in the simulation image",
		},
		&cli.BoolFlag{
			Name:  "compile",
			Usage: "Force compilation even when the netlist did not change",
		},
		&cli.BoolFlag{
			Name:  "compile-only",
			Usage: "Stop after compiling",
		},
		&cli.BoolFlag{
			Name:  "lint",
			Usage: "Enable simulator lint checks",
		},
		&cli.BoolFlag{
			Name:    "ci",
			Usage:   "Non-interactive mode",
			EnvVars: []string{"CI"},
		},
		&cli.StringFlag{
			Name:  "seed",
			Usage: "cocotb random seed",
		},
		&cli.StringFlag{
			Name:  "verbosity",
			Usage: "Simulator output on the console (quiet, normal, debug)",
			Value: string(model.VerbosityNormal),
		},
		&cli.StringFlag{
			Name:  "image",
			Usage: "Docker image carrying simulators and toolchains",
			Value: model.DefaultImage,
		},
		&cli.StringFlag{
			Name:  "module",
			Usage: "cocotb python module the tests are imported from",
			Value: model.DefaultCocotbModule,
		},
		&cli.StringSliceFlag{
			Name:    "macro",
			Aliases: []string{"m"},
			Usage:   "Extra verilog macro (NAME or NAME=VALUE), may be repeated",
		},
	}
}

// simPath returns the --sim-path flag or ./sim.
func simPath(ctx *cli.Context) (string, error) {
	if p := ctx.String("sim-path"); p != "" {
		return p, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return filepath.Join(cwd, "sim"), nil
}

// loadPaths resolves the project roots of the current directory.
func loadPaths(ctx *cli.Context) (model.Paths, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return model.Paths{}, fmt.Errorf("failed to get working directory: %w", err)
	}
	return config.LoadPaths(ctx.String("design-info"), cwd, ctx.String("sim-path"))
}
