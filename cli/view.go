package cli

// This file contains the view command for displaying the results of a
// recorded run.

import (
	"fmt"
	"path/filepath"

	"github.com/chipfoundry/caravelsim/history"
	"github.com/chipfoundry/caravelsim/model"
	"github.com/chipfoundry/caravelsim/pretty"
	"github.com/urfave/cli/v2"
)

func removeFirstDashDash(in []string) []string {
	if len(in) > 0 && in[0] == "--" {
		return in[1:]
	}
	return in
}

// viewArg returns the run selector, defaulting to the last run.
func viewArg(in []string) string {
	in = removeFirstDashDash(in)
	if len(in) == 0 {
		return "0"
	}
	return in[0]
}

func (a *App) view(ctx *cli.Context) error {
	root, err := simPath(ctx)
	if err != nil {
		return err
	}

	entries, err := history.LoadEntries(a.logger, root)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	entry, err := history.Select(entries, viewArg(ctx.Args().Slice()))
	if err != nil {
		return err
	}

	a.displayRun(entry)
	return nil
}

func (a *App) displayRun(entry *history.Entry) {
	run := entry.Run
	fmt.Fprintf(a.out, "Run %s (tag %s) started %s\n", run.ID, run.Tag, run.Timestamp.Local().Format("2006-01-02 15:04:05"))
	if run.Git != nil && run.Git.Commit != "" {
		fmt.Fprintf(a.out, "Commit: %s (%s)\n", run.Git.Commit, run.Git.Branch)
	}

	pretty.NewPrinter(a.out, a.color).Summary(run.Tests, run.Duration)

	var failed []model.TestResult
	for _, r := range run.Tests {
		if r.Status != model.StatusPassed {
			failed = append(failed, r)
		}
	}
	if len(failed) == 0 {
		return
	}
	fmt.Fprintln(a.out, "\nLogs:")
	for _, r := range failed {
		fmt.Fprintf(a.out, "  %s\n", filepath.Join(entry.FullPath, r.FullName(), r.Name+".log"))
		if r.Error != "" {
			fmt.Fprintf(a.out, "    %s\n", r.Error)
		}
	}
}
