package cli

// This file contains the list command for displaying previous test runs.

import (
	"fmt"
	"io"
	"strings"

	"github.com/chipfoundry/caravelsim/history"
	"github.com/chipfoundry/caravelsim/pretty"
	"github.com/urfave/cli/v2"
)

func (a *App) list(ctx *cli.Context) error {
	root, err := simPath(ctx)
	if err != nil {
		return err
	}

	entries, err := history.LoadEntries(a.logger, root)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	writeList(a.out, entries, ctx.String("tag"), ctx.Int("limit"))
	return nil
}

// writeList prints entries (newest first) matching tag, at most limit of them.
func writeList(w io.Writer, entries []history.Entry, tag string, limit int) {
	var filtered []history.Entry
	for _, entry := range entries {
		if tag == "" || strings.Contains(entry.Run.Tag, tag) {
			filtered = append(filtered, entry)
		}
	}

	if len(filtered) == 0 {
		if tag != "" {
			fmt.Fprintf(w, "No history entries found matching tag: %s\n", tag)
		} else {
			fmt.Fprintln(w, "No history entries found")
		}
		return
	}

	displayRuns := filtered
	if limit > 0 && limit < len(displayRuns) {
		displayRuns = displayRuns[:limit]
	}

	fmt.Fprintf(w, "\n=== History (%d total) ===\n\n", len(filtered))

	for _, entry := range displayRuns {
		run := entry.Run
		timestamp := run.Timestamp.Local().Format("2006-01-02 15:04:05")

		status := "✓"
		if run.ExitCode != 0 {
			status = "✗"
		}

		shortID := run.ID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}

		passed, failed, unknown := run.Counts()
		fmt.Fprintf(w, "%s  %s  [%s]  tag=%s  id=%s\n", status, timestamp, pretty.FormatDuration(run.Duration), run.Tag, shortID)
		fmt.Fprintf(w, "   Tests: %d passed, %d failed, %d unknown (%s)\n", passed, failed, unknown, run.Simulator)
		if len(run.Args) > 1 {
			fmt.Fprintf(w, "   Args: %s\n", strings.Join(run.Args[1:], " "))
		}
		if run.Git != nil && run.Git.Commit != "" {
			shortCommit := run.Git.Commit
			if len(shortCommit) > 8 {
				shortCommit = shortCommit[:8]
			}
			fmt.Fprintf(w, "   Commit: %s", shortCommit)
			if run.Git.Branch != "" {
				fmt.Fprintf(w, " (%s)", run.Git.Branch)
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "   %s\n", entry.FullPath)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "View results: %s view <ID>\n", AppName)
}
