package cli

// This file contains run recording functionality for saving the results
// of a run next to its outputs.

import (
	"github.com/chipfoundry/caravelsim/history"
	"github.com/chipfoundry/caravelsim/model"
)

// recordRun writes run.json into dir. Failures are logged and never fail the
// run.
func (a *App) recordRun(dir string, run *model.Run) {
	if err := history.Write(dir, run); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to record run")
		return
	}
	a.logger.Debug().Str("dir", dir).Str("id", run.ID).Msg("Recorded run")
}
