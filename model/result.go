package model

import "time"

// Status is the outcome of a test.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusUnknown Status = "unknown"
)

// Stage is a step in the life of a test.
type Stage string

const (
	StageNotCompiled Stage = "NOT_COMPILED"
	StageCompiling   Stage = "COMPILING"
	StageCompiled    Stage = "COMPILED"
	StageSkipCompile Stage = "SKIP_COMPILE"
	StageRunning     Stage = "RUNNING"
	StageDone        Stage = "DONE"
)

// TestResult records what happened to a single test.
type TestResult struct {
	Name     string        `json:"name"`
	Sim      SimType       `json:"sim"`
	Status   Status        `json:"status"`
	Duration time.Duration `json:"duration"`
	// Stages the test went through, in order
	Stages []Stage `json:"stages,omitempty"`
	// Error message if the test could not be run
	Error string `json:"error,omitempty"`
	// Exit code of the simulation run, -1 when it did not run
	ExitCode int `json:"exit_code"`
}

// FullName is the display name of the result.
func (r *TestResult) FullName() string {
	return string(r.Sim) + "-" + r.Name
}

// Stage returns the last stage the test reached.
func (r *TestResult) Stage() Stage {
	if len(r.Stages) == 0 {
		return StageNotCompiled
	}
	return r.Stages[len(r.Stages)-1]
}

// Enter appends a stage to the trail.
func (r *TestResult) Enter(s Stage) {
	r.Stages = append(r.Stages, s)
}
