package model

import "time"

// Run represents a single caravelsim invocation.
// It is written as run.json next to the test outputs of a tag.
type Run struct {
	// Unique ID for this run (16 random bytes, hex encoded)
	ID string `json:"id"`
	// Timestamp when the run started
	Timestamp time.Time `json:"timestamp"`
	// Command-line arguments (including command name)
	Args []string `json:"args"`
	// Tag the outputs were written under
	Tag string `json:"tag"`
	// Simulator used for the run
	Simulator Simulator `json:"simulator"`
	// Exit code of the run
	ExitCode int `json:"exit_code"`
	// Duration of the whole run
	Duration time.Duration `json:"duration"`
	// Git information of the user project
	Git *Git `json:"git,omitempty"`
	// Project roots the run used
	Paths *Paths `json:"paths,omitempty"`
	// Per-test results in execution order
	Tests []TestResult `json:"tests,omitempty"`
}

// Git contains git repository information
type Git struct {
	// Git commit hash at time of execution
	Commit string `json:"commit,omitempty"`
	// Git branch at time of execution
	Branch string `json:"branch,omitempty"`
	// Repository name
	Repo string `json:"repo,omitempty"`
}

// Counts returns the number of passed, failed and unknown tests.
func (r *Run) Counts() (passed, failed, unknown int) {
	for _, t := range r.Tests {
		switch t.Status {
		case StatusPassed:
			passed++
		case StatusFailed:
			failed++
		default:
			unknown++
		}
	}
	return passed, failed, unknown
}
