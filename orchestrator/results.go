package orchestrator

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/chipfoundry/caravelsim/model"
)

type junitSuites struct {
	Suites []junitSuite `xml:"testsuite"`
}

type junitSuite struct {
	Cases []junitCase `xml:"testcase"`
}

type junitCase struct {
	Name    string    `xml:"name,attr"`
	Failure *struct{} `xml:"failure"`
	Error   *struct{} `xml:"error"`
	Skipped *struct{} `xml:"skipped"`
}

// ReadStatus decides the outcome of a test from the cocotb results file.
// Without a results file the outcome is unknown, or failed when the
// simulation exited with an error.
func ReadStatus(path string, exitCode int) (model.Status, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if exitCode != 0 {
			return model.StatusFailed, nil
		}
		return model.StatusUnknown, nil
	}
	if err != nil {
		return model.StatusUnknown, fmt.Errorf("failed to read results: %w", err)
	}
	return ParseStatus(data)
}

// ParseStatus decides the outcome of a JUnit results document. Any failing
// case fails the test; a test without executed cases is unknown.
func ParseStatus(data []byte) (model.Status, error) {
	var doc junitSuites
	if err := xml.Unmarshal(data, &doc); err != nil {
		return model.StatusUnknown, fmt.Errorf("failed to parse results: %w", err)
	}

	ran := 0
	for _, s := range doc.Suites {
		for _, c := range s.Cases {
			if c.Failure != nil || c.Error != nil {
				return model.StatusFailed, nil
			}
			if c.Skipped == nil {
				ran++
			}
		}
	}
	if ran == 0 {
		return model.StatusUnknown, nil
	}
	return model.StatusPassed, nil
}
