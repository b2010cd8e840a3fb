package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/chipfoundry/caravelsim/model"
)

// TestEntry is one test of a test list. Sim holds one or more simulation
// types separated by spaces or commas and defaults to RTL.
type TestEntry struct {
	Name string `yaml:"name"`
	Sim  string `yaml:"sim"`
}

// TestList is the content of a test list file:
//
//	Tests:
//	  - {name: gpio_test, sim: RTL}
//	  - {name: uart_test, sim: "RTL GL"}
type TestList struct {
	Tests []TestEntry `yaml:"Tests"`
}

// TestCase is a single (test, simulation type) pair to run.
type TestCase struct {
	Name string
	Sim  model.SimType
}

// Sims parses the simulation types of the entry.
func (e TestEntry) Sims() ([]model.SimType, error) {
	fields := strings.FieldsFunc(e.Sim, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) == 0 {
		return []model.SimType{model.SimRTL}, nil
	}
	sims := make([]model.SimType, 0, len(fields))
	for _, f := range fields {
		s, err := model.ParseSimType(f)
		if err != nil {
			return nil, fmt.Errorf("test %s: %w", e.Name, err)
		}
		sims = append(sims, s)
	}
	return sims, nil
}

// Expand flattens tests and sims into cases, in list order.
func Expand(entries []TestEntry) ([]TestCase, error) {
	var cases []TestCase
	for _, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("test list entry without a name")
		}
		sims, err := e.Sims()
		if err != nil {
			return nil, err
		}
		for _, s := range sims {
			cases = append(cases, TestCase{Name: e.Name, Sim: s})
		}
	}
	return cases, nil
}

// LoadTestList reads a test list file and expands it into cases.
func LoadTestList(path string) ([]TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var list TestList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return Expand(list.Tests)
}
