package config

// Package config loads the project roots from design_info.yaml and the test
// lists run by the harness.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v2"

	"github.com/chipfoundry/caravelsim/model"
)

// DesignInfoFile is the name of the project description file.
const DesignInfoFile = "design_info.yaml"

// DesignInfo is the content of design_info.yaml.
type DesignInfo struct {
	CaravelRoot     string `yaml:"CARAVEL_ROOT"`
	MCWRoot         string `yaml:"MCW_ROOT"`
	UserProjectRoot string `yaml:"USER_PROJECT_ROOT"`
	PDKRoot         string `yaml:"PDK_ROOT"`
	PDK             string `yaml:"PDK"`
}

// ReadDesignInfo parses a design_info.yaml file. A missing file yields an
// empty DesignInfo so that environment variables alone can describe a project.
func ReadDesignInfo(path string) (DesignInfo, error) {
	var info DesignInfo
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return info, nil
	}
	if err != nil {
		return info, err
	}
	if err := yaml.Unmarshal(data, &info); err != nil {
		return info, fmt.Errorf("parsing %s: %w", path, err)
	}
	return info, nil
}

// override replaces fields with the matching environment variables.
func (d *DesignInfo) override() {
	for key, field := range map[string]*string{
		"CARAVEL_ROOT":      &d.CaravelRoot,
		"MCW_ROOT":          &d.MCWRoot,
		"USER_PROJECT_ROOT": &d.UserProjectRoot,
		"PDK_ROOT":          &d.PDKRoot,
		"PDK":               &d.PDK,
	} {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*field = v
		}
	}
}

// LoadPaths builds the project roots from the design info file at path,
// environment overrides and the run directory. simPath defaults to
// <runPath>/sim. MCW_ROOT may be empty (OpenFrame designs), every other root
// is required.
func LoadPaths(path, runPath, simPath string) (model.Paths, error) {
	info, err := ReadDesignInfo(path)
	if err != nil {
		return model.Paths{}, err
	}
	info.override()

	if simPath == "" {
		simPath = filepath.Join(runPath, "sim")
	}

	paths := model.Paths{PDK: info.PDK}
	for _, r := range []struct {
		name     string
		in       string
		out      *string
		optional bool
	}{
		{"CARAVEL_ROOT", info.CaravelRoot, &paths.CaravelRoot, false},
		{"MCW_ROOT", info.MCWRoot, &paths.MCWRoot, true},
		{"USER_PROJECT_ROOT", info.UserProjectRoot, &paths.UserProjectRoot, false},
		{"PDK_ROOT", info.PDKRoot, &paths.PDKRoot, false},
		{"run path", runPath, &paths.RunPath, false},
		{"sim path", simPath, &paths.SimPath, false},
	} {
		if r.in == "" {
			if r.optional {
				continue
			}
			return model.Paths{}, fmt.Errorf("%s is not set: add it to %s or the environment", r.name, path)
		}
		abs, err := expand(r.in)
		if err != nil {
			return model.Paths{}, fmt.Errorf("%s: %w", r.name, err)
		}
		*r.out = abs
	}
	if paths.PDK == "" {
		return model.Paths{}, fmt.Errorf("PDK is not set: add it to %s or the environment", path)
	}
	return paths, nil
}

func expand(p string) (string, error) {
	p, err := homedir.Expand(p)
	if err != nil {
		return "", err
	}
	return filepath.Abs(p)
}
