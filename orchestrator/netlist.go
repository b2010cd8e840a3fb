package orchestrator

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
)

var netlistExts = map[string]bool{".v": true, ".sv": true, ".vh": true, ".svh": true}

// netlistFiles returns the verilog sources below dirs. Missing directories
// are skipped.
func netlistFiles(dirs []string) ([]string, error) {
	var files []string
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == dir && errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return err
			}
			if !d.IsDir() && netlistExts[filepath.Ext(path)] {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}
