package sim

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// Define is a verilog `define directive.
type Define struct {
	Name  string
	Value string
}

// Plusarg renders the define as a simulator plusarg.
func (d Define) Plusarg() string {
	if d.Value == "" {
		return "+" + d.Name
	}
	return "+" + d.Name + "=" + d.Value
}

var defineLine = regexp.MustCompile("^\\s*`define\\s+(\\w+)(?:\\s+(.*))?$")

// ParseDefines reads the `define directives of a verilog source. Later
// definitions of a name replace earlier ones in place. Trailing comments are
// dropped from values.
func ParseDefines(r io.Reader) ([]Define, error) {
	var defs []Define
	index := make(map[string]int)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		m := defineLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		value := m[2]
		for _, comment := range []string{"//", "/*"} {
			if i := strings.Index(value, comment); i >= 0 {
				value = value[:i]
			}
		}
		d := Define{Name: m[1], Value: strings.TrimSpace(value)}
		if i, ok := index[d.Name]; ok {
			defs[i] = d
			continue
		}
		index[d.Name] = len(defs)
		defs = append(defs, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read defines: %w", err)
	}
	return defs, nil
}

// ReadDefines parses the defines of the file at path.
func ReadDefines(path string) ([]Define, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open defines file: %w", err)
	}
	defer f.Close()
	return ParseDefines(f)
}

// Plusargs renders each define as a plusarg.
func Plusargs(defs []Define) []string {
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.Plusarg()
	}
	return out
}
