package config

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chipfoundry/caravelsim/model"
)

func TestExpand(t *testing.T) {
	tests := []struct {
		name    string
		entries []TestEntry
		want    []TestCase
		wantErr bool
	}{
		{
			name:    "default sim",
			entries: []TestEntry{{Name: "gpio"}},
			want:    []TestCase{{"gpio", model.SimRTL}},
		},
		{
			name:    "several sims",
			entries: []TestEntry{{Name: "uart", Sim: "RTL GL,gl_sdf"}, {Name: "spi", Sim: "GL"}},
			want: []TestCase{
				{"uart", model.SimRTL},
				{"uart", model.SimGL},
				{"uart", model.SimGLSDF},
				{"spi", model.SimGL},
			},
		},
		{
			name:    "bad sim",
			entries: []TestEntry{{Name: "uart", Sim: "SPICE"}},
			wantErr: true,
		},
		{
			name:    "no name",
			entries: []TestEntry{{Sim: "RTL"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(tt.entries)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expand() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expand() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadTestList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tests.yaml")
	writeFile(t, path, `
Tests:
  - {name: gpio_test, sim: RTL}
  - name: uart_test
    sim: RTL GL
`)

	got, err := LoadTestList(path)
	require.NoError(t, err)
	require.Equal(t, []TestCase{
		{"gpio_test", model.SimRTL},
		{"uart_test", model.SimRTL},
		{"uart_test", model.SimGL},
	}, got)
}
