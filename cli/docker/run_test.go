package docker

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/chipfoundry/caravelsim/cli/shell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunArgs(t *testing.T) {
	script := shell.Script{shell.NewCommand("vvp", "sim.vvp").In("/sim/t")}

	tests := []struct {
		name string
		spec RunSpec
		want []string
	}{
		{
			name: "minimal",
			spec: RunSpec{Image: "img"},
			want: []string{"run", "img", "sh", "-ec", "cd /sim/t && vvp sim.vvp"},
		},
		{
			name: "interactive with user, env and volumes",
			spec: RunSpec{
				Image:       "chipfoundry/dv:cocotb",
				User:        "1000:1000",
				Interactive: true,
				Volumes:     []Volume{{Host: "/a", Container: "/a"}, {Host: "/pkg", Container: "/usr/pkg"}},
				Env:         map[string]string{"PDK": "sky130A", "CARAVEL_PATH": "/c"},
				Extra:       []string{"--network", "host"},
			},
			want: []string{
				"run", "--init", "-it", "--sig-proxy=true",
				"-u", "1000:1000",
				"--network", "host",
				"-e", "CARAVEL_PATH=/c", "-e", "PDK=sky130A",
				"-v", "/a:/a", "-v", "/pkg:/usr/pkg",
				"chipfoundry/dv:cocotb", "sh", "-ec", "cd /sim/t && vvp sim.vvp",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RunArgs(tt.spec, script)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("RunArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRunSpecMount(t *testing.T) {
	var spec RunSpec
	spec.Mount("/run", "", "/caravel", "/run")
	assert.Equal(t, []Volume{{"/run", "/run"}, {"/caravel", "/caravel"}}, spec.Volumes)
}

func TestClientInvocation(t *testing.T) {
	c := New("", nil)
	inv := c.Invocation(RunSpec{Image: "img"}, shell.Script{shell.NewCommand("echo", "a b")})
	assert.Equal(t, []string{"docker", "run", "img", "sh", "-ec", "echo 'a b'"}, inv.Argv)
	assert.Equal(t, `docker run img sh -ec 'echo '"'"'a b'"'"''`, inv.Display)
}

func TestInteractiveCI(t *testing.T) {
	assert.False(t, Interactive(true))
}

func TestSymlinkedDirs(t *testing.T) {
	root := t.TempDir()
	target := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "verilog", "rtl"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "f.v"), nil, 0o644))
	require.NoError(t, os.Symlink(target, filepath.Join(root, "verilog", "ip")))
	require.NoError(t, os.Symlink(filepath.Join(target, "f.v"), filepath.Join(root, "file_link.v")))

	links, err := SymlinkedDirs(root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "verilog", "ip")}, links)
}
