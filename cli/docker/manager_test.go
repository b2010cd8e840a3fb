package docker

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDocker writes a docker stand-in that records its arguments.
// inspectCode is the exit status of `docker inspect`.
func fakeDocker(t *testing.T, inspectCode int) (binary, calls string) {
	t.Helper()
	dir := t.TempDir()
	calls = filepath.Join(dir, "calls")
	binary = filepath.Join(dir, "docker")
	script := "#!/bin/sh\n" +
		"echo \"$@\" >> " + calls + "\n" +
		"if [ \"$1\" = inspect ]; then exit " + strconv.Itoa(inspectCode) + "; fi\n" +
		"exit 0\n"
	require.NoError(t, os.WriteFile(binary, []byte(script), 0o755))
	return binary, calls
}

func readCalls(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestManagerRunPresentImage(t *testing.T) {
	binary, calls := fakeDocker(t, 0)
	project, sim := t.TempDir(), t.TempDir()

	m := NewManager(zerolog.Nop(), New(binary, nil), "img", project, sim)
	require.NoError(t, m.Run(context.Background()))

	assert.Equal(t, []string{"inspect img", "pull -q img"}, readCalls(t, calls))
	assert.NoFileExists(t, m.DockerfilePath())
}

func TestManagerRunMissingImage(t *testing.T) {
	binary, calls := fakeDocker(t, 1)
	project, sim := t.TempDir(), t.TempDir()

	m := NewManager(zerolog.Nop(), New(binary, nil), "img", project, sim)
	require.NoError(t, m.Run(context.Background()))

	assert.Equal(t, []string{"inspect img", "pull img"}, readCalls(t, calls))
}

func TestManagerRunBuildsRequirements(t *testing.T) {
	binary, calls := fakeDocker(t, 0)
	project, sim := t.TempDir(), t.TempDir()

	reqDir := filepath.Join(project, "verilog", "dv", "cocotb")
	require.NoError(t, os.MkdirAll(reqDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(reqDir, "requirements.txt"),
		[]byte("# extras\nnumpy\n\npyyaml>=6\n"), 0o644))

	m := NewManager(zerolog.Nop(), New(binary, nil), "img", project, sim, WithBaseImage("base:1"))
	require.NoError(t, m.Run(context.Background()))

	got := readCalls(t, calls)
	require.Len(t, got, 3)
	assert.Equal(t, "build -t img -f "+filepath.Join(sim, "Dockerfile")+" "+sim, got[2])

	data, err := os.ReadFile(m.DockerfilePath())
	require.NoError(t, err)
	assert.Equal(t, "FROM base:1\nRUN pip install --upgrade numpy pyyaml>=6\n", string(data))
}

func TestManagerRunNotInstalled(t *testing.T) {
	m := NewManager(zerolog.Nop(), New(filepath.Join(t.TempDir(), "no-docker"), nil), "img", t.TempDir(), t.TempDir())
	err := m.Run(context.Background())
	assert.True(t, errors.Is(err, ErrNotInstalled), "got %v", err)
}

func TestRenderDockerfile(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderDockerfile(&buf, "chipfoundry/dv:cocotb", []string{"a", "b==1"}))
	assert.Equal(t, "FROM chipfoundry/dv:cocotb\nRUN pip install --upgrade a b==1\n", buf.String())
}

func TestReadRequirementsMissing(t *testing.T) {
	_, err := ReadRequirements(filepath.Join(t.TempDir(), "requirements.txt"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
