package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerRun(t *testing.T) {
	var console bytes.Buffer
	r := NewRunner(zerolog.Nop(), WithOutput(&console))
	logPath := filepath.Join(t.TempDir(), "run.log")

	script := Script{NewCommand("printf", `one\n\033[32mtwo\033[0m\nVPI registered\n\nthree`)}
	code := r.Run(context.Background(), Native(script), logPath, false)
	assert.Equal(t, 0, code)

	assert.Equal(t, "one\ntwo\nthree\n", console.String())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	log := string(data)
	assert.True(t, strings.HasPrefix(log, "command:\n"+script.Render()+"\n\n"+strings.Repeat("-", 60)+"\n"))
	assert.True(t, strings.HasSuffix(log, "one\ntwo\nVPI registered\nthree\n"))
}

func TestRunnerQuiet(t *testing.T) {
	var console bytes.Buffer
	r := NewRunner(zerolog.Nop(), WithOutput(&console))
	logPath := filepath.Join(t.TempDir(), "quiet.log")

	code := r.Run(context.Background(), Native(Script{NewCommand("echo", "hidden")}), logPath, true)
	assert.Equal(t, 0, code)
	assert.Empty(t, console.String())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hidden\n")
}

func TestRunnerMergesStderr(t *testing.T) {
	var console bytes.Buffer
	r := NewRunner(zerolog.Nop(), WithOutput(&console))

	inv := Invocation{Argv: []string{"sh", "-c", "echo out; echo err >&2"}, Display: "test"}
	code := r.Run(context.Background(), inv, "", false)
	assert.Equal(t, 0, code)
	assert.Contains(t, console.String(), "out\n")
	assert.Contains(t, console.String(), "err\n")
}

func TestRunnerAppendsLog(t *testing.T) {
	r := NewRunner(zerolog.Nop(), WithOutput(&bytes.Buffer{}))
	logPath := filepath.Join(t.TempDir(), "append.log")

	r.Run(context.Background(), Native(Script{NewCommand("echo", "first")}), logPath, true)
	r.Run(context.Background(), Native(Script{NewCommand("echo", "second")}), logPath, true)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "command:\n"))
	assert.Contains(t, string(data), "first\n")
	assert.Contains(t, string(data), "second\n")
}

func TestRunnerExitCode(t *testing.T) {
	r := NewRunner(zerolog.Nop(), WithOutput(&bytes.Buffer{}))
	inv := Invocation{Argv: []string{"sh", "-c", "exit 3"}, Display: "exit 3"}
	assert.Equal(t, 3, r.Run(context.Background(), inv, "", false))
}

func TestRunnerMissingProgram(t *testing.T) {
	r := NewRunner(zerolog.Nop(), WithOutput(&bytes.Buffer{}))
	inv := Invocation{Argv: []string{"caravelsim-no-such-binary"}, Display: "missing"}
	assert.Equal(t, -1, r.Run(context.Background(), inv, "", false))
}

func TestRunnerCancel(t *testing.T) {
	r := NewRunner(zerolog.Nop(), WithOutput(&bytes.Buffer{}))
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	code := r.Run(ctx, Invocation{Argv: []string{"sleep", "30"}, Display: "sleep 30"}, "", false)
	assert.NotEqual(t, 0, code)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestRunnerInheritsStdin(t *testing.T) {
	r := NewRunner(zerolog.Nop())
	assert.Same(t, os.Stdin, r.in)
}

func TestRunnerInput(t *testing.T) {
	input := filepath.Join(t.TempDir(), "stdin")
	require.NoError(t, os.WriteFile(input, []byte("from the terminal\n"), 0o644))
	f, err := os.Open(input)
	require.NoError(t, err)
	defer f.Close()

	var console bytes.Buffer
	r := NewRunner(zerolog.Nop(), WithOutput(&console), WithInput(f))
	code := r.Run(context.Background(), Invocation{Argv: []string{"cat"}, Display: "cat"}, "", false)
	assert.Equal(t, 0, code)
	assert.Equal(t, "from the terminal\n", console.String())
}

func TestRunnerTerminatesOnReadError(t *testing.T) {
	r := NewRunner(zerolog.Nop(), WithOutput(&bytes.Buffer{}))
	r.reader = func(io.Reader) io.Reader { return iotest.ErrReader(errors.New("pipe broken")) }

	start := time.Now()
	code := r.Run(context.Background(), Invocation{Argv: []string{"sleep", "30"}, Display: "sleep 30"}, "", false)
	assert.Equal(t, -1, code)
	assert.Less(t, time.Since(start), 10*time.Second)
}
