package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
)

// Runner spawns invocations and streams their output to a log file and the
// console.
type Runner struct {
	logger zerolog.Logger
	in     io.Reader
	out    io.Writer
	debug  bool

	// wraps the output pipe before it is read
	reader func(io.Reader) io.Reader
}

// Option configures a Runner.
type Option func(*Runner)

// WithOutput sets the console writer. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// WithInput sets the stdin of spawned processes. Defaults to os.Stdin so
// that `docker run -it` sees the terminal.
func WithInput(in io.Reader) Option {
	return func(r *Runner) { r.in = in }
}

// WithDebug disables noise suppression on the console.
func WithDebug(debug bool) Option {
	return func(r *Runner) { r.debug = debug }
}

// NewRunner creates a runner.
func NewRunner(logger zerolog.Logger, opts ...Option) *Runner {
	r := &Runner{
		logger: logger,
		in:     os.Stdin,
		out:    os.Stdout,
		reader: func(src io.Reader) io.Reader { return src },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes inv and blocks until it exits. Every non-empty output line is
// appended to logPath. Unless quiet, filtered lines are written to the
// console. Failures are logged, never returned: the result is the exit code
// of the process, or -1 when none is available.
func (r *Runner) Run(ctx context.Context, inv Invocation, logPath string, quiet bool) int {
	if len(inv.Argv) == 0 {
		r.logger.Error().Msg("Empty command")
		return -1
	}

	r.logger.Debug().Str("command", inv.Display).Str("log", logPath).Msg("Running command")

	var logFile *os.File
	if logPath != "" {
		f, err := openLog(logPath, inv.Display)
		if err != nil {
			r.logger.Error().Err(err).Str("log", logPath).Msg("Failed to open log file")
		} else {
			logFile = f
			defer func() {
				if err := logFile.Close(); err != nil {
					r.logger.Warn().Err(err).Str("log", logPath).Msg("Failed to close log file")
				}
			}()
		}
	}

	cmd := exec.CommandContext(ctx, inv.Argv[0], inv.Argv[1:]...)
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = 10 * time.Second
	cmd.Stdin = r.in

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to create output pipe")
		return -1
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		r.logger.Error().Err(err).Str("command", inv.Argv[0]).Msg("Process error")
		return -1
	}

	filter := &LineFilter{KeepNoise: r.debug}
	readErr := r.stream(r.reader(stdout), logFile, filter, quiet)
	if !quiet {
		r.print(filter.Flush())
	}
	if readErr != nil && ctx.Err() == nil {
		if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
			r.logger.Debug().Err(err).Msg("Failed to terminate process")
		}
	}

	waitErr := cmd.Wait()
	if ctx.Err() != nil {
		r.logger.Warn().Str("command", inv.Argv[0]).Msg("Process interrupted by user")
	} else if readErr != nil {
		r.logger.Error().Err(readErr).Msg("Process error")
	}

	if waitErr == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	if ctx.Err() == nil {
		r.logger.Error().Err(waitErr).Msg("Process error")
	}
	return -1
}

func (r *Runner) stream(src io.Reader, logFile *os.File, filter *LineFilter, quiet bool) error {
	reader := bufio.NewReader(src)
	for {
		raw, err := reader.ReadBytes('\n')
		if len(raw) > 0 {
			line := Clean(raw)
			if logFile != nil && line != "" {
				if _, werr := fmt.Fprintln(logFile, line); werr != nil {
					r.logger.Warn().Err(werr).Msg("Failed to write log file")
					logFile = nil
				}
			}
			if !quiet {
				r.print(filter.Push(line))
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (r *Runner) print(lines []string) {
	for _, l := range lines {
		fmt.Fprintln(r.out, l)
	}
}

func openLog(path, display string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	header := "command:\n" + display + "\n\n" + strings.Repeat("-", 60) + "\n"
	if _, err := f.WriteString(header); err != nil {
		return nil, multierror.Append(err, f.Close()).ErrorOrNil()
	}
	return f, nil
}
