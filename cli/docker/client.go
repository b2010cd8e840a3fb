package docker

// Package docker provides a client interface to the docker CLI.
// It manages the simulation image and builds `docker run` invocations.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"
)

// ErrNotInstalled is returned when the docker binary cannot be found.
var ErrNotInstalled = errors.New("docker is not installed")

// Client runs docker commands.
type Client struct {
	binary string
	// Output of commands that are not captured, e.g. a full pull
	out io.Writer
}

// New creates a new docker client. An empty binary selects "docker" from PATH.
func New(binary string, out io.Writer) *Client {
	if binary == "" {
		binary = "docker"
	}
	if out == nil {
		out = io.Discard
	}
	return &Client{binary: binary, out: out}
}

// Inspect reports whether the image is present locally.
func (c *Client) Inspect(ctx context.Context, image string) (bool, error) {
	_, err := c.run(ctx, nil, "inspect", image)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotInstalled) {
		return false, err
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}
	return false, fmt.Errorf("failed to inspect image %s: %w", image, err)
}

// Pull fetches the image. A quiet pull captures all output, otherwise the
// progress goes to the client output.
func (c *Client) Pull(ctx context.Context, image string, quiet bool) error {
	args := []string{"pull"}
	var out io.Writer = c.out
	if quiet {
		args = append(args, "-q")
		out = nil
	}
	args = append(args, image)

	if _, err := c.run(ctx, out, args...); err != nil {
		return fmt.Errorf("failed to pull %s: %w", image, err)
	}
	return nil
}

// Build builds image from dockerfile using contextDir as build context.
func (c *Client) Build(ctx context.Context, image, dockerfile, contextDir string) error {
	if _, err := c.run(ctx, nil, BuildArgs(image, dockerfile, contextDir)...); err != nil {
		return fmt.Errorf("failed to build %s: %w", image, err)
	}
	return nil
}

// BuildArgs returns the docker arguments of an image build.
func BuildArgs(image, dockerfile, contextDir string) []string {
	return []string{"build", "-t", image, "-f", dockerfile, contextDir}
}

// Binary returns the docker binary this client runs.
func (c *Client) Binary() string {
	return c.binary
}

// run executes docker with args. Output is captured unless out is set.
func (c *Client) run(ctx context.Context, out io.Writer, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, c.binary, args...)

	var stdout, stderr bytes.Buffer
	if out != nil {
		cmd.Stdout = out
		cmd.Stderr = out
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotInstalled
		}
		return "", fmt.Errorf("docker command failed: %w (stderr: %s)", err, stderr.String())
	}

	return stdout.String(), nil
}
