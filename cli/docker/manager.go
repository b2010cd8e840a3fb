package docker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/briandowns/spinner"
	"github.com/rs/zerolog"
)

var dockerfileTemplate = template.Must(template.New("Dockerfile").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(`FROM {{ .BaseImage }}
RUN pip install --upgrade {{ join .Requirements " " }}
`))

// Manager keeps the simulation image up to date.
type Manager struct {
	logger zerolog.Logger
	client *Client

	image           string
	baseImage       string
	userProjectRoot string
	simPath         string
	progress        bool
	progressOut     io.Writer
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithProgress shows a spinner on w while pulling.
func WithProgress(w io.Writer) ManagerOption {
	return func(m *Manager) {
		m.progress = true
		m.progressOut = w
	}
}

// WithBaseImage sets the image the generated Dockerfile starts from.
// Defaults to the managed image.
func WithBaseImage(image string) ManagerOption {
	return func(m *Manager) { m.baseImage = image }
}

// NewManager creates a manager for image.
func NewManager(logger zerolog.Logger, client *Client, image, userProjectRoot, simPath string, opts ...ManagerOption) *Manager {
	m := &Manager{
		logger:          logger,
		client:          client,
		image:           image,
		baseImage:       image,
		userProjectRoot: userProjectRoot,
		simPath:         simPath,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RequirementsPath is the python requirements file of the user project.
func (m *Manager) RequirementsPath() string {
	return filepath.Join(m.userProjectRoot, "verilog", "dv", "cocotb", "requirements.txt")
}

// DockerfilePath is where the generated Dockerfile is written.
func (m *Manager) DockerfilePath() string {
	return filepath.Join(m.simPath, "Dockerfile")
}

// Run pulls or updates the image and rebuilds it with the project's python
// requirements when a requirements file exists. Only a missing docker
// installation is reported as an error; pull and build failures are logged.
func (m *Manager) Run(ctx context.Context) error {
	if err := m.pull(ctx); err != nil {
		return err
	}

	reqs, err := ReadRequirements(m.RequirementsPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		m.logger.Warn().Err(err).Msg("Failed to read requirements")
		return nil
	}

	if err := m.writeDockerfile(reqs); err != nil {
		m.logger.Warn().Err(err).Msg("Failed to write Dockerfile")
		return nil
	}

	m.logger.Info().Str("image", m.image).Msg("Building docker image with custom requirements")
	if err := m.client.Build(ctx, m.image, m.DockerfilePath(), m.simPath); err != nil {
		if errors.Is(err, ErrNotInstalled) {
			return err
		}
		m.logger.Warn().Err(err).Msg("Error building docker image")
		return nil
	}
	m.logger.Info().Str("image", m.image).Msg("Docker image ready")
	return nil
}

func (m *Manager) pull(ctx context.Context) error {
	present, err := m.client.Inspect(ctx, m.image)
	if err != nil {
		if errors.Is(err, ErrNotInstalled) {
			return err
		}
		m.logger.Warn().Err(err).Msg("Failed to inspect docker image")
	}

	if present {
		m.logger.Debug().Str("image", m.image).Msg("Checking for docker image updates")
	} else {
		m.logger.Info().Str("image", m.image).Msg("Pulling docker image")
	}

	// the spinner replaces docker's own progress output
	stop := m.startSpinner(fmt.Sprintf(" pulling %s", m.image))
	err = m.client.Pull(ctx, m.image, present || m.progress)
	stop()

	if err != nil {
		if errors.Is(err, ErrNotInstalled) {
			return err
		}
		m.logger.Warn().Err(err).Str("image", m.image).Msg("Failed to pull docker image")
	}
	return nil
}

func (m *Manager) startSpinner(suffix string) func() {
	if !m.progress {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Writer = m.progressOut
	s.Suffix = suffix
	s.Start()
	return s.Stop
}

func (m *Manager) writeDockerfile(reqs []string) error {
	if err := os.MkdirAll(m.simPath, 0o755); err != nil {
		return fmt.Errorf("failed to create sim directory: %w", err)
	}
	f, err := os.Create(m.DockerfilePath())
	if err != nil {
		return fmt.Errorf("failed to create Dockerfile: %w", err)
	}
	defer f.Close()

	return RenderDockerfile(f, m.baseImage, reqs)
}

// RenderDockerfile writes a Dockerfile extending baseImage with reqs.
func RenderDockerfile(w io.Writer, baseImage string, reqs []string) error {
	return dockerfileTemplate.Execute(w, struct {
		BaseImage    string
		Requirements []string
	}{baseImage, reqs})
}

// ReadRequirements returns the requirement lines of a pip requirements file.
// Blank lines and comments are dropped.
func ReadRequirements(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reqs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		reqs = append(reqs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return reqs, nil
}
