package docker

// run.go contains the structured description of a `docker run` invocation
// and helpers to assemble its volumes and switches.

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"al.essio.dev/pkg/shellescape"
	"github.com/chipfoundry/caravelsim/cli/shell"
	"github.com/mattn/go-isatty"
)

// ScratchDir is mounted into containers when it exists on the host.
const ScratchDir = "/mnt/scratch"

// ScratchRuns is the scratch subdirectory shared with containers.
const ScratchRuns = "/mnt/scratch/cocotb_runs"

// Volume maps a host path into the container.
type Volume struct {
	Host      string
	Container string
}

func (v Volume) String() string {
	return v.Host + ":" + v.Container
}

// RunSpec describes a container run.
type RunSpec struct {
	Image string
	// uid:gid the container runs as
	User string
	// Attach a TTY and forward signals
	Interactive bool
	Volumes     []Volume
	Env         map[string]string
	// Additional switches placed before the environment
	Extra []string
}

// Mount adds volumes mapping each path to itself. Empty and repeated paths
// are skipped.
func (s *RunSpec) Mount(paths ...string) {
	for _, p := range paths {
		if p == "" || s.mounted(p) {
			continue
		}
		s.Volumes = append(s.Volumes, Volume{Host: p, Container: p})
	}
}

func (s *RunSpec) mounted(container string) bool {
	for _, v := range s.Volumes {
		if v.Container == container {
			return true
		}
	}
	return false
}

// SetEnv adds an environment variable.
func (s *RunSpec) SetEnv(key, value string) {
	if s.Env == nil {
		s.Env = make(map[string]string)
	}
	s.Env[key] = value
}

// RunArgs builds the docker arguments running script in the container.
func RunArgs(spec RunSpec, script shell.Script) []string {
	args := []string{"run"}
	if spec.Interactive {
		args = append(args, "--init", "-it", "--sig-proxy=true")
	}
	if spec.User != "" {
		args = append(args, "-u", spec.User)
	}
	args = append(args, spec.Extra...)

	keys := make([]string, 0, len(spec.Env))
	for k := range spec.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-e", k+"="+spec.Env[k])
	}

	for _, v := range spec.Volumes {
		args = append(args, "-v", v.String())
	}

	return append(args, spec.Image, "sh", "-ec", script.Render())
}

// Invocation returns the process running script in a container.
func (c *Client) Invocation(spec RunSpec, script shell.Script) shell.Invocation {
	argv := append([]string{c.binary}, RunArgs(spec, script)...)
	return shell.Invocation{
		Argv:    argv,
		Display: shellescape.QuoteCommand(argv),
	}
}

// CurrentUser returns the uid:gid of the calling process.
func CurrentUser() string {
	return fmt.Sprintf("%d:%d", os.Getuid(), os.Getgid())
}

// Interactive reports whether containers should get a TTY: never in CI and
// only when stdin is a terminal.
func Interactive(ci bool) bool {
	if ci {
		return false
	}
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// DisplaySwitches forwards the host X11 display so waveform viewers started
// inside the container can open windows.
func DisplaySwitches() []string {
	home, _ := os.UserHomeDir()
	return []string{
		"-e", "DISPLAY=" + os.Getenv("DISPLAY"),
		"-v", "/tmp/.X11-unix:/tmp/.X11-unix",
		"-v", filepath.Join(home, ".Xauthority") + ":/.Xauthority",
		"--network", "host",
		"--security-opt", "seccomp=unconfined",
	}
}

// SymlinkedDirs returns the symbolic links below root that point to
// directories. Links are not followed.
func SymlinkedDirs(root string) ([]string, error) {
	var links []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink == 0 {
			return nil
		}
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			links = append(links, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s for links: %w", root, err)
	}
	return links, nil
}

// HasScratch reports whether the host scratch area exists.
func HasScratch() bool {
	_, err := os.Stat(ScratchDir)
	return err == nil
}
