package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/chipfoundry/caravelsim/cli/firmware"
	"github.com/chipfoundry/caravelsim/cli/shell"
	"github.com/chipfoundry/caravelsim/model"
)

// generateHex compiles the firmware of t and places the image in the test
// directory as firmware.hex.
func (o *Orchestrator) generateHex(ctx context.Context, t *model.Test) error {
	p := o.paths
	source, err := firmware.FindSource(p.CocotbPath(), t.Name)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s doesn't exist or doesn't have a C file", ErrTestNotFound, t.Name)
	}
	if err != nil {
		return err
	}

	ipFirmware, err := firmware.IPFirmwareDirs(p.UserProjectRoot)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(p.HexDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create hex directory: %w", err)
	}

	fw := firmware.Options{
		Name:         t.Name,
		Source:       source,
		HexDir:       p.HexDir(),
		FirmwarePath: p.FirmwarePath(),
		VerilogPath:  p.VerilogPath(),
		CocotbPath:   p.CocotbPath(),
		LinkerScript: t.LinkerScript,
		IPFirmware:   ipFirmware,
	}

	var inv shell.Invocation
	if o.opts.CPU == model.CPUArm {
		inv = shell.Native(firmware.ArmScript(fw))
	} else if o.opts.NoDocker {
		inv = shell.Native(firmware.RiscVScript(fw))
	} else {
		inv = o.docker.Invocation(o.hexSpec(t, ipFirmware), firmware.RiscVScript(fw))
	}

	o.logger.Debug().Str("test", t.FullName()).Str("source", source).Msg("Generating hex")
	code := o.exec.Run(ctx, inv, t.HexLog, o.opts.Quiet())
	if code != 0 || !exists(fw.Hex()) {
		o.appendLog(t.HexLog, "Error: when generating hex\n")
		return fmt.Errorf("failed to compile the C code, for more info refer to %s", t.HexLog)
	}

	if err := firmware.PatchHex(fw.Hex()); err != nil {
		return err
	}
	if err := copyFile(fw.Hex(), filepath.Join(t.Dir, "firmware.hex")); err != nil {
		return fmt.Errorf("failed to copy hex to test directory: %w", err)
	}
	o.appendLog(t.HexLog, "Pass: hex generation\n")
	return nil
}

func (o *Orchestrator) appendLog(path, msg string) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		o.logger.Warn().Err(err).Str("log", path).Msg("Failed to open log file")
		return
	}
	defer f.Close()
	if _, err := f.WriteString(msg); err != nil {
		o.logger.Warn().Err(err).Str("log", path).Msg("Failed to write log file")
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
