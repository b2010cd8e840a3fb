package firmware

// Package firmware builds the management core firmware of a test into a hex
// image the testbench loads into flash.

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/chipfoundry/caravelsim/cli/shell"
)

const riscvPrefix = "/opt/riscv/bin/riscv32-unknown-elf"

const armPrefix = "arm-none-eabi"

var riscvFlags = []string{
	"-O2", "-g", "-march=rv32i_zicsr", "-mabi=ilp32", "-D__vexriscv__", "-ffreestanding", "-nostdlib",
}

var armFlags = []string{
	"-O2", "-Wall", "-nostdlib", "-nostartfiles", "-ffreestanding", "-mcpu=cortex-m0", "-Wno-unused-value",
}

// Options describes the firmware of one test.
type Options struct {
	// Test name, also the base name of the generated files
	Name string
	// C source of the test
	Source string
	// Directory receiving elf, lst and hex
	HexDir string
	// Management SoC firmware sources
	FirmwarePath string
	// Management core verilog directory
	VerilogPath string
	// Directory holding the cocotb tests of the user project
	CocotbPath   string
	LinkerScript string
	// Firmware directories of user IPs
	IPFirmware []string
}

// ELF returns the linked firmware.
func (o Options) ELF() string { return filepath.Join(o.HexDir, o.Name+".elf") }

// Listing returns the disassembly listing.
func (o Options) Listing() string { return filepath.Join(o.HexDir, o.Name+".lst") }

// Hex returns the generated hex image.
func (o Options) Hex() string { return filepath.Join(o.HexDir, o.Name+".hex") }

// RiscVIncludes returns the include flags of a RISC-V build.
func RiscVIncludes(o Options) []string {
	includes := []string{
		"-I" + o.FirmwarePath,
		"-I" + filepath.Join(o.FirmwarePath, "APIs"),
		"-I" + filepath.Join(o.VerilogPath, "dv", "generated"),
		"-I" + filepath.Join(o.VerilogPath, "dv"),
		"-I" + filepath.Join(o.VerilogPath, "common"),
		"-I" + o.CocotbPath,
	}
	for _, ip := range o.IPFirmware {
		includes = append(includes, "-I"+ip)
	}
	return includes
}

// RiscVScript builds the commands compiling the firmware for the VexRiscv
// management core.
func RiscVScript(o Options) shell.Script {
	gcc := shell.NewCommand(riscvPrefix+"-gcc", RiscVIncludes(o)...).
		Arg(riscvFlags...).
		Arg("-Wl,-Bstatic,-T,"+o.LinkerScript+",--strip-debug").
		Arg("-o", o.ELF(),
			filepath.Join(o.FirmwarePath, "crt0_vex.S"),
			filepath.Join(o.FirmwarePath, "isr.c"),
			o.Source)
	return finish(riscvPrefix, gcc, o)
}

// ArmScript builds the commands compiling the firmware for the Cortex-M0
// management core.
func ArmScript(o Options) shell.Script {
	gcc := shell.NewCommand(armPrefix+"-gcc", "-I"+o.FirmwarePath, "-I"+o.CocotbPath).
		Arg(armFlags...).
		Arg("-T", o.LinkerScript).
		Arg("-o", o.ELF(), filepath.Join(o.FirmwarePath, "cm0_start.s"), o.Source)
	return finish(armPrefix, gcc, o)
}

func finish(prefix string, gcc *shell.Command, o Options) shell.Script {
	return shell.Script{
		gcc,
		shell.NewCommand(prefix+"-objdump", "-d", "-S", o.ELF()).RedirectTo(o.Listing()),
		shell.NewCommand(prefix+"-objcopy", "-O", "verilog", o.ELF(), o.Hex()),
	}
}

// PatchHex rebases the image to address zero by rewriting every @10 address
// tag to @00.
func PatchHex(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read hex: %w", err)
	}
	patched := bytes.ReplaceAll(data, []byte("@10"), []byte("@00"))
	if err := os.WriteFile(path, patched, 0o644); err != nil {
		return fmt.Errorf("failed to write hex: %w", err)
	}
	return nil
}

// IPFirmwareDirs returns the resolved fw directories of the IPs under
// <userProject>/ip.
func IPFirmwareDirs(userProject string) ([]string, error) {
	ipRoot := filepath.Join(userProject, "ip")
	entries, err := os.ReadDir(ipRoot)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list IPs: %w", err)
	}

	var dirs []string
	for _, e := range entries {
		fw := filepath.Join(ipRoot, e.Name(), "fw")
		info, err := os.Stat(fw)
		if err != nil || !info.IsDir() {
			continue
		}
		resolved, err := filepath.EvalSymlinks(fw)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", fw, err)
		}
		dirs = append(dirs, resolved)
	}
	sort.Strings(dirs)
	return dirs, nil
}

// FindSource locates <name>.c below root and returns its path.
func FindSource(root, name string) (string, error) {
	want := name + ".c"
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == want {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to search %s: %w", root, err)
	}
	if found == "" {
		return "", fmt.Errorf("%s not found in %s: %w", want, root, fs.ErrNotExist)
	}
	return found, nil
}
