package model

import "path/filepath"

// Paths holds the filesystem roots of a verification run.
// It is loaded once at start and never modified afterwards.
type Paths struct {
	// Root of the user project (contains verilog/dv/cocotb)
	UserProjectRoot string `json:"user_project_root"`
	// Root of the caravel (or openframe) harness repository
	CaravelRoot string `json:"caravel_root"`
	// Root of the management core wrapper, empty for OpenFrame designs
	MCWRoot string `json:"mcw_root,omitempty"`
	// Root of the PDK installation
	PDKRoot string `json:"pdk_root"`
	// PDK variant (e.g. sky130A)
	PDK string `json:"pdk"`
	// Directory the harness was started from
	RunPath string `json:"run_path"`
	// Directory receiving all simulation outputs
	SimPath string `json:"sim_path"`
}

// CaravelVerilogPath is the verilog directory of the caravel harness.
func (p Paths) CaravelVerilogPath() string {
	return filepath.Join(p.CaravelRoot, "verilog")
}

// VerilogPath is the verilog directory of the management core wrapper.
// It is empty when no MCW root is configured.
func (p Paths) VerilogPath() string {
	if p.MCWRoot == "" {
		return ""
	}
	return filepath.Join(p.MCWRoot, "verilog")
}

// FirmwarePath is the directory holding the management SoC firmware sources.
func (p Paths) FirmwarePath() string {
	if p.MCWRoot == "" {
		return ""
	}
	return filepath.Join(p.MCWRoot, "verilog", "dv", "firmware")
}

// CocotbPath is the directory holding the user project's cocotb tests.
func (p Paths) CocotbPath() string {
	return filepath.Join(p.UserProjectRoot, "verilog", "dv", "cocotb")
}

// HexDir is the directory receiving generated firmware images.
func (p Paths) HexDir() string {
	return filepath.Join(p.SimPath, "hex_files")
}
