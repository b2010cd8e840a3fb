package shell

import (
	"reflect"
	"testing"
)

func TestCommandRender(t *testing.T) {
	tests := []struct {
		name string
		cmd  *Command
		want string
	}{
		{
			name: "program only",
			cmd:  NewCommand("vvp"),
			want: "vvp",
		},
		{
			name: "quotes literal words",
			cmd:  NewCommand("iverilog", "-DSIM=\"RTL\"", "-o", "/tmp/a b/sim.vvp"),
			want: `iverilog '-DSIM="RTL"' -o '/tmp/a b/sim.vvp'`,
		},
		{
			name: "directory and sorted env",
			cmd: NewCommand("vvp", "sim.vvp").In("/sim/run").
				SetEnv("TESTCASE", "gpio_test").
				SetEnv("MODULE", "module_trail"),
			want: "cd /sim/run && MODULE=module_trail TESTCASE=gpio_test vvp sim.vvp",
		},
		{
			name: "expression words are verbatim",
			cmd:  NewCommand("vvp", "-M").ArgExpr("$(cocotb-config --prefix)/cocotb/libs").Arg("-m", "libcocotbvpi_icarus"),
			want: "vvp -M $(cocotb-config --prefix)/cocotb/libs -m libcocotbvpi_icarus",
		},
		{
			name: "stdout redirect",
			cmd:  NewCommand("riscv32-unknown-elf-objdump", "-d", "-S", "t.elf").RedirectTo("t.lst"),
			want: "riscv32-unknown-elf-objdump -d -S t.elf > t.lst",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cmd.Render(); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScriptRender(t *testing.T) {
	s := Script{
		NewCommand("mkdir", "-p", "out"),
		NewCommand("cp", "a.hex", "out/firmware.hex"),
	}
	want := "mkdir -p out && cp a.hex out/firmware.hex"
	if got := s.Render(); got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestNative(t *testing.T) {
	inv := Native(Script{NewCommand("echo", "hi there")})
	want := []string{"sh", "-ec", "echo 'hi there'"}
	if !reflect.DeepEqual(inv.Argv, want) {
		t.Errorf("Argv = %v, want %v", inv.Argv, want)
	}
	if inv.Display != "echo 'hi there'" {
		t.Errorf("Display = %q", inv.Display)
	}
}

func TestWords(t *testing.T) {
	c := NewCommand("vcs", "-full64").ArgExpr("$HOME")
	want := []string{"vcs", "-full64", "$HOME"}
	if got := c.Words(); !reflect.DeepEqual(got, want) {
		t.Errorf("Words() = %v, want %v", got, want)
	}
}
