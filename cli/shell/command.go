package shell

// command.go contains structured descriptors for the shell commands the
// harness runs. Arguments stay as words until Render, which is the only
// place shell text is produced.

import (
	"sort"
	"strings"

	"al.essio.dev/pkg/shellescape"
)

// Word is a single command-line argument.
type Word struct {
	Text string
	// Expr words are emitted verbatim so the shell expands them.
	Expr bool
}

// Lit returns a literal word that is quoted on render.
func Lit(s string) Word { return Word{Text: s} }

// Expr returns a word rendered verbatim, e.g. "$(cocotb-config --prefix)/cocotb/libs".
func Expr(s string) Word { return Word{Text: s, Expr: true} }

func (w Word) render() string {
	if w.Expr {
		return w.Text
	}
	return shellescape.Quote(w.Text)
}

// Command describes one program invocation.
type Command struct {
	// Working directory, empty to keep the current one
	Dir string
	// Environment assignments prefixed to the program
	Env     map[string]string
	Program string
	Args    []Word
	// File receiving stdout, empty for none
	Stdout string
}

// NewCommand creates a command for program with literal args.
func NewCommand(program string, args ...string) *Command {
	c := &Command{Program: program}
	return c.Arg(args...)
}

// Arg appends literal arguments.
func (c *Command) Arg(args ...string) *Command {
	for _, a := range args {
		c.Args = append(c.Args, Lit(a))
	}
	return c
}

// ArgExpr appends arguments that are rendered without quoting.
func (c *Command) ArgExpr(args ...string) *Command {
	for _, a := range args {
		c.Args = append(c.Args, Expr(a))
	}
	return c
}

// In sets the working directory.
func (c *Command) In(dir string) *Command {
	c.Dir = dir
	return c
}

// SetEnv adds an environment assignment.
func (c *Command) SetEnv(key, value string) *Command {
	if c.Env == nil {
		c.Env = make(map[string]string)
	}
	c.Env[key] = value
	return c
}

// RedirectTo sends stdout of the program to path.
func (c *Command) RedirectTo(path string) *Command {
	c.Stdout = path
	return c
}

// Words returns program and arguments as unquoted strings.
func (c *Command) Words() []string {
	out := make([]string, 0, len(c.Args)+1)
	out = append(out, c.Program)
	for _, a := range c.Args {
		out = append(out, a.Text)
	}
	return out
}

// Render produces the shell text of the command.
func (c *Command) Render() string {
	var parts []string
	if c.Dir != "" {
		parts = append(parts, "cd", shellescape.Quote(c.Dir), "&&")
	}

	keys := make([]string, 0, len(c.Env))
	for k := range c.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+"="+shellescape.Quote(c.Env[k]))
	}

	parts = append(parts, shellescape.Quote(c.Program))
	for _, a := range c.Args {
		parts = append(parts, a.render())
	}

	if c.Stdout != "" {
		parts = append(parts, ">", shellescape.Quote(c.Stdout))
	}
	return strings.Join(parts, " ")
}

// Script is an ordered list of commands that stops at the first failure.
type Script []*Command

// Render joins the rendered commands with &&.
func (s Script) Render() string {
	parts := make([]string, len(s))
	for i, c := range s {
		parts[i] = c.Render()
	}
	return strings.Join(parts, " && ")
}

// Invocation is a process to spawn together with the text shown to users.
type Invocation struct {
	Argv    []string
	Display string
}

// Native runs script through the local shell.
func Native(script Script) Invocation {
	text := script.Render()
	return Invocation{
		Argv:    []string{"sh", "-ec", text},
		Display: text,
	}
}
