package pretty

// Package pretty renders test progress and results for the terminal.

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chipfoundry/caravelsim/model"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// ANSI escape sequences.
const (
	Cyan    = "\033[96m"
	Green   = "\033[92m"
	Yellow  = "\033[93m"
	Red     = "\033[91m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
	Reset   = "\033[0m"
	divider = 60
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// LevelColor returns the escape sequence for messages of level.
func LevelColor(level zerolog.Level) string {
	switch level {
	case zerolog.TraceLevel, zerolog.DebugLevel:
		return Dim
	case zerolog.WarnLevel:
		return Yellow
	case zerolog.ErrorLevel:
		return Red
	case zerolog.FatalLevel, zerolog.PanicLevel:
		return Red + Bold
	}
	return ""
}

// Highlight colors the pass and fail markers within msg.
func Highlight(msg string) string {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "PASS") || strings.Contains(lower, "passed"):
		msg = strings.ReplaceAll(msg, "PASS", Green+"PASS"+Reset)
		msg = strings.ReplaceAll(msg, "passed", Green+"passed"+Reset)
	case strings.Contains(msg, "FAIL") || strings.Contains(lower, "failed"):
		msg = strings.ReplaceAll(msg, "FAIL", Red+"FAIL"+Reset)
		msg = strings.ReplaceAll(msg, "failed", Red+"failed"+Reset)
	}
	return msg
}

// ConsoleWriter returns a zerolog console writer coloring messages by level.
func ConsoleWriter(out io.Writer, color bool) zerolog.ConsoleWriter {
	w := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    !color,
		TimeFormat: time.TimeOnly,
	}
	if !color {
		return w
	}

	var level zerolog.Level
	w.FormatLevel = func(i interface{}) string {
		s, _ := i.(string)
		l, err := zerolog.ParseLevel(s)
		if err != nil {
			l = zerolog.NoLevel
		}
		level = l
		return fmt.Sprintf("%s%-5s%s", LevelColor(l), strings.ToUpper(s), Reset)
	}
	// the default PartsOrder formats the level before the message
	w.FormatMessage = func(i interface{}) string {
		if i == nil {
			return ""
		}
		msg := fmt.Sprint(i)
		if c := LevelColor(level); c != "" {
			return c + msg + Reset
		}
		return Highlight(msg)
	}
	return w
}

// Printer writes test headers, results and summaries.
type Printer struct {
	out   io.Writer
	color bool
}

// NewPrinter creates a printer. Escape sequences are only emitted with color.
func NewPrinter(out io.Writer, color bool) *Printer {
	return &Printer{out: out, color: color}
}

func (p *Printer) paint(s string, codes ...string) string {
	if !p.color || len(codes) == 0 {
		return s
	}
	return strings.Join(codes, "") + s + Reset
}

func (p *Printer) rule() string {
	return p.paint(strings.Repeat("=", divider), Cyan)
}

// TestHeader announces a test.
func (p *Printer) TestHeader(name string, sim model.SimType) {
	fmt.Fprintf(p.out, "\n%s\n", p.rule())
	fmt.Fprintf(p.out, "%s%s\n", p.paint("Running: ", Bold), name)
	fmt.Fprintf(p.out, "%s\n", p.paint("Simulation: "+string(sim), Dim))
	fmt.Fprintf(p.out, "%s\n\n", p.rule())
}

// TestResult reports the outcome of a test.
func (p *Printer) TestResult(r *model.TestResult) {
	icon, status := "✗", p.paint("FAILED", Red, Bold)
	if r.Status == model.StatusPassed {
		icon, status = "✓", p.paint("PASSED", Green, Bold)
	}
	fmt.Fprintf(p.out, "\n%s Test: %s %s\n", icon, r.FullName(), status)
	if r.Duration > 0 {
		fmt.Fprintf(p.out, "  Duration: %s\n", FormatDuration(r.Duration))
	}
	if r.Error != "" {
		fmt.Fprintf(p.out, "  Error: %s\n", r.Error)
	}
	fmt.Fprintln(p.out)
}

// Summary prints the counts and a table of all results.
func (p *Printer) Summary(results []model.TestResult, total time.Duration) {
	var passed, failed int
	for _, r := range results {
		switch r.Status {
		case model.StatusPassed:
			passed++
		case model.StatusFailed:
			failed++
		}
	}
	unknown := len(results) - passed - failed

	fmt.Fprintf(p.out, "\n%s\n%s\n%s\n", p.rule(), p.paint("Test Summary", Bold), p.rule())
	fmt.Fprintf(p.out, "\n  Total:   %d\n", len(results))
	fmt.Fprintf(p.out, "  %s\n", p.paint(fmt.Sprintf("Passed:  %d", passed), Green))
	if failed > 0 {
		fmt.Fprintf(p.out, "  %s\n", p.paint(fmt.Sprintf("Failed:  %d", failed), Red))
	} else {
		fmt.Fprintf(p.out, "  Failed:  %d\n", failed)
	}
	if unknown > 0 {
		fmt.Fprintf(p.out, "  %s\n", p.paint(fmt.Sprintf("Unknown: %d", unknown), Yellow))
	}
	fmt.Fprintf(p.out, "  Duration: %s\n", FormatDuration(total))

	fmt.Fprintf(p.out, "\n%s\n", p.paint(fmt.Sprintf("%-40s %-10s %-12s", "Test", "Status", "Duration"), Dim))
	fmt.Fprintln(p.out, strings.Repeat("-", 62))
	for _, r := range results {
		status := fmt.Sprintf("%-10s", r.Status)
		switch r.Status {
		case model.StatusPassed:
			status = p.paint(status, Green)
		case model.StatusFailed:
			status = p.paint(status, Red)
		default:
			status = p.paint(status, Yellow)
		}
		fmt.Fprintf(p.out, "%-40s %s %-12s\n", r.FullName(), status, FormatDuration(r.Duration))
	}
	fmt.Fprintln(p.out, p.rule())
}

// FormatDuration renders d the way the summary shows it, e.g. 1m05s or 3.2s.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	if m < 60 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%dh%02dm%02ds", m/60, m%60, s)
}
