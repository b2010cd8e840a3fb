package shell

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var ansiEscape = regexp.MustCompile(`\x1B[@-_][0-?]*[ -/]*[@-~]`)

var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^-v\s+/`),
	regexp.MustCompile(`docker\.io/`),
	regexp.MustCompile(`What's next:`),
	regexp.MustCompile(`docker scout`),
	regexp.MustCompile(`View a summary of image`),
	regexp.MustCompile(`platform.*does not match`),
	regexp.MustCompile(`^\s*$`),
	regexp.MustCompile(`DeprecationWarning`),
	regexp.MustCompile(`RuntimeWarning`),
	regexp.MustCompile(`^\*+$`),
	regexp.MustCompile(`^\*\*\s`),
	regexp.MustCompile(`^\s+\*\*`),
	regexp.MustCompile(`cocotb\.scheduler\.add`),
	regexp.MustCompile(`/usr/local/lib/python.*\.py:\d+:`),
	regexp.MustCompile(`^\s+cocotb\.(scheduler|log)`),
	regexp.MustCompile(`===WARNING===.*sky130`),
	regexp.MustCompile(`^VCD info:`),
	regexp.MustCompile(`^\s+self\.`),
	regexp.MustCompile(`^/opt/homebrew/`),
	regexp.MustCompile(`gpi_embed\.cpp`),
	regexp.MustCompile(`GpiCommon\.cpp`),
	regexp.MustCompile(`in gpi_print_registered`),
	regexp.MustCompile(`in set_program_name_in_venv`),
	regexp.MustCompile(`VPI registered`),
	regexp.MustCompile(`pytest not found`),
}

// IsNoise reports whether line is known chatter from docker, cocotb or the
// simulator runtime.
func IsNoise(line string) bool {
	for _, p := range noisePatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// Clean decodes raw output and strips ANSI escapes and trailing whitespace.
// Input that is not valid UTF-8 is read as Latin-1.
func Clean(raw []byte) string {
	var s string
	if utf8.Valid(raw) {
		s = string(raw)
	} else {
		runes := make([]rune, len(raw))
		for i, b := range raw {
			runes[i] = rune(b)
		}
		s = string(runes)
	}
	return strings.TrimRightFunc(ansiEscape.ReplaceAllString(s, ""), isSpace)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}

// isProgressive reports whether one line is a strict prefix of the other
// and the longer adds more than two characters.
func isProgressive(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	shorter, longer := a, b
	if len(b) < len(a) {
		shorter, longer = b, a
	}
	return strings.HasPrefix(longer, shorter) && len(longer) > len(shorter)+2
}

// LineFilter decides which cleaned lines reach the console. Progressive
// output (a line reprinted as it grows) collapses to its longest version.
type LineFilter struct {
	// KeepNoise disables noise suppression
	KeepNoise bool

	buffered string
	has      bool
}

// Push feeds a line and returns the lines ready for output.
func (f *LineFilter) Push(line string) []string {
	if line == "" {
		return nil
	}
	if !f.KeepNoise && IsNoise(line) {
		return nil
	}
	if f.has && isProgressive(line, f.buffered) {
		if len(line) > len(f.buffered) {
			f.buffered = line
		}
		return nil
	}
	out := f.Flush()
	f.buffered, f.has = line, true
	return out
}

// Flush returns the buffered line, if any.
func (f *LineFilter) Flush() []string {
	if !f.has {
		return nil
	}
	line := f.buffered
	f.buffered, f.has = "", false
	return []string{line}
}
