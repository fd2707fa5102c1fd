package cmd

import (
	"fmt"
	"io"
	"os"
)

// Command output goes through these writers so tests can capture it.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Status glyphs used by doctor, init and index output:
//
//	✓  check passed, artifact written
//	✗  check failed (stderr)
//	⚠  usable but degraded, e.g. a model mismatch or leftover build dirs
//	○  step skipped because there was nothing to do
//	~  neutral detail such as a resolved path
const (
	glyphOK   = "✓"
	glyphErr  = "✗"
	glyphWarn = "⚠"
	glyphSkip = "○"
	glyphInfo = "~"
)

// printSection prints a top-level section header, e.g. "=== biobot doctor ===".
func printSection(title string) {
	fmt.Fprintf(stdout, "\n=== %s ===\n", title)
}

// printLine writes "  <glyph>  [name] msg"; the bracketed name is omitted when empty.
func printLine(w io.Writer, glyph, name, msg string) {
	if name == "" {
		fmt.Fprintf(w, "  %s  %s\n", glyph, msg)
		return
	}
	fmt.Fprintf(w, "  %s  [%s] %s\n", glyph, name, msg)
}

func printOK(name, msg string)   { printLine(stdout, glyphOK, name, msg) }
func printErr(name, msg string)  { printLine(stderr, glyphErr, name, msg) }
func printWarn(name, msg string) { printLine(stdout, glyphWarn, name, msg) }
func printSkip(name, msg string) { printLine(stdout, glyphSkip, name, msg) }
func printInfo(name, msg string) { printLine(stdout, glyphInfo, name, msg) }
