package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"sysyc/internal/diag"
	"sysyc/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info, note, gutter, caret, bold *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgBlue, color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
		bold:   color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.gutter, p.caret, p.bold} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty renders every diagnostic of bag in order:
//
//	<path>:<line>:<col>: <severity> <CODE>: <message>
//	   3 | source line
//	     |     ^~~~
//
// followed by notes when opts.ShowNotes is set. Call bag.Sort first for
// positional order.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		loc, file, ok := locate(d.Primary, fs, opts)
		sev := strings.ToLower(d.Severity.String())
		fmt.Fprintf(w, "%s: %s %s\n", p.bold.Sprint(loc), p.severity(d.Severity).Sprintf("%s %s:", sev, d.Code.ID()), d.Message)
		if ok {
			writeSnippet(w, p, file, fs, d.Primary, opts.Context)
		}
		if !opts.ShowNotes && d.Code != diag.ObsTimings {
			continue
		}
		for _, n := range d.Notes {
			nloc, nfile, nok := locate(n.Span, fs, opts)
			if nok {
				fmt.Fprintf(w, "  %s %s: %s\n", p.note.Sprint("note:"), nloc, n.Msg)
				writeSnippet(w, p, nfile, fs, n.Span, 0)
			} else {
				fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("note:"), n.Msg)
			}
		}
	}
}

// locate formats a span's position. ok is false for spans without a usable
// position; loc then holds only the path, or "sysyc".
func locate(sp source.Span, fs *source.FileSet, opts PrettyOpts) (loc string, file *source.File, ok bool) {
	file = fileOf(sp, fs)
	if file == nil {
		return "sysyc", nil, false
	}
	path := formatPath(file.Path, opts.PathMode, opts.BaseDir)
	if sp.Start == 0 && sp.End == 0 {
		return path, file, false
	}
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", path, start.Line, start.Col), file, true
}

func fileOf(sp source.Span, fs *source.FileSet) *source.File {
	if fs == nil || int(sp.File) >= fs.Len() {
		return nil
	}
	return fs.Get(sp.File)
}

func writeSnippet(w io.Writer, p palette, file *source.File, fs *source.FileSet, sp source.Span, context int) {
	start, end := fs.Resolve(sp)
	first := start.Line
	if c := uint32(max(context, 0)); c < first {
		first -= c
	} else {
		first = 1
	}
	width := len(fmt.Sprint(start.Line))
	for ln := first; ln <= start.Line; ln++ {
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", width+2, ln), expandTabs(file.GetLine(ln)))
	}

	line := file.GetLine(start.Line)
	lastCol := end.Col
	if end.Line != start.Line {
		lastCol = uint32(len(line)) + 1
	}
	pad := displayWidth(line, start.Col)
	span := max(displayWidth(line, lastCol)-pad, 1)
	marker := "^" + strings.Repeat("~", span-1)
	fmt.Fprintf(w, "%s %s%s\n", p.gutter.Sprintf("%*s |", width+2, ""), strings.Repeat(" ", pad), p.caret.Sprint(marker))
}

// displayWidth is the terminal width of line up to 1-based byte column col.
func displayWidth(line string, col uint32) int {
	n := int(col) - 1
	if n > len(line) {
		n = len(line)
	}
	if n < 0 {
		n = 0
	}
	return runewidth.StringWidth(expandTabs(line[:n]))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
