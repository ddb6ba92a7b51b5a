package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"sysyc/internal/diag"
	"sysyc/internal/source"
)

func setup(t *testing.T, content string) (*source.FileSet, source.FileID) {
	t.Helper()
	fs := source.NewFileSet()
	return fs, fs.AddVirtual("t.sy", []byte(content))
}

func TestPrettyCaret(t *testing.T) {
	fs, id := setup(t, "int main() { return x; }")
	bag := diag.NewBag(4)
	bag.Add(diag.NewError(diag.SemaUndefinedSymbol, source.Span{File: id, Start: 20, End: 21}, "undefined symbol x"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	want := "t.sy:1:21: error SEM3005: undefined symbol x\n" +
		"  1 | int main() { return x; }\n" +
		"    | " + strings.Repeat(" ", 20) + "^\n"
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPrettyWideCharacters(t *testing.T) {
	src := "/* 日本 */ x"
	fs, id := setup(t, src)
	start := uint32(strings.Index(src, "x"))
	bag := diag.NewBag(4)
	bag.Add(diag.New(diag.SevWarning, diag.SemaUnreachableCode, source.Span{File: id, Start: start, End: start + 1}, "dead"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	lines := strings.Split(buf.String(), "\n")
	if !strings.HasPrefix(lines[0], "t.sy:1:14: warning ") {
		t.Fatalf("header = %q", lines[0])
	}
	if want := "    | " + strings.Repeat(" ", 11) + "^"; lines[2] != want {
		t.Fatalf("caret line = %q, want %q", lines[2], want)
	}
}

func TestPrettyUnderlinesWholeSpan(t *testing.T) {
	fs, id := setup(t, "const int abc = 1;")
	bag := diag.NewBag(4)
	bag.Add(diag.NewError(diag.SemaDuplicateSymbol, source.Span{File: id, Start: 10, End: 13}, "dup").
		WithNote(source.Span{File: id, Start: 0, End: 5}, "first here"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{ShowNotes: true})
	out := buf.String()
	if !strings.Contains(out, "^~~\n") {
		t.Fatalf("missing underline:\n%s", out)
	}
	if !strings.Contains(out, "note: t.sy:1:1: first here") {
		t.Fatalf("note missing:\n%s", out)
	}
}

func TestPrettyWithoutPosition(t *testing.T) {
	fs, id := setup(t, "int main() { return 0; }")
	bag := diag.NewBag(4)
	bag.Add(diag.NewError(diag.GenRegisterPoolExhausted, source.Span{File: id}, "register pool exhausted"))
	bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{File: 7}, "open x.sy: no such file"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	want := "t.sy: error GEN8002: register pool exhausted\n" +
		"sysyc: error IO4001: open x.sy: no such file\n"
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPrettyColor(t *testing.T) {
	fs, id := setup(t, "int main() { return x; }")
	bag := diag.NewBag(4)
	bag.Add(diag.NewError(diag.SemaUndefinedSymbol, source.Span{File: id, Start: 20, End: 21}, "undefined symbol x"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Color: true})
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("no escape sequences with Color set: %q", buf.String())
	}
}

func TestJSON(t *testing.T) {
	fs, id := setup(t, "int main()\n{ return x; }")
	bag := diag.NewBag(4)
	bag.Add(diag.NewError(diag.SemaUndefinedSymbol, source.Span{File: id, Start: 20, End: 21}, "undefined symbol x").
		WithNote(source.Span{File: id}, "hidden"))
	bag.Add(diag.New(diag.SevWarning, diag.SemaMissingReturn, source.Span{File: id}, "second"))

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, Max: 1}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("count = %d", out.Count)
	}
	d := out.Diagnostics[0]
	if d.Code != "SEM3005" || d.Severity != "ERROR" || d.Location.StartLine != 2 || d.Location.StartCol != 10 {
		t.Fatalf("diagnostic = %+v", d)
	}
	if d.Notes != nil {
		t.Fatalf("notes included without IncludeNotes: %+v", d.Notes)
	}
}

func TestParsePathMode(t *testing.T) {
	for in, want := range map[string]PathMode{"": PathModeAuto, "absolute": PathModeAbsolute, "relative": PathModeRelative, "basename": PathModeBasename} {
		got, ok := ParsePathMode(in)
		if !ok || got != want {
			t.Errorf("ParsePathMode(%q) = %v, %v", in, got, ok)
		}
	}
	if _, ok := ParsePathMode("weird"); ok {
		t.Error("unknown mode accepted")
	}
	if got := formatPath("/a/b/c.sy", PathModeBasename, ""); got != "c.sy" {
		t.Errorf("basename = %s", got)
	}
	if got := formatPath("/a/b/c.sy", PathModeRelative, "/a"); got != "b/c.sy" {
		t.Errorf("relative = %s", got)
	}
}
