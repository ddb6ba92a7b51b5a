package driver

import (
	"context"
	"fmt"
	"os"

	"fortio.org/safecast"

	"sysyc/internal/ast"
	"sysyc/internal/diag"
	"sysyc/internal/irgen"
	"sysyc/internal/koopa"
	"sysyc/internal/lexer"
	"sysyc/internal/observ"
	"sysyc/internal/parser"
	"sysyc/internal/riscv"
	"sysyc/internal/session"
	"sysyc/internal/source"
	"sysyc/internal/trace"
)

// Mode selects the final artifact.
type Mode uint8

const (
	ModeKoopa Mode = iota + 1
	ModeRiscv
)

func (m Mode) String() string {
	switch m {
	case ModeKoopa:
		return "koopa"
	case ModeRiscv:
		return "riscv"
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// Ext is the conventional output extension for m.
func (m Mode) Ext() string {
	if m == ModeRiscv {
		return ".S"
	}
	return ".koopa"
}

// ParseMode accepts the names printed by String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "koopa":
		return ModeKoopa, nil
	case "riscv":
		return ModeRiscv, nil
	}
	return 0, fmt.Errorf("unknown mode %q (want koopa or riscv)", s)
}

type Options struct {
	Mode           Mode
	MaxDiagnostics int
	EnableTimings  bool
	// Session overrides the per-compilation context; nil means a fresh one.
	Session *session.Context
	// PhaseObserver, if set, sees every pipeline phase begin and end.
	PhaseObserver PhaseObserver
}

// Result holds the artifacts of one compilation. IR and Asm are empty when
// an error is returned.
type Result struct {
	Name    string
	FileSet *source.FileSet
	FileID  source.FileID
	Bag     *diag.Bag
	IR      string
	Asm     string
	Timings observ.Report
}

// Output returns the artifact for mode.
func (r *Result) Output(mode Mode) string {
	if mode == ModeRiscv {
		return r.Asm
	}
	return r.IR
}

// CompileFile reads path and compiles it.
func CompileFile(ctx context.Context, path string, opts Options) (*Result, error) {
	// #nosec G304 -- path is provided by the caller
	src, err := os.ReadFile(path)
	if err != nil {
		res := &Result{Name: path, FileSet: source.NewFileSet(), Bag: diag.NewBag(maxDiagnostics(opts))}
		cerr := classify(StageLoad, 0, err)
		res.Bag.Add(cerr.Diagnostic())
		return res, cerr
	}
	return CompileSource(ctx, path, src, opts)
}

// CompileSource runs the pipeline on src. Front-end problems produce
// ErrDiagnostics; core failures produce *Error. Either way the diagnostic
// bag describes what went wrong.
func CompileSource(ctx context.Context, name string, src []byte, opts Options) (*Result, error) {
	if opts.Mode == 0 {
		opts.Mode = ModeRiscv
	}
	sess := opts.Session
	if sess == nil {
		sess = session.FromContext(ctx)
	}
	span := trace.Begin(sess.Tracer, trace.ScopeDriver, "compile "+name, sess.Span)
	sess.Span = span.ID()

	res := &Result{
		Name:    name,
		FileSet: source.NewFileSet(),
		Bag:     diag.NewBag(maxDiagnostics(opts)),
	}
	c := &compilation{sess: sess, res: res, observer: opts.PhaseObserver}

	ir, asm, err := c.run(ctx, src, opts)
	if opts.EnableTimings {
		res.Timings = sess.Timer.Report()
		appendTimingDiagnostic(res.Bag, timingPayload{Kind: "compile", Path: name, TotalMS: res.Timings.TotalMS, Phases: res.Timings.Phases})
	}
	if err != nil {
		span.End("error")
		return res, err
	}
	res.IR, res.Asm = ir, asm
	span.End(opts.Mode.String())
	return res, nil
}

type compilation struct {
	sess     *session.Context
	res      *Result
	observer PhaseObserver
}

func (c *compilation) phase(name string) func(note string) {
	c.observer.notify(PhaseEvent{Name: name, Status: PhaseStart})
	end := c.sess.Pass(name)
	return func(note string) {
		end(note)
		c.observer.notify(PhaseEvent{Name: name, Status: PhaseEnd})
	}
}

func (c *compilation) fail(stage Stage, err error) error {
	cerr := classify(stage, c.res.FileID, err)
	c.res.Bag.Add(cerr.Diagnostic())
	return cerr
}

func (c *compilation) run(ctx context.Context, src []byte, opts Options) (ir, asm string, err error) {
	c.res.FileID = c.res.FileSet.AddBytes(c.res.Name, src)
	file := c.res.FileSet.Get(c.res.FileID)

	end := c.phase("parse")
	builder, fileID, err := parseFile(file, c.res.Bag)
	if err != nil {
		end("error")
		return "", "", err
	}
	if c.res.Bag.HasErrors() {
		end("errors")
		return "", "", ErrDiagnostics
	}
	end("")
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	end = c.phase("irgen")
	ir, err = irgen.Emit(c.sess, builder, fileID, irgen.Options{Reporter: diag.BagReporter{Bag: c.res.Bag}})
	if err != nil {
		end("error")
		return "", "", c.fail(StageIRGen, err)
	}
	end(fmt.Sprintf("%d values", c.sess.ValuesIssued()))
	if opts.Mode == ModeKoopa {
		return ir, "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	end = c.phase("koopa")
	prog, err := koopa.Parse(ir)
	if err != nil {
		end("error")
		return "", "", c.fail(StageKoopa, err)
	}
	end(fmt.Sprintf("%d functions", len(prog.Funcs())))

	end = c.phase("riscv")
	asm, err = riscv.Generate(c.sess, prog)
	if err != nil {
		end("error")
		return "", "", c.fail(StageCodegen, err)
	}
	end(fmt.Sprintf("%d registers", c.sess.RegistersIssued()))
	return ir, asm, nil
}

// parseFile lexes and parses file, reporting into bag.
func parseFile(file *source.File, bag *diag.Bag) (*ast.Builder, ast.FileID, error) {
	maxErrors, err := safecast.Conv[uint](bag.Cap())
	if err != nil {
		return nil, ast.NoFileID, err
	}
	reporter := diag.BagReporter{Bag: bag}
	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	builder := ast.NewBuilder(ast.Hints{})
	result := parser.ParseFile(lx, builder, parser.Options{
		Reporter:  reporter,
		MaxErrors: maxErrors,
	})
	return builder, result.File, nil
}

func maxDiagnostics(opts Options) int {
	if opts.MaxDiagnostics > 0 {
		return opts.MaxDiagnostics
	}
	return 100
}
