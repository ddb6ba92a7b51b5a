package irgen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"sysyc/internal/ast"
	"sysyc/internal/consteval"
	"sysyc/internal/diag"
	"sysyc/internal/session"
	"sysyc/internal/source"
	"sysyc/internal/symbols"
	"sysyc/internal/trace"
)

type Options struct {
	// Reporter receives warnings; may be nil.
	Reporter diag.Reporter
}

// Emit lowers every function of file. It returns no text on error.
func Emit(ctx *session.Context, b *ast.Builder, file ast.FileID, opts Options) (string, error) {
	f := b.Files.Get(file)
	if f == nil {
		return "", fmt.Errorf("irgen: unknown file %d", file)
	}

	var out strings.Builder
	seen := make(map[source.StringID]source.Span, len(f.Items))
	for i, itemID := range f.Items {
		fn, ok := b.Items.Func(itemID)
		if !ok {
			continue
		}
		if prev, dup := seen[fn.Name]; dup {
			return "", &Error{
				Code: diag.SemaDuplicateFunc,
				Span: fn.NameSpan,
				Err:  fmt.Errorf("%w: %s (first defined at offset %d)", ErrDuplicateFunc, b.StringsInterner.MustLookup(fn.Name), prev.Start),
			}
		}
		seen[fn.Name] = fn.NameSpan

		if i > 0 {
			out.WriteString("\n")
		}
		em := &emitter{
			ctx:   ctx,
			b:     b,
			fn:    fn,
			table: symbols.NewTable(b.StringsInterner),
			opts:  opts,
		}
		if err := em.emitFunc(&out); err != nil {
			return "", err
		}
	}
	return out.String(), nil
}

// emitter lowers one function. Its symbol table dies with it.
type emitter struct {
	ctx   *session.Context
	b     *ast.Builder
	fn    *ast.FuncDef
	table *symbols.Table
	opts  Options

	lines      []string
	terminated bool
	warnedDead bool
}

func (e *emitter) emitFunc(out *strings.Builder) error {
	name := e.b.StringsInterner.MustLookup(e.fn.Name)
	span := trace.Begin(e.ctx.Tracer, trace.ScopeFunc, "irgen:@"+name, e.ctx.Span)

	block, ok := e.b.Stmts.Block(e.fn.Body)
	if !ok {
		span.End("no body")
		return fmt.Errorf("irgen: function %s has no body", name)
	}
	for _, stmt := range block.Stmts {
		if err := e.emitStmt(stmt); err != nil {
			span.End("error")
			return err
		}
	}
	if !e.terminated {
		if e.fn.RetType == ast.RetInt {
			e.warn(diag.SemaMissingReturn, e.b.Stmts.Get(e.fn.Body).Span,
				fmt.Sprintf("function %s does not return a value; returning 0", name))
			e.inst("ret 0")
		} else {
			e.inst("ret")
		}
	}

	if e.fn.RetType == ast.RetVoid {
		fmt.Fprintf(out, "fun @%s() {\n", name)
	} else {
		fmt.Fprintf(out, "fun @%s(): i32 {\n", name)
	}
	out.WriteString("%entry:\n")
	for _, line := range e.lines {
		out.WriteString(line)
		out.WriteString("\n")
	}
	out.WriteString("}\n")

	span.WithExtra("insts", strconv.Itoa(len(e.lines))).End("")
	return nil
}

func (e *emitter) emitStmt(id ast.StmtID) error {
	stmt := e.b.Stmts.Get(id)
	if e.terminated {
		if !e.warnedDead && stmt.Kind != ast.StmtEmpty {
			e.warnedDead = true
			e.warn(diag.SemaUnreachableCode, stmt.Span, "code after return is never executed")
		}
		return nil
	}

	switch stmt.Kind {
	case ast.StmtEmpty:
		return nil

	case ast.StmtBlock:
		block, _ := e.b.Stmts.Block(id)
		e.table.Push()
		defer e.table.Pop()
		for _, inner := range block.Stmts {
			if err := e.emitStmt(inner); err != nil {
				return err
			}
		}
		return nil

	case ast.StmtConstDecl:
		decl, _ := e.b.Stmts.ConstDecl(id)
		for _, def := range decl.Defs {
			v, err := consteval.Evaluate(e.b.Exprs, e.table, def.Value)
			if err != nil {
				return wrapEvalError(err, e.b.Exprs.Get(def.Value).Span)
			}
			if err := e.table.Declare(def.Name, symbols.ConstInt(v, def.NameSpan)); err != nil {
				return &Error{Code: diag.SemaDuplicateSymbol, Span: def.NameSpan, Err: err}
			}
		}
		return nil

	case ast.StmtExpr:
		es, _ := e.b.Stmts.Expr(id)
		_, err := e.emitExpr(es.Expr)
		return err

	case ast.StmtReturn:
		ret, _ := e.b.Stmts.Return(id)
		return e.emitReturn(stmt.Span, ret)
	}
	return fmt.Errorf("irgen: unexpected statement kind %v", stmt.Kind)
}

func (e *emitter) emitReturn(sp source.Span, ret *ast.ReturnStmt) error {
	hasValue := ret.Expr.IsValid()
	if hasValue != (e.fn.RetType == ast.RetInt) {
		msg := "void function returns a value"
		if !hasValue {
			msg = "non-void function must return a value"
		}
		return &Error{Code: diag.SemaReturnMismatch, Span: sp, Err: fmt.Errorf("%w: %s", ErrReturnMismatch, msg)}
	}
	if !hasValue {
		e.inst("ret")
	} else {
		v, err := e.emitExpr(ret.Expr)
		if err != nil {
			return err
		}
		e.inst("ret " + v)
	}
	e.terminated = true
	return nil
}

func (e *emitter) inst(line string) {
	e.lines = append(e.lines, "  "+line)
}

func (e *emitter) warn(code diag.Code, sp source.Span, msg string) {
	if e.opts.Reporter == nil {
		return
	}
	diag.ReportWarning(e.opts.Reporter, code, sp, msg).Emit()
}

// wrapEvalError attaches a diagnostic code to consteval failures.
func wrapEvalError(err error, sp source.Span) error {
	var undef *consteval.UndefinedSymbolError
	if errors.As(err, &undef) {
		return &Error{Code: diag.SemaUndefinedSymbol, Span: undef.Span, Err: err}
	}
	var fault *consteval.FaultError
	if errors.As(err, &fault) {
		return &Error{Code: diag.SemaArithmeticFault, Span: fault.Span, Err: err}
	}
	var notConst *consteval.NotConstantError
	if errors.As(err, &notConst) {
		return &Error{Code: diag.SemaUndefinedSymbol, Span: notConst.Span, Err: err}
	}
	return &Error{Code: diag.UnknownCode, Span: sp, Err: err}
}
