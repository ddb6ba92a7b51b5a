// Package testkit holds checks shared by parser tests and fuzz harnesses.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"sysyc/internal/ast"
	"sysyc/internal/source"
)

// CheckSpanInvariants verifies the spans of a parsed file:
//  1. the file span is non-empty and within the file content
//  2. every node span lies inside the span of its parent
//  3. every span points at the parsed file
func CheckSpanInvariants(b *ast.Builder, fileID ast.FileID, sf *source.File) error {
	if b == nil || sf == nil {
		return fmt.Errorf("nil builder or file")
	}
	f := b.Files.Get(fileID)
	if f == nil {
		return fmt.Errorf("file node not found")
	}
	if f.Span.End <= f.Span.Start {
		return fmt.Errorf("file span is empty: %v", f.Span)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if f.Span.End > lenContent {
		return fmt.Errorf("file span end beyond content: %d > %d", f.Span.End, lenContent)
	}

	c := spanChecker{b: b, file: sf.ID}
	if err := c.within("file", f.Span, f.Span); err != nil {
		return err
	}
	for _, itemID := range f.Items {
		item := b.Items.Get(itemID)
		if err := c.within("item", item.Span, f.Span); err != nil {
			return err
		}
		fn, ok := b.Items.Func(itemID)
		if !ok {
			continue
		}
		if err := c.within("function name", fn.NameSpan, item.Span); err != nil {
			return err
		}
		if err := c.stmt(fn.Body, item.Span); err != nil {
			return err
		}
	}
	return nil
}

type spanChecker struct {
	b    *ast.Builder
	file source.FileID
}

func (c spanChecker) within(what string, sp, parent source.Span) error {
	if sp.File != c.file {
		return fmt.Errorf("%s span %v points to file %d, want %d", what, sp, sp.File, c.file)
	}
	if sp.Start > sp.End {
		return fmt.Errorf("%s span %v is inverted", what, sp)
	}
	if sp.Start < parent.Start || sp.End > parent.End {
		return fmt.Errorf("%s span %v escapes parent %v", what, sp, parent)
	}
	return nil
}

func (c spanChecker) stmt(id ast.StmtID, parent source.Span) error {
	if !id.IsValid() {
		return nil
	}
	st := c.b.Stmts.Get(id)
	if err := c.within("statement "+st.Kind.String(), st.Span, parent); err != nil {
		return err
	}
	switch st.Kind {
	case ast.StmtBlock:
		block, _ := c.b.Stmts.Block(id)
		for _, child := range block.Stmts {
			if err := c.stmt(child, st.Span); err != nil {
				return err
			}
		}
	case ast.StmtConstDecl:
		decl, _ := c.b.Stmts.ConstDecl(id)
		for _, def := range decl.Defs {
			if err := c.within("constant name", def.NameSpan, st.Span); err != nil {
				return err
			}
			if err := c.expr(def.Value, st.Span); err != nil {
				return err
			}
		}
	case ast.StmtReturn:
		ret, _ := c.b.Stmts.Return(id)
		return c.expr(ret.Expr, st.Span)
	case ast.StmtExpr:
		es, _ := c.b.Stmts.Expr(id)
		return c.expr(es.Expr, st.Span)
	}
	return nil
}

func (c spanChecker) expr(id ast.ExprID, parent source.Span) error {
	if !id.IsValid() {
		return nil
	}
	e := c.b.Exprs.Get(id)
	if err := c.within("expression", e.Span, parent); err != nil {
		return err
	}
	switch e.Kind {
	case ast.ExprBinary:
		bin, _ := c.b.Exprs.Binary(id)
		if err := c.expr(bin.Left, e.Span); err != nil {
			return err
		}
		return c.expr(bin.Right, e.Span)
	case ast.ExprUnary:
		un, _ := c.b.Exprs.Unary(id)
		return c.expr(un.Operand, e.Span)
	case ast.ExprGroup:
		g, _ := c.b.Exprs.Group(id)
		return c.expr(g.Inner, e.Span)
	}
	return nil
}
