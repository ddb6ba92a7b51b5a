package ast

import (
	"sysyc/internal/source"
)

type StmtKind uint8

const (
	StmtBlock StmtKind = iota
	StmtConstDecl
	StmtReturn
	StmtExpr
	StmtEmpty
)

func (k StmtKind) String() string {
	switch k {
	case StmtBlock:
		return "block"
	case StmtConstDecl:
		return "const"
	case StmtReturn:
		return "return"
	case StmtExpr:
		return "expr"
	case StmtEmpty:
		return "empty"
	}
	return "invalid"
}

type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID
}

type BlockStmt struct {
	Stmts []StmtID
}

// ConstDef is one `IDENT = Exp` entry of a const declaration.
type ConstDef struct {
	Name     source.StringID
	NameSpan source.Span
	Value    ExprID
}

type ConstDeclStmt struct {
	Defs []ConstDef
}

// ReturnStmt carries NoExprID for a bare `return;`.
type ReturnStmt struct {
	Expr ExprID
}

type ExprStmt struct {
	Expr ExprID
}

type Stmts struct {
	Arena   *Arena[Stmt]
	Blocks  *Arena[BlockStmt]
	Consts  *Arena[ConstDeclStmt]
	Returns *Arena[ReturnStmt]
	Exprs   *Arena[ExprStmt]
}

func NewStmts(capHint uint) *Stmts {
	if capHint == 0 {
		capHint = 1 << 6
	}
	return &Stmts{
		Arena:   NewArena[Stmt](capHint),
		Blocks:  NewArena[BlockStmt](capHint),
		Consts:  NewArena[ConstDeclStmt](capHint),
		Returns: NewArena[ReturnStmt](capHint),
		Exprs:   NewArena[ExprStmt](capHint),
	}
}

func (s *Stmts) new(kind StmtKind, span source.Span, payload PayloadID) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

func (s *Stmts) NewBlock(span source.Span, stmts []StmtID) StmtID {
	payload := s.Blocks.Allocate(BlockStmt{Stmts: stmts})
	return s.new(StmtBlock, span, PayloadID(payload))
}

func (s *Stmts) Block(id StmtID) (*BlockStmt, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtBlock {
		return nil, false
	}
	return s.Blocks.Get(uint32(st.Payload)), true
}

func (s *Stmts) NewConstDecl(span source.Span, defs []ConstDef) StmtID {
	payload := s.Consts.Allocate(ConstDeclStmt{Defs: defs})
	return s.new(StmtConstDecl, span, PayloadID(payload))
}

func (s *Stmts) ConstDecl(id StmtID) (*ConstDeclStmt, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtConstDecl {
		return nil, false
	}
	return s.Consts.Get(uint32(st.Payload)), true
}

func (s *Stmts) NewReturn(span source.Span, expr ExprID) StmtID {
	payload := s.Returns.Allocate(ReturnStmt{Expr: expr})
	return s.new(StmtReturn, span, PayloadID(payload))
}

func (s *Stmts) Return(id StmtID) (*ReturnStmt, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtReturn {
		return nil, false
	}
	return s.Returns.Get(uint32(st.Payload)), true
}

func (s *Stmts) NewExpr(span source.Span, expr ExprID) StmtID {
	payload := s.Exprs.Allocate(ExprStmt{Expr: expr})
	return s.new(StmtExpr, span, PayloadID(payload))
}

func (s *Stmts) Expr(id StmtID) (*ExprStmt, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtExpr {
		return nil, false
	}
	return s.Exprs.Get(uint32(st.Payload)), true
}

func (s *Stmts) NewEmpty(span source.Span) StmtID {
	return s.new(StmtEmpty, span, NoPayloadID)
}
