package symbols

import (
	"sysyc/internal/source"
)

// Table is the scope stack of one function. It is discarded once the
// function has been emitted.
type Table struct {
	Scopes  *Scopes
	Strings *source.Interner
	current ScopeID
}

// NewTable creates a table whose root is a function scope.
// If strings is nil, a fresh interner is allocated.
func NewTable(strings *source.Interner) *Table {
	if strings == nil {
		strings = source.NewInterner()
	}
	t := &Table{
		Scopes:  &Scopes{},
		Strings: strings,
	}
	t.current = t.Scopes.New(ScopeFunction, NoScopeID)
	return t
}

// Current returns the innermost open scope.
func (t *Table) Current() ScopeID {
	return t.current
}

// Push opens a nested block scope.
func (t *Table) Push() ScopeID {
	t.current = t.Scopes.New(ScopeBlock, t.current)
	return t.current
}

// Pop closes the innermost block scope. The function scope is never popped.
func (t *Table) Pop() {
	sc := t.Scopes.Get(t.current)
	if sc == nil || !sc.Parent.IsValid() {
		return
	}
	t.current = sc.Parent
}

// Declare binds name in the innermost scope. Shadowing an outer binding
// is allowed; a second binding in the same scope is a *DuplicateError.
func (t *Table) Declare(name source.StringID, b Binding) error {
	sc := t.Scopes.Get(t.current)
	if prev, ok := sc.Names[name]; ok {
		return &DuplicateError{Name: t.Strings.MustLookup(name), Prev: prev}
	}
	sc.Names[name] = b
	return nil
}

// Lookup walks from the innermost scope outward.
func (t *Table) Lookup(name source.StringID) (Binding, bool) {
	for id := t.current; id.IsValid(); {
		sc := t.Scopes.Get(id)
		if b, ok := sc.Names[name]; ok {
			return b, true
		}
		id = sc.Parent
	}
	return Binding{}, false
}

// Depth is the number of open scopes, the function scope included.
func (t *Table) Depth() int {
	depth := 0
	for id := t.current; id.IsValid(); id = t.Scopes.Get(id).Parent {
		depth++
	}
	return depth
}
