package symbols

import (
	"sysyc/internal/source"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid  ScopeKind = iota
	ScopeFunction           // function body
	ScopeBlock              // nested { ... }
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	default:
		return "invalid"
	}
}

// Scope is one frame of the scope stack; frames link to their parent.
type Scope struct {
	Kind   ScopeKind
	Parent ScopeID
	Names  map[source.StringID]Binding
}

type Scopes struct {
	data []Scope
}

func (s *Scopes) New(kind ScopeKind, parent ScopeID) ScopeID {
	s.data = append(s.data, Scope{
		Kind:   kind,
		Parent: parent,
		Names:  make(map[source.StringID]Binding),
	})
	return ScopeID(len(s.data))
}

func (s *Scopes) Get(id ScopeID) *Scope {
	if !id.IsValid() || int(id) > len(s.data) {
		return nil
	}
	return &s.data[id-1]
}

func (s *Scopes) Len() int {
	return len(s.data)
}
