package source

import (
	"golang.org/x/text/unicode/norm"
)

type StringID uint32

const NoStringID StringID = 0

// Interner deduplicates identifier text. Strings are NFC-normalised first so
// that visually identical identifiers share an ID.
type Interner struct {
	byID  []string // byID[0] = "" for NoStringID
	index map[string]StringID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": NoStringID},
	}
}

// Intern inserts s and returns its ID. Existing strings keep their ID.
func (i *Interner) Intern(s string) StringID {
	if !norm.NFC.IsNormalString(s) {
		s = norm.NFC.String(s)
	}
	if id, ok := i.index[s]; ok {
		return id
	}

	// own copy so the interner does not pin the source buffer
	cpy := string([]byte(s))
	id := StringID(len(i.byID))
	i.byID = append(i.byID, cpy)
	i.index[cpy] = id
	return id
}

// Lookup returns the string behind id.
func (i *Interner) Lookup(id StringID) (string, bool) {
	if int(id) >= len(i.byID) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup is Lookup that panics on an unknown ID.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic("invalid string ID")
	}
	return s
}

// Len counts interned strings including the NoStringID slot.
func (i *Interner) Len() int {
	return len(i.byID)
}
