// Package symbols canonicalizes a colony alphabet and assigns the dense numeric
// identifiers used by the runtime.
//
// Identifier layout:
//
//	0      absent sentinel (NO_OBJECT)
//	1      reserved "e"
//	2      reserved "f"
//	3..N   every other symbol, in natural order
//
// The runtime predefines the first three, so only identifiers from 3 upwards are
// enumerated in generated code.
package symbols

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/maruel/natural"

	"github.com/andrei91ro/lulu-c/internal/colony"
	"github.com/andrei91ro/lulu-c/internal/logging"
)

// ID is a runtime symbol identifier.
type ID int

const (
	Absent      ID = 0
	EmptyID     ID = 1
	FinalID     ID = 2
	FirstUserID ID = 3

	// MaxID is the largest identifier the runtime can store (uint8_t).
	MaxID ID = 255
)

// Symbol is an alphabet entry with its assigned identifier.
type Symbol struct {
	Name string
	ID   ID
	Kind colony.SymbolKind
}

var validName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Table is a canonical, identifier-assigned alphabet.
type Table struct {
	symbols []Symbol
	byName  map[string]int
	byID    map[ID]int
}

// Canonicalize validates the alphabet, adds the reserved symbols when missing,
// sorts it naturally and assigns identifiers. The input slice is not modified.
func Canonicalize(alphabet []string) (*Table, error) {
	log := logging.Get(logging.CategorySymbols)

	names := make([]string, 0, len(alphabet)+2)
	seen := make(map[string]bool, len(alphabet)+2)
	idents := make(map[string]string, len(alphabet)+2)
	for _, name := range alphabet {
		if colony.HasRawMarker(name) {
			return nil, fmt.Errorf("%w: %q has an un-normalized wildcard marker", colony.ErrInvalidSymbolName, name)
		}
		if !validName.MatchString(name) {
			return nil, fmt.Errorf("%w: %q", colony.ErrInvalidSymbolName, name)
		}
		if !colony.WellPlacedMarker(name) {
			return nil, fmt.Errorf("%w: %q must end with a single _%s or _%s marker",
				colony.ErrInvalidSymbolName, name, colony.MarkerAll, colony.MarkerSelf)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %s", colony.ErrDuplicateSymbol, name)
		}
		ident := strings.ToUpper(name)
		if other, clash := idents[ident]; clash {
			return nil, fmt.Errorf("%w: %s and %s both map to identifier %s", colony.ErrDuplicateSymbol, other, name, ident)
		}
		seen[name] = true
		idents[ident] = name
		names = append(names, name)
	}
	for _, reserved := range []string{colony.Empty, colony.Final} {
		if !seen[reserved] {
			if other, clash := idents[strings.ToUpper(reserved)]; clash {
				return nil, fmt.Errorf("%w: %s clashes with reserved %s", colony.ErrDuplicateSymbol, other, reserved)
			}
			log.Debugf("adding reserved symbol %s", reserved)
			names = append(names, reserved)
		}
	}

	if highest := FinalID + ID(len(names)-2); highest > MaxID {
		return nil, fmt.Errorf("%w: %d symbols need identifiers up to %d, limit is %d",
			colony.ErrAlphabetOverflow, len(names), highest, MaxID)
	}

	Sort(names)

	t := &Table{
		symbols: make([]Symbol, len(names)),
		byName:  make(map[string]int, len(names)),
		byID:    make(map[ID]int, len(names)),
	}
	next := FirstUserID
	for i, name := range names {
		kind := colony.KindOf(name)
		var id ID
		switch kind {
		case colony.KindEmpty:
			id = EmptyID
		case colony.KindFinal:
			id = FinalID
		default:
			id = next
			next++
		}
		t.symbols[i] = Symbol{Name: name, ID: id, Kind: kind}
		t.byName[name] = i
		t.byID[id] = i
	}
	log.Debugf("canonical alphabet has %d symbols", len(t.symbols))
	return t, nil
}

// Len returns the alphabet cardinality, reserved symbols included.
func (t *Table) Len() int { return len(t.symbols) }

// Symbols returns the alphabet in canonical order, reserved symbols included.
func (t *Table) Symbols() []Symbol {
	out := make([]Symbol, len(t.symbols))
	copy(out, t.symbols)
	return out
}

// UserSymbols returns the symbols that generated code must enumerate, which is
// every symbol except the reserved ones, in identifier order.
func (t *Table) UserSymbols() []Symbol {
	out := make([]Symbol, 0, len(t.symbols))
	for _, s := range t.symbols {
		if s.ID >= FirstUserID {
			out = append(out, s)
		}
	}
	return out
}

// Names returns the symbol names in canonical order.
func (t *Table) Names() []string {
	out := make([]string, len(t.symbols))
	for i, s := range t.symbols {
		out[i] = s.Name
	}
	return out
}

// ID returns the identifier of a symbol name.
func (t *Table) ID(name string) (ID, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Absent, false
	}
	return t.symbols[i].ID, true
}

// Resolve is ID with an error for unknown names.
func (t *Table) Resolve(name string) (ID, error) {
	id, ok := t.ID(name)
	if !ok {
		return Absent, fmt.Errorf("%w: %s", colony.ErrUnknownSymbol, name)
	}
	return id, nil
}

// Lookup returns the symbol with the given identifier.
func (t *Table) Lookup(id ID) (Symbol, bool) {
	i, ok := t.byID[id]
	if !ok {
		return Symbol{}, false
	}
	return t.symbols[i], true
}

// Has reports whether the alphabet contains name.
func (t *Table) Has(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// HasWildcards reports whether any symbol is resolved per robot.
func (t *Table) HasWildcards() bool {
	for _, s := range t.symbols {
		if s.Kind.IsWildcard() {
			return true
		}
	}
	return false
}

var sortKey = strings.NewReplacer("_"+colony.MarkerSelf, "/", "_"+colony.MarkerAll, ".")

// Less is the canonical ordering: natural (numeric-aware) comparison of the
// names with wildcard markers mapped to punctuation, so that X_W_ALL sorts
// right before X_W_ID, which sorts before X_0, X_1, ..., X_10. Names with equal
// keys fall back to byte order.
func Less(a, b string) bool {
	ka, kb := sortKey.Replace(a), sortKey.Replace(b)
	switch {
	case natural.Less(ka, kb):
		return true
	case natural.Less(kb, ka):
		return false
	}
	return a < b
}

// Sort orders names canonically in place.
func Sort(names []string) {
	sort.SliceStable(names, func(i, j int) bool { return Less(names[i], names[j]) })
}
