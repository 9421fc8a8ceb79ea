// Package wildcard expands per-robot wildcard symbols.
//
// A symbol marked W_ALL stands for "every robot of the swarm", one marked W_ID
// for "the executing robot". Which concrete symbol a robot ends up using is
// decided by the runtime from its identity; at generation time the alphabet
// only needs every concrete variant X_0 .. X_{n-1} to exist so that each gets
// an identifier.
package wildcard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andrei91ro/lulu-c/internal/colony"
	"github.com/andrei91ro/lulu-c/internal/logging"
	"github.com/andrei91ro/lulu-c/internal/symbols"
)

// Result describes what an expansion did.
type Result struct {
	// Alphabet is the expanded alphabet, original entries first.
	Alphabet []string
	// Added lists the concrete variants appended by this expansion.
	Added []string
	// NeedsExpansion is set when any symbol carries a wildcard marker; it gates
	// the runtime identity resolution code.
	NeedsExpansion bool
}

// Variants returns the concrete names X_0 .. X_{robotCount-1} for a wildcard symbol.
func Variants(name string, robotCount int) []string {
	out := make([]string, robotCount)
	for i := range out {
		idx := strconv.Itoa(i)
		r := strings.NewReplacer(colony.MarkerSelf, idx, colony.MarkerAll, idx)
		out[i] = r.Replace(name)
	}
	return out
}

// ExpandAlphabet appends the concrete variants of every wildcard symbol. Variants
// already present are never appended again, so expanding an expanded alphabet
// with the same robot count is a no-op.
func ExpandAlphabet(alphabet []string, robotCount int) (Result, error) {
	if robotCount < 1 {
		return Result{}, fmt.Errorf("robot count must be at least 1, got %d", robotCount)
	}
	log := logging.Get(logging.CategoryExpand)

	present := make(map[string]bool, len(alphabet))
	for _, name := range alphabet {
		present[name] = true
	}

	res := Result{Alphabet: append([]string(nil), alphabet...)}
	for _, name := range alphabet {
		if !colony.KindOf(name).IsWildcard() {
			continue
		}
		res.NeedsExpansion = true

		variants := Variants(name, robotCount)
		if subset(variants, present) {
			continue
		}
		log.Debugf("extending wildcard symbol %s to %d variants", name, robotCount)
		for _, v := range variants {
			if present[v] {
				continue
			}
			present[v] = true
			res.Alphabet = append(res.Alphabet, v)
			res.Added = append(res.Added, v)
		}
	}
	return res, nil
}

func subset(names []string, set map[string]bool) bool {
	for _, n := range names {
		if !set[n] {
			return false
		}
	}
	return true
}

// Expand normalizes raw wildcard markers throughout the colony and expands its
// alphabet in place.
func Expand(c *colony.Colony, robotCount int) (Result, error) {
	c.NormalizeMarkers()
	res, err := ExpandAlphabet(c.Alphabet, robotCount)
	if err != nil {
		return Result{}, err
	}
	c.Alphabet = res.Alphabet
	logging.Get(logging.CategoryExpand).Infof("colony %s: %d symbols after expansion (%d added), wildcard expansion needed: %v",
		c.Name, len(res.Alphabet), len(res.Added), res.NeedsExpansion)
	return res, nil
}

// AllEntry is a wildcard-ALL symbol in the runtime lookup table.
type AllEntry struct {
	ID symbols.ID
	// FollowedBySelf is set when the next symbol in canonical order is a
	// wildcard-SELF symbol, i.e. X_W_ALL immediately followed by X_W_ID.
	FollowedBySelf bool
}

// Tables are the lookup tables the runtime needs to resolve wildcards once it
// knows its own identity.
type Tables struct {
	Self []symbols.ID
	All  []AllEntry
}

// Empty reports whether there is nothing to resolve.
func (t Tables) Empty() bool { return len(t.Self) == 0 && len(t.All) == 0 }

// BuildTables collects the wildcard symbols of a canonical table in canonical order.
func BuildTables(table *symbols.Table) Tables {
	var out Tables
	syms := table.Symbols()
	for i, s := range syms {
		switch s.Kind {
		case colony.KindWildcardSelf:
			out.Self = append(out.Self, s.ID)
		case colony.KindWildcardAll:
			followed := i+1 < len(syms) && syms[i+1].Kind == colony.KindWildcardSelf
			out.All = append(out.All, AllEntry{ID: s.ID, FollowedBySelf: followed})
		}
	}
	return out
}
