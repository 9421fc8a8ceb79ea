package encode

import (
	"fmt"

	"github.com/andrei91ro/lulu-c/internal/colony"
	"github.com/andrei91ro/lulu-c/internal/symbols"
)

// EnvSlot is one position of an environment multiset.
type EnvSlot struct {
	ID    symbols.ID
	Count int
}

// ObjMultiset flattens an agent multiset into exactly capacity identifiers,
// each symbol repeated by its count, symbols in canonical order.
func ObjMultiset(m colony.Multiset, capacity int, table *symbols.Table) ([]symbols.ID, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if total := m.Total(); total != capacity {
		return nil, fmt.Errorf("%w: has %d objects, capacity is %d", colony.ErrCapacityMismatch, total, capacity)
	}
	for _, name := range m.Names() {
		if !table.Has(name) {
			return nil, fmt.Errorf("%w: %s", colony.ErrUnknownSymbol, name)
		}
	}

	items := make([]symbols.ID, 0, capacity)
	for _, s := range table.Symbols() {
		for i := 0; i < m[s.Name]; i++ {
			items = append(items, s.ID)
		}
	}
	return items, nil
}

// DecodeObjMultiset counts the identifiers of a flattened agent multiset.
func DecodeObjMultiset(items []symbols.ID, table *symbols.Table) (colony.Multiset, error) {
	out := make(colony.Multiset)
	for i, id := range items {
		s, ok := table.Lookup(id)
		if !ok {
			return nil, fmt.Errorf("%w: slot %d holds identifier %d", colony.ErrUnknownSymbol, i, id)
		}
		out[s.Name]++
	}
	return out, nil
}

// EnvMultiset lays out an environment multiset densely: one slot per alphabet
// symbol in canonical order. Absent symbols occupy a slot holding the absent
// sentinel with count 0, so the result always has table.Len() slots.
func EnvMultiset(m colony.Multiset, table *symbols.Table) ([]EnvSlot, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	for _, name := range m.Names() {
		if !table.Has(name) {
			return nil, fmt.Errorf("%w: %s", colony.ErrUnknownSymbol, name)
		}
	}

	slots := make([]EnvSlot, table.Len())
	for i, s := range table.Symbols() {
		if n := m[s.Name]; n > 0 {
			slots[i] = EnvSlot{ID: s.ID, Count: n}
		} else {
			slots[i] = EnvSlot{ID: symbols.Absent, Count: 0}
		}
	}
	return slots, nil
}

// DecodeEnvMultiset collects the occupied slots of an environment layout.
func DecodeEnvMultiset(slots []EnvSlot, table *symbols.Table) (colony.Multiset, error) {
	out := make(colony.Multiset)
	for i, slot := range slots {
		if slot.ID == symbols.Absent {
			continue
		}
		s, ok := table.Lookup(slot.ID)
		if !ok {
			return nil, fmt.Errorf("%w: slot %d holds identifier %d", colony.ErrUnknownSymbol, i, slot.ID)
		}
		out[s.Name] += slot.Count
	}
	return out, nil
}
