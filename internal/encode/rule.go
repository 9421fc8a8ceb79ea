// Package encode lowers rules, programs and multisets onto the symbol table's
// numeric identifiers, producing the fixed-size slot layouts the runtime reads.
package encode

import (
	"fmt"

	"github.com/andrei91ro/lulu-c/internal/colony"
	"github.com/andrei91ro/lulu-c/internal/symbols"
)

// Rule is a rule in slot form. Simple rules carry symbols.Absent in both
// alternative slots.
type Rule struct {
	Type   RuleType
	LHS    symbols.ID
	RHS    symbols.ID
	AltLHS symbols.ID
	AltRHS symbols.ID
}

// Program is an encoded program. Rules keep the source order; no-op rules are
// not filtered.
type Program struct {
	Source string
	Rules  []Rule
}

// EncodeRule maps a rule onto its runtime type and operand identifiers.
func EncodeRule(r colony.Rule, table *symbols.Table) (Rule, error) {
	if err := r.Validate(); err != nil {
		return Rule{}, err
	}

	var (
		out Rule
		err error
	)
	if r.Alt == nil {
		out.Type, err = SimpleType(r.Main.Kind)
	} else {
		out.Type, err = ConditionalType(r.Main.Kind, r.Alt.Kind)
	}
	if err != nil {
		return Rule{}, err
	}

	if out.LHS, err = table.Resolve(r.Main.LHS); err != nil {
		return Rule{}, err
	}
	if out.RHS, err = table.Resolve(r.Main.RHS); err != nil {
		return Rule{}, err
	}
	if r.Alt == nil {
		out.AltLHS, out.AltRHS = symbols.Absent, symbols.Absent
		return out, nil
	}
	if out.AltLHS, err = table.Resolve(r.Alt.LHS); err != nil {
		return Rule{}, err
	}
	if out.AltRHS, err = table.Resolve(r.Alt.RHS); err != nil {
		return Rule{}, err
	}
	return out, nil
}

// DecodeRule is the inverse of EncodeRule.
func DecodeRule(r Rule, table *symbols.Table) (colony.Rule, error) {
	main, alt, err := r.Type.Kinds()
	if err != nil {
		return colony.Rule{}, err
	}
	name := func(id symbols.ID) (string, error) {
		s, ok := table.Lookup(id)
		if !ok {
			return "", fmt.Errorf("%w: identifier %d", colony.ErrUnknownSymbol, id)
		}
		return s.Name, nil
	}

	var b colony.Branch
	b.Kind = main
	if b.LHS, err = name(r.LHS); err != nil {
		return colony.Rule{}, err
	}
	if b.RHS, err = name(r.RHS); err != nil {
		return colony.Rule{}, err
	}
	if alt == colony.RuleUnknown {
		if r.AltLHS != symbols.Absent || r.AltRHS != symbols.Absent {
			return colony.Rule{}, fmt.Errorf("simple rule %s carries alternative operands", r.Type)
		}
		return colony.Rule{Main: b}, nil
	}

	a := colony.Branch{Kind: alt}
	if a.LHS, err = name(r.AltLHS); err != nil {
		return colony.Rule{}, err
	}
	if a.RHS, err = name(r.AltRHS); err != nil {
		return colony.Rule{}, err
	}
	return colony.NewConditionalRule(b, a), nil
}

// EncodeProgram encodes every rule of a program in order. Errors carry the
// zero-based index of the offending rule.
func EncodeProgram(p colony.Program, table *symbols.Table) (Program, error) {
	if len(p) == 0 {
		return Program{}, colony.ErrEmptyProgram
	}
	out := Program{Source: p.String(), Rules: make([]Rule, len(p))}
	for i, r := range p {
		enc, err := EncodeRule(r, table)
		if err != nil {
			return Program{}, colony.AtRule("", -1, i, err)
		}
		out.Rules[i] = enc
	}
	return out, nil
}
