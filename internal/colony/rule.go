package colony

import (
	"fmt"
	"strings"
)

// RuleKind is the type of a rule branch.
type RuleKind int

const (
	RuleUnknown RuleKind = iota
	RuleEvolution
	RuleCommunication
	RuleExteroceptive
	RuleInExteroceptive
	RuleOutExteroceptive
	// RuleConditional only names the two-branch rule form; it is never a branch kind.
	RuleConditional
)

var ruleKindNames = []struct {
	kind  RuleKind
	name  string
	arrow string
}{
	{RuleEvolution, "evolution", "->"},
	{RuleCommunication, "communication", "<->"},
	{RuleExteroceptive, "exteroceptive", "<=>"},
	{RuleInExteroceptive, "in_exteroceptive", "<I=>"},
	{RuleOutExteroceptive, "out_exteroceptive", "<=O>"},
	{RuleConditional, "conditional", "/"},
}

func (k RuleKind) String() string {
	for _, n := range ruleKindNames {
		if n.kind == k {
			return n.name
		}
	}
	return fmt.Sprintf("RuleKind(%d)", int(k))
}

func (k RuleKind) arrow() string {
	for _, n := range ruleKindNames {
		if n.kind == k {
			return n.arrow
		}
	}
	return "?"
}

// IsBranch reports whether the kind may appear as a branch of a rule.
func (k RuleKind) IsBranch() bool {
	return k >= RuleEvolution && k <= RuleOutExteroceptive
}

// ParseRuleKind maps a kind name to its RuleKind.
func ParseRuleKind(name string) (RuleKind, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, n := range ruleKindNames {
		if n.name == key {
			return n.kind, nil
		}
	}
	return RuleUnknown, fmt.Errorf("%w: %q", ErrUnknownRuleKind, name)
}

// Branch is one lhs/rhs rewrite of a given kind.
type Branch struct {
	Kind RuleKind
	LHS  string
	RHS  string
}

func (b Branch) String() string {
	return b.LHS + " " + b.Kind.arrow() + " " + b.RHS
}

// Rule is either simple (Alt == nil) or conditional, in which case Main is tried
// first and Alt is the alternative.
type Rule struct {
	Main Branch
	Alt  *Branch
}

// NewSimpleRule builds a single-branch rule.
func NewSimpleRule(kind RuleKind, lhs, rhs string) Rule {
	return Rule{Main: Branch{Kind: kind, LHS: lhs, RHS: rhs}}
}

// NewConditionalRule builds a two-branch rule.
func NewConditionalRule(main, alt Branch) Rule {
	return Rule{Main: main, Alt: &alt}
}

// IsConditional reports whether the rule has an alternative branch.
func (r Rule) IsConditional() bool { return r.Alt != nil }

// Kinds returns the branch kinds used by the rule.
func (r Rule) Kinds() []RuleKind {
	if r.Alt == nil {
		return []RuleKind{r.Main.Kind}
	}
	return []RuleKind{r.Main.Kind, r.Alt.Kind}
}

// Validate checks branch kinds and operands.
func (r Rule) Validate() error {
	if r.Alt == nil {
		if !r.Main.Kind.IsBranch() {
			return fmt.Errorf("%w: %s", ErrUnknownRuleKind, r.Main.Kind)
		}
		if r.Main.LHS == "" || r.Main.RHS == "" {
			return fmt.Errorf("%w: %s", ErrMissingOperand, r)
		}
		return nil
	}
	for _, b := range []Branch{r.Main, *r.Alt} {
		if !b.Kind.IsBranch() {
			return fmt.Errorf("%w: conditional branch of kind %s", ErrUnknownRuleKind, b.Kind)
		}
		if b.LHS == "" || b.RHS == "" {
			return fmt.Errorf("%w: %s", ErrIncompleteConditional, r)
		}
	}
	return nil
}

func (r Rule) String() string {
	if r.Alt == nil {
		return r.Main.String()
	}
	return r.Main.String() + " / " + r.Alt.String()
}
