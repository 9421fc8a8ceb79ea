package encode

import (
	"fmt"

	"github.com/andrei91ro/lulu-c/internal/colony"
)

// RuleType is the runtime rule type: one per simple kind and one per
// (main, alternative) pair of a conditional rule.
type RuleType int

const (
	TypeNone RuleType = iota
	TypeEvolution
	TypeCommunication
	TypeExteroceptive
	TypeInExteroceptive
	TypeOutExteroceptive

	TypeConditionalEvolutionEvolution
	TypeConditionalEvolutionCommunication
	TypeConditionalEvolutionExteroceptive
	TypeConditionalEvolutionInExteroceptive
	TypeConditionalEvolutionOutExteroceptive

	TypeConditionalCommunicationEvolution
	TypeConditionalCommunicationCommunication
	TypeConditionalCommunicationExteroceptive
	TypeConditionalCommunicationInExteroceptive
	TypeConditionalCommunicationOutExteroceptive

	TypeConditionalExteroceptiveEvolution
	TypeConditionalExteroceptiveCommunication
	TypeConditionalExteroceptiveExteroceptive
	TypeConditionalExteroceptiveInExteroceptive
	TypeConditionalExteroceptiveOutExteroceptive

	TypeConditionalInExteroceptiveEvolution
	TypeConditionalInExteroceptiveCommunication
	TypeConditionalInExteroceptiveExteroceptive
	TypeConditionalInExteroceptiveInExteroceptive
	TypeConditionalInExteroceptiveOutExteroceptive

	TypeConditionalOutExteroceptiveEvolution
	TypeConditionalOutExteroceptiveCommunication
	TypeConditionalOutExteroceptiveExteroceptive
	TypeConditionalOutExteroceptiveInExteroceptive
	TypeConditionalOutExteroceptiveOutExteroceptive
)

type ruleTypeEntry struct {
	typ  RuleType
	main colony.RuleKind
	alt  colony.RuleKind // RuleUnknown for simple rules
	name string
}

const (
	evo = colony.RuleEvolution
	com = colony.RuleCommunication
	ext = colony.RuleExteroceptive
	in  = colony.RuleInExteroceptive
	out = colony.RuleOutExteroceptive
)

// ruleTypes lists every rule type the runtime knows. Pairs missing here are
// rejected when a conditional rule is encoded.
var ruleTypes = []ruleTypeEntry{
	{TypeEvolution, evo, colony.RuleUnknown, "RULE_TYPE_EVOLUTION"},
	{TypeCommunication, com, colony.RuleUnknown, "RULE_TYPE_COMMUNICATION"},
	{TypeExteroceptive, ext, colony.RuleUnknown, "RULE_TYPE_EXTEROCEPTIVE"},
	{TypeInExteroceptive, in, colony.RuleUnknown, "RULE_TYPE_IN_EXTEROCEPTIVE"},
	{TypeOutExteroceptive, out, colony.RuleUnknown, "RULE_TYPE_OUT_EXTEROCEPTIVE"},

	{TypeConditionalEvolutionEvolution, evo, evo, "RULE_TYPE_CONDITIONAL_EVOLUTION_EVOLUTION"},
	{TypeConditionalEvolutionCommunication, evo, com, "RULE_TYPE_CONDITIONAL_EVOLUTION_COMMUNICATION"},
	{TypeConditionalEvolutionExteroceptive, evo, ext, "RULE_TYPE_CONDITIONAL_EVOLUTION_EXTEROCEPTIVE"},
	{TypeConditionalEvolutionInExteroceptive, evo, in, "RULE_TYPE_CONDITIONAL_EVOLUTION_IN_EXTEROCEPTIVE"},
	{TypeConditionalEvolutionOutExteroceptive, evo, out, "RULE_TYPE_CONDITIONAL_EVOLUTION_OUT_EXTEROCEPTIVE"},

	{TypeConditionalCommunicationEvolution, com, evo, "RULE_TYPE_CONDITIONAL_COMMUNICATION_EVOLUTION"},
	{TypeConditionalCommunicationCommunication, com, com, "RULE_TYPE_CONDITIONAL_COMMUNICATION_COMMUNICATION"},
	{TypeConditionalCommunicationExteroceptive, com, ext, "RULE_TYPE_CONDITIONAL_COMMUNICATION_EXTEROCEPTIVE"},
	{TypeConditionalCommunicationInExteroceptive, com, in, "RULE_TYPE_CONDITIONAL_COMMUNICATION_IN_EXTEROCEPTIVE"},
	{TypeConditionalCommunicationOutExteroceptive, com, out, "RULE_TYPE_CONDITIONAL_COMMUNICATION_OUT_EXTEROCEPTIVE"},

	{TypeConditionalExteroceptiveEvolution, ext, evo, "RULE_TYPE_CONDITIONAL_EXTEROCEPTIVE_EVOLUTION"},
	{TypeConditionalExteroceptiveCommunication, ext, com, "RULE_TYPE_CONDITIONAL_EXTEROCEPTIVE_COMMUNICATION"},
	{TypeConditionalExteroceptiveExteroceptive, ext, ext, "RULE_TYPE_CONDITIONAL_EXTEROCEPTIVE_EXTEROCEPTIVE"},
	{TypeConditionalExteroceptiveInExteroceptive, ext, in, "RULE_TYPE_CONDITIONAL_EXTEROCEPTIVE_IN_EXTEROCEPTIVE"},
	{TypeConditionalExteroceptiveOutExteroceptive, ext, out, "RULE_TYPE_CONDITIONAL_EXTEROCEPTIVE_OUT_EXTEROCEPTIVE"},

	{TypeConditionalInExteroceptiveEvolution, in, evo, "RULE_TYPE_CONDITIONAL_IN_EXTEROCEPTIVE_EVOLUTION"},
	{TypeConditionalInExteroceptiveCommunication, in, com, "RULE_TYPE_CONDITIONAL_IN_EXTEROCEPTIVE_COMMUNICATION"},
	{TypeConditionalInExteroceptiveExteroceptive, in, ext, "RULE_TYPE_CONDITIONAL_IN_EXTEROCEPTIVE_EXTEROCEPTIVE"},
	{TypeConditionalInExteroceptiveInExteroceptive, in, in, "RULE_TYPE_CONDITIONAL_IN_EXTEROCEPTIVE_IN_EXTEROCEPTIVE"},
	{TypeConditionalInExteroceptiveOutExteroceptive, in, out, "RULE_TYPE_CONDITIONAL_IN_EXTEROCEPTIVE_OUT_EXTEROCEPTIVE"},

	{TypeConditionalOutExteroceptiveEvolution, out, evo, "RULE_TYPE_CONDITIONAL_OUT_EXTEROCEPTIVE_EVOLUTION"},
	{TypeConditionalOutExteroceptiveCommunication, out, com, "RULE_TYPE_CONDITIONAL_OUT_EXTEROCEPTIVE_COMMUNICATION"},
	{TypeConditionalOutExteroceptiveExteroceptive, out, ext, "RULE_TYPE_CONDITIONAL_OUT_EXTEROCEPTIVE_EXTEROCEPTIVE"},
	{TypeConditionalOutExteroceptiveInExteroceptive, out, in, "RULE_TYPE_CONDITIONAL_OUT_EXTEROCEPTIVE_IN_EXTEROCEPTIVE"},
	{TypeConditionalOutExteroceptiveOutExteroceptive, out, out, "RULE_TYPE_CONDITIONAL_OUT_EXTEROCEPTIVE_OUT_EXTEROCEPTIVE"},
}

type kindPair struct{ main, alt colony.RuleKind }

var (
	typeByPair = make(map[kindPair]RuleType, len(ruleTypes))
	typeInfo   = make(map[RuleType]ruleTypeEntry, len(ruleTypes))
)

func init() {
	for _, e := range ruleTypes {
		typeByPair[kindPair{e.main, e.alt}] = e.typ
		typeInfo[e.typ] = e
	}
}

func (t RuleType) String() string {
	if e, ok := typeInfo[t]; ok {
		return e.name
	}
	return fmt.Sprintf("RuleType(%d)", int(t))
}

// IsConditional reports whether the type encodes a two-branch rule.
func (t RuleType) IsConditional() bool {
	e, ok := typeInfo[t]
	return ok && e.alt != colony.RuleUnknown
}

// Kinds returns the main and alternative kinds encoded by the type. alt is
// RuleUnknown for simple types.
func (t RuleType) Kinds() (main, alt colony.RuleKind, err error) {
	e, ok := typeInfo[t]
	if !ok {
		return colony.RuleUnknown, colony.RuleUnknown, fmt.Errorf("%w: %s", colony.ErrUnknownRuleKind, t)
	}
	return e.main, e.alt, nil
}

// SimpleType returns the rule type of a simple rule kind.
func SimpleType(kind colony.RuleKind) (RuleType, error) {
	if !kind.IsBranch() {
		return TypeNone, fmt.Errorf("%w: %s", colony.ErrUnknownRuleKind, kind)
	}
	return typeByPair[kindPair{kind, colony.RuleUnknown}], nil
}

// ConditionalType returns the rule type combining a main and an alternative kind.
func ConditionalType(main, alt colony.RuleKind) (RuleType, error) {
	if !main.IsBranch() || !alt.IsBranch() {
		return TypeNone, fmt.Errorf("%w: conditional %s / %s", colony.ErrUnknownRuleKind, main, alt)
	}
	t, ok := typeByPair[kindPair{main, alt}]
	if !ok {
		return TypeNone, fmt.Errorf("%w: %s / %s", colony.ErrUnsupportedCombination, main, alt)
	}
	return t, nil
}
