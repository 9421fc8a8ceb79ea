package colony

import (
	"errors"
	"fmt"
	"strings"
)

// Model-consistency errors. Every one of them aborts generation.
var (
	// ErrCapacityMismatch is returned when an agent carries more or fewer objects than the colony capacity.
	ErrCapacityMismatch = errors.New("object multiset size does not match colony capacity")

	// ErrInvalidCount is returned for multiset entries with a count below one.
	ErrInvalidCount = errors.New("multiset count must be at least 1")

	// ErrUnknownRuleKind is returned for rule kinds outside the supported set.
	ErrUnknownRuleKind = errors.New("unknown rule kind")

	// ErrIncompleteConditional is returned when a conditional rule lacks a branch or a branch operand.
	ErrIncompleteConditional = errors.New("conditional rule is missing a branch")

	// ErrUnsupportedCombination is returned when a conditional pairs kinds with no runtime rule type.
	ErrUnsupportedCombination = errors.New("unsupported conditional rule combination")

	// ErrMissingOperand is returned when a simple rule has an empty left or right hand side.
	ErrMissingOperand = errors.New("rule operand is missing")

	// ErrDuplicateSymbol is returned when two alphabet entries share a name or a generated identifier.
	ErrDuplicateSymbol = errors.New("duplicate alphabet symbol")

	// ErrInvalidSymbolName is returned for names that cannot become runtime identifiers.
	ErrInvalidSymbolName = errors.New("invalid symbol name")

	// ErrUnknownSymbol is returned when a multiset or rule references a symbol outside the alphabet.
	ErrUnknownSymbol = errors.New("symbol is not part of the alphabet")

	// ErrAlphabetOverflow is returned when the alphabet needs identifiers wider than the runtime supports.
	ErrAlphabetOverflow = errors.New("alphabet exceeds the runtime symbol identifier range")

	// ErrEmptyProgram is returned for programs without rules.
	ErrEmptyProgram = errors.New("program has no rules")

	// ErrInitProgram is returned when the initial program index does not name a program.
	ErrInitProgram = errors.New("initial program index out of range")

	// ErrNoAgents is returned for colonies without agents.
	ErrNoAgents = errors.New("colony has no agents")

	// ErrDuplicateName is returned when two agents or two colonies share a name.
	ErrDuplicateName = errors.New("duplicate name")
)

// LocationError attaches the position of the offending construct to a model error.
// Program and Rule are zero-based; -1 means "not applicable".
type LocationError struct {
	Colony  string
	Agent   string
	Program int
	Rule    int
	Err     error
}

func (e *LocationError) Error() string {
	var parts []string
	if e.Colony != "" {
		parts = append(parts, "colony "+e.Colony)
	}
	if e.Agent != "" {
		parts = append(parts, "agent "+e.Agent)
	}
	if e.Program >= 0 {
		parts = append(parts, fmt.Sprintf("program %d", e.Program))
	}
	if e.Rule >= 0 {
		parts = append(parts, fmt.Sprintf("rule %d", e.Rule))
	}
	if len(parts) == 0 {
		return e.Err.Error()
	}
	return strings.Join(parts, ", ") + ": " + e.Err.Error()
}

func (e *LocationError) Unwrap() error { return e.Err }

// AtAgent wraps err with the agent it was found in.
func AtAgent(agent string, err error) error {
	return at(agent, -1, -1, err)
}

// AtProgram wraps err with the agent and program it was found in.
func AtProgram(agent string, program int, err error) error {
	return at(agent, program, -1, err)
}

// AtRule wraps err with the agent, program and rule it was found in.
func AtRule(agent string, program, rule int, err error) error {
	return at(agent, program, rule, err)
}

// InColony records the colony name on a location error, or wraps a bare error.
func InColony(name string, err error) error {
	if err == nil {
		return nil
	}
	var le *LocationError
	if errors.As(err, &le) && le.Colony == "" {
		le.Colony = name
		return err
	}
	return &LocationError{Colony: name, Program: -1, Rule: -1, Err: err}
}

func at(agent string, program, rule int, err error) error {
	if err == nil {
		return nil
	}
	var le *LocationError
	if errors.As(err, &le) {
		// keep the innermost position, fill in what it lacks
		if le.Agent == "" {
			le.Agent = agent
		}
		if le.Program < 0 {
			le.Program = program
		}
		if le.Rule < 0 {
			le.Rule = rule
		}
		return err
	}
	return &LocationError{Agent: agent, Program: program, Rule: rule, Err: err}
}
