// Package colony holds the in-memory P colony model that the generator consumes:
// alphabets, multisets, rules, programs, agents, colonies and swarms.
//
// The graph is built once by a model loader, mutated in place while wildcard
// markers are normalized and expanded, and treated as read-only afterwards.
package colony

import (
	"fmt"
	"sort"
	"strings"
)

// Reserved symbol names predefined by the runtime.
const (
	Empty = "e"
	Final = "f"
)

// SymbolKind classifies an alphabet entry.
type SymbolKind int

const (
	KindNormal SymbolKind = iota
	KindAbsent
	KindEmpty
	KindFinal
	KindWildcardAll
	KindWildcardSelf
)

var symbolKindNames = map[SymbolKind]string{
	KindNormal:       "normal",
	KindAbsent:       "absent",
	KindEmpty:        "empty",
	KindFinal:        "final",
	KindWildcardAll:  "wildcard_all",
	KindWildcardSelf: "wildcard_self",
}

func (k SymbolKind) String() string {
	if s, ok := symbolKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("SymbolKind(%d)", int(k))
}

// IsWildcard reports whether the kind is resolved per robot at runtime.
func (k SymbolKind) IsWildcard() bool {
	return k == KindWildcardAll || k == KindWildcardSelf
}

// KindOf classifies a symbol name. Names must already carry canonical markers.
func KindOf(name string) SymbolKind {
	switch {
	case name == Empty:
		return KindEmpty
	case name == Final:
		return KindFinal
	case strings.Contains(name, MarkerAll):
		return KindWildcardAll
	case strings.Contains(name, MarkerSelf):
		return KindWildcardSelf
	default:
		return KindNormal
	}
}

// Multiset maps a symbol name to its multiplicity.
type Multiset map[string]int

// Total returns the sum of all counts.
func (m Multiset) Total() int {
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}

// Names returns the symbols of the multiset in byte order.
func (m Multiset) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate rejects counts below one.
func (m Multiset) Validate() error {
	for _, name := range m.Names() {
		if m[name] < 1 {
			return fmt.Errorf("%w: %s has count %d", ErrInvalidCount, name, m[name])
		}
	}
	return nil
}

// Program is an ordered, non-empty rule sequence.
type Program []Rule

func (p Program) String() string {
	parts := make([]string, len(p))
	for i, r := range p {
		parts[i] = r.String()
	}
	return "< " + strings.Join(parts, ", ") + " >"
}

// Agent is a colony member with a fixed-size object multiset.
type Agent struct {
	Name        string
	Obj         Multiset
	Programs    []Program
	InitProgram int
}

// Validate checks the agent's structure against the colony capacity.
func (a *Agent) Validate(capacity int) error {
	if err := a.Obj.Validate(); err != nil {
		return AtAgent(a.Name, err)
	}
	if total := a.Obj.Total(); total != capacity {
		return AtAgent(a.Name, fmt.Errorf("%w: has %d objects, capacity is %d", ErrCapacityMismatch, total, capacity))
	}
	if len(a.Programs) == 0 {
		return AtAgent(a.Name, fmt.Errorf("%w: agent has no programs", ErrEmptyProgram))
	}
	if a.InitProgram < 0 || a.InitProgram >= len(a.Programs) {
		return AtAgent(a.Name, fmt.Errorf("%w: %d of %d programs", ErrInitProgram, a.InitProgram, len(a.Programs)))
	}
	for i, p := range a.Programs {
		if len(p) == 0 {
			return AtProgram(a.Name, i, ErrEmptyProgram)
		}
		for j, r := range p {
			if err := r.Validate(); err != nil {
				return AtRule(a.Name, i, j, err)
			}
		}
	}
	return nil
}

// Colony is a P colony: an alphabet, a capacity, an environment and agents.
// Agents are kept in insertion order, which defines their identifiers.
type Colony struct {
	Name     string
	Alphabet []string
	Capacity int
	Env      Multiset
	Agents   []*Agent

	// Swarm is the owning swarm, nil for a standalone colony.
	Swarm *Swarm
}

// Agent returns the agent with the given name.
func (c *Colony) Agent(name string) (*Agent, bool) {
	for _, a := range c.Agents {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// AgentNames returns agent names in insertion order.
func (c *Colony) AgentNames() []string {
	names := make([]string, len(c.Agents))
	for i, a := range c.Agents {
		names[i] = a.Name
	}
	return names
}

// AddAgent appends an agent, rejecting duplicate names.
func (c *Colony) AddAgent(a *Agent) error {
	if _, exists := c.Agent(a.Name); exists {
		return fmt.Errorf("%w: agent %s", ErrDuplicateName, a.Name)
	}
	c.Agents = append(c.Agents, a)
	return nil
}

// Validate checks the structural invariants that do not depend on the symbol table.
func (c *Colony) Validate() error {
	if c.Capacity < 1 {
		return InColony(c.Name, fmt.Errorf("%w: capacity %d", ErrCapacityMismatch, c.Capacity))
	}
	if len(c.Agents) == 0 {
		return InColony(c.Name, ErrNoAgents)
	}
	if err := c.Env.Validate(); err != nil {
		return InColony(c.Name, fmt.Errorf("environment: %w", err))
	}
	for _, a := range c.Agents {
		if err := a.Validate(c.Capacity); err != nil {
			return InColony(c.Name, err)
		}
	}
	return nil
}

// Swarm groups colonies that share the global, input and output environments.
type Swarm struct {
	GlobalEnv Multiset
	InEnv     Multiset
	OutEnv    Multiset
	Colonies  []*Colony
}

// Colony returns the member colony with the given name.
func (s *Swarm) Colony(name string) (*Colony, bool) {
	for _, c := range s.Colonies {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// ColonyNames returns member colony names in declaration order.
func (s *Swarm) ColonyNames() []string {
	names := make([]string, len(s.Colonies))
	for i, c := range s.Colonies {
		names[i] = c.Name
	}
	return names
}

// AddColony appends a colony and points its back-reference at the swarm.
func (s *Swarm) AddColony(c *Colony) error {
	if _, exists := s.Colony(c.Name); exists {
		return fmt.Errorf("%w: colony %s", ErrDuplicateName, c.Name)
	}
	c.Swarm = s
	s.Colonies = append(s.Colonies, c)
	return nil
}
