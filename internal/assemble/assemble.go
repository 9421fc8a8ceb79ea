// Package assemble composes an expanded colony and its canonical symbol table
// into the fully resolved structure handed to the emitter.
package assemble

import (
	"fmt"
	"strings"

	"github.com/andrei91ro/lulu-c/internal/colony"
	"github.com/andrei91ro/lulu-c/internal/encode"
	"github.com/andrei91ro/lulu-c/internal/logging"
	"github.com/andrei91ro/lulu-c/internal/symbols"
	"github.com/andrei91ro/lulu-c/internal/wildcard"
)

// Agent is an agent with its identifier and encoded contents.
type Agent struct {
	// ID is the zero-based position of the agent in its colony.
	ID          int
	Name        string
	Obj         []symbols.ID
	InitProgram int
	Programs    []encode.Program
}

// SwarmEnv holds the swarm-wide environments, each laid out densely against
// the colony's symbol table.
type SwarmEnv struct {
	Global []encode.EnvSlot
	In     []encode.EnvSlot
	Out    []encode.EnvSlot
}

// Colony is the emittable form of a colony. Nothing in it is mutated after
// Assemble returns.
type Colony struct {
	Name     string
	Table    *symbols.Table
	Capacity int
	Env      []encode.EnvSlot
	// Swarm is nil for a colony outside a swarm.
	Swarm     *SwarmEnv
	Agents    []Agent
	Features  []Feature
	Wildcards wildcard.Tables
}

// Has reports whether a feature was derived for the colony.
func (c *Colony) Has(f Feature) bool {
	return containsFeature(c.Features, f)
}

// NeedsWildcardExpansion reports whether the runtime identity resolution code is required.
func (c *Colony) NeedsWildcardExpansion() bool {
	return c.Has(FeatureWildcardExpansion)
}

// Assembler turns colonies into their emittable form.
type Assembler struct {
	policy *Policy
}

// New creates an assembler deriving features with the given policy, or with
// the built-in policy when nil.
func New(policy *Policy) *Assembler {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Assembler{policy: policy}
}

// Assemble resolves every agent, program and multiset of an expanded colony
// against its canonical table and derives the colony features.
func (a *Assembler) Assemble(c *colony.Colony, table *symbols.Table) (*Colony, error) {
	log := logging.Get(logging.CategoryAssemble)

	if err := c.Validate(); err != nil {
		return nil, err
	}

	out := &Colony{
		Name:      c.Name,
		Table:     table,
		Capacity:  c.Capacity,
		Wildcards: wildcard.BuildTables(table),
	}

	env, err := encode.EnvMultiset(c.Env, table)
	if err != nil {
		return nil, colony.InColony(c.Name, fmt.Errorf("environment: %w", err))
	}
	out.Env = env

	if c.Swarm != nil {
		swarm, err := assembleSwarm(c.Swarm, table)
		if err != nil {
			return nil, colony.InColony(c.Name, err)
		}
		out.Swarm = swarm
	}

	kinds := map[colony.RuleKind]bool{}
	out.Agents = make([]Agent, len(c.Agents))
	for i, ag := range c.Agents {
		enc, err := assembleAgent(i, ag, c.Capacity, table)
		if err != nil {
			return nil, colony.InColony(c.Name, err)
		}
		out.Agents[i] = enc
		for _, p := range ag.Programs {
			for _, r := range p {
				for _, k := range r.Kinds() {
					kinds[k] = true
				}
			}
		}
	}

	facts := Facts{Agents: c.AgentNames(), Symbols: table.Symbols()}
	for _, k := range []colony.RuleKind{
		colony.RuleEvolution,
		colony.RuleCommunication,
		colony.RuleExteroceptive,
		colony.RuleInExteroceptive,
		colony.RuleOutExteroceptive,
	} {
		if kinds[k] {
			facts.RuleKinds = append(facts.RuleKinds, k)
		}
	}
	features, err := a.policy.Derive(facts)
	if err != nil {
		return nil, colony.InColony(c.Name, err)
	}
	if table.HasWildcards() && !containsFeature(features, FeatureWildcardExpansion) {
		// the identity resolution code is required whatever the policy says
		set := map[Feature]bool{FeatureWildcardExpansion: true}
		for _, f := range features {
			set[f] = true
		}
		features = orderFeatures(set)
	}
	out.Features = features

	log.Infof("colony %s assembled: %d symbols, %d agents, features %v", c.Name, table.Len(), len(out.Agents), features)
	return out, nil
}

func assembleAgent(id int, ag *colony.Agent, capacity int, table *symbols.Table) (Agent, error) {
	obj, err := encode.ObjMultiset(ag.Obj, capacity, table)
	if err != nil {
		return Agent{}, colony.AtAgent(ag.Name, err)
	}
	out := Agent{
		ID:          id,
		Name:        ag.Name,
		Obj:         obj,
		InitProgram: ag.InitProgram,
		Programs:    make([]encode.Program, len(ag.Programs)),
	}
	for i, p := range ag.Programs {
		enc, err := encode.EncodeProgram(p, table)
		if err != nil {
			return Agent{}, colony.AtProgram(ag.Name, i, err)
		}
		out.Programs[i] = enc
	}
	logging.Get(logging.CategoryEncode).Debugf("agent %s (%d): %d programs", ag.Name, id, len(out.Programs))
	return out, nil
}

func assembleSwarm(s *colony.Swarm, table *symbols.Table) (*SwarmEnv, error) {
	var (
		out SwarmEnv
		err error
	)
	if out.Global, err = swarmEnv(s.GlobalEnv, table); err != nil {
		return nil, fmt.Errorf("swarm global environment: %w", err)
	}
	if out.In, err = swarmEnv(s.InEnv, table); err != nil {
		return nil, fmt.Errorf("swarm input environment: %w", err)
	}
	if out.Out, err = swarmEnv(s.OutEnv, table); err != nil {
		return nil, fmt.Errorf("swarm output environment: %w", err)
	}
	return &out, nil
}

// swarmEnv encodes a swarm environment. An undefined environment holds a
// single e object so the runtime never sees an empty swarm multiset.
// Swarm environments are shared by colonies with different alphabets, so
// objects this colony does not know are left out of its layout.
func swarmEnv(m colony.Multiset, table *symbols.Table) ([]encode.EnvSlot, error) {
	if len(m) == 0 {
		m = colony.Multiset{colony.Empty: 1}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	known := make(colony.Multiset, len(m))
	var dropped []string
	for _, name := range m.Names() {
		if table.Has(name) {
			known[name] = m[name]
		} else {
			dropped = append(dropped, name)
		}
	}
	if len(dropped) > 0 {
		logging.Get(logging.CategoryAssemble).Debugf("skipping swarm objects outside the colony alphabet: %s",
			strings.Join(dropped, ", "))
	}
	return encode.EnvMultiset(known, table)
}

func containsFeature(features []Feature, f Feature) bool {
	for _, x := range features {
		if x == f {
			return true
		}
	}
	return false
}
