// Package model loads P colony and swarm models from YAML documents into the
// in-memory graph of package colony.
//
// A document has exactly one top-level key, either colony or swarm:
//
//	colony:
//	  name: demo
//	  alphabet: [a, b_$]
//	  capacity: 2
//	  env: {a: 1}
//	  agents:
//	    - name: motion
//	      obj: {e: 2}
//	      programs:
//	        - - {kind: evolution, lhs: e, rhs: a}
//	          - kind: conditional
//	            main: {kind: communication, lhs: e, rhs: a}
//	            alt: {kind: in_exteroceptive, lhs: e, rhs: b_$}
//
// Agent and colony lists keep their order, which defines the generated identifiers.
package model

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/andrei91ro/lulu-c/internal/colony"
	"github.com/andrei91ro/lulu-c/internal/logging"
)

// ErrInvalidModel is returned for documents that do not describe exactly one colony or swarm.
var ErrInvalidModel = errors.New("invalid model document")

// Model is a loaded document: either a standalone colony or a swarm.
type Model struct {
	// Name is the base name of the file the model was read from.
	Name   string
	Colony *colony.Colony
	Swarm  *colony.Swarm
}

// IsSwarm reports whether the model is a swarm of colonies.
func (m *Model) IsSwarm() bool { return m.Swarm != nil }

// Colonies returns every colony of the model.
func (m *Model) Colonies() []*colony.Colony {
	if m.Swarm != nil {
		return m.Swarm.Colonies
	}
	return []*colony.Colony{m.Colony}
}

type document struct {
	Colony *colonyDoc `yaml:"colony"`
	Swarm  *swarmDoc  `yaml:"swarm"`
}

type swarmDoc struct {
	GlobalEnv map[string]int `yaml:"global_env"`
	InEnv     map[string]int `yaml:"in_global_env"`
	OutEnv    map[string]int `yaml:"out_global_env"`
	Colonies  []colonyDoc    `yaml:"colonies"`
}

type colonyDoc struct {
	Name     string         `yaml:"name"`
	Alphabet []string       `yaml:"alphabet"`
	Capacity int            `yaml:"capacity"`
	Env      map[string]int `yaml:"env"`
	Agents   []agentDoc     `yaml:"agents"`
}

type agentDoc struct {
	Name        string         `yaml:"name"`
	Obj         map[string]int `yaml:"obj"`
	InitProgram int            `yaml:"init_program"`
	Programs    [][]ruleDoc    `yaml:"programs"`
}

type ruleDoc struct {
	Kind string     `yaml:"kind"`
	LHS  string     `yaml:"lhs"`
	RHS  string     `yaml:"rhs"`
	Main *branchDoc `yaml:"main"`
	Alt  *branchDoc `yaml:"alt"`
}

type branchDoc struct {
	Kind string `yaml:"kind"`
	LHS  string `yaml:"lhs"`
	RHS  string `yaml:"rhs"`
}

// Load reads and converts a model file.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Name = filepath.Base(path)
	return m, nil
}

// Parse converts a YAML model document. Unknown keys are rejected.
func Parse(data []byte) (*Model, error) {
	log := logging.Get(logging.CategoryModel)

	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: document is empty", ErrInvalidModel)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}

	switch {
	case doc.Colony != nil && doc.Swarm != nil:
		return nil, fmt.Errorf("%w: both colony and swarm are defined", ErrInvalidModel)
	case doc.Colony != nil:
		c, err := doc.Colony.build()
		if err != nil {
			return nil, err
		}
		log.Debugf("loaded colony %s with %d agents", c.Name, len(c.Agents))
		return &Model{Colony: c}, nil
	case doc.Swarm != nil:
		s, err := doc.Swarm.build()
		if err != nil {
			return nil, err
		}
		log.Debugf("loaded swarm with colonies %v", s.ColonyNames())
		return &Model{Swarm: s}, nil
	default:
		return nil, fmt.Errorf("%w: neither colony nor swarm is defined", ErrInvalidModel)
	}
}

func (d *swarmDoc) build() (*colony.Swarm, error) {
	if len(d.Colonies) == 0 {
		return nil, fmt.Errorf("%w: swarm has no colonies", ErrInvalidModel)
	}
	s := &colony.Swarm{
		GlobalEnv: multiset(d.GlobalEnv),
		InEnv:     multiset(d.InEnv),
		OutEnv:    multiset(d.OutEnv),
	}
	for i := range d.Colonies {
		c, err := d.Colonies[i].build()
		if err != nil {
			return nil, err
		}
		if err := s.AddColony(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (d *colonyDoc) build() (*colony.Colony, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("%w: colony without a name", ErrInvalidModel)
	}
	c := &colony.Colony{
		Name:     d.Name,
		Alphabet: append([]string(nil), d.Alphabet...),
		Capacity: d.Capacity,
		Env:      multiset(d.Env),
	}
	for _, ad := range d.Agents {
		a, err := ad.build()
		if err != nil {
			return nil, colony.InColony(c.Name, err)
		}
		if err := c.AddAgent(a); err != nil {
			return nil, colony.InColony(c.Name, err)
		}
	}
	return c, nil
}

func (d *agentDoc) build() (*colony.Agent, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("%w: agent without a name", ErrInvalidModel)
	}
	a := &colony.Agent{
		Name:        d.Name,
		Obj:         multiset(d.Obj),
		InitProgram: d.InitProgram,
		Programs:    make([]colony.Program, len(d.Programs)),
	}
	for i, pd := range d.Programs {
		p := make(colony.Program, len(pd))
		for j, rd := range pd {
			r, err := rd.build()
			if err != nil {
				return nil, colony.AtRule(a.Name, i, j, err)
			}
			p[j] = r
		}
		a.Programs[i] = p
	}
	return a, nil
}

func (d *ruleDoc) build() (colony.Rule, error) {
	kind, err := colony.ParseRuleKind(d.Kind)
	if err != nil {
		return colony.Rule{}, err
	}
	if kind != colony.RuleConditional {
		if d.Main != nil || d.Alt != nil {
			return colony.Rule{}, fmt.Errorf("%w: %s rule cannot have main or alt branches", ErrInvalidModel, kind)
		}
		return colony.NewSimpleRule(kind, d.LHS, d.RHS), nil
	}

	if d.LHS != "" || d.RHS != "" {
		return colony.Rule{}, fmt.Errorf("%w: conditional rule operands belong to its branches", ErrInvalidModel)
	}
	if d.Main == nil || d.Alt == nil {
		return colony.Rule{}, fmt.Errorf("%w: needs both main and alt", colony.ErrIncompleteConditional)
	}
	main, err := d.Main.build()
	if err != nil {
		return colony.Rule{}, err
	}
	alt, err := d.Alt.build()
	if err != nil {
		return colony.Rule{}, err
	}
	r := colony.NewConditionalRule(main, alt)
	if err := r.Validate(); err != nil {
		return colony.Rule{}, err
	}
	return r, nil
}

func (d *branchDoc) build() (colony.Branch, error) {
	kind, err := colony.ParseRuleKind(d.Kind)
	if err != nil {
		return colony.Branch{}, err
	}
	if !kind.IsBranch() {
		return colony.Branch{}, fmt.Errorf("%w: %s cannot be a conditional branch", colony.ErrUnknownRuleKind, kind)
	}
	return colony.Branch{Kind: kind, LHS: d.LHS, RHS: d.RHS}, nil
}

// multiset copies a decoded map. Counts are validated with the colony.
func multiset(m map[string]int) colony.Multiset {
	out := make(colony.Multiset, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
