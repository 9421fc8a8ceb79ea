// Package emit renders an assembled colony into the two C units consumed by
// the Lulu runtime: a declaration unit (<base>.h) and a definition unit (<base>.c).
package emit

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/andrei91ro/lulu-c/internal/assemble"
	"github.com/andrei91ro/lulu-c/internal/colony"
	"github.com/andrei91ro/lulu-c/internal/encode"
	"github.com/andrei91ro/lulu-c/internal/logging"
	"github.com/andrei91ro/lulu-c/internal/symbols"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("").ParseFS(templateFS, "templates/*.tmpl"))

// ErrInvalidIdentifier is returned when an agent name cannot become a C
// enumerator, or two agents map to the same one.
var ErrInvalidIdentifier = errors.New("agent name is not a valid C identifier")

var agentName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// DefaultHeaderInclude is the runtime header included by the declaration unit.
const DefaultHeaderInclude = "lulu.h"

// Options controls rendering.
type Options struct {
	// BaseName is the artifact file name without directory or extension.
	BaseName string
	// HeaderInclude is the runtime header; empty means DefaultHeaderInclude.
	HeaderInclude string
	// SimNames emits the PCOL_SIM object and agent name tables.
	SimNames bool
	// MinID is the smallest physical robot identity of the swarm.
	MinID int
	// RobotCount is the number of robots in the swarm.
	RobotCount int
	// ModelName is the model file name quoted in the header comment.
	ModelName string
}

// Artifacts are the rendered units.
type Artifacts struct {
	Header []byte
	Source []byte
}

type envView struct {
	Field string
	Slots []string
}

type ruleView struct {
	Type, LHS, RHS, AltLHS, AltRHS string
}

type programView struct {
	Comment string
	Rules   []ruleView
}

type agentView struct {
	Ident       string
	InitProgram int
	Obj         string
	Programs    []programView
}

type wildView struct {
	Self           string
	SelfCount      int
	All            string
	AllCount       int
	FollowedBySelf string
}

type view struct {
	BaseName       string
	ModelName      string
	Guard          string
	HeaderInclude  string
	SimNames       bool
	MinID          int
	RobotCount     int
	Objects        []string
	Features       []assemble.Feature
	NeedsExpansion bool

	ObjectNames string
	AgentNames  string
	NrA         int
	Capacity    int
	Env         []string
	Swarm       []envView
	Agents      []agentView
	Wild        wildView
}

// Render produces both units for an assembled colony. Output is a pure function
// of its inputs.
func Render(c *assemble.Colony, opts Options) (*Artifacts, error) {
	log := logging.Get(logging.CategoryEmit)

	v, err := newView(c, opts)
	if err != nil {
		return nil, err
	}

	var header, source bytes.Buffer
	if err := templates.ExecuteTemplate(&header, "instance.h.tmpl", v); err != nil {
		return nil, fmt.Errorf("render declaration unit: %w", err)
	}
	if err := templates.ExecuteTemplate(&source, "instance.c.tmpl", v); err != nil {
		return nil, fmt.Errorf("render definition unit: %w", err)
	}
	log.Debugf("rendered %s.h (%d bytes) and %s.c (%d bytes)", v.BaseName, header.Len(), v.BaseName, source.Len())
	return &Artifacts{Header: header.Bytes(), Source: source.Bytes()}, nil
}

// ObjectIdent is the C enumerator of a symbol.
func ObjectIdent(name string) string {
	return "OBJECT_ID_" + strings.ToUpper(name)
}

// AgentIdent is the C enumerator of an agent.
func AgentIdent(name string) string {
	return "AGENT_" + strings.ToUpper(name)
}

// IncludeGuard derives the header guard macro from the artifact base name.
func IncludeGuard(base string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(base) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 || (base[0] >= '0' && base[0] <= '9') {
		return "LULU_" + b.String() + "_H"
	}
	return b.String() + "_H"
}

func newView(c *assemble.Colony, opts Options) (*view, error) {
	if opts.BaseName == "" {
		return nil, errors.New("artifact base name is empty")
	}
	include := opts.HeaderInclude
	if include == "" {
		include = DefaultHeaderInclude
	}

	v := &view{
		BaseName:       opts.BaseName,
		ModelName:      opts.ModelName,
		Guard:          IncludeGuard(opts.BaseName),
		HeaderInclude:  include,
		SimNames:       opts.SimNames,
		MinID:          opts.MinID,
		RobotCount:     opts.RobotCount,
		Features:       c.Features,
		NeedsExpansion: c.NeedsWildcardExpansion(),
		NrA:            c.Table.Len(),
		Capacity:       c.Capacity,
	}

	ident := func(id symbols.ID) string {
		if id == symbols.Absent {
			return "NO_OBJECT"
		}
		s, ok := c.Table.Lookup(id)
		if !ok {
			// assembled colonies only hold identifiers from their own table
			panic(fmt.Sprintf("identifier %d is not in the symbol table", id))
		}
		return ObjectIdent(s.Name)
	}

	for _, s := range c.Table.UserSymbols() {
		v.Objects = append(v.Objects, ObjectIdent(s.Name))
	}

	names := []string{`[NO_OBJECT] = "no_object"`}
	for _, s := range c.Table.Symbols() {
		names = append(names, fmt.Sprintf("[%s] = %q", ObjectIdent(s.Name), s.Name))
	}
	v.ObjectNames = strings.Join(names, ", ")

	seen := map[string]string{}
	agentNames := make([]string, 0, len(c.Agents))
	for _, ag := range c.Agents {
		if !agentName.MatchString(ag.Name) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, ag.Name)
		}
		id := AgentIdent(ag.Name)
		if other, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %q and %q both become %s", ErrInvalidIdentifier, other, ag.Name, id)
		}
		seen[id] = ag.Name
		agentNames = append(agentNames, fmt.Sprintf("[%s] = %q", id, ag.Name))

		av := agentView{
			Ident:       id,
			InitProgram: ag.InitProgram,
			Obj:         joinIDs(ag.Obj, ident),
		}
		for _, p := range ag.Programs {
			av.Programs = append(av.Programs, newProgramView(p, ident))
		}
		v.Agents = append(v.Agents, av)
	}
	v.AgentNames = strings.Join(agentNames, ", ")

	v.Env = envLines(c.Env, ident)
	if c.Swarm != nil {
		v.Swarm = []envView{
			{Field: "global_env", Slots: envLines(c.Swarm.Global, ident)},
			{Field: "in_global_env", Slots: envLines(c.Swarm.In, ident)},
			{Field: "out_global_env", Slots: envLines(c.Swarm.Out, ident)},
		}
	}

	v.Wild = newWildView(c, ident)
	return v, nil
}

func newProgramView(p encode.Program, ident func(symbols.ID) string) programView {
	pv := programView{Comment: p.Source}
	for _, r := range p.Rules {
		pv.Rules = append(pv.Rules, ruleView{
			Type:   r.Type.String(),
			LHS:    ident(r.LHS),
			RHS:    ident(r.RHS),
			AltLHS: ident(r.AltLHS),
			AltRHS: ident(r.AltRHS),
		})
	}
	return pv
}

func envLines(slots []encode.EnvSlot, ident func(symbols.ID) string) []string {
	lines := make([]string, len(slots))
	for i, s := range slots {
		lines[i] = fmt.Sprintf("{.id = %s, .nr = %d},", ident(s.ID), s.Count)
	}
	return lines
}

func joinIDs(ids []symbols.ID, ident func(symbols.ID) string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = ident(id)
	}
	return strings.Join(parts, ", ")
}

// newWildView lays out the wildcard lookup tables. C forbids empty array
// initializers, so an empty table holds one placeholder and a size of 0.
func newWildView(c *assemble.Colony, ident func(symbols.ID) string) wildView {
	w := wildView{
		SelfCount: len(c.Wildcards.Self),
		AllCount:  len(c.Wildcards.All),
		Self:      "NO_OBJECT",
		All:       "NO_OBJECT",
	}
	if w.SelfCount > 0 {
		w.Self = joinIDs(c.Wildcards.Self, ident)
	}

	flags := []string{"0"}
	if w.AllCount > 0 {
		all := make([]symbols.ID, len(c.Wildcards.All))
		flags = make([]string, len(c.Wildcards.All))
		for i, e := range c.Wildcards.All {
			all[i] = e.ID
			flags[i] = "0"
			if e.FollowedBySelf {
				flags[i] = "1"
			}
		}
		w.All = joinIDs(all, ident)
	}
	w.FollowedBySelf = strings.Join(flags, ", ")
	return w
}

// Summary is a printable digest of an assembled colony.
type Summary struct {
	Symbols  []SymbolRow
	Agents   []AgentRow
	Features []assemble.Feature
}

// SymbolRow is one alphabet entry of a Summary.
type SymbolRow struct {
	ID    symbols.ID
	Name  string
	Ident string
	Kind  colony.SymbolKind
}

// AgentRow is one agent of a Summary.
type AgentRow struct {
	ID    int
	Name  string
	Ident string
}

// Summarize lists the canonical alphabet, the agents and the features of an
// assembled colony with the identifiers they get in the generated code.
func Summarize(c *assemble.Colony) Summary {
	var s Summary
	for _, sym := range c.Table.Symbols() {
		s.Symbols = append(s.Symbols, SymbolRow{ID: sym.ID, Name: sym.Name, Ident: ObjectIdent(sym.Name), Kind: sym.Kind})
	}
	for _, ag := range c.Agents {
		s.Agents = append(s.Agents, AgentRow{ID: ag.ID, Name: ag.Name, Ident: AgentIdent(ag.Name)})
	}
	s.Features = c.Features
	return s
}
