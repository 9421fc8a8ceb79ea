package assemble

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	"github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"

	"github.com/andrei91ro/lulu-c/internal/colony"
	"github.com/andrei91ro/lulu-c/internal/symbols"
)

// Feature is a compile-time switch of the runtime, emitted as a macro.
type Feature string

const (
	FeatureWildcardExpansion  Feature = "NEEDING_WILDCARD_EXPANSION"
	FeatureAgentMotion        Feature = "USING_AGENT_MOTION"
	FeatureAgentLedRGB        Feature = "USING_AGENT_LED_RGB"
	FeatureAgentMsgDistance   Feature = "USING_AGENT_MSG_DISTANCE"
	FeatureAgentTimer         Feature = "USING_AGENT_TIMER"
	FeatureObjectDAll         Feature = "USING_OBJECT_D_ALL"
	FeatureObjectDNext        Feature = "USING_OBJECT_D_NEXT"
	FeatureInOutExteroceptive Feature = "USING_IN_OUT_EXTEROCEPTIVE_RULES"
)

// featureOrder is the emission order of the features the runtime knows about.
// Features derived by a custom policy follow in byte order.
var featureOrder = []Feature{
	FeatureWildcardExpansion,
	FeatureAgentMotion,
	FeatureAgentLedRGB,
	FeatureAgentMsgDistance,
	FeatureAgentTimer,
	FeatureObjectDAll,
	FeatureObjectDNext,
	FeatureInOutExteroceptive,
}

var macroName = regexp.MustCompile(`^[A-Z_][A-Z0-9_]*$`)

//go:embed features.gl
var defaultPolicySource string

var featurePredicate = ast.PredicateSym{Symbol: "feature", Arity: 1}

// Policy derives features from facts about a colony using a Mangle program.
type Policy struct {
	programInfo *analysis.ProgramInfo
}

// NewPolicy parses and analyzes a Mangle feature policy.
func NewPolicy(source string) (*Policy, error) {
	unit, err := parse.Unit(strings.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("parse feature policy: %w", err)
	}
	programInfo, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return nil, fmt.Errorf("analyze feature policy: %w", err)
	}
	return &Policy{programInfo: programInfo}, nil
}

// LoadPolicy reads a feature policy from a file.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feature policy: %w", err)
	}
	return NewPolicy(string(data))
}

// DefaultPolicy returns the built-in feature policy.
func DefaultPolicy() *Policy {
	p, err := NewPolicy(defaultPolicySource)
	if err != nil {
		panic(fmt.Sprintf("built-in feature policy is invalid: %v", err))
	}
	return p
}

// Facts is what the policy gets to see of a colony.
type Facts struct {
	Agents    []string
	Symbols   []symbols.Symbol
	RuleKinds []colony.RuleKind
}

// Derive evaluates the policy over the facts and returns the derived features
// in emission order.
func (p *Policy) Derive(facts Facts) ([]Feature, error) {
	store := factstore.NewSimpleInMemoryStore()
	for _, name := range facts.Agents {
		store.Add(ast.NewAtom("agent_name", ast.String(name)))
	}
	for _, s := range facts.Symbols {
		store.Add(ast.NewAtom("alphabet_symbol", ast.String(s.Name), ast.String(s.Kind.String())))
	}
	for _, k := range facts.RuleKinds {
		store.Add(ast.NewAtom("rule_kind", ast.String(k.String())))
	}

	if _, err := engine.EvalProgramWithStats(p.programInfo, store); err != nil {
		return nil, fmt.Errorf("evaluate feature policy: %w", err)
	}

	derived := map[Feature]bool{}
	err := store.GetFacts(ast.NewQuery(featurePredicate), func(atom ast.Atom) error {
		c, ok := atom.Args[0].(ast.Constant)
		if !ok {
			return fmt.Errorf("feature fact %v has a non-constant argument", atom)
		}
		name := c.Symbol
		if c.Type == ast.NameType {
			name = strings.ToUpper(strings.TrimPrefix(name, "/"))
		}
		if !macroName.MatchString(name) {
			return fmt.Errorf("feature %q is not a valid macro name", name)
		}
		derived[Feature(name)] = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orderFeatures(derived), nil
}

func orderFeatures(set map[Feature]bool) []Feature {
	out := make([]Feature, 0, len(set))
	known := make(map[Feature]bool, len(featureOrder))
	for _, f := range featureOrder {
		known[f] = true
		if set[f] {
			out = append(out, f)
		}
	}
	var extra []Feature
	for f := range set {
		if !known[f] {
			extra = append(extra, f)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}
