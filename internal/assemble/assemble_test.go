package assemble

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrei91ro/lulu-c/internal/colony"
	"github.com/andrei91ro/lulu-c/internal/encode"
	"github.com/andrei91ro/lulu-c/internal/symbols"
	"github.com/andrei91ro/lulu-c/internal/wildcard"
)

func prepare(t *testing.T, c *colony.Colony, robots int) *symbols.Table {
	t.Helper()
	_, err := wildcard.Expand(c, robots)
	require.NoError(t, err)
	table, err := symbols.Canonicalize(c.Alphabet)
	require.NoError(t, err)
	return table
}

func simpleColony() *colony.Colony {
	return &colony.Colony{
		Name:     "demo",
		Alphabet: []string{"a", "b"},
		Capacity: 2,
		Env:      colony.Multiset{"a": 3},
		Agents: []*colony.Agent{
			{
				Name: "first",
				Obj:  colony.Multiset{"e": 2},
				Programs: []colony.Program{
					{
						colony.NewSimpleRule(colony.RuleEvolution, "e", "a"),
						colony.NewSimpleRule(colony.RuleCommunication, "e", "b"),
					},
				},
			},
			{
				Name: "second",
				Obj:  colony.Multiset{"a": 1, "b": 1},
				Programs: []colony.Program{
					{colony.NewSimpleRule(colony.RuleEvolution, "a", "e"), colony.NewSimpleRule(colony.RuleEvolution, "b", "e")},
					{colony.NewSimpleRule(colony.RuleEvolution, "e", "e"), colony.NewSimpleRule(colony.RuleEvolution, "e", "e")},
				},
				InitProgram: 1,
			},
		},
	}
}

func TestAssembleAgentsInInsertionOrder(t *testing.T) {
	c := simpleColony()
	table := prepare(t, c, 1)

	got, err := New(nil).Assemble(c, table)
	require.NoError(t, err)

	require.Len(t, got.Agents, 2)
	assert.Equal(t, 0, got.Agents[0].ID)
	assert.Equal(t, "first", got.Agents[0].Name)
	assert.Equal(t, 1, got.Agents[1].ID)
	assert.Equal(t, "second", got.Agents[1].Name)
	assert.Equal(t, 1, got.Agents[1].InitProgram)
	assert.Len(t, got.Agents[1].Programs, 2)
	assert.Equal(t, []symbols.ID{symbols.EmptyID, symbols.EmptyID}, got.Agents[0].Obj)

	assert.Len(t, got.Env, table.Len())
	assert.Nil(t, got.Swarm)
	assert.Empty(t, got.Features)
	assert.True(t, got.Wildcards.Empty())
}

func TestAssembleSwarmEnvDefaultsToIdleObject(t *testing.T) {
	c := simpleColony()
	swarm := &colony.Swarm{OutEnv: colony.Multiset{"b": 2}}
	require.NoError(t, swarm.AddColony(c))
	table := prepare(t, c, 1)

	got, err := New(nil).Assemble(c, table)
	require.NoError(t, err)
	require.NotNil(t, got.Swarm)

	idle, err := encode.EnvMultiset(colony.Multiset{"e": 1}, table)
	require.NoError(t, err)
	if diff := cmp.Diff(idle, got.Swarm.Global); diff != "" {
		t.Errorf("global env (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(idle, got.Swarm.In); diff != "" {
		t.Errorf("input env (-want +got):\n%s", diff)
	}

	back, err := encode.DecodeEnvMultiset(got.Swarm.Out, table)
	require.NoError(t, err)
	assert.Equal(t, colony.Multiset{"b": 2}, back)
}

func TestAssembleSwarmEnvSkipsForeignObjects(t *testing.T) {
	leader := &colony.Colony{
		Name:     "leader",
		Alphabet: []string{"a"},
		Capacity: 1,
		Agents: []*colony.Agent{{
			Name:     "ag",
			Obj:      colony.Multiset{"e": 1},
			Programs: []colony.Program{{colony.NewSimpleRule(colony.RuleInExteroceptive, "e", "a")}},
		}},
	}
	follower := &colony.Colony{
		Name:     "follower",
		Alphabet: []string{"b"},
		Capacity: 1,
		Agents: []*colony.Agent{{
			Name:     "ag",
			Obj:      colony.Multiset{"e": 1},
			Programs: []colony.Program{{colony.NewSimpleRule(colony.RuleInExteroceptive, "e", "b")}},
		}},
	}
	swarm := &colony.Swarm{
		GlobalEnv: colony.Multiset{"b": 3},
		InEnv:     colony.Multiset{"a": 2, "b": 1},
	}
	require.NoError(t, swarm.AddColony(leader))
	require.NoError(t, swarm.AddColony(follower))

	table := prepare(t, leader, 1)
	got, err := New(nil).Assemble(leader, table)
	require.NoError(t, err)

	in, err := encode.DecodeEnvMultiset(got.Swarm.In, table)
	require.NoError(t, err)
	assert.Equal(t, colony.Multiset{"a": 2}, in)
	assert.Len(t, got.Swarm.Global, table.Len())
	for _, slot := range got.Swarm.Global {
		assert.Equal(t, encode.EnvSlot{ID: symbols.Absent}, slot)
	}

	table = prepare(t, follower, 1)
	got, err = New(nil).Assemble(follower, table)
	require.NoError(t, err)
	in, err = encode.DecodeEnvMultiset(got.Swarm.In, table)
	require.NoError(t, err)
	assert.Equal(t, colony.Multiset{"b": 1}, in)

	swarm.OutEnv = colony.Multiset{"a": 0}
	_, err = New(nil).Assemble(follower, table)
	assert.ErrorIs(t, err, colony.ErrInvalidCount)
}

func TestAssembleDerivesFeatures(t *testing.T) {
	c := &colony.Colony{
		Name:     "robots",
		Alphabet: []string{"d_next", "id_$id", "x"},
		Capacity: 1,
		Agents: []*colony.Agent{
			{
				Name: "timer",
				Obj:  colony.Multiset{"e": 1},
				Programs: []colony.Program{{
					colony.NewSimpleRule(colony.RuleEvolution, "e", "x"),
				}},
			},
			{
				Name: "motion",
				Obj:  colony.Multiset{"e": 1},
				Programs: []colony.Program{{
					colony.NewConditionalRule(
						colony.Branch{Kind: colony.RuleCommunication, LHS: "e", RHS: "x"},
						colony.Branch{Kind: colony.RuleOutExteroceptive, LHS: "e", RHS: "id_%id"},
					),
				}},
			},
		},
	}
	table := prepare(t, c, 2)

	got, err := New(nil).Assemble(c, table)
	require.NoError(t, err)
	assert.Equal(t, []Feature{
		FeatureWildcardExpansion,
		FeatureAgentMotion,
		FeatureAgentTimer,
		FeatureObjectDNext,
		FeatureInOutExteroceptive,
	}, got.Features)
	assert.True(t, got.NeedsWildcardExpansion())
	assert.False(t, got.Has(FeatureAgentLedRGB))

	id, ok := table.ID("id_W_ID")
	require.True(t, ok)
	assert.Equal(t, []symbols.ID{id}, got.Wildcards.Self)
}

func TestWildcardFeatureIsForced(t *testing.T) {
	policy, err := NewPolicy(`
Decl agent_name(Name).
feature("USING_CUSTOM_LOGGER") :- agent_name("logger").
`)
	require.NoError(t, err)

	c := &colony.Colony{
		Name:     "c",
		Alphabet: []string{"m_*"},
		Capacity: 1,
		Agents: []*colony.Agent{{
			Name:     "logger",
			Obj:      colony.Multiset{"e": 1},
			Programs: []colony.Program{{colony.NewSimpleRule(colony.RuleEvolution, "e", "m_*")}},
		}},
	}
	table := prepare(t, c, 2)

	got, err := New(policy).Assemble(c, table)
	require.NoError(t, err)
	assert.Equal(t, []Feature{FeatureWildcardExpansion, "USING_CUSTOM_LOGGER"}, got.Features)
	require.Len(t, got.Wildcards.All, 1)
	assert.False(t, got.Wildcards.All[0].FollowedBySelf)
}

func TestAssembleErrorsCarryLocation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *colony.Colony)
		want    error
		message string
	}{
		{
			name:    "capacity mismatch",
			mutate:  func(c *colony.Colony) { c.Agents[1].Obj = colony.Multiset{"a": 1} },
			want:    colony.ErrCapacityMismatch,
			message: "colony demo, agent second",
		},
		{
			name: "unknown symbol in rule",
			mutate: func(c *colony.Colony) {
				c.Agents[1].Programs[1][1] = colony.NewSimpleRule(colony.RuleEvolution, "e", "zz")
			},
			want:    colony.ErrUnknownSymbol,
			message: "colony demo, agent second, program 1, rule 1",
		},
		{
			name:    "unknown env symbol",
			mutate:  func(c *colony.Colony) { c.Env = colony.Multiset{"zz": 1} },
			want:    colony.ErrUnknownSymbol,
			message: "colony demo: environment",
		},
		{
			name:    "no agents",
			mutate:  func(c *colony.Colony) { c.Agents = nil },
			want:    colony.ErrNoAgents,
			message: "colony demo",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := simpleColony()
			tt.mutate(c)
			table := prepare(t, c, 1)

			_, err := New(nil).Assemble(c, table)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), err.Error())
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestPolicyRejectsInvalidMacro(t *testing.T) {
	policy, err := NewPolicy(`feature("not a macro").`)
	require.NoError(t, err)
	_, err = policy.Derive(Facts{})
	assert.ErrorContains(t, err, "not a valid macro name")
}

func TestNewPolicyRejectsSyntaxErrors(t *testing.T) {
	_, err := NewPolicy(`feature("X") :- `)
	assert.Error(t, err)
}

func TestDefaultPolicyObjectFeatures(t *testing.T) {
	table, err := symbols.Canonicalize([]string{"d_all", "d_next"})
	require.NoError(t, err)
	got, err := DefaultPolicy().Derive(Facts{
		Agents:    []string{"led_rgb", "msg_distance"},
		Symbols:   table.Symbols(),
		RuleKinds: []colony.RuleKind{colony.RuleInExteroceptive},
	})
	require.NoError(t, err)
	assert.Equal(t, []Feature{
		FeatureAgentLedRGB,
		FeatureAgentMsgDistance,
		FeatureObjectDAll,
		FeatureObjectDNext,
		FeatureInOutExteroceptive,
	}, got)
}
