package encode

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrei91ro/lulu-c/internal/colony"
	"github.com/andrei91ro/lulu-c/internal/symbols"
)

func newTable(t *testing.T, alphabet ...string) *symbols.Table {
	t.Helper()
	table, err := symbols.Canonicalize(alphabet)
	require.NoError(t, err)
	return table
}

func id(t *testing.T, table *symbols.Table, name string) symbols.ID {
	t.Helper()
	v, ok := table.ID(name)
	require.True(t, ok, name)
	return v
}

var branchKinds = []colony.RuleKind{
	colony.RuleEvolution,
	colony.RuleCommunication,
	colony.RuleExteroceptive,
	colony.RuleInExteroceptive,
	colony.RuleOutExteroceptive,
}

func TestEveryKindPairHasDistinctType(t *testing.T) {
	seen := map[RuleType]bool{}
	for _, main := range branchKinds {
		typ, err := SimpleType(main)
		require.NoError(t, err)
		assert.False(t, seen[typ], typ.String())
		seen[typ] = true

		for _, alt := range branchKinds {
			typ, err := ConditionalType(main, alt)
			require.NoError(t, err, "%s / %s", main, alt)
			assert.True(t, typ.IsConditional())
			assert.False(t, seen[typ], typ.String())
			seen[typ] = true

			gotMain, gotAlt, err := typ.Kinds()
			require.NoError(t, err)
			assert.Equal(t, main, gotMain)
			assert.Equal(t, alt, gotAlt)
		}
	}
	assert.Len(t, seen, 30)
}

func TestRuleTypeNames(t *testing.T) {
	assert.Equal(t, "RULE_TYPE_EVOLUTION", TypeEvolution.String())
	assert.Equal(t, "RULE_TYPE_CONDITIONAL_COMMUNICATION_IN_EXTEROCEPTIVE", TypeConditionalCommunicationInExteroceptive.String())
	assert.Equal(t, "RuleType(999)", RuleType(999).String())
}

func TestConditionalTypeRejectsConditionalBranch(t *testing.T) {
	_, err := ConditionalType(colony.RuleConditional, colony.RuleEvolution)
	assert.ErrorIs(t, err, colony.ErrUnknownRuleKind)
	_, err = SimpleType(colony.RuleConditional)
	assert.ErrorIs(t, err, colony.ErrUnknownRuleKind)
}

func TestEncodeSimpleRule(t *testing.T) {
	table := newTable(t, "a", "b")
	got, err := EncodeRule(colony.NewSimpleRule(colony.RuleCommunication, "e", "b"), table)
	require.NoError(t, err)
	assert.Equal(t, Rule{
		Type:   TypeCommunication,
		LHS:    symbols.EmptyID,
		RHS:    id(t, table, "b"),
		AltLHS: symbols.Absent,
		AltRHS: symbols.Absent,
	}, got)
}

func TestConditionalRuleRoundTrip(t *testing.T) {
	table := newTable(t, "a", "b", "c")
	for _, main := range branchKinds {
		for _, alt := range branchKinds {
			r := colony.NewConditionalRule(
				colony.Branch{Kind: main, LHS: "a", RHS: "b"},
				colony.Branch{Kind: alt, LHS: "c", RHS: "e"},
			)
			enc, err := EncodeRule(r, table)
			require.NoError(t, err)

			dec, err := DecodeRule(enc, table)
			require.NoError(t, err)
			if diff := cmp.Diff(r, dec); diff != "" {
				t.Fatalf("%s / %s round trip (-want +got):\n%s", main, alt, diff)
			}
		}
	}
}

func TestSimpleRuleRoundTrip(t *testing.T) {
	table := newTable(t, "a")
	r := colony.NewSimpleRule(colony.RuleOutExteroceptive, "a", "f")
	enc, err := EncodeRule(r, table)
	require.NoError(t, err)
	dec, err := DecodeRule(enc, table)
	require.NoError(t, err)
	assert.Equal(t, r, dec)
}

func TestDecodeRuleRejectsStrayAlternative(t *testing.T) {
	table := newTable(t, "a")
	_, err := DecodeRule(Rule{Type: TypeEvolution, LHS: 1, RHS: 1, AltLHS: 3, AltRHS: symbols.Absent}, table)
	assert.Error(t, err)
}

func TestEncodeRuleErrors(t *testing.T) {
	table := newTable(t, "a")
	tests := []struct {
		name string
		rule colony.Rule
		want error
	}{
		{"unknown kind", colony.NewSimpleRule(colony.RuleUnknown, "a", "e"), colony.ErrUnknownRuleKind},
		{"unknown symbol", colony.NewSimpleRule(colony.RuleEvolution, "a", "zz"), colony.ErrUnknownSymbol},
		{"unknown alt symbol", colony.NewConditionalRule(
			colony.Branch{Kind: colony.RuleEvolution, LHS: "a", RHS: "e"},
			colony.Branch{Kind: colony.RuleEvolution, LHS: "zz", RHS: "e"},
		), colony.ErrUnknownSymbol},
		{"incomplete conditional", colony.NewConditionalRule(
			colony.Branch{Kind: colony.RuleEvolution, LHS: "a", RHS: "e"},
			colony.Branch{Kind: colony.RuleEvolution, LHS: "a"},
		), colony.ErrIncompleteConditional},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeRule(tt.rule, table)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEncodeProgramKeepsOrderAndNoOps(t *testing.T) {
	table := newTable(t, "a")
	p := colony.Program{
		colony.NewSimpleRule(colony.RuleEvolution, "e", "e"),
		colony.NewSimpleRule(colony.RuleCommunication, "a", "e"),
		colony.NewSimpleRule(colony.RuleEvolution, "e", "a"),
	}
	enc, err := EncodeProgram(p, table)
	require.NoError(t, err)
	require.Len(t, enc.Rules, 3)
	assert.Equal(t, TypeEvolution, enc.Rules[0].Type)
	assert.Equal(t, symbols.EmptyID, enc.Rules[0].LHS)
	assert.Equal(t, symbols.EmptyID, enc.Rules[0].RHS)
	assert.Equal(t, TypeCommunication, enc.Rules[1].Type)
	assert.Equal(t, "< e -> e, a <-> e, e -> a >", enc.Source)
}

func TestEncodeProgramReportsRuleIndex(t *testing.T) {
	table := newTable(t, "a")
	_, err := EncodeProgram(colony.Program{
		colony.NewSimpleRule(colony.RuleEvolution, "e", "a"),
		colony.NewSimpleRule(colony.RuleEvolution, "e", "missing"),
	}, table)
	require.ErrorIs(t, err, colony.ErrUnknownSymbol)
	assert.Contains(t, err.Error(), "rule 1")

	_, err = EncodeProgram(nil, table)
	assert.ErrorIs(t, err, colony.ErrEmptyProgram)
}

func TestObjMultiset(t *testing.T) {
	table := newTable(t, "a", "b")

	items, err := ObjMultiset(colony.Multiset{"a": 2, "e": 1}, 3, table)
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.ElementsMatch(t, []symbols.ID{id(t, table, "a"), id(t, table, "a"), symbols.EmptyID}, items)

	_, err = ObjMultiset(colony.Multiset{"a": 1, "e": 1}, 3, table)
	assert.ErrorIs(t, err, colony.ErrCapacityMismatch)

	_, err = ObjMultiset(colony.Multiset{"a": 1, "zz": 2}, 3, table)
	assert.ErrorIs(t, err, colony.ErrUnknownSymbol)

	_, err = ObjMultiset(colony.Multiset{"a": 3, "b": 0}, 3, table)
	assert.ErrorIs(t, err, colony.ErrInvalidCount)
}

func TestObjMultisetRoundTrip(t *testing.T) {
	table := newTable(t, "a", "b_0", "b_1", "b_10")
	cases := []colony.Multiset{
		{"e": 4},
		{"a": 1, "e": 3},
		{"b_10": 2, "b_0": 1, "f": 1},
		{"a": 1, "b_0": 1, "b_1": 1, "b_10": 1},
	}
	for _, want := range cases {
		items, err := ObjMultiset(want, 4, table)
		require.NoError(t, err)
		got, err := DecodeObjMultiset(items, table)
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestObjMultisetIsDeterministic(t *testing.T) {
	table := newTable(t, "a", "b", "c")
	m := colony.Multiset{"c": 1, "a": 1, "b": 2}
	first, err := ObjMultiset(m, 4, table)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := ObjMultiset(m, 4, table)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestEnvMultisetIsDense(t *testing.T) {
	table := newTable(t, "a", "b", "c")
	slots, err := EnvMultiset(colony.Multiset{"b": 5}, table)
	require.NoError(t, err)
	require.Len(t, slots, table.Len())

	present := 0
	for i, s := range table.Symbols() {
		if s.Name == "b" {
			assert.Equal(t, EnvSlot{ID: s.ID, Count: 5}, slots[i])
			present++
			continue
		}
		assert.Equal(t, EnvSlot{ID: symbols.Absent, Count: 0}, slots[i], s.Name)
	}
	assert.Equal(t, 1, present)

	empty, err := EnvMultiset(nil, table)
	require.NoError(t, err)
	assert.Len(t, empty, table.Len())

	back, err := DecodeEnvMultiset(slots, table)
	require.NoError(t, err)
	assert.Equal(t, colony.Multiset{"b": 5}, back)
}

func TestEnvMultisetErrors(t *testing.T) {
	table := newTable(t, "a")
	_, err := EnvMultiset(colony.Multiset{"zz": 1}, table)
	assert.ErrorIs(t, err, colony.ErrUnknownSymbol)
	_, err = EnvMultiset(colony.Multiset{"a": -1}, table)
	assert.ErrorIs(t, err, colony.ErrInvalidCount)
}
