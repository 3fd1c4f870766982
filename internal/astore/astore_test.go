package astore_test

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cc99/cc99/internal/astore"
	"github.com/cc99/cc99/internal/tstore"
)

func TestAppendAndRoundTripEachPayloadKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.bin")
	s, err := astore.Init(path)
	require.NoError(t, err)
	defer s.Close()

	want := astore.Node{
		Kind:  astore.KindBinaryOp,
		Flags: astore.FlagParsed,
		Binary: astore.BinaryPayload{
			Left: 1, Right: 2, Operator: tstore.PLUS,
		},
	}
	bin, err := s.Append(want)
	require.NoError(t, err)
	got := s.Get(bin)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round-tripped node differs (-want +got):\n%s", diff)
	}

	lit, err := s.Append(astore.Node{
		Kind: astore.KindIntLiteral,
		Binary: astore.BinaryPayload{
			Value: astore.Value{Tag: astore.ValueLong, LongValue: -42},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(-42), s.Get(lit).Binary.Value.Long())

	flt, err := s.Append(astore.Node{
		Kind: astore.KindFloatLiteral,
		Binary: astore.BinaryPayload{
			Value: astore.Value{Tag: astore.ValueFloat, FloatBits: math.Float64bits(3.5)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3.5, math.Float64frombits(s.Get(flt).Binary.Value.FloatBits))

	un, err := s.Append(astore.Node{
		Kind:  astore.KindUnaryOp,
		Unary: astore.UnaryPayload{Operand: bin, OperatorKind: tstore.MINUS},
	})
	require.NoError(t, err)
	assert.Equal(t, bin, s.Get(un).Unary.Operand)

	cond, err := s.Append(astore.Node{
		Kind:        astore.KindIfStmt,
		Conditional: astore.ConditionalPayload{Condition: bin, Then: un, Else: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, un, s.Get(cond).Conditional.Then)

	forNode, err := s.Append(astore.Node{
		Kind:     astore.KindForStmt,
		Children: astore.ChildrenPayload{Child1: 1, Child2: 2, Child3: 3, Child4: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(4), s.Get(forNode).Children.Child4)

	comp, err := s.Append(astore.Node{
		Kind:     astore.KindCompoundStmt,
		Compound: astore.CompoundPayload{Declarations: 1, Statements: 2, ScopeDepth: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(3), s.Get(comp).Compound.ScopeDepth)

	call, err := s.Append(astore.Node{
		Kind: astore.KindCall,
		Call: astore.CallPayload{Function: 1, Arguments: 2, ArgCount: 3, ReturnType: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(3), s.Get(call).Call.ArgCount)

	decl, err := s.Append(astore.Node{
		Kind: astore.KindVarDecl,
		Decl: astore.DeclPayload{SymbolIdx: 1, TypeIdx: 2, Initializer: 3, StorageClass: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(3), s.Get(decl).Decl.Initializer)
}

func TestUpdateBackpatchesInPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.bin")
	s, err := astore.Init(path)
	require.NoError(t, err)
	defer s.Close()

	idx, err := s.Append(astore.Node{Kind: astore.KindGotoStmt})
	require.NoError(t, err)
	require.NoError(t, s.Update(idx, astore.Node{Kind: astore.KindGotoStmt, Next: 99}))
	assert.Equal(t, uint32(99), s.Get(idx).Next)
}

func TestGetOutOfRangeIsZeroNode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.bin")
	s, err := astore.Init(path)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, astore.KindInvalid, s.Get(777).Kind)
}

func TestNextChainsStatementsWithoutPayloadOverload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.bin")
	s, err := astore.Init(path)
	require.NoError(t, err)
	defer s.Close()

	stmt1, err := s.Append(astore.Node{Kind: astore.KindExprStmt})
	require.NoError(t, err)
	stmt2, err := s.Append(astore.Node{Kind: astore.KindExprStmt})
	require.NoError(t, err)
	require.NoError(t, s.Update(stmt1, astore.Node{Kind: astore.KindExprStmt, Next: stmt2}))

	body, err := s.Append(astore.Node{
		Kind:     astore.KindCompoundStmt,
		Compound: astore.CompoundPayload{Statements: stmt1, ScopeDepth: 1},
	})
	require.NoError(t, err)

	cur := s.Get(body).Compound.Statements
	var visited []uint32
	for cur != 0 {
		visited = append(visited, cur)
		cur = s.Get(cur).Next
	}
	assert.Equal(t, []uint32{stmt1, stmt2}, visited)
}
