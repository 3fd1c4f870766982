package astutil_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cc99/cc99/internal/astore"
	"github.com/cc99/cc99/internal/astutil"
	"github.com/cc99/cc99/internal/nodebuf"
	"github.com/cc99/cc99/internal/symtab"
	"github.com/cc99/cc99/internal/tstore"
)

func newBuf(t *testing.T) *nodebuf.Buf {
	t.Helper()
	a, err := astore.Init(filepath.Join(t.TempDir(), "a.bin"))
	require.NoError(t, err)
	s, err := symtab.Init(filepath.Join(t.TempDir(), "s.bin"))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(); s.Close() })
	buf, err := nodebuf.New(100, a, s, nil)
	require.NoError(t, err)
	return buf
}

func lit(t *testing.T, buf *nodebuf.Buf, v int64) uint32 {
	t.Helper()
	id, err := buf.NewAST(astore.Node{
		Kind:   astore.KindIntLiteral,
		Binary: astore.BinaryPayload{Value: astore.Value{Tag: astore.ValueLong, LongValue: v}},
	})
	require.NoError(t, err)
	return id
}

// Builds 1 + 2 * 3 per spec.md's precedence scenario: BINARY(+, LIT(1), BINARY(*, LIT(2), LIT(3))).
func TestFoldConstantsPrecedenceScenario(t *testing.T) {
	buf := newBuf(t)
	one := lit(t, buf, 1)
	two := lit(t, buf, 2)
	three := lit(t, buf, 3)
	mul, err := buf.NewAST(astore.Node{Kind: astore.KindBinaryOp, Binary: astore.BinaryPayload{Left: two, Right: three, Operator: tstore.STAR}})
	require.NoError(t, err)
	add, err := buf.NewAST(astore.Node{Kind: astore.KindBinaryOp, Binary: astore.BinaryPayload{Left: one, Right: mul, Operator: tstore.PLUS}})
	require.NoError(t, err)

	folded, err := astutil.FoldConstants(buf, add)
	require.NoError(t, err)
	assert.Equal(t, 2, folded)

	got, err := buf.GetAST(add)
	require.NoError(t, err)
	assert.Equal(t, astore.KindIntLiteral, got.Kind)
	assert.Equal(t, int64(7), got.Binary.Value.Long())
	assert.True(t, got.HasFlag(astore.FlagOptimized))
}

func TestFoldConstantsSkipsDivisionByZero(t *testing.T) {
	buf := newBuf(t)
	ten := lit(t, buf, 10)
	zero := lit(t, buf, 0)
	div, err := buf.NewAST(astore.Node{Kind: astore.KindBinaryOp, Binary: astore.BinaryPayload{Left: ten, Right: zero, Operator: tstore.SLASH}})
	require.NoError(t, err)

	folded, err := astutil.FoldConstants(buf, div)
	require.NoError(t, err)
	assert.Equal(t, 0, folded)

	got, err := buf.GetAST(div)
	require.NoError(t, err)
	assert.Equal(t, astore.KindBinaryOp, got.Kind, "division by zero must not be folded")
}

func TestComputeStatsCountsAndDepth(t *testing.T) {
	buf := newBuf(t)
	a := lit(t, buf, 1)
	b := lit(t, buf, 2)
	op, err := buf.NewAST(astore.Node{Kind: astore.KindBinaryOp, Binary: astore.BinaryPayload{Left: a, Right: b, Operator: tstore.PLUS}})
	require.NoError(t, err)

	st, err := astutil.ComputeStats(buf, op)
	require.NoError(t, err)
	assert.Equal(t, 3, st.NodeCount)
	assert.Equal(t, 1, st.MaxDepth)
}

func TestWalkDetectsCycle(t *testing.T) {
	buf := newBuf(t)
	id, err := buf.NewAST(astore.Node{Kind: astore.KindUnaryOp})
	require.NoError(t, err)
	require.NoError(t, buf.TouchAST(id, astore.Node{Kind: astore.KindUnaryOp, Unary: astore.UnaryPayload{Operand: id}}))

	err = astutil.Walk(buf, id, nil, nil, nil)
	assert.ErrorIs(t, err, astutil.ErrCycle)
}
