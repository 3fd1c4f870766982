package nodebuf_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cc99/cc99/internal/astore"
	"github.com/cc99/cc99/internal/nodebuf"
	"github.com/cc99/cc99/internal/symtab"
)

func open(t *testing.T) (*astore.Store, *symtab.Store) {
	t.Helper()
	a, err := astore.Init(filepath.Join(t.TempDir(), "a.bin"))
	require.NoError(t, err)
	s, err := symtab.Init(filepath.Join(t.TempDir(), "s.bin"))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(); s.Close() })
	return a, s
}

func TestNewAndGetASTRoundTrip(t *testing.T) {
	a, s := open(t)
	buf, err := nodebuf.New(4, a, s, nil)
	require.NoError(t, err)

	id, err := buf.NewAST(astore.Node{Kind: astore.KindIntLiteral, Binary: astore.BinaryPayload{
		Value: astore.Value{Tag: astore.ValueLong, LongValue: 5},
	}})
	require.NoError(t, err)

	got, err := buf.GetAST(id)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Binary.Value.Long())
}

func TestGetASTInvalidIdIsTotal(t *testing.T) {
	a, s := open(t)
	buf, err := nodebuf.New(4, a, s, nil)
	require.NoError(t, err)

	got, err := buf.GetAST(999)
	require.NoError(t, err)
	assert.Equal(t, astore.KindInvalid, got.Kind)
}

func TestEvictionWritesBackDirtyEntries(t *testing.T) {
	a, s := open(t)
	buf, err := nodebuf.New(2, a, s, nil)
	require.NoError(t, err)

	id1, err := buf.NewAST(astore.Node{Kind: astore.KindVarDecl})
	require.NoError(t, err)
	require.NoError(t, buf.TouchAST(id1, astore.Node{Kind: astore.KindVarDecl, Decl: astore.DeclPayload{TypeIdx: 77}}))

	_, err = buf.NewAST(astore.Node{Kind: astore.KindVarDecl})
	require.NoError(t, err)

	// Force a third allocation past capacity 2, evicting id1 (the least
	// recently used entry).
	_, err = buf.NewAST(astore.Node{Kind: astore.KindVarDecl})
	require.NoError(t, err)

	assert.Equal(t, uint32(77), a.Get(id1).Decl.TypeIdx, "eviction must write dirty entries through to the store")
}

func TestEndFlushesAllDirtyEntries(t *testing.T) {
	a, s := open(t)
	buf, err := nodebuf.New(8, a, s, nil)
	require.NoError(t, err)

	symID, err := buf.NewSym(symtab.Symbol{Kind: symtab.KindVariable, ScopeDepth: 0})
	require.NoError(t, err)
	require.NoError(t, buf.TouchSym(symID, symtab.Symbol{Kind: symtab.KindVariable, ScopeDepth: 0, TypeIdx: 3}))

	require.NoError(t, buf.End())
	assert.Equal(t, uint32(3), s.Get(symID).TypeIdx)
	assert.Equal(t, 0, buf.Len())
}

func TestAtMostOneResidentEntryPerModeAndID(t *testing.T) {
	a, s := open(t)
	buf, err := nodebuf.New(4, a, s, nil)
	require.NoError(t, err)

	id, err := buf.NewAST(astore.Node{Kind: astore.KindExprStmt})
	require.NoError(t, err)

	before := buf.Len()
	_, err = buf.GetAST(id)
	require.NoError(t, err)
	assert.Equal(t, before, buf.Len(), "re-fetching a resident id must not grow the cache")
}
