package symtab_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cc99/cc99/internal/sstore"
	"github.com/cc99/cc99/internal/symtab"
)

func TestAppendUpdateAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sym.bin")
	s, err := symtab.Init(path)
	require.NoError(t, err)
	defer s.Close()

	idx, err := s.Append(symtab.Symbol{NamePos: 7, Kind: symtab.KindVariable, ScopeDepth: 1})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), idx)

	got := s.Get(idx)
	assert.Equal(t, symtab.KindVariable, got.Kind)
	assert.Equal(t, uint32(1), got.ScopeDepth)

	require.NoError(t, s.Update(idx, symtab.Symbol{NamePos: 7, Kind: symtab.KindVariable, ScopeDepth: 1, TypeIdx: 9}))
	assert.Equal(t, uint32(9), s.Get(idx).TypeIdx)
}

func TestGetOutOfRangeIsNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sym.bin")
	s, err := symtab.Init(path)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, symtab.KindInvalid, s.Get(42).Kind)
}

func TestResolveShadowing(t *testing.T) {
	symPath := filepath.Join(t.TempDir(), "sym.bin")
	strPath := filepath.Join(t.TempDir(), "str.bin")
	syms, err := symtab.Init(symPath)
	require.NoError(t, err)
	defer syms.Close()
	strs, err := sstore.Init(strPath)
	require.NoError(t, err)
	defer strs.Close()

	pos, err := strs.Intern([]byte("x"))
	require.NoError(t, err)

	_, err = syms.Append(symtab.Symbol{NamePos: pos, Kind: symtab.KindVariable, ScopeDepth: 0})
	require.NoError(t, err)
	_, err = syms.Append(symtab.Symbol{NamePos: pos, Kind: symtab.KindVariable, ScopeDepth: 1})
	require.NoError(t, err)
	deepest, err := syms.Append(symtab.Symbol{NamePos: pos, Kind: symtab.KindVariable, ScopeDepth: 2})
	require.NoError(t, err)

	found, err := symtab.Resolve(syms, strs, []byte("x"), 2)
	require.NoError(t, err)
	assert.Equal(t, deepest, found)

	found, err = symtab.Resolve(syms, strs, []byte("x"), 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), found, "at depth 1 only the first two declarations are visible")
}

func TestResolveUnknownNameReturnsZero(t *testing.T) {
	symPath := filepath.Join(t.TempDir(), "sym.bin")
	strPath := filepath.Join(t.TempDir(), "str.bin")
	syms, err := symtab.Init(symPath)
	require.NoError(t, err)
	defer syms.Close()
	strs, err := sstore.Init(strPath)
	require.NoError(t, err)
	defer strs.Close()

	found, err := symtab.Resolve(syms, strs, []byte("missing"), 10)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), found)
}
