package recfile_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cc99/cc99/internal/recfile"
)

func TestAppendMonotonicAndUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recs.bin")
	f, err := recfile.Create(path, 4)
	require.NoError(t, err)
	defer f.Close()

	idx1, err := f.Append([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	idx2, err := f.Append([]byte{5, 6, 7, 8})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), idx1)
	assert.Equal(t, uint32(2), idx2)
	assert.Equal(t, uint32(2), f.Count())

	require.NoError(t, f.Update(idx1, []byte{9, 9, 9, 9}))

	buf := make([]byte, 4)
	ok := f.ReadAt(idx1, buf)
	assert.True(t, ok)
	assert.Equal(t, []byte{9, 9, 9, 9}, buf)
}

func TestReadAtOutOfRangeIsTotal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recs.bin")
	f, err := recfile.Create(path, 4)
	require.NoError(t, err)
	defer f.Close()

	buf := []byte{1, 1, 1, 1}
	ok := f.ReadAt(99, buf)
	assert.False(t, ok)
	assert.Equal(t, []byte{0, 0, 0, 0}, buf)
}

func TestSecondWriterLockFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recs.bin")
	f1, err := recfile.Create(path, 4)
	require.NoError(t, err)
	defer f1.Close()

	_, err = recfile.Open(path, 4)
	assert.Error(t, err)
}

func TestReopenPicksUpExistingCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recs.bin")
	f1, err := recfile.Create(path, 4)
	require.NoError(t, err)
	_, err = f1.Append([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	require.NoError(t, f1.Close())

	f2, err := recfile.Open(path, 4)
	require.NoError(t, err)
	defer f2.Close()
	assert.Equal(t, uint32(1), f2.Count())
}
