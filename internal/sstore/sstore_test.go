package sstore_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cc99/cc99/internal/sstore"
)

func TestInternDedupAndRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.bin")
	s, err := sstore.Init(path)
	require.NoError(t, err)
	defer s.Close()

	p1, err := s.Intern([]byte("main"))
	require.NoError(t, err)
	p2, err := s.Intern([]byte("main"))
	require.NoError(t, err)
	assert.Equal(t, p1, p2, "interning the same bytes returns the same position")

	p3, err := s.Intern([]byte("x"))
	require.NoError(t, err)
	assert.NotEqual(t, p1, p3, "distinct strings get distinct positions")

	got, err := s.Get(p1, nil)
	require.NoError(t, err)
	assert.Equal(t, "main", string(got))
}

func TestEmptyStringIsPositionZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.bin")
	s, err := sstore.Init(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(0, nil)
	require.NoError(t, err)
	assert.Equal(t, "", string(got))

	p, err := s.Intern(nil)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), p)
}

func TestGetReturnsCallerOwnedBuffer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.bin")
	s, err := sstore.Init(path)
	require.NoError(t, err)
	defer s.Close()

	pa, err := s.Intern([]byte("alpha"))
	require.NoError(t, err)
	pb, err := s.Intern([]byte("beta"))
	require.NoError(t, err)

	first, err := s.Get(pa, nil)
	require.NoError(t, err)
	firstCopy := append([]byte(nil), first...)

	_, err = s.Get(pb, nil)
	require.NoError(t, err)

	assert.Equal(t, "alpha", string(firstCopy), "first result must survive a later Get call")
}

func TestReopenRebuildsDedupIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.bin")
	s1, err := sstore.Init(path)
	require.NoError(t, err)
	p1, err := s1.Intern([]byte("shared"))
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := sstore.Open(path)
	require.NoError(t, err)
	defer s2.Close()

	p2, err := s2.Intern([]byte("shared"))
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
}
