// Package sstore implements SSTORE, the append-only, dedup-on-insert pool of
// length-prefixed byte strings every other front-end component interns
// names and literal text into.
package sstore

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/gofrs/flock"

	"github.com/cc99/cc99lib/limits"
	"github.com/cc99/cc99lib/xhash"
)

// ErrFull is returned when the store cannot accept another string because
// the backing file would cross the 16-bit position ceiling (spec.md §6).
var ErrFull = fmt.Errorf("sstore: store full")

const lenHeaderSize = 2 // u16

// Store is an open SSTORE. Position 0 always refers to the pre-seeded empty
// string.
type Store struct {
	f        *os.File
	lock     *flock.Flock
	path     string
	writable bool

	size  int64             // current file size in bytes == next append offset
	index map[uint32][]int64 // hash(bytes) -> candidate byte offsets of the length header
}

// Init creates a new, empty store at path and seeds position 0 with the
// empty string.
func Init(path string) (*Store, error) {
	lk := flock.New(path + ".lock")
	ok, err := lk.TryLock()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("sstore: %s is locked by another process", path)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		lk.Unlock()
		return nil, err
	}
	s := &Store{f: f, lock: lk, path: path, writable: true, index: make(map[uint32][]int64)}
	if _, err := s.appendRaw(nil); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Open attaches to an existing store. The store is writable: Intern is
// permitted, matching cc0's need to keep interning source text as it lexes.
// Opening rebuilds the in-memory dedup index by scanning the file once.
func Open(path string) (*Store, error) {
	lk := flock.New(path + ".lock")
	ok, err := lk.TryLock()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("sstore: %s is locked by another process", path)
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		lk.Unlock()
		return nil, err
	}
	s := &Store{f: f, lock: lk, path: path, writable: true, index: make(map[uint32][]int64)}
	if err := s.rebuildIndex(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) rebuildIndex() error {
	info, err := s.f.Stat()
	if err != nil {
		return err
	}
	s.size = info.Size()

	var off int64
	hdr := make([]byte, lenHeaderSize)
	for off < s.size {
		if _, err := s.f.ReadAt(hdr, off); err != nil {
			return err
		}
		n := binary.LittleEndian.Uint16(hdr)
		buf := make([]byte, n)
		if n > 0 {
			if _, err := s.f.ReadAt(buf, off+lenHeaderSize); err != nil {
				return err
			}
		}
		h := xhash.Hash32(buf)
		s.index[h] = append(s.index[h], off)
		off += lenHeaderSize + int64(n)
	}
	return nil
}

// Intern inserts bytes if not already present and returns its stable
// position. Two inserts of the same byte sequence always return the same
// position; distinct sequences always get distinct positions.
func (s *Store) Intern(b []byte) (uint16, error) {
	if !s.writable {
		return 0, fmt.Errorf("sstore: store opened read-only")
	}
	if len(b) == 0 {
		return 0, nil
	}
	h := xhash.Hash32(b)
	for _, off := range s.index[h] {
		if s.bytesEqualAt(off, b) {
			return uint16(off), nil
		}
	}
	if s.size+lenHeaderSize+int64(len(b)) > limits.MaxSStoreBytes {
		return 0, ErrFull
	}
	off, err := s.appendRaw(b)
	if err != nil {
		return 0, err
	}
	s.index[h] = append(s.index[h], off)
	return uint16(off), nil
}

func (s *Store) bytesEqualAt(off int64, b []byte) bool {
	hdr := make([]byte, lenHeaderSize)
	if _, err := s.f.ReadAt(hdr, off); err != nil {
		return false
	}
	n := binary.LittleEndian.Uint16(hdr)
	if int(n) != len(b) {
		return false
	}
	if n == 0 {
		return true
	}
	buf := make([]byte, n)
	if _, err := s.f.ReadAt(buf, off+lenHeaderSize); err != nil {
		return false
	}
	for i := range buf {
		if buf[i] != b[i] {
			return false
		}
	}
	return true
}

func (s *Store) appendRaw(b []byte) (int64, error) {
	off := s.size
	if off > limits.MaxUint16 {
		return 0, ErrFull
	}
	hdr := make([]byte, lenHeaderSize)
	binary.LittleEndian.PutUint16(hdr, uint16(len(b)))
	if _, err := s.f.WriteAt(hdr, off); err != nil {
		return 0, err
	}
	if len(b) > 0 {
		if _, err := s.f.WriteAt(b, off+lenHeaderSize); err != nil {
			return 0, err
		}
	}
	s.size += lenHeaderSize + int64(len(b))
	return off, nil
}

// Get copies the string at pos into dst (growing/shrinking as needed via the
// returned slice, reusing dst's backing array when large enough) and returns
// it. Unlike the source design this re-architects away from (spec.md §9),
// Get never returns a store-owned buffer: callers own whatever is handed
// back and may retain it across further Get calls safely.
func (s *Store) Get(pos uint16, dst []byte) ([]byte, error) {
	hdr := make([]byte, lenHeaderSize)
	if _, err := s.f.ReadAt(hdr, int64(pos)); err != nil {
		return nil, fmt.Errorf("sstore: read length at %d: %w", pos, err)
	}
	n := binary.LittleEndian.Uint16(hdr)
	if cap(dst) < int(n) {
		dst = make([]byte, n)
	} else {
		dst = dst[:n]
	}
	if n > 0 {
		if _, err := s.f.ReadAt(dst, int64(pos)+lenHeaderSize); err != nil {
			return nil, fmt.Errorf("sstore: read bytes at %d: %w", pos, err)
		}
	}
	return dst, nil
}

// Close flushes and releases the store's file and lock. Idempotent.
func (s *Store) Close() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	if s.lock != nil {
		s.lock.Unlock()
		os.Remove(s.path + ".lock")
		s.lock = nil
	}
	return err
}
