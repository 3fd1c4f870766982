// Package recfile is the shared substrate for the toolchain's fixed-size
// arena stores (TSTORE, ASTORE, SYMTAB, the TAC stream): an append-only file
// of equal-size records addressed by a 1-based index, with optional
// in-place update at a computed offset. It owns the one piece of mechanism
// every arena store in spec.md §4 repeats — record-size accounting, append
// vs. update discipline, and the single-writer file lock — so each store
// package only has to encode/decode its own record shape.
package recfile

import (
	"fmt"
	"io"
	"os"

	"github.com/gofrs/flock"
)

// File is a fixed-record-size append/update file, 1-based indexing.
type File struct {
	f       *os.File
	lock    *flock.Flock
	recSize int
	count   uint32 // number of records currently written
	path    string
}

// Create truncates (or creates) path and opens it for append+update, sized
// for recSize-byte records, taking an exclusive advisory lock for the
// process lifetime so a second writer fails fast instead of corrupting the
// file (spec.md §5: "concurrent writers are not supported").
func Create(path string, recSize int) (*File, error) {
	lk := flock.New(path + ".lock")
	ok, err := lk.TryLock()
	if err != nil {
		return nil, fmt.Errorf("recfile: acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("recfile: %s is locked by another process", path)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		lk.Unlock()
		return nil, err
	}
	return &File{f: f, lock: lk, recSize: recSize, path: path}, nil
}

// Open attaches to an existing file of recSize-byte records for reading and
// in-place update (but not append beyond the records already present, unless
// the caller calls Append, which is always permitted: ASTORE/SYMTAB are
// append-and-update, TSTORE/TAC are append-only by convention of their
// callers).
func Open(path string, recSize int) (*File, error) {
	lk := flock.New(path + ".lock")
	ok, err := lk.TryLock()
	if err != nil {
		return nil, fmt.Errorf("recfile: acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("recfile: %s is locked by another process", path)
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		lk.Unlock()
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		lk.Unlock()
		return nil, err
	}
	count := uint32(info.Size() / int64(recSize))
	return &File{f: f, lock: lk, recSize: recSize, count: count, path: path}, nil
}

// Append writes data (must be exactly recSize bytes) past the current write
// head and returns the new 1-based index.
func (rf *File) Append(data []byte) (uint32, error) {
	if len(data) != rf.recSize {
		return 0, fmt.Errorf("recfile: record size mismatch: got %d want %d", len(data), rf.recSize)
	}
	off := int64(rf.count) * int64(rf.recSize)
	if _, err := rf.f.WriteAt(data, off); err != nil {
		return 0, err
	}
	rf.count++
	return rf.count, nil
}

// Update overwrites the record at the given 1-based index in place.
func (rf *File) Update(idx uint32, data []byte) error {
	if idx == 0 || idx > rf.count {
		return fmt.Errorf("recfile: update out of range: idx=%d count=%d", idx, rf.count)
	}
	if len(data) != rf.recSize {
		return fmt.Errorf("recfile: record size mismatch: got %d want %d", len(data), rf.recSize)
	}
	off := int64(idx-1) * int64(rf.recSize)
	_, err := rf.f.WriteAt(data, off)
	return err
}

// ReadAt reads the record at the given 1-based index into dst (which must be
// exactly recSize bytes). On any out-of-range index or I/O fault it zero-
// fills dst and returns false instead of an error: ReadAt is a total
// operation, matching the "EOF token"/"zero-initialized node" contracts of
// TSTORE/ASTORE/SYMTAB.
func (rf *File) ReadAt(idx uint32, dst []byte) bool {
	for i := range dst {
		dst[i] = 0
	}
	if idx == 0 || idx > rf.count {
		return false
	}
	off := int64(idx-1) * int64(rf.recSize)
	n, err := rf.f.ReadAt(dst, off)
	if err != nil && err != io.EOF {
		return false
	}
	return n == rf.recSize
}

// Count returns the current write head (number of records appended).
func (rf *File) Count() uint32 { return rf.count }

// Close flushes and releases the file and its lock. Idempotent.
func (rf *File) Close() error {
	if rf.f == nil {
		return nil
	}
	err := rf.f.Close()
	rf.f = nil
	if rf.lock != nil {
		rf.lock.Unlock()
		os.Remove(rf.path + ".lock")
		rf.lock = nil
	}
	return err
}
