// Package tstore implements TSTORE, the append-only sequence of fixed-size
// lexical tokens with random access and a parser-owned cursor.
package tstore

import (
	"encoding/binary"

	"github.com/cc99/cc99/internal/recfile"
)

const recSize = 8 // 4 x u16

// Store is an open TSTORE.
type Store struct {
	rf     *recfile.File
	cursor uint32 // 1-based index of the next token Next() will return
}

// Init creates a new, empty token store.
func Init(path string) (*Store, error) {
	rf, err := recfile.Create(path, recSize)
	if err != nil {
		return nil, err
	}
	return &Store{rf: rf, cursor: 1}, nil
}

// Open attaches to an existing token store, cursor positioned at record 1.
func Open(path string) (*Store, error) {
	rf, err := recfile.Open(path, recSize)
	if err != nil {
		return nil, err
	}
	return &Store{rf: rf, cursor: 1}, nil
}

func encode(t Token) []byte {
	b := make([]byte, recSize)
	binary.LittleEndian.PutUint16(b[0:2], uint16(t.Kind))
	binary.LittleEndian.PutUint16(b[2:4], t.SourcePos)
	binary.LittleEndian.PutUint16(b[4:6], t.FilePos)
	binary.LittleEndian.PutUint16(b[6:8], t.SourceLine)
	return b
}

func decode(b []byte) Token {
	return Token{
		Kind:       Kind(binary.LittleEndian.Uint16(b[0:2])),
		SourcePos:  binary.LittleEndian.Uint16(b[2:4]),
		FilePos:    binary.LittleEndian.Uint16(b[4:6]),
		SourceLine: binary.LittleEndian.Uint16(b[6:8]),
	}
}

// Append adds a token to the end of the stream and returns its 1-based
// index. The lexer is expected to append in strict source order.
func (s *Store) Append(t Token) (uint32, error) {
	return s.rf.Append(encode(t))
}

// Get is total: any out-of-range index or I/O fault yields the EOF token
// rather than an error.
func (s *Store) Get(idx uint32) Token {
	buf := make([]byte, recSize)
	if !s.rf.ReadAt(idx, buf) {
		return Token{Kind: EOF}
	}
	return decode(buf)
}

// Next returns the token at the cursor and advances it by one.
func (s *Store) Next() Token {
	t := s.Get(s.cursor)
	s.cursor++
	return t
}

// GetIdx returns the cursor's current value.
func (s *Store) GetIdx() uint32 { return s.cursor }

// SetIdx restores the cursor to a previously saved value (single-token
// lookahead save/restore, spec.md §3).
func (s *Store) SetIdx(idx uint32) { s.cursor = idx }

// Count returns the number of tokens appended so far.
func (s *Store) Count() uint32 { return s.rf.Count() }

// Close flushes and releases the store.
func (s *Store) Close() error { return s.rf.Close() }
