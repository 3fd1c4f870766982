// Package symtab implements SYMTAB, the append-only, in-place-updatable
// pool of fixed-size symbol records the parser declares into and resolves
// against under block scoping (spec.md §4.E).
package symtab

import (
	"encoding/binary"

	"github.com/cc99/cc99/internal/recfile"
)

// Kind tags what a symbol names.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVariable
	KindFunction
	KindTag // struct/union/enum tag namespace
	KindTypedef
	KindEnumerator
	KindLabel
)

// StorageClass mirrors the C99 storage-class specifiers a declaration may
// carry; stored alongside the symbol for later codegen decisions.
type StorageClass uint8

const (
	StorageNone StorageClass = iota
	StorageExtern
	StorageStatic
	StorageAuto
	StorageRegister
	StorageTypedef
)

// Symbol is the fixed-size SYMTAB record.
type Symbol struct {
	NamePos    uint16 // SSTORE position of the symbol's spelling
	Kind       Kind
	Storage    StorageClass
	ScopeDepth uint32
	TypeIdx    uint32 // ASTORE index of the declared type node
	NodeIdx    uint32 // ASTORE index of the declaring node (def/decl/param)
}

const recSize = 2 + 1 + 1 + 4 + 4 + 4 // 16 bytes

// Store is an open SYMTAB.
type Store struct {
	rf *recfile.File
}

// Init creates a new, empty symbol table. Index 0 is reserved for
// "not found" by the caller's convention; the store itself starts empty
// and the first Append returns index 1.
func Init(path string) (*Store, error) {
	rf, err := recfile.Create(path, recSize)
	if err != nil {
		return nil, err
	}
	return &Store{rf: rf}, nil
}

// Open attaches to an existing symbol table.
func Open(path string) (*Store, error) {
	rf, err := recfile.Open(path, recSize)
	if err != nil {
		return nil, err
	}
	return &Store{rf: rf}, nil
}

// Append declares a new symbol and returns its 1-based index.
func (s *Store) Append(sym Symbol) (uint32, error) {
	return s.rf.Append(encode(sym))
}

// Update overwrites a symbol in place. The node buffer uses it to write
// back dirty symbol entries.
func (s *Store) Update(idx uint32, sym Symbol) error {
	return s.rf.Update(idx, encode(sym))
}

// Get is total: an out-of-range index yields the zero Symbol
// (KindInvalid), matching SYMTAB's "index 0 is not found" convention.
func (s *Store) Get(idx uint32) Symbol {
	buf := make([]byte, recSize)
	if !s.rf.ReadAt(idx, buf) {
		return Symbol{}
	}
	return decode(buf)
}

// Count returns the number of symbols declared so far, used by
// scope-search scans that walk every record looking for a name match.
func (s *Store) Count() uint32 { return s.rf.Count() }

// Close flushes and releases the store.
func (s *Store) Close() error { return s.rf.Close() }

func encode(sym Symbol) []byte {
	b := make([]byte, recSize)
	binary.LittleEndian.PutUint16(b[0:2], sym.NamePos)
	b[2] = byte(sym.Kind)
	b[3] = byte(sym.Storage)
	binary.LittleEndian.PutUint32(b[4:8], sym.ScopeDepth)
	binary.LittleEndian.PutUint32(b[8:12], sym.TypeIdx)
	binary.LittleEndian.PutUint32(b[12:16], sym.NodeIdx)
	return b
}

func decode(b []byte) Symbol {
	return Symbol{
		NamePos:    binary.LittleEndian.Uint16(b[0:2]),
		Kind:       Kind(b[2]),
		Storage:    StorageClass(b[3]),
		ScopeDepth: binary.LittleEndian.Uint32(b[4:8]),
		TypeIdx:    binary.LittleEndian.Uint32(b[8:12]),
		NodeIdx:    binary.LittleEndian.Uint32(b[12:16]),
	}
}
