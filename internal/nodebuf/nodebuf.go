// Package nodebuf implements HB, the bounded-capacity LRU cache that
// mediates every AST and symbol-table access (spec.md §4.F). It is the
// concurrency/resource core of the front-end: the parser creates and reads
// AST nodes and declares symbols only through a Buf; its scoped name lookup
// (symtab.Resolve) scans SYMTAB directly.
package nodebuf

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/cc99/cc99/internal/astore"
	"github.com/cc99/cc99/internal/symtab"
	"github.com/cc99/cc99lib/xhash"
)

// Mode tags which backing store a cache entry belongs to.
type Mode uint8

const (
	ModeAST Mode = iota
	ModeSym
)

// debugBuckets is the bucket count used only to tag eviction log lines with
// a stable hash bucket for a given id, mirroring the "two hash tables" the
// original design indexes entries by; the LRU ordering itself is carried by
// a single shared cache, not per-bucket structures.
const debugBuckets = 16

type key struct {
	mode Mode
	id   uint32
}

type cacheEntry struct {
	mode  Mode
	id    uint32
	dirty bool
	ast   astore.Node
	sym   symtab.Symbol
}

// Buf is an open node buffer over one ASTORE and one SYMTAB.
type Buf struct {
	capacity int
	cache    *lru.Cache[key, *cacheEntry]
	astStore *astore.Store
	symStore *symtab.Store
	log      *zap.SugaredLogger
}

// New creates a node buffer with room for capacity resident entries shared
// between both modes. The underlying LRU is sized generously beyond
// capacity so its own automatic eviction never fires; eviction is always
// driven explicitly by ensureRoom so a failed write-back can abort the
// operation instead of silently losing the dirty entry.
func New(capacity int, ast *astore.Store, sym *symtab.Store, log *zap.SugaredLogger) (*Buf, error) {
	if capacity < 1 {
		capacity = 1
	}
	c, err := lru.New[key, *cacheEntry](capacity*4 + 1)
	if err != nil {
		return nil, errors.Wrap(err, "nodebuf: allocate cache")
	}
	return &Buf{capacity: capacity, cache: c, astStore: ast, symStore: sym, log: log}, nil
}

func (b *Buf) ensureRoom() error {
	for b.cache.Len() >= b.capacity {
		k, e, ok := b.cache.GetOldest()
		if !ok {
			return nil
		}
		if e.dirty {
			if err := b.writeBack(e); err != nil {
				return errors.Wrap(err, "nodebuf: eviction write-back failed")
			}
		}
		b.cache.Remove(k)
		if b.log != nil {
			b.log.Debugw("nodebuf evict", "mode", e.mode, "id", e.id, "bucket", xhash.BucketOf(e.id, debugBuckets))
		}
	}
	return nil
}

func (b *Buf) writeBack(e *cacheEntry) error {
	switch e.mode {
	case ModeAST:
		if err := b.astStore.Update(e.id, e.ast); err != nil {
			return err
		}
	case ModeSym:
		if err := b.symStore.Update(e.id, e.sym); err != nil {
			return err
		}
	}
	e.dirty = false
	return nil
}

// NewAST allocates a fresh AST node: appends it to the backing store,
// inserts it at the MRU end already marked dirty (a fresh record must
// eventually be persisted), evicting first if the pool is full.
func (b *Buf) NewAST(n astore.Node) (uint32, error) {
	if err := b.ensureRoom(); err != nil {
		return 0, err
	}
	id, err := b.astStore.Append(n)
	if err != nil {
		return 0, errors.Wrap(err, "nodebuf: allocate ast node")
	}
	b.cache.Add(key{ModeAST, id}, &cacheEntry{mode: ModeAST, id: id, dirty: true, ast: n})
	return id, nil
}

// GetAST returns the node at id, a total reference: an invalid id yields a
// zero-initialized node with id recorded but KindInvalid kind, never an
// error. Callers must validate via Kind.
func (b *Buf) GetAST(id uint32) (astore.Node, error) {
	if e, ok := b.cache.Get(key{ModeAST, id}); ok {
		return e.ast, nil
	}
	if err := b.ensureRoom(); err != nil {
		return astore.Node{}, err
	}
	n := b.astStore.Get(id)
	b.cache.Add(key{ModeAST, id}, &cacheEntry{mode: ModeAST, id: id, ast: n})
	return n, nil
}

// TouchAST overwrites the resident node's value and marks it dirty, moving
// it to the MRU end. The node must already be resident (fetched via GetAST
// or NewAST) in the same operation.
func (b *Buf) TouchAST(id uint32, n astore.Node) error {
	if _, err := b.GetAST(id); err != nil {
		return err
	}
	e, _ := b.cache.Get(key{ModeAST, id})
	e.ast = n
	e.dirty = true
	return nil
}

// StoreAST writes the resident entry through immediately if dirty and
// clears its dirty bit, without evicting it.
func (b *Buf) StoreAST(id uint32) error {
	e, ok := b.cache.Get(key{ModeAST, id})
	if !ok || !e.dirty {
		return nil
	}
	return b.writeBack(e)
}

// NewSym allocates a fresh symbol record, mirroring NewAST.
func (b *Buf) NewSym(sym symtab.Symbol) (uint32, error) {
	if err := b.ensureRoom(); err != nil {
		return 0, err
	}
	id, err := b.symStore.Append(sym)
	if err != nil {
		return 0, errors.Wrap(err, "nodebuf: allocate symbol")
	}
	b.cache.Add(key{ModeSym, id}, &cacheEntry{mode: ModeSym, id: id, dirty: true, sym: sym})
	return id, nil
}

// GetSym returns the symbol at id, a total reference mirroring GetAST.
func (b *Buf) GetSym(id uint32) (symtab.Symbol, error) {
	if e, ok := b.cache.Get(key{ModeSym, id}); ok {
		return e.sym, nil
	}
	if err := b.ensureRoom(); err != nil {
		return symtab.Symbol{}, err
	}
	sym := b.symStore.Get(id)
	b.cache.Add(key{ModeSym, id}, &cacheEntry{mode: ModeSym, id: id, sym: sym})
	return sym, nil
}

// TouchSym overwrites the resident symbol and marks it dirty, mirroring
// TouchAST.
func (b *Buf) TouchSym(id uint32, sym symtab.Symbol) error {
	if _, err := b.GetSym(id); err != nil {
		return err
	}
	e, _ := b.cache.Get(key{ModeSym, id})
	e.sym = sym
	e.dirty = true
	return nil
}

// StoreSym mirrors StoreAST for symbol entries.
func (b *Buf) StoreSym(id uint32) error {
	e, ok := b.cache.Get(key{ModeSym, id})
	if !ok || !e.dirty {
		return nil
	}
	return b.writeBack(e)
}

// End flushes every dirty resident entry and clears the cache. Must be
// called before the underlying stores are closed.
func (b *Buf) End() error {
	for _, k := range b.cache.Keys() {
		e, ok := b.cache.Peek(k)
		if !ok || !e.dirty {
			continue
		}
		if err := b.writeBack(e); err != nil {
			return errors.Wrap(err, "nodebuf: end flush failed")
		}
	}
	b.cache.Purge()
	return nil
}

// Len reports the number of currently resident entries (both modes).
func (b *Buf) Len() int { return b.cache.Len() }
