package symtab

import "github.com/cc99/cc99/internal/sstore"

// Resolve implements spec.md §4.G's scoped lookup: scan every declared
// symbol, keep the one with a matching name and the maximum ScopeDepth not
// exceeding maxDepth, tie-broken by latest declaration (highest index).
// Returns 0 ("not found") if nothing matches.
//
// Name comparison fetches the candidate's spelling via strings after first
// copying the target name into a local buffer, honoring sstore's
// caller-owns-the-result contract: the target bytes must survive the
// candidate's own Get call.
func Resolve(syms *Store, strs *sstore.Store, name []byte, maxDepth uint32) (uint32, error) {
	target := append([]byte(nil), name...)

	var best uint32
	var bestDepth uint32
	count := syms.Count()
	var buf []byte
	for idx := uint32(1); idx <= count; idx++ {
		sym := syms.Get(idx)
		if sym.Kind == KindInvalid || sym.ScopeDepth > maxDepth {
			continue
		}
		var err error
		buf, err = strs.Get(sym.NamePos, buf)
		if err != nil {
			return 0, err
		}
		if !bytesEqual(buf, target) {
			continue
		}
		if best == 0 || sym.ScopeDepth > bestDepth || (sym.ScopeDepth == bestDepth && idx > best) {
			best = idx
			bestDepth = sym.ScopeDepth
		}
	}
	return best, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
