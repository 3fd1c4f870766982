package vm

// Alloc bump-allocates n bytes from the virtual heap, returning the
// starting address. Exceeding the configured heap size is a resource
// fault, matching spec.md §4.K's "bounded by a configured size."
func (e *Engine) Alloc(n int) (int32, error) {
	if n < 0 || e.heapPos+n > len(e.heap) {
		return 0, e.fault(FaultInvalidMemory)
	}
	addr := e.heapPos
	e.heapPos += n
	return int32(addr), nil
}

// Free is a no-op permitted to always succeed: the virtual heap never
// reclaims bump-allocated space (spec.md §4.K).
func (e *Engine) Free(addr int32) error { return nil }
