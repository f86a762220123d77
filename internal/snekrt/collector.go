package snekrt

import "github.com/snek-lang/snekc/internal/value"

// ScanStack walks the active stack range from rsp up to stackBase
// (inclusive, one word at a time) and returns every candidate tuple
// reference found there, untagged to its heap header address. This is
// the root set spec.md §4.G's Phase 1 starts from, and the same
// contiguous stack-base-down-to-rsp traversal
// _examples/original_source/runtime/start.rs's own snek_gc performs,
// rather than the frame-pointer-chain walk its own comment text also
// describes; the two describe the same address range here because
// rbp plays no role beyond delimiting the caller's own frame, which
// already lies inside [rsp, stackBase].
func ScanStack(mem Memory, stackBase, rsp uint64) []uint64 {
	var roots []uint64
	walkStack(mem, stackBase, rsp, func(_, v uint64) {
		if isCandidateRef(v) {
			roots = append(roots, value.Untag(v))
		}
	})
	return roots
}

func walkStack(mem Memory, stackBase, rsp uint64, visit func(addr, val uint64)) {
	for addr := stackBase; ; addr -= WordSize {
		visit(addr, mem.Read(addr))
		if addr == rsp {
			return
		}
	}
}

// tupleFootprint reads a tuple header's size word and returns the
// object's total size in bytes: the GC word, the size word, and size
// elements, each WordSize bytes.
func tupleFootprint(mem Memory, header uint64) uint64 {
	size := value.Decode(mem.Read(header + WordSize))
	return uint64(2+size) * WordSize
}

// mark is Phase 1's per-root recursion: set header's GC word to the
// live marker and follow every element that is itself a tuple
// reference. Booleans and nil are never followed, matching
// start.rs's mark_vec exactly (it is the one phase this package keeps
// unchanged from the original, since marking is identical whether or
// not the collector goes on to compact).
func mark(mem Memory, header uint64) {
	if mem.Read(header)&1 == 1 {
		return
	}
	mem.Write(header, 1)

	size := value.Decode(mem.Read(header + WordSize))
	for i := int64(0); i < size; i++ {
		elem := mem.Read(header + uint64(2+i)*WordSize)
		if value.IsTuple(elem) {
			mark(mem, value.Untag(elem))
		}
	}
}

// computeForwarding is Phase 2: a left-to-right scan of the live heap
// that assigns every marked object its post-compaction address,
// writing that address directly over the object's GC word so Phase 3
// and Phase 4 can read it back without a side table.
func computeForwarding(mem Memory, heapStart, heapPtr uint64) {
	dest := heapStart
	for src := heapStart; src < heapPtr; {
		footprint := tupleFootprint(mem, src)
		if mem.Read(src) != 0 {
			mem.Write(src, dest)
			dest += footprint
		}
		src += footprint
	}
}

// rewriteReferences is Phase 3: every candidate reference in the live
// heap or the active stack range is redirected to its object's
// forwarding address, computed in Phase 2 and still sitting in that
// object's (not-yet-moved) GC word.
func rewriteReferences(mem Memory, heapStart, heapPtr, stackBase, rsp uint64) {
	rewrite := func(addr uint64) {
		v := mem.Read(addr)
		if !isCandidateRef(v) {
			return
		}
		if forward := mem.Read(value.Untag(v)); forward != 0 {
			mem.Write(addr, value.Tag(forward))
		}
	}

	for addr := heapStart; addr < heapPtr; addr += WordSize {
		rewrite(addr)
	}
	walkStack(mem, stackBase, rsp, func(addr, _ uint64) { rewrite(addr) })
}

// move is Phase 4: a second left-to-right scan that physically slides
// every marked object down to the forwarding address Phase 2 recorded
// in its GC word, then clears that word back to 0 so the object is
// unmarked for the next collection. Source and destination ranges for
// a single object only ever overlap in the direction a forward,
// ascending-index copy already handles safely, because the
// destination address can never exceed the source address.
func move(mem Memory, heapStart, heapPtr uint64) uint64 {
	newHeapPtr := heapStart
	for src := heapStart; src < heapPtr; {
		footprint := tupleFootprint(mem, src)
		if dest := mem.Read(src); dest != 0 {
			for i := uint64(0); i < footprint; i += WordSize {
				mem.Write(dest+i, mem.Read(src+i))
			}
			mem.Write(dest, 0)
			if end := dest + footprint; end > newHeapPtr {
				newHeapPtr = end
			}
		}
		src += footprint
	}
	return newHeapPtr
}

// Collect runs the full mark-compact cycle and returns the new heap
// pointer. It is the pure-Go body of the try_gc ABI call; TryGC wraps
// it with the out-of-memory check spec.md §4.G's try_gc performs after
// collection returns.
func Collect(mem Memory, heapStart, heapPtr, stackBase, rsp uint64) uint64 {
	for _, root := range ScanStack(mem, stackBase, rsp) {
		mark(mem, root)
	}
	computeForwarding(mem, heapStart, heapPtr)
	rewriteReferences(mem, heapStart, heapPtr, stackBase, rsp)
	return move(mem, heapStart, heapPtr)
}

// TryGC implements the runtime side of the snek_try_gc ABI call
// (spec.md §6): collect, then fail with out-of-memory if the requested
// count still doesn't fit. rbp is part of the fixed call signature the
// compiled code uses but is unused here: the stack scan only needs the
// contiguous [rsp, stackBase] range, never the frame-pointer chain.
func TryGC(mem Memory, heapStart, heapEnd, heapPtr, stackBase, rbp, rsp uint64, count int64) (newHeapPtr uint64, outOfMemory bool) {
	_ = rbp
	newHeapPtr = Collect(mem, heapStart, heapPtr, stackBase, rsp)
	if int64(heapEnd-newHeapPtr) < count*WordSize {
		return newHeapPtr, true
	}
	return newHeapPtr, false
}
