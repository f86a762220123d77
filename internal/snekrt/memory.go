// Package snekrt is the Go-side logic of the Snek runtime (spec.md §4.G,
// §4.F): the mark-compact collector, the structural printer and
// equality, and input/heap-size parsing. cmd/snekruntime wraps this
// package in a cgo c-archive that the assembled object calls into;
// everything here stays pure Go, addressing memory through the Memory
// interface instead of unsafe.Pointer, so it can be driven and tested
// without cgo or a real heap.
//
// The collector's four-phase shape is a generalization of
// _examples/original_source/runtime/start.rs's own snek_gc/mark_vec,
// which only marks and never compacts; spec.md's mark-compact scheme
// adds the forwarding/rewrite/move phases this package implements.
package snekrt

import "github.com/snek-lang/snekc/internal/value"

// WordSize is the size, in bytes, of every tagged value and heap slot.
const WordSize = 8

// Memory is the address space the collector, printer, and equality
// checker read and write: a flat, word-addressed byte space covering
// both the heap and the active stack range. cmd/snekruntime implements
// it over raw process memory via unsafe.Pointer; tests implement it
// over a plain Go slice.
type Memory interface {
	Read(addr uint64) uint64
	Write(addr uint64, val uint64)
}

// SliceMemory is a Memory backed by a Go slice, addressed as byte
// offsets from Base. It exists for tests and is also the natural shape
// for a from-scratch, non-cgo embedding of the runtime.
type SliceMemory struct {
	Base  uint64
	Words []uint64
}

func (m *SliceMemory) index(addr uint64) int {
	if addr < m.Base || (addr-m.Base)%WordSize != 0 {
		panic("snekrt: misaligned or out-of-range address")
	}
	return int((addr - m.Base) / WordSize)
}

func (m *SliceMemory) Read(addr uint64) uint64 {
	return m.Words[m.index(addr)]
}

func (m *SliceMemory) Write(addr uint64, val uint64) {
	m.Words[m.index(addr)] = val
}

// isCandidateRef is the stack/heap scanning predicate of spec.md §4.G:
// a word is a candidate tuple reference iff its low bit is 1 and it is
// none of the three fixed singletons. value.IsTuple already implements
// exactly this bit pattern; named here to match the scanning
// vocabulary the collector's own comments use.
func isCandidateRef(v uint64) bool {
	return value.IsTuple(v)
}
