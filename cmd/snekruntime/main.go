// Command snekruntime is the Go half of the Snek runtime: a
// program-agnostic, prebuilt archive (built with `go build
// -buildmode=c-archive`) exporting the C-ABI surface spec.md §6 fixes
// between emitted code and the runtime — snek_error, snek_print,
// snek_try_gc — plus the heap-allocation and argument-parsing helpers
// a driver needs to call our_code_starts_here at all.
//
// This package deliberately stops short of owning the process entry
// point or calling our_code_starts_here itself: spec.md §1 places "the
// external assembler/linker used to produce the final executable" out
// of scope as a thin collaborator, and any driver that calls
// snek_init, then our_code_starts_here, then snek_print on the result
// is that collaborator — documented here, not automated. The
// collector/printer/equality logic that actually does the work is
// delegated to internal/snekrt so it stays testable without cgo; this
// file is the direct Go analogue of
// _examples/original_source/runtime/start.rs's exported functions,
// minus that file's own fn main (which this package's main is a
// c-archive-mandated no-op in place of).
package main

/*
#include <stdint.h>
*/
import "C"

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/snek-lang/snekc/internal/snekrt"
	"github.com/snek-lang/snekc/internal/value"
)

// heap, heapStart, and heapEnd are this process's heap state, set once
// by snek_init and read from then on by snek_try_gc's out-of-memory
// check — the "init at main, constant thereafter" lifecycle spec.md §9
// calls out for the module-level heap handles, kept here on the Go
// side of the ABI boundary.
var (
	heap      []uint64
	heapStart uint64
	heapEnd   uint64
)

// processMemory is the snekrt.Memory over this process's real address
// space: addresses are literal pointers, so Read/Write are raw,
// unchecked dereferences. This is the one place in the whole module
// unsafe.Pointer arithmetic is necessary, since every other package
// addresses memory through the Memory interface instead.
type processMemory struct{}

func (processMemory) Read(addr uint64) uint64 {
	return *(*uint64)(unsafe.Pointer(uintptr(addr)))
}

func (processMemory) Write(addr uint64, val uint64) {
	*(*uint64)(unsafe.Pointer(uintptr(addr))) = val
}

//export snek_init
// snek_init allocates the process heap, returning its start and end
// addresses for the caller to pass as our_code_starts_here's second
// and third arguments. Calling it with heapWords 0 yields two null
// pointers, which our_code_starts_here is never expected to survive
// dereferencing — matching spec.md's implicit assumption of a
// non-empty heap.
func snek_init(heapWords C.uint64_t) (C.uint64_t, C.uint64_t) {
	heap = make([]uint64, uint64(heapWords))
	if len(heap) == 0 {
		heapStart, heapEnd = 0, 0
		return 0, 0
	}
	heapStart = uint64(uintptr(unsafe.Pointer(&heap[0])))
	heapEnd = heapStart + uint64(len(heap))*snekrt.WordSize
	return C.uint64_t(heapStart), C.uint64_t(heapEnd)
}

//export snek_parse_input
// snek_parse_input wraps internal/snekrt.ParseInput for a C driver:
// ok is 0 on success, non-zero if s is not "true", "false", or a
// signed decimal integer in range.
func snek_parse_input(s *C.char) (val C.uint64_t, ok C.int) {
	v, err := snekrt.ParseInput(C.GoString(s))
	if err != nil {
		return 0, 1
	}
	return C.uint64_t(v), 0
}

//export snek_parse_heap_size
// snek_parse_heap_size wraps internal/snekrt.ParseHeapSize for a C
// driver, with the same ok convention as snek_parse_input.
func snek_parse_heap_size(s *C.char) (words C.uint64_t, ok C.int) {
	n, err := snekrt.ParseHeapSize(C.GoString(s))
	if err != nil {
		return 0, 1
	}
	return C.uint64_t(n), 0
}

//export snek_error
func snek_error(code C.int64_t) {
	fmt.Fprintln(os.Stderr, snekrt.ErrorMessage(value.ErrCode(code)))
	os.Exit(int(code))
}

//export snek_print
func snek_print(val C.uint64_t) C.uint64_t {
	fmt.Println(snekrt.Sprint(processMemory{}, uint64(val)))
	return val
}

//export snek_try_gc
func snek_try_gc(count C.int64_t, heapPtr, stackBase, rbp, rsp C.uint64_t) C.uint64_t {
	newHeapPtr, outOfMemory := snekrt.TryGC(
		processMemory{},
		heapStart, heapEnd,
		uint64(heapPtr), uint64(stackBase), uint64(rbp), uint64(rsp),
		int64(count),
	)
	if outOfMemory {
		fmt.Fprintln(os.Stderr, snekrt.ErrorMessage(value.ErrOutOfMemory))
		os.Exit(int(value.ErrOutOfMemory))
	}
	return C.uint64_t(newHeapPtr)
}

// main is never invoked: -buildmode=c-archive requires package main to
// declare one, but the real entry point belongs to whatever driver
// links this archive against an assembled Snek object.
func main() {}
