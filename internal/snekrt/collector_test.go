package snekrt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/snek-lang/snekc/internal/value"
)

// testHeapBase is where every test heap starts. It is nonzero because a
// tuple header at address 0 would tag to 1, which is the nil encoding.
const testHeapBase = 0x1000

// heapOf lays out a fresh SliceMemory starting at testHeapBase, sized
// generously enough that every test's heap and single-slot "stack" fit
// without overlapping.
func heapOf(words int) *SliceMemory {
	return &SliceMemory{Base: testHeapBase, Words: make([]uint64, words)}
}

func addr(i uint64) uint64 { return testHeapBase + i*WordSize }

// writeTuple writes a tuple header and elements starting at header,
// returning the tagged reference to it. Callers are responsible for
// placing consecutive tuples back to back with no gaps, matching the
// bump-allocator invariant the collector's linear scans assume.
func writeTuple(mem Memory, header uint64, elems ...uint64) uint64 {
	mem.Write(header, 0)
	mem.Write(header+WordSize, value.Encode(int64(len(elems))))
	for i, e := range elems {
		mem.Write(header+uint64(2+i)*WordSize, e)
	}
	return value.Tag(header)
}

func TestCollectReclaimsUnreachableTuples(t *testing.T) {
	mem := heapOf(40)
	live := writeTuple(mem, addr(0), value.Encode(1))    // words 0-2
	writeTuple(mem, addr(3), value.Encode(2))            // words 3-5, garbage

	stackBase, rsp := addr(39), addr(39)
	mem.Write(rsp, live)

	newHeapPtr := Collect(mem, addr(0), addr(6), stackBase, rsp)

	assert.Equal(t, addr(3), newHeapPtr, "only the live tuple's footprint should remain allocated")
	assert.Equal(t, value.Encode(1), mem.Read(addr(0)+2*WordSize), "the live tuple's element must survive the move")
}

func TestCollectRewritesStackReferencesAfterCompaction(t *testing.T) {
	mem := heapOf(40)
	writeTuple(mem, addr(0), value.Encode(99))          // words 0-2, garbage
	live := writeTuple(mem, addr(3), value.Encode(42)) // words 3-5, live

	stackBase, rsp := addr(39), addr(39)
	mem.Write(rsp, live)

	Collect(mem, addr(0), addr(6), stackBase, rsp)

	moved := mem.Read(rsp)
	assert.Equal(t, value.Tag(addr(0)), moved, "the stack root must be rewritten to the object's new, compacted address")
	assert.Equal(t, value.Encode(42), mem.Read(value.Untag(moved)+2*WordSize))
}

func TestCollectFollowsNestedTupleReferences(t *testing.T) {
	mem := heapOf(40)
	inner := writeTuple(mem, addr(0), value.Encode(7)) // words 0-2
	outer := writeTuple(mem, addr(3), inner)           // words 3-5

	stackBase, rsp := addr(39), addr(39)
	mem.Write(rsp, outer)

	newHeapPtr := Collect(mem, addr(0), addr(6), stackBase, rsp)

	assert.Equal(t, addr(6), newHeapPtr, "both the outer tuple and the inner tuple it references must survive")
}

func TestCollectNeverFollowsBooleanOrNilElements(t *testing.T) {
	mem := heapOf(40)
	live := writeTuple(mem, addr(0), value.True, value.Nil, value.False) // words 0-4

	stackBase, rsp := addr(39), addr(39)
	mem.Write(rsp, live)

	newHeapPtr := Collect(mem, addr(0), addr(5), stackBase, rsp)
	assert.Equal(t, addr(5), newHeapPtr)
}

func TestTryGCReportsOutOfMemoryWhenCollectionDoesNotFreeEnough(t *testing.T) {
	mem := heapOf(40)
	live := writeTuple(mem, addr(0), value.Encode(1)) // words 0-2
	stackBase, rsp := addr(39), addr(39)
	mem.Write(rsp, live)

	_, outOfMemory := TryGC(mem, addr(0), addr(4), addr(3), stackBase, 0, rsp, 100)
	assert.True(t, outOfMemory)
}

func TestTryGCSucceedsWhenCollectionFreesEnough(t *testing.T) {
	mem := heapOf(40)
	writeTuple(mem, addr(0), value.Encode(1)) // words 0-2, garbage
	stackBase, rsp := addr(39), addr(39)
	mem.Write(rsp, value.False) // no live roots

	newHeapPtr, outOfMemory := TryGC(mem, addr(0), addr(16), addr(3), stackBase, 0, rsp, 1)
	assert.False(t, outOfMemory)
	assert.Equal(t, addr(0), newHeapPtr)
}

func TestScanStackIgnoresNonReferenceWords(t *testing.T) {
	mem := heapOf(10)
	stackBase, rsp := addr(9), addr(5)
	mem.Write(addr(9), value.Encode(5))
	mem.Write(addr(8), value.True)
	mem.Write(addr(7), value.Nil)
	mem.Write(addr(6), value.Tag(addr(4)))
	mem.Write(addr(5), value.False)

	roots := ScanStack(mem, stackBase, rsp)
	assert.Equal(t, []uint64{addr(4)}, roots)
}
