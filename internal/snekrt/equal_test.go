package snekrt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/snek-lang/snekc/internal/value"
)

func TestEqualBitIdenticalValues(t *testing.T) {
	mem := heapOf(1)
	assert.True(t, Equal(mem, value.Encode(5), value.Encode(5)))
	assert.False(t, Equal(mem, value.Encode(5), value.Encode(6)))
	assert.False(t, Equal(mem, value.True, value.False))
}

func TestEqualTuplesCompareStructurallyNotByAddress(t *testing.T) {
	mem := heapOf(10)
	a := writeTuple(mem, addr(0), value.Encode(1), value.Encode(2))
	b := writeTuple(mem, addr(4), value.Encode(1), value.Encode(2))
	assert.True(t, Equal(mem, a, b))
}

func TestEqualTuplesOfDifferentSizeAreUnequal(t *testing.T) {
	mem := heapOf(10)
	a := writeTuple(mem, addr(0), value.Encode(1))
	b := writeTuple(mem, addr(3), value.Encode(1), value.Encode(2))
	assert.False(t, Equal(mem, a, b))
}

func TestEqualRecursesIntoNestedTuples(t *testing.T) {
	mem := heapOf(20)
	innerA := writeTuple(mem, addr(8), value.Encode(1))
	innerB := writeTuple(mem, addr(12), value.Encode(1))
	a := writeTuple(mem, addr(0), innerA)
	b := writeTuple(mem, addr(4), innerB)
	assert.True(t, Equal(mem, a, b))
}

func TestEqualCyclicTuplesTreatRecurringPairsAsEqual(t *testing.T) {
	mem := heapOf(10)
	selfA := value.Tag(addr(0))
	selfB := value.Tag(addr(3))
	writeTuple(mem, addr(0), selfA)
	writeTuple(mem, addr(3), selfB)
	assert.True(t, Equal(mem, selfA, selfB))
}
