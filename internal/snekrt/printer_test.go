package snekrt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/snek-lang/snekc/internal/value"
)

func TestSprintSingletonsAndNumbers(t *testing.T) {
	mem := heapOf(1)
	assert.Equal(t, "true", Sprint(mem, value.True))
	assert.Equal(t, "false", Sprint(mem, value.False))
	assert.Equal(t, "nil", Sprint(mem, value.Nil))
	assert.Equal(t, "42", Sprint(mem, value.Encode(42)))
	assert.Equal(t, "-7", Sprint(mem, value.Encode(-7)))
}

func TestSprintTupleIsBracketedAndCommaSeparated(t *testing.T) {
	mem := heapOf(10)
	tup := writeTuple(mem, addr(0), value.Encode(1), value.Encode(2), value.True)
	assert.Equal(t, "[1, 2, true]", Sprint(mem, tup))
}

func TestSprintNestedTuple(t *testing.T) {
	mem := heapOf(10)
	inner := writeTuple(mem, addr(4), value.Encode(9))
	outer := writeTuple(mem, addr(0), inner, value.Encode(1))
	assert.Equal(t, "[[9], 1]", Sprint(mem, outer))
}

func TestSprintCyclicTupleTerminatesWithAPlaceholder(t *testing.T) {
	mem := heapOf(10)
	header := addr(0)
	self := value.Tag(header)
	writeTuple(mem, header, self)
	assert.Equal(t, "[[...]]", Sprint(mem, self))
}
