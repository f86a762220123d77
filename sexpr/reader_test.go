package sexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadAllFlatAtom(t *testing.T) {
	vs, err := ReadAll("42")
	assert.NoError(t, err)
	assert.Len(t, vs, 1)
	assert.True(t, vs[0].IsAtom())
	assert.Equal(t, "42", vs[0].Atom)
}

func TestReadAllNestedList(t *testing.T) {
	vs, err := ReadAll("(+ 1 (* 2 3))")
	assert.NoError(t, err)
	assert.Len(t, vs, 1)
	top := vs[0]
	assert.False(t, top.IsAtom())
	assert.Len(t, top.List, 3)
	assert.Equal(t, "+", top.List[0].Atom)
	assert.False(t, top.List[2].IsAtom())
	assert.Equal(t, "*", top.List[2].List[0].Atom)
}

func TestReadAllMultipleTopLevelForms(t *testing.T) {
	vs, err := ReadAll("(fun (f x) x) (f 5)")
	assert.NoError(t, err)
	assert.Len(t, vs, 2)
}

func TestReadAllRejectsUnbalancedInput(t *testing.T) {
	_, err := ReadAll("(+ 1 2")
	assert.Error(t, err)

	_, err = ReadAll("(+ 1 2))")
	assert.Error(t, err)
}

func TestReadAllNegativeNumberAtom(t *testing.T) {
	vs, err := ReadAll("(- -3 4)")
	assert.NoError(t, err)
	assert.Equal(t, "-3", vs[0].List[1].Atom)
}
