package snekrt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/snek-lang/snekc/internal/value"
)

func TestParseInputRecognizesBooleanKeywords(t *testing.T) {
	v, err := ParseInput("true")
	assert.NoError(t, err)
	assert.Equal(t, value.True, v)

	v, err = ParseInput("false")
	assert.NoError(t, err)
	assert.Equal(t, value.False, v)
}

func TestParseInputEncodesIntegers(t *testing.T) {
	v, err := ParseInput("-7")
	assert.NoError(t, err)
	assert.Equal(t, value.Encode(-7), v)
}

func TestParseInputRejectsGarbage(t *testing.T) {
	_, err := ParseInput("banana")
	assert.Error(t, err)
}

func TestParseInputRejectsOutOfRangeIntegers(t *testing.T) {
	_, err := ParseInput("99999999999999999999999999")
	assert.Error(t, err)
}

func TestParseHeapSizeParsesNonNegativeIntegers(t *testing.T) {
	n, err := ParseHeapSize("10000")
	assert.NoError(t, err)
	assert.Equal(t, 10000, n)
}

func TestParseHeapSizeRejectsNegativeOrGarbage(t *testing.T) {
	_, err := ParseHeapSize("-1")
	assert.Error(t, err)

	_, err = ParseHeapSize("nope")
	assert.Error(t, err)
}
