package snekrt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/snek-lang/snekc/internal/value"
)

func TestErrorMessageCoversEveryErrCode(t *testing.T) {
	codes := []value.ErrCode{
		value.ErrNotBool,
		value.ErrNotNumber,
		value.ErrEqualityType,
		value.ErrOverflow,
		value.ErrNotTuple,
		value.ErrOutOfBounds,
		value.ErrNilDeref,
		value.ErrOutOfMemory,
	}
	for _, code := range codes {
		assert.NotEmpty(t, ErrorMessage(code))
	}
}
