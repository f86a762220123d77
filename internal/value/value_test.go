package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []int64{0, 1, -1, 42, MaxInt, MinInt, MaxInt - 1, MinInt + 1}

	for _, n := range tests {
		got := Decode(Encode(n))
		assert.Equal(t, n, got, "round trip for %d", n)
	}
}

func TestTagPredicatesAreMutuallyExclusive(t *testing.T) {
	tests := []struct {
		name string
		v    uint64
		num  bool
		bl   bool
		nl   bool
		tup  bool
	}{
		{"zero", Encode(0), true, false, false, false},
		{"negative", Encode(-5), true, false, false, false},
		{"true", True, false, true, false, false},
		{"false", False, false, true, false, false},
		{"nil", Nil, false, false, true, false},
		{"tuple", Tag(0x1000), false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.num, IsNum(tt.v))
			assert.Equal(t, tt.bl, IsBool(tt.v))
			assert.Equal(t, tt.nl, IsNil(tt.v))
			assert.Equal(t, tt.tup, IsTuple(tt.v))
		})
	}
}

func TestTagUntagRoundTrip(t *testing.T) {
	addr := uint64(0x4000)
	assert.Equal(t, addr, Untag(Tag(addr)))
}

func TestBool(t *testing.T) {
	assert.Equal(t, True, Bool(true))
	assert.Equal(t, False, Bool(false))
}
