package snekrt

import "github.com/snek-lang/snekc/internal/value"

// pairKey packs two tuple addresses into one map key for the
// seen-pairs cycle rule below; address order matters, since the
// traversal always compares a's elements against b's elements in the
// same order.
type pairKey struct{ a, b uint64 }

// Equal implements structural tuple equality (spec.md §4.G): two
// values are equal if they are bit-identical, or if both are tuple
// references of the same size whose corresponding elements are equal.
// A set of previously-seen address pairs makes the recursion
// co-inductive, so a pair of cyclic structures that recurs during
// traversal is treated as equal rather than looping forever.
func Equal(mem Memory, a, b uint64) bool {
	return equal(mem, a, b, map[pairKey]bool{})
}

func equal(mem Memory, a, b uint64, seen map[pairKey]bool) bool {
	if a == b {
		return true
	}
	if !value.IsTuple(a) || !value.IsTuple(b) {
		return false
	}

	ha, hb := value.Untag(a), value.Untag(b)
	key := pairKey{ha, hb}
	if seen[key] {
		return true
	}
	seen[key] = true

	sizeA := value.Decode(mem.Read(ha + WordSize))
	sizeB := value.Decode(mem.Read(hb + WordSize))
	if sizeA != sizeB {
		return false
	}

	for i := int64(0); i < sizeA; i++ {
		ea := mem.Read(ha + uint64(2+i)*WordSize)
		eb := mem.Read(hb + uint64(2+i)*WordSize)
		if !equal(mem, ea, eb, seen) {
			return false
		}
	}
	return true
}
