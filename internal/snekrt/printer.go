package snekrt

import (
	"strconv"
	"strings"

	"github.com/snek-lang/snekc/internal/value"
)

// Sprint renders a Snek value as text, the same recursive traversal
// _examples/original_source/runtime/start.rs's snek_str performs:
// booleans and nil print their fixed names, integers are decoded by
// arithmetic right shift, and tuples print bracketed and
// comma-separated. A set of tuple addresses currently on the print
// stack is tracked so a cyclic tuple prints a placeholder instead of
// recursing forever, per spec.md §4.G's printing contract.
func Sprint(mem Memory, v uint64) string {
	return sprint(mem, v, map[uint64]bool{})
}

func sprint(mem Memory, v uint64, onStack map[uint64]bool) string {
	switch {
	case v == value.True:
		return "true"
	case v == value.False:
		return "false"
	case v == value.Nil:
		return "nil"
	case value.IsNum(v):
		return strconv.FormatInt(value.Decode(v), 10)
	case value.IsTuple(v):
		header := value.Untag(v)
		if onStack[header] {
			return "[...]"
		}
		onStack[header] = true
		defer delete(onStack, header)

		size := value.Decode(mem.Read(header + WordSize))
		elems := make([]string, size)
		for i := int64(0); i < size; i++ {
			elems[i] = sprint(mem, mem.Read(header+uint64(2+i)*WordSize), onStack)
		}
		return "[" + strings.Join(elems, ", ") + "]"
	default:
		return "unknown value: " + strconv.FormatUint(v, 10)
	}
}
