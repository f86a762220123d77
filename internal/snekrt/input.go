package snekrt

import (
	"fmt"
	"strconv"

	"github.com/snek-lang/snekc/internal/value"
)

// DefaultInput and DefaultHeapWords match the CLI defaults spec.md §6
// fixes for the runtime binary: "false" when no input is given, 10000
// words of heap when no heap size is given.
const (
	DefaultInput     = "false"
	DefaultHeapWords = 10000
)

// ParseInput encodes the runtime binary's textual input argument into
// its tagged word form, the same three-way dispatch
// _examples/original_source/runtime/start.rs's parse_input performs:
// the literal keywords true/false become the boolean singletons,
// anything else must parse as a signed decimal integer.
func ParseInput(s string) (uint64, error) {
	switch s {
	case "true":
		return value.True, nil
	case "false":
		return value.False, nil
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid input %q: not true, false, or an integer", s)
	}
	if n < value.MinInt || n > value.MaxInt {
		return 0, fmt.Errorf("invalid input %q: out of range for a 63-bit Snek integer", s)
	}
	return value.Encode(n), nil
}

// ParseHeapSize parses the runtime binary's optional heap-size
// argument, a count of 64-bit words.
func ParseHeapSize(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid heap size %q: not a non-negative integer", s)
	}
	return n, nil
}
