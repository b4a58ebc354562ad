package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// CardinalityKind distinguishes the three repetition shapes.
type CardinalityKind int

const (
	CardinalityNone CardinalityKind = iota
	CardinalityFixed
	CardinalityRange
)

// Range bounds the number of instances of a field. Max 0 means unbounded.
type Range struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// String renders the range in the declaration syntax.
func (r Range) String() string {
	if r.Max == 0 {
		return fmt.Sprintf("%d-", r.Min)
	}
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// Bounded reports whether the range has an upper limit.
func (r Range) Bounded() bool {
	return r.Max > 0
}

// Cardinality is the parsed form of Control.Cardinality.
type Cardinality struct {
	Kind  CardinalityKind
	Count int
	Range Range
}

// ParseCardinality reads "", "N", "min-max", "min-" and "-max". Zero or
// malformed values coerce to a fixed count of one.
func ParseCardinality(raw string) Cardinality {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Cardinality{Kind: CardinalityNone}
	}

	lower, upper, isRange := strings.Cut(raw, "-")
	if !isRange {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Cardinality{Kind: CardinalityFixed, Count: 1}
		}
		return Cardinality{Kind: CardinalityFixed, Count: n}
	}

	min, ok := parseBound(lower)
	if !ok {
		return Cardinality{Kind: CardinalityFixed, Count: 1}
	}
	max, ok := parseBound(upper)
	if !ok || (max > 0 && max < min) || (min == 0 && max == 0 && upper != "" && lower != "") {
		return Cardinality{Kind: CardinalityFixed, Count: 1}
	}
	return Cardinality{Kind: CardinalityRange, Range: Range{Min: min, Max: max}}
}

func parseBound(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
