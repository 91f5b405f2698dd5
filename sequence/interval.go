package sequence

import "fmt"

type boundKind uint8

const (
	boundUnbounded boundKind = iota
	boundIncluded
	boundExcluded
)

// A Bound is one end of a Range. The zero Bound is unbounded.
type Bound struct {
	kind  boundKind
	index int
}

// Unbounded returns a bound extending to the corresponding end of the sequence.
func Unbounded() Bound { return Bound{} }

// Included returns a bound that includes index i.
func Included(i int) Bound { return Bound{kind: boundIncluded, index: i} }

// Excluded returns a bound that excludes index i.
func Excluded(i int) Bound { return Bound{kind: boundExcluded, index: i} }

// A Range represents a set of contiguous indexes of a sequence. The zero
// Range covers the whole sequence.
type Range struct {
	Start Bound
	End   Bound
}

// Span returns the half-open range [start, end).
func Span(start, end int) Range {
	return Range{Start: Included(start), End: Excluded(end)}
}

// Closed returns the closed range [start, end].
func Closed(start, end int) Range {
	return Range{Start: Included(start), End: Included(end)}
}

// From returns the range [start, len).
func From(start int) Range {
	return Range{Start: Included(start)}
}

// To returns the range [0, end).
func To(end int) Range {
	return Range{End: Excluded(end)}
}

// Full returns the range covering the whole sequence.
func Full() Range {
	return Range{}
}

// interval converts r into the half-open interval [l, h) against a sequence of
// length n. If the result is empty, inverted, negative or extends beyond n, the
// second value returned by the method is false.
func (r Range) interval(n int) (interval, bool) {
	var x interval
	switch r.Start.kind {
	case boundIncluded:
		x.start = r.Start.index
	case boundExcluded:
		x.start = r.Start.index + 1
	}
	switch r.End.kind {
	case boundUnbounded:
		x.end = n
	case boundIncluded:
		x.end = r.End.index + 1
	case boundExcluded:
		x.end = r.End.index
	}
	if x.start < 0 || x.start >= x.end || x.end > n {
		return interval{}, false
	}
	return x, true
}

// String returns r in interval notation, using len for an unbounded end.
func (r Range) String() string {
	var lo, hi string
	switch r.Start.kind {
	case boundUnbounded:
		lo = "[0"
	case boundIncluded:
		lo = fmt.Sprintf("[%d", r.Start.index)
	case boundExcluded:
		lo = fmt.Sprintf("(%d", r.Start.index)
	}
	switch r.End.kind {
	case boundUnbounded:
		hi = "len)"
	case boundIncluded:
		hi = fmt.Sprintf("%d]", r.End.index)
	case boundExcluded:
		hi = fmt.Sprintf("%d)", r.End.index)
	}
	return lo + ", " + hi
}

// interval represents a half-open interval [start, end).
type interval struct {
	start int
	end   int
}

func (x interval) length() int {
	return x.end - x.start
}

// intersect returns the intersection with the half-open interval y. If no
// intersection is found, the second value returned by the method
// is false.
func (x interval) intersect(y interval) (interval, bool) {
	r := interval{start: max(x.start, y.start), end: min(x.end, y.end)}
	if r.start >= r.end {
		return interval{}, false
	}
	return r, true
}
