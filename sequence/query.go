package sequence

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

var (
	// ErrConversion is returned when a run length cannot be represented by
	// the element type of a sequence.
	ErrConversion = errors.New("run length conversion failed")
)

// Number is the set of element types supported by Sum and SumRange.
type Number interface {
	constraints.Integer | constraints.Float
}

// Fold calls f for every run of s in ascending order, passing the accumulated
// value, the length of the run and its value, and returns the final
// accumulated value.
func Fold[T, A any](s *Sequence[T], initial A, f func(acc A, n int, x T) A) A {
	acc := initial
	s.runs.Scan(func(k int, v run[T]) bool {
		acc = f(acc, v.end-k, v.value)
		return true
	})
	return acc
}

// FoldRange is like Fold but only visits the elements of r. Runs crossing
// the bounds of r are split first. If r is empty or out of bounds, initial is
// returned unchanged.
func FoldRange[T, A any](s *Sequence[T], initial A, f func(acc A, n int, x T) A, r Range) A {
	bounds, ok := s.normalize(r)
	if !ok {
		return initial
	}
	acc := initial
	s.ascend(bounds, func(k int, v run[T]) bool {
		acc = f(acc, v.end-k, v.value)
		return true
	})
	return acc
}

// Sum returns the sum of all elements of s, returning an error if the length
// of a run cannot be converted to T without loss.
func Sum[T Number](s *Sequence[T]) (T, error) {
	return sum(s, Full())
}

// SumRange returns the sum of the elements of r. If r is empty or out of
// bounds, SumRange returns zero.
func SumRange[T Number](s *Sequence[T], r Range) (T, error) {
	return sum(s, r)
}

func sum[T Number](s *Sequence[T], r Range) (T, error) {
	var err error
	total := FoldRange(s, T(0), func(acc T, n int, x T) T {
		if err != nil {
			return acc
		}
		m, e := fromCount[T](n)
		if e != nil {
			err = e
			return acc
		}
		return acc + m*x
	}, r)
	if err != nil {
		return 0, err
	}
	return total, nil
}

// fromCount converts n to T, returning an error if the conversion loses
// information.
func fromCount[T Number](n int) (T, error) {
	x := T(n)
	if float64(x) != float64(n) {
		return 0, errors.Wrapf(ErrConversion, "%d does not fit in %T", n, x)
	}
	// float64(n) rounds counts above 2^53, compare integers instead.
	if isFloat[T]() {
		if f := float64(x); f >= 1<<63 || int64(f) != int64(n) {
			return 0, errors.Wrapf(ErrConversion, "%d cannot be represented exactly by %T", n, x)
		}
	}
	return x, nil
}

func isFloat[T Number]() bool {
	one := T(1)
	return one/2 != 0
}

// At returns the element at index i. The second return value is false if i is
// outside of [0, Len()).
func (s *Sequence[T]) At(i int) (T, bool) {
	if i < 0 || i >= s.count {
		var zero T
		return zero, false
	}
	_, r := s.find(i)
	return r.value, true
}

// Values returns the elements of s within r. Unlike FoldRange, Values does
// not split runs. The method returns nil if r is empty or out of bounds.
func (s *Sequence[T]) Values(r Range) []T {
	x, ok := r.interval(s.count)
	if !ok {
		return nil
	}
	data := make([]T, 0, x.length())
	start, _ := s.find(x.start)
	s.runs.Ascend(start, func(k int, v run[T]) bool {
		y, ok := x.intersect(interval{start: k, end: v.end})
		if !ok {
			return false
		}
		for i := 0; i < y.length(); i++ {
			data = append(data, v.value)
		}
		return true
	})
	return data
}

// RunsIn returns the runs of s overlapping r, truncated to r. Like Values,
// RunsIn does not split runs.
func (s *Sequence[T]) RunsIn(r Range) []Run[T] {
	x, ok := r.interval(s.count)
	if !ok {
		return nil
	}
	var runs []Run[T]
	start, _ := s.find(x.start)
	s.runs.Ascend(start, func(k int, v run[T]) bool {
		y, ok := x.intersect(interval{start: k, end: v.end})
		if !ok {
			return false
		}
		runs = append(runs, Run[T]{Start: y.start, End: y.end, Value: v.value})
		return true
	})
	return runs
}
