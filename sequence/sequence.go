package sequence

import (
	"fmt"
	"iter"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/btree"
)

var (
	// ErrOutOfRange is returned when an index lies outside of [0, Len()).
	ErrOutOfRange = errors.New("index out of range")
)

// run is the value stored in the index for a run starting at its key.
type run[T any] struct {
	end   int
	value T
}

// A Run describes a contiguous range [Start, End) of a sequence where every
// element is equal to Value.
type Run[T any] struct {
	Start int
	End   int
	Value T
}

// Len returns the number of elements covered by the run.
func (r Run[T]) Len() int {
	return r.End - r.Start
}

// A Sequence represents a finite ordered sequence of values stored as runs of
// identical values. The zero value is not usable, sequences must be created
// using one of the constructors of the package.
type Sequence[T any] struct {
	runs  btree.Map[int, run[T]]
	count int
	equal func(a, b T) bool
	clone func(T) T
}

// An Option configures a Sequence.
type Option[T any] func(*Sequence[T])

// WithClone sets the function used to duplicate a value when a run is split
// in two. Values are copied by assignment by default, which is not enough for
// types holding references such as slices or maps.
func WithClone[T any](f func(T) T) Option[T] {
	return func(s *Sequence[T]) {
		s.clone = f
	}
}

// New creates and initializes a new empty Sequence comparing values with ==.
func New[T comparable](opts ...Option[T]) *Sequence[T] {
	return NewFunc(func(a, b T) bool { return a == b }, opts...)
}

// NewFunc creates and initializes a new empty Sequence using equal to decide
// whether an appended value extends the last run.
func NewFunc[T any](equal func(a, b T) bool, opts ...Option[T]) *Sequence[T] {
	s := Sequence[T]{
		equal: equal,
		clone: func(x T) T { return x },
	}
	for _, opt := range opts {
		opt(&s)
	}
	return &s
}

// NewFromValues creates a new Sequence using values as its initial content.
// The result has the same runs as a sequence built by appending each value in
// turn.
func NewFromValues[T comparable](values []T, opts ...Option[T]) *Sequence[T] {
	return NewFromValuesFunc(values, func(a, b T) bool { return a == b }, opts...)
}

// NewFromValuesFunc is like NewFromValues but uses equal to compare values.
func NewFromValuesFunc[T any](values []T, equal func(a, b T) bool, opts ...Option[T]) *Sequence[T] {
	s := NewFunc(equal, opts...)
	n := len(values)
	if n == 0 {
		return s
	}
	count := 1
	x := values[0]
	for i := 1; i < n; i++ {
		if !equal(values[i], x) {
			s.addMany(count, x)
			count = 0
			x = values[i]
		}
		count++
	}
	s.addMany(count, x)
	return s
}

// Collect creates a new Sequence from the values yielded by seq.
func Collect[T comparable](seq iter.Seq[T], opts ...Option[T]) *Sequence[T] {
	s := New(opts...)
	count := 0
	var x T
	for v := range seq {
		if count > 0 && v != x {
			s.addMany(count, x)
			count = 0
		}
		x = v
		count++
	}
	if count > 0 {
		s.addMany(count, x)
	}
	return s
}

// Len returns the number of elements in the sequence.
func (s *Sequence[T]) Len() int {
	return s.count
}

// IsEmpty reports whether the sequence holds no elements.
func (s *Sequence[T]) IsEmpty() bool {
	return s.count == 0
}

// RunCount returns the number of runs used to store the sequence.
func (s *Sequence[T]) RunCount() int {
	return s.runs.Len()
}

// Append adds x at the end of the sequence, extending the last run if it
// holds a value equal to x.
func (s *Sequence[T]) Append(x T) {
	if start, last, ok := s.runs.Max(); ok && s.equal(last.value, x) {
		last.end++
		s.runs.Set(start, last)
	} else {
		s.runs.Set(s.count, run[T]{end: s.count + 1, value: x})
	}
	s.count++
}

// addMany adds a new run of count copies of x at the end of the sequence.
// The caller guarantees that x differs from the value of the last run.
func (s *Sequence[T]) addMany(count int, x T) {
	s.runs.Set(s.count, run[T]{end: s.count + count, value: x})
	s.count += count
}

// Split ensures a run starts at index at, returning an error if at is
// outside of [0, Len()). Splitting at an existing boundary is a no-op.
func (s *Sequence[T]) Split(at int) error {
	if at < 0 || at >= s.count {
		return errors.Wrapf(ErrOutOfRange, "cannot split at %d, length is %d", at, s.count)
	}
	s.split(at)
	return nil
}

// split splits the run containing at, which must be a valid index.
func (s *Sequence[T]) split(at int) {
	start, r := s.find(at)
	if start == at {
		return
	}
	s.runs.Set(start, run[T]{end: at, value: r.value})
	s.runs.Set(at, run[T]{end: r.end, value: s.clone(r.value)})
}

// find returns the start and content of the run containing index i, which
// must be a valid index.
func (s *Sequence[T]) find(i int) (int, run[T]) {
	var start int
	var r run[T]
	s.runs.Descend(i, func(k int, v run[T]) bool {
		start, r = k, v
		return false
	})
	return start, r
}

// normalize converts r into an interval of the sequence and splits runs so
// that both ends of the interval are run boundaries. The second return value
// is false if the range is empty or out of bounds.
func (s *Sequence[T]) normalize(r Range) (interval, bool) {
	x, ok := r.interval(s.count)
	if !ok {
		return interval{}, false
	}
	s.split(x.start)
	if x.end < s.count {
		s.split(x.end)
	}
	return x, true
}

// ascend calls f for every run starting in [x.start, x.end), in ascending order.
func (s *Sequence[T]) ascend(x interval, f func(start int, r run[T]) bool) {
	s.runs.Ascend(x.start, func(k int, v run[T]) bool {
		if k >= x.end {
			return false
		}
		return f(k, v)
	})
}

// Assign sets every element of r to x, replacing all the runs covering r with
// a single one. Empty and out of bounds ranges are ignored.
func (s *Sequence[T]) Assign(x T, r Range) {
	bounds, ok := s.normalize(r)
	if !ok {
		return
	}
	var interior []int
	s.ascend(interval{start: bounds.start + 1, end: bounds.end}, func(k int, _ run[T]) bool {
		interior = append(interior, k)
		return true
	})
	for _, k := range interior {
		s.runs.Delete(k)
	}
	s.runs.Set(bounds.start, run[T]{end: bounds.end, value: x})
}

// Map replaces the value of every run with the result of f. f is called once
// per run and not once per element.
func (s *Sequence[T]) Map(f func(T) T) {
	s.mapInterval(f, interval{start: 0, end: s.count})
}

// MapRange is like Map but only transforms the elements of r. Empty and out of
// bounds ranges are ignored.
func (s *Sequence[T]) MapRange(f func(T) T, r Range) {
	bounds, ok := s.normalize(r)
	if !ok {
		return
	}
	s.mapInterval(f, bounds)
}

func (s *Sequence[T]) mapInterval(f func(T) T, x interval) {
	var updated []Run[T]
	s.ascend(x, func(k int, v run[T]) bool {
		updated = append(updated, Run[T]{Start: k, End: v.end, Value: f(v.value)})
		return true
	})
	for _, u := range updated {
		s.runs.Set(u.Start, run[T]{end: u.End, value: u.Value})
	}
}

// All returns an iterator over the elements of the sequence in ascending
// order. Each run is expanded into as many copies of its value as its length.
func (s *Sequence[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		s.runs.Scan(func(k int, v run[T]) bool {
			for i := k; i < v.end; i++ {
				if !yield(v.value) {
					return false
				}
			}
			return true
		})
	}
}

// Runs returns the runs of the sequence in ascending order.
func (s *Sequence[T]) Runs() []Run[T] {
	runs := make([]Run[T], 0, s.runs.Len())
	s.runs.Scan(func(k int, v run[T]) bool {
		runs = append(runs, Run[T]{Start: k, End: v.end, Value: v.value})
		return true
	})
	return runs
}

// Clone returns a copy of s. Values are duplicated using the clone function
// of the sequence.
func (s *Sequence[T]) Clone() *Sequence[T] {
	clone := Sequence[T]{
		count: s.count,
		equal: s.equal,
		clone: s.clone,
	}
	s.runs.Scan(func(k int, v run[T]) bool {
		clone.runs.Set(k, run[T]{end: v.end, value: s.clone(v.value)})
		return true
	})
	return &clone
}

// String returns the runs of the sequence formatted as [start,end)=value.
func (s *Sequence[T]) String() string {
	var b strings.Builder
	b.WriteByte('{')
	s.runs.Scan(func(k int, v run[T]) bool {
		if k > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "[%d,%d)=%v", k, v.end, v.value)
		return true
	})
	b.WriteByte('}')
	return b.String()
}

// check verifies that the runs partition [0, Len()).
func (s *Sequence[T]) check() error {
	next := 0
	var err error
	s.runs.Scan(func(k int, v run[T]) bool {
		switch {
		case k != next:
			err = fmt.Errorf("run starting at %d, want %d", k, next)
		case v.end <= k:
			err = fmt.Errorf("empty run [%d, %d)", k, v.end)
		}
		next = v.end
		return err == nil
	})
	if err == nil && next != s.count {
		err = fmt.Errorf("runs end at %d, length is %d", next, s.count)
	}
	return err
}
