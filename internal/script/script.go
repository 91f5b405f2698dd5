// Package script loads replay scripts describing sequences, statements and
// queries, and runs them against a sequence store.
package script

import (
	"os"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/geofduf/runseq/sequence"
)

// Element kinds.
const (
	ElementInt   = "int"
	ElementFloat = "float"
)

// Statement operations.
const (
	OpAppend    = "append"
	OpAssign    = "assign"
	OpIncrement = "increment"
)

// Query operations.
const (
	OpSum    = "sum"
	OpValues = "values"
	OpRuns   = "runs"
	OpLen    = "len"
)

// ErrInvalidScript is returned when a script fails validation.
var ErrInvalidScript = errors.New("invalid script")

// A Script describes the initial content of a store, the statements to
// execute against it and the queries to answer once they are executed.
type Script struct {
	Element    string      `yaml:"element"`
	Sequences  []Sequence  `yaml:"sequences"`
	Statements []Statement `yaml:"statements"`
	Queries    []Query     `yaml:"queries"`
}

// A Sequence is an initial sequence of the store.
type Sequence struct {
	Key    string    `yaml:"key"`
	Values []float64 `yaml:"values"`
}

// Bounds selects a range of a sequence. A missing bound extends to the
// corresponding end of the sequence. End is exclusive unless Inclusive is set.
type Bounds struct {
	Start     *int `yaml:"start"`
	End       *int `yaml:"end"`
	Inclusive bool `yaml:"inclusive"`
}

// A Statement is an operation modifying a sequence.
type Statement struct {
	Key    string  `yaml:"key"`
	Op     string  `yaml:"op"`
	Value  float64 `yaml:"value"`
	Create bool    `yaml:"create"`
	Bounds `yaml:",inline"`
}

// A Query is an operation reading a sequence.
type Query struct {
	Key    string `yaml:"key"`
	Op     string `yaml:"op"`
	Bounds `yaml:",inline"`
}

// Load reads and validates the script stored in the file at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read script")
	}
	return Parse(data)
}

// Parse decodes and validates a script.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "cannot decode script")
	}
	if s.Element == "" {
		s.Element = ElementInt
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Script) validate() error {
	switch s.Element {
	case ElementInt, ElementFloat:
	default:
		return errors.Wrapf(ErrInvalidScript, "unknown element %q", s.Element)
	}
	for i, x := range s.Sequences {
		if x.Key == "" {
			return errors.Wrapf(ErrInvalidScript, "sequence %d: missing key", i)
		}
		if s.Element == ElementInt {
			for _, v := range x.Values {
				if !isInteger(v) {
					return errors.Wrapf(ErrInvalidScript, "sequence %q: %v is not an integer", x.Key, v)
				}
			}
		}
	}
	for i, x := range s.Statements {
		if x.Key == "" {
			return errors.Wrapf(ErrInvalidScript, "statement %d: missing key", i)
		}
		switch x.Op {
		case OpAppend, OpAssign, OpIncrement:
		default:
			return errors.Wrapf(ErrInvalidScript, "statement %d: unknown op %q", i, x.Op)
		}
		if s.Element == ElementInt && !isInteger(x.Value) {
			return errors.Wrapf(ErrInvalidScript, "statement %d: %v is not an integer", i, x.Value)
		}
	}
	for i, x := range s.Queries {
		if x.Key == "" {
			return errors.Wrapf(ErrInvalidScript, "query %d: missing key", i)
		}
		switch x.Op {
		case OpSum, OpValues, OpRuns, OpLen:
		default:
			return errors.Wrapf(ErrInvalidScript, "query %d: unknown op %q", i, x.Op)
		}
	}
	return nil
}

// Range converts b to a sequence range.
func (b Bounds) Range() sequence.Range {
	var r sequence.Range
	if b.Start != nil {
		r.Start = sequence.Included(*b.Start)
	}
	if b.End != nil {
		if b.Inclusive {
			r.End = sequence.Included(*b.End)
		} else {
			r.End = sequence.Excluded(*b.End)
		}
	}
	return r
}

// A Result is the answer to a query.
type Result struct {
	Key   string `json:"key"`
	Op    string `json:"op"`
	Range string `json:"range"`
	Value any    `json:"value"`
}

// A RunResult describes a run in the result of a runs query.
type RunResult struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Value any `json:"value"`
}

// Run executes s against a new store and returns the results of its queries.
func Run(s *Script, logger *zap.Logger) ([]Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch s.Element {
	case ElementFloat:
		return run[float64](s, logger)
	default:
		return run[int64](s, logger)
	}
}

func run[T sequence.Number](s *Script, logger *zap.Logger) ([]Result, error) {
	store := sequence.NewStore[T](logger)
	for _, x := range s.Sequences {
		values := make([]T, len(x.Values))
		for i, v := range x.Values {
			values[i] = T(v)
		}
		seq := sequence.NewFromValues(values)
		store.Add(x.Key, seq)
		logger.Debug("sequence loaded",
			zap.String("key", x.Key),
			zap.Int("length", seq.Len()),
			zap.Int("runs", seq.RunCount()))
	}

	statements := make([]sequence.Statement[T], len(s.Statements))
	for i, x := range s.Statements {
		statements[i] = sequence.Statement[T]{
			Key:               x.Key,
			Type:              statementType(x.Op),
			Value:             T(x.Value),
			Range:             x.Range(),
			CreateIfNotExists: x.Create,
		}
	}
	if err := store.Batch(statements); err != nil {
		return nil, errors.Wrap(err, "cannot execute statements")
	}

	results := make([]Result, 0, len(s.Queries))
	for i, q := range s.Queries {
		r := q.Range()
		value, err := query(store, q.Key, q.Op, r)
		if err != nil {
			return nil, errors.Wrapf(err, "query %d", i)
		}
		results = append(results, Result{Key: q.Key, Op: q.Op, Range: r.String(), Value: value})
	}
	return results, nil
}

func query[T sequence.Number](store *sequence.Store[T], key, op string, r sequence.Range) (any, error) {
	if op == OpSum {
		return store.Sum(key, r)
	}
	seq, ok := store.Get(key)
	if !ok {
		return nil, errors.Wrap(sequence.ErrKeyNotFound, key)
	}
	switch op {
	case OpValues:
		values := seq.Values(r)
		if values == nil {
			values = []T{}
		}
		return values, nil
	case OpRuns:
		runs := []RunResult{}
		for _, x := range seq.RunsIn(r) {
			runs = append(runs, RunResult{Start: x.Start, End: x.End, Value: x.Value})
		}
		return runs, nil
	default:
		return seq.Len(), nil
	}
}

func statementType(op string) uint8 {
	switch op {
	case OpAssign:
		return sequence.StatementAssign
	case OpIncrement:
		return sequence.StatementIncrement
	default:
		return sequence.StatementAppend
	}
}

// maxExactInteger is the largest magnitude up to which every integer decoded
// as a float64 keeps its exact value.
const maxExactInteger = 1<<53 - 1

// isInteger reports whether v is an integer decoded without rounding.
func isInteger(v float64) bool {
	return v >= -maxExactInteger && v <= maxExactInteger && v == float64(int64(v))
}
