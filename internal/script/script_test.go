package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geofduf/runseq/sequence"
)

const testScript = `
element: int
sequences:
  - key: a
    values: [1, 1, 2, 3, 4, 4, 4, 5, 7, 8]
statements:
  - {key: a, op: assign, value: 10, start: 3, end: 6}
  - {key: b, op: append, value: 2, create: true}
  - {key: b, op: append, value: 2}
queries:
  - {key: a, op: sum, start: 3, end: 6}
  - {key: a, op: values}
  - {key: a, op: runs, start: 2, end: 6, inclusive: true}
  - {key: b, op: len}
  - {key: a, op: sum, start: 8, end: 20}
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(testScript))
	require.NoError(t, err)
	assert.Equal(t, ElementInt, s.Element)
	require.Len(t, s.Sequences, 1)
	assert.Equal(t, []float64{1, 1, 2, 3, 4, 4, 4, 5, 7, 8}, s.Sequences[0].Values)
	require.Len(t, s.Statements, 3)
	assert.Equal(t, OpAssign, s.Statements[0].Op)
	require.NotNil(t, s.Statements[0].Start)
	assert.Equal(t, 3, *s.Statements[0].Start)
	assert.True(t, s.Statements[1].Create)
	require.Len(t, s.Queries, 5)
	assert.True(t, s.Queries[2].Inclusive)
	assert.Nil(t, s.Queries[1].Start)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		id   int
		data string
	}{
		{1, "element: string"},
		{2, "sequences: [{values: [1]}]"},
		{3, "sequences: [{key: a, values: [1.5]}]"},
		{4, "statements: [{key: a, op: delete}]"},
		{5, "statements: [{op: append}]"},
		{6, "statements: [{key: a, op: append, value: 0.5}]"},
		{7, "queries: [{key: a, op: max}]"},
		{8, "sequences: [{key: a, values: [9007199254740993]}]"},
		{9, "statements: [{key: a, op: assign, value: -9007199254740993}]"},
	}
	for _, tt := range tests {
		if _, err := Parse([]byte(tt.data)); !assert.ErrorIs(t, err, ErrInvalidScript, "test %d", tt.id) {
			return
		}
	}
	_, err := Parse([]byte("element: [int"))
	assert.Error(t, err)
}

func TestIsInteger(t *testing.T) {
	tests := []struct {
		id   int
		v    float64
		want bool
	}{
		{1, 0, true},
		{2, -42, true},
		{3, 1.5, false},
		{4, 1<<53 - 1, true},
		{5, -(1<<53 - 1), true},
		{6, 1 << 53, false},
		{7, 1 << 60, false},
	}
	for _, tt := range tests {
		if got := isInteger(tt.v); got != tt.want {
			t.Fatalf("test %d: isInteger(%v) = %t, want %t", tt.id, tt.v, got, tt.want)
		}
	}
}

func TestBoundsRange(t *testing.T) {
	start, end := 2, 5
	tests := []struct {
		id   int
		b    Bounds
		want sequence.Range
	}{
		{1, Bounds{}, sequence.Full()},
		{2, Bounds{Start: &start, End: &end}, sequence.Span(2, 5)},
		{3, Bounds{Start: &start, End: &end, Inclusive: true}, sequence.Closed(2, 5)},
		{4, Bounds{Start: &start}, sequence.From(2)},
		{5, Bounds{End: &end}, sequence.To(5)},
	}
	for _, tt := range tests {
		if got := tt.b.Range(); got != tt.want {
			t.Fatalf("test %d: got %s, want %s", tt.id, got, tt.want)
		}
	}
}

func TestRun(t *testing.T) {
	s, err := Parse([]byte(testScript))
	require.NoError(t, err)
	results, err := Run(s, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, results, 5)

	assert.Equal(t, int64(30), results[0].Value)
	assert.Equal(t, "[3, 6)", results[0].Range)
	assert.Equal(t, []int64{1, 1, 2, 10, 10, 10, 4, 5, 7, 8}, results[1].Value)
	assert.Equal(t, []RunResult{
		{Start: 2, End: 3, Value: int64(2)},
		{Start: 3, End: 6, Value: int64(10)},
		{Start: 6, End: 7, Value: int64(4)},
	}, results[2].Value)
	assert.Equal(t, 2, results[3].Value)
	assert.Equal(t, int64(0), results[4].Value)
}

func TestRunFloat(t *testing.T) {
	s, err := Parse([]byte(`
element: float
sequences:
  - {key: x, values: [0.5, 0.5, 1.5]}
statements:
  - {key: x, op: increment, value: 0.25, start: 2}
queries:
  - {key: x, op: sum}
`))
	require.NoError(t, err)
	results, err := Run(s, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 2.75, results[0].Value, 1e-9)
}

func TestRunFailures(t *testing.T) {
	s, err := Parse([]byte("statements: [{key: missing, op: append, value: 1}]"))
	require.NoError(t, err)
	_, err = Run(s, nil)
	assert.ErrorIs(t, err, sequence.ErrKeyNotFound)

	s, err = Parse([]byte("queries: [{key: missing, op: values}]"))
	require.NoError(t, err)
	_, err = Run(s, nil)
	assert.ErrorIs(t, err, sequence.ErrKeyNotFound)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testScript), 0o644))
	s, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, s.Queries, 5)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
