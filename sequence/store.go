package sequence

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Statement types.
const (
	StatementAppend uint8 = iota
	StatementAssign
	StatementIncrement
	statementUnknown
)

var (
	// ErrUnknownStatement is returned when a statement has an unsupported type.
	ErrUnknownStatement = errors.New("unknown statement type")
	// ErrKeyNotFound is returned when no sequence is associated to a key.
	ErrKeyNotFound = errors.New("key does not exist")
)

// A Statement represents an operation to perform on a store. Value is the
// appended value for StatementAppend, the assigned value for StatementAssign
// and the delta added to every element of Range for StatementIncrement. Range
// is not used by StatementAppend.
type Statement[T Number] struct {
	Key               string
	Type              uint8
	Value             T
	Range             Range
	CreateIfNotExists bool
}

// A Store represents a collection of numeric Sequences. A Store can be used
// simultaneously from multiple goroutines.
type Store[T Number] struct {
	m      map[string]*Sequence[T]
	mu     sync.RWMutex
	logger *zap.Logger
}

// NewStore creates and intializes a new Store. A nil logger disables logging.
func NewStore[T Number](logger *zap.Logger) *Store[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store[T]{m: make(map[string]*Sequence[T]), logger: logger}
}

// New creates and adds a new empty Sequence to the store using key as its
// identifier. If a Sequence already exists for the identifier it is silently
// replaced with the new Sequence.
func (s *Store[T]) New(key string) {
	s.mu.Lock()
	s.m[key] = New[T]()
	s.mu.Unlock()
}

// Add adds a copy of x to the store using key as its identifier.
// If a Sequence already exists for the identifier it is silently replaced with the new
// Sequence.
func (s *Store[T]) Add(key string, x *Sequence[T]) {
	s.mu.Lock()
	s.m[key] = x.Clone()
	s.mu.Unlock()
}

// Get returns a copy of the Sequence associated to key. The second return value is
// true if the key exists in the store and false if not.
func (s *Store[T]) Get(key string) (*Sequence[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	x, ok := s.m[key]
	if !ok {
		return nil, false
	}
	return x.Clone(), true
}

// Delete removes the Sequence associated to key from the store.
func (s *Store[T]) Delete(key string) {
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
}

// Keys returns the identifiers known in the store in ascending order.
func (s *Store[T]) Keys() []string {
	s.mu.RLock()
	keys := maps.Keys(s.m)
	s.mu.RUnlock()
	slices.Sort(keys)
	return keys
}

// Sum returns the sum of the elements of r in the Sequence associated to key.
// Summing a range splits runs, so the store is locked for writing.
func (s *Store[T]) Sum(key string, r Range) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	x, ok := s.m[key]
	if !ok {
		return 0, errors.Wrap(ErrKeyNotFound, key)
	}
	return SumRange(x, r)
}

// Execute executes a statement against the store, returning an error if the
// statement cannot be executed.
func (s *Store[T]) Execute(statement Statement[T]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.executeUnsafe(statement)
}

// Batch executes multiple statements against the store. Individual errors are non
// blocking, the returned error combines the errors of all the statements that
// could not be executed.
func (s *Store[T]) Batch(statements []Statement[T]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	for i, v := range statements {
		if e := s.executeUnsafe(v); e != nil {
			s.logger.Warn("statement failed",
				zap.Int("index", i),
				zap.String("key", v.Key),
				zap.Error(e))
			err = multierr.Append(err, errors.Wrapf(e, "at index %d", i))
		}
	}
	return err
}

// executeUnsafe executes a statement against the store, returning an error if the
// statement cannot be executed.
// This method is not goroutine-safe. The caller is responsible for properly
// acquiring / releasing the lock on the store.
func (s *Store[T]) executeUnsafe(statement Statement[T]) error {
	if statement.Type >= statementUnknown {
		return errors.Wrapf(ErrUnknownStatement, "type %d", statement.Type)
	}
	x, ok := s.m[statement.Key]
	if !ok {
		if !statement.CreateIfNotExists {
			return errors.Wrap(ErrKeyNotFound, statement.Key)
		}
		x = New[T]()
		s.m[statement.Key] = x
	}
	switch statement.Type {
	case StatementAppend:
		x.Append(statement.Value)
	case StatementAssign:
		x.Assign(statement.Value, statement.Range)
	case StatementIncrement:
		delta := statement.Value
		x.MapRange(func(v T) T { return v + delta }, statement.Range)
	}
	s.logger.Debug("statement executed",
		zap.String("key", statement.Key),
		zap.Uint8("type", statement.Type),
		zap.Stringer("range", statement.Range),
		zap.Int("length", x.Len()),
		zap.Int("runs", x.RunCount()))
	return nil
}
