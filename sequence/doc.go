/*
Package sequence implements run-compressed sequences of arbitrary values.
It defines the type Sequence, with methods for appending, overwriting, transforming
and aggregating values, and the type Store, with methods for interacting with a
collection of numeric sequences.

A Sequence stores its values as a sorted set of disjoint runs [start, end), each
holding one representative value. Overwriting a range with Assign collapses every
run it covers into a single one, so after repeated assignments the cost of most
operations depends on the number of runs rather than on the number of values.

Ranges are described with Range values built from Span, Closed, From, To or Full.
A range that is empty, inverted or that extends beyond the length of the sequence
is ignored: Assign and MapRange do nothing and FoldRange returns its initial value.

A Sequence is not safe for concurrent use. A Store is essentially a wrapper around
a map of sequences that provides convenience methods safe to use from multiple
goroutines.
*/
package sequence
