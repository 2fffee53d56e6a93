package vote

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCollection is returned when there are no labelings to vote over.
	ErrEmptyCollection = errors.New("vote: no label vectors to vote over")
	// ErrInconsistentVertexCount is returned when label vectors differ in length.
	ErrInconsistentVertexCount = errors.New("vote: inconsistent vertex count")
)

// InconsistentLengthError names the first label vector whose length differs
// from the first vector in the collection.
type InconsistentLengthError struct {
	Index    int
	Expected int
	Actual   int
}

func (e *InconsistentLengthError) Error() string {
	return fmt.Sprintf("%v: vector %d has %d vertices, expected %d", ErrInconsistentVertexCount, e.Index, e.Actual, e.Expected)
}

func (e *InconsistentLengthError) Unwrap() error { return ErrInconsistentVertexCount }
