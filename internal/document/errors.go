package document

import (
	"errors"
	"fmt"
)

// ErrStructuring is the category sentinel for all structuring failures.
// A failed structuring attempt returns nothing partial; the caller must
// re-supply different input.
var ErrStructuring = errors.New("structuring failed")

// StructuringReason identifies why structuring was rejected.
type StructuringReason string

const (
	ReasonEmpty    StructuringReason = "empty input"
	ReasonTooShort StructuringReason = "too short"
	ReasonTooLong  StructuringReason = "too long"
)

// StructuringError reports a rejected structuring attempt with enough
// context to render a useful message upstream.
type StructuringError struct {
	Reason    StructuringReason
	WordCount int
	MinWords  int
	MaxWords  int
}

func (e *StructuringError) Error() string {
	return fmt.Sprintf("structuring failed: %s (%d words, accepted range %d-%d)",
		e.Reason, e.WordCount, e.MinWords, e.MaxWords)
}

func (e *StructuringError) Unwrap() error { return ErrStructuring }
