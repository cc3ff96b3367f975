package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds shared by every layer of the classification pipeline.
var (
	// ErrQueryInput is returned for malformed queries, empty training samples
	// and unknown aggregation or filtering methods.
	ErrQueryInput = errors.New("query input error")

	// ErrLearning is returned when a decider could not be fitted.
	ErrLearning = errors.New("learning error")

	// ErrNotFound is returned when a referenced adapter, component or row is absent.
	ErrNotFound = errors.New("not found")

	// ErrInvalidOption is returned for an unknown enum value.
	ErrInvalidOption = errors.New("invalid option")
)

// LearningError describes a failed fit together with the data it was run on.
type LearningError struct {
	Decider string      // decider name
	X       [][]float64 // feature matrix
	Labels  []int       // 1 = searched, 0 = others
	Err     error       // underlying cause
}

func (e *LearningError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: could not learn on the dataset: %v\nX = [", e.Decider, e.Err)
	for i, row := range e.X {
		if i > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%v", row)
	}
	fmt.Fprintf(&sb, "]\nlabels = %v", e.Labels)
	return sb.String()
}

// Unwrap exposes both the ErrLearning kind and the underlying cause.
func (e *LearningError) Unwrap() []error {
	return []error{ErrLearning, e.Err}
}

// NewLearningError wraps cause with the feature matrix and labels of the failed fit.
func NewLearningError(decider string, x [][]float64, labels []int, cause error) error {
	return &LearningError{Decider: decider, X: x, Labels: labels, Err: cause}
}
