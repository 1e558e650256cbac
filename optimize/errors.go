package optimize

import (
	"fmt"
)

// OptimizationError is the terminal failure of a generate call: every retry
// was exhausted (or the call was cancelled) and the last backend failure is
// carried along with its category.
type OptimizationError struct {
	Attempts int
	Category string
	Err      error
}

func (e *OptimizationError) Error() string {
	return fmt.Sprintf("OptimizationError: generation failed after %d attempts (%s): %v", e.Attempts, e.Category, e.Err)
}

func (e *OptimizationError) Unwrap() error {
	return e.Err
}
