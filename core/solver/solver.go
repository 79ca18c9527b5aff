// Package solver hands models to an LP engine.
package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/esom/core/lp"
)

// Status is the terminal outcome of a solve.
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusUnbounded
	StatusTimeout
	StatusError
)

// String returns the label used in result files.
func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "Optimal"
	case StatusInfeasible:
		return "Infeasible"
	case StatusUnbounded:
		return "Unbounded"
	case StatusTimeout:
		return "Timeout"
	default:
		return "Error"
	}
}

// Solution is the result of one solver call. Objective and Values are only
// meaningful when Status is StatusOptimal.
type Solution struct {
	Status    Status
	Objective float64
	Values    map[string]float64
}

// HasObjective reports whether Objective holds a value.
func (s Solution) HasObjective() bool { return s.Status == StatusOptimal }

// Value returns the solved value of a named variable, or 0 when unknown.
func (s Solution) Value(name string) float64 { return s.Values[name] }

// Solver hands a model to an LP engine. Implementations are safe for
// concurrent use and keep no model state between calls.
type Solver interface {
	Solve(ctx context.Context, m *lp.Model) (Solution, error)
}

// Error is a numerical or engine failure. Infeasible, unbounded and timeout
// outcomes are statuses, not errors.
type Error struct {
	Model string
	Err   error
}

func (e *Error) Error() string { return fmt.Sprintf("solver %s: %v", e.Model, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

// ErrTooLarge is returned when the dense standard form would exceed the
// configured size limit. Models of that size need the "highs" solver.
var ErrTooLarge = errors.New("model too large for dense simplex")
