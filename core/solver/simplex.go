package solver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	esomlp "github.com/kilianp07/esom/core/lp"
)

// Default settings of the simplex adapter.
const (
	DefaultTolerance = 1e-7
	DefaultMaxCells  = 50_000_000
)

// simplexFn points to the LP engine. It can be overridden in tests to
// simulate engine failures.
var simplexFn = func(c []float64, a mat.Matrix, b []float64, tol float64) (float64, []float64, error) {
	return lp.Simplex(c, a, b, tol, nil)
}

// Simplex solves models with gonum's dense simplex implementation.
type Simplex struct {
	// Tolerance is the reduced-cost tolerance of the simplex.
	Tolerance float64
	// Timeout bounds the wall-clock time of one solve, including the wait
	// for an earlier engine run; 0 disables it. The engine cannot be
	// interrupted, so a timed out run keeps going in the background and the
	// next solve waits for it to return.
	Timeout time.Duration
	// MaxCells limits rows*columns of the dense standard form.
	MaxCells int

	once sync.Once
	busy chan struct{} // holds a token while the engine runs
}

// NewSimplex returns an adapter with default settings.
func NewSimplex() *Simplex {
	return &Simplex{Tolerance: DefaultTolerance, MaxCells: DefaultMaxCells}
}

type simplexResult struct {
	y   []float64
	err error
}

// Solve converts m to standard form and runs the simplex. Infeasible,
// unbounded and timed out models are reported through the status; other
// engine failures return a *Error.
func (s *Simplex) Solve(ctx context.Context, m *esomlp.Model) (Solution, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	tol := s.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}
	sf, err := toStandard(m, tol, s.MaxCells)
	if err != nil {
		return Solution{Status: StatusError}, &Error{Model: m.Name, Err: err}
	}
	switch {
	case sf.infeasible:
		return Solution{Status: StatusInfeasible}, nil
	case sf.unbounded:
		return Solution{Status: StatusUnbounded}, nil
	}

	var y []float64
	if sf.rows() > 0 {
		rows, cols := sf.a.Dims()
		if cols < rows {
			return Solution{Status: StatusError}, &Error{Model: m.Name, Err: fmt.Errorf("standard form has %d rows but only %d columns", rows, cols)}
		}
		res, status := s.run(ctx, sf, tol)
		if status != StatusOptimal {
			return Solution{Status: status}, nil
		}
		switch {
		case errors.Is(res.err, lp.ErrInfeasible):
			return Solution{Status: StatusInfeasible}, nil
		case errors.Is(res.err, lp.ErrUnbounded):
			return Solution{Status: StatusUnbounded}, nil
		case res.err != nil:
			return Solution{Status: StatusError}, &Error{Model: m.Name, Err: res.err}
		}
		y = res.y
	}

	x := sf.recover(y)
	values := make(map[string]float64, len(x))
	for j, v := range m.Variables() {
		values[v.Name] = x[j]
	}
	return Solution{Status: StatusOptimal, Objective: m.Evaluate(x), Values: values}, nil
}

// run executes the engine in its own goroutine so the timeout and context
// cancellation can be honoured. Only one engine run per adapter is in flight:
// a run abandoned on timeout keeps the slot until it returns. The returned
// status is StatusOptimal when the engine returned in time, whatever its
// result.
func (s *Simplex) run(ctx context.Context, sf *standardForm, tol float64) (simplexResult, Status) {
	if err := s.acquire(ctx); err != nil {
		return simplexResult{err: err}, StatusTimeout
	}
	done := make(chan simplexResult, 1)
	go func() {
		defer s.release()
		defer func() {
			if r := recover(); r != nil {
				done <- simplexResult{err: fmt.Errorf("simplex panic: %v", r)}
			}
		}()
		_, y, err := simplexFn(sf.c, sf.a, sf.b, tol)
		done <- simplexResult{y: y, err: err}
	}()

	select {
	case res := <-done:
		return res, StatusOptimal
	case <-ctx.Done():
		return simplexResult{err: ctx.Err()}, StatusTimeout
	}
}

func (s *Simplex) acquire(ctx context.Context) error {
	s.once.Do(func() { s.busy = make(chan struct{}, 1) })
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case s.busy <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Simplex) release() { <-s.busy }
