package scenario

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/esom/core/dispatch"
	"github.com/kilianp07/esom/core/history"
	"github.com/kilianp07/esom/core/logger"
	"github.com/kilianp07/esom/core/metrics"
	"github.com/kilianp07/esom/core/model"
	"github.com/kilianp07/esom/core/results"
	"github.com/kilianp07/esom/core/solver"
)

// Status is the outcome of one scenario of a run.
type Status string

const (
	StatusOptimal    Status = "Optimal"
	StatusInfeasible Status = "Infeasible"
	StatusUnbounded  Status = "Unbounded"
	StatusTimeout    Status = "Timeout"
	StatusError      Status = "Error"
	// StatusInvalid marks a scenario rejected before solving.
	StatusInvalid Status = "Invalid"
)

func fromSolver(s solver.Status) Status {
	switch s {
	case solver.StatusOptimal:
		return StatusOptimal
	case solver.StatusInfeasible:
		return StatusInfeasible
	case solver.StatusUnbounded:
		return StatusUnbounded
	case solver.StatusTimeout:
		return StatusTimeout
	default:
		return StatusError
	}
}

// Result is the outcome of one scenario. Objective, Rows and Summary are
// only set when Status is StatusOptimal.
type Result struct {
	RunID       string
	Scenario    string
	Status      Status
	Message     string
	Objective   float64
	Rows        []results.Row
	Summary     results.Summary
	Derived     Derivation
	Violations  []results.Violation
	Variables   int
	Constraints int
	Duration    time.Duration
}

// Runner executes scenarios one after the other against a shared reference.
// A failing scenario never stops the run.
type Runner struct {
	ref       Reference
	solver    solver.Solver
	sink      metrics.MetricsSink
	store     history.Store
	log       logger.Logger
	tolerance float64
	now       func() time.Time
}

// NewRunner creates a Runner. Nil sink, store and logger are replaced by
// no-op implementations.
func NewRunner(ref Reference, s solver.Solver, sink metrics.MetricsSink, store history.Store, log logger.Logger) (*Runner, error) {
	if s == nil {
		return nil, errors.New("solver is required")
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if store == nil {
		store = history.NopStore{}
	}
	if log == nil {
		log = nopLogger{}
	}
	return &Runner{
		ref:       ref,
		solver:    s,
		sink:      sink,
		store:     store,
		log:       log,
		tolerance: 1e-6,
		now:       time.Now,
	}, nil
}

// SetTolerance sets the tolerance of the post-solve constraint check.
func (r *Runner) SetTolerance(tol float64) {
	if tol > 0 {
		r.tolerance = tol
	}
}

// Run executes params in order and returns one result per entry. The run is
// identified by a fresh run ID shared by every result. Once ctx is done the
// remaining scenarios are reported as timed out without being built.
func (r *Runner) Run(ctx context.Context, params []Params) []Result {
	runID := uuid.NewString()
	r.log.Infof("run %s: %d scenarios", runID, len(params))
	out := make([]Result, 0, len(params))
	for _, p := range params {
		var res Result
		if err := ctx.Err(); err != nil {
			res = Result{Scenario: p.Name, Status: StatusTimeout, Message: err.Error()}
		} else {
			res = r.RunOne(ctx, p)
		}
		res.RunID = runID
		r.record(ctx, res)
		out = append(out, res)
	}
	if err := metrics.Flush(r.sink); err != nil {
		r.log.Warnf("metrics flush: %v", err)
	}
	return out
}

// RunOne prepares, builds and solves a single scenario. A panic while doing
// so fails the scenario with StatusError.
func (r *Runner) RunOne(ctx context.Context, p Params) (res Result) {
	start := r.now()
	defer func() {
		if v := recover(); v != nil {
			failed := Result{Scenario: p.Name, Derived: res.Derived}
			res = r.fail(&failed, StatusError, fmt.Errorf("panic: %v", v))
		}
		res.Duration = r.now().Sub(start)
	}()
	return r.runOne(ctx, p)
}

func (r *Runner) runOne(ctx context.Context, p Params) Result {
	res := Result{Scenario: p.Name}
	sc, derived, err := Prepare(r.ref, p)
	res.Derived = derived
	if err != nil {
		return r.fail(&res, StatusInvalid, err)
	}
	r.log.Debugf("scenario %s: %s", p.Name, derived)

	m, err := dispatch.Build(sc)
	if err != nil {
		status := StatusError
		if errors.Is(err, model.ErrSpecification) {
			status = StatusInvalid
		}
		return r.fail(&res, status, err)
	}
	res.Variables, res.Constraints = m.NumVariables(), m.NumConstraints()
	r.log.Debugw("model built", map[string]any{
		"scenario":    p.Name,
		"variables":   res.Variables,
		"constraints": res.Constraints,
	})

	sol, err := r.solver.Solve(ctx, m)
	if err != nil {
		return r.fail(&res, StatusError, err)
	}
	if sol.Status != solver.StatusOptimal {
		return r.fail(&res, fromSolver(sol.Status), fmt.Errorf("solver status %s", sol.Status))
	}

	rows, err := results.Extract(sc, sol)
	if err != nil {
		return r.fail(&res, StatusError, err)
	}
	res.Status = StatusOptimal
	res.Objective = sol.Objective
	res.Rows = rows
	res.Summary = results.Summarize(sc.Name, rows)

	res.Violations = results.Check(sc, sol, r.tolerance)
	for _, v := range res.Violations {
		r.log.Warnf("scenario %s: constraint %s", p.Name, v)
	}
	if err := results.CheckLinearization(sc, sol, r.tolerance); err != nil {
		r.log.Warnf("scenario %s: %v", p.Name, err)
	}
	r.log.Infof("scenario %s: optimal, objective %.6g", p.Name, res.Objective)
	return res
}

func (r *Runner) fail(res *Result, status Status, err error) Result {
	res.Status = status
	res.Message = err.Error()
	if status == StatusInvalid || status == StatusError {
		r.log.Errorf("scenario %s: %v", res.Scenario, err)
	} else {
		r.log.Warnf("scenario %s: %s", res.Scenario, status)
	}
	return *res
}

// record forwards res to the metrics sink and history store. Failures are
// logged and do not affect the run.
func (r *Runner) record(ctx context.Context, res Result) {
	now := r.now()
	ev := metrics.ScenarioEvent{
		RunID:       res.RunID,
		Scenario:    res.Scenario,
		Status:      string(res.Status),
		Objective:   res.Objective,
		Emissions:   res.Summary.Emissions,
		Variables:   res.Variables,
		Constraints: res.Constraints,
		Duration:    res.Duration,
		Capacity:    res.Summary.Capacity,
		Time:        now,
	}
	if err := r.sink.RecordScenario(ev); err != nil {
		r.log.Warnf("metrics: %v", err)
	}
	rec := history.Record{
		RunID:       res.RunID,
		Timestamp:   now,
		Scenario:    res.Scenario,
		Status:      string(res.Status),
		Message:     res.Message,
		Objective:   res.Objective,
		Emissions:   res.Summary.Emissions,
		Variables:   res.Variables,
		Constraints: res.Constraints,
		DurationMS:  res.Duration.Milliseconds(),
		Capacity:    res.Summary.Capacity,
	}
	if err := r.store.Append(context.WithoutCancel(ctx), rec); err != nil {
		r.log.Warnf("history: %v", err)
	}
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
