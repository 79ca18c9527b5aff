package scenario

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/kilianp07/esom/core/history"
	"github.com/kilianp07/esom/core/lp"
	"github.com/kilianp07/esom/core/metrics"
	"github.com/kilianp07/esom/core/results"
	"github.com/kilianp07/esom/core/solver"
)

type recordingSink struct{ events []metrics.ScenarioEvent }

func (s *recordingSink) RecordScenario(ev metrics.ScenarioEvent) error {
	s.events = append(s.events, ev)
	return nil
}

type recordingStore struct {
	history.NopStore
	records []history.Record
}

func (s *recordingStore) Append(_ context.Context, rec history.Record) error {
	s.records = append(s.records, rec)
	return nil
}

type stubSolver struct {
	calls int
	sol   solver.Solution
	err   error
}

func (s *stubSolver) Solve(context.Context, *lp.Model) (solver.Solution, error) {
	s.calls++
	return s.sol, s.err
}

func TestNewRunner_RequiresSolver(t *testing.T) {
	if _, err := NewRunner(reference(), nil, nil, nil, nil); err == nil {
		t.Fatal("expected error without solver")
	}
}

func TestRunner_Run(t *testing.T) {
	sink := &recordingSink{}
	store := &recordingStore{}
	r, err := NewRunner(reference(), solver.NewSimplex(), sink, store, nil)
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	params := []Params{
		{Name: "base"},
		{Name: "too-long", Horizon: 10},
		{Name: "starved", Disable: []string{"gas", "battery"}, Capacity: []BoundSpec{{Technology: "wind", Max: ptr(10)}}},
	}
	out := r.Run(context.Background(), params)
	if len(out) != 3 {
		t.Fatalf("expected 3 results, got %d", len(out))
	}
	want := []Status{StatusOptimal, StatusInvalid, StatusInfeasible}
	for i, res := range out {
		if res.Scenario != params[i].Name {
			t.Fatalf("result %d is %s", i, res.Scenario)
		}
		if res.Status != want[i] {
			t.Fatalf("%s: status %s (%s), want %s", res.Scenario, res.Status, res.Message, want[i])
		}
		if res.RunID == "" || res.RunID != out[0].RunID {
			t.Fatalf("results must share one run id")
		}
	}

	base := out[0]
	if base.Objective <= 0 || len(base.Rows) == 0 {
		t.Fatalf("base: objective %v rows %d", base.Objective, len(base.Rows))
	}
	if len(base.Violations) != 0 {
		t.Fatalf("base: unexpected violations %v", base.Violations)
	}
	if base.Summary.Objective != base.Objective {
		t.Fatalf("summary objective %v, want %v", base.Summary.Objective, base.Objective)
	}
	if total, ok := results.Total(base.Rows, results.Cost); !ok || total != base.Objective {
		t.Fatalf("cost row %v", total)
	}
	if base.Variables == 0 || base.Constraints == 0 {
		t.Fatal("model size not recorded")
	}
	if out[1].Message == "" || out[1].Rows != nil {
		t.Fatalf("invalid scenario should carry a message and no rows: %+v", out[1])
	}
	if out[2].Rows != nil {
		t.Fatal("infeasible scenario must not produce rows")
	}

	if len(sink.events) != 3 || len(store.records) != 3 {
		t.Fatalf("recorded %d events and %d records", len(sink.events), len(store.records))
	}
	if store.records[1].Status != string(StatusInvalid) || store.records[0].RunID != base.RunID {
		t.Fatalf("unexpected history %+v", store.records)
	}
}

func TestRunner_SolverError(t *testing.T) {
	s := &stubSolver{sol: solver.Solution{Status: solver.StatusError}, err: errors.New("numerical trouble")}
	r, _ := NewRunner(reference(), s, nil, nil, nil)
	out := r.Run(context.Background(), []Params{{Name: "a"}, {Name: "b"}})
	for _, res := range out {
		if res.Status != StatusError || res.Message == "" {
			t.Fatalf("%s: status %s message %q", res.Scenario, res.Status, res.Message)
		}
	}
	if s.calls != 2 {
		t.Fatalf("a failing scenario must not stop the run, solver called %d times", s.calls)
	}
}

type panickingSolver struct{}

func (panickingSolver) Solve(context.Context, *lp.Model) (solver.Solution, error) {
	panic("engine state corrupted")
}

func TestRunner_PanicFailsScenario(t *testing.T) {
	r, _ := NewRunner(reference(), panickingSolver{}, nil, nil, nil)
	out := r.Run(context.Background(), []Params{{Name: "a"}, {Name: "b"}})
	if len(out) != 2 {
		t.Fatalf("expected 2 results, got %d", len(out))
	}
	for _, res := range out {
		if res.Status != StatusError || !strings.Contains(res.Message, "engine state corrupted") {
			t.Fatalf("%s: status %s message %q", res.Scenario, res.Status, res.Message)
		}
	}
}

func TestRunner_AmbiguousNames(t *testing.T) {
	ref := reference()
	ref.System.Technologies = []TechnologySpec{
		{Name: "gas", Kind: "generator", CapacityCost: 50},
		{Name: "gas_north", Kind: "generator", CapacityCost: 60},
	}
	ref.System.Nodes = []NodeSpec{{Name: "north_south"}, {Name: "south"}}
	ref.System.Links = nil

	r, err := NewRunner(ref, solver.NewSimplex(), nil, nil, nil)
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	out := r.Run(context.Background(), []Params{{Name: "clash"}, {Name: "clash-again", DemandScale: 2}})
	for _, res := range out {
		if res.Status != StatusInvalid {
			t.Fatalf("%s: status %s (%s), want %s", res.Scenario, res.Status, res.Message, StatusInvalid)
		}
		if !strings.Contains(res.Message, "gas_north") {
			t.Fatalf("%s: message should name the offending technology: %q", res.Scenario, res.Message)
		}
	}
}

func TestRunner_SolverStatus(t *testing.T) {
	cases := map[solver.Status]Status{
		solver.StatusUnbounded: StatusUnbounded,
		solver.StatusTimeout:   StatusTimeout,
	}
	for in, want := range cases {
		r, _ := NewRunner(reference(), &stubSolver{sol: solver.Solution{Status: in}}, nil, nil, nil)
		res := r.RunOne(context.Background(), Params{Name: "a"})
		if res.Status != want {
			t.Errorf("%s: got %s", in, res.Status)
		}
	}
}

func TestRunner_MissingValues(t *testing.T) {
	s := &stubSolver{sol: solver.Solution{Status: solver.StatusOptimal, Values: map[string]float64{}}}
	r, _ := NewRunner(reference(), s, nil, nil, nil)
	res := r.RunOne(context.Background(), Params{Name: "a"})
	if res.Status != StatusError {
		t.Fatalf("expected error status for an incomplete solution, got %s", res.Status)
	}
}

func TestRunner_Cancelled(t *testing.T) {
	s := &stubSolver{}
	store := &recordingStore{}
	r, _ := NewRunner(reference(), s, nil, store, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := r.Run(ctx, []Params{{Name: "a"}, {Name: "b"}})
	for _, res := range out {
		if res.Status != StatusTimeout {
			t.Fatalf("%s: status %s", res.Scenario, res.Status)
		}
	}
	if s.calls != 0 {
		t.Fatal("solver must not run after cancellation")
	}
	if len(store.records) != 2 {
		t.Fatalf("cancelled scenarios should still be recorded, got %d", len(store.records))
	}
}

func TestRunner_Benefit(t *testing.T) {
	r, _ := NewRunner(reference(), solver.NewSimplex(), nil, nil, nil)
	res := r.RunOne(context.Background(), Params{
		Name:              "flex",
		Objective:         "benefit",
		StorageCostPerKWh: ptr(64),
		Flexibility:       &FlexibilityParams{BaselineCurtailmentTWh: 10},
	})
	if res.Status != StatusOptimal {
		t.Fatalf("status %s: %s", res.Status, res.Message)
	}
	if eff, ok := results.Total(res.Rows, results.Effect); !ok || eff <= 0 {
		t.Fatalf("expected a positive effect, got %v", eff)
	}
}

func TestRunner_BenefitWithoutStorage(t *testing.T) {
	r, err := NewRunner(reference(), solver.NewSimplex(), nil, nil, nil)
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	benefit := func(name string) Params {
		return Params{
			Name:              name,
			Objective:         "benefit",
			StorageCostPerKWh: ptr(64),
			Flexibility:       &FlexibilityParams{BaselineCurtailmentTWh: 50},
		}
	}
	zeroMax := benefit("zero-max")
	zeroMax.Flexibility.StorageMaxGW = ptr(0)
	disabled := benefit("disabled")
	disabled.Disable = []string{"storage"}
	capped := benefit("capped")
	capped.Capacity = []BoundSpec{{Technology: "storage", Max: ptr(0)}}

	out := r.Run(context.Background(), []Params{benefit("with-storage"), zeroMax, disabled, capped})
	if out[0].Status != StatusOptimal || out[0].Summary.Capacity["storage"] <= 0 {
		t.Fatalf("with-storage: status %s storage %v", out[0].Status, out[0].Summary.Capacity["storage"])
	}
	for _, res := range out[1:] {
		if res.Status != StatusOptimal {
			t.Fatalf("%s: status %s (%s)", res.Scenario, res.Status, res.Message)
		}
		if gw := res.Summary.Capacity["storage"]; math.Abs(gw) > 1e-6 {
			t.Errorf("%s: storage %v GW, want 0", res.Scenario, gw)
		}
	}
}
