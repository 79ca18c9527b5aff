package scenarios

import (
	"context"
	"math"
	"os/exec"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/esom/core/scenario"
	"github.com/kilianp07/esom/core/solver"
	"github.com/kilianp07/esom/infra/logger"
	"github.com/kilianp07/esom/infra/metrics"
)

func RunCase(t *testing.T, c *Case) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry("", reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	runner, err := scenario.NewRunner(c.Reference(), caseSolver(t, c), sink, nil, logger.NopLogger{})
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	out := runner.Run(context.Background(), c.Scenarios)

	byName := make(map[string]scenario.Result, len(out))
	for _, res := range out {
		byName[res.Scenario] = res
	}
	for _, e := range c.Expected {
		res, ok := byName[e.Scenario]
		if !ok {
			t.Errorf("case %s: no result for %s", c.Name, e.Scenario)
			continue
		}
		if string(res.Status) != e.Status {
			t.Errorf("case %s: %s expected %s, got %s (%s)", c.Name, e.Scenario, e.Status, res.Status, res.Message)
			continue
		}
		tol := tolerance(e)
		if e.Objective != nil && !within(res.Objective, *e.Objective, tol) {
			t.Errorf("case %s: %s expected objective %v, got %v", c.Name, e.Scenario, *e.Objective, res.Objective)
		}
		for tech, want := range e.Capacity {
			if got := res.Summary.Capacity[tech]; !within(got, want, tol) {
				t.Errorf("case %s: %s expected %s capacity %v, got %v", c.Name, e.Scenario, tech, want, got)
			}
		}
		if len(res.Violations) > 0 {
			t.Errorf("case %s: %s violates %v", c.Name, e.Scenario, res.Violations)
		}
	}

	n, err := testutil.GatherAndCount(reg, "esom_scenarios_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n == 0 && len(c.Scenarios) > 0 {
		t.Errorf("case %s: no outcome recorded in metrics", c.Name)
	}
}

// caseSolver creates the solver of c and skips the case when it needs a
// HiGHS executable that is not installed.
func caseSolver(t *testing.T, c *Case) solver.Solver {
	t.Helper()
	s, err := solver.New(c.Solver)
	if err != nil {
		t.Fatalf("case %s: solver: %v", c.Name, err)
	}
	if h, ok := s.(*solver.HiGHS); ok {
		if _, err := exec.LookPath(h.Path); err != nil {
			t.Skipf("case %s: %s not installed", c.Name, h.Path)
		}
	}
	return s
}

// within compares with a tolerance relative to the magnitude of want.
func within(got, want, tol float64) bool {
	return math.Abs(got-want) <= tol*math.Max(1, math.Abs(want))
}
