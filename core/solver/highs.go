package solver

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/esom/core/lp"
)

// DefaultHiGHSPath is the HiGHS executable looked up on PATH.
const DefaultHiGHSPath = "highs"

// highsGrace is added to Timeout before the process is killed so HiGHS can
// stop on its own time limit and report it.
const highsGrace = 5 * time.Second

// runHiGHS executes the solver process and returns its combined output. It
// can be overridden in tests.
var runHiGHS = func(ctx context.Context, path string, args []string) ([]byte, error) {
	return exec.CommandContext(ctx, path, args...).CombinedOutput()
}

// HiGHS solves models with the HiGHS command line solver. The model is handed
// over as an LP file and the solution read back from the solution file, so
// the sparse engine handles year-long horizons. A solve that outlives its
// timeout is killed.
type HiGHS struct {
	// Path of the executable, DefaultHiGHSPath when empty.
	Path string
	// Method selects the HiGHS solver: choose, simplex, ipm or pdlp.
	Method string
	// Timeout bounds one solve; 0 disables it.
	Timeout time.Duration
	// TempDir receives the model and solution files, os.TempDir when empty.
	TempDir string
}

// NewHiGHS returns an adapter running "highs" from PATH.
func NewHiGHS() *HiGHS {
	return &HiGHS{Path: DefaultHiGHSPath}
}

// Solve writes m to a temporary LP file, runs HiGHS on it and maps its model
// status. Solver failures without a model status return a *Error.
func (h *HiGHS) Solve(ctx context.Context, m *lp.Model) (Solution, error) {
	fail := func(err error) (Solution, error) {
		return Solution{Status: StatusError}, &Error{Model: m.Name, Err: err}
	}
	dir, err := os.MkdirTemp(h.TempDir, "esom-highs-")
	if err != nil {
		return fail(err)
	}
	defer os.RemoveAll(dir)

	modelPath := filepath.Join(dir, "model.lp")
	solPath := filepath.Join(dir, "model.sol")
	if err := writeModelFile(modelPath, m); err != nil {
		return fail(err)
	}

	args := []string{"--model_file", modelPath, "--solution_file", solPath}
	if h.Method != "" {
		args = append(args, "--solver", h.Method)
	}
	runCtx := ctx
	if h.Timeout > 0 {
		args = append(args, "--time_limit", strconv.FormatFloat(h.Timeout.Seconds(), 'f', -1, 64))
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, h.Timeout+highsGrace)
		defer cancel()
	}
	path := h.Path
	if path == "" {
		path = DefaultHiGHSPath
	}

	out, runErr := runHiGHS(runCtx, path, args)
	if ctx.Err() != nil || errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return Solution{Status: StatusTimeout}, nil
	}

	res, err := readHiGHSSolutionFile(solPath)
	if err != nil {
		// no usable solution file: fall back on the status in the log
		status, ok := highsLogStatus(out)
		if !ok {
			if runErr == nil {
				runErr = err
			}
			return fail(fmt.Errorf("highs: %w: %s", runErr, lastLines(out, 5)))
		}
		res = highsResult{status: status}
	}

	status, ok := highsStatus(res.status)
	if !ok {
		return fail(fmt.Errorf("highs model status %q", res.status))
	}
	if status != StatusOptimal {
		return Solution{Status: status}, nil
	}

	vars := m.Variables()
	x := make([]float64, len(vars))
	values := make(map[string]float64, len(vars))
	for j, v := range vars {
		val, ok := res.values[v.Name]
		if !ok {
			// HiGHS drops columns that appear in no row or objective
			val = math.Max(v.Lower, math.Min(0, v.Upper))
		}
		x[j] = val
		values[v.Name] = val
	}
	return Solution{Status: StatusOptimal, Objective: m.Evaluate(x), Values: values}, nil
}

func writeModelFile(path string, m *lp.Model) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := lp.WriteLP(f, m); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// highsStatus maps a HiGHS model status. ok is false for statuses that
// carry no usable outcome, such as load or solve errors.
func highsStatus(s string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "optimal", "empty":
		return StatusOptimal, true
	case "infeasible", "primal infeasible or unbounded":
		return StatusInfeasible, true
	case "unbounded":
		return StatusUnbounded, true
	case "time limit reached", "interrupted":
		return StatusTimeout, true
	}
	return StatusError, false
}

type highsResult struct {
	status    string
	objective float64
	values    map[string]float64
}

func readHiGHSSolutionFile(path string) (highsResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return highsResult{}, err
	}
	defer f.Close()
	return readHiGHSSolution(f)
}

// readHiGHSSolution parses the raw solution file written by
// --solution_file: the model status, then the primal objective and one
// "name value" line per column. Rows and duals are skipped.
func readHiGHSSolution(r io.Reader) (highsResult, error) {
	res := highsResult{values: make(map[string]float64)}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	var wantStatus, primal bool
	cols := 0
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case wantStatus:
			if line != "" {
				res.status = line
				wantStatus = false
			}
		case line == "Model status":
			wantStatus = true
		case line == "# Primal solution values":
			primal = true
		case !primal:
		case cols > 0:
			fields := strings.Fields(line)
			if len(fields) != 2 {
				return res, fmt.Errorf("highs solution: bad column line %q", line)
			}
			v, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return res, fmt.Errorf("highs solution: column %s: %w", fields[0], err)
			}
			res.values[fields[0]] = v
			cols--
		case strings.HasPrefix(line, "Objective "):
			v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(line, "Objective ")), 64)
			if err != nil {
				return res, fmt.Errorf("highs solution: objective: %w", err)
			}
			res.objective = v
		case strings.HasPrefix(line, "# Columns "):
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "# Columns ")))
			if err != nil {
				return res, fmt.Errorf("highs solution: column count: %w", err)
			}
			cols = n
		case strings.HasPrefix(line, "# Rows"), strings.HasPrefix(line, "# Dual"):
			primal = false
		}
	}
	if err := sc.Err(); err != nil {
		return res, err
	}
	if res.status == "" {
		return res, errors.New("highs solution: no model status")
	}
	if cols > 0 {
		return res, fmt.Errorf("highs solution: %d column values missing", cols)
	}
	return res, nil
}

// highsLogStatus finds the "Model status : X" line of the HiGHS log.
func highsLogStatus(out []byte) (string, bool) {
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "Model status") {
			continue
		}
		if _, status, ok := strings.Cut(line, ":"); ok && strings.TrimSpace(status) != "" {
			return strings.TrimSpace(status), true
		}
	}
	return "", false
}

func lastLines(out []byte, n int) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
