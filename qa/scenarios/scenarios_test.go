package scenarios

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScenario(t *testing.T) {
	files, err := filepath.Glob("*.yaml")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no regression cases found")
	}
	for _, f := range files {
		c, err := Load(f)
		if err != nil {
			t.Fatalf("load %s: %v", f, err)
		}
		t.Run(c.Name, func(t *testing.T) {
			RunCase(t, c)
		})
	}
}

func TestLoadInvalid(t *testing.T) {
	if _, err := Load("no-file.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
	tmp, err := os.CreateTemp(t.TempDir(), "bad*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmp.WriteString(":"); err != nil {
		t.Fatal(err)
	}
	if err := tmp.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(tmp.Name()); err == nil {
		t.Fatal("expected unmarshal error")
	}
}

func TestWithin(t *testing.T) {
	if !within(13000, 13000.001, 1e-6) {
		t.Fatal("values within relative tolerance should match")
	}
	if within(1, 1.1, 1e-6) {
		t.Fatal("values outside tolerance should not match")
	}
}

func TestReferenceRepeat(t *testing.T) {
	c := &Case{
		Profiles: map[string][]float64{"demand": {1, 2}},
		Repeat:   3,
	}
	got := c.Reference().Profiles["demand"]
	want := []float64{1, 2, 1, 2, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("tiled profile %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tiled profile %v, want %v", got, want)
		}
	}
	if len(c.Profiles["demand"]) != 2 {
		t.Fatal("case profiles must not be modified")
	}
}

func TestLoadSolver(t *testing.T) {
	c, err := Load("year.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Solver.Type != "highs" || c.Solver.Conf["timeout"] != "10m" {
		t.Fatalf("unexpected solver %+v", c.Solver)
	}
	if n := len(c.Reference().Profiles["demand"]); n != 8784 {
		t.Fatalf("leap year profile has %d steps", n)
	}
}
