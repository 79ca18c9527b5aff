package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	csv := "demand,cf_wind,cf_solar\n100,0.9,0.0\n100,0.2,0.6\n100,0.1,0.0\n"
	if err := os.WriteFile(filepath.Join(dir, "ts.csv"), []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
	conf := `data:
  profiles: "` + filepath.Join(dir, "ts.csv") + `"
output:
  dir: "` + filepath.Join(dir, "out") + `"
system:
  nodes:
    - name: de
  technologies:
    - name: gas
      capacity_cost: 10
      fuel_cost: 5
    - name: wind
      profile: cf_wind
      capacity_cost: 20
scenarios:
  - name: base
  - name: windless
    disable: [wind]
`
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(conf), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	path := writeFixture(t)
	out, err := execute(t, "run", "-c", path, "--only", "windless")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// 100 MW of gas over 3 steps: 1000 + 3*100*5
	if !strings.Contains(out, "windless") || !strings.Contains(out, "2500") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(path), "out", "results.csv")); err != nil {
		t.Fatalf("results not written: %v", err)
	}

	out, err = execute(t, "history", "-c", path, "--scenario", "windless")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "Optimal") {
		t.Fatalf("history should list the run:\n%s", out)
	}
	runOnly = nil
}

func TestLPCommand(t *testing.T) {
	path := writeFixture(t)
	target := filepath.Join(t.TempDir(), "base.lp")
	if _, err := execute(t, "lp", "base", "-c", path, "-o", target); err != nil {
		t.Fatalf("lp: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read model: %v", err)
	}
	if !strings.Contains(string(data), "Minimize") || !strings.Contains(string(data), "End") {
		t.Fatalf("unexpected LP file:\n%s", data)
	}
	lpOutput = ""

	if _, err := execute(t, "lp", "unknown", "-c", path); err == nil {
		t.Fatal("expected error for unknown scenario")
	}
}

func TestLPCommand_OutputError(t *testing.T) {
	path := writeFixture(t)
	target := filepath.Join(t.TempDir(), "missing", "base.lp")
	_, err := execute(t, "lp", "base", "-c", path, "-o", target)
	lpOutput = ""
	if err == nil {
		t.Fatal("expected error for an output file that cannot be created")
	}
	if _, statErr := os.Stat(target); statErr == nil {
		t.Fatal("no model file should be left behind")
	}
}

func TestLPCommand_Stdout(t *testing.T) {
	path := writeFixture(t)
	out, err := execute(t, "lp", "base", "-c", path)
	if err != nil {
		t.Fatalf("lp: %v", err)
	}
	if !strings.Contains(out, "cap_gas_de") {
		t.Fatalf("model should be written to stdout:\n%s", out)
	}
}

func TestCurtailmentCommand(t *testing.T) {
	path := writeFixture(t)
	out, err := execute(t, "curtailment", "-c", path, "--share", "0.5", "--margin", "1")
	if err != nil {
		t.Fatalf("curtailment: %v", err)
	}
	if !strings.Contains(out, "baseline curtailment") || !strings.Contains(out, "utilization") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}
