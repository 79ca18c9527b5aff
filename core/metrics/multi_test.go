package metrics

import (
	"errors"
	"testing"
)

type recordSink struct {
	count   int
	flushed bool
	err     error
}

func (r *recordSink) RecordScenario(ScenarioEvent) error {
	r.count++
	return r.err
}

func (r *recordSink) Flush() error {
	r.flushed = true
	return nil
}

// TestMultiSink ensures events are forwarded to all sinks.
func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	m := NewMultiSink(s1, NopSink{}, s2)
	if err := m.RecordScenario(ScenarioEvent{Scenario: "a"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if s1.count != 1 || s2.count != 1 {
		t.Fatalf("events not forwarded")
	}
	if err := Flush(m); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if !s1.flushed || !s2.flushed {
		t.Fatalf("flush not forwarded")
	}
}

func TestMultiSink_StopsOnError(t *testing.T) {
	failing := &recordSink{err: errors.New("disk full")}
	after := &recordSink{}
	if err := NewMultiSink(failing, after).RecordScenario(ScenarioEvent{}); err == nil {
		t.Fatal("expected error")
	}
	if after.count != 0 {
		t.Fatalf("sink after failure should not be called")
	}
	if err := Flush(NopSink{}); err != nil {
		t.Fatalf("flush nop: %v", err)
	}
}
