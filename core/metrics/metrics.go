package metrics

import "time"

// ScenarioEvent is the outcome of one scenario solve.
type ScenarioEvent struct {
	RunID       string
	Scenario    string
	Status      string
	Objective   float64
	Emissions   float64 // t
	Variables   int
	Constraints int
	Duration    time.Duration
	Capacity    map[string]float64 // MW per technology
	Time        time.Time
}

// MetricsSink records scenario outcomes.
type MetricsSink interface {
	RecordScenario(ev ScenarioEvent) error
}

// Flusher is implemented by sinks that buffer until the end of a run.
type Flusher interface {
	Flush() error
}

// NopSink discards events.
type NopSink struct{}

func (NopSink) RecordScenario(ScenarioEvent) error { return nil }

// MultiSink fans events out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink combines sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordScenario forwards ev to every sink, returning the first error.
func (m *MultiSink) RecordScenario(ev ScenarioEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordScenario(ev); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes every sink that buffers.
func (m *MultiSink) Flush() error {
	for _, s := range m.Sinks {
		if f, ok := s.(Flusher); ok {
			if err := f.Flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush flushes s when it buffers.
func Flush(s MetricsSink) error {
	if f, ok := s.(Flusher); ok {
		return f.Flush()
	}
	return nil
}
