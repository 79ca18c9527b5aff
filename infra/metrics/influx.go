package metrics

import (
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/esom/core/metrics"
)

// InfluxSink appends scenario outcomes to a file in InfluxDB line protocol,
// ready for `influx write --file`.
type InfluxSink struct {
	mu        sync.Mutex
	path      string
	precision time.Duration
}

// NewInfluxSink creates the directory of path. Existing content is kept.
func NewInfluxSink(path string, precision time.Duration) (*InfluxSink, error) {
	if precision <= 0 {
		precision = time.Second
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &InfluxSink{path: path, precision: precision}, nil
}

// Points converts an event to line-protocol points: one scenario_result
// point and one installed_capacity point per technology.
func Points(ev coremetrics.ScenarioEvent) []*write.Point {
	ts := ev.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	pts := []*write.Point{
		write.NewPointWithMeasurement("scenario_result").
			AddTag("run_id", ev.RunID).
			AddTag("scenario", ev.Scenario).
			AddTag("status", ev.Status).
			AddField("objective", round3(ev.Objective)).
			AddField("emissions_t", round3(ev.Emissions)).
			AddField("variables", ev.Variables).
			AddField("constraints", ev.Constraints).
			AddField("duration_s", round3(ev.Duration.Seconds())).
			SetTime(ts),
	}
	techs := make([]string, 0, len(ev.Capacity))
	for t := range ev.Capacity {
		techs = append(techs, t)
	}
	sort.Strings(techs)
	for _, t := range techs {
		pts = append(pts, write.NewPointWithMeasurement("installed_capacity").
			AddTag("run_id", ev.RunID).
			AddTag("scenario", ev.Scenario).
			AddTag("technology", t).
			AddField("mw", round3(ev.Capacity[t])).
			SetTime(ts))
	}
	return pts
}

// RecordScenario appends the points of ev to the file.
func (s *InfluxSink) RecordScenario(ev coremetrics.ScenarioEvent) error {
	var b strings.Builder
	for _, p := range Points(ev) {
		line := write.PointToLineProtocol(p, s.precision)
		b.WriteString(line)
		if !strings.HasSuffix(line, "\n") {
			b.WriteByte('\n')
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(b.String()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
