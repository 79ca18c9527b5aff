package metrics

import (
	"time"

	"github.com/kilianp07/esom/core/factory"
	coremetrics "github.com/kilianp07/esom/core/metrics"
)

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterMetricsSink("prometheus", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c struct {
			Path string `json:"textfile"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewPromSink(c.Path)
	})

	_ = coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		c := struct {
			Path      string `json:"path"`
			Precision string `json:"precision"`
		}{Path: "results/results.lp", Precision: "1s"}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		p, err := time.ParseDuration(c.Precision)
		if err != nil {
			return nil, err
		}
		return NewInfluxSink(c.Path, p)
	})
}
