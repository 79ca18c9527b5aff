// Package metrics defines the sinks that record scenario outcomes. Sinks
// such as the Prometheus textfile sink and the Influx line-protocol sink live
// in infra/metrics and register themselves with the factory; several sinks
// are combined with NewMultiSink automatically when more than one is
// configured.
package metrics
