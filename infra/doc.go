// Package infra contains technical adapters such as the zerolog logger,
// the metrics sinks and the CSV time-series loader. These packages should
// depend only on the interfaces defined in the core packages.
package infra
