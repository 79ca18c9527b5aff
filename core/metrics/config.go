package metrics

import "github.com/kilianp07/esom/core/factory"

// Config lists the sinks enabled for a run.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
}
