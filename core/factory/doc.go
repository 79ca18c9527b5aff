// Package factory is a generic registry that instantiates pluggable
// components (solvers, metrics sinks, run-log stores) from configuration.
// A component is selected by a type string and receives a map of raw
// settings which its factory decodes into a typed struct.
//
//	reg := factory.NewRegistry[solver.Solver]()
//	reg.Register("simplex", func(conf map[string]any) (solver.Solver, error) {
//	    var c struct{ Tolerance float64 `json:"tolerance"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return &solver.Simplex{Tolerance: c.Tolerance}, nil
//	})
//	s, err := reg.Create(factory.ModuleConfig{Type: "simplex", Conf: map[string]any{"tolerance": 1e-9}})
package factory
