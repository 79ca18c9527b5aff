package results

// Summary condenses the rows of one scenario.
type Summary struct {
	Scenario   string
	Objective  float64
	Emissions  float64            // t
	Capacity   map[string]float64 // MW per technology, summed over nodes
	Generation map[string]float64 // MWh per technology, summed over nodes and steps
}

// Summarize aggregates rows. Rows of other scenarios are ignored.
func Summarize(scenario string, rows []Row) Summary {
	s := Summary{
		Scenario:   scenario,
		Capacity:   make(map[string]float64),
		Generation: make(map[string]float64),
	}
	for _, r := range rows {
		if r.Scenario != scenario {
			continue
		}
		switch {
		case r.Type == Capacity:
			s.Capacity[r.Technology] += r.Value
		case r.Type == Generation:
			s.Generation[r.Technology] += r.Value
		case r.Type == Discharge:
			s.Generation[r.Technology] += r.Value
		case r.Type == Cost && r.Technology == None:
			s.Objective = r.Value
		case r.Type == Emissions && r.Technology == None && r.Node == None:
			s.Emissions = r.Value
		}
	}
	return s
}
