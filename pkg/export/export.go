package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"sort"
	"strconv"

	"github.com/kilianp07/esom/core/results"
	"github.com/kilianp07/esom/core/scenario"
)

// ResultsHeader is the header of the long-format results file.
var ResultsHeader = []string{"Scenario", "Type", "Technology", "Node", "Hour", "Value"}

// WriteResultsCSV writes rows in long format. Steps of rows without a time
// index are written as "-".
func WriteResultsCSV(w io.Writer, rows []results.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ResultsHeader); err != nil {
		return err
	}
	for _, r := range rows {
		hour := results.None
		if r.Step != results.NoStep {
			hour = strconv.Itoa(r.Step)
		}
		rec := []string{r.Scenario, string(r.Type), r.Technology, r.Node, hour, formatFloat(r.Value)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummaryCSV writes one line per scenario with its status, objective,
// emissions and installed capacity per technology.
func WriteSummaryCSV(w io.Writer, res []scenario.Result, currency string) error {
	techs := capacityColumns(res)
	header := []string{"Scenario", "Status", "Objective", "Currency", "Emissions_t", "Variables", "Constraints", "Duration_s"}
	for _, t := range techs {
		header = append(header, "Capacity_"+t)
	}
	header = append(header, "Message")

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range res {
		rec := []string{
			r.Scenario,
			string(r.Status),
			"",
			currency,
			"",
			strconv.Itoa(r.Variables),
			strconv.Itoa(r.Constraints),
			strconv.FormatFloat(r.Duration.Seconds(), 'f', 3, 64),
		}
		if r.Status == scenario.StatusOptimal {
			rec[2] = formatFloat(r.Objective)
			rec[4] = formatFloat(r.Summary.Emissions)
		}
		for _, t := range techs {
			v, ok := r.Summary.Capacity[t]
			if !ok {
				rec = append(rec, "")
				continue
			}
			rec = append(rec, formatFloat(v))
		}
		rec = append(rec, r.Message)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Summary is the JSON form of a scenario outcome.
type Summary struct {
	RunID     string             `json:"run_id"`
	Scenario  string             `json:"scenario"`
	Status    string             `json:"status"`
	Message   string             `json:"message,omitempty"`
	Objective *float64           `json:"objective,omitempty"`
	Currency  string             `json:"currency,omitempty"`
	Emissions float64            `json:"emissions_t"`
	Capacity  map[string]float64 `json:"capacity_mw,omitempty"`
}

// WriteJSON writes the outcome of every scenario as a JSON array.
func WriteJSON(w io.Writer, res []scenario.Result, currency string) error {
	out := make([]Summary, 0, len(res))
	for _, r := range res {
		s := Summary{
			RunID:     r.RunID,
			Scenario:  r.Scenario,
			Status:    string(r.Status),
			Message:   r.Message,
			Currency:  currency,
			Emissions: r.Summary.Emissions,
			Capacity:  r.Summary.Capacity,
		}
		if r.Status == scenario.StatusOptimal {
			obj := r.Objective
			s.Objective = &obj
		}
		out = append(out, s)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func capacityColumns(res []scenario.Result) []string {
	seen := make(map[string]bool)
	for _, r := range res {
		for t := range r.Summary.Capacity {
			seen[t] = true
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
