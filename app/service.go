package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kilianp07/esom/config"
	"github.com/kilianp07/esom/core/history"
	coremetrics "github.com/kilianp07/esom/core/metrics"
	"github.com/kilianp07/esom/core/results"
	"github.com/kilianp07/esom/core/scenario"
	"github.com/kilianp07/esom/core/solver"
	"github.com/kilianp07/esom/infra/logger"
	_ "github.com/kilianp07/esom/infra/metrics" // registers the prometheus and influx sinks
	"github.com/kilianp07/esom/infra/timeseries"
	"github.com/kilianp07/esom/pkg/export"
)

// Service wires the configuration into a scenario runner and writes its
// outputs.
type Service struct {
	Reference scenario.Reference
	Params    []scenario.Params
	Runner    *scenario.Runner
	Store     history.Store

	cfg *config.Config
	log logger.Logger
}

// LoadReference reads the profiles and cost forecast named by cfg.
func LoadReference(cfg *config.Config) (scenario.Reference, error) {
	ref := scenario.Reference{System: cfg.System}
	profiles, err := timeseries.LoadProfiles(cfg.Data.Profiles)
	if err != nil {
		return ref, fmt.Errorf("profiles: %w", err)
	}
	ref.Profiles = profiles
	if cfg.Data.Forecast != "" {
		forecast, err := timeseries.LoadForecast(cfg.Data.Forecast)
		if err != nil {
			return ref, fmt.Errorf("forecast: %w", err)
		}
		ref.Forecast = scenario.CostForecast(forecast)
	}
	return ref, nil
}

// LoadParams returns the scenarios of the run: the catalog named by the
// configuration, or the inline scenarios. A catalog system replaces the
// configured one.
func LoadParams(cfg *config.Config, catalog string) ([]scenario.Params, *scenario.System, error) {
	if catalog == "" {
		catalog = cfg.Data.Scenarios
	}
	if catalog == "" {
		return cfg.ScenarioParams(cfg.Scenarios), nil, nil
	}
	c, err := scenario.LoadCatalog(catalog)
	if err != nil {
		return nil, nil, fmt.Errorf("scenario catalog: %w", err)
	}
	return cfg.ScenarioParams(c.Scenarios), c.System, nil
}

// New creates a Service from the configuration. catalog optionally
// overrides the scenario file of the configuration.
func New(cfg *config.Config, catalog string) (*Service, error) {
	if err := logger.Configure(cfg.Logging); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	logg := logger.New("runner")

	ref, err := LoadReference(cfg)
	if err != nil {
		return nil, err
	}
	params, system, err := LoadParams(cfg, catalog)
	if err != nil {
		return nil, err
	}
	if system != nil {
		ref.System = *system
	}

	slv, err := solver.New(cfg.Solver)
	if err != nil {
		return nil, fmt.Errorf("solver: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	store, err := history.New(cfg.History)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	runner, err := scenario.NewRunner(ref, slv, sink, store, logg)
	if err != nil {
		return nil, err
	}
	return &Service{
		Reference: ref,
		Params:    params,
		Runner:    runner,
		Store:     store,
		cfg:       cfg,
		log:       logg,
	}, nil
}

// Run solves the selected scenarios, or all of them, and writes the result
// files. Failed scenarios are part of the returned results.
func (s *Service) Run(ctx context.Context, only []string) ([]scenario.Result, error) {
	params, err := scenario.Select(s.Params, only)
	if err != nil {
		return nil, err
	}
	res := s.Runner.Run(ctx, params)
	if err := s.WriteOutputs(res); err != nil {
		return res, err
	}
	return res, nil
}

// WriteOutputs writes the long-format results and the run summary.
func (s *Service) WriteOutputs(res []scenario.Result) error {
	out := s.cfg.Output
	if err := os.MkdirAll(out.Dir, 0o755); err != nil {
		return err
	}
	var rows []results.Row
	for _, r := range res {
		rows = append(rows, r.Rows...)
	}
	f, err := os.Create(filepath.Join(out.Dir, out.Results))
	if err != nil {
		return err
	}
	if err := export.WriteResultsCSV(f, rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("write results: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	sf, err := os.Create(filepath.Join(out.Dir, out.Summary))
	if err != nil {
		return err
	}
	if out.Format == "json" {
		err = export.WriteJSON(sf, res, out.Currency)
	} else {
		err = export.WriteSummaryCSV(sf, res, out.Currency)
	}
	if err != nil {
		_ = sf.Close()
		return fmt.Errorf("write summary: %w", err)
	}
	s.log.Infof("results written to %s", out.Dir)
	return sf.Close()
}

// Close releases resources held by the service.
func (s *Service) Close() error { return s.Store.Close() }
