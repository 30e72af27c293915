package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go-sales-cockpit/internal/extract"
	"go-sales-cockpit/internal/model"
	"go-sales-cockpit/internal/store"
	"go-sales-cockpit/pkg/utils"
)

// Runner wires the stages of one report generation: extract, roll up, verify,
// enrich, export. The pipeline is linear; any stage failure aborts the run
// before artifacts are promoted.
type Runner struct {
	Extractor *extract.Extractor
	Output    *utils.OutputManager
	Log       *slog.Logger

	// Publish, when set, receives the result after artifacts are promoted
	// and before the run's status turns completed. A caller that observes
	// the terminal status is then guaranteed to find the published result.
	Publish func(runID string, res *Result)
}

// Result summarizes a completed run. Datasets carry the enriched rows
// (vendedor master first, then the six levels) for the report context
// builder.
type Result struct {
	RunID     string           `json:"run_id"`
	Records   int              `json:"records"`
	Artifacts []string         `json:"artifacts"`
	Datasets  []Dataset        `json:"-"`
	Window    model.DateWindow `json:"window"`
}

// Run executes the full pipeline for one (event database, window) pair.
// Failures bubble up unhandled; the run store records the terminal status so
// callers can distinguish "no data for this period" from a pipeline error.
func (r *Runner) Run(ctx context.Context, runID, eventDB string, window model.DateWindow) (res *Result, err error) {
	start := time.Now()
	r.Log.Info("pipeline started",
		slog.String("run_id", runID),
		slog.String("event_db", eventDB),
		slog.String("start", window.StartISO()),
		slog.String("end", window.EndISO()))

	defer func() {
		if err != nil {
			if errors.Is(err, extract.ErrEmptyResult) {
				store.UpdateRunStatus(runID, model.StatusEmpty)
			} else {
				store.UpdateRunStatus(runID, model.StatusFailed)
			}
			store.SaveRunError(runID, err)
		}
	}()

	store.UpdateRunStatus(runID, model.StatusExtracting)
	records, err := r.Extractor.Extract(ctx, eventDB, window)
	if err != nil {
		return nil, err
	}

	store.UpdateRunStatus(runID, model.StatusAggregating)
	levels := append([]Level{LevelVendedor}, Levels...)
	datasets := RollupAll(records, levels)
	if err = VerifyRollup(records, datasets); err != nil {
		return nil, err
	}
	for i := range datasets {
		EnrichRates(&datasets[i])
	}

	store.UpdateRunStatus(runID, model.StatusExporting)
	files, err := Export(datasets, r.Output, runID)
	if err != nil {
		return nil, err
	}

	res = &Result{
		RunID:     runID,
		Records:   len(records),
		Artifacts: files,
		Datasets:  datasets,
		Window:    window,
	}
	if r.Publish != nil {
		r.Publish(runID, res)
	}

	store.UpdateRunStatus(runID, model.StatusCompleted)
	r.Log.Info("pipeline completed",
		slog.String("run_id", runID),
		slog.Int("records", len(records)),
		slog.Int("artifacts", len(files)),
		slog.Duration("elapsed", time.Since(start)))

	return res, nil
}
