package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"go-sales-cockpit/internal/extract"
	"go-sales-cockpit/internal/metrics"
	"go-sales-cockpit/internal/model"
	"go-sales-cockpit/internal/pipeline"
	"go-sales-cockpit/internal/registry"
	"go-sales-cockpit/internal/report"
	"go-sales-cockpit/internal/store"
	"go-sales-cockpit/pkg/utils"
)

// runTimeout bounds one report generation end to end.
const runTimeout = 10 * time.Minute

// ReportHandler serves the report API. Completed datasets are kept in memory
// per run so the context endpoint can build renderer views without re-running
// the pipeline; artifacts on disk are the durable output.
type ReportHandler struct {
	Registry *registry.Registry
	Runner   *pipeline.Runner
	Output   *utils.OutputManager

	mu      sync.Mutex
	results map[string]*pipeline.Result
}

// NewReportHandler wires the handler dependencies. The runner publishes each
// completed result into the handler's cache before the run's status turns
// completed, so a client that polls the status and then asks for the context
// never races the cache.
func NewReportHandler(reg *registry.Registry, runner *pipeline.Runner, out *utils.OutputManager) *ReportHandler {
	h := &ReportHandler{
		Registry: reg,
		Runner:   runner,
		Output:   out,
		results:  make(map[string]*pipeline.Result),
	}
	if runner != nil {
		runner.Publish = h.publishResult
	}
	return h
}

func (h *ReportHandler) publishResult(runID string, res *pipeline.Result) {
	h.mu.Lock()
	h.results[runID] = res
	h.mu.Unlock()
}

// CreateReport validates the request, records a pending run and starts the
// pipeline in the background.
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req model.ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	window, err := model.ParseWindow(req.StartDate, req.EndDate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ev, err := h.Registry.Validate(req.Event, window)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, registry.ErrUnknownEvent) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	runID := uuid.New().String()
	run := model.ReportRun{
		ID:        runID,
		Event:     ev.Name,
		Database:  ev.Database,
		StartDate: window.StartISO(),
		EndDate:   window.EndISO(),
	}
	if err := store.SaveRun(run); err != nil {
		http.Error(w, "Failed to save run", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	go func() {
		defer cancel()
		start := time.Now()
		res, err := h.Runner.Run(ctx, runID, ev.Database, window)
		metrics.RunDuration.Observe(time.Since(start).Seconds())
		switch {
		case err == nil:
			metrics.RunsTotal.WithLabelValues(model.StatusCompleted).Inc()
			metrics.RecordsExtracted.Observe(float64(res.Records))
		case errors.Is(err, extract.ErrEmptyResult):
			metrics.RunsTotal.WithLabelValues(model.StatusEmpty).Inc()
		default:
			metrics.RunsTotal.WithLabelValues(model.StatusFailed).Inc()
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":   "Report run created",
		"runID":     runID,
		"event":     ev.Name,
		"status":    model.StatusPending,
		"createdAt": time.Now().UTC(),
	})
}

// ListReports returns every tracked run, newest first.
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	runs, err := store.ListRuns()
	if err != nil {
		http.Error(w, "Failed to fetch runs", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

// GetReport returns one run with its promoted artifacts, when present.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	run, err := store.GetRun(runID)
	if err != nil {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}

	resp := map[string]interface{}{"run": run}
	if run.Status == model.StatusCompleted {
		if files, err := h.Output.ListArtifacts(runID); err == nil {
			artifacts := make([]map[string]interface{}, 0, len(files))
			for _, name := range files {
				size, _ := h.Output.FileSize(filepath.Join(h.Output.RunDir(runID), name))
				artifacts = append(artifacts, map[string]interface{}{
					"file":        name,
					"sizeBytes":   size,
					"downloadURL": h.Output.DownloadURL(runID, name),
				})
			}
			resp["artifacts"] = artifacts
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetReportErrors returns the recorded errors for a run.
func (h *ReportHandler) GetReportErrors(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	if _, err := store.GetRun(runID); err != nil {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	msgs, err := store.GetRunErrors(runID)
	if err != nil {
		http.Error(w, "Failed to retrieve errors", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"run_id": runID,
		"errors": msgs,
		"count":  len(msgs),
	})
}

// GetReportContext builds the renderer placeholder map and detail table for a
// completed run. Query parameters: view (default "Nacional") and filter.
func (h *ReportHandler) GetReportContext(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	run, err := store.GetRun(runID)
	if err != nil {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	if run.Status != model.StatusCompleted {
		http.Error(w, fmt.Sprintf("Run is %s, context requires a completed run", run.Status), http.StatusConflict)
		return
	}

	h.mu.Lock()
	res, ok := h.results[runID]
	h.mu.Unlock()
	if !ok {
		http.Error(w, "Run datasets no longer in memory, generate the report again", http.StatusGone)
		return
	}

	ev, err := h.Registry.Lookup(run.Event)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	view := r.URL.Query().Get("view")
	if view == "" {
		view = "Nacional"
	}
	filter := r.URL.Query().Get("filter")

	placeholders, table, err := report.BuildContext(res.Datasets, ev, res.Window, view, filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"run_id":       runID,
		"view":         view,
		"filter":       filter,
		"placeholders": placeholders,
		"table":        table,
	})
}

// ListViews returns the report view types the context endpoint accepts.
func (h *ReportHandler) ListViews(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report.ViewTypes())
}

// ListEvents returns the event registry.
func (h *ReportHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Registry.Events())
}

// DownloadArtifact serves one promoted CSV artifact. Both path segments are
// validated before touching the filesystem: run ids are always UUIDs, and the
// file name must be a plain base name, so neither segment can climb out of
// the output directory.
func (h *ReportHandler) DownloadArtifact(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(runID); err != nil {
		http.Error(w, "Invalid run id", http.StatusBadRequest)
		return
	}
	fileName := chi.URLParam(r, "file")
	if fileName != filepath.Base(fileName) || fileName == "." || fileName == ".." {
		http.Error(w, "Invalid file name", http.StatusBadRequest)
		return
	}

	filePath := filepath.Join(h.Output.RunDir(runID), fileName)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	http.ServeFile(w, r, filePath)
}
