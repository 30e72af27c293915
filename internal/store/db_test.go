package store

import (
	"errors"
	"path/filepath"
	"testing"

	"go-sales-cockpit/internal/model"
)

func initTestDB(t *testing.T) {
	t.Helper()
	if err := InitDB(filepath.Join(t.TempDir(), "cockpit.db")); err != nil {
		t.Fatalf("init db: %v", err)
	}
}

func TestRunLifecycle(t *testing.T) {
	initTestDB(t)

	run := model.ReportRun{
		ID:        "run-1",
		Event:     "Liquida Fevereiro",
		Database:  "dexp_liquida",
		StartDate: "2026-02-01",
		EndDate:   "2026-02-28",
	}
	if err := SaveRun(run); err != nil {
		t.Fatalf("save run: %v", err)
	}

	got, err := GetRun("run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if got.Status != model.StatusPending {
		t.Fatalf("new run status = %q, want pending", got.Status)
	}
	if got.Database != "dexp_liquida" {
		t.Fatalf("database = %q", got.Database)
	}

	if err := UpdateRunStatus("run-1", model.StatusCompleted); err != nil {
		t.Fatalf("update status: %v", err)
	}
	got, err = GetRun("run-1")
	if err != nil {
		t.Fatalf("get run after update: %v", err)
	}
	if got.Status != model.StatusCompleted {
		t.Fatalf("status = %q, want completed", got.Status)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	initTestDB(t)

	for _, id := range []string{"run-a", "run-b"} {
		if err := SaveRun(model.ReportRun{ID: id, Event: "E", Database: "d", StartDate: "2026-02-01", EndDate: "2026-02-28"}); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	runs, err := ListRuns()
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
}

func TestRunErrors(t *testing.T) {
	initTestDB(t)

	if err := SaveRun(model.ReportRun{ID: "run-1", Event: "E", Database: "d", StartDate: "2026-02-01", EndDate: "2026-02-28"}); err != nil {
		t.Fatalf("save run: %v", err)
	}
	if err := SaveRunError("run-1", errors.New("extraction blew up")); err != nil {
		t.Fatalf("save error: %v", err)
	}
	if err := SaveRunError("run-1", nil); err != nil {
		t.Fatalf("nil error must be a no-op, got %v", err)
	}

	msgs, err := GetRunErrors("run-1")
	if err != nil {
		t.Fatalf("get errors: %v", err)
	}
	if len(msgs) != 1 || msgs[0] != "extraction blew up" {
		t.Fatalf("errors = %v", msgs)
	}
}
