package store

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"go-sales-cockpit/internal/model"
)

var db *sql.DB

// InitDB opens the run-tracking database and creates the schema if needed.
// This store only tracks report runs; funnel data is never persisted.
func InitDB(dbPath string) error {
	var err error
	db, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}

	runTable := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		event TEXT,
		event_db TEXT,
		start_date TEXT,
		end_date TEXT,
		status TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);
	`
	errorTable := `
	CREATE TABLE IF NOT EXISTS run_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		error_message TEXT,
		created_at DATETIME
	);
	`

	if _, err := db.Exec(runTable); err != nil {
		return err
	}
	if _, err := db.Exec(errorTable); err != nil {
		return err
	}

	return nil
}

// SaveRun stores a new report run in pending state.
func SaveRun(run model.ReportRun) error {
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO runs (id, event, event_db, start_date, end_date, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Event, run.Database, run.StartDate, run.EndDate, model.StatusPending, now, now)
	return err
}

// UpdateRunStatus updates the lifecycle status of a run.
func UpdateRunStatus(runID, status string) error {
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`, status, now, runID)
	return err
}

// SaveRunError records an error for a run.
func SaveRunError(runID string, err error) error {
	if err == nil {
		return nil
	}
	now := time.Now().UTC()
	_, e := db.Exec(`INSERT INTO run_errors (run_id, error_message, created_at) VALUES (?, ?, ?)`,
		runID, err.Error(), now)
	return e
}

// ListRuns returns all runs, newest first.
func ListRuns() ([]model.ReportRun, error) {
	rows, err := db.Query(`SELECT id, event, event_db, start_date, end_date, status, created_at, updated_at
		FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.ReportRun
	for rows.Next() {
		var r model.ReportRun
		if err := rows.Scan(&r.ID, &r.Event, &r.Database, &r.StartDate, &r.EndDate, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun fetches one run by id.
func GetRun(runID string) (model.ReportRun, error) {
	var r model.ReportRun
	err := db.QueryRow(`SELECT id, event, event_db, start_date, end_date, status, created_at, updated_at
		FROM runs WHERE id = ?`, runID).
		Scan(&r.ID, &r.Event, &r.Database, &r.StartDate, &r.EndDate, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

// GetRunErrors returns the recorded errors for a run, oldest first.
func GetRunErrors(runID string) ([]string, error) {
	rows, err := db.Query(`SELECT error_message FROM run_errors WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
