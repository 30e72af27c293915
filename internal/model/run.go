package model

import (
	"fmt"
	"time"
)

// Report run lifecycle statuses.
const (
	StatusPending     = "pending"
	StatusExtracting  = "extracting"
	StatusAggregating = "aggregating"
	StatusExporting   = "exporting"
	StatusCompleted   = "completed"
	StatusEmpty       = "empty" // extraction succeeded but returned zero rows
	StatusFailed      = "failed"
)

// ISODate is the wire format for date bounds ("2006-01-02").
const ISODate = "2006-01-02"

// BRDate is the registry file format for date bounds ("02/01/2006").
const BRDate = "02/01/2006"

// DateWindow is an inclusive [start, end] day range.
type DateWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ParseWindow builds a DateWindow from two ISO date strings.
func ParseWindow(start, end string) (DateWindow, error) {
	s, err := time.Parse(ISODate, start)
	if err != nil {
		return DateWindow{}, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	e, err := time.Parse(ISODate, end)
	if err != nil {
		return DateWindow{}, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	w := DateWindow{Start: s, End: e}
	if e.Before(s) {
		return w, fmt.Errorf("end date %s precedes start date %s", end, start)
	}
	return w, nil
}

// StartISO returns the start bound as a SQL date literal.
func (w DateWindow) StartISO() string { return w.Start.Format(ISODate) }

// EndISO returns the end bound as a SQL date literal.
func (w DateWindow) EndISO() string { return w.End.Format(ISODate) }

// StartBR returns the start bound in dd/mm/yyyy, the renderer-facing format.
func (w DateWindow) StartBR() string { return w.Start.Format(BRDate) }

// EndBR returns the end bound in dd/mm/yyyy.
func (w DateWindow) EndBR() string { return w.End.Format(BRDate) }

// ReportRequest is the payload for POST /api/v1/reports and the CLI flags.
type ReportRequest struct {
	Event     string `json:"event"`            // logical event name from the registry
	StartDate string `json:"startDate"`        // ISO date, inclusive
	EndDate   string `json:"endDate"`          // ISO date, inclusive
	View      string `json:"view,omitempty"`   // renderer view type, e.g. "Nacional"
	Filter    string `json:"filter,omitempty"` // specific item within the view, optional
}

// ReportRun is one tracked pipeline invocation.
type ReportRun struct {
	ID        string    `json:"id"`
	Event     string    `json:"event"`
	Database  string    `json:"database"`
	StartDate string    `json:"startDate"`
	EndDate   string    `json:"endDate"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
