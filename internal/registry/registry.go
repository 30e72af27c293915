package registry

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"go-sales-cockpit/internal/model"
)

// ErrUnknownEvent reports a lookup for an event name the registry does not map.
var ErrUnknownEvent = errors.New("event not found in registry")

// ErrWindowOutOfBounds reports a requested date range outside the registered
// event bounds. The pipeline is never invoked for such a window.
var ErrWindowOutOfBounds = errors.New("date range outside the event bounds")

var dbNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Event maps a logical event name to its database identifier and the valid
// date bounds of the event.
type Event struct {
	Database string    `json:"db_name"`
	Name     string    `json:"event_name"`
	Start    time.Time `json:"start_date"`
	End      time.Time `json:"end_date"`
}

// Registry is the allow-list of events a report can be generated for.
type Registry struct {
	events []Event
	byName map[string]Event
}

// Load reads the event mapping file (CSV with columns db_name, event_name,
// start_date, end_date; dates in dd/mm/yyyy).
func Load(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open event registry: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read event registry: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("event registry %s has no events", path)
	}

	cols := map[string]int{}
	for i, name := range rows[0] {
		cols[name] = i
	}
	for _, required := range []string{"db_name", "event_name", "start_date", "end_date"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("event registry missing required column %q", required)
		}
	}

	reg := &Registry{byName: make(map[string]Event)}
	for n, row := range rows[1:] {
		ev := Event{
			Database: row[cols["db_name"]],
			Name:     row[cols["event_name"]],
		}
		if !dbNamePattern.MatchString(ev.Database) {
			return nil, fmt.Errorf("event registry row %d: invalid database identifier %q", n+2, ev.Database)
		}
		if ev.Start, err = time.Parse(model.BRDate, row[cols["start_date"]]); err != nil {
			return nil, fmt.Errorf("event registry row %d: %w", n+2, err)
		}
		if ev.End, err = time.Parse(model.BRDate, row[cols["end_date"]]); err != nil {
			return nil, fmt.Errorf("event registry row %d: %w", n+2, err)
		}
		reg.events = append(reg.events, ev)
		reg.byName[ev.Name] = ev
	}
	return reg, nil
}

// Events lists the registered events in file order.
func (r *Registry) Events() []Event {
	return r.events
}

// Lookup resolves a logical event name.
func (r *Registry) Lookup(name string) (Event, error) {
	ev, ok := r.byName[name]
	if !ok {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}
	return ev, nil
}

// Validate resolves the event and rejects any window outside its registered
// bounds. This runs upstream of the pipeline, which never sees an invalid
// range.
func (r *Registry) Validate(name string, w model.DateWindow) (Event, error) {
	ev, err := r.Lookup(name)
	if err != nil {
		return Event{}, err
	}
	if w.Start.Before(ev.Start) || w.End.After(ev.End) {
		return Event{}, fmt.Errorf("%w: requested %s..%s, event %q runs %s..%s",
			ErrWindowOutOfBounds, w.StartISO(), w.EndISO(),
			ev.Name, ev.Start.Format(model.ISODate), ev.End.Format(model.ISODate))
	}
	return ev, nil
}
