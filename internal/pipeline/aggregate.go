package pipeline

import (
	"sort"
	"strings"
	"sync"

	"go-sales-cockpit/internal/model"
)

// Level defines one roll-up granularity: the grouping key and how the
// resulting artifact identifies its rows.
type Level struct {
	Name       string   // artifact name suffix, e.g. "regional"
	KeyColumns []string // grouping key; empty means a single national row
	IDColumn   string   // first artifact column; empty for nacional
}

// Levels is the fixed six-level fan-out. Every level is computed independently
// from the same granular base, never from another level.
var Levels = []Level{
	{Name: "pdv", KeyColumns: []string{"rid", "sid", "grupo", "marca", "pdv"}, IDColumn: "pdv"},
	{Name: "regional", KeyColumns: []string{"rid"}, IDColumn: "rid"},
	{Name: "setor", KeyColumns: []string{"sid"}, IDColumn: "sid"},
	{Name: "grupo", KeyColumns: []string{"grupo"}, IDColumn: "grupo"},
	{Name: "marca", KeyColumns: []string{"marca"}, IDColumn: "marca"},
	{Name: "nacional"},
}

// LevelVendedor is the granular master view. Its key is every identification
// column, so the roll-up is a one-to-one passthrough of the extraction rows.
var LevelVendedor = Level{
	Name:       "vendedor",
	KeyColumns: []string{"rid", "sid", "grupo", "marca", "pdv", "prospector_id", "nome_comercial"},
	IDColumn:   "nome_comercial",
}

// Columns returns the identification columns of the level's artifact in
// order: the id column first, then the remaining key columns as context.
func (l Level) Columns() []string {
	if l.IDColumn == "" {
		return nil
	}
	cols := []string{l.IDColumn}
	for _, c := range l.KeyColumns {
		if c != l.IDColumn {
			cols = append(cols, c)
		}
	}
	return cols
}

// Row is one aggregated output row at some level.
type Row struct {
	Keys map[string]string `json:"keys,omitempty"`
	model.Counts
	model.Rates
}

// Dataset is the aggregated output of one level.
type Dataset struct {
	Level Level `json:"level"`
	Rows  []Row `json:"rows"`
}

// keySep joins key values; \x1f never occurs in identification data.
const keySep = "\x1f"

// Rollup groups the granular records by the level's key and sums all ten
// metrics per group. Rows come back sorted by key so downstream output is
// deterministic.
func Rollup(records []model.FunnelRecord, level Level) Dataset {
	groups := make(map[string]*Row)
	for _, rec := range records {
		parts := make([]string, len(level.KeyColumns))
		for i, col := range level.KeyColumns {
			parts[i] = rec.Ident(col)
		}
		key := strings.Join(parts, keySep)

		row, ok := groups[key]
		if !ok {
			row = &Row{Keys: make(map[string]string, len(level.KeyColumns))}
			for _, col := range level.KeyColumns {
				row.Keys[col] = rec.Ident(col)
			}
			groups[key] = row
		}
		row.Counts.Add(rec.Counts)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ds := Dataset{Level: level, Rows: make([]Row, 0, len(groups))}
	for _, k := range keys {
		ds.Rows = append(ds.Rows, *groups[k])
	}
	return ds
}

// RollupAll computes every level concurrently. The levels are pure functions
// of the same base slice, so the fan-out shares no mutable state.
func RollupAll(records []model.FunnelRecord, levels []Level) []Dataset {
	datasets := make([]Dataset, len(levels))
	var wg sync.WaitGroup
	wg.Add(len(levels))
	for i, level := range levels {
		go func(i int, level Level) {
			defer wg.Done()
			datasets[i] = Rollup(records, level)
		}(i, level)
	}
	wg.Wait()
	return datasets
}

// VerifyRollup checks the conservation property: for every metric, the sum
// across any level's rows must equal the total over the granular base. A
// mismatch is an internal defect and aborts the run.
func VerifyRollup(records []model.FunnelRecord, datasets []Dataset) error {
	var want model.Counts
	for _, rec := range records {
		want.Add(rec.Counts)
	}
	for _, ds := range datasets {
		var got model.Counts
		for _, row := range ds.Rows {
			got.Add(row.Counts)
		}
		for _, metric := range model.MetricColumns {
			if got.Metric(metric) != want.Metric(metric) {
				return &RollupError{
					Level:  ds.Level.Name,
					Metric: metric,
					Got:    got.Metric(metric),
					Want:   want.Metric(metric),
				}
			}
		}
	}
	return nil
}
