package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go-sales-cockpit/internal/model"
	"go-sales-cockpit/pkg/utils"
)

// utf8BOM prefixes every artifact so spreadsheet tools detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Export serializes each dataset into its visao_<level>.csv artifact inside a
// staging directory, then promotes the whole set at once. If any level fails
// to serialize, the staging directory is discarded and nothing previously
// exported is touched.
func Export(datasets []Dataset, om *utils.OutputManager, runID string) ([]string, error) {
	stageDir, err := om.StageRunDir(runID)
	if err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	files := make([]string, 0, len(datasets))
	for _, ds := range datasets {
		name := utils.ArtifactName(ds.Level.Name)
		if err := writeArtifact(filepath.Join(stageDir, name), ds); err != nil {
			om.Discard(runID)
			return nil, fmt.Errorf("serialize %s: %w", name, err)
		}
		files = append(files, name)
	}

	if err := om.Promote(runID); err != nil {
		om.Discard(runID)
		return nil, fmt.Errorf("promote artifacts: %w", err)
	}
	return files, nil
}

// writeArtifact writes one level's CSV with the fixed column layout: the id
// column, context columns, the ten counts, then the six rates. Rows arrive
// already sorted from the roll-up, so identical inputs produce identical
// bytes.
func writeArtifact(path string, ds Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return err
	}

	w := csv.NewWriter(f)
	identCols := ds.Level.Columns()

	header := make([]string, 0, len(identCols)+len(model.MetricColumns)+len(model.RateColumns))
	header = append(header, identCols...)
	header = append(header, model.MetricColumns...)
	header = append(header, model.RateColumns...)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, row := range ds.Rows {
		rec := make([]string, 0, len(header))
		for _, col := range identCols {
			rec = append(rec, row.Keys[col])
		}
		for _, metric := range model.MetricColumns {
			rec = append(rec, strconv.FormatInt(row.Counts.Metric(metric), 10))
		}
		for _, rate := range model.RateColumns {
			rec = append(rec, strconv.FormatFloat(row.Rates.Rate(rate), 'f', -1, 64))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
