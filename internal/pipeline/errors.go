package pipeline

import "fmt"

// RollupError reports a violation of the roll-up conservation property. It is
// an internal defect: the run hard-fails instead of exporting inconsistent
// numbers.
type RollupError struct {
	Level  string
	Metric string
	Got    int64
	Want   int64
}

func (e *RollupError) Error() string {
	return fmt.Sprintf("rollup conservation violated at level %q: metric %s sums to %d, granular base totals %d",
		e.Level, e.Metric, e.Got, e.Want)
}
