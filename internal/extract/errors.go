package extract

import "errors"

// ErrEmptyResult reports an extraction that succeeded but matched zero rows.
// Callers treat it as "no data for this period", not as a pipeline defect.
var ErrEmptyResult = errors.New("extraction returned no rows for the requested window")

// ConnectionError wraps a failure to reach the data source. Fatal, no retry.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string { return "data source unreachable: " + e.Err.Error() }

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError wraps a query the data source rejected. Fatal, no retry.
type QueryError struct {
	Err error
}

func (e *QueryError) Error() string { return "funnel query failed: " + e.Err.Error() }

func (e *QueryError) Unwrap() error { return e.Err }
