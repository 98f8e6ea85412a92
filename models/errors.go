package models

import "fmt"

// ConfigError means a requested dataset has no table or pattern mapping.
// It is fatal: the run aborts before any dataset is touched.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "config: " + e.Msg }

// ConnectivityError means the load target is unreachable. It is fatal: the
// run aborts with no dataset processed.
type ConnectivityError struct {
	Target string
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("connectivity: %s is unreachable", e.Target)
}

// ExtractionError is a per-dataset failure during file aggregation,
// including the zero-records case.
type ExtractionError struct {
	Dataset string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Dataset, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// TransformError is a per-dataset failure while applying business rules.
type TransformError struct {
	Dataset string
	Err     error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform %s: %v", e.Dataset, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// LoadError is a per-dataset failure while inserting into the target table.
type LoadError struct {
	Dataset string
	Table   string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s into %s: %v", e.Dataset, e.Table, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
