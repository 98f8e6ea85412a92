package storage

import "garmin-etl/models"

// Load strategies: replace drops and recreates the table, append inserts
// into the existing table, fail refuses to touch a table that already holds
// rows.
const (
	StrategyReplace = "replace"
	StrategyAppend  = "append"
	StrategyFail    = "fail"
)

// Loader is the interface the pipeline needs from a relational backend.
type Loader interface {
	Load(frame *models.Frame, table, strategy string) error
	TestConnection() bool
	RowCount(table string) (int, error)
	Close() error
}

// SnapshotWriter persists a cleaned frame to a local file for inspection.
type SnapshotWriter interface {
	WriteFrame(frame *models.Frame, path string) error
}
