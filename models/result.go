package models

import "time"

// DatasetSuccess records one fully processed dataset.
type DatasetSuccess struct {
	Dataset       string
	RowsExtracted int
	RowsLoaded    int
	Table         string
}

// DatasetFailure records one dataset that could not be processed.
type DatasetFailure struct {
	Dataset string
	Err     error
}

// PipelineResult aggregates the outcome of one pipeline run. It is owned and
// mutated exclusively by the orchestrator and is immutable after Finalize.
type PipelineResult struct {
	Successes []DatasetSuccess
	Failures  []DatasetFailure
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// NewPipelineResult starts the run clock.
func NewPipelineResult() *PipelineResult {
	return &PipelineResult{StartTime: time.Now()}
}

// AddSuccess appends a processed dataset.
func (r *PipelineResult) AddSuccess(dataset, table string, extracted, loaded int) {
	r.Successes = append(r.Successes, DatasetSuccess{
		Dataset:       dataset,
		RowsExtracted: extracted,
		RowsLoaded:    loaded,
		Table:         table,
	})
}

// AddFailure appends a failed dataset.
func (r *PipelineResult) AddFailure(dataset string, err error) {
	r.Failures = append(r.Failures, DatasetFailure{Dataset: dataset, Err: err})
}

// Finalize stops the clock and computes the wall-clock duration.
func (r *PipelineResult) Finalize() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// ExitCode is 0 when every dataset succeeded, 1 otherwise.
func (r *PipelineResult) ExitCode() int {
	if len(r.Failures) > 0 {
		return 1
	}
	return 0
}
