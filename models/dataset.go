package models

import "fmt"

// DatasetKind identifies one of the Garmin export dataset families. It
// selects both the transformer and the target table for a pipeline run.
type DatasetKind int

const (
	RunningData DatasetKind = iota
	SummarizedActivities
	SleepData
	AcuteTrainingLoad
	MaxMetData
	RacePredictions
	TrainingHistory
	UserDailySummary
)

var kindNames = map[DatasetKind]string{
	RunningData:          "running_data",
	SummarizedActivities: "summarized_activities",
	SleepData:            "sleep_data",
	AcuteTrainingLoad:    "atl_data",
	MaxMetData:           "maxmet_data",
	RacePredictions:      "race_predictions",
	TrainingHistory:      "training_history",
	UserDailySummary:     "uds_data",
}

// String returns the dataset name used in configuration and logs.
func (k DatasetKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("DatasetKind(%d)", int(k))
}

// ParseDatasetKind maps a configured dataset name back to its kind.
func ParseDatasetKind(name string) (DatasetKind, error) {
	for kind, n := range kindNames {
		if n == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown dataset %q", name)
}

// AllDatasetKinds returns every kind in processing order.
func AllDatasetKinds() []DatasetKind {
	return []DatasetKind{
		RunningData,
		SummarizedActivities,
		SleepData,
		AcuteTrainingLoad,
		MaxMetData,
		RacePredictions,
		TrainingHistory,
		UserDailySummary,
	}
}

// DatasetStatus tracks a dataset through the pipeline state machine.
type DatasetStatus int

const (
	StatusPending DatasetStatus = iota
	StatusExtracting
	StatusTransforming
	StatusLoading
	StatusDone
	StatusFailed
)

func (s DatasetStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusExtracting:
		return "extracting"
	case StatusTransforming:
		return "transforming"
	case StatusLoading:
		return "loading"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}
