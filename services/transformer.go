// Package services normalizes aggregated Garmin record sets into cleaned,
// deduplicated tabular frames, one routine per dataset kind.
package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"garmin-etl/models"
	"garmin-etl/utils"
)

// Transformer applies the per-dataset business rules.
type Transformer struct {
	logger *utils.Logger
}

// NewTransformer creates a Transformer with the given logger.
func NewTransformer(logger *utils.Logger) *Transformer {
	return &Transformer{logger: logger}
}

// Transform dispatches a raw record set to the routine for its kind and
// returns the cleaned frame. The switch is closed over DatasetKind so a new
// kind without a routine fails to compile into silence here.
func (t *Transformer) Transform(kind models.DatasetKind, raw models.RawRecordSet) (*models.Frame, error) {
	if len(raw) == 0 {
		return nil, &models.TransformError{Dataset: kind.String(), Err: errors.New("no records to transform")}
	}

	f := models.NewFrame(raw)
	var err error
	switch kind {
	case models.RunningData:
		err = t.transformRunning(f)
	case models.SummarizedActivities:
		err = t.transformSummarizedActivities(f)
	case models.SleepData:
		err = t.transformSleep(f)
	case models.AcuteTrainingLoad:
		err = t.transformATL(f)
	case models.MaxMetData, models.TrainingHistory, models.UserDailySummary:
		err = t.transformByCalendarDate(f, kind)
	case models.RacePredictions:
		err = t.transformRacePredictions(f)
	default:
		err = fmt.Errorf("no transformation routine for kind %d", int(kind))
	}
	if err != nil {
		return nil, &models.TransformError{Dataset: kind.String(), Err: err}
	}

	if dropped := f.DropAllNullColumns(); len(dropped) > 0 {
		t.logger.Debug("[transform] %s: dropped all-null columns: %s", kind, strings.Join(dropped, ", "))
	}

	t.logger.Info("[transform] %s: %d records, %d columns", kind, f.Len(), len(f.Columns))
	return f, nil
}

var dateLayouts = []string{
	"2006-01-02T15:04:05.0",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTime accepts the date encodings that occur across the export:
// already-typed times, epoch milliseconds, and a handful of ISO-ish layouts.
func parseTime(v any) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d, true
	case float64:
		if d == 0 {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(d)).UTC(), true
	case string:
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, d); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

// dateOnly strips the time-of-day.
func dateOnly(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// keyString renders a natural-key component deterministically.
func keyString(v any) string {
	switch k := v.(type) {
	case nil:
		return "<nil>"
	case time.Time:
		return k.Format("2006-01-02")
	case float64:
		return fmt.Sprintf("%g", k)
	default:
		return fmt.Sprint(k)
	}
}

// dedupKeepFirst keeps the first record per natural key, in current record
// order. Callers that need a different survivor sort before calling.
func dedupKeepFirst(f *models.Frame, keyCols ...string) int {
	seen := utils.NewKeySet()
	before := f.Len()
	f.Filter(func(rec map[string]any) bool {
		parts := make([]string, len(keyCols))
		for i, c := range keyCols {
			parts[i] = keyString(rec[c])
		}
		return seen.Add(strings.Join(parts, "|"))
	})
	return before - f.Len()
}

// compareValues orders mixed scalar values: nil first, then times, numbers
// and strings by their natural order.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			default:
				return 0
			}
		}
	}
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// sortRecordsBy stably sorts records by the given columns ascending.
func sortRecordsBy(f *models.Frame, cols ...string) {
	sort.SliceStable(f.Records, func(i, j int) bool {
		for _, c := range cols {
			if cmp := compareValues(f.Records[i][c], f.Records[j][c]); cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})
}
