package services

import (
	"sort"
	"strings"
	"time"

	"garmin-etl/models"
	"garmin-etl/units"
)

// transformSummarizedActivities converts epoch-millisecond timestamps and
// vendor units (cm distances, ms durations, cm/ms speeds, cm elevations) to
// canonical ones, then deduplicates by activityId keeping the first
// occurrence.
func (t *Transformer) transformSummarizedActivities(f *models.Frame) error {
	for _, col := range []string{"beginTimestamp", "startTimeGmt", "startTimeLocal"} {
		if !f.HasColumn(col) {
			continue
		}
		for _, rec := range f.Records {
			if ts, ok := parseTime(rec[col]); ok {
				rec[col] = ts
			} else {
				rec[col] = nil
			}
		}
	}

	conversions := map[string]func(float64) float64{
		"distance":        units.CmToKm,
		"duration":        units.MsToSeconds,
		"elapsedDuration": units.MsToSeconds,
		"movingDuration":  units.MsToSeconds,
		"avgSpeed":        units.CmPerMsToMPerS,
		"maxSpeed":        units.CmPerMsToMPerS,
		"elevationGain":   units.CmToM,
		"elevationLoss":   units.CmToM,
		"minElevation":    units.CmToM,
		"maxElevation":    units.CmToM,
	}
	for col, convert := range conversions {
		if !f.HasColumn(col) {
			continue
		}
		for _, rec := range f.Records {
			if v, ok := toFloat(rec[col]); ok {
				rec[col] = convert(v)
			}
		}
	}

	if f.HasColumn("activityId") {
		if removed := dedupKeepFirst(f, "activityId"); removed > 0 {
			t.logger.Debug("[transform] summarized_activities: removed %d duplicate activities", removed)
		}
	}
	return nil
}

// transformSleep flattens the nested score structure, derives the sleep
// duration from the GMT window, mean-imputes numeric gaps, and rescales
// second-denominated columns to hours.
func (t *Transformer) transformSleep(f *models.Frame) error {
	if f.HasColumn("calendarDate") {
		for _, rec := range f.Records {
			if ts, ok := parseTime(rec["calendarDate"]); ok {
				rec["calendarDate"] = dateOnly(ts)
			} else {
				rec["calendarDate"] = nil
			}
		}
	}

	t.flattenSleepScores(f)
	t.deriveSleepDuration(f)
	t.imputeNumericColumns(f)

	for _, col := range []string{"insight", "feedback"} {
		if !f.HasColumn(col) {
			continue
		}
		for _, rec := range f.Records {
			if rec[col] == nil {
				rec[col] = "NONE"
			}
		}
	}

	t.rescaleSecondsToHours(f)
	f.DropColumns("sleepWindowConfirmationType", "retro", "napList")
	return nil
}

// flattenSleepScores promotes the keys of the nested sleepScores map to
// top-level columns and removes the nested column.
func (t *Transformer) flattenSleepScores(f *models.Frame) {
	if !f.HasColumn("sleepScores") {
		return
	}

	nested := make(map[string]struct{})
	for _, rec := range f.Records {
		if scores, ok := rec["sleepScores"].(map[string]any); ok {
			for k := range scores {
				nested[k] = struct{}{}
			}
		}
	}
	newCols := make([]string, 0, len(nested))
	for k := range nested {
		newCols = append(newCols, k)
	}
	sort.Strings(newCols)

	for _, rec := range f.Records {
		scores, _ := rec["sleepScores"].(map[string]any)
		for _, k := range newCols {
			if scores != nil {
				rec[k] = scores[k]
			} else if _, exists := rec[k]; !exists {
				rec[k] = nil
			}
		}
	}
	f.DropColumns("sleepScores")
	for _, k := range newCols {
		f.AddColumn(k)
	}
}

// deriveSleepDuration computes end - start rounded to whole seconds and
// retains the duration, a numeric-hours variant and a formatted variant.
func (t *Transformer) deriveSleepDuration(f *models.Frame) {
	const startCol, endCol = "sleepStartTimestampGMT", "sleepEndTimestampGMT"
	if !f.HasColumn(startCol) || !f.HasColumn(endCol) {
		return
	}

	for _, rec := range f.Records {
		start, okStart := parseTime(rec[startCol])
		end, okEnd := parseTime(rec[endCol])
		if okStart && okEnd {
			dur := end.Sub(start).Round(time.Second)
			rec["sleepDuration"] = dur
			rec["sleepDurationHours"] = units.Round1(dur.Hours())
			rec["sleepDurationFormatted"] = units.FormatDuration(dur.Seconds())
		} else {
			rec["sleepDuration"] = nil
			rec["sleepDurationHours"] = nil
			rec["sleepDurationFormatted"] = nil
		}
	}
	f.DropColumns(startCol, endCol)
	f.AddColumn("sleepDuration")
	f.AddColumn("sleepDurationHours")
	f.AddColumn("sleepDurationFormatted")
}

// imputeNumericColumns fills missing values in numeric columns with the
// column mean computed over the batch being transformed.
func (t *Transformer) imputeNumericColumns(f *models.Frame) {
	for _, col := range f.Columns {
		var sum float64
		present := 0
		missing := 0
		numeric := true
		for _, rec := range f.Records {
			v, ok := rec[col]
			if !ok || v == nil {
				missing++
				continue
			}
			n, isNum := toFloat(v)
			if !isNum {
				numeric = false
				break
			}
			sum += n
			present++
		}
		if !numeric || present == 0 || missing == 0 {
			continue
		}
		mean := sum / float64(present)
		for _, rec := range f.Records {
			if v, ok := rec[col]; !ok || v == nil {
				rec[col] = mean
			}
		}
		t.logger.Debug("[transform] sleep_data: imputed %d missing values in %s with mean %.2f", missing, col, mean)
	}
}

// rescaleSecondsToHours divides every *Seconds* column by 3600 and renames
// it accordingly.
func (t *Transformer) rescaleSecondsToHours(f *models.Frame) {
	var secondCols []string
	for _, col := range f.Columns {
		if strings.Contains(col, "Seconds") {
			secondCols = append(secondCols, col)
		}
	}
	for _, col := range secondCols {
		for _, rec := range f.Records {
			if v, ok := toFloat(rec[col]); ok {
				rec[col] = units.Round1(v / 3600)
			}
		}
		f.RenameColumn(col, strings.ReplaceAll(col, "Seconds", "Hours"))
	}
}

// transformATL discards sentinel-status and ratio-less records, derives the
// calendar date from the timestamp, and keeps the most recent record per
// date.
func (t *Transformer) transformATL(f *models.Frame) error {
	if f.HasColumn("acwrStatus") {
		before := f.Len()
		f.Filter(func(rec map[string]any) bool {
			return rec["acwrStatus"] != "NONE"
		})
		if removed := before - f.Len(); removed > 0 {
			t.logger.Debug("[transform] atl_data: filtered %d NONE status records", removed)
		}
	}

	if f.HasColumn("timestamp") {
		for _, rec := range f.Records {
			if ts, ok := parseTime(rec["timestamp"]); ok {
				rec["calendarDate"] = dateOnly(ts)
			} else {
				rec["calendarDate"] = nil
			}
		}
		f.AddColumn("calendarDate")
	}

	f.DropColumns("deviceId")

	if f.HasColumn("dailyAcuteChronicWorkloadRatio") {
		f.Filter(func(rec map[string]any) bool {
			return rec["dailyAcuteChronicWorkloadRatio"] != nil
		})
	}

	if f.HasColumn("calendarDate") {
		// Most recent timestamp first, so keep-first selects it.
		sort.SliceStable(f.Records, func(i, j int) bool {
			return compareValues(f.Records[i]["timestamp"], f.Records[j]["timestamp"]) > 0
		})
		dedupKeepFirst(f, "calendarDate")
	}
	return nil
}

// transformByCalendarDate is the shared routine for the datasets that only
// need a canonical calendar date and first-occurrence dedup.
func (t *Transformer) transformByCalendarDate(f *models.Frame, kind models.DatasetKind) error {
	ensureCalendarDate(f)
	if f.HasColumn("calendarDate") {
		if removed := dedupKeepFirst(f, "calendarDate"); removed > 0 {
			t.logger.Debug("[transform] %s: removed %d duplicate dates", kind, removed)
		}
	}
	return nil
}

// transformRacePredictions keeps the minimum race time per calendar date and
// race distance.
func (t *Transformer) transformRacePredictions(f *models.Frame) error {
	ensureCalendarDate(f)
	if f.HasColumn("calendarDate") && f.HasColumn("raceDistance") {
		sortRecordsBy(f, "calendarDate", "raceDistance", "raceTime")
		dedupKeepFirst(f, "calendarDate", "raceDistance")
	}
	return nil
}

// ensureCalendarDate parses calendarDate to a date, deriving it from the
// timestamp column when no calendarDate exists.
func ensureCalendarDate(f *models.Frame) {
	switch {
	case f.HasColumn("calendarDate"):
		for _, rec := range f.Records {
			if ts, ok := parseTime(rec["calendarDate"]); ok {
				rec["calendarDate"] = dateOnly(ts)
			} else {
				rec["calendarDate"] = nil
			}
		}
	case f.HasColumn("timestamp"):
		for _, rec := range f.Records {
			if ts, ok := parseTime(rec["timestamp"]); ok {
				rec["calendarDate"] = dateOnly(ts)
			} else {
				rec["calendarDate"] = nil
			}
		}
		f.AddColumn("calendarDate")
	}
}
