package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"garmin-etl/models"
	"garmin-etl/units"
)

var identifierUnsafe = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// distanceBins are the fixed half-open mile bins, lowest first. A distance
// belongs to the last bin whose lower bound it reaches.
var distanceBins = []struct {
	lo    float64
	label string
	id    int
}{
	{0, "0-3 miles", 1},
	{3, "3-5 miles", 2},
	{5, "5-7 miles", 3},
	{7, "7-10 miles", 4},
	{10, "10-13 miles", 5},
	{13, "13+ miles", 6},
}

// transformRunning runs the five-stage running pipeline: column hygiene,
// distance binning, date feature derivation, column pruning, then time
// parsing with cumulative aggregation. Each stage feeds the next.
func (t *Transformer) transformRunning(f *models.Frame) error {
	t.cleanRunningColumns(f)
	t.createDistanceGroups(f)
	t.deriveDateFeatures(f)
	f.DropColumns("Favorite", "Best_Lap_Time", "Number_of_Laps", "Avg_GAP")
	t.parseClockColumns(f)
	t.addCumulativeColumns(f)
	t.formatClockColumns(f)
	return nil
}

// cleanRunningColumns drops all-null columns and normalizes the remaining
// column names to an identifier-safe form.
func (t *Transformer) cleanRunningColumns(f *models.Frame) {
	if dropped := f.DropAllNullColumns(); len(dropped) > 0 {
		t.logger.Debug("[transform] running_data: dropped %d null columns", len(dropped))
	}
	for _, col := range append([]string(nil), f.Columns...) {
		cleaned := identifierUnsafe.ReplaceAllString(strings.ReplaceAll(col, " ", "_"), "")
		if cleaned != col {
			f.RenameColumn(col, cleaned)
		}
	}
}

// distanceGroup assigns a distance in miles to its bin. The bins are
// half-open, so a distance of exactly 3 lands in "3-5 miles".
func distanceGroup(miles float64) (string, int, bool) {
	if miles < 0 {
		return "", 0, false
	}
	for i := len(distanceBins) - 1; i >= 0; i-- {
		if miles >= distanceBins[i].lo {
			return distanceBins[i].label, distanceBins[i].id, true
		}
	}
	return "", 0, false
}

// createDistanceGroups attaches the human-readable bin label and its stable
// sort rank immediately after the distance column. Records with a missing or
// non-numeric distance get a null bin instead of failing.
func (t *Transformer) createDistanceGroups(f *models.Frame) {
	if !f.HasColumn("Distance") || f.HasColumn("Distance_Group") {
		return
	}
	for _, rec := range f.Records {
		if miles, ok := toFloat(rec["Distance"]); ok {
			if label, id, binned := distanceGroup(miles); binned {
				rec["Distance_Group"] = label
				rec["DistanceGroupId"] = id
				continue
			}
		}
		rec["Distance_Group"] = nil
		rec["DistanceGroupId"] = nil
	}
	f.InsertAfter("Distance", "Distance_Group", "DistanceGroupId")
}

// deriveDateFeatures normalizes the date to midnight and derives the month
// number, month abbreviation, year and ISO week, placed right after Date.
func (t *Transformer) deriveDateFeatures(f *models.Frame) {
	if !f.HasColumn("Date") {
		return
	}
	for _, rec := range f.Records {
		ts, ok := parseTime(rec["Date"])
		if !ok {
			rec["Date"] = nil
			rec["Month_Numeric"] = nil
			rec["Month"] = nil
			rec["Year"] = nil
			rec["Week_of_Year"] = nil
			continue
		}
		day := dateOnly(ts)
		rec["Date"] = day
		rec["Month_Numeric"] = int(day.Month())
		rec["Month"] = day.Format("Jan")
		rec["Year"] = day.Year()
		_, week := day.ISOWeek()
		rec["Week_of_Year"] = week
	}
	f.InsertAfter("Date", "Month_Numeric", "Month", "Year", "Week_of_Year")
}

// parseClockColumns converts pace and duration text to typed durations and
// derives the idle time. Pace fields carry sub-second fractions and "MM:SS"
// form; duration fields come as either "MM:SS" or "H:MM:SS".
func (t *Transformer) parseClockColumns(f *models.Frame) {
	for _, col := range []string{"Avg_Pace", "Best_Pace"} {
		if !f.HasColumn(col) {
			continue
		}
		for _, rec := range f.Records {
			rec[col] = parseClockValue(rec[col], false)
		}
	}

	for _, col := range []string{"Time", "Moving_Time", "Elapsed_Time"} {
		if !f.HasColumn(col) {
			continue
		}
		for _, rec := range f.Records {
			rec[col] = parseClockValue(rec[col], true)
		}
	}

	if f.HasColumn("Elapsed_Time") && f.HasColumn("Moving_Time") {
		for _, rec := range f.Records {
			elapsed, okE := rec["Elapsed_Time"].(time.Duration)
			moving, okM := rec["Moving_Time"].(time.Duration)
			if okE && okM {
				rec["Idle_Time"] = elapsed - moving
			} else {
				rec["Idle_Time"] = nil
			}
		}
		f.AddColumn("Idle_Time")
	}
}

func parseClockValue(v any, widen bool) any {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = units.DropFraction(s)
	if widen {
		s = units.StandardizeClock(s)
	}
	if seconds, ok := units.ParseClock(s); ok {
		return time.Duration(seconds) * time.Second
	}
	return nil
}

// addCumulativeColumns computes two rolling cumulative sums of run time, one
// grouped by (year, ISO week) and one by (year, month), plus the total
// strictly prior to each record within its group.
func (t *Transformer) addCumulativeColumns(f *models.Frame) {
	if !f.HasColumn("Time") || !f.HasColumn("Year") || !f.HasColumn("Week_of_Year") || !f.HasColumn("Month") {
		return
	}

	weekly := make(map[string]time.Duration)
	monthly := make(map[string]time.Duration)
	for _, rec := range f.Records {
		dur, _ := rec["Time"].(time.Duration)

		weekKey := fmt.Sprintf("%v|%v", rec["Year"], rec["Week_of_Year"])
		priorWeek := weekly[weekKey]
		weekly[weekKey] = priorWeek + dur
		rec["Weekly_Cumulative_Mins"] = priorWeek + dur
		rec["Weekly_Mins_Prior_to_Run"] = units.Round2(priorWeek.Minutes())

		monthKey := fmt.Sprintf("%v|%v", rec["Year"], rec["Month"])
		priorMonth := monthly[monthKey]
		monthly[monthKey] = priorMonth + dur
		rec["Monthly_Cumulative_Mins"] = priorMonth + dur
		rec["Monthly_Mins_Prior_to_Run"] = units.Round2(priorMonth.Minutes())
	}

	f.AddColumn("Weekly_Cumulative_Mins")
	f.AddColumn("Weekly_Mins_Prior_to_Run")
	f.AddColumn("Monthly_Cumulative_Mins")
	f.AddColumn("Monthly_Mins_Prior_to_Run")
}

// formatClockColumns renders the duration-typed columns back to "H:MM:SS"
// text for load compatibility.
func (t *Transformer) formatClockColumns(f *models.Frame) {
	cols := []string{
		"Time", "Avg_Pace", "Weekly_Cumulative_Mins", "Monthly_Cumulative_Mins",
		"Best_Pace", "Moving_Time", "Elapsed_Time", "Idle_Time",
	}
	for _, col := range cols {
		if !f.HasColumn(col) {
			continue
		}
		for _, rec := range f.Records {
			if dur, ok := rec[col].(time.Duration); ok {
				rec[col] = units.FormatDuration(dur.Seconds())
			}
		}
	}
}
