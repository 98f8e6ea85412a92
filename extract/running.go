package extract

import (
	"strings"
	"time"

	"garmin-etl/models"
	"garmin-etl/units"
)

// RunningRecords narrows aggregated summarized activities down to running
// activities and maps each one to the flat running schema consumed by the
// running transformer. Distances arrive in meters in this feed (unlike the
// centimeter-based summarized feed) and paces arrive as speeds.
func RunningRecords(activities models.RawRecordSet) models.RawRecordSet {
	out := make(models.RawRecordSet, 0, len(activities))
	for _, a := range activities {
		typeKey := nestedString(a, "activityType", "typeKey")
		lower := strings.ToLower(typeKey)
		if !strings.Contains(lower, "running") && !strings.Contains(lower, "run") {
			continue
		}

		distance := 0.0
		if v, ok := floatValue(a["distance"]); ok && v != 0 {
			distance = units.MToKm(v)
		}

		out = append(out, models.RawRecord{
			"Activity_Type":     typeKey,
			"Date":              dateValue(a["startTimeLocal"]),
			"Favorite":          boolValue(a["favorite"]),
			"Title":             stringValue(a["activityName"]),
			"Distance":          distance,
			"Calories":          numberOrNil(a["calories"]),
			"Time":              units.FormatDuration(floatOrZero(a["duration"])),
			"Avg_HR":            numberOrNil(a["averageHR"]),
			"Max_HR":            numberOrNil(a["maxHR"]),
			"Aerobic_TE":        numberOrNil(a["aerobicTrainingEffect"]),
			"Anaerobic_TE":      numberOrNil(a["anaerobicTrainingEffect"]),
			"Avg_Run_Cadence":   numberOrNil(a["averageRunningCadenceInStepsPerMinute"]),
			"Max_Run_Cadence":   numberOrNil(a["maxRunningCadenceInStepsPerMinute"]),
			"Avg_Pace":          units.FormatPace(floatOrZero(a["averageSpeed"])),
			"Best_Pace":         units.FormatPace(floatOrZero(a["maxSpeed"])),
			"Elev_Gain":         numberOrNil(a["elevationGain"]),
			"Elev_Loss":         numberOrNil(a["elevationLoss"]),
			"Avg_Stride_Length": numberOrNil(a["avgStrideLength"]),
			"Moving_Time":       units.FormatDuration(floatOrZero(a["movingDuration"])),
			"Elapsed_Time":      units.FormatDuration(floatOrZero(a["elapsedDuration"])),
		})
	}
	return out
}

func nestedString(rec models.RawRecord, outer, inner string) string {
	if m, ok := rec[outer].(map[string]any); ok {
		if s, ok := m[inner].(string); ok {
			return s
		}
	}
	return ""
}

func floatValue(v any) (float64, bool) {
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

func floatOrZero(v any) float64 {
	n, _ := floatValue(v)
	return n
}

// numberOrNil keeps a numeric field as float64 and turns anything else into
// an explicit null so all-null columns can be dropped downstream.
func numberOrNil(v any) any {
	if n, ok := floatValue(v); ok {
		return n
	}
	return nil
}

func boolValue(v any) bool {
	b, _ := v.(bool)
	return b
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// dateValue keeps string dates for the transformer to parse and converts the
// epoch-millisecond encoding to a concrete time.
func dateValue(v any) any {
	switch d := v.(type) {
	case string:
		return d
	case float64:
		if d == 0 {
			return nil
		}
		return time.UnixMilli(int64(d)).UTC()
	}
	return nil
}
