package services

import (
	"errors"
	"testing"
	"time"

	"garmin-etl/models"
	"garmin-etl/utils"
)

func newTestTransformer() *Transformer {
	return NewTransformer(utils.NewLogger(false))
}

func findRecord(t *testing.T, f *models.Frame, col string, want any) map[string]any {
	t.Helper()
	for _, rec := range f.Records {
		if rec[col] == want {
			return rec
		}
	}
	t.Fatalf("no record with %s == %v", col, want)
	return nil
}

func TestTransformEmptyInput(t *testing.T) {
	_, err := newTestTransformer().Transform(models.SleepData, nil)
	var terr *models.TransformError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransformError, got %v", err)
	}
	if terr.Dataset != "sleep_data" {
		t.Errorf("Dataset: got %q", terr.Dataset)
	}
}

func TestTransformSummarizedActivities(t *testing.T) {
	raw := models.RawRecordSet{
		{
			"activityId":     float64(100),
			"beginTimestamp": float64(1709287200000),
			"distance":       float64(500000), // cm
			"duration":       float64(1800000),
			"avgSpeed":       float64(0.35), // cm/ms
			"elevationGain":  float64(4500), // cm
		},
		{"activityId": float64(100), "distance": float64(999999)},
		{"activityId": float64(200), "distance": float64(100000)},
	}

	f, err := newTestTransformer().Transform(models.SummarizedActivities, raw)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	if f.Len() != 2 {
		t.Fatalf("records after dedup: got %d, want 2", f.Len())
	}

	rec := findRecord(t, f, "activityId", float64(100))
	if rec["distance"] != 5.0 {
		t.Errorf("distance: got %v, want 5 (cm feed divides by 100000)", rec["distance"])
	}
	if rec["duration"] != 1800.0 {
		t.Errorf("duration: got %v, want 1800", rec["duration"])
	}
	if rec["avgSpeed"] != 3.5 {
		t.Errorf("avgSpeed: got %v, want 3.5", rec["avgSpeed"])
	}
	if rec["elevationGain"] != 45.0 {
		t.Errorf("elevationGain: got %v, want 45", rec["elevationGain"])
	}
	if _, ok := rec["beginTimestamp"].(time.Time); !ok {
		t.Errorf("beginTimestamp: got %T, want time.Time", rec["beginTimestamp"])
	}
}

func TestTransformSleep(t *testing.T) {
	raw := models.RawRecordSet{
		{
			"calendarDate":                "2024-03-01",
			"sleepStartTimestampGMT":      "2024-02-29T22:30:00.0",
			"sleepEndTimestampGMT":        "2024-03-01T06:30:00.0",
			"sleepScores":                 map[string]any{"overallScore": float64(82), "qualityScore": float64(75)},
			"deepSleepSeconds":            float64(3600),
			"insight":                     nil,
			"feedback":                    "POSITIVE_LONG",
			"sleepWindowConfirmationType": "AUTO",
		},
		{
			"calendarDate":           "2024-03-02",
			"sleepStartTimestampGMT": "2024-03-01T23:00:00.0",
			"sleepEndTimestampGMT":   "2024-03-02T06:00:00.0",
			"sleepScores":            map[string]any{"overallScore": float64(64)},
			"deepSleepSeconds":       nil,
			"insight":                "NEGATIVE_DEEP",
			"feedback":               nil,
		},
	}

	f, err := newTestTransformer().Transform(models.SleepData, raw)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	if f.HasColumn("sleepScores") {
		t.Error("sleepScores should be flattened away")
	}
	if f.HasColumn("sleepStartTimestampGMT") || f.HasColumn("sleepEndTimestampGMT") {
		t.Error("raw timestamp columns should be dropped")
	}
	if f.HasColumn("sleepWindowConfirmationType") {
		t.Error("sleepWindowConfirmationType should be dropped")
	}
	if f.HasColumn("deepSleepSeconds") || !f.HasColumn("deepSleepHours") {
		t.Error("deepSleepSeconds should be rescaled and renamed to deepSleepHours")
	}

	first := f.Records[0]
	if first["overallScore"] != 82.0 {
		t.Errorf("overallScore: got %v", first["overallScore"])
	}
	if first["sleepDurationHours"] != 8.0 {
		t.Errorf("sleepDurationHours: got %v, want 8", first["sleepDurationHours"])
	}
	if first["sleepDurationFormatted"] != "8:00:00" {
		t.Errorf("sleepDurationFormatted: got %v", first["sleepDurationFormatted"])
	}
	if first["insight"] != "NONE" {
		t.Errorf("insight: got %v, want NONE sentinel", first["insight"])
	}

	second := f.Records[1]
	if second["feedback"] != "NONE" {
		t.Errorf("feedback: got %v, want NONE sentinel", second["feedback"])
	}
	// 3600s was the only present value, so the missing one takes the mean
	// (3600) before both are rescaled to hours.
	if first["deepSleepHours"] != 1.0 || second["deepSleepHours"] != 1.0 {
		t.Errorf("deepSleepHours: got %v and %v, want 1 and 1", first["deepSleepHours"], second["deepSleepHours"])
	}
}

func TestTransformATLKeepsMostRecent(t *testing.T) {
	raw := models.RawRecordSet{
		{
			"timestamp":                      float64(1709287200000), // earlier
			"acwrStatus":                     "OPTIMAL",
			"dailyAcuteChronicWorkloadRatio": float64(0.9),
			"deviceId":                       float64(42),
		},
		{
			"timestamp":                      float64(1709290800000), // later, same day
			"acwrStatus":                     "OPTIMAL",
			"dailyAcuteChronicWorkloadRatio": float64(1.1),
		},
		{
			"timestamp":                      float64(1709373600000),
			"acwrStatus":                     "NONE",
			"dailyAcuteChronicWorkloadRatio": float64(1.3),
		},
		{
			"timestamp":                      float64(1709373600000),
			"acwrStatus":                     "HIGH",
			"dailyAcuteChronicWorkloadRatio": nil,
		},
	}

	f, err := newTestTransformer().Transform(models.AcuteTrainingLoad, raw)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	if f.Len() != 1 {
		t.Fatalf("records: got %d, want 1", f.Len())
	}
	rec := f.Records[0]
	if rec["dailyAcuteChronicWorkloadRatio"] != 1.1 {
		t.Errorf("survivor ratio: got %v, want 1.1 (larger timestamp wins)", rec["dailyAcuteChronicWorkloadRatio"])
	}
	if f.HasColumn("deviceId") {
		t.Error("deviceId should be dropped")
	}
	if _, ok := rec["calendarDate"].(time.Time); !ok {
		t.Errorf("calendarDate: got %T, want time.Time", rec["calendarDate"])
	}
}

func TestTransformRacePredictionsKeepsMinimumTime(t *testing.T) {
	raw := models.RawRecordSet{
		{"calendarDate": "2024-03-01", "raceDistance": float64(5000), "raceTime": float64(1200)},
		{"calendarDate": "2024-03-01", "raceDistance": float64(5000), "raceTime": float64(1100)},
		{"calendarDate": "2024-03-01", "raceDistance": float64(10000), "raceTime": float64(2500)},
	}

	f, err := newTestTransformer().Transform(models.RacePredictions, raw)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	if f.Len() != 2 {
		t.Fatalf("records: got %d, want 2", f.Len())
	}
	rec := findRecord(t, f, "raceDistance", float64(5000))
	if rec["raceTime"] != 1100.0 {
		t.Errorf("raceTime: got %v, want 1100 (minimum wins)", rec["raceTime"])
	}
}

func TestTransformMaxMetKeepsFirst(t *testing.T) {
	raw := models.RawRecordSet{
		{"calendarDate": "2024-03-01", "vo2MaxValue": float64(50)},
		{"calendarDate": "2024-03-01", "vo2MaxValue": float64(51)},
		{"calendarDate": "2024-03-02", "vo2MaxValue": float64(52)},
	}

	f, err := newTestTransformer().Transform(models.MaxMetData, raw)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	if f.Len() != 2 {
		t.Fatalf("records: got %d, want 2", f.Len())
	}
	if f.Records[0]["vo2MaxValue"] != 50.0 {
		t.Errorf("survivor: got %v, want 50 (first occurrence wins)", f.Records[0]["vo2MaxValue"])
	}
}

func TestTransformTrainingHistoryTimestampFallback(t *testing.T) {
	raw := models.RawRecordSet{
		{"timestamp": float64(1709287200000), "trainingStatus": float64(3)},
	}

	f, err := newTestTransformer().Transform(models.TrainingHistory, raw)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if !f.HasColumn("calendarDate") {
		t.Fatal("calendarDate should be derived from timestamp")
	}
	if _, ok := f.Records[0]["calendarDate"].(time.Time); !ok {
		t.Errorf("calendarDate: got %T", f.Records[0]["calendarDate"])
	}
}

func TestTransformDropsAllNullColumns(t *testing.T) {
	raw := models.RawRecordSet{
		{"calendarDate": "2024-03-01", "junk": nil, "steps": float64(9000)},
		{"calendarDate": "2024-03-02", "junk": nil, "steps": float64(11000)},
	}

	f, err := newTestTransformer().Transform(models.UserDailySummary, raw)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if f.HasColumn("junk") {
		t.Error("column null in every record should be dropped")
	}
	for _, rec := range f.Records {
		if _, present := rec["junk"]; present {
			t.Error("dropped column should be absent from records")
		}
	}
}
