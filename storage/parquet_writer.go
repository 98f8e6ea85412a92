package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"garmin-etl/models"
	"garmin-etl/utils"
)

// runningRow is the parquet schema for the running snapshot. Optional
// fields are pointers so missing values survive as nulls instead of
// zeroes.
type runningRow struct {
	Date             string   `parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	ActivityType     string   `parquet:"name=activity_type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Title            string   `parquet:"name=title, type=BYTE_ARRAY, convertedtype=UTF8"`
	Distance         *float64 `parquet:"name=distance, type=DOUBLE, repetitiontype=OPTIONAL"`
	DistanceGroup    *string  `parquet:"name=distance_group, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	DistanceGroupID  *int32   `parquet:"name=distance_group_id, type=INT32, repetitiontype=OPTIONAL"`
	MonthNumeric     *int32   `parquet:"name=month_numeric, type=INT32, repetitiontype=OPTIONAL"`
	Month            string   `parquet:"name=month, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Year             *int32   `parquet:"name=year, type=INT32, repetitiontype=OPTIONAL"`
	WeekOfYear       *int32   `parquet:"name=week_of_year, type=INT32, repetitiontype=OPTIONAL"`
	Calories         *float64 `parquet:"name=calories, type=DOUBLE, repetitiontype=OPTIONAL"`
	Time             string   `parquet:"name=time, type=BYTE_ARRAY, convertedtype=UTF8"`
	AvgPace          string   `parquet:"name=avg_pace, type=BYTE_ARRAY, convertedtype=UTF8"`
	BestPace         string   `parquet:"name=best_pace, type=BYTE_ARRAY, convertedtype=UTF8"`
	MovingTime       string   `parquet:"name=moving_time, type=BYTE_ARRAY, convertedtype=UTF8"`
	ElapsedTime      string   `parquet:"name=elapsed_time, type=BYTE_ARRAY, convertedtype=UTF8"`
	IdleTime         string   `parquet:"name=idle_time, type=BYTE_ARRAY, convertedtype=UTF8"`
	AvgHR            *float64 `parquet:"name=avg_hr, type=DOUBLE, repetitiontype=OPTIONAL"`
	MaxHR            *float64 `parquet:"name=max_hr, type=DOUBLE, repetitiontype=OPTIONAL"`
	AerobicTE        *float64 `parquet:"name=aerobic_te, type=DOUBLE, repetitiontype=OPTIONAL"`
	AnaerobicTE      *float64 `parquet:"name=anaerobic_te, type=DOUBLE, repetitiontype=OPTIONAL"`
	AvgRunCadence    *float64 `parquet:"name=avg_run_cadence, type=DOUBLE, repetitiontype=OPTIONAL"`
	MaxRunCadence    *float64 `parquet:"name=max_run_cadence, type=DOUBLE, repetitiontype=OPTIONAL"`
	AvgStrideLength  *float64 `parquet:"name=avg_stride_length, type=DOUBLE, repetitiontype=OPTIONAL"`
	ElevGain         *float64 `parquet:"name=elev_gain, type=DOUBLE, repetitiontype=OPTIONAL"`
	ElevLoss         *float64 `parquet:"name=elev_loss, type=DOUBLE, repetitiontype=OPTIONAL"`
	WeeklyCumulative string   `parquet:"name=weekly_cumulative_mins, type=BYTE_ARRAY, convertedtype=UTF8"`
	WeeklyPriorMins  *float64 `parquet:"name=weekly_mins_prior_to_run, type=DOUBLE, repetitiontype=OPTIONAL"`
	MonthlyCumulative  string   `parquet:"name=monthly_cumulative_mins, type=BYTE_ARRAY, convertedtype=UTF8"`
	MonthlyPriorMins *float64 `parquet:"name=monthly_mins_prior_to_run, type=DOUBLE, repetitiontype=OPTIONAL"`
}

// ParquetWriter writes the running frame to a SNAPPY-compressed parquet
// file. The schema is fixed; other datasets use the CSV snapshot.
type ParquetWriter struct {
	logger *utils.Logger
}

func NewParquetWriter(logger *utils.Logger) *ParquetWriter {
	return &ParquetWriter{logger: logger}
}

func (w *ParquetWriter) WriteFrame(frame *models.Frame, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("parquet: create directory: %w", err)
	}

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("parquet: create %s: %w", path, err)
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(runningRow), 4)
	if err != nil {
		return fmt.Errorf("parquet: writer: %w", err)
	}
	pw.RowGroupSize = 128 * 1024 * 1024
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, rec := range frame.Records {
		row := runningRow{
			Date:             csvCell(rec["Date"]),
			ActivityType:     stringCell(rec["Activity_Type"]),
			Title:            stringCell(rec["Title"]),
			Distance:         floatCell(rec["Distance"]),
			DistanceGroup:    stringPtr(rec["Distance_Group"]),
			DistanceGroupID:  intCell(rec["DistanceGroupId"]),
			MonthNumeric:     intCell(rec["Month_Numeric"]),
			Month:            stringCell(rec["Month"]),
			Year:             intCell(rec["Year"]),
			WeekOfYear:       intCell(rec["Week_of_Year"]),
			Calories:         floatCell(rec["Calories"]),
			Time:             stringCell(rec["Time"]),
			AvgPace:          stringCell(rec["Avg_Pace"]),
			BestPace:         stringCell(rec["Best_Pace"]),
			MovingTime:       stringCell(rec["Moving_Time"]),
			ElapsedTime:      stringCell(rec["Elapsed_Time"]),
			IdleTime:         stringCell(rec["Idle_Time"]),
			AvgHR:            floatCell(rec["Avg_HR"]),
			MaxHR:            floatCell(rec["Max_HR"]),
			AerobicTE:        floatCell(rec["Aerobic_TE"]),
			AnaerobicTE:      floatCell(rec["Anaerobic_TE"]),
			AvgRunCadence:    floatCell(rec["Avg_Run_Cadence"]),
			MaxRunCadence:    floatCell(rec["Max_Run_Cadence"]),
			AvgStrideLength:  floatCell(rec["Avg_Stride_Length"]),
			ElevGain:         floatCell(rec["Elev_Gain"]),
			ElevLoss:         floatCell(rec["Elev_Loss"]),
			WeeklyCumulative: stringCell(rec["Weekly_Cumulative_Mins"]),
			WeeklyPriorMins:  floatCell(rec["Weekly_Mins_Prior_to_Run"]),
			MonthlyCumulative: stringCell(rec["Monthly_Cumulative_Mins"]),
			MonthlyPriorMins: floatCell(rec["Monthly_Mins_Prior_to_Run"]),
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return fmt.Errorf("parquet: write row: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("parquet: finalize %s: %w", path, err)
	}

	w.logger.Info("[parquet] Wrote %d rows to %s", frame.Len(), path)
	return nil
}

func stringCell(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func stringPtr(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

func floatCell(v any) *float64 {
	switch val := v.(type) {
	case float64:
		return &val
	case int:
		f := float64(val)
		return &f
	}
	return nil
}

func intCell(v any) *int32 {
	switch val := v.(type) {
	case int:
		n := int32(val)
		return &n
	case float64:
		n := int32(val)
		return &n
	}
	return nil
}
