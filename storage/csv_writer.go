package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"garmin-etl/models"
	"garmin-etl/units"
	"garmin-etl/utils"
)

// CSVWriter persists a cleaned frame as a CSV snapshot next to the
// relational load, mainly for eyeballing what went into the database.
type CSVWriter struct {
	logger *utils.Logger
}

func NewCSVWriter(logger *utils.Logger) *CSVWriter {
	return &CSVWriter{logger: logger}
}

// WriteFrame writes the frame to path, creating parent directories as
// needed. Column order follows the frame's declared columns.
func (w *CSVWriter) WriteFrame(frame *models.Frame, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("csv: create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create %s: %w", path, err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(frame.Columns); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	row := make([]string, len(frame.Columns))
	for _, rec := range frame.Records {
		for i, col := range frame.Columns {
			row[i] = csvCell(rec[col])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv: flush %s: %w", path, err)
	}

	w.logger.Info("[csv] Wrote %d rows to %s", frame.Len(), path)
	return nil
}

func csvCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format(time.RFC3339)
	case time.Duration:
		return units.FormatDuration(val.Seconds())
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
