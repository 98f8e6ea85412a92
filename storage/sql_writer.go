package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"garmin-etl/models"
	"garmin-etl/units"
	"garmin-etl/utils"
)

// SQLWriter loads cleaned frames into a relational target over database/sql.
// The same writer serves PostgreSQL and a local SQLite file; only the driver
// name, placeholder style and a few DDL types differ.
type SQLWriter struct {
	db        *sql.DB
	driver    string
	schema    string
	batchSize int
	logger    *utils.Logger
}

// NewSQLWriter opens a connection for the given driver ("postgres" or
// "sqlite") and verifies it with a bounded ping retry.
func NewSQLWriter(driver, dsn, schema string, batchSize int, logger *utils.Logger) (*SQLWriter, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql: open %s: %w", driver, err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sql: ping failed after retries: %w", err)
	}

	if batchSize <= 0 {
		batchSize = 1000
	}
	if driver != "postgres" {
		schema = ""
	}
	return &SQLWriter{db: db, driver: driver, schema: schema, batchSize: batchSize, logger: logger}, nil
}

// TestConnection reports whether the target answers a trivial query.
func (w *SQLWriter) TestConnection() bool {
	if err := w.db.Ping(); err != nil {
		w.logger.Error("[sql] Connection test failed: %v", err)
		return false
	}
	var one int
	if err := w.db.QueryRow("SELECT 1").Scan(&one); err != nil {
		w.logger.Error("[sql] Connection test query failed: %v", err)
		return false
	}
	return true
}

// Load writes the frame into the target table using the given strategy.
func (w *SQLWriter) Load(frame *models.Frame, table, strategy string) error {
	if frame == nil || frame.Len() == 0 {
		return fmt.Errorf("sql: nothing to load into %s", table)
	}

	switch strategy {
	case StrategyReplace:
		if w.schema != "" {
			if _, err := w.db.Exec("CREATE SCHEMA IF NOT EXISTS " + quoteIdent(w.schema)); err != nil {
				return fmt.Errorf("sql: create schema: %w", err)
			}
		}
		drop := "DROP TABLE IF EXISTS " + w.qualify(table)
		if w.driver == "postgres" {
			drop += " CASCADE"
		}
		if _, err := w.db.Exec(drop); err != nil {
			return fmt.Errorf("sql: drop %s: %w", table, err)
		}
		if err := w.createTable(frame, table); err != nil {
			return err
		}
	case StrategyAppend:
		if err := w.createTable(frame, table); err != nil {
			return err
		}
	case StrategyFail:
		if n, err := w.RowCount(table); err == nil && n > 0 {
			return fmt.Errorf("sql: table %s already holds %d rows", table, n)
		}
		if err := w.createTable(frame, table); err != nil {
			return err
		}
	default:
		return fmt.Errorf("sql: unknown load strategy %q", strategy)
	}

	for start := 0; start < frame.Len(); start += w.batchSize {
		end := start + w.batchSize
		if end > frame.Len() {
			end = frame.Len()
		}
		if err := w.insertBatch(frame, table, start, end); err != nil {
			return err
		}
	}

	w.logger.Info("[sql] Loaded %d rows into %s (strategy: %s)", frame.Len(), w.qualify(table), strategy)
	return nil
}

func (w *SQLWriter) createTable(frame *models.Frame, table string) error {
	defs := make([]string, 0, len(frame.Columns))
	for _, col := range frame.Columns {
		defs = append(defs, quoteIdent(col)+" "+w.columnType(frame, col))
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", w.qualify(table), strings.Join(defs, ", "))
	if _, err := w.db.Exec(stmt); err != nil {
		return fmt.Errorf("sql: create %s: %w", table, err)
	}
	return nil
}

// columnType infers the DDL type from the first non-null value in the
// column. Durations are stored as their "H:MM:SS" text form.
func (w *SQLWriter) columnType(frame *models.Frame, col string) string {
	postgres := w.driver == "postgres"
	for _, rec := range frame.Records {
		switch rec[col].(type) {
		case nil:
			continue
		case time.Time:
			return "TIMESTAMP"
		case time.Duration, string:
			return "TEXT"
		case float64:
			if postgres {
				return "DOUBLE PRECISION"
			}
			return "REAL"
		case int, int64:
			if postgres {
				return "BIGINT"
			}
			return "INTEGER"
		case bool:
			if postgres {
				return "BOOLEAN"
			}
			return "INTEGER"
		default:
			return "TEXT"
		}
	}
	return "TEXT"
}

func (w *SQLWriter) insertBatch(frame *models.Frame, table string, start, end int) error {
	cols := make([]string, len(frame.Columns))
	for i, c := range frame.Columns {
		cols[i] = quoteIdent(c)
	}

	valueStrings := make([]string, 0, end-start)
	valueArgs := make([]any, 0, (end-start)*len(frame.Columns))
	for idx, rec := range frame.Records[start:end] {
		placeholders := make([]string, len(frame.Columns))
		for j, col := range frame.Columns {
			if w.driver == "postgres" {
				placeholders[j] = fmt.Sprintf("$%d", idx*len(frame.Columns)+j+1)
			} else {
				placeholders[j] = "?"
			}
			valueArgs = append(valueArgs, bindValue(rec[col]))
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		w.qualify(table), strings.Join(cols, ", "), strings.Join(valueStrings, ","))
	if _, err := w.db.Exec(query, valueArgs...); err != nil {
		return fmt.Errorf("sql: insert batch into %s: %w", table, err)
	}
	return nil
}

// RowCount returns the number of rows in the table.
func (w *SQLWriter) RowCount(table string) (int, error) {
	var count int
	err := w.db.QueryRow("SELECT COUNT(*) FROM " + w.qualify(table)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sql: count %s: %w", table, err)
	}
	return count, nil
}

// Close closes the underlying connection pool.
func (w *SQLWriter) Close() error {
	return w.db.Close()
}

func (w *SQLWriter) qualify(table string) string {
	if w.schema != "" {
		return quoteIdent(w.schema) + "." + quoteIdent(table)
	}
	return quoteIdent(table)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// bindValue converts frame values to driver-friendly types. Nested
// structures that survived transformation are stored as JSON text.
func bindValue(v any) any {
	switch val := v.(type) {
	case nil, string, float64, int, int64, bool, time.Time:
		return val
	case time.Duration:
		return units.FormatDuration(val.Seconds())
	default:
		if b, err := json.Marshal(val); err == nil {
			return string(b)
		}
		return fmt.Sprint(val)
	}
}
