// Package extract discovers date-stamped JSON files in a Garmin mass export
// and aggregates them into raw record sets, one per dataset kind.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"garmin-etl/models"
	"garmin-etl/utils"
)

// ErrNoFiles is returned when a dataset's pattern matches nothing.
var ErrNoFiles = errors.New("no matching files")

// Aggregator finds and combines export files under a base directory.
type Aggregator struct {
	baseDir string
	logger  *utils.Logger
}

// NewAggregator creates an Aggregator rooted at the raw-data directory.
func NewAggregator(baseDir string, logger *utils.Logger) *Aggregator {
	return &Aggregator{baseDir: baseDir, logger: logger}
}

// Aggregate finds every file matching the dataset's glob pattern, parses
// each one, and concatenates the records in sorted file order. Files that
// fail to parse are logged and skipped. For the running dataset the
// summarized activities are additionally narrowed to flat running records.
func (a *Aggregator) Aggregate(kind models.DatasetKind, pattern string) (models.RawRecordSet, error) {
	files, err := a.findFiles(pattern)
	if err != nil {
		return nil, fmt.Errorf("extract: scan %q: %w", a.baseDir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w for pattern %q", ErrNoFiles, pattern)
	}

	a.logger.Info("[extract] Found %d files for %s", len(files), kind)

	var combined models.RawRecordSet
	parsed := 0
	for _, file := range files {
		records, err := a.readFile(file)
		if err != nil {
			a.logger.Error("[extract] Skipping %s: %v", filepath.Base(file), err)
			continue
		}
		a.logger.Debug("[extract] %s: %d records", filepath.Base(file), len(records))
		combined = append(combined, records...)
		parsed++
	}
	if parsed == 0 {
		return nil, fmt.Errorf("extract: no file for %s could be parsed", kind)
	}

	if kind == models.RunningData {
		combined = RunningRecords(combined)
	}

	a.logger.Info("[extract] Combined %s: %d records from %d files", kind, len(combined), parsed)
	return combined, nil
}

// findFiles walks the base directory and returns the sorted paths matching
// the glob pattern. A leading "**/" matches any directory depth.
func (a *Aggregator) findFiles(pattern string) ([]string, error) {
	var matches []string
	err := filepath.WalkDir(a.baseDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(a.baseDir, p)
		if err != nil {
			return err
		}
		if matchesPattern(rel, pattern) {
			matches = append(matches, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

func matchesPattern(rel, pattern string) bool {
	relParts := strings.Split(filepath.ToSlash(rel), "/")
	patParts := strings.Split(pattern, "/")

	if len(patParts) > 0 && patParts[0] == "**" {
		tail := patParts[1:]
		if len(relParts) < len(tail) {
			return false
		}
		relTail := relParts[len(relParts)-len(tail):]
		for i := range tail {
			ok, err := path.Match(tail[i], relTail[i])
			if err != nil || !ok {
				return false
			}
		}
		return true
	}

	ok, err := path.Match(pattern, filepath.ToSlash(rel))
	return err == nil && ok
}

// readFile parses one export file into raw records. Files hold either a
// top-level array of objects, a single object, or the summarized-activities
// wrapper ([{"summarizedActivitiesExport": [...]}]).
func (a *Aggregator) readFile(path string) (models.RawRecordSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return decodeRecords(data)
}

func decodeRecords(data []byte) (models.RawRecordSet, error) {
	var arr []map[string]any
	if err := json.Unmarshal(data, &arr); err == nil {
		var records models.RawRecordSet
		for _, obj := range arr {
			records = append(records, unwrapExport(obj)...)
		}
		return records, nil
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err == nil {
		return unwrapExport(obj), nil
	}

	return nil, fmt.Errorf("parse: document is neither an object nor an array of objects")
}

// unwrapExport flattens the summarizedActivitiesExport wrapper; any other
// object is a record in its own right.
func unwrapExport(obj map[string]any) models.RawRecordSet {
	if inner, ok := obj["summarizedActivitiesExport"].([]any); ok && len(obj) == 1 {
		var records models.RawRecordSet
		for _, item := range inner {
			if m, ok := item.(map[string]any); ok {
				records = append(records, models.RawRecord(m))
			}
		}
		return records
	}
	return models.RawRecordSet{models.RawRecord(obj)}
}
