// Package pipeline orchestrates one ETL run: aggregate the raw export
// files, apply the per-dataset transformations, and load the results into
// the relational target. Datasets are processed sequentially and fail
// independently.
package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"

	"garmin-etl/config"
	"garmin-etl/models"
	"garmin-etl/storage"
	"garmin-etl/utils"
)

// Extractor aggregates one dataset's export files into raw records.
type Extractor interface {
	Aggregate(kind models.DatasetKind, pattern string) (models.RawRecordSet, error)
}

// Transformer applies a dataset's business rules to its raw records.
type Transformer interface {
	Transform(kind models.DatasetKind, raw models.RawRecordSet) (*models.Frame, error)
}

// Pipeline wires the ETL stages together.
type Pipeline struct {
	cfg         *config.Config
	extractor   Extractor
	transformer Transformer
	loader      storage.Loader
	csv         storage.SnapshotWriter
	parquet     storage.SnapshotWriter
	logger      *utils.Logger
	statuses    map[models.DatasetKind]models.DatasetStatus
}

// New creates a pipeline. The snapshot writers may be nil; snapshots are
// only written when both the writer and its output directory are set.
func New(cfg *config.Config, extractor Extractor, transformer Transformer,
	loader storage.Loader, csv, parquet storage.SnapshotWriter, logger *utils.Logger) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		extractor:   extractor,
		transformer: transformer,
		loader:      loader,
		csv:         csv,
		parquet:     parquet,
		logger:      logger,
		statuses:    make(map[models.DatasetKind]models.DatasetStatus),
	}
}

// Status reports where a dataset currently is in the run.
func (p *Pipeline) Status(kind models.DatasetKind) models.DatasetStatus {
	return p.statuses[kind]
}

// Run processes the requested datasets in order. An empty slice falls back
// to the configured dataset list, and an empty configuration means all
// known datasets. Mapping and connectivity problems are fatal and abort
// the run before any dataset is touched; per-dataset failures are recorded
// and the remaining datasets still run.
func (p *Pipeline) Run(datasets []string) (*models.PipelineResult, error) {
	result := models.NewPipelineResult()

	kinds, err := p.resolveDatasets(datasets)
	if err != nil {
		result.Finalize()
		return result, err
	}
	for _, kind := range kinds {
		p.statuses[kind] = models.StatusPending
	}

	p.logger.Info("[pipeline] Starting run for %d datasets", len(kinds))

	if !p.loader.TestConnection() {
		result.Finalize()
		return result, &models.ConnectivityError{Target: p.cfg.Database.Driver + " database"}
	}
	p.logger.Info("[pipeline] Database connection verified")

	for _, kind := range kinds {
		extracted, loaded, table, err := p.processDataset(kind)
		if err != nil {
			p.statuses[kind] = models.StatusFailed
			p.logger.Error("[pipeline] %s failed: %v", kind, err)
			result.AddFailure(kind.String(), err)
			continue
		}
		p.statuses[kind] = models.StatusDone
		result.AddSuccess(kind.String(), table, extracted, loaded)
	}

	result.Finalize()
	PrintSummary(result)
	return result, nil
}

// resolveDatasets validates every requested dataset up front so a typo in
// one name cannot abort a run halfway through.
func (p *Pipeline) resolveDatasets(datasets []string) ([]models.DatasetKind, error) {
	if len(datasets) == 0 {
		datasets = p.cfg.ETL.Datasets
	}

	var kinds []models.DatasetKind
	if len(datasets) == 0 {
		kinds = models.AllDatasetKinds()
	} else {
		for _, name := range datasets {
			kind, err := models.ParseDatasetKind(name)
			if err != nil {
				return nil, &models.ConfigError{Msg: err.Error()}
			}
			kinds = append(kinds, kind)
		}
	}

	for _, kind := range kinds {
		if _, ok := p.cfg.Table(kind.String()); !ok {
			return nil, &models.ConfigError{Msg: fmt.Sprintf("no table mapping for dataset %q", kind)}
		}
		if _, ok := p.cfg.Pattern(kind.String()); !ok {
			return nil, &models.ConfigError{Msg: fmt.Sprintf("no file pattern for dataset %q", kind)}
		}
	}
	return kinds, nil
}

func (p *Pipeline) processDataset(kind models.DatasetKind) (extracted, loaded int, table string, err error) {
	pattern, _ := p.cfg.Pattern(kind.String())
	table, _ = p.cfg.Table(kind.String())

	p.statuses[kind] = models.StatusExtracting
	p.logger.Info("[pipeline] %s: extracting (pattern %q)", kind, pattern)
	raw, err := p.extractor.Aggregate(kind, pattern)
	if err != nil {
		return 0, 0, table, wrapExtraction(kind, err)
	}
	if len(raw) == 0 {
		return 0, 0, table, &models.ExtractionError{Dataset: kind.String(), Err: errors.New("no records extracted")}
	}
	extracted = len(raw)

	p.statuses[kind] = models.StatusTransforming
	p.logger.Info("[pipeline] %s: transforming %d records", kind, extracted)
	frame, err := p.transformer.Transform(kind, raw)
	if err != nil {
		return extracted, 0, table, wrapTransform(kind, err)
	}

	p.writeSnapshots(kind, frame)

	p.statuses[kind] = models.StatusLoading
	p.logger.Info("[pipeline] %s: loading %d rows into %s", kind, frame.Len(), table)
	if err := p.loader.Load(frame, table, p.cfg.ETL.LoadStrategy); err != nil {
		return extracted, 0, table, &models.LoadError{Dataset: kind.String(), Table: table, Err: err}
	}
	loaded = frame.Len()

	p.verifyRowCount(kind, table, loaded)
	return extracted, loaded, table, nil
}

// writeSnapshots saves local copies of the cleaned frame. Snapshot trouble
// never fails the dataset; the relational load is the product.
func (p *Pipeline) writeSnapshots(kind models.DatasetKind, frame *models.Frame) {
	if p.csv != nil && p.cfg.DataPaths.CSVDir != "" {
		path := filepath.Join(p.cfg.DataPaths.CSVDir, kind.String()+".csv")
		if err := p.csv.WriteFrame(frame, path); err != nil {
			p.logger.Warn("[pipeline] %s: csv snapshot failed: %v", kind, err)
		}
	}
	if kind == models.RunningData && p.parquet != nil && p.cfg.DataPaths.ParquetDir != "" {
		path := filepath.Join(p.cfg.DataPaths.ParquetDir, kind.String()+".parquet")
		if err := p.parquet.WriteFrame(frame, path); err != nil {
			p.logger.Warn("[pipeline] %s: parquet snapshot failed: %v", kind, err)
		}
	}
}

// verifyRowCount cross-checks the loaded table against the frame. Under the
// replace strategy the counts must match exactly; a mismatch is logged, not
// fatal, since the load itself reported success.
func (p *Pipeline) verifyRowCount(kind models.DatasetKind, table string, loaded int) {
	n, err := p.loader.RowCount(table)
	if err != nil {
		p.logger.Warn("[pipeline] %s: could not verify row count: %v", kind, err)
		return
	}
	if p.cfg.ETL.LoadStrategy == storage.StrategyReplace && n != loaded {
		p.logger.Warn("[pipeline] %s: table %s holds %d rows, expected %d", kind, table, n, loaded)
		return
	}
	p.logger.Info("[pipeline] %s: verified %d rows in %s", kind, n, table)
}

func wrapExtraction(kind models.DatasetKind, err error) error {
	var eerr *models.ExtractionError
	if errors.As(err, &eerr) {
		return err
	}
	return &models.ExtractionError{Dataset: kind.String(), Err: err}
}

func wrapTransform(kind models.DatasetKind, err error) error {
	var terr *models.TransformError
	if errors.As(err, &terr) {
		return err
	}
	return &models.TransformError{Dataset: kind.String(), Err: err}
}
