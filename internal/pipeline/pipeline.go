// Package pipeline orchestrates the load stage: discover the snapshot, parse
// it, normalize onto the canonical schema, run the pre-load checks, and bulk
// load into the configured store. The stages themselves live in their own
// packages; this package owns sequencing, error classification, and the run
// report.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/zeebo/xxh3"

	"statcast/internal/config"
	"statcast/internal/datasource/file"
	"statcast/internal/metrics"
	"statcast/internal/normalize"
	csvparser "statcast/internal/parser/csv"
	"statcast/internal/schema"
	"statcast/internal/storage"
	"statcast/internal/validate"
	"statcast/pkg/records"
)

// defaultBatchSize matches the original loader's chunk size.
const defaultBatchSize = 1000

// Run executes the load pipeline described by cfg. The returned Report is
// populated as far as the run got, even when err is non-nil; callers should
// emit it regardless.
func Run(ctx context.Context, cfg config.Pipeline) (rep Report, err error) {
	start := time.Now()
	rep = Report{Job: cfg.Job}
	defer func() { rep.DurationSeconds = time.Since(start).Seconds() }()

	contract := schema.Statcast()

	// 1) Snapshot discovery.
	path, err := resolveSnapshot(cfg.Source)
	if err != nil {
		return rep, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	rep.Snapshot = path
	if digest, err := digestFile(path); err == nil {
		rep.SnapshotDigest = digest
	} else {
		log.Printf("Snapshot digest failed path=%s err=%v", path, err)
	}

	// 2) Parse.
	stepStart := time.Now()
	rows, skipped, err := parseSnapshot(ctx, path, cfg.Parser)
	metrics.RecordStep(cfg.Job, "parse", err, time.Since(stepStart))
	if err != nil {
		return rep, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	rep.RowsRead = len(rows)
	rep.RowsSkipped = skipped
	metrics.RecordRow(cfg.Job, "read", int64(len(rows)))
	log.Printf("Parsed snapshot path=%s rows=%d skipped=%d", path, len(rows), skipped)

	// 3) Normalize onto the canonical schema.
	stepStart = time.Now()
	normalized, diag, err := normalize.Normalize(rows, contract)
	metrics.RecordStep(cfg.Job, "normalize", err, time.Since(stepStart))
	if err != nil {
		return rep, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	rep.MissingColumns = diag.MissingColumns
	if len(diag.MissingColumns) > 0 {
		log.Printf("Canonical columns absent from snapshot: %v", diag.MissingColumns)
	}
	if len(diag.NulledValues) > 0 {
		log.Printf("Coercion nulled unparseable values per column: %v", diag.NulledValues)
	}

	// 4) Pre-load checks. NULL or duplicate primary keys block the load.
	stepStart = time.Now()
	res := validate.Check(normalized, validate.Options{
		PrimaryKey:   contract.PrimaryKey(),
		LengthLimits: contract.LengthLimits(),
		Strict:       cfg.Validate.Strict,
		SampleSize:   cfg.Validate.SampleSize,
	})
	rep.Validation = &res
	for _, w := range res.Warnings {
		log.Printf("Validation warning check=%s column=%s rows=%d: %s", w.Check, w.Column, w.Rows, w.Message)
	}
	if !res.OK {
		metrics.RecordStep(cfg.Job, "validate", ErrValidationFailed, time.Since(stepStart))
		return rep, &ValidationError{Result: res}
	}
	metrics.RecordStep(cfg.Job, "validate", nil, time.Since(stepStart))

	// 5) Load.
	stepStart = time.Now()
	stats, err := load(ctx, cfg, contract, normalized)
	metrics.RecordStep(cfg.Job, "load", err, time.Since(stepStart))
	rep.RowsInserted = stats.RowsInserted
	rep.RowsConflicted = stats.RowsConflicted
	rep.Batches = stats.Batches
	rep.ErrorRows = stats.ErrorRows
	metrics.RecordRow(cfg.Job, "inserted", stats.RowsInserted)
	metrics.RecordRow(cfg.Job, "conflicted", stats.RowsConflicted)
	metrics.RecordRow(cfg.Job, "error_rows", int64(len(stats.ErrorRows)))
	metrics.RecordBatches(cfg.Job, stats.Batches)
	if err != nil {
		return rep, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	rep.OK = true
	return rep, nil
}

// resolveSnapshot returns the snapshot path from the source config: an exact
// path when given, otherwise the newest *.csv in the data directory.
func resolveSnapshot(src config.Source) (string, error) {
	if src.Kind != "" && src.Kind != "file" {
		return "", fmt.Errorf("unsupported source kind %q", src.Kind)
	}
	if src.File.Path != "" {
		if _, err := os.Stat(src.File.Path); err != nil {
			return "", err
		}
		return src.File.Path, nil
	}
	if src.File.Dir == "" {
		return "", fmt.Errorf("source.file needs path or dir")
	}
	return file.Latest(src.File.Dir, src.File.Prefix)
}

// parseSnapshot opens the snapshot and parses it with the configured CSV
// options.
func parseSnapshot(ctx context.Context, path string, pcfg config.Parser) ([]records.Record, int, error) {
	if pcfg.Kind != "" && pcfg.Kind != "csv" {
		return nil, 0, fmt.Errorf("unsupported parser kind %q", pcfg.Kind)
	}

	rc, err := file.NewLocal(path).Open(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer rc.Close()

	p := csvparser.NewParser(csvparser.Options{
		HasHeader:      pcfg.Options.Bool("has_header", true),
		Comma:          pcfg.Options.Rune("comma", ','),
		TrimSpace:      pcfg.Options.Bool("trim_space", true),
		ExpectedFields: pcfg.Options.Int("expected_fields", 0),
		HeaderMap:      pcfg.Options.StringMap("header_map"),
	})
	return p.Parse(rc)
}

// load opens the configured backend, bootstraps the table when requested, and
// drives the batched loader. The repository is closed on all exit paths.
func load(ctx context.Context, cfg config.Pipeline, contract schema.Contract, rows []records.Record) (storage.Stats, error) {
	table := cfg.Storage.DB.Table
	if table == "" {
		table = schema.Table
	}
	columns := contract.Names()

	repo, err := storage.New(ctx, storage.Config{
		Kind:       cfg.Storage.Kind,
		DSN:        cfg.Storage.DB.DSN,
		Table:      table,
		Columns:    columns,
		KeyColumns: contract.PrimaryKey(),
	})
	if err != nil {
		return storage.Stats{}, fmt.Errorf("open store: %w", err)
	}
	defer repo.Close()

	if cfg.Storage.DB.AutoCreateTable {
		c := contract
		c.Name = table
		if err := storage.EnsureTable(ctx, cfg.Storage.Kind, repo, c); err != nil {
			return storage.Stats{}, fmt.Errorf("bootstrap table: %w", err)
		}
	}

	batchSize := cfg.Runtime.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	return storage.LoadBatches(ctx, repo, columns, buildRows(rows, contract), keyIndexes(contract), batchSize)
}

// buildRows turns normalized records into ordered value rows for the store.
// Dates are rendered in the canonical layout so every backend binds them the
// same way.
func buildRows(rows []records.Record, c schema.Contract) [][]any {
	names := c.Names()
	out := make([][]any, len(rows))
	for i, rec := range rows {
		row := make([]any, len(names))
		for j, name := range names {
			v := rec[name]
			if t, ok := v.(time.Time); ok {
				v = t.Format(schema.DateLayout)
			}
			row[j] = v
		}
		out[i] = row
	}
	return out
}

// keyIndexes returns the positions of the primary-key columns within the
// contract's column order.
func keyIndexes(c schema.Contract) []int {
	names := c.Names()
	pos := map[string]int{}
	for i, n := range names {
		pos[n] = i
	}
	var idx []int
	for _, k := range c.PrimaryKey() {
		if i, ok := pos[k]; ok {
			idx = append(idx, i)
		}
	}
	return idx
}

// digestFile streams the file through xxh3 and returns the 64-bit digest as
// hex. Used to tie a report to the exact snapshot bytes.
func digestFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
