package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"DesignStats/internal/domain"
	"DesignStats/internal/ports"
)

// Processing statuses carried in the import file. They survive across runs so
// a re-run only touches sources that are not settled yet.
const (
	StatusUnprocessed   = "UNPROCESSED"
	StatusImported      = "IMPORTED"
	StatusRetry         = "RETRY"
	StatusNotFound      = "FAILED_NOT_FOUND"
	StatusNoSources     = "FAILED_NO_SOURCES"
	StatusUnknownSource = "FAILED_UNKNOWN_SOURCE"
	StatusDBError       = "FAILED_DB_ERROR"
)

// ImportDesign is one entry of the import file: a design title and its
// platform bindings.
type ImportDesign struct {
	Title   string         `json:"title"`
	Sources []ImportSource `json:"sources"`
}

// ImportSource is one platform binding within an import entry.
type ImportSource struct {
	Source           string `json:"source"`
	SourceID         string `json:"source_id"`
	ProcessingStatus string `json:"processingStatus,omitempty"`
}

// ImportOptions tune a single importer run.
type ImportOptions struct {
	// VerifyImported re-validates sources already marked imported.
	VerifyImported bool
	// OverwriteFailed resets FAILED statuses so the sources are retried.
	OverwriteFailed bool
	// BaseDirectory receives the imported/failed result files.
	BaseDirectory string
	// MaxRetries bounds the validation retry passes.
	MaxRetries int
}

// ImportSummary reports the outcome of one importer run.
type ImportSummary struct {
	Imported     int
	Failed       int
	ImportedFile string
	FailedFile   string
}

// Importer loads design configurations from a JSON file, validates that each
// platform listing exists and is parsable, and registers the bindings in the
// store. Transient validation failures are retried in full passes.
type Importer struct {
	source ports.MetricsSource
	store  ports.DesignSourceStore
	logger *slog.Logger
}

// NewImporter wires the import component.
func NewImporter(source ports.MetricsSource, store ports.DesignSourceStore, logger *slog.Logger) *Importer {
	return &Importer{source: source, store: store, logger: logger}
}

// Run imports all designs from path. Per-source failures never abort the run;
// the result files split the settled sources into imported and failed.
func (im *Importer) Run(ctx context.Context, path string, opts ImportOptions) (ImportSummary, error) {
	designs, err := readImportFile(path)
	if err != nil {
		return ImportSummary{}, err
	}

	initializeStatuses(designs, opts.VerifyImported, opts.OverwriteFailed)

	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 5
	}

	for retry := 0; retry < maxRetries; retry++ {
		hasRetries := false

		for di := range designs {
			design := &designs[di]

			if len(design.Sources) == 0 {
				if retry == 0 {
					im.warn(design.Title, "", "no sources configured")
				}
				continue
			}

			for si := range design.Sources {
				src := &design.Sources[si]
				if settled(src.ProcessingStatus) {
					continue
				}
				if err := ctx.Err(); err != nil {
					return ImportSummary{}, fmt.Errorf("import aborted: %w", err)
				}

				src.ProcessingStatus = im.processSource(ctx, design.Title, *src, retry, maxRetries)
				if src.ProcessingStatus == StatusRetry {
					hasRetries = true
				}
			}
		}

		if !hasRetries {
			break
		}
	}

	return im.writeResults(designs, opts.BaseDirectory)
}

func (im *Importer) processSource(ctx context.Context, title string, src ImportSource, retry, maxRetries int) string {
	platform, err := domain.ParsePlatform(src.Source)
	if err != nil {
		im.warn(title, src.Source, "unknown source")
		return StatusUnknownSource
	}

	existing, err := im.store.FindDesignSources(ctx, ports.ListFilter{Title: title, Platform: platform})
	if err != nil {
		im.warn(title, src.Source, err.Error())
		return StatusDBError
	}
	if len(existing) > 0 {
		im.info(title, src.Source, "already present, skipped")
		return StatusImported
	}

	if _, err := im.source.FetchTotals(ctx, platform, src.SourceID); err != nil {
		if retry+1 < maxRetries {
			im.info(title, src.Source, "validation failed, retrying later")
			return StatusRetry
		}
		im.warn(title, src.Source, "listing not found or unparsable")
		return StatusNotFound
	}

	if _, err := im.store.InsertSource(ctx, title, platform, src.SourceID); err != nil {
		im.warn(title, src.Source, err.Error())
		return StatusDBError
	}

	im.info(title, src.Source, "imported")
	return StatusImported
}

// writeResults splits the designs by status and writes one file for the
// imported bindings and one for the failed ones.
func (im *Importer) writeResults(designs []ImportDesign, baseDir string) (ImportSummary, error) {
	var imports, fails []ImportDesign
	var summary ImportSummary

	for _, design := range designs {
		imported := ImportDesign{Title: design.Title}
		failed := ImportDesign{Title: design.Title}

		for _, src := range design.Sources {
			if src.ProcessingStatus == StatusImported {
				imported.Sources = append(imported.Sources, src)
				summary.Imported++
			} else {
				failed.Sources = append(failed.Sources, src)
				summary.Failed++
			}
		}
		if len(design.Sources) == 0 {
			failed.Sources = []ImportSource{}
			summary.Failed++
		}

		if len(imported.Sources) > 0 {
			imports = append(imports, imported)
		}
		if len(failed.Sources) > 0 || len(design.Sources) == 0 {
			fails = append(fails, failed)
		}
	}

	var err error
	summary.ImportedFile, err = writeJSONFile(filepath.Join(baseDir, "export"), "imported-designs.json", imports)
	if err != nil {
		return summary, err
	}
	summary.FailedFile, err = writeJSONFile(filepath.Join(baseDir, "error"), "failed-designs.json", fails)
	if err != nil {
		return summary, err
	}

	return summary, nil
}

func (im *Importer) info(title, source, msg string) {
	if im.logger != nil {
		im.logger.Info(msg, "title", title, "source", source)
	}
}

func (im *Importer) warn(title, source, msg string) {
	if im.logger != nil {
		im.logger.Warn(msg, "title", title, "source", source)
	}
}

func settled(status string) bool {
	return status == StatusImported || strings.HasPrefix(status, "FAILED")
}

func initializeStatuses(designs []ImportDesign, verifyImported, overwriteFailed bool) {
	for di := range designs {
		for si := range designs[di].Sources {
			src := &designs[di].Sources[si]
			switch {
			case src.ProcessingStatus == "":
				src.ProcessingStatus = StatusUnprocessed
			case src.ProcessingStatus == StatusImported && verifyImported:
				src.ProcessingStatus = StatusUnprocessed
			case strings.HasPrefix(src.ProcessingStatus, "FAILED") && overwriteFailed:
				src.ProcessingStatus = StatusUnprocessed
			case src.ProcessingStatus == StatusRetry:
				src.ProcessingStatus = StatusUnprocessed
			}
		}
	}
}

func readImportFile(path string) ([]ImportDesign, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	var designs []ImportDesign
	if err := json.Unmarshal(data, &designs); err != nil {
		return nil, fmt.Errorf("parse import file %s: %w", path, err)
	}
	return designs, nil
}

func writeJSONFile(dir, name string, v any) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
