package renderdoc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cordata-io/renderdoc/internal/config"
	"github.com/cordata-io/renderdoc/internal/hints"
)

// FileResult is the outcome of rendering a single discovered template
// file, mirroring convert_batch.go's ConversionResult
// shape.
type FileResult struct {
	InputPath string
	JobID     string
	Err       error
	Duration  time.Duration
}

// FileDispatcher is the file-mode dispatcher: it scans a templates root
// for *.json files and renders each one through the pipeline with
// bounded concurrency.
type FileDispatcher struct {
	pipeline *Pipeline
	cfg      config.FileModeConfig
	logger   *slog.Logger
}

// NewFileDispatcher builds a FileDispatcher.
func NewFileDispatcher(pipeline *Pipeline, cfg config.FileModeConfig, logger *slog.Logger) *FileDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileDispatcher{pipeline: pipeline, cfg: cfg, logger: logger.With("component", "file_dispatcher")}
}

// Run discovers *.json template files under cfg.TemplatesRoot, renders
// each concurrently (bounded by cfg.Concurrency), writes PDFs under
// cfg.OutputPath, and returns the per-file results. The count of failures
// is logged, not returned.
func (d *FileDispatcher) Run(ctx context.Context) ([]FileResult, error) {
	if err := ensureTemplatesRoot(d.cfg.TemplatesRoot, d.logger); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(d.cfg.OutputPath, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w%s", err, hints.ForOutputDirectory())
	}

	files, err := discoverTemplateFiles(d.cfg.TemplatesRoot)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		d.logger.Warn("no template files found", "templatesRoot", d.cfg.TemplatesRoot)
		return nil, nil
	}

	concurrency := d.cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]FileResult, len(files))
	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			results[i] = d.renderFile(ctx, path)
			return nil
		})
	}
	_ = g.Wait()

	succeeded := 0
	for _, r := range results {
		if r.Err == nil {
			succeeded++
		}
	}
	d.logger.Info("file-mode run complete", "total", len(results), "succeeded", succeeded, "failed", len(results)-succeeded)

	return results, nil
}

// renderFile parses one template file and runs it through the pipeline,
// writing the resulting PDF under cfg.OutputPath using outputFileName's
// naming convention.
func (d *FileDispatcher) renderFile(ctx context.Context, path string) FileResult {
	start := time.Now()
	result := FileResult{InputPath: path}

	tmpl, err := parseTemplateFile(path)
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrIOTemplate, err)
		result.Duration = time.Since(start)
		return result
	}

	req := NewRenderRequest("", tmpl, time.Time{})
	result.JobID = req.JobID

	renderResult, err := d.pipeline.Execute(ctx, req)
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	outPath := filepath.Join(d.cfg.OutputPath, outputFileName(renderResult.DocumentType, renderResult.JobID))
	if err := os.WriteFile(outPath, renderResult.PDFBytes, 0o644); err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrIOOutput, err)
	}
	result.Duration = time.Since(start)
	return result
}

// parseTemplateFile reads and decodes a *.json file into a
// DocumentTemplate.
func parseTemplateFile(path string) (DocumentTemplate, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from a recursive scan of a configured root
	if err != nil {
		return DocumentTemplate{}, err
	}
	var tmpl DocumentTemplate
	if err := json.Unmarshal(data, &tmpl); err != nil {
		return DocumentTemplate{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return tmpl, nil
}

// discoverTemplateFiles recursively scans root for *.json files,
// matching the extension case-insensitively.
func discoverTemplateFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	return files, nil
}

// ensureTemplatesRoot creates the templates root if missing, logging a
// warning ("created-if-missing with a warning").
func ensureTemplatesRoot(root string, logger *slog.Logger) error {
	_, err := os.Stat(root)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking templates root: %w", err)
	}
	logger.Warn("templates root does not exist, creating it", "templatesRoot", root)
	return os.MkdirAll(root, 0o755)
}
