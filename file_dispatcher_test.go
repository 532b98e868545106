package renderdoc

// Notes:
// - Run's full pipeline-execution path is exercised here using the
//   fakeEngine/fakeRenderer doubles defined in pipeline_test.go, so no
//   real headless browser is needed for this package's dispatcher tests.

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/cordata-io/renderdoc/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDiscoverTemplateFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.json"), "{}")
	writeFile(t, filepath.Join(root, "b.JSON"), "{}")
	writeFile(t, filepath.Join(root, "ignore.txt"), "x")

	sub := filepath.Join(root, "nested")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}
	writeFile(t, filepath.Join(sub, "c.json"), "{}")

	files, err := discoverTemplateFiles(root)
	if err != nil {
		t.Fatalf("discoverTemplateFiles() error = %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("discoverTemplateFiles() returned %d files, want 3: %v", len(files), files)
	}
}

func TestDiscoverTemplateFiles_NoMatches(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ignore.txt"), "x")

	files, err := discoverTemplateFiles(root)
	if err != nil {
		t.Fatalf("discoverTemplateFiles() error = %v", err)
	}
	if len(files) != 0 {
		t.Errorf("discoverTemplateFiles() = %v, want empty", files)
	}
}

func TestEnsureTemplatesRoot_CreatesMissingDirWithLogger(t *testing.T) {
	root := filepath.Join(t.TempDir(), "templates")

	if err := ensureTemplatesRoot(root, testLogger()); err != nil {
		t.Fatalf("ensureTemplatesRoot() error = %v", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		t.Fatalf("expected templates root to be created: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("templates root should be a directory")
	}
}

func TestEnsureTemplatesRoot_ExistingDirIsNoop(t *testing.T) {
	root := t.TempDir()
	if err := ensureTemplatesRoot(root, testLogger()); err != nil {
		t.Fatalf("ensureTemplatesRoot() error = %v", err)
	}
}

func TestParseTemplateFile_Valid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tmpl.json")
	writeFile(t, path, `{"documentType":"invoice","template":{"html":"<p/>"}}`)

	tmpl, err := parseTemplateFile(path)
	if err != nil {
		t.Fatalf("parseTemplateFile() error = %v", err)
	}
	if tmpl.DocumentType != "invoice" {
		t.Errorf("DocumentType = %q, want %q", tmpl.DocumentType, "invoice")
	}
}

func TestParseTemplateFile_PopulatesVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tmpl.json")
	writeFile(t, path, `{"documentType":"invoice","template":{"html":"<p>{{variables.name}}</p>"},"variables":{"name":"Alice"}}`)

	tmpl, err := parseTemplateFile(path)
	if err != nil {
		t.Fatalf("parseTemplateFile() error = %v", err)
	}
	if tmpl.Variables == nil {
		t.Fatal("Variables should be populated, not nil")
	}
	name, ok := tmpl.Variables.Get("name")
	if !ok || name.String() != "Alice" {
		t.Errorf("variables.name = %v, %v, want Alice, true", name, ok)
	}
}

func TestParseTemplateFile_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tmpl.json")
	writeFile(t, path, `not json`)

	_, err := parseTemplateFile(path)
	if err == nil {
		t.Fatal("parseTemplateFile() expected an error for invalid JSON")
	}
}

func TestParseTemplateFile_MissingFile(t *testing.T) {
	_, err := parseTemplateFile(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("parseTemplateFile() expected an error for a missing file")
	}
}

func TestOutputFileName(t *testing.T) {
	tests := []struct {
		name         string
		documentType string
		id           string
		want         string
	}{
		{"simple", "invoice", "abc-123-def", "invoice_abc123def.pdf"},
		{"empty document type falls back to document", "", "abc-123", "document_abc123.pdf"},
		{"no dashes is unchanged", "invoice", "abc123", "invoice_abc123.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputFileName(tt.documentType, tt.id)
			if got != tt.want {
				t.Errorf("outputFileName(%q, %q) = %q, want %q", tt.documentType, tt.id, got, tt.want)
			}
		})
	}
}

func TestFileDispatcher_Run_RendersDiscoveredFiles(t *testing.T) {
	templatesRoot := t.TempDir()
	outputPath := t.TempDir()

	writeFile(t, filepath.Join(templatesRoot, "invoice.json"), `{"documentType":"invoice","template":{"html":"<p/>"}}`)
	writeFile(t, filepath.Join(templatesRoot, "receipt.json"), `{"documentType":"receipt","template":{"html":"<p/>"}}`)

	p := &Pipeline{
		engine:   &fakeEngine{html: "<html/>"},
		renderer: &fakeRenderer{pdf: []byte("%PDF-1.4")},
	}
	d := NewFileDispatcher(p, config.FileModeConfig{
		TemplatesRoot: templatesRoot,
		OutputPath:    outputPath,
		Concurrency:   2,
	}, testLogger())

	results, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Run() returned %d results, want 2", len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("result for %s has unexpected error: %v", r.InputPath, r.Err)
		}
	}

	entries, err := os.ReadDir(outputPath)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("output directory has %d files, want 2", len(entries))
	}
}

func TestFileDispatcher_Run_CreatesMissingTemplatesRoot(t *testing.T) {
	templatesRoot := filepath.Join(t.TempDir(), "missing-templates")
	outputPath := t.TempDir()

	p := &Pipeline{engine: &fakeEngine{html: "<html/>"}, renderer: &fakeRenderer{pdf: []byte("x")}}
	d := NewFileDispatcher(p, config.FileModeConfig{
		TemplatesRoot: templatesRoot,
		OutputPath:    outputPath,
		Concurrency:   1,
	}, testLogger())

	results, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if results != nil {
		t.Errorf("Run() = %v, want nil for an empty newly-created templates root", results)
	}
	if _, err := os.Stat(templatesRoot); err != nil {
		t.Errorf("templates root should have been created: %v", err)
	}
}

func TestFileDispatcher_Run_NoTemplateFilesReturnsNil(t *testing.T) {
	templatesRoot := t.TempDir()
	outputPath := t.TempDir()

	p := &Pipeline{engine: &fakeEngine{html: "<html/>"}, renderer: &fakeRenderer{pdf: []byte("x")}}
	d := NewFileDispatcher(p, config.FileModeConfig{
		TemplatesRoot: templatesRoot,
		OutputPath:    outputPath,
		Concurrency:   1,
	}, testLogger())

	results, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if results != nil {
		t.Errorf("Run() = %v, want nil when no template files are found", results)
	}
}

func TestFileDispatcher_RenderFile_PipelineErrorIsRecorded(t *testing.T) {
	templatesRoot := t.TempDir()
	outputPath := t.TempDir()
	path := filepath.Join(templatesRoot, "bad.json")
	writeFile(t, path, `{"documentType":"invoice","template":{"html":"<p/>"}}`)

	wantErr := NewRenderError(KindTemplateParse, os.ErrInvalid)
	p := &Pipeline{
		engine:   &fakeEngine{err: wantErr},
		renderer: &fakeRenderer{},
	}
	d := NewFileDispatcher(p, config.FileModeConfig{
		TemplatesRoot: templatesRoot,
		OutputPath:    outputPath,
		Concurrency:   1,
	}, testLogger())

	result := d.renderFile(context.Background(), path)
	if result.Err == nil {
		t.Fatal("renderFile() expected an error from a failing pipeline")
	}
	if result.InputPath != path {
		t.Errorf("InputPath = %q, want %q", result.InputPath, path)
	}
}

func TestFileDispatcher_RenderFile_InvalidTemplateFile(t *testing.T) {
	templatesRoot := t.TempDir()
	path := filepath.Join(templatesRoot, "broken.json")
	writeFile(t, path, `not json`)

	p := &Pipeline{engine: &fakeEngine{html: "<html/>"}, renderer: &fakeRenderer{pdf: []byte("x")}}
	d := NewFileDispatcher(p, config.FileModeConfig{TemplatesRoot: templatesRoot, Concurrency: 1}, testLogger())

	result := d.renderFile(context.Background(), path)
	if result.Err == nil {
		t.Fatal("renderFile() expected an error for an unparseable template file")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", path, err)
	}
}
