// Package docpipe turns document files into structured paper documents.
//
// It is the file-format boundary in front of the ingest core: each importer
// decodes its binary or markup format down to text (or positioned text
// lines) and hands the result to the matching ingest operation.
//
// Supported formats:
//   - .txt    — plain text (title line + blank-line paragraph heuristics)
//   - .md     — Markdown (front matter, headings, lists, code fences)
//   - .html   — HTML (sanitised, converted to Markdown, then parsed)
//   - .pdf    — PDF text layer (positioned lines, font-size heading detection)
//   - .docx   — Microsoft Word (word/document.xml paragraph styles)
//   - .doc    — legacy Word (best-effort dual-decode, plain-text fallback)
//   - .ppdoc  — native JSON envelope
//
// Usage:
//
//	pipe := docpipe.New(docpipe.Config{})
//	res, err := pipe.Import(ctx, "/path/to/paper.pdf")
//	fmt.Println(res.Doc.Title, len(res.Doc.Sections), "sections")
package docpipe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/perfector/docmodel"
	"github.com/hazyhaar/perfector/ingest"
)

// Format identifies a document file type.
type Format string

const (
	FormatTXT   Format = "txt"
	FormatMD    Format = "md"
	FormatHTML  Format = "html"
	FormatPDF   Format = "pdf"
	FormatDocx  Format = "docx"
	FormatDoc   Format = "doc"
	FormatPPDoc Format = "ppdoc"
)

// ErrUnsupportedFormat is returned by Detect for unknown extensions.
var ErrUnsupportedFormat = fmt.Errorf("docpipe: unsupported format")

// Config configures the import pipeline.
type Config struct {
	// MaxFileSize is the maximum file size to process (default: 50 MB).
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size"`

	// PreserveLineBreaks keeps original line breaks when reconstructing
	// PDF text instead of joining wrapped lines with spaces.
	PreserveLineBreaks bool `json:"preserve_line_breaks" yaml:"preserve_line_breaks"`

	// Heuristics overrides the ingest policy constants. Zero values keep
	// the defaults.
	Heuristics ingest.Heuristics `json:"heuristics" yaml:"heuristics"`

	// Logger for debug/error messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 50 * 1024 * 1024
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Result is one imported document plus provenance.
type Result struct {
	Path    string             `json:"path"`
	Format  Format             `json:"format"`
	Doc     *docmodel.Document `json:"doc"`
	Quality *ExtractionQuality `json:"quality,omitempty"` // PDF only
}

// Pipeline is the document import engine.
type Pipeline struct {
	cfg    Config
	ing    *ingest.Ingester
	logger *slog.Logger
}

// New creates a Pipeline with the given configuration.
func New(cfg Config) *Pipeline {
	cfg.defaults()
	return &Pipeline{
		cfg:    cfg,
		ing:    ingest.New(cfg.Heuristics),
		logger: cfg.Logger,
	}
}

// Detect returns the document format based on file extension.
func (p *Pipeline) Detect(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text":
		return FormatTXT, nil
	case ".md", ".markdown":
		return FormatMD, nil
	case ".html", ".htm":
		return FormatHTML, nil
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDocx, nil
	case ".doc":
		return FormatDoc, nil
	case ".ppdoc":
		return FormatPPDoc, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Import decodes a document file into the structured model.
func (p *Pipeline) Import(ctx context.Context, path string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > p.cfg.MaxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", info.Size(), p.cfg.MaxFileSize)
	}

	format, err := p.Detect(path)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("importing document", "path", path, "format", format)

	opt := ingest.Options{
		SourceLabel:        filepath.Base(path),
		FileName:           filepath.Base(path),
		PreserveLineBreaks: p.cfg.PreserveLineBreaks,
	}

	res := &Result{Path: path, Format: format}

	switch format {
	case FormatTXT:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		res.Doc = p.ing.FromPlainText(string(data), opt)

	case FormatMD:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		res.Doc = p.ing.FromMarkdown(string(data), opt)

	case FormatHTML:
		res.Doc, err = p.importHTML(path, opt)

	case FormatPDF:
		res.Doc, res.Quality, err = p.importPDF(path, opt)

	case FormatDocx:
		res.Doc, err = importDocx(path, opt)

	case FormatDoc:
		res.Doc, err = p.importLegacyDoc(path, opt)

	case FormatPPDoc:
		res.Doc, err = ReadPPDoc(path)

	default:
		return nil, fmt.Errorf("no importer for format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("import %s (%s): %w", path, format, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// ImportText handles pasted content: Markdown when it looks like Markdown,
// plain text otherwise.
func (p *Pipeline) ImportText(text string, sourceLabel string) *docmodel.Document {
	return p.ing.FromMarkdown(text, ingest.Options{SourceLabel: sourceLabel})
}

// ExportMarkdown serialises a document with the pipeline's ingester.
func (p *Pipeline) ExportMarkdown(doc *docmodel.Document) string {
	return p.ing.ToMarkdown(doc)
}

// SupportedFormats returns all supported format extensions.
func SupportedFormats() []string {
	return []string{"txt", "md", "html", "pdf", "docx", "doc", "ppdoc"}
}
