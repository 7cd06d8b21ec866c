// Package ingest converts weakly-structured input into the structured
// document model, and back.
//
// Four operations:
//   - FromPlainText — raw text, title line + blank-line paragraph breaks
//   - FromMarkdown  — Markdown with front matter, headings, lists, fences
//   - FromLines     — positioned text lines (PDF extraction, OCR) via
//     font-size heading detection and paragraph joining
//   - ToMarkdown    — the inverse serializer for freeform round-trips
//
// All four are synchronous, pure and total: they take a complete input
// snapshot and return a freshly built document, never an error. Threshold
// policy lives in Heuristics so it can be tuned independently of the
// parsing control flow.
package ingest

import (
	"path/filepath"
	"strings"

	"github.com/hazyhaar/perfector/docmodel"
)

// Options carries caller-supplied context for an import.
type Options struct {
	// SourceLabel names where the content came from (file name, URL,
	// "pasted text"). Echoed into document metadata when set.
	SourceLabel string

	// FileName seeds the title fallback (extension stripped).
	FileName string

	// PreserveLineBreaks makes FromLines join wrapped lines with newlines
	// instead of spaces and insert blank-line spacers on large vertical gaps.
	PreserveLineBreaks bool
}

// Heuristics holds the policy constants of the ingestion pipeline.
type Heuristics struct {
	// TitleMaxLen is the longest first line still considered a title by the
	// plain-text importer.
	TitleMaxLen int

	// HeadingSizeRatio scales the median font size into the heading
	// threshold for positioned lines.
	HeadingSizeRatio float64

	// TitleSizeRatio scales the median font size into the title threshold
	// for the first positioned line.
	TitleSizeRatio float64

	// GapSizeRatio scales the median font size into the vertical-gap
	// threshold that inserts a paragraph break when PreserveLineBreaks is
	// set.
	GapSizeRatio float64
}

func (h *Heuristics) defaults() {
	if h.TitleMaxLen <= 0 {
		h.TitleMaxLen = 80
	}
	if h.HeadingSizeRatio <= 0 {
		h.HeadingSizeRatio = 1.3
	}
	if h.TitleSizeRatio <= 0 {
		h.TitleSizeRatio = 1.6
	}
	if h.GapSizeRatio <= 0 {
		h.GapSizeRatio = 1.6
	}
}

// Ingester runs the four core operations with a fixed set of heuristics.
type Ingester struct {
	h Heuristics
}

// New creates an Ingester. Zero-value fields of h take the defaults.
func New(h Heuristics) *Ingester {
	h.defaults()
	return &Ingester{h: h}
}

var std = New(Heuristics{})

// FromPlainText imports raw text with the default heuristics.
func FromPlainText(text string, opt Options) *docmodel.Document {
	return std.FromPlainText(text, opt)
}

// FromMarkdown imports Markdown text with the default heuristics.
func FromMarkdown(text string, opt Options) *docmodel.Document {
	return std.FromMarkdown(text, opt)
}

// FromLines reconstructs a document from positioned lines with the default
// heuristics.
func FromLines(lines []Line, opt Options) *docmodel.Document {
	return std.FromLines(lines, opt)
}

// ToMarkdown serialises a document to Markdown.
func ToMarkdown(doc *docmodel.Document) string {
	return std.ToMarkdown(doc)
}

// normalizeNewlines rewrites CRLF and bare CR line endings to LF.
func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// titleFallback derives a document title from Options when no title line is
// found in the content.
func titleFallback(opt Options) string {
	if opt.FileName != "" {
		base := filepath.Base(opt.FileName)
		if ext := filepath.Ext(base); ext != "" && ext != base {
			base = base[:len(base)-len(ext)]
		}
		if base != "" {
			return base
		}
	}
	return "Untitled Document"
}

// applySourceLabel echoes the source label into document metadata.
func applySourceLabel(doc *docmodel.Document, opt Options) {
	if opt.SourceLabel == "" {
		return
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]string, 1)
	}
	if _, exists := doc.Metadata["Source"]; !exists {
		doc.Metadata["Source"] = opt.SourceLabel
	}
}
