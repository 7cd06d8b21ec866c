// Package docmodel defines the canonical in-memory representation of a
// paper: title, subtitle, metadata, ordered sections with body paragraphs
// and verbatim blocks, plus the opaque formatting and bibliography fields
// owned by their respective subsystems.
//
// Document is pure data. Importers build it, the editor replaces it
// wholesale on edit, and persistence serialises it as JSON verbatim.
package docmodel

import "fmt"

// Document is a structured paper.
type Document struct {
	Title    string            `json:"title"`
	Subtitle string            `json:"subtitle,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Sections []Section         `json:"sections"`
	Format   *FormatSpec       `json:"format,omitempty"`
	Sources  []Source          `json:"sources,omitempty"`
}

// Section is one heading-delimited unit of a document.
//
// Hierarchy is implied purely by Level values in sequence: a level-1 entry
// conceptually contains the level-2/3 entries that follow it until the next
// level-1. There is no explicit parent/child nesting.
type Section struct {
	ID    string `json:"id"`
	Level int    `json:"level"` // 1-3
	Title string `json:"title"`
	// Body holds paragraphs in order. An empty string is a meaningful
	// blank-line spacer, not absence.
	Body []string `json:"body"`
	// MonoBlocks holds verbatim/code blocks. They render after all body
	// paragraphs; interleaving with prose is not preserved.
	MonoBlocks []string `json:"monoBlocks,omitempty"`
}

// FormatSpec carries presentation settings. The ingestion core only touches
// RenderMarkdown; the rest belongs to the formatting subsystem.
type FormatSpec struct {
	Preset         string  `json:"preset,omitempty"`
	FontFamily     string  `json:"fontFamily,omitempty"`
	FontSizePt     float64 `json:"fontSizePt,omitempty"`
	MarginMM       float64 `json:"marginMm,omitempty"`
	RenderMarkdown bool    `json:"renderMarkdown"`
}

// Source is a bibliography entry, opaque to the ingestion core.
type Source struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Authors string `json:"authors,omitempty"`
	Year    string `json:"year,omitempty"`
	URL     string `json:"url,omitempty"`
	Note    string `json:"note,omitempty"`
}

// SectionID returns the generator-assigned ID for the n-th section (1-based).
func SectionID(n int) string {
	return fmt.Sprintf("section-%d", n)
}

// UniqueSectionIDs reports whether all section IDs in the document are
// pairwise distinct.
func UniqueSectionIDs(doc *Document) bool {
	seen := make(map[string]struct{}, len(doc.Sections))
	for _, s := range doc.Sections {
		if _, dup := seen[s.ID]; dup {
			return false
		}
		seen[s.ID] = struct{}{}
	}
	return true
}

// PruneMetadata removes entries whose values are empty or whitespace-only.
func PruneMetadata(doc *Document) {
	for k, v := range doc.Metadata {
		if isBlank(v) {
			delete(doc.Metadata, k)
		}
	}
	if len(doc.Metadata) == 0 {
		doc.Metadata = nil
	}
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
