package ingest

import (
	"sort"
	"strings"

	"github.com/hazyhaar/perfector/docmodel"
)

// Line is one positioned text line, as produced by PDF text extraction or
// OCR. The reconstructor treats both sources as the same undifferentiated
// stream; it has no knowledge of the underlying format.
type Line struct {
	Text string  `json:"text"`
	Size float64 `json:"size"` // font size, 0 when unknown
	Page int     `json:"page,omitempty"`
	Y    float64 `json:"y,omitempty"` // larger = higher on the page
}

// FromLines reconstructs a structured document from positioned lines.
// Headings are inferred from font size relative to the median body size;
// wrapped lines are joined into paragraphs unless the previous paragraph
// already ends in terminal punctuation.
func (g *Ingester) FromLines(lines []Line, opt Options) *docmodel.Document {
	ordered := make([]Line, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l.Text) != "" {
			ordered = append(ordered, l)
		}
	}
	// Top to bottom in page order. Y grows upward in PDF coordinates.
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Page != ordered[j].Page {
			return ordered[i].Page < ordered[j].Page
		}
		return ordered[i].Y > ordered[j].Y
	})

	median := medianSize(ordered)
	headingThreshold := median * g.h.HeadingSizeRatio
	titleThreshold := median * g.h.TitleSizeRatio
	gapThreshold := median * g.h.GapSizeRatio

	doc := &docmodel.Document{
		Format: &docmodel.FormatSpec{RenderMarkdown: false},
	}

	var sections []docmodel.Section
	var current *docmodel.Section
	nextID := 1

	openSection := func(title string) {
		sections = append(sections, docmodel.Section{
			ID:    docmodel.SectionID(nextID),
			Level: 1,
			Title: title,
		})
		nextID++
		current = &sections[len(sections)-1]
	}

	var prevPage int
	var prevY float64
	havePrev := false

	for i, l := range ordered {
		text := strings.TrimSpace(l.Text)

		if i == 0 && median > 0 && l.Size >= titleThreshold {
			doc.Title = text
			havePrev = false
			continue
		}

		if median > 0 && l.Size >= headingThreshold {
			openSection(text)
			havePrev = false
			prevPage, prevY = l.Page, l.Y
			continue
		}

		if current == nil {
			openSection("Overview")
		}

		breakPara := false
		if opt.PreserveLineBreaks && havePrev && l.Page == prevPage && prevY-l.Y > gapThreshold {
			// Large vertical whitespace approximates a paragraph break.
			current.Body = append(current.Body, "")
			breakPara = true
		}

		if !breakPara && len(current.Body) > 0 {
			last := current.Body[len(current.Body)-1]
			if last != "" && !endsSentence(last) {
				sep := " "
				if opt.PreserveLineBreaks {
					sep = "\n"
				}
				current.Body[len(current.Body)-1] = last + sep + text
				prevPage, prevY = l.Page, l.Y
				havePrev = true
				continue
			}
		}

		current.Body = append(current.Body, text)
		prevPage, prevY = l.Page, l.Y
		havePrev = true
	}

	if len(sections) == 0 {
		openSection("Overview")
	}

	if doc.Title == "" {
		doc.Title = titleFallback(opt)
	}
	doc.Sections = sections
	applySourceLabel(doc, opt)
	return doc
}

// endsSentence reports whether a paragraph ends in terminal punctuation.
// Line wraps inside a paragraph rarely do.
func endsSentence(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	switch t[len(t)-1] {
	case '.', '!', '?', ':':
		return true
	}
	return false
}

// medianSize returns the median of the positive font sizes. The median is
// robust to a handful of oversized title lines skewing the distribution.
func medianSize(lines []Line) float64 {
	sizes := make([]float64, 0, len(lines))
	for _, l := range lines {
		if l.Size > 0 {
			sizes = append(sizes, l.Size)
		}
	}
	if len(sizes) == 0 {
		return 0
	}
	sort.Float64s(sizes)
	mid := len(sizes) / 2
	if len(sizes)%2 == 1 {
		return sizes[mid]
	}
	return (sizes[mid-1] + sizes[mid]) / 2
}
