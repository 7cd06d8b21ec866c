package ingest

import (
	"strings"

	"github.com/hazyhaar/perfector/docmodel"
)

// FromPlainText converts raw unstructured text into a single-section
// document. The first non-blank line becomes the title when it is short
// enough and followed by a blank line; otherwise the title falls back to
// the file name. Blank-line runs delimit paragraphs, with one spacer entry
// kept per blank line past the first in a streak.
//
// Never fails: worst case is a single-paragraph document.
func (g *Ingester) FromPlainText(text string, opt Options) *docmodel.Document {
	lines := strings.Split(normalizeNewlines(text), "\n")

	title := ""
	start := 0
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		candidate := strings.TrimSpace(line)
		nextBlank := i+1 >= len(lines) || strings.TrimSpace(lines[i+1]) == ""
		if len(candidate) <= g.h.TitleMaxLen && nextBlank {
			title = candidate
			start = i + 1
		} else {
			start = i
		}
		break
	}
	if title == "" {
		title = titleFallback(opt)
	}

	var body []string
	var buf []string
	flush := func() {
		if len(buf) > 0 {
			body = append(body, strings.Join(buf, "\n"))
			buf = buf[:0]
		}
	}

	for _, line := range lines[start:] {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if len(buf) > 0 {
				flush()
			} else if len(body) > 0 {
				// Second or later blank in a streak: keep one spacer per
				// extra blank line. Leading blanks emit nothing.
				body = append(body, "")
			}
			continue
		}
		buf = append(buf, line)
	}
	flush()
	for len(body) > 0 && body[len(body)-1] == "" {
		// Trailing blanks carry no content; dropping them keeps exports stable.
		body = body[:len(body)-1]
	}

	doc := &docmodel.Document{
		Title: title,
		Sections: []docmodel.Section{{
			ID:    docmodel.SectionID(1),
			Level: 1,
			Title: "Overview",
			Body:  body,
		}},
	}
	applySourceLabel(doc, opt)
	return doc
}
