package ingest

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hazyhaar/perfector/docmodel"
)

// ToMarkdown renders a document back into Markdown text. It is the inverse
// of FromMarkdown up to the heading-level collapse and the placement of
// mono blocks after body paragraphs; title, subtitle, metadata and section
// structure survive a full round trip.
func (g *Ingester) ToMarkdown(doc *docmodel.Document) string {
	var out []string

	out = append(out, "# "+doc.Title)
	if doc.Subtitle != "" {
		out = append(out, "", "## "+doc.Subtitle)
	}

	keys := make([]string, 0, len(doc.Metadata))
	for k, v := range doc.Metadata {
		if strings.TrimSpace(v) != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		out = append(out, "")
		for _, k := range keys {
			out = append(out, "**"+k+":** "+doc.Metadata[k])
		}
	}

	if doc.Subtitle == "" && len(keys) == 0 && len(doc.Sections) > 0 {
		// Keep the first section heading from being re-read as a subtitle:
		// a divider closes the front-matter subtitle window and is dropped
		// again on import.
		out = append(out, "", "---")
	}

	for _, sec := range doc.Sections {
		out = append(out, "", sectionHeadingMarker(sec.Level)+" "+sec.Title)

		prevList := false
		prevSpacer := false
		for _, entry := range sec.Body {
			if entry == "" {
				// A spacer entry came from one blank line past the one that
				// flushed the previous paragraph, so the first spacer in a
				// streak serialises as two blank lines.
				if prevSpacer {
					out = append(out, "")
				} else {
					out = append(out, "", "")
				}
				prevList = false
				prevSpacer = true
				continue
			}
			isList := listEntryRe.MatchString(entry)
			if !prevSpacer && !(prevList && isList) {
				out = append(out, "")
			}
			out = append(out, strings.Split(entry, "\n")...)
			prevList = isList
			prevSpacer = false
		}

		for _, block := range sec.MonoBlocks {
			out = append(out, "", "```")
			out = append(out, strings.Split(block, "\n")...)
			out = append(out, "```")
		}
	}

	return strings.TrimRight(strings.Join(out, "\n"), "\n") + "\n"
}

// listEntryRe matches the normalised list markers the importer emits.
var listEntryRe = regexp.MustCompile(`^(- |\d+\. )`)

// sectionHeadingMarker mirrors the importer's level collapse: internal
// levels 1-3 serialise as ##, ### and ####.
func sectionHeadingMarker(level int) string {
	switch level {
	case 1:
		return "##"
	case 2:
		return "###"
	default:
		return "####"
	}
}
