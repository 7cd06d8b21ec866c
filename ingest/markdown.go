package ingest

import (
	"regexp"
	"strings"

	"github.com/hazyhaar/perfector/docmodel"
)

// parseState is the mode of the Markdown line scanner.
type parseState int

const (
	// stateFrontMatter runs until the first structural element: title,
	// subtitle and **Key:** metadata are only recognised here.
	stateFrontMatter parseState = iota
	// stateSection accumulates body paragraphs into the open section.
	stateSection
	// stateCodeBlock collects raw lines verbatim until the closing fence.
	stateCodeBlock
)

var (
	headingRe    = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	metadataRe   = regexp.MustCompile(`^\*\*([^*]+?):\*\*\s*(.*)$`)
	dividerRe    = regexp.MustCompile(`^\s*(-{3,}|\*{3,}|_{3,})\s*$`)
	bulletRe     = regexp.MustCompile(`^\s*[-*+]\s+(.*)$`)
	orderedRe    = regexp.MustCompile(`^\s*(\d+)[.)]\s+(.*)$`)
	blockquoteRe = regexp.MustCompile(`^>\s`)

	inlineTokenRes = []*regexp.Regexp{
		regexp.MustCompile(`\*\*[^*\n]+\*\*`),
		regexp.MustCompile(`(^|\s)\*[^*\n]+\*`),
		regexp.MustCompile(`(^|\s)_[^_\n]+_`),
		regexp.MustCompile(`~~[^~\n]+~~`),
		regexp.MustCompile("`[^`\n]+`"),
		regexp.MustCompile(`\[[^\]\n]+\]\([^)\n]+\)`),
	}
)

// LooksLikeMarkdown reports whether text carries enough Markdown structure
// to be worth parsing as Markdown. Plain prose fails this test and is
// handled by the plain-text importer instead.
func LooksLikeMarkdown(text string) bool {
	if strings.Contains(text, "```") {
		return true
	}
	for _, re := range inlineTokenRes {
		if re.MatchString(text) {
			return true
		}
	}
	for _, line := range strings.Split(normalizeNewlines(text), "\n") {
		if headingRe.MatchString(line) ||
			bulletRe.MatchString(line) ||
			orderedRe.MatchString(line) ||
			dividerRe.MatchString(line) ||
			metadataRe.MatchString(line) ||
			blockquoteRe.MatchString(line) {
			return true
		}
	}
	return false
}

// CollapseLevel maps heading depth 1-6 onto the three internal section
// levels: 1-2 become level 1, 3 becomes level 2, 4-6 become level 3. All
// importers share this table.
func CollapseLevel(depth int) int {
	switch {
	case depth <= 2:
		return 1
	case depth == 3:
		return 2
	default:
		return 3
	}
}

// mdParser holds the mutable state of one FromMarkdown pass.
type mdParser struct {
	doc   *docmodel.Document
	state parseState

	// front-matter bookkeeping
	titleSet     bool
	subtitleOpen bool // a ## may still become the subtitle
	frontBroken  bool // a non-blank, non-metadata line intervened

	sections  []docmodel.Section
	current   *docmodel.Section
	para      []string // pending paragraph lines
	code      []string // pending code-block lines
	lastBlank bool     // previous line was blank (spacer streak tracking)
	nextID    int
}

// FromMarkdown converts Markdown text into a fully structured document.
// Input that does not look like Markdown is delegated whole to
// FromPlainText.
func (g *Ingester) FromMarkdown(text string, opt Options) *docmodel.Document {
	if !LooksLikeMarkdown(text) {
		return g.FromPlainText(text, opt)
	}

	p := &mdParser{
		doc:    &docmodel.Document{Metadata: make(map[string]string)},
		nextID: 1,
	}

	for _, line := range strings.Split(normalizeNewlines(text), "\n") {
		p.feed(line)
	}
	p.finish()

	if p.doc.Title == "" {
		p.doc.Title = titleFallback(opt)
	}
	p.doc.Sections = p.sections
	docmodel.PruneMetadata(p.doc)
	applySourceLabel(p.doc, opt)
	return p.doc
}

func (p *mdParser) feed(line string) {
	if p.state == stateCodeBlock {
		p.lastBlank = false
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			p.closeCode()
			return
		}
		p.code = append(p.code, line)
		return
	}

	trimmed := strings.TrimSpace(line)
	wasBlank := p.lastBlank
	p.lastBlank = trimmed == ""

	if strings.HasPrefix(trimmed, "```") {
		p.flushPara()
		p.state = stateCodeBlock
		p.code = p.code[:0]
		return
	}

	if m := headingRe.FindStringSubmatch(trimmed); m != nil {
		p.heading(len(m[1]), strings.TrimSpace(m[2]))
		return
	}

	if trimmed == "" {
		p.blank(wasBlank)
		return
	}

	if p.state == stateFrontMatter {
		if m := metadataRe.FindStringSubmatch(trimmed); m != nil {
			p.doc.Metadata[strings.TrimSpace(m[1])] = strings.TrimSpace(m[2])
			// Metadata between title and a ## means the ## no longer
			// "immediately follows" the title.
			p.subtitleOpen = false
			return
		}
	}

	if dividerRe.MatchString(trimmed) {
		p.flushPara()
		if p.current != nil {
			p.current.Body = append(p.current.Body, "---")
		}
		// Before any section a divider is dropped, but it still ends the
		// subtitle window.
		p.frontBroken = true
		p.subtitleOpen = false
		return
	}

	if m := bulletRe.FindStringSubmatch(trimmed); m != nil {
		p.flushPara()
		p.appendBody("- " + strings.TrimSpace(m[1]))
		return
	}
	if m := orderedRe.FindStringSubmatch(trimmed); m != nil {
		p.flushPara()
		p.appendBody(m[1] + ". " + strings.TrimSpace(m[2]))
		return
	}

	// Plain text: part of an in-progress paragraph.
	p.frontBroken = true
	p.subtitleOpen = false
	p.para = append(p.para, strings.TrimRight(line, " \t"))
}

// heading handles an ATX heading: title and subtitle capture while still in
// front matter, a new section otherwise.
func (p *mdParser) heading(depth int, text string) {
	if p.state == stateFrontMatter && len(p.para) == 0 {
		if !p.titleSet && depth == 1 {
			p.doc.Title = text
			p.titleSet = true
			p.subtitleOpen = true
			return
		}
		if p.subtitleOpen && p.doc.Subtitle == "" && depth == 2 && !p.frontBroken {
			p.doc.Subtitle = text
			p.subtitleOpen = false
			return
		}
	}
	p.flushPara()
	p.closeSection()
	p.state = stateSection
	p.sections = append(p.sections, docmodel.Section{
		ID:    docmodel.SectionID(p.nextID),
		Level: CollapseLevel(depth),
		Title: text,
	})
	p.nextID++
	p.current = &p.sections[len(p.sections)-1]
}

// blank flushes a pending paragraph on the first blank of a streak; each
// further blank in the streak becomes one spacer entry once a section holds
// content.
func (p *mdParser) blank(wasBlank bool) {
	if !wasBlank {
		p.flushPara()
		return
	}
	if p.state == stateSection && p.current != nil && len(p.current.Body) > 0 {
		p.current.Body = append(p.current.Body, "")
	}
}

// appendBody adds one body entry to the current section, opening a
// synthetic Overview section when none exists yet.
func (p *mdParser) appendBody(entry string) {
	p.ensureSection()
	p.current.Body = append(p.current.Body, entry)
}

func (p *mdParser) ensureSection() {
	if p.current == nil {
		p.sections = append(p.sections, docmodel.Section{
			ID:    docmodel.SectionID(p.nextID),
			Level: 1,
			Title: "Overview",
		})
		p.nextID++
		p.current = &p.sections[len(p.sections)-1]
	}
	p.state = stateSection
	p.subtitleOpen = false
	p.frontBroken = true
}

func (p *mdParser) flushPara() {
	if len(p.para) == 0 {
		return
	}
	text := strings.Join(p.para, "\n")
	p.para = p.para[:0]
	p.appendBody(text)
}

func (p *mdParser) closeCode() {
	p.ensureSection()
	p.current.MonoBlocks = append(p.current.MonoBlocks, strings.Join(p.code, "\n"))
	p.code = p.code[:0]
	p.state = stateSection
}

func (p *mdParser) closeSection() {
	p.current = nil
}

// finish flushes pending buffers and guarantees the at-least-one-section
// invariant.
func (p *mdParser) finish() {
	if p.state == stateCodeBlock {
		// Unterminated fence: implicitly closed at EOF.
		p.closeCode()
	}
	p.flushPara()
	if p.current != nil {
		body := p.current.Body
		for len(body) > 0 && body[len(body)-1] == "" {
			body = body[:len(body)-1]
		}
		p.current.Body = body
	}
	p.closeSection()
	if len(p.sections) == 0 {
		p.sections = append(p.sections, docmodel.Section{
			ID:    docmodel.SectionID(p.nextID),
			Level: 1,
			Title: "Overview",
		})
	}
}
