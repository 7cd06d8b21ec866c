package docpipe

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/hazyhaar/perfector/docmodel"
	"github.com/hazyhaar/perfector/ingest"
)

// maxXMLDepth bounds element nesting in office XML. Real documents stay far
// below this; deeply nested input is an XML bomb.
const maxXMLDepth = 256

// importDocx parses a .docx file by reading word/document.xml from the ZIP
// archive. Title/Subtitle paragraph styles seed the document head, heading
// styles open sections, everything else becomes body paragraphs.
func importDocx(path string, opt ingest.Options) (*docmodel.Document, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	doc := &docmodel.Document{}
	var sections []docmodel.Section
	var current *docmodel.Section
	nextID := 1

	openSection := func(title string, level int) {
		sections = append(sections, docmodel.Section{
			ID:    docmodel.SectionID(nextID),
			Level: level,
			Title: title,
		})
		nextID++
		current = &sections[len(sections)-1]
	}

	decoder := xml.NewDecoder(rc)
	var currentText strings.Builder
	var inParagraph bool
	var paragraphStyle string
	depth := 0

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth > maxXMLDepth {
				return nil, fmt.Errorf("xml nesting depth exceeds %d", maxXMLDepth)
			}
			switch {
			case t.Name.Local == "p":
				inParagraph = true
				currentText.Reset()
				paragraphStyle = ""
			case t.Name.Local == "pStyle" && inParagraph:
				for _, attr := range t.Attr {
					if attr.Name.Local == "val" {
						paragraphStyle = attr.Value
					}
				}
			}

		case xml.CharData:
			if inParagraph {
				currentText.Write(t)
			}

		case xml.EndElement:
			depth--
			if t.Name.Local != "p" || !inParagraph {
				continue
			}
			inParagraph = false
			text := strings.TrimSpace(currentText.String())
			if text == "" {
				continue
			}

			style := strings.ToLower(paragraphStyle)
			switch {
			case style == "title" && doc.Title == "":
				doc.Title = text
			case style == "subtitle" && doc.Subtitle == "" && len(sections) == 0:
				doc.Subtitle = text
			default:
				if hd := docxHeadingDepth(style); hd > 0 {
					if doc.Title == "" && len(sections) == 0 && hd == 1 {
						doc.Title = text
						continue
					}
					openSection(text, ingest.CollapseLevel(hd))
					continue
				}
				if current == nil {
					openSection("Overview", 1)
				}
				current.Body = append(current.Body, text)
			}
		}
	}

	if len(sections) == 0 {
		openSection("Overview", 1)
	}
	if doc.Title == "" {
		doc.Title = docxTitleFallback(opt, sections)
	}
	doc.Sections = sections
	return doc, nil
}

// docxHeadingDepth extracts the heading depth from a paragraph style name,
// e.g. "Heading1" → 1. Localised style prefixes are common in documents
// produced by non-English Word installs.
func docxHeadingDepth(style string) int {
	for _, prefix := range []string{"heading", "titre", "überschrift"} {
		if strings.HasPrefix(style, prefix) {
			rest := style[len(prefix):]
			if len(rest) == 1 && rest[0] >= '1' && rest[0] <= '6' {
				return int(rest[0] - '0')
			}
		}
	}
	return 0
}

func docxTitleFallback(opt ingest.Options, sections []docmodel.Section) string {
	for _, s := range sections {
		if s.Title != "" && s.Title != "Overview" {
			return s.Title
		}
	}
	if opt.FileName != "" {
		base := opt.FileName
		if i := strings.LastIndexByte(base, '.'); i > 0 {
			base = base[:i]
		}
		return base
	}
	return "Untitled Document"
}
