package docmodel

// Blank returns a fresh single-section document ready for editing.
func Blank(title string) *Document {
	if title == "" {
		title = "Untitled Document"
	}
	return &Document{
		Title: title,
		Sections: []Section{{
			ID:    SectionID(1),
			Level: 1,
			Title: "Overview",
			Body:  []string{""},
		}},
		Format: &FormatSpec{Preset: "academic", RenderMarkdown: true},
	}
}

// Sample returns the built-in sample paper used when the editor starts
// without a stored document.
func Sample() *Document {
	return &Document{
		Title:    "The Structure of Scientific Writing",
		Subtitle: "A Working Example",
		Metadata: map[string]string{
			"Author":  "Paper Perfector",
			"Version": "1.0",
		},
		Sections: []Section{
			{
				ID:    SectionID(1),
				Level: 1,
				Title: "Introduction",
				Body: []string{
					"Academic papers follow a predictable structure: a title, an abstract, numbered sections, and a bibliography.",
					"This sample document demonstrates headings, paragraphs, and verbatim blocks.",
				},
			},
			{
				ID:    SectionID(2),
				Level: 2,
				Title: "Methods",
				Body: []string{
					"Sections at level two and three nest visually under the preceding level-one section.",
					"- Lists are kept as individual entries",
					"- One entry per item",
				},
				MonoBlocks: []string{"result = analyse(corpus)\nprint(result.summary())"},
			},
			{
				ID:    SectionID(3),
				Level: 1,
				Title: "Conclusion",
				Body: []string{
					"Replace this text with your own conclusions.",
				},
			},
		},
		Format: &FormatSpec{Preset: "academic", RenderMarkdown: true},
	}
}
