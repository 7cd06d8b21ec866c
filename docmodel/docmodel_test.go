package docmodel

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestSectionID(t *testing.T) {
	if got := SectionID(1); got != "section-1" {
		t.Errorf("SectionID(1) = %q", got)
	}
	if got := SectionID(42); got != "section-42" {
		t.Errorf("SectionID(42) = %q", got)
	}
}

func TestUniqueSectionIDs(t *testing.T) {
	doc := &Document{Sections: []Section{{ID: "section-1"}, {ID: "section-2"}}}
	if !UniqueSectionIDs(doc) {
		t.Error("distinct IDs reported as duplicate")
	}
	doc.Sections = append(doc.Sections, Section{ID: "section-1"})
	if UniqueSectionIDs(doc) {
		t.Error("duplicate IDs not detected")
	}
	if !UniqueSectionIDs(&Document{}) {
		t.Error("empty document should be trivially unique")
	}
}

func TestPruneMetadata(t *testing.T) {
	doc := &Document{Metadata: map[string]string{
		"Author": "Jane",
		"Empty":  "",
		"Blank":  " \t\n",
	}}
	PruneMetadata(doc)
	if !reflect.DeepEqual(doc.Metadata, map[string]string{"Author": "Jane"}) {
		t.Errorf("metadata = %#v", doc.Metadata)
	}

	doc = &Document{Metadata: map[string]string{"X": ""}}
	PruneMetadata(doc)
	if doc.Metadata != nil {
		t.Errorf("fully pruned metadata should be nil, got %#v", doc.Metadata)
	}
}

// The JSON shape is the persistence and wire format; spacers and optional
// fields must survive a marshal cycle untouched.
func TestDocumentJSON(t *testing.T) {
	doc := &Document{
		Title:    "T",
		Subtitle: "S",
		Sections: []Section{
			{ID: "section-1", Level: 1, Title: "A", Body: []string{"x", "", "y"}},
		},
		Format: &FormatSpec{Preset: "classic", RenderMarkdown: true},
		Sources: []Source{
			{ID: "src-1", Title: "Ref", Year: "2020"},
		},
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	var back Document
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(&back, doc) {
		t.Errorf("round trip mismatch:\n%#v\n%#v", &back, doc)
	}

	// Empty optional fields stay off the wire.
	minimal, _ := json.Marshal(&Document{Title: "x"})
	for _, field := range []string{"subtitle", "metadata", "format", "sources", "monoBlocks"} {
		if strings.Contains(string(minimal), `"`+field+`"`) {
			t.Errorf("minimal document serialised %q: %s", field, minimal)
		}
	}
}

func TestBlankAndSample(t *testing.T) {
	doc := Blank("Fresh Paper")
	if doc.Title != "Fresh Paper" {
		t.Errorf("title = %q", doc.Title)
	}
	if len(doc.Sections) == 0 {
		t.Fatal("blank document has no sections")
	}
	if !UniqueSectionIDs(doc) {
		t.Error("blank document IDs not unique")
	}

	sample := Sample()
	if sample.Title == "" || len(sample.Sections) == 0 {
		t.Errorf("sample = %#v", sample)
	}
	if !UniqueSectionIDs(sample) {
		t.Error("sample document IDs not unique")
	}
}
