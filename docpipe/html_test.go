package docpipe

import (
	"context"
	"strings"
	"testing"

	"github.com/hazyhaar/perfector/ingest"
)

func TestImportHTML(t *testing.T) {
	page := `<!DOCTYPE html>
<html>
<head><title>Fallback Title</title><script>alert("evil")</script></head>
<body>
<h1>Structured Heading</h1>
<p>Lead paragraph with enough words.</p>
<h2>Second Part</h2>
<p>More body text follows here.</p>
</body>
</html>`

	p := New(Config{})
	path := writeFile(t, "page.html", page)

	res, err := p.Import(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	doc := res.Doc

	if doc.Title != "Structured Heading" {
		t.Errorf("title = %q", doc.Title)
	}
	if len(doc.Sections) == 0 {
		t.Fatal("no sections")
	}

	var all strings.Builder
	for _, sec := range doc.Sections {
		all.WriteString(sec.Title)
		for _, b := range sec.Body {
			all.WriteString("\n" + b)
		}
	}
	if !strings.Contains(all.String(), "Lead paragraph with enough words.") {
		t.Errorf("body text lost:\n%s", all.String())
	}
	if strings.Contains(all.String(), "alert(") {
		t.Error("script content leaked into document")
	}
}

func TestImportHTMLTitleFallback(t *testing.T) {
	// No headings in the body: the <title> element seeds the title fallback.
	page := `<html><head><title>Page Title</title></head><body><p>Some *emphasised* prose.</p></body></html>`

	p := New(Config{})
	doc, err := p.importHTMLBytes([]byte(page), ingest.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "Page Title" {
		t.Errorf("title = %q", doc.Title)
	}
}

func TestFindHTMLTitle(t *testing.T) {
	p := New(Config{})
	doc, err := p.importHTMLBytes([]byte("<html><body><p>no title here at all</p></body></html>"), ingest.Options{FileName: "saved-page.html"})
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title == "" {
		t.Error("expected a non-empty fallback title")
	}
}

func TestCollectHTMLText(t *testing.T) {
	page := `<html><head><style>p{color:red}</style></head><body><p>visible one</p><script>hidden()</script><p>visible two</p></body></html>`
	p := New(Config{})
	doc, err := p.importHTMLBytes([]byte(page), ingest.Options{})
	if err != nil {
		t.Fatal(err)
	}

	var all strings.Builder
	all.WriteString(doc.Title)
	for _, sec := range doc.Sections {
		for _, b := range sec.Body {
			all.WriteString("\n" + b)
		}
	}
	if !strings.Contains(all.String(), "visible one") || !strings.Contains(all.String(), "visible two") {
		t.Errorf("visible text lost:\n%s", all.String())
	}
	if strings.Contains(all.String(), "hidden()") || strings.Contains(all.String(), "color:red") {
		t.Errorf("non-content text leaked:\n%s", all.String())
	}
}
