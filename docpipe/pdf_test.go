package docpipe

import (
	"reflect"
	"strings"
	"testing"

	"github.com/hazyhaar/perfector/ingest"
)

func TestParseContentStream(t *testing.T) {
	stream := strings.Join([]string{
		"BT",
		"/F1 24 Tf",
		"1 0 0 1 72 760 Tm",
		"(Grand Title) Tj",
		"/F1 10 Tf",
		"1 0 0 1 72 700 Tm",
		"(Body text starts) Tj",
		"( and continues) Tj",
		"0 -12 Td",
		"(on the next line.) Tj",
		"ET",
	}, "\n")

	lines := parseContentStream([]byte(stream), 1)
	want := []ingest.Line{
		{Text: "Grand Title", Size: 24, Page: 1, Y: 760},
		{Text: "Body text starts and continues", Size: 10, Page: 1, Y: 700},
		{Text: "on the next line.", Size: 10, Page: 1, Y: 688},
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %#v, want %#v", lines, want)
	}
}

func TestParseContentStreamTextMatrixScale(t *testing.T) {
	// A 2x text matrix doubles the effective font size.
	stream := strings.Join([]string{
		"/F1 12 Tf",
		"2 0 0 2 72 700 Tm",
		"(Scaled heading) Tj",
	}, "\n")

	lines := parseContentStream([]byte(stream), 3)
	if len(lines) != 1 {
		t.Fatalf("lines = %#v", lines)
	}
	if lines[0].Size != 24 || lines[0].Page != 3 {
		t.Errorf("line = %#v", lines[0])
	}
}

func TestParseContentStreamLeading(t *testing.T) {
	stream := strings.Join([]string{
		"/F1 10 Tf",
		"14 TL",
		"1 0 0 1 72 700 Tm",
		"(first) Tj",
		"T*",
		"(second) Tj",
		"(third)'",
	}, "\n")

	lines := parseContentStream([]byte(stream), 1)
	if len(lines) != 3 {
		t.Fatalf("lines = %#v", lines)
	}
	if lines[1].Y != 686 {
		t.Errorf("T* line Y = %v, want 686", lines[1].Y)
	}
	if lines[2].Y != 672 {
		t.Errorf("quote line Y = %v, want 672", lines[2].Y)
	}
}

func TestParseContentStreamEmpty(t *testing.T) {
	if lines := parseContentStream(nil, 1); len(lines) != 0 {
		t.Errorf("lines = %#v", lines)
	}
	if lines := parseContentStream([]byte("q 1 0 0 1 0 0 cm Q"), 1); len(lines) != 0 {
		t.Errorf("lines = %#v", lines)
	}
}

func TestDecodePDFString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{`escaped \( paren \)`, "escaped ( paren )"},
		{`tab\there`, "tab\there"},
		{`line\nbreak`, "line\nbreak"},
		{`back\\slash`, `back\slash`},
		{`octal \101\102`, "octal AB"},
		{`short octal \7x`, "short octal \x07x"},
		{`unknown \q escape`, "unknown q escape"},
	}
	for _, tt := range tests {
		if got := decodePDFString([]byte(tt.in)); got != tt.want {
			t.Errorf("decodePDFString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
