package docpipe

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/hazyhaar/perfector/docmodel"
	"github.com/hazyhaar/perfector/ingest"
)

// importPDF extracts positioned text lines from a PDF and reconstructs the
// document through the ingest layout heuristics. Returns the document plus
// extraction quality metrics so the caller can decide whether OCR is needed.
func (p *Pipeline) importPDF(path string, opt ingest.Options) (*docmodel.Document, *ExtractionQuality, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	var lines []ingest.Line
	totalChars := 0
	var allText strings.Builder

	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		pageLines := extractPageLines(ctx, pageNr)
		for _, l := range pageLines {
			totalChars += len([]rune(l.Text))
			allText.WriteString(l.Text)
			allText.WriteByte('\n')
		}
		lines = append(lines, pageLines...)
	}

	if len(lines) == 0 {
		return nil, nil, fmt.Errorf("no text content found in PDF")
	}

	var charsPerPage float64
	if ctx.PageCount > 0 {
		charsPerPage = float64(totalChars) / float64(ctx.PageCount)
	}
	fullText := allText.String()
	quality := &ExtractionQuality{
		PageCount:       ctx.PageCount,
		CharsPerPage:    charsPerPage,
		PrintableRatio:  computePrintableRatio(fullText),
		WordlikeRatio:   computeWordlikeRatio(fullText),
		HasImageStreams: detectImageStreams(ctx),
	}

	doc := p.ing.FromLines(lines, opt)
	return doc, quality, nil
}

// extractPageLines parses one page's content stream into positioned lines.
func extractPageLines(ctx *model.Context, pageNr int) []ingest.Line {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return nil
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return nil
	}
	return parseContentStream(data, pageNr)
}

// detectImageStreams checks if the PDF contains image XObjects.
func detectImageStreams(ctx *model.Context) bool {
	if ctx.Optimize != nil {
		for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
			if len(pdfcpu.ImageObjNrs(ctx, pageNr)) > 0 {
				return true
			}
		}
	}
	for _, entry := range ctx.Table {
		if entry == nil || entry.Free || entry.Compressed {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if subtype, found := sd.Find("Subtype"); found {
			if name, isName := subtype.(types.Name); isName && name == "Image" {
				return true
			}
		}
	}
	return false
}

var (
	pdfStringRe = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)`)
	tfRe        = regexp.MustCompile(`/\S+\s+(-?[\d.]+)\s+Tf`)
	tmRe        = regexp.MustCompile(`(-?[\d.]+)\s+(-?[\d.]+)\s+(-?[\d.]+)\s+(-?[\d.]+)\s+(-?[\d.]+)\s+(-?[\d.]+)\s+Tm`)
	tdRe        = regexp.MustCompile(`(-?[\d.]+)\s+(-?[\d.]+)\s+(Td|TD)`)
	tlRe        = regexp.MustCompile(`(-?[\d.]+)\s+TL`)
)

// streamState tracks the text state of one content stream pass.
type streamState struct {
	page    int
	size    float64 // Tf font size
	scale   float64 // |d| of the last Tm, 1 by default
	y       float64
	leading float64

	lineBuf  strings.Builder
	lineY    float64
	lineSize float64
	haveLine bool
	out      []ingest.Line
}

// parseContentStream walks a decoded PDF content stream and groups shown
// text into lines keyed by vertical position, carrying the effective font
// size along. This is a heuristic operator scan, not a full interpreter:
// enough for the layout reconstructor, which only needs a size proxy and
// top-to-bottom ordering.
func parseContentStream(data []byte, pageNr int) []ingest.Line {
	st := &streamState{page: pageNr, scale: 1, leading: 12}

	for _, raw := range bytes.Split(data, []byte{'\n'}) {
		line := strings.TrimSpace(string(raw))
		if line == "" {
			continue
		}

		if m := tfRe.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
				st.size = v
				st.leading = v * 1.2
			}
		}
		if m := tmRe.FindStringSubmatch(line); m != nil {
			if d, err := strconv.ParseFloat(m[4], 64); err == nil && d != 0 {
				if d < 0 {
					d = -d
				}
				st.scale = d
			}
			if f, err := strconv.ParseFloat(m[6], 64); err == nil {
				st.y = f
			}
		}
		if m := tdRe.FindStringSubmatch(line); m != nil {
			if ty, err := strconv.ParseFloat(m[2], 64); err == nil {
				st.y += ty
				if m[3] == "TD" && ty < 0 {
					st.leading = -ty
				}
			}
		}
		if m := tlRe.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
				st.leading = v
			}
		}
		if strings.Contains(line, "T*") {
			st.y -= st.leading
		}

		switch {
		case strings.HasSuffix(line, "Tj"), strings.HasSuffix(line, "TJ"):
			st.show(line)
		case strings.HasSuffix(line, "'"):
			st.y -= st.leading
			st.show(line)
		}
	}

	st.flush()
	return st.out
}

// show appends the string literals of a text-show operator to the current
// line, starting a new line when the vertical position moved.
func (st *streamState) show(op string) {
	if st.haveLine && absDiff(st.y, st.lineY) > 0.5 {
		st.flush()
	}
	for _, m := range pdfStringRe.FindAllStringSubmatch(op, -1) {
		text := decodePDFString([]byte(m[1]))
		if text == "" {
			continue
		}
		if !st.haveLine {
			st.haveLine = true
			st.lineY = st.y
			st.lineSize = st.effectiveSize()
		}
		st.lineBuf.WriteString(text)
	}
}

func (st *streamState) effectiveSize() float64 {
	size := st.size
	if size <= 0 {
		size = 12
	}
	return size * st.scale
}

func (st *streamState) flush() {
	if !st.haveLine {
		return
	}
	text := strings.TrimSpace(st.lineBuf.String())
	if text != "" {
		st.out = append(st.out, ingest.Line{
			Text: text,
			Size: st.lineSize,
			Page: st.page,
			Y:    st.lineY,
		})
	}
	st.lineBuf.Reset()
	st.haveLine = false
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

// decodePDFString handles basic PDF escape sequences.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\\' && i+1 < len(raw) {
			i++
			switch raw[i] {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			case '(':
				sb.WriteByte('(')
			case ')':
				sb.WriteByte(')')
			default:
				if raw[i] >= '0' && raw[i] <= '7' {
					val := int(raw[i] - '0')
					if i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7' {
						i++
						val = val*8 + int(raw[i]-'0')
						if i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7' {
							i++
							val = val*8 + int(raw[i]-'0')
						}
					}
					sb.WriteByte(byte(val))
				} else {
					sb.WriteByte(raw[i])
				}
			}
		} else {
			sb.WriteByte(raw[i])
		}
	}
	return sb.String()
}
