package docpipe

import (
	"os"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/hazyhaar/perfector/docmodel"
	"github.com/hazyhaar/perfector/ingest"
)

// importLegacyDoc makes a best-effort text recovery from a legacy binary
// .doc file: the byte stream is decoded both as UTF-8 and as UTF-16LE, the
// decode with the higher alphanumeric density wins, and the result goes
// through the plain-text importer. There is no confidence signal beyond the
// score; a low score means the output is probably garbled.
func (p *Pipeline) importLegacyDoc(path string, opt ingest.Options) (*docmodel.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	text, encoding, score := decodeLegacyText(data)
	p.logger.Debug("legacy doc decode", "path", path, "encoding", encoding, "score", score)

	return p.ing.FromPlainText(text, opt), nil
}

// decodeLegacyText scores UTF-8 against UTF-16LE and returns the winner,
// its encoding name, and the winning alphanumeric-density score in [0,1].
func decodeLegacyText(data []byte) (text, encoding string, score float64) {
	u8 := sanitizeDecoded(decodeAsUTF8(data))
	u16 := sanitizeDecoded(decodeAsUTF16LE(data))

	s8 := alnumDensity(u8)
	s16 := alnumDensity(u16)

	if s16 > s8 {
		return u16, "utf-16le", s16
	}
	return u8, "utf-8", s8
}

func decodeAsUTF8(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "")
}

func decodeAsUTF16LE(data []byte) string {
	if len(data) < 2 {
		return ""
	}
	units := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		units = append(units, uint16(data[i])|uint16(data[i+1])<<8)
	}
	return string(utf16.Decode(units))
}

// sanitizeDecoded keeps printable runes and common whitespace; binary
// container noise drops out.
func sanitizeDecoded(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// alnumDensity is the fraction of alphanumeric runes.
func alnumDensity(s string) float64 {
	total := 0
	alnum := 0
	for _, r := range s {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(alnum) / float64(total)
}
