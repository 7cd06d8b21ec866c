package docpipe

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/hazyhaar/perfector/docmodel"
)

// PPDocVersion is the current .ppdoc envelope version.
const PPDocVersion = 1

// PPDoc is the native file envelope: the document model serialised
// verbatim, plus a version for forward compatibility.
type PPDoc struct {
	Version  int                `json:"version"`
	SavedAt  string             `json:"savedAt,omitempty"` // RFC 3339
	Document *docmodel.Document `json:"document"`
}

// ReadPPDoc loads a .ppdoc envelope.
func ReadPPDoc(path string) (*docmodel.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var env PPDoc
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode ppdoc: %w", err)
	}
	if env.Document == nil {
		return nil, fmt.Errorf("ppdoc: missing document")
	}
	if env.Version > PPDocVersion {
		return nil, fmt.Errorf("ppdoc: unsupported version %d", env.Version)
	}
	return env.Document, nil
}

// WritePPDoc saves a document as a .ppdoc envelope.
func WritePPDoc(path string, doc *docmodel.Document) error {
	env := PPDoc{
		Version:  PPDocVersion,
		SavedAt:  time.Now().UTC().Format(time.RFC3339),
		Document: doc,
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ppdoc: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
