package library

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hazyhaar/perfector/docmodel"
)

// maxRevisions is the autosave history kept per document.
const maxRevisions = 20

// Entry is one library listing row.
type Entry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// Revision is one autosave snapshot reference.
type Revision struct {
	ID          string `json:"id"`
	ContentHash string `json:"content_hash"`
	SavedAt     int64  `json:"saved_at"`
}

// Save inserts or updates a document. An empty id creates a new entry and
// returns the generated id. Unchanged content is not re-saved and produces
// no new revision.
func (s *Store) Save(ctx context.Context, id string, doc *docmodel.Document) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("library: encode: %w", err)
	}
	hash := contentHash(body)
	now := time.Now().UnixMilli()

	if id == "" {
		id = s.newID()
		_, err := s.DB.ExecContext(ctx,
			`INSERT INTO documents (id, title, body_json, search_text, content_hash, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, doc.Title, string(body), searchText(doc), hash, now, now)
		if err != nil {
			return "", fmt.Errorf("library: insert: %w", err)
		}
		return id, s.addRevision(ctx, id, string(body), hash, now)
	}

	var prevHash string
	err = s.DB.QueryRowContext(ctx,
		`SELECT content_hash FROM documents WHERE id = ?`, id).Scan(&prevHash)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("library: lookup: %w", err)
	}
	if prevHash == hash {
		return id, nil
	}

	_, err = s.DB.ExecContext(ctx,
		`UPDATE documents SET title = ?, body_json = ?, search_text = ?, content_hash = ?, updated_at = ?
		 WHERE id = ?`,
		doc.Title, string(body), searchText(doc), hash, now, id)
	if err != nil {
		return "", fmt.Errorf("library: update: %w", err)
	}
	return id, s.addRevision(ctx, id, string(body), hash, now)
}

func (s *Store) addRevision(ctx context.Context, docID, body, hash string, now int64) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO revisions (id, doc_id, body_json, content_hash, saved_at)
		 VALUES (?, ?, ?, ?, ?)`,
		s.newID(), docID, body, hash, now)
	if err != nil {
		return fmt.Errorf("library: revision: %w", err)
	}
	// Trim history beyond the cap. rowid breaks saved_at ties between
	// autosaves landing in the same millisecond.
	_, err = s.DB.ExecContext(ctx,
		`DELETE FROM revisions WHERE doc_id = ? AND id NOT IN (
		     SELECT id FROM revisions WHERE doc_id = ? ORDER BY saved_at DESC, rowid DESC LIMIT ?
		 )`, docID, docID, maxRevisions)
	if err != nil {
		return fmt.Errorf("library: trim revisions: %w", err)
	}
	return nil
}

// Get loads a document by ID.
func (s *Store) Get(ctx context.Context, id string) (*docmodel.Document, error) {
	var body string
	err := s.DB.QueryRowContext(ctx,
		`SELECT body_json FROM documents WHERE id = ?`, id).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("library: get: %w", err)
	}
	var doc docmodel.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("library: decode: %w", err)
	}
	return &doc, nil
}

// List returns all documents, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, title, created_at, updated_at FROM documents ORDER BY updated_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("library: list: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Title, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes a document and its revisions.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("library: delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Search runs a full-text query over titles and body text.
func (s *Store) Search(ctx context.Context, query string) ([]Entry, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT d.id, d.title, d.created_at, d.updated_at
		 FROM documents_fts f
		 JOIN documents d ON d.rowid = f.rowid
		 WHERE documents_fts MATCH ?
		 ORDER BY rank`, ftsQuery(query))
	if err != nil {
		return nil, fmt.Errorf("library: search: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Title, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Revisions lists the autosave history of a document, newest first.
func (s *Store) Revisions(ctx context.Context, docID string) ([]Revision, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, content_hash, saved_at FROM revisions WHERE doc_id = ? ORDER BY saved_at DESC, rowid DESC`, docID)
	if err != nil {
		return nil, fmt.Errorf("library: revisions: %w", err)
	}
	defer rows.Close()

	var revs []Revision
	for rows.Next() {
		var r Revision
		if err := rows.Scan(&r.ID, &r.ContentHash, &r.SavedAt); err != nil {
			return nil, err
		}
		revs = append(revs, r)
	}
	return revs, rows.Err()
}

// GetRevision loads one autosave snapshot.
func (s *Store) GetRevision(ctx context.Context, revID string) (*docmodel.Document, error) {
	var body string
	err := s.DB.QueryRowContext(ctx,
		`SELECT body_json FROM revisions WHERE id = ?`, revID).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("library: get revision: %w", err)
	}
	var doc docmodel.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("library: decode revision: %w", err)
	}
	return &doc, nil
}

func contentHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// searchText flattens a document for the FTS index.
func searchText(doc *docmodel.Document) string {
	var sb strings.Builder
	sb.WriteString(doc.Subtitle)
	for _, sec := range doc.Sections {
		sb.WriteByte('\n')
		sb.WriteString(sec.Title)
		for _, p := range sec.Body {
			sb.WriteByte('\n')
			sb.WriteString(p)
		}
	}
	return sb.String()
}

// ftsQuery quotes the user query so FTS5 operators in it stay literal.
func ftsQuery(q string) string {
	parts := strings.Fields(q)
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, " ")
}
