package library

// Schema is the complete library schema, including the FTS5 index and its
// sync triggers.
const Schema = `
-- Saved papers (document model serialised as JSON verbatim)
CREATE TABLE IF NOT EXISTS documents (
    id           TEXT PRIMARY KEY,
    title        TEXT NOT NULL,
    body_json    TEXT NOT NULL,
    search_text  TEXT NOT NULL DEFAULT '',
    content_hash TEXT NOT NULL DEFAULT '',
    created_at   INTEGER NOT NULL,
    updated_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_updated ON documents(updated_at DESC);

-- Autosave revisions, capped per document by the store
CREATE TABLE IF NOT EXISTS revisions (
    id           TEXT PRIMARY KEY,
    doc_id       TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    body_json    TEXT NOT NULL,
    content_hash TEXT NOT NULL,
    saved_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_revisions_doc ON revisions(doc_id, saved_at DESC);

-- FTS5 over title + extracted text
CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
    title, search_text, content='documents', content_rowid='rowid',
    tokenize='unicode61 remove_diacritics 2'
);

CREATE TRIGGER IF NOT EXISTS documents_ai AFTER INSERT ON documents BEGIN
    INSERT INTO documents_fts(rowid, title, search_text) VALUES (new.rowid, new.title, new.search_text);
END;
CREATE TRIGGER IF NOT EXISTS documents_ad AFTER DELETE ON documents BEGIN
    INSERT INTO documents_fts(documents_fts, rowid, title, search_text) VALUES('delete', old.rowid, old.title, old.search_text);
END;
CREATE TRIGGER IF NOT EXISTS documents_au AFTER UPDATE ON documents BEGIN
    INSERT INTO documents_fts(documents_fts, rowid, title, search_text) VALUES('delete', old.rowid, old.title, old.search_text);
    INSERT INTO documents_fts(rowid, title, search_text) VALUES (new.rowid, new.title, new.search_text);
END;
`
