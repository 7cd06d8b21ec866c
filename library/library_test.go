package library

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/hazyhaar/perfector/docmodel"
)

func testDoc(title, body string) *docmodel.Document {
	return &docmodel.Document{
		Title: title,
		Sections: []docmodel.Section{
			{ID: "section-1", Level: 1, Title: "Overview", Body: []string{body}},
		},
	}
}

func TestSaveAndGet(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	id, err := s.Save(ctx, "", testDoc("First Paper", "Body text."))
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("empty generated id")
	}

	doc, err := s.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "First Paper" {
		t.Errorf("title = %q", doc.Title)
	}
	if doc.Sections[0].Body[0] != "Body text." {
		t.Errorf("body = %#v", doc.Sections[0].Body)
	}

	if _, err := s.Get(ctx, "doc_missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) = %v, want ErrNotFound", err)
	}
}

func TestSaveUpdateSkipsUnchanged(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	id, err := s.Save(ctx, "", testDoc("Paper", "v1"))
	if err != nil {
		t.Fatal(err)
	}

	// Identical content: no new revision.
	if _, err := s.Save(ctx, id, testDoc("Paper", "v1")); err != nil {
		t.Fatal(err)
	}
	revs, err := s.Revisions(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(revs) != 1 {
		t.Errorf("revisions = %d, want 1 after no-op save", len(revs))
	}

	// Changed content: one more revision.
	if _, err := s.Save(ctx, id, testDoc("Paper", "v2")); err != nil {
		t.Fatal(err)
	}
	revs, err = s.Revisions(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(revs) != 2 {
		t.Errorf("revisions = %d, want 2", len(revs))
	}

	doc, err := s.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Sections[0].Body[0] != "v2" {
		t.Errorf("body = %#v, want updated content", doc.Sections[0].Body)
	}
}

func TestSaveUnknownID(t *testing.T) {
	s := OpenMemory(t)
	if _, err := s.Save(context.Background(), "doc_missing", testDoc("X", "y")); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRevisionCap(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	id, err := s.Save(ctx, "", testDoc("Paper", "v0"))
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= maxRevisions+5; i++ {
		if _, err := s.Save(ctx, id, testDoc("Paper", fmt.Sprintf("v%d", i))); err != nil {
			t.Fatal(err)
		}
	}

	revs, err := s.Revisions(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(revs) > maxRevisions {
		t.Errorf("revisions = %d, want at most %d", len(revs), maxRevisions)
	}

	// Newest revision matches the latest save.
	doc, err := s.GetRevision(ctx, revs[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.Sections[0].Body[0]; got != fmt.Sprintf("v%d", maxRevisions+5) {
		t.Errorf("newest revision body = %q", got)
	}
}

func TestListOrder(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	idA, _ := s.Save(ctx, "", testDoc("Alpha", "a"))
	idB, _ := s.Save(ctx, "", testDoc("Beta", "b"))

	// Touch Alpha so it sorts first.
	if _, err := s.Save(ctx, idA, testDoc("Alpha", "a2")); err != nil {
		t.Fatal(err)
	}

	entries, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %#v", entries)
	}
	titles := map[string]bool{entries[0].Title: true, entries[1].Title: true}
	if !titles["Alpha"] || !titles["Beta"] {
		t.Errorf("entries = %#v", entries)
	}
	if entries[0].UpdatedAt < entries[1].UpdatedAt {
		t.Errorf("not sorted by recency: %#v", entries)
	}
	_, _ = idA, idB
}

func TestDelete(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	id, err := s.Save(ctx, "", testDoc("Doomed", "x"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	// Revisions are cascade deleted.
	revs, err := s.Revisions(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(revs) != 0 {
		t.Errorf("revisions after delete = %d", len(revs))
	}

	if err := s.Delete(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestSearch(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	if _, err := s.Save(ctx, "", testDoc("Quantum Computing Survey", "Qubits and decoherence explained.")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save(ctx, "", testDoc("Gardening Notes", "Tomatoes need sun.")); err != nil {
		t.Fatal(err)
	}

	t.Run("title match", func(t *testing.T) {
		entries, err := s.Search(ctx, "quantum")
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 || entries[0].Title != "Quantum Computing Survey" {
			t.Errorf("entries = %#v", entries)
		}
	})

	t.Run("body match", func(t *testing.T) {
		entries, err := s.Search(ctx, "tomatoes")
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 || entries[0].Title != "Gardening Notes" {
			t.Errorf("entries = %#v", entries)
		}
	})

	t.Run("no match", func(t *testing.T) {
		entries, err := s.Search(ctx, "nonexistent")
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 0 {
			t.Errorf("entries = %#v", entries)
		}
	})

	t.Run("operators stay literal", func(t *testing.T) {
		if _, err := s.Search(ctx, `quantum AND "weird NEAR syntax`); err != nil {
			t.Errorf("quoted query failed: %v", err)
		}
	})
}

func TestOpenOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "library.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	id, err := s.Save(context.Background(), "", testDoc("Persisted", "on disk"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(context.Background(), id); err != nil {
		t.Fatal(err)
	}
}

func TestWithIDGenerator(t *testing.T) {
	n := 0
	s := OpenMemory(t, WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("fixed-%d", n)
	}))

	id, err := s.Save(context.Background(), "", testDoc("X", "y"))
	if err != nil {
		t.Fatal(err)
	}
	if id != "fixed-1" {
		t.Errorf("id = %q, want fixed-1", id)
	}
}
