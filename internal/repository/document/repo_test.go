package document

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/kailas-cloud/hybridex/internal/db"
	"github.com/kailas-cloud/hybridex/internal/domain"
	domdoc "github.com/kailas-cloud/hybridex/internal/domain/document"
	"github.com/kailas-cloud/hybridex/internal/domain/namespace"
)

// --- Insert ---

func TestInsert_HashFields(t *testing.T) {
	repo, ms := newTestRepo(t)
	doc := testDocument(t, "english")

	var gotKey string
	var got map[string]string
	ms.hsetFn = func(_ context.Context, key string, fields map[string]string) error {
		gotKey, got = key, fields
		return nil
	}

	if err := repo.Insert(context.Background(), &doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "hybridex:doc:notes:doc-1" {
		t.Errorf("unexpected key: %s", gotKey)
	}
	if got["__content"] != "hello world" || got["__lang"] != "english" {
		t.Errorf("unexpected fields: %v", got)
	}
	if got["created_at"] != "100" || got["updated_at"] != "200" {
		t.Errorf("unexpected timestamps: %v", got)
	}
	if len(got["__vector"]) != 8*4 {
		t.Errorf("vector blob length = %d", len(got["__vector"]))
	}
}

func TestInsert_CustomKeys(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms).WithKeys(domain.NewKeys("tenant:"))
	doc := testDocument(t, "english")

	var gotKey string
	ms.hsetFn = func(_ context.Context, key string, _ map[string]string) error {
		gotKey = key
		return nil
	}
	if err := repo.Insert(context.Background(), &doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "tenant:doc:notes:doc-1" {
		t.Errorf("unexpected key: %s", gotKey)
	}

	ms.scanFn = func(_ context.Context, pattern string) ([]string, error) {
		if pattern != "tenant:doc:*:doc-1" {
			t.Errorf("unexpected pattern %q", pattern)
		}
		return []string{"tenant:doc:notes:doc-1"}, nil
	}
	if _, err := repo.DeleteAnywhere(context.Background(), "doc-1"); err != nil {
		t.Fatalf("DeleteAnywhere: %v", err)
	}
}

func TestInsert_NeutralLanguageOmitted(t *testing.T) {
	repo, ms := newTestRepo(t)
	doc := testDocument(t, namespace.Neutral)

	ms.hsetFn = func(_ context.Context, _ string, fields map[string]string) error {
		if _, ok := fields["__lang"]; ok {
			t.Error("neutral documents must not carry __lang")
		}
		return nil
	}

	if err := repo.Insert(context.Background(), &doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInsert_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	doc := testDocument(t, "")
	ms.hsetFn = func(context.Context, string, map[string]string) error {
		return &db.Error{Op: db.OpHSet, Err: errors.New("oom")}
	}
	if err := repo.Insert(context.Background(), &doc); err == nil {
		t.Fatal("expected error")
	}
}

func TestInsertMulti(t *testing.T) {
	repo, ms := newTestRepo(t)
	docs := []domdoc.Document{
		domdoc.Reconstruct("a", "ns1", "first", "", testVector(2), 1, 1),
		domdoc.Reconstruct("b", "ns1", "second", "", testVector(2), 1, 1),
	}

	ms.hsetMultiFn = func(_ context.Context, items []db.HashSetItem) error {
		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}
		if items[1].Key != "hybridex:doc:ns1:b" {
			t.Errorf("unexpected key %s", items[1].Key)
		}
		return nil
	}

	if err := repo.InsertMulti(context.Background(), docs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.InsertMulti(context.Background(), nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
}

// --- Get ---

func TestGet_RoundTrip(t *testing.T) {
	repo, ms := newTestRepo(t)
	doc := testDocument(t, "english")
	fields := buildHashFields(&doc)

	ms.hgetAllFn = func(_ context.Context, key string) (map[string]string, error) {
		if key != "hybridex:doc:notes:doc-1" {
			t.Errorf("unexpected key: %s", key)
		}
		return fields, nil
	}

	got, err := repo.Get(context.Background(), "notes", "doc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Content() != "hello world" || got.Language() != "english" || got.Namespace() != "notes" {
		t.Errorf("unexpected document: %+v", got)
	}
	if !slices.Equal(got.Vector(), doc.Vector()) {
		t.Errorf("vector mismatch")
	}
	if got.CreatedAt() != 100 || got.UpdatedAt() != 200 {
		t.Errorf("timestamps = %d, %d", got.CreatedAt(), got.UpdatedAt())
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)
	_, err := repo.Get(context.Background(), "notes", "missing")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
}

// --- Delete ---

func TestDelete(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.existsFn = func(context.Context, string) (bool, error) { return true, nil }

	var deleted string
	ms.delFn = func(_ context.Context, key string) error {
		deleted = key
		return nil
	}

	if err := repo.Delete(context.Background(), "notes", "doc-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != "hybridex:doc:notes:doc-1" {
		t.Errorf("deleted %q", deleted)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.delFn = func(context.Context, string) error {
		t.Error("Del must not be called for a missing document")
		return nil
	}
	err := repo.Delete(context.Background(), "notes", "doc-1")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestDeleteAnywhere(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.scanFn = func(_ context.Context, pattern string) ([]string, error) {
		if pattern != "hybridex:doc:*:doc-1" {
			t.Errorf("unexpected pattern %q", pattern)
		}
		return []string{"hybridex:doc:a:doc-1", "hybridex:doc:b:doc-1"}, nil
	}

	n, err := repo.DeleteAnywhere(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}
}

func TestDeleteAnywhere_NotFound(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.delMultiFn = func(context.Context, []string) (int, error) {
		t.Error("DelMulti must not be called when nothing matched")
		return 0, nil
	}
	_, err := repo.DeleteAnywhere(context.Background(), "doc-1")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
}

// --- Count ---

func TestCount(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.scanFn = func(_ context.Context, pattern string) ([]string, error) {
		if pattern != "hybridex:doc:notes:*" {
			t.Errorf("unexpected pattern %q", pattern)
		}
		return []string{"x", "y", "z"}, nil
	}

	n, err := repo.Count(context.Background(), "notes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("Count = %d, want 3", n)
	}
}

func TestParseHashFields_CorruptVector(t *testing.T) {
	doc := parseHashFields("notes", "doc-1", map[string]string{"__content": "x", "__vector": "abcde"})
	if v := doc.Vector(); v != nil {
		t.Errorf("expected nil vector, got %v", v)
	}
	if doc.Content() != "x" {
		t.Errorf("content = %q", doc.Content())
	}
}
