package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestLocal_PutGetExists(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	if ok, err := s.Exists(ctx, "llm/ACME_2024.json"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := s.Put(ctx, "llm/ACME_2024.json", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if ok, err := s.Exists(ctx, "llm/ACME_2024.json"); err != nil || !ok {
		t.Fatalf("expected key to exist, got ok=%v err=%v", ok, err)
	}
	data, err := s.Get(ctx, "llm/ACME_2024.json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Errorf("unexpected data %q", data)
	}

	if err := s.Put(ctx, "llm/ACME_2024.json", []byte("v2")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, _ = s.Get(ctx, "llm/ACME_2024.json")
	if string(data) != "v2" {
		t.Errorf("expected overwrite, got %q", data)
	}
}

func TestLocal_GetMissing(t *testing.T) {
	s, _ := NewLocal(t.TempDir())
	_, err := s.Get(context.Background(), "nope.json")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLocal_ListSortedByPrefix(t *testing.T) {
	ctx := context.Background()
	s, _ := NewLocal(t.TempDir())
	for _, k := range []string{"sentiment/B_2023.csv", "sentiment/A_2023.csv", "llm/A_2023.json"} {
		if err := s.Put(ctx, k, []byte("x")); err != nil {
			t.Fatalf("Put %s: %v", k, err)
		}
	}

	keys, err := s.List(ctx, "sentiment/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"sentiment/A_2023.csv", "sentiment/B_2023.csv"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("expected %v, got %v", want, keys)
	}
}

func TestLocal_RejectsEscapingKeys(t *testing.T) {
	s, _ := NewLocal(t.TempDir())
	for _, k := range []string{"../outside.txt", "/etc/passwd", ""} {
		if err := s.Put(context.Background(), k, []byte("x")); err == nil {
			t.Errorf("expected error for key %q", k)
		}
	}
}

func TestNew_UnknownType(t *testing.T) {
	if _, err := New(context.Background(), Config{Type: "ftp"}); err == nil {
		t.Fatal("expected error for unknown storage type")
	}
}

func TestNewS3_RequiresBucket(t *testing.T) {
	if _, err := NewS3(context.Background(), Config{Type: TypeS3}); err == nil {
		t.Fatal("expected error without bucket")
	}
}

func TestContentType(t *testing.T) {
	if contentType("llm/x.json") != "application/json" || contentType("a.xlsx") == "application/octet-stream" {
		t.Error("unexpected content types")
	}
}
