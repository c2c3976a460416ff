package ingest

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestScanDir_SortedSupportedOnly(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"Zeta_2023.txt", "Acme_2024.pdf", "notes.csv", ".hidden.txt", "~$lock.docx"} {
		writeFile(t, filepath.Join(dir, name), "x")
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	want := []string{filepath.Join(dir, "Acme_2024.pdf"), filepath.Join(dir, "Zeta_2023.txt")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestScanDir_Missing(t *testing.T) {
	if _, err := ScanDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestWatch_RequiresRoots(t *testing.T) {
	if _, err := Watch(context.Background(), WatchConfig{}); err == nil {
		t.Fatal("expected error without roots")
	}
}

func TestWatch_InitialScanAndNewFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Existing_2022.txt"), "x")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := Watch(ctx, WatchConfig{Roots: []string{dir}, InitialScan: true, Debounce: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	next := func() string {
		t.Helper()
		select {
		case p := <-ch:
			return p
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for watch event")
			return ""
		}
	}

	if got := next(); got != filepath.Join(dir, "Existing_2022.txt") {
		t.Errorf("expected initial file, got %s", got)
	}

	writeFile(t, filepath.Join(dir, "ignored.csv"), "x")
	newPath := filepath.Join(dir, "New_2024.txt")
	writeFile(t, newPath, "first")
	writeFile(t, newPath, "second")

	if got := next(); got != newPath {
		t.Errorf("expected %s, got %s", newPath, got)
	}

	select {
	case p := <-ch:
		t.Errorf("expected a single debounced event, got extra %s", p)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	for range ch {
	}
}
