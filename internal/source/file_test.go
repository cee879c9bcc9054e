package source

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestReadFileLines(t *testing.T) {
	path := writeFile(t, "ranking.txt", "doc-3\ndoc-1\n\n  doc-7  \n")

	items, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	want := []any{"doc-3", "doc-1", "doc-7"}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d", len(items), len(want))
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("item %d = %v, want %v", i, items[i], want[i])
		}
	}
}

func TestReadFileJSON(t *testing.T) {
	path := writeFile(t, "ranking.json", `["a", 2, "c"]`)

	items, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	if items[0] != "a" || items[2] != "c" {
		t.Errorf("unexpected items: %v", items)
	}
	// JSON numbers decode as float64.
	if items[1] != float64(2) {
		t.Errorf("item 1 = %v (%T), want 2", items[1], items[1])
	}
}

func TestReadFileJSONInvalid(t *testing.T) {
	path := writeFile(t, "ranking.json", `{"not": "an array"}`)

	if _, err := ReadFile(path); err == nil {
		t.Fatal("expected error for non-array JSON")
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReadFileEmpty(t *testing.T) {
	path := writeFile(t, "empty.txt", "\n\n")

	items, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("got %d items, want 0", len(items))
	}
}
