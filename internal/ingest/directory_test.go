package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "invoice_001.pdf")
	touch(t, dir, "budget.xlsx")
	touch(t, dir, "sub/contract_007.json")
	touch(t, dir, "sub/data.csv")
	touch(t, dir, "notes.txt")
	touch(t, dir, ".DS_Store")
	touch(t, dir, ".cache/stale.json")

	paths, stats, err := DiscoverFiles(dir, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 4 {
		t.Fatalf("matched %d paths, want 4: %v", len(paths), paths)
	}
	for _, p := range paths {
		if filepath.Base(p) == "notes.txt" || filepath.Base(p) == "stale.json" {
			t.Errorf("unexpected match: %s", p)
		}
	}
	if stats.Matched != 4 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestDiscoverFilesExplicitExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "invoice.pdf")
	touch(t, dir, "data.json")

	paths, _, err := DiscoverFiles(dir, []string{".pdf"}, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "invoice.pdf" {
		t.Errorf("paths = %v", paths)
	}
}

func TestDiscoverFilesEmptyRoot(t *testing.T) {
	if _, _, err := DiscoverFiles("  ", nil, true); err == nil {
		t.Error("blank root should fail")
	}
}

func TestAllowedExt(t *testing.T) {
	tests := []struct {
		ext  string
		want bool
	}{
		{".pdf", true},
		{"PDF", true},
		{".xlsx", true},
		{"json", true},
		{".txt", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := AllowedExt(tt.ext); got != tt.want {
			t.Errorf("AllowedExt(%q) = %v, want %v", tt.ext, got, tt.want)
		}
	}
}

func TestIsHidden(t *testing.T) {
	if !IsHidden("/in/.DS_Store") || !IsHidden(".git") {
		t.Error("dot-prefixed names are hidden")
	}
	if IsHidden("/in/invoice.pdf") {
		t.Error("plain names are not hidden")
	}
}
