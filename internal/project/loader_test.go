package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoaderLoadsProjectTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/App.jsx", "export default App")
	writeFile(t, root, "package.json", `{"name":"demo"}`)
	writeFile(t, root, "styles/app.css", "body {}")

	loader, err := NewLoader(root)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}
	records, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("got %d records, want 3: %+v", len(records), records)
	}
	// Sorted by path, separators normalized
	if records[0].Path != "package.json" || records[1].Path != "src/App.jsx" {
		t.Errorf("unexpected order: %q, %q", records[0].Path, records[1].Path)
	}
	if records[1].Language != "javascript" {
		t.Errorf("Language = %q, want javascript", records[1].Language)
	}
	if records[0].Language != "json" {
		t.Errorf("Language = %q, want json", records[0].Language)
	}
}

func TestLoaderHonorsGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "secret.env\nlogs/\n")
	writeFile(t, root, "src/app.js", "ok")
	writeFile(t, root, "secret.env", "KEY=1")
	writeFile(t, root, "logs/debug.txt", "noise")
	writeFile(t, root, "node_modules/pkg/index.js", "dep")

	loader, err := NewLoader(root)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}
	records, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for _, r := range records {
		switch r.Path {
		case "secret.env", "logs/debug.txt", "node_modules/pkg/index.js":
			t.Errorf("ignored path %q was loaded", r.Path)
		}
	}

	found := false
	for _, r := range records {
		if r.Path == "src/app.js" {
			found = true
		}
	}
	if !found {
		t.Error("src/app.js missing from snapshot")
	}
}

func TestLoaderSkipsBinaryFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.js", "ok")
	if err := os.WriteFile(filepath.Join(root, "image.txt"), []byte{0xff, 0xfe, 0x00, 0x80}, 0644); err != nil {
		t.Fatal(err)
	}

	loader, err := NewLoader(root)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}
	records, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(records) != 1 || records[0].Path != "app.js" {
		t.Errorf("records = %+v, want only app.js", records)
	}
}

func TestLoaderRejectsMissingRoot(t *testing.T) {
	if _, err := NewLoader(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"src/App.jsx", "javascript"},
		{"src/util.TS", "typescript"},
		{"config.yml", "yaml"},
		{"README.md", "markdown"},
		{"Makefile", ""},
	}
	for _, tt := range tests {
		if got := detectLanguage(tt.path); got != tt.want {
			t.Errorf("detectLanguage(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
