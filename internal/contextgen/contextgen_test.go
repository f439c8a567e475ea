package contextgen

import (
	"strings"
	"testing"

	"github.com/stitchworks/stitch/internal/workspace"
)

func testSnapshot() []workspace.FileRecord {
	return []workspace.FileRecord{
		{Path: "src/Cart.jsx", Language: "javascript",
			Content: "export function Cart({ items }) {\n  return <div>shopping cart total</div>;\n}\n"},
		{Path: "src/Login.jsx", Language: "javascript",
			Content: "export function Login() {\n  return <form>username password</form>;\n}\n"},
		{Path: "README.md", Language: "markdown",
			Content: "# Demo storefront\n"},
	}
}

func TestIndexSearchRanksRelevantFiles(t *testing.T) {
	ix, err := NewIndex(testSnapshot())
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}
	defer ix.Close()

	matches, err := ix.Search("shopping cart total", 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("no matches")
	}
	if matches[0].Path != "src/Cart.jsx" {
		t.Errorf("top match = %q, want src/Cart.jsx", matches[0].Path)
	}
}

func TestBuildContextQuotesMatchedFiles(t *testing.T) {
	ix, err := NewIndex(testSnapshot())
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}
	defer ix.Close()

	ctx, err := ix.BuildContext("fix the login form", DefaultTopK)
	if err != nil {
		t.Fatalf("BuildContext() error = %v", err)
	}
	if !strings.Contains(ctx, "src/Login.jsx") {
		t.Errorf("context does not mention the login file:\n%s", ctx)
	}
	if !strings.Contains(ctx, "username password") {
		t.Errorf("context does not quote file content:\n%s", ctx)
	}
}

func TestBuildContextNoMatches(t *testing.T) {
	ix, err := NewIndex(nil)
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}
	defer ix.Close()

	ctx, err := ix.BuildContext("anything", DefaultTopK)
	if err != nil {
		t.Fatalf("BuildContext() error = %v", err)
	}
	if ctx != "" {
		t.Errorf("context = %q, want empty for no matches", ctx)
	}
}

func TestHeadLines(t *testing.T) {
	content := "a\nb\nc\nd"
	if got := headLines(content, 10); got != content {
		t.Errorf("short content must pass through, got %q", got)
	}
	if got := headLines(content, 2); got != "a\nb\n..." {
		t.Errorf("headLines() = %q", got)
	}
}
