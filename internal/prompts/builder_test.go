package prompts

import (
	"strings"
	"testing"
)

func TestBuilderVarsAndSections(t *testing.T) {
	register(Template{Name: "greeting", Text: "Hello {{name}}."})

	builder, err := NewBuilder("greeting")
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}

	builder.Var("name", "world").Section("Second paragraph.")
	got := builder.Render()

	if got != "Hello world.\n\nSecond paragraph." {
		t.Errorf("Render() = %q", got)
	}
}

func TestBuilderUnknownTemplate(t *testing.T) {
	if _, err := NewBuilder("nope"); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	got, err := BuildSystemPrompt([]string{"src/App.jsx", "package.json"}, "storefront demo")
	if err != nil {
		t.Fatalf("BuildSystemPrompt() error = %v", err)
	}

	for _, want := range []string{
		"read_files", "apply_changes",
		"src/App.jsx\npackage.json",
		"Project context:\nstorefront demo",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}

func TestBuildSystemPromptNoContext(t *testing.T) {
	got, err := BuildSystemPrompt([]string{"a.js"}, "")
	if err != nil {
		t.Fatalf("BuildSystemPrompt() error = %v", err)
	}
	if strings.Contains(got, "Project context:") {
		t.Error("empty context must not add a context section")
	}
}
