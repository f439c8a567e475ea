package analyzer

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseError is a parse failure reported by an adapter. Line/Column are
// 1-indexed, zero when the format has no useful location.
type ParseError struct {
	Line    int
	Column  int
	Message string
	Kind    IssueKind
}

// Import is one import-like statement found in a file.
type Import struct {
	Specifier string
	Line      int // best-effort, 1-indexed
}

// Adapter is the pluggable language capability: parse plus import
// extraction. Adding a source kind means registering another adapter;
// the validator's control flow does not change.
type Adapter interface {
	Parse(content string) *ParseError
	Imports(content string) []Import
}

// adapterFor picks an adapter from the language tag, falling back to the
// file extension. A nil adapter means the file gets no static checks
// (styles, markup, assets, unknown kinds).
func adapterFor(filePath, language string) Adapter {
	switch strings.ToLower(language) {
	case "json":
		return jsonAdapter{}
	case "yaml", "yml":
		return yamlAdapter{}
	case "javascript", "js", "jsx", "typescript", "ts", "tsx":
		return scriptAdapter{}
	}

	switch strings.ToLower(path.Ext(filePath)) {
	case ".json":
		return jsonAdapter{}
	case ".yaml", ".yml":
		return yamlAdapter{}
	case ".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs":
		return scriptAdapter{}
	}
	return nil
}

// jsonAdapter validates structured JSON documents. No import semantics.
type jsonAdapter struct{}

func (jsonAdapter) Parse(content string) *ParseError {
	var v any
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return &ParseError{
			Message: fmt.Sprintf("invalid JSON: %v", err),
			Kind:    KindStructuredData,
		}
	}
	return nil
}

func (jsonAdapter) Imports(string) []Import { return nil }

// yamlAdapter validates structured YAML documents. No import semantics.
type yamlAdapter struct{}

func (yamlAdapter) Parse(content string) *ParseError {
	var v any
	if err := yaml.Unmarshal([]byte(content), &v); err != nil {
		return &ParseError{
			Message: fmt.Sprintf("invalid YAML: %v", err),
			Kind:    KindStructuredData,
		}
	}
	return nil
}

func (yamlAdapter) Imports(string) []Import { return nil }

// scriptAdapter handles JavaScript/TypeScript source, including inline
// JSX, under the permissive grammar in script.go.
type scriptAdapter struct{}

func (scriptAdapter) Parse(content string) *ParseError {
	return parseScript(content)
}

func (scriptAdapter) Imports(content string) []Import {
	return scanImports(content)
}
