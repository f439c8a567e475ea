package analyzer

import (
	"path"
	"regexp"
	"strings"
)

// importPatterns match the import-like statements the scanner reacts to.
// (?s) lets named-import lists span lines; the specifier itself cannot.
var importPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?s)\bimport\s+[^'";]*?\bfrom\s+['"]([^'"]+)['"]`),
	regexp.MustCompile(`\bimport\s+['"]([^'"]+)['"]`),
	regexp.MustCompile(`(?s)\bexport\s+[^'";]*?\bfrom\s+['"]([^'"]+)['"]`),
	regexp.MustCompile(`\brequire\(\s*['"]([^'"]+)['"]\s*\)`),
	regexp.MustCompile(`\bimport\(\s*['"]([^'"]+)['"]\s*\)`),
}

// resolutionCandidates are tried in order when the normalized specifier
// itself is not in the universe: common extension variants first, then
// directory-index conventions.
var resolutionCandidates = []string{
	"",
	".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs", ".json",
	"/index.js", "/index.jsx", "/index.ts", "/index.tsx",
}

// assetExtensions are specifier suffixes the import checker skips:
// bundlers resolve these, not the module graph.
var assetExtensions = map[string]bool{
	".css": true, ".scss": true, ".sass": true, ".less": true,
	".svg": true, ".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".webp": true, ".ico": true, ".bmp": true, ".avif": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true, ".otf": true,
	".mp3": true, ".mp4": true, ".wav": true, ".webm": true,
}

// scanImports extracts import specifiers from script source with a
// best-effort line number found by locating the specifier in the text.
func scanImports(content string) []Import {
	var imports []Import
	seen := make(map[string]bool)

	for _, pattern := range importPatterns {
		for _, m := range pattern.FindAllStringSubmatchIndex(content, -1) {
			specStart, specEnd := m[2], m[3]
			spec := content[specStart:specEnd]
			key := spec + "@" + content[m[0]:m[1]]
			if seen[key] {
				continue
			}
			seen[key] = true
			imports = append(imports, Import{
				Specifier: spec,
				Line:      1 + strings.Count(content[:specStart], "\n"),
			})
		}
	}
	return imports
}

// isRelative reports whether the specifier is relative ("./x", "../x").
// Bare specifiers name packages and are not checked.
func isRelative(spec string) bool {
	return strings.HasPrefix(spec, ".")
}

func isAsset(spec string) bool {
	return assetExtensions[strings.ToLower(path.Ext(spec))]
}

// normalizeImportPath joins the importer's directory with the specifier
// and resolves "." and ".." segments via a component stack.
func normalizeImportPath(importerPath, spec string) string {
	var stack []string
	if dir := path.Dir(importerPath); dir != "." {
		stack = strings.Split(dir, "/")
	}
	for _, seg := range strings.Split(spec, "/") {
		switch seg {
		case "", ".":
			// no-op
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, seg)
		}
	}
	return strings.Join(stack, "/")
}

// resolveImport resolves a relative specifier against the universe,
// trying each resolution candidate in order. It returns the matched path
// and whether any candidate resolved.
func resolveImport(importerPath, spec string, universe map[string]bool) (string, bool) {
	base := normalizeImportPath(importerPath, spec)
	for _, cand := range resolutionCandidates {
		if universe[base+cand] {
			return base + cand, true
		}
	}
	return base, false
}

// resolveDeleted resolves a specifier where candidates may land either in
// the prospective universe (fine) or in the deletion set (a finding).
// Candidate order decides which wins.
func resolveDeleted(importerPath, spec string, universe, deleted map[string]bool) (string, bool) {
	base := normalizeImportPath(importerPath, spec)
	for _, cand := range resolutionCandidates {
		p := base + cand
		if universe[p] {
			return p, false
		}
		if deleted[p] {
			return p, true
		}
	}
	return base, false
}
