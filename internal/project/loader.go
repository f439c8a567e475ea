// Package project loads a project directory from disk into the
// in-memory snapshot format the editing session works on.
package project

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/stitchworks/stitch/internal/workspace"
)

// DefaultIgnorePatterns are common directories and files to skip.
var DefaultIgnorePatterns = []string{
	".git",
	"node_modules",
	"dist",
	"build",
	"vendor",
	"__pycache__",
	"coverage",
	".next",
	".cache",
	"target",
	".idea",
	".vscode",
	".DS_Store",
}

// maxFileBytes is the largest file the loader will include in a snapshot.
const maxFileBytes = 1 << 20

var extLanguages = map[string]string{
	".js":   "javascript",
	".jsx":  "javascript",
	".mjs":  "javascript",
	".cjs":  "javascript",
	".ts":   "typescript",
	".tsx":  "typescript",
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
	".html": "html",
	".htm":  "html",
	".css":  "css",
	".scss": "css",
	".md":   "markdown",
	".svg":  "svg",
	".txt":  "text",
}

// detectLanguage maps a file path to a language tag, empty when unknown.
func detectLanguage(path string) string {
	return extLanguages[strings.ToLower(filepath.Ext(path))]
}

// Loader reads a project tree while honoring gitignore rules.
type Loader struct {
	root          string
	ignoreMatcher gitignore.IgnoreParser
}

// NewLoader creates a loader for the given project root. Ignore rules
// combine DefaultIgnorePatterns with every .gitignore found in the tree.
func NewLoader(root string) (*Loader, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot open project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", root)
	}

	patterns := make([]string, 0, len(DefaultIgnorePatterns)+10)
	patterns = append(patterns, DefaultIgnorePatterns...)
	patterns = append(patterns, loadGitignorePatterns(root)...)

	return &Loader{
		root:          root,
		ignoreMatcher: gitignore.CompileIgnoreLines(patterns...),
	}, nil
}

// loadGitignorePatterns loads patterns from all .gitignore files in the tree.
func loadGitignorePatterns(root string) []string {
	var patterns []string

	filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || d.Name() != ".gitignore" {
			return nil
		}
		if lines, err := readGitignoreLines(path); err == nil {
			patterns = append(patterns, lines...)
		}
		return nil
	})

	return patterns
}

func readGitignoreLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

// Load walks the project and returns its text files as snapshot records,
// sorted by path. Binary and oversized files are skipped.
func (l *Loader) Load() ([]workspace.FileRecord, error) {
	var records []workspace.FileRecord

	err := filepath.WalkDir(l.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(l.root, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		if l.ignoreMatcher.MatchesPath(relPath) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() || d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() > maxFileBytes {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if !utf8.Valid(content) {
			return nil
		}

		records = append(records, workspace.FileRecord{
			Path:     filepath.ToSlash(relPath),
			Content:  string(content),
			Language: detectLanguage(relPath),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })

	return records, nil
}
