// Package analyzer is the static validator run after every apply_changes.
// It checks syntax of changed files and relative-import resolution against
// the prospective post-change file universe. It is advisory: findings are
// fed back to the model as repair context, they never block an edit.
package analyzer

import (
	"fmt"

	"github.com/stitchworks/stitch/internal/workspace"
)

// Action is the kind of change applied to one file.
type Action string

const (
	ActionCreate Action = "create"
	ActionModify Action = "modify"
	ActionDelete Action = "delete"
)

// ChangeSpec is one file's delta within a single apply_changes call.
type ChangeSpec struct {
	Path     string `json:"path"`
	Action   Action `json:"action"`
	Content  string `json:"content,omitempty"`
	Language string `json:"language,omitempty"`
}

// IssueKind classifies a validation finding.
type IssueKind string

const (
	KindSyntax         IssueKind = "syntax"
	KindStructuredData IssueKind = "structured-data"
	KindImport         IssueKind = "import"
	KindDeletedImport  IssueKind = "deleted-import"
)

// Issue is one validation finding. Line and Column are 1-indexed and zero
// when no location is known.
type Issue struct {
	File    string    `json:"file"`
	Line    int       `json:"line,omitempty"`
	Column  int       `json:"column,omitempty"`
	Message string    `json:"message"`
	Kind    IssueKind `json:"kind"`
}

// Result is the outcome of one validation pass.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"errors"`
}

// Validate checks the changed files against the prospective file universe:
// the file set that would exist after the change list is applied. allFiles
// is the working set as it stands; changed is this call's delta.
func Validate(changed []ChangeSpec, allFiles []workspace.FileRecord) Result {
	universe := make(map[string]bool, len(allFiles))
	for _, f := range allFiles {
		universe[f.Path] = true
	}

	deleted := make(map[string]bool)
	inChange := make(map[string]bool, len(changed))
	for _, c := range changed {
		inChange[c.Path] = true
		if c.Action == ActionDelete {
			delete(universe, c.Path)
			deleted[c.Path] = true
		} else {
			universe[c.Path] = true
			delete(deleted, c.Path)
		}
	}

	var issues []Issue

	for _, c := range changed {
		if c.Action == ActionDelete {
			continue
		}
		issues = append(issues, validateFile(c, universe)...)
	}

	if len(deleted) > 0 {
		issues = append(issues, deletionIssues(allFiles, inChange, deleted, universe)...)
	}

	return Result{Valid: len(issues) == 0, Issues: issues}
}

// validateFile parses one changed file and resolves its relative imports.
func validateFile(c ChangeSpec, universe map[string]bool) []Issue {
	ad := adapterFor(c.Path, c.Language)
	if ad == nil {
		return nil
	}

	if perr := ad.Parse(c.Content); perr != nil {
		return []Issue{{
			File:    c.Path,
			Line:    perr.Line,
			Column:  perr.Column,
			Message: perr.Message,
			Kind:    perr.Kind,
		}}
	}

	var issues []Issue
	for _, imp := range ad.Imports(c.Content) {
		if !isRelative(imp.Specifier) || isAsset(imp.Specifier) {
			continue
		}
		if _, ok := resolveImport(c.Path, imp.Specifier, universe); !ok {
			issues = append(issues, Issue{
				File:    c.Path,
				Line:    imp.Line,
				Message: fmt.Sprintf("cannot resolve import %q", imp.Specifier),
				Kind:    KindImport,
			})
		}
	}
	return issues
}

// deletionIssues scans every file not itself in the change list for
// relative imports that resolve to a path scheduled for deletion. Changed
// files are excluded: their imports were already checked against the
// prospective universe above.
func deletionIssues(allFiles []workspace.FileRecord, inChange, deleted, universe map[string]bool) []Issue {
	var issues []Issue
	for _, f := range allFiles {
		if inChange[f.Path] || deleted[f.Path] {
			continue
		}
		ad := adapterFor(f.Path, f.Language)
		if ad == nil {
			continue
		}
		for _, imp := range ad.Imports(f.Content) {
			if !isRelative(imp.Specifier) || isAsset(imp.Specifier) {
				continue
			}
			target, hit := resolveDeleted(f.Path, imp.Specifier, universe, deleted)
			if hit {
				issues = append(issues, Issue{
					File:    f.Path,
					Line:    imp.Line,
					Message: fmt.Sprintf("imports %q, which is being deleted", target),
					Kind:    KindDeletedImport,
				})
			}
		}
	}
	return issues
}
