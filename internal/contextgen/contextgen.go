// Package contextgen builds a compact project-context string for the
// system prompt by ranking project files against the user's request
// with a BM25 keyword index held in memory.
package contextgen

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/stitchworks/stitch/internal/workspace"
)

// DefaultTopK is how many files a generated context includes.
const DefaultTopK = 5

// snippetMaxLines caps how much of each matched file is quoted.
const snippetMaxLines = 40

// Match is a single ranked file hit.
type Match struct {
	Path     string
	Language string
	Score    float64
}

// Index ranks project files against free-text queries.
type Index struct {
	index bleve.Index
	files map[string]workspace.FileRecord
}

// NewIndex builds an in-memory BM25 index over the snapshot.
func NewIndex(snapshot []workspace.FileRecord) (*Index, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create context index: %w", err)
	}

	files := make(map[string]workspace.FileRecord, len(snapshot))
	batch := index.NewBatch()
	for _, rec := range snapshot {
		files[rec.Path] = rec
		doc := map[string]interface{}{
			"path":     rec.Path,
			"language": rec.Language,
			"text":     rec.Content,
		}
		if err := batch.Index(rec.Path, doc); err != nil {
			return nil, fmt.Errorf("failed to add %s to batch: %w", rec.Path, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		return nil, fmt.Errorf("failed to index snapshot: %w", err)
	}

	return &Index{index: index, files: files}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	fileMapping := bleve.NewDocumentMapping()

	pathField := bleve.NewTextFieldMapping()
	pathField.Analyzer = keyword.Name
	pathField.Store = true
	pathField.Index = true
	fileMapping.AddFieldMappingsAt("path", pathField)

	langField := bleve.NewTextFieldMapping()
	langField.Analyzer = keyword.Name
	langField.Store = true
	langField.Index = true
	fileMapping.AddFieldMappingsAt("language", langField)

	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = standard.Name
	textField.Store = false
	textField.Index = true
	fileMapping.AddFieldMappingsAt("text", textField)

	indexMapping.DefaultMapping = fileMapping

	return indexMapping
}

// Search returns the top k files matching the query.
func (ix *Index) Search(query string, k int) ([]Match, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	q := bleve.NewMatchQuery(query)
	searchRequest := bleve.NewSearchRequest(q)
	searchRequest.Size = k
	searchRequest.Fields = []string{"path", "language"}

	searchResult, err := ix.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("context search failed: %w", err)
	}

	results := make([]Match, 0, len(searchResult.Hits))
	for _, hit := range searchResult.Hits {
		m := Match{Path: hit.ID, Score: hit.Score}
		if lang, ok := hit.Fields["language"].(string); ok {
			m.Language = lang
		}
		results = append(results, m)
	}

	return results, nil
}

// BuildContext searches for the request and formats the top hits as a
// project-context block, quoting the head of each matched file.
func (ix *Index) BuildContext(request string, k int) (string, error) {
	matches, err := ix.Search(request, k)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("Files most relevant to the request:\n")
	for _, m := range matches {
		rec, ok := ix.files[m.Path]
		if !ok {
			continue
		}
		sb.WriteString("\n--- ")
		sb.WriteString(m.Path)
		sb.WriteString(" ---\n")
		sb.WriteString(headLines(rec.Content, snippetMaxLines))
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// Close releases the index.
func (ix *Index) Close() error {
	return ix.index.Close()
}

func headLines(content string, n int) string {
	lines := strings.Split(content, "\n")
	if len(lines) <= n {
		return content
	}
	return strings.Join(lines[:n], "\n") + "\n..."
}
