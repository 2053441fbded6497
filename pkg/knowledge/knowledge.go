// Package knowledge provides the optional retrieval-augmentation hook the
// engine invokes while assembling agent task context. The hook enriches,
// never steers: its absence (or failure) changes nothing but the enrichment.
package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Retriever returns reference snippets relevant to a topic.
type Retriever interface {
	Retrieve(ctx context.Context, topic string, limit int) ([]string, error)
}

// DirRetriever serves snippets from text and markdown files under a
// directory. Matching is a case-insensitive keyword scan, not semantic
// search; it exists to ground agents in local notes without an external
// vector store.
type DirRetriever struct {
	dir string
}

// NewDirRetriever creates a retriever rooted at dir.
func NewDirRetriever(dir string) *DirRetriever {
	return &DirRetriever{dir: dir}
}

// Retrieve scans the directory for files whose content mentions any topic
// keyword and returns up to limit matching snippets. A missing directory
// yields no snippets and no error.
func (r *DirRetriever) Retrieve(ctx context.Context, topic string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 3
	}
	keywords := topicKeywords(topic)
	if len(keywords) == 0 {
		return nil, nil
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".txt", ".md":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var snippets []string
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return snippets, err
		}
		if len(snippets) >= limit {
			break
		}
		data, err := os.ReadFile(filepath.Join(r.dir, name))
		if err != nil {
			continue
		}
		content := string(data)
		lower := strings.ToLower(content)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				snippets = append(snippets, snippet(name, content))
				break
			}
		}
	}
	return snippets, nil
}

const maxSnippetLen = 1500

func snippet(name, content string) string {
	content = strings.TrimSpace(content)
	if len(content) > maxSnippetLen {
		content = content[:maxSnippetLen] + "..."
	}
	return "[" + name + "] " + content
}

// topicKeywords extracts the searchable words of a topic, dropping short
// stop-words that would match everything.
func topicKeywords(topic string) []string {
	var keywords []string
	for _, w := range strings.Fields(strings.ToLower(topic)) {
		w = strings.Trim(w, ".,;:!?\"'()")
		if len(w) >= 4 {
			keywords = append(keywords, w)
		}
	}
	return keywords
}
