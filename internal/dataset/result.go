package dataset

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// SearchResult is one ranked hit returned by the search service.
type SearchResult struct {
	ID    string         `json:"id"`
	Score float64        `json:"score"`
	Meta  map[string]any `json:"meta"`
}

func (r SearchResult) metaString(keys ...string) string {
	for _, k := range keys {
		if v, ok := r.Meta[k]; ok && v != nil {
			s := strings.TrimSpace(fmt.Sprint(v))
			if s != "" {
				return s
			}
		}
	}
	return ""
}

// Title returns meta.title, falling back to meta.text and then the ID.
func (r SearchResult) Title() string {
	if t := r.metaString("title", "text"); t != "" {
		return t
	}
	return r.ID
}

// Description returns meta.description or meta.summary.
func (r SearchResult) Description() string {
	if d := r.metaString("description", "summary"); d != "" {
		return d
	}
	return "No description available"
}

// URL returns meta.url, or an empty string.
func (r SearchResult) URL() string {
	return r.metaString("url", "dataset_url")
}

// RelevancePercent formats the score as a percentage with one decimal.
func (r SearchResult) RelevancePercent() string {
	score := r.Score
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return fmt.Sprintf("%.1f%%", score*100)
}

// Reference converts the hit into a dataset reference suitable for
// pre-filling a workflow. The format comes from meta.format when present,
// otherwise it is inferred from the URL extension and defaults to csv.
func (r SearchResult) Reference() Reference {
	ref := Reference{
		URL:      r.URL(),
		Variable: r.metaString("variable"),
		Title:    r.metaString("title", "text"),
		Format:   FormatCSV,
	}
	if f, err := ParseFormat(r.metaString("format", "dataset_format")); err == nil {
		ref.Format = f
	} else if f, ok := formatFromURL(ref.URL); ok {
		ref.Format = f
	}
	return ref
}

func formatFromURL(raw string) (Format, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(u.Path)), ".")
	if ext == "" {
		return "", false
	}
	f, err := ParseFormat(ext)
	if err != nil {
		return "", false
	}
	return f, true
}
