package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// Entry is one syndicated news item. Read-only; lifetime is a single fetch.
type Entry struct {
	Title   string
	Summary string
	Link    string
}

// Source yields the latest entries of a syndication feed, newest first in
// whatever order the feed publishes them.
type Source interface {
	Latest(ctx context.Context) ([]Entry, error)
}

// EmptyResultError reports that no entry matched the requested keywords.
// A valid outcome of filtering, but the workflow cannot continue on it.
type EmptyResultError struct {
	Keywords []string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("no articles found matching the keywords %s", strings.Join(e.Keywords, ", "))
}

// Fetcher reads a fixed RSS/Atom feed URL.
type Fetcher struct {
	parser *gofeed.Parser
	url    string
}

// NewFetcher creates a Fetcher for the given feed URL.
func NewFetcher(url string, timeout time.Duration) *Fetcher {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	return &Fetcher{parser: parser, url: url}
}

// Latest fetches and parses the feed, preserving the source order.
func (f *Fetcher) Latest(ctx context.Context) ([]Entry, error) {
	parsed, err := f.parser.ParseURLWithContext(f.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", f.url, err)
	}
	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		entries = append(entries, Entry{
			Title:   item.Title,
			Summary: item.Description,
			Link:    item.Link,
		})
	}
	return entries, nil
}

// SplitKeywords derives the keyword list from a raw input string: dashes are
// treated as an alternate delimiter for commas, each piece is trimmed, and
// empty pieces are dropped (an empty keyword would match every entry).
func SplitKeywords(raw string) []string {
	parts := strings.Split(strings.ReplaceAll(raw, "-", ","), ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		if kw := strings.TrimSpace(part); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}

// Filter returns the subsequence of entries whose title or summary contains
// at least one keyword, case-insensitively. Source order is preserved and
// each entry is kept at most once. An empty keyword set matches nothing.
func Filter(entries []Entry, keywords []string) []Entry {
	var matched []Entry
	for _, entry := range entries {
		title := strings.ToLower(entry.Title)
		summary := strings.ToLower(entry.Summary)
		for _, keyword := range keywords {
			kw := strings.ToLower(keyword)
			if strings.Contains(title, kw) || strings.Contains(summary, kw) {
				matched = append(matched, entry)
				break
			}
		}
	}
	return matched
}
