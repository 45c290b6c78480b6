package feed

import (
	"reflect"
	"testing"
)

func sampleEntries() []Entry {
	return []Entry{
		{Title: "Climate summit opens", Summary: "Leaders meet in Geneva", Link: "https://example.com/a"},
		{Title: "Markets rally", Summary: "Stocks climb on earnings", Link: "https://example.com/b"},
		{Title: "Election results delayed", Summary: "Count continues overnight", Link: "https://example.com/c"},
		{Title: "Sports roundup", Summary: "CLIMATE protest halts match", Link: "https://example.com/d"},
	}
}

func TestFilterMatchesTitleOrSummaryCaseInsensitive(t *testing.T) {
	got := Filter(sampleEntries(), []string{"climate", "election"})
	if len(got) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(got))
	}
	wantLinks := []string{"https://example.com/a", "https://example.com/c", "https://example.com/d"}
	for i, entry := range got {
		if entry.Link != wantLinks[i] {
			t.Fatalf("expected %s at position %d, got %s", wantLinks[i], i, entry.Link)
		}
	}
}

func TestFilterReturnsSubsequenceInSourceOrder(t *testing.T) {
	entries := sampleEntries()
	got := Filter(entries, []string{"e"})
	if len(got) != len(entries) {
		t.Fatalf("expected every entry to match, got %d of %d", len(got), len(entries))
	}
	if !reflect.DeepEqual(got, entries) {
		t.Fatalf("expected source order preserved, got %+v", got)
	}
}

func TestFilterEmptyKeywordsMatchesNothing(t *testing.T) {
	if got := Filter(sampleEntries(), nil); len(got) != 0 {
		t.Fatalf("expected no matches for empty keyword set, got %d", len(got))
	}
}

func TestFilterEachEntryKeptOnce(t *testing.T) {
	got := Filter(sampleEntries(), []string{"climate", "Climate", "summit"})
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
}

func TestSplitKeywords(t *testing.T) {
	got := SplitKeywords(" climate , election-economy ")
	want := []string{"climate", "election", "economy"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSplitKeywordsDropsEmptyPieces(t *testing.T) {
	if got := SplitKeywords(" , ,, "); len(got) != 0 {
		t.Fatalf("expected no keywords, got %v", got)
	}
	if got := SplitKeywords(""); len(got) != 0 {
		t.Fatalf("expected no keywords from empty input, got %v", got)
	}
}

func TestEmptyResultErrorMessageNamesKeywords(t *testing.T) {
	err := &EmptyResultError{Keywords: []string{"xyzzy123"}}
	want := "no articles found matching the keywords xyzzy123"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}
