package names

import (
	"reflect"
	"sort"
	"testing"
)

func TestVariants(t *testing.T) {
	tests := []struct {
		token string
		count int
		first string
	}{
		{"bat", 1, "bat"},
		{"oil", 18, "eii"}, // {e,o} x {i,l,1} x {i,l,1}
		{"rj", 4, "rr"},
		{"item", 6, "item"},
	}

	for _, tc := range tests {
		t.Run(tc.token, func(t *testing.T) {
			variants := Variants(tc.token)
			if len(variants) != tc.count {
				t.Fatalf("Variants(%q) has %d entries, want %d: %v", tc.token, len(variants), tc.count, variants)
			}
			if variants[0] != tc.first {
				t.Fatalf("first variant = %q, want %q", variants[0], tc.first)
			}
			seen := map[string]bool{}
			for _, v := range variants {
				if seen[v] {
					t.Fatalf("duplicate variant %q", v)
				}
				seen[v] = true
			}
		})
	}
}

func TestSearchAcceptsEveryVariant(t *testing.T) {
	tokens := []string{"mleko", "jogurt", "oil", "1l", "bat"}
	trie := BuildTrie(tokens)

	for _, token := range tokens {
		for _, variant := range Variants(token) {
			if !trie.Search(variant) {
				t.Fatalf("Search(%q) = false for variant of %q", variant, token)
			}
		}
	}
}

func TestSearchRejects(t *testing.T) {
	trie := BuildTrie([]string{"mleko", "bat"})

	rejected := []string{
		"mlekx",  // x is not substitutable for o
		"mieka",  // a is not in {e,o}
		"mlek",   // prefix only
		"mlekoo", // longer
		"pat",    // b and p are not confusable
		"",
	}
	for _, s := range rejected {
		if trie.Search(s) {
			t.Fatalf("Search(%q) = true, want false", s)
		}
	}
}

func TestCanonical(t *testing.T) {
	trie := BuildTrie([]string{"jogurt", "mleko"})

	got, ok := trie.Canonical("regujt")
	if !ok || got != "jogurt" {
		t.Fatalf("Canonical(regujt) = %q, %v", got, ok)
	}
	if _, ok := trie.Canonical("jogur"); ok {
		t.Fatalf("prefix must not have a canonical token")
	}
}

func TestFindAllWords(t *testing.T) {
	trie := BuildTrie([]string{"item", "name", "namehere", "me", "here"})

	got := trie.FindAllWords("19itemnamehere")
	want := []Match{
		{Token: "item", Start: 2, End: 6},
		{Token: "name", Start: 6, End: 10},
		{Token: "namehere", Start: 6, End: 14},
		{Token: "me", Start: 8, End: 10},
		{Token: "here", Start: 10, End: 14},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindAllWords = %+v\nwant %+v", got, want)
	}
}

func TestFindAllWordsReportsVariantsAndOverlaps(t *testing.T) {
	trie := BuildTrie([]string{"1l", "bily"})

	got := trie.FindAllWords("blly")
	sort.SliceStable(got, func(i, j int) bool { return got[i].Start < got[j].Start })
	want := []Match{
		{Token: "blly", Start: 0, End: 4},
		{Token: "ll", Start: 1, End: 3},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindAllWords = %+v, want %+v", got, want)
	}
}

func TestTrieCounts(t *testing.T) {
	trie := BuildTrie([]string{"bat", "bat", "ba"})
	if trie.Words() != 2 {
		t.Fatalf("Words() = %d, want 2", trie.Words())
	}
	// root, b, a, t
	if trie.Nodes() != 4 {
		t.Fatalf("Nodes() = %d, want 4", trie.Nodes())
	}
}
