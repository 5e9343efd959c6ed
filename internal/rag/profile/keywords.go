package profile

import (
	"regexp"
	"sort"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

var stopwords = toSet(
	"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by",
	"with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "its", "this", "that", "these",
	"those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about",
	"between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too",
	"very", "can", "will", "just", "should", "now", "our", "ours", "your", "yours", "their", "they", "them",
	"we", "you", "who", "what", "which", "when", "where", "how", "all", "any", "each", "more", "most", "other",
	"some", "have", "has", "had", "not", "only", "also", "every", "make", "makes", "like", "there", "here",
)

// Keywords returns the n most frequent non-stopword terms of at least four letters,
// ties broken alphabetically.
func Keywords(text string, n int) []string {
	freq := map[string]int{}
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if len([]rune(tok)) < 4 {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		freq[tok]++
	}

	terms := make([]string, 0, len(freq))
	for t := range freq {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if freq[terms[i]] != freq[terms[j]] {
			return freq[terms[i]] > freq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
