package features

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// tokenPattern matches words of two or more letters, digits or underscores.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

func tokenize(doc string) []string {
	return tokenPattern.FindAllString(strings.ToLower(doc), -1)
}

// tfidf weights the terms of docs with raw term counts and the smoothed
// inverse document frequency ln((1+n)/(1+df))+1, then scales every document
// to unit length. The vocabulary keeps the maxTerms most frequent terms
// (ties broken alphabetically) and is returned in alphabetical order, with
// one weight column per term.
func tfidf(docs []string, maxTerms int) ([]string, [][]float64) {
	counts := make([]map[string]int, len(docs))
	total := make(map[string]int)
	df := make(map[string]int)
	for i, doc := range docs {
		counts[i] = make(map[string]int)
		for _, term := range tokenize(doc) {
			if counts[i][term] == 0 {
				df[term]++
			}
			counts[i][term]++
			total[term]++
		}
	}

	terms := make([]string, 0, len(total))
	for term := range total {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(a, b int) bool {
		if total[terms[a]] != total[terms[b]] {
			return total[terms[a]] > total[terms[b]]
		}
		return terms[a] < terms[b]
	})
	if len(terms) > maxTerms {
		terms = terms[:maxTerms]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	weights := make([][]float64, len(terms))
	for j, term := range terms {
		idf := math.Log((1+n)/(1+float64(df[term]))) + 1
		weights[j] = make([]float64, len(docs))
		for i := range docs {
			weights[j][i] = float64(counts[i][term]) * idf
		}
	}
	for i := range docs {
		var norm float64
		for j := range terms {
			norm += weights[j][i] * weights[j][i]
		}
		if norm == 0 {
			continue
		}
		norm = math.Sqrt(norm)
		for j := range terms {
			weights[j][i] /= norm
		}
	}
	return terms, weights
}
