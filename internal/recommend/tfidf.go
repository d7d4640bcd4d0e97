package recommend

import (
	"math"
	"regexp"
	"strings"
)

// Tokens are runs of two or more word characters, lower-cased.
var tokenPattern = regexp.MustCompile(`\w\w+`)

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// RankByText scores each candidate document against the target document with
// TF-IDF weighted cosine similarity over the combined corpus
// {target, candidates}. IDF is smoothed, ln((1+n)/(1+df))+1, and vectors are
// L2-normalized, so a candidate identical to the target scores exactly 1.0
// and every score lies in [0, 1]. An empty candidate set yields nil rather
// than a corpus of one.
func RankByText(target string, candidates []string) []float64 {
	if len(candidates) == 0 {
		return nil
	}

	docs := make([][]string, 0, len(candidates)+1)
	docs = append(docs, tokenize(target))
	for _, c := range candidates {
		docs = append(docs, tokenize(c))
	}

	termCounts := make([]map[string]float64, len(docs))
	docFreq := make(map[string]int)
	for i, tokens := range docs {
		tf := make(map[string]float64, len(tokens))
		for _, t := range tokens {
			tf[t]++
		}
		termCounts[i] = tf
		for t := range tf {
			docFreq[t]++
		}
	}

	n := float64(len(docs))
	idf := make(map[string]float64, len(docFreq))
	for t, df := range docFreq {
		idf[t] = math.Log((1+n)/(1+float64(df))) + 1
	}

	vectors := make([]map[string]float64, len(docs))
	for i, tf := range termCounts {
		vec := make(map[string]float64, len(tf))
		var norm float64
		for t, f := range tf {
			w := f * idf[t]
			vec[t] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for t := range vec {
				vec[t] /= norm
			}
		}
		vectors[i] = vec
	}

	targetVec := vectors[0]
	sims := make([]float64, len(candidates))
	for i, vec := range vectors[1:] {
		var dot float64
		for t, w := range targetVec {
			dot += w * vec[t]
		}
		sims[i] = dot
	}
	return sims
}
