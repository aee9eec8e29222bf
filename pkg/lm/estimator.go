package lm

import "fmt"

// EstimateProbabilities converts raw counts into maximum-likelihood
// conditional probabilities: each n-gram maps to its count divided by the
// count of its history. Only strictly positive entries are stored, so a
// missing key always means an unseen continuation.
//
// Every history implied by an n-gram must be present in historyCounts with
// a positive count. The counting pass guarantees this, so a miss here is a
// bug in the caller and panics rather than returning an error.
func EstimateProbabilities(ngramCounts, historyCounts map[string]int) map[string]float64 {
	probs := make(map[string]float64, len(ngramCounts))
	for ngram, count := range ngramCounts {
		history := ParseNGram(ngram).Context().String()
		historyCount := historyCounts[history]
		if historyCount <= 0 {
			panic(fmt.Sprintf("lm: n-gram %q has no history count for %q", ngram, history))
		}
		if p := float64(count) / float64(historyCount); p > 0 {
			probs[ngram] = p
		}
	}
	return probs
}
