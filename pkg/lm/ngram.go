/*
Package lm estimates n-gram language models from line corpora and samples
random sentence completions from them.

A model is built in three passes. The Counter slides windows of one up to
maxOrder tokens over every corpus line and tallies two tables: every window
counts as a history, and windows of two or more tokens also count as n-grams.
The estimator divides each n-gram count by the count of its history, keeping
only the strictly positive maximum-likelihood probabilities. The result is
frozen into a Model together with the vocabulary, whose first-occurrence
order doubles as the candidate enumeration order during sampling.

	counts := lm.CountLines(lines, 3)
	model := lm.NewModel(counts, rand.New(rand.NewSource(seed)))
	tokens := model.CompleteSentence([]string{lm.SentenceStart}, 3)

Sampling is inverse-CDF over the fixed vocabulary order: a uniform draw in
[0, 1) is matched against the running sum of continuation probabilities
under the conditioning window. Unseen histories are a normal outcome and
yield FailToken rather than an error.

An optional Index built from the same table answers continuation listing
queries through a patricia trie, for inspecting a distribution without
drawing from it.
*/
package lm

import "strings"

// Sentinel tokens the model treats specially when they appear. Corpora
// carry them as ordinary tokens; only the sampler stops on them.
const (
	SentenceStart = "<s>"
	SentenceEnd   = "</s>"
	FailToken     = "<fail>"
)

// NGram is an ordered token sequence. Count and probability tables key it
// by its space-joined form.
type NGram []string

// ParseNGram splits a joined n-gram back into tokens.
func ParseNGram(s string) NGram {
	return strings.Split(s, " ")
}

func (ng NGram) String() string {
	return strings.Join(ng, " ")
}

// Context returns every token but the last, the history the final token
// was predicted from.
func (ng NGram) Context() NGram {
	if len(ng) == 0 {
		return nil
	}
	return ng[:len(ng)-1]
}

// Last returns the predicted token, or an empty string for an empty n-gram.
func (ng NGram) Last() string {
	if len(ng) == 0 {
		return ""
	}
	return ng[len(ng)-1]
}
