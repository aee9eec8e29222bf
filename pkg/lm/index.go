package lm

import (
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Continuation is one observed next word under a history, with its
// conditional probability.
type Continuation struct {
	Word string
	Prob float64
}

// Index answers continuation listing queries over a model's probability
// table. Read-only once built.
type Index struct {
	trie *patricia.Trie
}

// NewIndex loads every probability entry into a patricia trie keyed by its
// joined n-gram form.
func NewIndex(m *Model) *Index {
	trie := patricia.NewTrie()
	for ngram, p := range m.probs {
		trie.Insert(patricia.Prefix(ngram), p)
	}
	return &Index{trie: trie}
}

// Continuations lists the observed next words under the history, truncated
// to the same conditioning window DrawNext uses, ordered by probability
// descending with ties broken by word. A limit of zero or less returns
// everything.
func (ix *Index) Continuations(history []string, order, limit int) []Continuation {
	key := historyKey(history, order)
	if key == "" {
		return nil
	}
	prefix := key + " "

	var out []Continuation
	err := ix.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, item patricia.Item) error {
		word := strings.TrimPrefix(string(p), prefix)
		// Entries that extend the history by more than one token belong to
		// longer windows, not to this distribution.
		if word == "" || strings.Contains(word, " ") {
			return nil
		}
		prob, ok := item.(float64)
		if !ok {
			return nil
		}
		out = append(out, Continuation{Word: word, Prob: prob})
		return nil
	})
	if err != nil {
		log.Errorf("continuation walk for %q: %v", key, err)
		return nil
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Prob != out[j].Prob {
			return out[i].Prob > out[j].Prob
		}
		return out[i].Word < out[j].Word
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
