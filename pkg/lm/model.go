package lm

import (
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
)

// Rand is the source of uniform draws in [0, 1) that sampling consumes.
// *rand.Rand satisfies it; tests substitute fixed sources.
type Rand interface {
	Float64() float64
}

// Model holds an estimated n-gram model: the probability table, the
// vocabulary in first-occurrence order, and the maximum window order that
// was counted. Everything except the advancing random source is immutable
// once built, so concurrent readers are safe while draws stay confined to
// one goroutine.
type Model struct {
	probs    map[string]float64
	vocab    []string
	maxOrder int
	src      Rand
}

func timeSeededSource() Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// NewModel estimates probabilities from the counts and freezes them into a
// Model. A nil src falls back to a time-seeded one.
func NewModel(counts *Counts, src Rand) *Model {
	if src == nil {
		src = timeSeededSource()
	}
	m := &Model{
		probs:    EstimateProbabilities(counts.NGrams, counts.Histories),
		vocab:    counts.Vocab.Words(),
		maxOrder: counts.MaxOrder,
		src:      src,
	}
	log.Debugf("model built: %d n-grams, %d words, order %d", len(m.probs), len(m.vocab), m.maxOrder)
	return m
}

// Train counts the corpus lines and builds a model in one step, for
// callers that need no access to the raw count tables.
func Train(lines []string, maxOrder int, src Rand) *Model {
	return NewModel(CountLines(lines, maxOrder), src)
}

// MaxOrder reports the longest window length counted during training.
func (m *Model) MaxOrder() int {
	return m.maxOrder
}

func (m *Model) VocabSize() int {
	return len(m.vocab)
}

// NGramCount reports how many n-grams carry positive probability.
func (m *Model) NGramCount() int {
	return len(m.probs)
}

// Vocab returns a copy of the vocabulary in first-occurrence order.
func (m *Model) Vocab() []string {
	out := make([]string, len(m.vocab))
	copy(out, m.vocab)
	return out
}

// Probability returns the stored probability of a space-joined n-gram, or
// zero when that continuation was never observed.
func (m *Model) Probability(ngram string) float64 {
	return m.probs[ngram]
}
