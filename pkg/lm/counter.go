package lm

import "strings"

// Counts is the raw output of the counting pass over a corpus.
type Counts struct {
	MaxOrder  int
	NGrams    map[string]int
	Histories map[string]int
	Vocab     *Vocabulary
}

// Counter accumulates window counts line by line. The zero value is not
// usable; create one with NewCounter.
type Counter struct {
	maxOrder  int
	ngrams    map[string]int
	histories map[string]int
	vocab     *Vocabulary
}

func NewCounter(maxOrder int) *Counter {
	if maxOrder < 1 {
		maxOrder = 1
	}
	return &Counter{
		maxOrder:  maxOrder,
		ngrams:    make(map[string]int),
		histories: make(map[string]int),
		vocab:     NewVocabulary(),
	}
}

// AddLine counts every window of one line. From each starting position a
// window grows one token at a time until it reaches maxOrder tokens or the
// end of the line; windows never span lines. Every window increments its
// history count, windows of two or more tokens also increment their n-gram
// count, and each token's first single-token window registers it in the
// vocabulary. Lines with fewer than two tokens contribute nothing.
func (c *Counter) AddLine(line string) {
	tokens := strings.Split(line, " ")
	if len(tokens) < 2 {
		return
	}
	for i := 0; i < len(tokens); i++ {
		window := tokens[i]
		c.histories[window]++
		c.vocab.Add(tokens[i])
		for k := i + 1; k < len(tokens) && k-i < c.maxOrder; k++ {
			window += " " + tokens[k]
			c.histories[window]++
			c.ngrams[window]++
		}
	}
}

// Counts hands over the accumulated tables. The same maps keep filling if
// more lines are added afterwards.
func (c *Counter) Counts() *Counts {
	return &Counts{
		MaxOrder:  c.maxOrder,
		NGrams:    c.ngrams,
		Histories: c.histories,
		Vocab:     c.vocab,
	}
}

// CountLines runs a Counter over a whole corpus at once.
func CountLines(lines []string, maxOrder int) *Counts {
	c := NewCounter(maxOrder)
	for _, line := range lines {
		c.AddLine(line)
	}
	return c.Counts()
}
