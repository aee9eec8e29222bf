package lm

// Vocabulary records distinct tokens in first-occurrence order. The order
// is load-bearing: sampling enumerates candidates in exactly this order,
// so it must stay stable across the life of a model.
type Vocabulary struct {
	words []string
	index map[string]int
}

func NewVocabulary() *Vocabulary {
	return &Vocabulary{index: make(map[string]int)}
}

// Add appends the token unless it was seen before.
func (v *Vocabulary) Add(token string) {
	if _, ok := v.index[token]; ok {
		return
	}
	v.index[token] = len(v.words)
	v.words = append(v.words, token)
}

func (v *Vocabulary) Has(token string) bool {
	_, ok := v.index[token]
	return ok
}

func (v *Vocabulary) Len() int {
	return len(v.words)
}

// Word returns the token at position i in first-occurrence order.
func (v *Vocabulary) Word(i int) string {
	return v.words[i]
}

// Words returns a copy of all tokens in first-occurrence order.
func (v *Vocabulary) Words() []string {
	out := make([]string, len(v.words))
	copy(out, v.words)
	return out
}
