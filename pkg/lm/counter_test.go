package lm

import (
	"reflect"
	"strings"
	"testing"
)

func TestCountsSingleLine(t *testing.T) {
	counts := CountLines([]string{"<s> a b </s>"}, 2)

	wantHistories := map[string]int{
		"<s>":    1,
		"a":      1,
		"b":      1,
		"</s>":   1,
		"<s> a":  1,
		"a b":    1,
		"b </s>": 1,
	}
	wantNgrams := map[string]int{
		"<s> a":  1,
		"a b":    1,
		"b </s>": 1,
	}
	wantVocab := []string{"<s>", "a", "b", "</s>"}

	if !reflect.DeepEqual(counts.Histories, wantHistories) {
		t.Errorf("histories = %v, expected %v", counts.Histories, wantHistories)
	}
	if !reflect.DeepEqual(counts.NGrams, wantNgrams) {
		t.Errorf("ngrams = %v, expected %v", counts.NGrams, wantNgrams)
	}
	if got := counts.Vocab.Words(); !reflect.DeepEqual(got, wantVocab) {
		t.Errorf("vocab = %v, expected %v", got, wantVocab)
	}
	if counts.MaxOrder != 2 {
		t.Errorf("max order = %d, expected 2", counts.MaxOrder)
	}
}

func TestCountsWindowBounds(t *testing.T) {
	testCases := []struct {
		description   string
		lines         []string
		maxOrder      int
		wantHistories map[string]int
		wantNgrams    map[string]int
		wantVocab     []string
	}{
		{
			description: "windows capped at max order and line end",
			lines:       []string{"x y z w"},
			maxOrder:    3,
			wantHistories: map[string]int{
				"x": 1, "y": 1, "z": 1, "w": 1,
				"x y": 1, "y z": 1, "z w": 1,
				"x y z": 1, "y z w": 1,
			},
			wantNgrams: map[string]int{
				"x y": 1, "y z": 1, "z w": 1,
				"x y z": 1, "y z w": 1,
			},
			wantVocab: []string{"x", "y", "z", "w"},
		},
		{
			description: "order one counts only single tokens",
			lines:       []string{"a b"},
			maxOrder:    1,
			wantHistories: map[string]int{
				"a": 1, "b": 1,
			},
			wantNgrams: map[string]int{},
			wantVocab:  []string{"a", "b"},
		},
		{
			description:   "empty line contributes nothing",
			lines:         []string{""},
			maxOrder:      2,
			wantHistories: map[string]int{},
			wantNgrams:    map[string]int{},
			wantVocab:     nil,
		},
		{
			description:   "single token line contributes nothing",
			lines:         []string{"alone"},
			maxOrder:      3,
			wantHistories: map[string]int{},
			wantNgrams:    map[string]int{},
			wantVocab:     nil,
		},
		{
			description: "repeated token accumulates one history count per window",
			lines:       []string{"<s> a a </s>"},
			maxOrder:    2,
			wantHistories: map[string]int{
				"<s>": 1, "a": 2, "</s>": 1,
				"<s> a": 1, "a a": 1, "a </s>": 1,
			},
			wantNgrams: map[string]int{
				"<s> a": 1, "a a": 1, "a </s>": 1,
			},
			wantVocab: []string{"<s>", "a", "</s>"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			counts := CountLines(tc.lines, tc.maxOrder)
			if !reflect.DeepEqual(counts.Histories, tc.wantHistories) {
				t.Errorf("histories = %v, expected %v", counts.Histories, tc.wantHistories)
			}
			if !reflect.DeepEqual(counts.NGrams, tc.wantNgrams) {
				t.Errorf("ngrams = %v, expected %v", counts.NGrams, tc.wantNgrams)
			}
			got := counts.Vocab.Words()
			if len(got) == 0 && len(tc.wantVocab) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.wantVocab) {
				t.Errorf("vocab = %v, expected %v", got, tc.wantVocab)
			}
		})
	}
}

func TestCountsAcrossLines(t *testing.T) {
	counts := CountLines([]string{"<s> a </s>", "<s> b </s>"}, 2)

	wantHistories := map[string]int{
		"<s>": 2, "a": 1, "b": 1, "</s>": 2,
		"<s> a": 1, "a </s>": 1, "<s> b": 1, "b </s>": 1,
	}
	if !reflect.DeepEqual(counts.Histories, wantHistories) {
		t.Errorf("histories = %v, expected %v", counts.Histories, wantHistories)
	}

	// Windows never span lines.
	if _, ok := counts.NGrams["</s> <s>"]; ok {
		t.Error("found a window built across two lines")
	}

	// First occurrence order puts the end marker before the second line's word.
	wantVocab := []string{"<s>", "a", "</s>", "b"}
	if got := counts.Vocab.Words(); !reflect.DeepEqual(got, wantVocab) {
		t.Errorf("vocab = %v, expected %v", got, wantVocab)
	}
}

func TestNgramCountNeverExceedsHistoryCount(t *testing.T) {
	lines := []string{
		"<s> the cat sat on the mat </s>",
		"<s> the cat ran </s>",
		"<s> a dog sat </s>",
		"<s> the dog and the cat </s>",
	}
	counts := CountLines(lines, 3)

	for ngram, count := range counts.NGrams {
		history := ParseNGram(ngram).Context().String()
		if hc := counts.Histories[history]; count > hc {
			t.Errorf("count %d of %q exceeds history count %d of %q", count, ngram, hc, history)
		}
	}
}

func TestCounterAccumulates(t *testing.T) {
	c := NewCounter(2)
	c.AddLine("<s> a </s>")
	c.AddLine("<s> a </s>")
	counts := c.Counts()

	if got := counts.Histories["<s> a"]; got != 2 {
		t.Errorf("history count = %d, expected 2", got)
	}
	if got := counts.NGrams["<s> a"]; got != 2 {
		t.Errorf("ngram count = %d, expected 2", got)
	}
	if got := counts.Vocab.Len(); got != 3 {
		t.Errorf("vocab size = %d, expected 3", got)
	}
}

func BenchmarkCounter(b *testing.B) {
	words := []string{"the", "cat", "sat", "on", "a", "mat", "and", "ran"}
	var sb strings.Builder
	sb.WriteString("<s>")
	for i := 0; i < 40; i++ {
		sb.WriteString(" ")
		sb.WriteString(words[i%len(words)])
	}
	sb.WriteString(" </s>")
	lines := make([]string, 100)
	for i := range lines {
		lines[i] = sb.String()
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CountLines(lines, 3)
	}
}
