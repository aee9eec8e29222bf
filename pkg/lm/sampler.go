package lm

import "strings"

// historyKey joins the conditioning context for an order-n draw: at most
// the last order-1 tokens of the history.
func historyKey(history []string, order int) string {
	if len(history) >= order {
		history = history[len(history)-order+1:]
	}
	return strings.Join(history, " ")
}

// DrawNext samples the token following the history under an order-sized
// window. Candidates are enumerated in vocabulary order against a single
// uniform draw, accumulating each candidate's conditional probability
// until the sum exceeds the draw.
//
// The final vocabulary entry is never part of the enumeration. When the
// loop ends with a cumulative sum of exactly zero the history has no
// observed continuation and FailToken is returned; when the sum is
// positive but short of the draw, the final entry absorbs the remaining
// mass and is returned instead. That boundary is part of the sampling
// contract and must not be folded into the loop.
func (m *Model) DrawNext(history []string, order int) string {
	key := historyKey(history, order)
	r := m.src.Float64()

	sum := 0.0
	for i := 0; i < len(m.vocab)-1; i++ {
		sum += m.probs[key+" "+m.vocab[i]]
		if sum > r {
			return m.vocab[i]
		}
	}
	if sum == 0 {
		return FailToken
	}
	return m.vocab[len(m.vocab)-1]
}

// CompleteSentence draws tokens after the history until a sentence end or
// a failed draw, returning everything drawn including that terminal token.
// The input slice is never modified; each drawn token extends a private
// copy of the context. The loop has no length cap, so termination depends
// on the corpus producing terminal tokens; callers that need a hard limit
// drive DrawNext themselves.
func (m *Model) CompleteSentence(history []string, order int) []string {
	ctx := make([]string, len(history))
	copy(ctx, history)

	var drawn []string
	for {
		next := m.DrawNext(ctx, order)
		drawn = append(drawn, next)
		if next == SentenceEnd || next == FailToken {
			return drawn
		}
		ctx = append(ctx, next)
	}
}
