package lm

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// modelFile is the stored form of a trained model.
type modelFile struct {
	MaxOrder int                `msgpack:"order"`
	Vocab    []string           `msgpack:"vocab"`
	Probs    map[string]float64 `msgpack:"probs"`
}

// MarshalBinary encodes the model for storage as msgpack.
func (m *Model) MarshalBinary() ([]byte, error) {
	return msgpack.Marshal(modelFile{
		MaxOrder: m.maxOrder,
		Vocab:    m.vocab,
		Probs:    m.probs,
	})
}

// DecodeModel reconstructs a stored model and attaches a fresh sampling
// source. A nil src falls back to a time-seeded one. Corrupt payloads are
// reported as errors, unlike internal contract breaches which panic.
func DecodeModel(data []byte, src Rand) (*Model, error) {
	var mf modelFile
	if err := msgpack.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("decoding model: %w", err)
	}
	if mf.MaxOrder < 1 {
		return nil, fmt.Errorf("model order %d out of range", mf.MaxOrder)
	}
	seen := make(map[string]struct{}, len(mf.Vocab))
	for _, w := range mf.Vocab {
		if _, dup := seen[w]; dup {
			return nil, fmt.Errorf("duplicate vocabulary token %q", w)
		}
		seen[w] = struct{}{}
	}
	if mf.Probs == nil {
		mf.Probs = make(map[string]float64)
	}
	if src == nil {
		src = timeSeededSource()
	}
	return &Model{
		probs:    mf.Probs,
		vocab:    mf.Vocab,
		maxOrder: mf.MaxOrder,
		src:      src,
	}, nil
}
