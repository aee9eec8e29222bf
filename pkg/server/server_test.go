package server

import (
	"bytes"
	"testing"

	"github.com/bastiangx/ngramserve/pkg/config"
	"github.com/bastiangx/ngramserve/pkg/lm"
	"github.com/vmihailenco/msgpack/v5"
)

// seqSource replays a fixed list of draws, repeating the final one.
type seqSource struct {
	draws []float64
	pos   int
}

func (s *seqSource) Float64() float64 {
	if len(s.draws) == 0 {
		return 0
	}
	if s.pos >= len(s.draws) {
		return s.draws[len(s.draws)-1]
	}
	v := s.draws[s.pos]
	s.pos++
	return v
}

// runServer feeds encoded requests through a server over in-memory streams
// and returns a decoder positioned just past the ready signal.
func runServer(t *testing.T, model *lm.Model, cfg config.ServerConfig, requests ...Request) *msgpack.Decoder {
	t.Helper()

	var in bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, req := range requests {
		if err := enc.Encode(req); err != nil {
			t.Fatalf("encoding request: %v", err)
		}
	}

	var out bytes.Buffer
	srv := newServer(model, cfg, &in, &out)
	if err := srv.Start(); err != nil {
		t.Fatalf("server returned error: %v", err)
	}

	dec := msgpack.NewDecoder(&out)
	var ready map[string]string
	if err := dec.Decode(&ready); err != nil {
		t.Fatalf("decoding ready signal: %v", err)
	}
	if ready["status"] != "ready" {
		t.Fatalf("ready signal = %v, expected status ready", ready)
	}
	return dec
}

func testModel(draws ...float64) *lm.Model {
	lines := []string{
		"<s> the cat </s>",
		"<s> the dog </s>",
	}
	counts := lm.CountLines(lines, 3)
	return lm.NewModel(counts, &seqSource{draws: draws})
}

func TestServerCompletion(t *testing.T) {
	model := testModel(0.0, 0.0, 0.0)
	cfg := config.DefaultConfig().Server

	dec := runServer(t, model, cfg, Request{ID: "req_001", History: []string{"<s>"}})

	var resp CompletionResponse
	if err := dec.Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.ID != "req_001" {
		t.Errorf("ID = %q, expected req_001", resp.ID)
	}
	expected := []string{"the", "cat", "</s>"}
	if len(resp.Words) != len(expected) {
		t.Fatalf("Words = %v, expected %v", resp.Words, expected)
	}
	for i := range expected {
		if resp.Words[i] != expected[i] {
			t.Errorf("Words[%d] = %q, expected %q", i, resp.Words[i], expected[i])
		}
	}
	if resp.Count != 3 {
		t.Errorf("Count = %d, expected 3", resp.Count)
	}
	if resp.Failed {
		t.Error("Failed = true, expected false")
	}
}

func TestServerCompletionFailure(t *testing.T) {
	model := testModel(0.0)
	cfg := config.DefaultConfig().Server

	dec := runServer(t, model, cfg, Request{ID: "req_002", History: []string{"zebra"}})

	var resp CompletionResponse
	if err := dec.Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Words) != 1 || resp.Words[0] != lm.FailToken {
		t.Errorf("Words = %v, expected [%s]", resp.Words, lm.FailToken)
	}
	if !resp.Failed {
		t.Error("Failed = false, expected true")
	}
}

func TestServerCompletionTokenCap(t *testing.T) {
	// A corpus whose most likely continuation loops on itself, so the
	// draw cap is the only thing that stops sampling.
	counts := lm.CountLines([]string{"<s> a a a </s>"}, 2)
	model := lm.NewModel(counts, &seqSource{draws: []float64{0.0}})
	cfg := config.ServerConfig{MaxHistory: 64, MaxTokens: 256, DistLimit: 16}

	dec := runServer(t, model, cfg, Request{ID: "req_003", History: []string{"a"}, MaxTokens: 4})

	var resp CompletionResponse
	if err := dec.Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Count != 4 {
		t.Errorf("Count = %d, expected cap of 4", resp.Count)
	}
	for i, w := range resp.Words {
		if w != "a" {
			t.Errorf("Words[%d] = %q, expected a", i, w)
		}
	}
	if resp.Failed {
		t.Error("Failed = true, expected false for capped completion")
	}
}

func TestServerCompletionDefaultCap(t *testing.T) {
	counts := lm.CountLines([]string{"<s> a a a </s>"}, 2)
	model := lm.NewModel(counts, &seqSource{draws: []float64{0.0}})
	cfg := config.ServerConfig{MaxHistory: 64, MaxTokens: 3, DistLimit: 16}

	dec := runServer(t, model, cfg, Request{ID: "req_004", History: []string{"a"}})

	var resp CompletionResponse
	if err := dec.Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Count != 3 {
		t.Errorf("Count = %d, expected configured cap of 3", resp.Count)
	}
}

func TestServerValidation(t *testing.T) {
	testCases := []struct {
		request      Request
		expectedCode string
		description  string
	}{
		{Request{ID: "e1"}, CodeEmptyHistory, "Missing history"},
		{Request{ID: "e2", History: []string{"a", "b", "c"}}, CodeHistoryTooLong, "History over limit"},
		{Request{ID: "e3", History: []string{"a"}, Order: 9}, CodeInvalidOrder, "Order above model"},
		{Request{ID: "e4", History: []string{"a"}, Order: -2}, CodeInvalidOrder, "Negative order"},
		{Request{ID: "e5", History: []string{"a"}, Action: "bogus"}, CodeInvalidRequest, "Unknown action"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			model := testModel(0.0)
			cfg := config.ServerConfig{MaxHistory: 2, MaxTokens: 16, DistLimit: 8}

			dec := runServer(t, model, cfg, tc.request)

			var errResp CompletionError
			if err := dec.Decode(&errResp); err != nil {
				t.Fatalf("decoding error response: %v", err)
			}
			if errResp.ID != tc.request.ID {
				t.Errorf("ID = %q, expected %q", errResp.ID, tc.request.ID)
			}
			if errResp.Code != tc.expectedCode {
				t.Errorf("Code = %q, expected %q", errResp.Code, tc.expectedCode)
			}
			if errResp.Error == "" {
				t.Error("Error message is empty")
			}
		})
	}
}

func TestServerDist(t *testing.T) {
	model := testModel(0.0)
	cfg := config.DefaultConfig().Server

	dec := runServer(t, model, cfg, Request{
		ID:      "dist_001",
		Action:  "dist",
		History: []string{"<s>", "the"},
	})

	var resp DistResponse
	if err := dec.Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("Count = %d, expected 2 candidates", resp.Count)
	}
	// Equal probabilities rank alphabetically.
	if resp.Entries[0].Word != "cat" || resp.Entries[1].Word != "dog" {
		t.Errorf("Entries = %v, expected cat then dog", resp.Entries)
	}
	for _, e := range resp.Entries {
		if e.Prob != 0.5 {
			t.Errorf("Prob for %q = %f, expected 0.5", e.Word, e.Prob)
		}
	}
}

func TestServerDistLimit(t *testing.T) {
	model := testModel(0.0)
	cfg := config.ServerConfig{MaxHistory: 64, MaxTokens: 256, DistLimit: 1}

	dec := runServer(t, model, cfg, Request{
		ID:      "dist_002",
		Action:  "dist",
		History: []string{"the"},
	})

	var resp DistResponse
	if err := dec.Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("Count = %d, expected configured limit of 1", resp.Count)
	}
}

func TestServerInfo(t *testing.T) {
	model := testModel()
	cfg := config.DefaultConfig().Server

	dec := runServer(t, model, cfg, Request{ID: "info_001", Action: "get_info"})

	var resp InfoResponse
	if err := dec.Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("Status = %q, expected ok", resp.Status)
	}
	if resp.Order != 3 {
		t.Errorf("Order = %d, expected 3", resp.Order)
	}
	if resp.VocabSize != 5 {
		t.Errorf("VocabSize = %d, expected 5", resp.VocabSize)
	}
	if resp.NGramCount != 9 {
		t.Errorf("NGramCount = %d, expected 9", resp.NGramCount)
	}
}

func TestServerResponsesInRequestOrder(t *testing.T) {
	model := testModel(0.0, 0.0, 0.0)
	cfg := config.DefaultConfig().Server

	dec := runServer(t, model, cfg,
		Request{ID: "first", History: []string{"<s>"}},
		Request{ID: "second", Action: "get_info"},
	)

	var comp CompletionResponse
	if err := dec.Decode(&comp); err != nil {
		t.Fatalf("decoding first response: %v", err)
	}
	if comp.ID != "first" {
		t.Errorf("first response ID = %q, expected first", comp.ID)
	}

	var info InfoResponse
	if err := dec.Decode(&info); err != nil {
		t.Fatalf("decoding second response: %v", err)
	}
	if info.ID != "second" {
		t.Errorf("second response ID = %q, expected second", info.ID)
	}
}
