package server

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bastiangx/ngramserve/internal/utils"
	"github.com/bastiangx/ngramserve/pkg/config"
	"github.com/bastiangx/ngramserve/pkg/lm"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles the IPC for sentence completions
type Server struct {
	model   *lm.Model
	index   *lm.Index
	cfg     config.ServerConfig
	decoder *msgpack.Decoder
	encoder *msgpack.Encoder
}

// NewServer creates a completion server using stdin/stdout for IPC
func NewServer(model *lm.Model, cfg config.ServerConfig) *Server {
	return newServer(model, cfg, os.Stdin, os.Stdout)
}

// newServer wires a server to arbitrary streams so tests stay off real stdio.
func newServer(model *lm.Model, cfg config.ServerConfig, in io.Reader, out io.Writer) *Server {
	return &Server{
		model:   model,
		index:   lm.NewIndex(model),
		cfg:     cfg,
		decoder: msgpack.NewDecoder(in),
		encoder: msgpack.NewEncoder(out),
	}
}

// Start begins listening for IPC requests
func (s *Server) Start() error {
	log.Debug("Starting Server.")

	// Signal that the server is ready
	s.sendResponse(map[string]string{"status": "ready"})

	// incoming requests stdin
	for {
		var request Request
		if err := s.decoder.Decode(&request); err != nil {
			if err == io.EOF {
				return nil
			}
			// A malformed message leaves the binary stream at an unknown
			// position, so the only safe move is to report and stop.
			log.Errorf("Decoding request: %v", err)
			s.sendError("", "Invalid msgpack request", CodeInvalidRequest)
			return err
		}
		s.handleRequest(request)
	}
}

// handleRequest dispatches an incoming request envelope
func (s *Server) handleRequest(request Request) {
	switch request.Action {
	case "":
		s.handleComplete(request)
	case "dist":
		s.handleDist(request)
	case "get_info":
		s.handleInfo(request)
	default:
		s.sendError(request.ID, fmt.Sprintf("Unknown action: %s", request.Action), CodeInvalidRequest)
	}
}

// sendResponse encodes the given response into msgpack and writes it to the
// client, one message per response.
func (s *Server) sendResponse(response interface{}) {
	if err := s.encoder.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
		if _, isErr := response.(CompletionError); !isErr {
			s.sendError("", "Internal server error", CodeInternal)
		}
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message, code string) {
	s.sendResponse(CompletionError{
		ID:    id,
		Error: message,
		Code:  code,
	})
}

// checkSampling validates the history and order fields shared by completion
// and distribution requests, resolving a zero order to the model's own.
func (s *Server) checkSampling(request Request) (int, bool) {
	if len(request.History) == 0 {
		s.sendError(request.ID, "history is empty", CodeEmptyHistory)
		log.Debug("History is empty in request")
		return 0, false
	}
	if s.cfg.MaxHistory > 0 && len(request.History) > s.cfg.MaxHistory {
		s.sendError(request.ID,
			fmt.Sprintf("history exceeds maximum length of %d tokens", s.cfg.MaxHistory),
			CodeHistoryTooLong)
		log.Debug("History is too long in request")
		return 0, false
	}
	order, err := utils.ResolveOrder(request.Order, s.model.MaxOrder())
	if err != nil {
		s.sendError(request.ID, err.Error(), CodeInvalidOrder)
		log.Debugf("Bad order in request: %v", err)
		return 0, false
	}
	return order, true
}

// handleComplete samples a continuation for the request history. Drawing
// stops at a sentence end, at a failed draw, or at the token cap, whichever
// comes first, and the response keeps every drawn token including terminals.
func (s *Server) handleComplete(request Request) {
	order, ok := s.checkSampling(request)
	if !ok {
		return
	}
	maxTokens := request.MaxTokens
	if maxTokens < 1 {
		maxTokens = s.cfg.MaxTokens
	}
	if maxTokens < 1 {
		maxTokens = 256
	}

	start := time.Now()
	ctx := make([]string, len(request.History), len(request.History)+maxTokens)
	copy(ctx, request.History)
	words := make([]string, 0, maxTokens)
	failed := false
	for len(words) < maxTokens {
		next := s.model.DrawNext(ctx, order)
		words = append(words, next)
		if next == lm.SentenceEnd {
			break
		}
		if next == lm.FailToken {
			failed = true
			break
		}
		ctx = append(ctx, next)
	}
	elapsed := time.Since(start)

	response := CompletionResponse{
		ID:        request.ID,
		Words:     words,
		Count:     len(words),
		Failed:    failed,
		TimeTaken: elapsed.Microseconds(),
	}
	s.sendResponse(response)
}

// handleDist reports the ranked next-token distribution for the history.
func (s *Server) handleDist(request Request) {
	order, ok := s.checkSampling(request)
	if !ok {
		return
	}
	limit := request.Limit
	if limit < 1 {
		limit = s.cfg.DistLimit
	}
	if limit < 1 {
		limit = 16
	}

	start := time.Now()
	continuations := s.index.Continuations(request.History, order, limit)
	elapsed := time.Since(start)

	entries := make([]DistEntry, len(continuations))
	for i, c := range continuations {
		entries[i] = DistEntry{Word: c.Word, Prob: c.Prob}
	}
	response := DistResponse{
		ID:        request.ID,
		Entries:   entries,
		Count:     len(entries),
		TimeTaken: elapsed.Microseconds(),
	}
	s.sendResponse(response)
}

// handleInfo reports model metadata
func (s *Server) handleInfo(request Request) {
	response := InfoResponse{
		ID:         request.ID,
		Status:     "ok",
		Order:      s.model.MaxOrder(),
		VocabSize:  s.model.VocabSize(),
		NGramCount: s.model.NGramCount(),
	}
	s.sendResponse(response)
}
