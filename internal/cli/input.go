// Package cli handles cmd line input and sampling for DBG and testing various features
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bastiangx/ngramserve/internal/utils"
	"github.com/bastiangx/ngramserve/pkg/lm"
	"github.com/charmbracelet/log"
)

// InputHandler processes user input from stdin, sampling sentence
// completions. Each input line is read as a whitespace separated history.
// It accepts parameters to control the sampling order, the drawn token cap,
// and the optional next-token distribution view.
type InputHandler struct {
	model     *lm.Model
	index     *lm.Index
	order     int
	maxTokens int
	distLimit int
	showDist  bool
}

// NewInputHandler handles initialization of the InputHandler with basic
// parameters. The order must already be resolved against the model.
func NewInputHandler(model *lm.Model, order, maxTokens, distLimit int, showDist bool) *InputHandler {
	h := &InputHandler{
		model:     model,
		order:     order,
		maxTokens: maxTokens,
		distLimit: distLimit,
		showDist:  showDist,
	}
	if showDist {
		h.index = lm.NewIndex(model)
	}
	return h
}

// Start begins the interface loop.
// It continuously prompts for input, reads a line from stdin,
// and passes the trimmed history to handleInput() for sampling.
// Loop terminates on end of input or a read error.
func (h *InputHandler) Start() error {
	log.Print("ngramserve CLI [BETA]")
	log.Printf("model loaded: %s n-grams, %s words, order %d",
		utils.FormatWithCommas(h.model.NGramCount()),
		utils.FormatWithCommas(h.model.VocabSize()),
		h.model.MaxOrder())
	reader := bufio.NewReader(os.Stdin)
	log.Print("type a history and press Enter to sample a completion (Ctrl+C to exit):")

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		h.handleInput(line)
	}
}

// handleInput samples a single completion for the given history line.
// It validates the history, draws tokens until a terminal or the cap, and
// prints the completion to stdout. Log output stays on stderr so completions
// can be piped.
func (h *InputHandler) handleInput(line string) {
	history := utils.SplitHistory(line)
	if err := utils.ValidateHistory(history, 0); err != nil {
		log.Errorf("Bad history %q: %v", line, err)
		return
	}

	start := time.Now()
	log.Debug("Sampling completion for", "history", line)

	words := h.complete(history)

	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for history '%s'", elapsed, line)

	if len(words) == 0 {
		log.Warnf("No completion drawn for history: '%s'", line)
		return
	}

	WriteCompletion(os.Stdout, words)

	if h.showDist {
		h.printDist(history)
	}
}

// complete draws tokens for the history. With no cap the sampler runs until
// it reaches a sentence end or a failed draw on its own.
func (h *InputHandler) complete(history []string) []string {
	if h.maxTokens < 1 {
		return h.model.CompleteSentence(history, h.order)
	}
	ctx := append([]string(nil), history...)
	words := make([]string, 0, h.maxTokens)
	for len(words) < h.maxTokens {
		next := h.model.DrawNext(ctx, h.order)
		words = append(words, next)
		if next == lm.SentenceEnd || next == lm.FailToken {
			break
		}
		ctx = append(ctx, next)
	}
	return words
}

// WriteCompletion prints sampled tokens in completion form, each token
// preceded by a single space, ending with a newline.
func WriteCompletion(w io.Writer, words []string) {
	for _, word := range words {
		fmt.Fprintf(w, " %s", word)
	}
	fmt.Fprintln(w)
}

// Generate samples n completions for the same history and writes each one
// in completion form, one per line.
func Generate(w io.Writer, model *lm.Model, history []string, order, maxTokens, n int) {
	h := &InputHandler{model: model, order: order, maxTokens: maxTokens}
	for i := 0; i < n; i++ {
		WriteCompletion(w, h.complete(history))
	}
}

// printDist shows the ranked next-token distribution for the history.
func (h *InputHandler) printDist(history []string) {
	entries := h.index.Continuations(history, h.order, h.distLimit)
	if len(entries) == 0 {
		log.Warnf("No distribution for history: '%s'", strings.Join(history, " "))
		return
	}
	log.Printf("Found %d candidates for next token:", len(entries))
	for i, e := range entries {
		clWord := fmt.Sprintf("\033[38;5;75m%s\033[0m", e.Word)
		log.Printf("%2d. %-40s (p: %.4f)", i+1, clWord, e.Prob)
	}
}
