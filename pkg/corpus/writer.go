package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// WriteVocab writes one token per line in vocabulary order.
func WriteVocab(path string, vocab []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating vocab dump: %w", err)
	}
	defer f.Close()

	if err := writeVocabTo(f, vocab); err != nil {
		return fmt.Errorf("writing vocab dump %s: %w", path, err)
	}
	log.Debugf("wrote %d vocab entries to %s", len(vocab), path)
	return nil
}

func writeVocabTo(w io.Writer, vocab []string) error {
	bw := bufio.NewWriter(w)
	for _, token := range vocab {
		if _, err := fmt.Fprintln(bw, token); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteCounts writes each n-gram, a tab, then its count. Entry order
// follows map iteration; tokens inside an n-gram keep their corpus order.
func WriteCounts(path string, counts map[string]int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating count dump: %w", err)
	}
	defer f.Close()

	if err := writeCountsTo(f, counts); err != nil {
		return fmt.Errorf("writing count dump %s: %w", path, err)
	}
	log.Debugf("wrote %d count entries to %s", len(counts), path)
	return nil
}

func writeCountsTo(w io.Writer, counts map[string]int) error {
	bw := bufio.NewWriter(w)
	for ngram, count := range counts {
		if _, err := fmt.Fprintf(bw, "%s\t%d\n", ngram, count); err != nil {
			return err
		}
	}
	return bw.Flush()
}
