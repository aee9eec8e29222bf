/*
Package corpus reads line corpora and writes the flat text artifacts of a
trained model: vocabulary and count dumps.

A corpus is plain text with one sentence per line and tokens separated by
single spaces, boundary sentinels included. The reader never rewrites
tokens; Wrap exists for raw corpora that lack sentinels and is applied
only when the caller asks for it.
*/
package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/ngramserve/pkg/lm"
)

// maxLineBytes bounds a single corpus line. Scanner's default cap is too
// small for concatenated transcript dumps.
const maxLineBytes = 1024 * 1024

// ReadLines loads the corpus at path, one sentence per line.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus: %w", err)
	}
	defer f.Close()

	lines, err := ScanLines(f)
	if err != nil {
		return nil, fmt.Errorf("reading corpus %s: %w", path, err)
	}
	if len(lines) == 0 {
		log.Warnf("corpus %s has no lines", path)
	}
	return lines, nil
}

// ScanLines collects lines from r without touching their tokens.
func ScanLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// Wrap marks one raw sentence with the boundary sentinels the model
// expects.
func Wrap(line string) string {
	return lm.SentenceStart + " " + line + " " + lm.SentenceEnd
}

// WrapAll returns a copy of lines with every line wrapped.
func WrapAll(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = Wrap(line)
	}
	return out
}
