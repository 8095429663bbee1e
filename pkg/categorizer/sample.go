package categorizer

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// ErrEmptyCorpus is returned when a corpus yields no usable samples.
var ErrEmptyCorpus = errors.New("categorizer: corpus contains no samples")

// CorpusFormatError reports a corpus line that could not be parsed.
// Line is 1-based; 0 means the file as a whole was rejected.
type CorpusFormatError struct {
	Line   int
	Reason string
}

func (e *CorpusFormatError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("categorizer: malformed corpus: %s", e.Reason)
	}
	return fmt.Sprintf("categorizer: malformed corpus line %d: %s", e.Line, e.Reason)
}

// Sample is one labeled training example.
type Sample struct {
	Category string
	Text     string   // example text without the label
	Tokens   []string // features source; whitespace tokens of Text unless re-normalized
	Line     int
}

const maxLineBytes = 1024 * 1024

// ReadSamples parses a line-delimited corpus: the first whitespace-separated token
// of each line is the category, the rest is the example text.
//
// Blank lines and lines starting with '#' are skipped. A line holding only a
// label aborts the whole read with a *CorpusFormatError.
func ReadSamples(r io.Reader) ([]Sample, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var samples []Sample
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if !utf8.ValidString(trimmed) {
			return nil, &CorpusFormatError{Line: lineNo, Reason: "invalid UTF-8"}
		}

		fields := strings.Fields(trimmed)
		if len(fields) < 2 {
			return nil, &CorpusFormatError{Line: lineNo, Reason: fmt.Sprintf("label %q has no example text", fields[0])}
		}
		label := fields[0]
		samples = append(samples, Sample{
			Category: label,
			Text:     strings.TrimSpace(strings.TrimPrefix(trimmed, label)),
			Tokens:   fields[1:],
			Line:     lineNo,
		})
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, &CorpusFormatError{Line: lineNo + 1, Reason: "line too long"}
		}
		return nil, fmt.Errorf("categorizer: read corpus: %w", err)
	}
	if len(samples) == 0 {
		return nil, ErrEmptyCorpus
	}
	return samples, nil
}

// ReadSamplesFile reads a corpus from disk. Files that look binary are rejected.
func ReadSamplesFile(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("categorizer: open corpus %s: %w", path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	head, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("categorizer: read corpus %s: %w", path, err)
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return nil, &CorpusFormatError{Reason: fmt.Sprintf("%s looks like a binary file", path)}
	}

	samples, err := ReadSamples(br)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return samples, nil
}
