package nlp

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
)

// dictionaryLemmatizer looks lemmas up in a word/tag/lemma dictionary, the
// tab-separated format used by dictionary lemmatizers:
//
//	does	VBZ	do
//	cars	NNS	car
//
// Words missing from the dictionary are stemmed when a stem language is set,
// otherwise lower-cased.
type dictionaryLemmatizer struct {
	byWordTag    map[string]string
	byWord       map[string]string
	stemLanguage string
}

func lemmaKey(word, tag string) string {
	return word + "\x00" + tag
}

func loadLemmaModel(path, stemLanguage string) (*dictionaryLemmatizer, error) {
	if path == "" {
		return nil, errEmptyPath
	}
	if stemLanguage != "" {
		// Fail at load time rather than on the first unknown word.
		if _, err := snowball.Stem("testing", stemLanguage, true); err != nil {
			return nil, fmt.Errorf("stem fallback: %w", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, wrapRead(err)
	}
	defer f.Close()

	l := &dictionaryLemmatizer{
		byWordTag:    make(map[string]string),
		byWord:       make(map[string]string),
		stemLanguage: stemLanguage,
	}

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
			return nil, fmt.Errorf("line %d: want word<TAB>tag<TAB>lemma, got %q", lineNo, line)
		}
		word, tag, lemma := parts[0], parts[1], parts[2]
		l.byWordTag[lemmaKey(word, tag)] = lemma
		lower := strings.ToLower(word)
		if _, ok := l.byWord[lower]; !ok {
			l.byWord[lower] = lemma
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, wrapRead(err)
	}
	return l, nil
}

func (l *dictionaryLemmatizer) size() int {
	return len(l.byWordTag)
}

func (l *dictionaryLemmatizer) lemma(word, tag string) string {
	if lemma, ok := l.byWordTag[lemmaKey(word, tag)]; ok {
		return lemma
	}
	lower := strings.ToLower(word)
	if lemma, ok := l.byWordTag[lemmaKey(lower, tag)]; ok {
		return lemma
	}
	if lemma, ok := l.byWord[lower]; ok {
		return lemma
	}
	if l.stemLanguage != "" && isWord(lower) {
		if stem, err := snowball.Stem(lower, l.stemLanguage, true); err == nil && stem != "" {
			return stem
		}
	}
	return lower
}

func isWord(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
