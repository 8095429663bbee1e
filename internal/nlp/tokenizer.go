package nlp

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/jdkato/prose/tokenize"
)

type wordTokenizer interface {
	Tokenize(text string) []string
}

// tokenModelFile describes which tokenizer to build.
//
//	{"kind": "treebank"}
//	{"kind": "wordpunct"}
//	{"kind": "regexp", "pattern": "\\s+", "gaps": true, "discard": true}
type tokenModelFile struct {
	Kind    string `json:"kind"`
	Pattern string `json:"pattern,omitempty"`
	Gaps    bool   `json:"gaps,omitempty"`
	Discard bool   `json:"discard,omitempty"`
}

const wordPunctPattern = `\w+|[^\w\s]+`

func loadTokenModel(path string) (wordTokenizer, error) {
	if path == "" {
		return nil, errEmptyPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapRead(err)
	}
	var f tokenModelFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode token model: %w", err)
	}

	switch f.Kind {
	case "treebank":
		return tokenize.NewTreebankWordTokenizer(), nil
	case "wordpunct":
		return tokenize.NewRegexpTokenizer(wordPunctPattern, false, false), nil
	case "regexp":
		if f.Pattern == "" {
			return nil, fmt.Errorf("regexp token model needs a pattern")
		}
		// NewRegexpTokenizer panics on a bad pattern.
		if _, err := regexp.Compile(f.Pattern); err != nil {
			return nil, fmt.Errorf("invalid token pattern: %w", err)
		}
		return tokenize.NewRegexpTokenizer(f.Pattern, f.Gaps, f.Discard), nil
	default:
		return nil, fmt.Errorf("unknown tokenizer kind %q", f.Kind)
	}
}
