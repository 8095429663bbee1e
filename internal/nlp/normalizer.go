package nlp

import (
	"strings"

	log "github.com/sirupsen/logrus"
)

// Sentence is one detected sentence. Start and End delimit its byte span in the
// segmented text; consecutive sentences share boundaries, so the spans of all
// sentences together cover the whole input.
type Sentence struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Triple is one normalized token.
type Triple struct {
	Token string `json:"token"`
	Tag   string `json:"tag"`
	Lemma string `json:"lemma"`
}

// NormalizedSentence holds equal-length token, tag and lemma slices for a sentence.
type NormalizedSentence struct {
	Sentence
	Tokens []string `json:"tokens"`
	Tags   []string `json:"tags"`
	Lemmas []string `json:"lemmas"`
}

// Triples zips tokens, tags and lemmas.
func (s NormalizedSentence) Triples() []Triple {
	out := make([]Triple, len(s.Tokens))
	for i := range s.Tokens {
		out[i] = Triple{Token: s.Tokens[i], Tag: s.Tags[i], Lemma: s.Lemmas[i]}
	}
	return out
}

// Outcome is the normalization result for one sentence; Err is set when the
// sentence had to be skipped.
type Outcome struct {
	NormalizedSentence
	Err error
}

// Normalizer turns raw text into normalized sentences. It never mutates the
// models and is safe for concurrent use.
type Normalizer struct {
	models *Models
}

// NewNormalizer fails fast if the model set is incomplete.
func NewNormalizer(models *Models) (*Normalizer, error) {
	if err := models.complete(); err != nil {
		return nil, err
	}
	return &Normalizer{models: models}, nil
}

// DetectSentences splits text into sentences. Text without any non-space
// character yields no sentences.
func (n *Normalizer) DetectSentences(text string) []Sentence {
	if strings.TrimSpace(text) == "" {
		return []Sentence{}
	}

	raw := n.models.sentences.Tokenize(text)
	out := make([]Sentence, 0, len(raw))
	cursor := 0
	for _, s := range raw {
		trimmed := strings.TrimSpace(s.Text)
		if trimmed == "" {
			continue
		}
		idx := strings.Index(text[cursor:], trimmed)
		if idx < 0 {
			// Folded into the next span instead of being dropped.
			continue
		}
		end := cursor + idx + len(trimmed)
		out = append(out, Sentence{Start: cursor, End: end})
		cursor = end
	}

	if len(out) == 0 {
		out = append(out, Sentence{Start: 0, End: len(text)})
	}
	out[len(out)-1].End = len(text)
	for i := range out {
		out[i].Text = strings.TrimSpace(text[out[i].Start:out[i].End])
	}

	if log.IsLevelEnabled(log.DebugLevel) {
		texts := make([]string, len(out))
		for i, s := range out {
			texts[i] = s.Text
		}
		log.Debugf("Sentence detection: %s", strings.Join(texts, " | "))
	}
	return out
}

// Tokenize splits one sentence into word and punctuation tokens.
func (n *Normalizer) Tokenize(sentence string) []string {
	raw := n.models.tokenizer.Tokenize(sentence)
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	log.Debugf("Tokenizer: %s", strings.Join(tokens, " | "))
	return tokens
}

// TagPartsOfSpeech returns one tag per token.
func (n *Normalizer) TagPartsOfSpeech(tokens []string) ([]string, error) {
	if len(tokens) == 0 {
		return []string{}, nil
	}
	tagged := n.models.tagger.Tag(tokens)
	if len(tagged) != len(tokens) {
		return nil, &AlignmentError{Stage: StagePOS, Tokens: len(tokens), Tags: len(tagged)}
	}
	tags := make([]string, len(tagged))
	for i, t := range tagged {
		if t.Text != tokens[i] {
			return nil, &AlignmentError{Stage: StagePOS, Tokens: len(tokens), Tags: i}
		}
		tags[i] = t.Tag
	}
	log.Debugf("POS tags: %s", strings.Join(tags, " | "))
	return tags, nil
}

// Lemmatize returns one lemma per token; tokens and tags must line up.
func (n *Normalizer) Lemmatize(tokens, tags []string) ([]string, error) {
	if len(tokens) != len(tags) {
		return nil, &AlignmentError{Stage: StageLemma, Tokens: len(tokens), Tags: len(tags)}
	}
	lemmas := make([]string, len(tokens))
	for i, tok := range tokens {
		lemmas[i] = n.models.lemmatizer.lemma(tok, tags[i])
	}
	log.Debugf("Lemmatizer: %s", strings.Join(lemmas, " | "))
	return lemmas, nil
}

// NormalizeSentence runs tokenization, tagging and lemmatization on one sentence.
func (n *Normalizer) NormalizeSentence(s Sentence) (NormalizedSentence, error) {
	out := NormalizedSentence{Sentence: s}
	out.Tokens = n.Tokenize(s.Text)

	tags, err := n.TagPartsOfSpeech(out.Tokens)
	if err != nil {
		return out, err
	}
	out.Tags = tags

	lemmas, err := n.Lemmatize(out.Tokens, out.Tags)
	if err != nil {
		return out, err
	}
	out.Lemmas = lemmas
	return out, nil
}

// Normalize segments text and normalizes every sentence in order. A failed
// sentence carries its error; the others are unaffected.
func (n *Normalizer) Normalize(text string) []Outcome {
	sents := n.DetectSentences(text)
	out := make([]Outcome, len(sents))
	for i, s := range sents {
		ns, err := n.NormalizeSentence(s)
		out[i] = Outcome{NormalizedSentence: ns, Err: err}
	}
	return out
}

// Lemmas returns the lemmas of every sentence in text that normalized cleanly,
// concatenated in order.
func (n *Normalizer) Lemmas(text string) []string {
	var lemmas []string
	for _, o := range n.Normalize(text) {
		if o.Err != nil {
			log.WithError(o.Err).Warnf("Skipping sentence %q", o.Text)
			continue
		}
		lemmas = append(lemmas, o.Lemmas...)
	}
	return lemmas
}
