package services

import (
	"intentbot/internal/nlp"
)

// TextNormalizer is the part of the NLP pipeline the responder drives one
// stage at a time. *nlp.Normalizer implements it.
type TextNormalizer interface {
	DetectSentences(text string) []nlp.Sentence
	Tokenize(sentence string) []string
	TagPartsOfSpeech(tokens []string) ([]string, error)
	Lemmatize(tokens, tags []string) ([]string, error)
}

// LemmaSource turns free text into lemma tokens. *nlp.Normalizer implements it.
type LemmaSource interface {
	Lemmas(text string) []string
}

var (
	_ TextNormalizer = (*nlp.Normalizer)(nil)
	_ LemmaSource    = (*nlp.Normalizer)(nil)
)

// Stage is how far a sentence got through the pipeline.
type Stage string

const (
	StageReceived   Stage = "received"
	StageSegmented  Stage = "segmented"
	StageTokenized  Stage = "tokenized"
	StageTagged     Stage = "tagged"
	StageLemmatized Stage = "lemmatized"
	StageClassified Stage = "classified"
)
