package nlp

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// ModelPaths points at the four pretrained artifacts.
type ModelPaths struct {
	Sentence string `mapstructure:"sentence" json:"sentence"`
	Token    string `mapstructure:"token" json:"token"`
	POS      string `mapstructure:"pos" json:"pos"`
	Lemma    string `mapstructure:"lemma" json:"lemma"`
}

// Option tweaks model loading.
type Option func(*loadOptions)

type loadOptions struct {
	stemLanguage string
}

// WithStemFallback makes the lemmatizer stem words missing from its dictionary
// with the snowball stemmer for language instead of just lower-casing them.
func WithStemFallback(language string) Option {
	return func(o *loadOptions) {
		o.stemLanguage = language
	}
}

// Models is the loaded, read-only set of pretrained artifacts. Every stage only
// reads from it, so one instance is shared by all concurrent messages.
type Models struct {
	paths      ModelPaths
	sentences  sentenceSplitter
	tokenizer  wordTokenizer
	tagger     posTagger
	lemmatizer *dictionaryLemmatizer
}

// Paths returns where the models were loaded from.
func (m *Models) Paths() ModelPaths {
	return m.paths
}

// LoadModels loads all four artifacts. It either returns a complete set or a
// *ModelLoadError naming the first stage that failed.
func LoadModels(paths ModelPaths, opts ...Option) (*Models, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	m := &Models{paths: paths}
	var err error

	if m.sentences, err = loadSentenceModel(paths.Sentence); err != nil {
		return nil, &ModelLoadError{Stage: StageSentence, Path: paths.Sentence, Err: err}
	}
	if m.tokenizer, err = loadTokenModel(paths.Token); err != nil {
		return nil, &ModelLoadError{Stage: StageToken, Path: paths.Token, Err: err}
	}
	if m.tagger, err = loadPOSModel(paths.POS); err != nil {
		return nil, &ModelLoadError{Stage: StagePOS, Path: paths.POS, Err: err}
	}
	if m.lemmatizer, err = loadLemmaModel(paths.Lemma, o.stemLanguage); err != nil {
		return nil, &ModelLoadError{Stage: StageLemma, Path: paths.Lemma, Err: err}
	}

	log.WithFields(log.Fields{
		"sentence": paths.Sentence,
		"token":    paths.Token,
		"pos":      paths.POS,
		"lemma":    paths.Lemma,
		"entries":  m.lemmatizer.size(),
	}).Info("Loaded NLP models")
	return m, nil
}

var errEmptyPath = errors.New("path is empty")

func (m *Models) complete() error {
	if m == nil || m.sentences == nil || m.tokenizer == nil || m.tagger == nil || m.lemmatizer == nil {
		return ErrModelsNotLoaded
	}
	return nil
}

func wrapRead(err error) error {
	return fmt.Errorf("read: %w", err)
}
