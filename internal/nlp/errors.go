package nlp

import (
	"errors"
	"fmt"
)

// Stage names one of the four pretrained pipeline stages.
type Stage string

const (
	StageSentence Stage = "sentence"
	StageToken    Stage = "token"
	StagePOS      Stage = "pos"
	StageLemma    Stage = "lemma"
)

// ErrModelsNotLoaded is returned when a Normalizer is built without a complete model set.
var ErrModelsNotLoaded = errors.New("nlp: models not loaded")

// ModelLoadError reports which pretrained artifact failed to load.
type ModelLoadError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("nlp: load %s model %q: %v", e.Stage, e.Path, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// AlignmentError is returned when a stage's output no longer lines up
// one-to-one with the sentence tokens.
type AlignmentError struct {
	Stage  Stage
	Tokens int
	Tags   int
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("nlp: %s stage misaligned: %d tokens, %d tags", e.Stage, e.Tokens, e.Tags)
}
