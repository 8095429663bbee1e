package nlp

import (
	"os"

	"github.com/neurosnap/sentences"
)

type sentenceSplitter interface {
	Tokenize(text string) []*sentences.Sentence
}

// loadSentenceModel reads punkt training data (the JSON format shipped with
// neurosnap/sentences) and builds a sentence tokenizer from it.
func loadSentenceModel(path string) (sentenceSplitter, error) {
	if path == "" {
		return nil, errEmptyPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapRead(err)
	}
	storage, err := sentences.LoadTraining(data)
	if err != nil {
		return nil, err
	}
	return sentences.NewSentenceTokenizer(storage), nil
}
