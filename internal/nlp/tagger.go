package nlp

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jdkato/prose/tag"
)

type posTagger interface {
	Tag(words []string) []tag.Token
}

// posModelFile holds averaged-perceptron weights:
// weights[feature][tag], a tag dictionary for unambiguous words, and the tag set.
type posModelFile struct {
	Weights map[string]map[string]float64 `json:"weights"`
	Tags    map[string]string             `json:"tags"`
	Classes []string                      `json:"classes"`
}

func loadPOSModel(path string) (posTagger, error) {
	if path == "" {
		return nil, errEmptyPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapRead(err)
	}
	var f posModelFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode pos model: %w", err)
	}
	if len(f.Classes) == 0 {
		return nil, fmt.Errorf("pos model declares no tag classes")
	}
	if f.Weights == nil {
		f.Weights = map[string]map[string]float64{}
	}
	if f.Tags == nil {
		f.Tags = map[string]string{}
	}
	return tag.NewTrainedPerceptronTagger(tag.NewAveragedPerceptron(f.Weights, f.Tags, f.Classes)), nil
}
