package categorizer

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testParams = TrainingParams{Iterations: 500, Cutoff: 0}

func mustSamples(t *testing.T, corpus string) []Sample {
	t.Helper()
	samples, err := ReadSamples(strings.NewReader(corpus))
	require.NoError(t, err)
	return samples
}

const botCorpus = `greeting Hello there
greeting Hi how are you
greeting Good morning
price-inquiry How much does it cost
price-inquiry What is the price
price-inquiry how much is the car
product-inquiry What product do you sell
product-inquiry Tell me about the car
nice-ending Goodbye and thanks
nice-ending See you later
`

func TestTrain_PriceInquiryScenario(t *testing.T) {
	samples := mustSamples(t, "greeting Hello there\nprice-inquiry How much does it cost\n")

	model, err := Train(samples, testParams)
	require.NoError(t, err)

	label, score := model.Classify(strings.Fields("how much is it"))
	assert.Equal(t, "price-inquiry", label)
	assert.Greater(t, score, 0.5)
	assert.LessOrEqual(t, score, 1.0)
}

func TestTrain_SingleLabelNeverFails(t *testing.T) {
	model, err := Train(mustSamples(t, "greeting Hello there\ngreeting hi\n"), testParams)
	require.NoError(t, err)

	for _, input := range [][]string{nil, {}, {"completely", "unknown"}, {"Hello"}, {"..."}} {
		label, score := model.Classify(input)
		assert.Equal(t, "greeting", label)
		assert.InDelta(t, 1.0, score, 1e-12)
	}
}

func TestTrain_ProbabilitiesSumToOne(t *testing.T) {
	model, err := Train(mustSamples(t, botCorpus), testParams)
	require.NoError(t, err)
	assert.Equal(t, []string{"greeting", "price-inquiry", "product-inquiry", "nice-ending"}, model.Labels())

	probs := model.Categorize(strings.Fields("what is the price of the car"))
	require.Len(t, probs, 4)
	sum := 0.0
	for _, p := range probs {
		assert.False(t, math.IsNaN(p))
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Equal(t, "price-inquiry", model.BestCategory(probs))

	scores := model.Scores(strings.Fields("Goodbye"))
	assert.Len(t, scores, 4)
	label, _ := model.Classify(strings.Fields("Goodbye"))
	assert.Equal(t, "nice-ending", label)
}

func TestClassify_EmptyInputIsUniformAndBreaksTiesByTrainingOrder(t *testing.T) {
	model, err := Train(mustSamples(t, botCorpus), testParams)
	require.NoError(t, err)

	probs := model.Categorize(nil)
	for _, p := range probs {
		assert.InDelta(t, 0.25, p, 1e-12)
	}
	label, score := model.Classify(nil)
	assert.Equal(t, "greeting", label)
	assert.InDelta(t, 0.25, score, 1e-12)
}

func TestTrain_Deterministic(t *testing.T) {
	samples := mustSamples(t, botCorpus)
	first, err := Train(samples, testParams)
	require.NoError(t, err)
	second, err := Train(mustSamples(t, botCorpus), testParams)
	require.NoError(t, err)

	heldOut := []string{
		"how much", "hello", "tell me about it", "bye", "", "price please", "what do you sell",
	}
	for _, text := range heldOut {
		l1, s1 := first.Classify(strings.Fields(text))
		l2, s2 := second.Classify(strings.Fields(text))
		assert.Equal(t, l1, l2, text)
		assert.Equal(t, s1, s2, text)

		// repeated calls do not drift
		l3, s3 := first.Classify(strings.Fields(text))
		assert.Equal(t, l1, l3)
		assert.Equal(t, s1, s3)
	}
}

func TestTrain_CutoffDropsRarePredicates(t *testing.T) {
	samples := mustSamples(t, botCorpus)

	all, err := Train(samples, TrainingParams{Iterations: 10, Cutoff: 0})
	require.NoError(t, err)
	pruned, err := Train(samples, TrainingParams{Iterations: 10, Cutoff: 2})
	require.NoError(t, err)
	assert.Less(t, pruned.NumPredicates(), all.NumPredicates())

	// Everything is below a huge cutoff: the model degenerates to uniform.
	none, err := Train(samples, TrainingParams{Iterations: 10, Cutoff: 1000})
	require.NoError(t, err)
	assert.Zero(t, none.NumPredicates())
	label, _ := none.Classify(strings.Fields("how much"))
	assert.Equal(t, "greeting", label)
}

func TestTrain_InvalidParams(t *testing.T) {
	samples := mustSamples(t, botCorpus)

	_, err := Train(nil, testParams)
	assert.ErrorIs(t, err, ErrEmptyCorpus)

	_, err = Train(samples, TrainingParams{Iterations: 0})
	assert.Error(t, err)

	_, err = Train(samples, TrainingParams{Iterations: 1, Cutoff: -1})
	assert.Error(t, err)

	_, err = Train([]Sample{{Category: "", Tokens: []string{"x"}, Line: 3}}, testParams)
	var formatErr *CorpusFormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, 3, formatErr.Line)
}

func TestModel_SaveAndLoadPreserveScoring(t *testing.T) {
	model, err := Train(mustSamples(t, botCorpus), testParams)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "doccat.json")
	require.NoError(t, model.SaveFile(path))

	loaded, err := LoadModelFile(path)
	require.NoError(t, err)
	assert.Equal(t, model.Labels(), loaded.Labels())

	for _, text := range []string{"how much is the car", "hello", ""} {
		l1, s1 := model.Classify(strings.Fields(text))
		l2, s2 := loaded.Classify(strings.Fields(text))
		assert.Equal(t, l1, l2)
		assert.InDelta(t, s1, s2, 1e-12)
	}
	assert.True(t, loaded.HasLabel("nice-ending"))
	assert.False(t, loaded.HasLabel("cfa"))
}

func TestLoadModel_RejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":          "{",
		"wrong version":     `{"version": 9, "outcomes": ["a"], "predicates": [], "weights": []}`,
		"no outcomes":       `{"version": 1, "outcomes": [], "predicates": [], "weights": []}`,
		"row mismatch":      `{"version": 1, "outcomes": ["a"], "predicates": ["bow=x"], "weights": []}`,
		"column mismatch":   `{"version": 1, "outcomes": ["a", "b"], "predicates": ["bow=x"], "weights": [[1]]}`,
		"duplicate outcome": `{"version": 1, "outcomes": ["a", "a"], "predicates": [], "weights": []}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadModel(bytes.NewBufferString(body))
			assert.Error(t, err)
		})
	}
}
