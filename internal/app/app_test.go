package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intentbot/internal/answers"
	"intentbot/internal/config"
	"intentbot/internal/nlp"
)

const fixtureDir = "../../testdata/models"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	corpus := filepath.Join(t.TempDir(), "corpus.txt")
	require.NoError(t, os.WriteFile(corpus, []byte(
		"greeting Hello there\ngreeting Hi\nprice-inquiry How much does it cost\nprice-inquiry What is the price\n"+
			"conversation-complete Bye\n"), 0o644))

	cfg := &config.Config{
		Models: nlp.ModelPaths{
			Sentence: filepath.Join(fixtureDir, "en-sent.json"),
			Token:    filepath.Join(fixtureDir, "en-token.json"),
			POS:      filepath.Join(fixtureDir, "en-pos.json"),
			Lemma:    filepath.Join(fixtureDir, "en-lemmatizer.dict"),
		},
		Answers:         answers.DefaultTable(),
		ClosingCategory: answers.DefaultClosingCategory,
	}
	cfg.Classifier.Corpus = corpus
	cfg.Classifier.Iterations = 200
	cfg.Pipeline.Workers = 2
	cfg.Database.DSN = ":memory:"
	return cfg
}

func TestNewApp(t *testing.T) {
	a, err := NewApp(context.Background(), testConfig(t), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	require.NotNil(t, a.Responder)
	require.NotNil(t, a.Store)
	assert.NotNil(t, a.HistoryStore)
	assert.NotNil(t, a.JobStore)
	assert.Nil(t, a.JobClient, "no redis address configured")
	assert.ElementsMatch(t, []string{"greeting", "price-inquiry", "conversation-complete"}, a.Classifier.Labels())
	assert.NoError(t, a.Store.Ping(context.Background()))
}

func TestNewApp_SkipClassifier(t *testing.T) {
	cfg := testConfig(t)
	cfg.Classifier.Corpus = ""
	cfg.Database.DSN = ""

	a, err := NewApp(context.Background(), cfg, Options{SkipClassifier: true})
	require.NoError(t, err)
	assert.Nil(t, a.Responder)
	assert.Nil(t, a.Store)
	assert.NotNil(t, a.Normalizer)
	assert.NoError(t, a.Close())
}

func TestNewApp_Errors(t *testing.T) {
	_, err := NewApp(context.Background(), nil, Options{})
	assert.Error(t, err)

	cfg := testConfig(t)
	cfg.Models.POS = filepath.Join(t.TempDir(), "missing.json")
	_, err = NewApp(context.Background(), cfg, Options{})
	assert.ErrorContains(t, err, "init models")

	cfg = testConfig(t)
	cfg.Database.DSN = "mysql://nope"
	_, err = NewApp(context.Background(), cfg, Options{})
	assert.ErrorContains(t, err, "init store")

	cfg = testConfig(t)
	cfg.Classifier.Corpus = filepath.Join(t.TempDir(), "missing.txt")
	_, err = NewApp(context.Background(), cfg, Options{})
	assert.ErrorContains(t, err, "init classifier")
}

func TestClassifierOptions(t *testing.T) {
	cfg := testConfig(t)
	cfg.Classifier.Cutoff = 2
	cfg.Classifier.ModelPath = "model.json"
	cfg.Classifier.Retrain = true

	opts := (&App{Config: cfg}).ClassifierOptions()
	assert.Equal(t, cfg.Classifier.Corpus, opts.Corpus)
	assert.Equal(t, "model.json", opts.ModelPath)
	assert.True(t, opts.Retrain)
	assert.Equal(t, 200, opts.Params.Iterations)
	assert.Equal(t, 2, opts.Params.Cutoff)
}
