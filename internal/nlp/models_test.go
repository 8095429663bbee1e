package nlp

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureDir = "../../testdata/models"

func fixturePaths() ModelPaths {
	return ModelPaths{
		Sentence: filepath.Join(fixtureDir, "en-sent.json"),
		Token:    filepath.Join(fixtureDir, "en-token.json"),
		POS:      filepath.Join(fixtureDir, "en-pos.json"),
		Lemma:    filepath.Join(fixtureDir, "en-lemmatizer.dict"),
	}
}

func loadFixtures(t *testing.T, opts ...Option) *Models {
	t.Helper()
	m, err := LoadModels(fixturePaths(), opts...)
	require.NoError(t, err)
	return m
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadModels(t *testing.T) {
	m := loadFixtures(t)
	assert.NoError(t, m.complete())
	assert.Equal(t, fixturePaths(), m.Paths())
	assert.Greater(t, m.lemmatizer.size(), 0)
}

func TestLoadModels_NamesFailingStage(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	cases := []struct {
		name  string
		edit  func(p *ModelPaths)
		stage Stage
	}{
		{"sentence missing", func(p *ModelPaths) { p.Sentence = missing }, StageSentence},
		{"sentence garbage", func(p *ModelPaths) { p.Sentence = writeFile(t, "sent.json", "not json") }, StageSentence},
		{"token missing", func(p *ModelPaths) { p.Token = missing }, StageToken},
		{"token unknown kind", func(p *ModelPaths) { p.Token = writeFile(t, "tok.json", `{"kind":"bpe"}`) }, StageToken},
		{"token bad pattern", func(p *ModelPaths) {
			p.Token = writeFile(t, "tok.json", `{"kind":"regexp","pattern":"(["}`)
		}, StageToken},
		{"pos empty path", func(p *ModelPaths) { p.POS = "" }, StagePOS},
		{"pos no classes", func(p *ModelPaths) { p.POS = writeFile(t, "pos.json", `{"weights":{}}`) }, StagePOS},
		{"lemma missing", func(p *ModelPaths) { p.Lemma = missing }, StageLemma},
		{"lemma malformed", func(p *ModelPaths) { p.Lemma = writeFile(t, "lemma.dict", "does VBZ\n") }, StageLemma},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			paths := fixturePaths()
			tc.edit(&paths)

			m, err := LoadModels(paths)
			require.Error(t, err)
			assert.Nil(t, m)

			var loadErr *ModelLoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, tc.stage, loadErr.Stage)
			assert.Contains(t, err.Error(), string(tc.stage))
		})
	}
}

func TestLoadModels_MissingFileUnwrapsToNotExist(t *testing.T) {
	paths := fixturePaths()
	paths.Lemma = filepath.Join(t.TempDir(), "gone.dict")

	_, err := LoadModels(paths)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadModels_RejectsUnknownStemLanguage(t *testing.T) {
	_, err := LoadModels(fixturePaths(), WithStemFallback("klingon"))
	var loadErr *ModelLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, StageLemma, loadErr.Stage)
}

func TestLemmatizerLookupOrder(t *testing.T) {
	path := writeFile(t, "lemma.dict", "# comment\n\ndoes\tVBZ\tdo\nsaw\tVBD\tsee\nsaw\tNN\tsaw\n")

	l, err := loadLemmaModel(path, "")
	require.NoError(t, err)

	assert.Equal(t, "do", l.lemma("does", "VBZ"))
	assert.Equal(t, "do", l.lemma("Does", "VBZ"), "case-folded lookup")
	assert.Equal(t, "saw", l.lemma("saw", "NN"))
	assert.Equal(t, "see", l.lemma("saw", "VBD"))
	assert.Equal(t, "see", l.lemma("saw", "JJ"), "first entry wins without a tag match")
	assert.Equal(t, "running", l.lemma("Running", "VBG"))

	stemming, err := loadLemmaModel(path, "english")
	require.NoError(t, err)
	assert.Equal(t, "run", stemming.lemma("Running", "VBG"))
	assert.Equal(t, "?", stemming.lemma("?", "."), "punctuation is never stemmed")
}
