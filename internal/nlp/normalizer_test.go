package nlp

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jdkato/prose/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	n, err := NewNormalizer(loadFixtures(t))
	require.NoError(t, err)
	return n
}

func TestNewNormalizer_RequiresModels(t *testing.T) {
	_, err := NewNormalizer(nil)
	assert.ErrorIs(t, err, ErrModelsNotLoaded)

	_, err = NewNormalizer(&Models{})
	assert.ErrorIs(t, err, ErrModelsNotLoaded)
}

func TestDetectSentences(t *testing.T) {
	n := newNormalizer(t)

	text := "Hello there. How much does it cost?"
	sents := n.DetectSentences(text)
	require.Len(t, sents, 2)
	assert.Equal(t, "Hello there.", sents[0].Text)
	assert.Equal(t, "How much does it cost?", sents[1].Text)
}

func TestDetectSentences_SpansReconstructInput(t *testing.T) {
	n := newNormalizer(t)

	inputs := []string{
		"Hello there. How much does it cost?",
		"  Hi!   What is the price?  Thanks, bye.\n",
		"Dr. Smith is here. Ok",
		"no punctuation at all",
		"...",
	}
	for _, in := range inputs {
		sents := n.DetectSentences(in)
		require.NotEmpty(t, sents, in)

		var b strings.Builder
		prev := 0
		for _, s := range sents {
			assert.Equal(t, prev, s.Start, "spans are contiguous")
			assert.NotEmpty(t, s.Text)
			assert.Equal(t, strings.TrimSpace(in[s.Start:s.End]), s.Text)
			b.WriteString(in[s.Start:s.End])
			prev = s.End
		}
		assert.Equal(t, in, b.String())
	}
}

func TestDetectSentences_Empty(t *testing.T) {
	n := newNormalizer(t)

	assert.Empty(t, n.DetectSentences(""))
	assert.Empty(t, n.DetectSentences(" \t\n "))
	assert.Empty(t, n.Normalize(""))
}

func TestTokenize(t *testing.T) {
	n := newNormalizer(t)

	assert.Equal(t, []string{"How", "much", "does", "it", "cost", "?"}, n.Tokenize("How much does it cost?"))
	assert.Equal(t, n.Tokenize("Hi, you!"), n.Tokenize("Hi, you!"))
	assert.Empty(t, n.Tokenize("   "))
}

func TestNormalizeSentence(t *testing.T) {
	n := newNormalizer(t)

	ns, err := n.NormalizeSentence(Sentence{Text: "How much does it cost?"})
	require.NoError(t, err)

	assert.Len(t, ns.Tags, len(ns.Tokens))
	assert.Len(t, ns.Lemmas, len(ns.Tokens))
	assert.Equal(t, []string{"WRB", "JJ", "VBZ", "PRP", "NN", "."}, ns.Tags)
	assert.Equal(t, []string{"how", "much", "do", "it", "cost", "?"}, ns.Lemmas)

	triples := ns.Triples()
	require.Len(t, triples, 6)
	assert.Equal(t, Triple{Token: "does", Tag: "VBZ", Lemma: "do"}, triples[2])
}

func TestNormalize_PunctuationOnly(t *testing.T) {
	n := newNormalizer(t)

	outcomes := n.Normalize("...")
	require.NotEmpty(t, outcomes)
	for _, o := range outcomes {
		require.NoError(t, o.Err)
		assert.NotEmpty(t, o.Tokens)
		assert.Len(t, o.Lemmas, len(o.Tokens))
	}
}

func TestLemmas(t *testing.T) {
	n := newNormalizer(t)
	assert.Equal(t, []string{"hello", ".", "how", "much", "be", "it", "?"}, n.Lemmas("Hello. How much is it?"))
}

type droppingTagger struct{}

func (droppingTagger) Tag(words []string) []tag.Token {
	out := make([]tag.Token, 0, len(words))
	for _, w := range words[:len(words)-1] {
		out = append(out, tag.Token{Text: w, Tag: "NN"})
	}
	return out
}

func TestTagPartsOfSpeech_Misaligned(t *testing.T) {
	m := loadFixtures(t)
	m.tagger = droppingTagger{}
	n, err := NewNormalizer(m)
	require.NoError(t, err)

	_, err = n.TagPartsOfSpeech([]string{"How", "much", "?"})
	var alignErr *AlignmentError
	require.True(t, errors.As(err, &alignErr))
	assert.Equal(t, StagePOS, alignErr.Stage)
	assert.Equal(t, 3, alignErr.Tokens)
	assert.Equal(t, 2, alignErr.Tags)

	outcomes := n.Normalize("Hello. Bye.")
	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.Error(t, o.Err)
	}
	assert.Empty(t, n.Lemmas("Hello. Bye."))
}

func TestLemmatize_Misaligned(t *testing.T) {
	n := newNormalizer(t)

	_, err := n.Lemmatize([]string{"a", "b"}, []string{"DT"})
	var alignErr *AlignmentError
	require.True(t, errors.As(err, &alignErr))
	assert.Equal(t, StageLemma, alignErr.Stage)
}

func TestNormalizer_ConcurrentUse(t *testing.T) {
	n := newNormalizer(t)
	want := n.Lemmas("Hello there. How much does it cost?")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, n.Lemmas("Hello there. How much does it cost?"))
		}()
	}
	wg.Wait()
}
