package categorizer

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

// Model is a trained maximum-entropy document categorizer.
// It is immutable after training or loading and safe for concurrent use.
type Model struct {
	outcomes   []string
	predicates []string
	predIndex  map[string]int
	weights    [][]float64 // [predicate][outcome]
}

var _ Categorizer = (*Model)(nil)

// Labels returns the trained label set in training order.
func (m *Model) Labels() []string {
	out := make([]string, len(m.outcomes))
	copy(out, m.outcomes)
	return out
}

// HasLabel reports whether label belongs to the trained label set.
func (m *Model) HasLabel(label string) bool {
	for _, o := range m.outcomes {
		if o == label {
			return true
		}
	}
	return false
}

// NumPredicates is the number of bag-of-words predicates that survived the cutoff.
func (m *Model) NumPredicates() int {
	return len(m.predicates)
}

// Categorize returns a probability per label. Tokens the model never saw are
// ignored; no known tokens at all gives the uniform distribution.
func (m *Model) Categorize(tokens []string) []float64 {
	probs := make([]float64, len(m.outcomes))
	ev := buildEvent(m.predIndex, tokens)
	m.eval(ev.preds, ev.counts, probs)
	return probs
}

// BestCategory returns the argmax label. Ties go to the label seen first during
// training.
func (m *Model) BestCategory(probs []float64) string {
	best := bestIndex(probs)
	if best < 0 || best >= len(m.outcomes) {
		return ""
	}
	return m.outcomes[best]
}

// Classify returns the best label and its probability.
func (m *Model) Classify(tokens []string) (string, float64) {
	probs := m.Categorize(tokens)
	best := bestIndex(probs)
	if best < 0 {
		return "", 0
	}
	return m.outcomes[best], probs[best]
}

// Scores maps every label to its probability.
func (m *Model) Scores(tokens []string) map[string]float64 {
	probs := m.Categorize(tokens)
	out := make(map[string]float64, len(probs))
	for i, p := range probs {
		out[m.outcomes[i]] = p
	}
	return out
}

func bestIndex(probs []float64) int {
	best := -1
	for i, p := range probs {
		if best < 0 || p > probs[best] {
			best = i
		}
	}
	return best
}

// eval writes the normalized outcome distribution for the given predicates into probs.
func (m *Model) eval(preds []int, counts []float64, probs []float64) {
	clear(probs)
	for j, pi := range preds {
		w := m.weights[pi]
		for o := range probs {
			probs[o] += counts[j] * w[o]
		}
	}

	maxScore := math.Inf(-1)
	for _, s := range probs {
		if s > maxScore {
			maxScore = s
		}
	}
	sum := 0.0
	for o, s := range probs {
		probs[o] = math.Exp(s - maxScore)
		sum += probs[o]
	}
	for o := range probs {
		probs[o] /= sum
	}
}

// --- Persistence ---

const modelFormatVersion = 1

type modelFile struct {
	Version    int         `json:"version"`
	Outcomes   []string    `json:"outcomes"`
	Predicates []string    `json:"predicates"`
	Weights    [][]float64 `json:"weights"`
}

// Save writes the model as JSON.
func (m *Model) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	return enc.Encode(modelFile{
		Version:    modelFormatVersion,
		Outcomes:   m.outcomes,
		Predicates: m.predicates,
		Weights:    m.weights,
	})
}

// SaveFile writes the model to path, replacing any previous file atomically.
func (m *Model) SaveFile(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".model-*.json")
	if err != nil {
		return fmt.Errorf("categorizer: create temp model file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := m.Save(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("categorizer: encode model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("categorizer: close temp model file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("categorizer: write model %s: %w", path, err)
	}
	return nil
}

// LoadModel reads a model written by Save.
func LoadModel(r io.Reader) (*Model, error) {
	var f modelFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("categorizer: decode model: %w", err)
	}
	if f.Version != modelFormatVersion {
		return nil, fmt.Errorf("categorizer: unsupported model version %d", f.Version)
	}
	if len(f.Outcomes) == 0 {
		return nil, fmt.Errorf("categorizer: model has no outcomes")
	}
	if len(f.Weights) != len(f.Predicates) {
		return nil, fmt.Errorf("categorizer: model has %d predicates but %d weight rows", len(f.Predicates), len(f.Weights))
	}

	predIndex := make(map[string]int, len(f.Predicates))
	for i, p := range f.Predicates {
		if _, dup := predIndex[p]; dup {
			return nil, fmt.Errorf("categorizer: duplicate predicate %q", p)
		}
		if len(f.Weights[i]) != len(f.Outcomes) {
			return nil, fmt.Errorf("categorizer: predicate %q has %d weights, want %d", p, len(f.Weights[i]), len(f.Outcomes))
		}
		predIndex[p] = i
	}
	seen := make(map[string]bool, len(f.Outcomes))
	for _, o := range f.Outcomes {
		if o == "" || seen[o] {
			return nil, fmt.Errorf("categorizer: invalid or duplicate outcome %q", o)
		}
		seen[o] = true
	}

	return &Model{
		outcomes:   f.Outcomes,
		predicates: f.Predicates,
		predIndex:  predIndex,
		weights:    f.Weights,
	}, nil
}

// LoadModelFile reads a model from path.
func LoadModelFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("categorizer: open model %s: %w", path, err)
	}
	defer f.Close()
	return LoadModel(f)
}
