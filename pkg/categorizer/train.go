package categorizer

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
)

// TrainingParams controls the maximum-entropy fit.
type TrainingParams struct {
	// Iterations is the maximum number of GIS passes over the corpus.
	Iterations int `json:"iterations"`
	// Cutoff drops predicates seen fewer than Cutoff times in the whole corpus.
	Cutoff int `json:"cutoff"`
}

// DefaultTrainingParams mirrors the usual maxent defaults.
func DefaultTrainingParams() TrainingParams {
	return TrainingParams{Iterations: 100, Cutoff: 5}
}

// convergenceThreshold stops training once the log-likelihood settles.
const convergenceThreshold = 1e-4

// event is one training sample projected onto the retained predicates.
type event struct {
	outcome int
	preds   []int
	counts  []float64
	total   float64
}

// Train fits a bag-of-words maximum-entropy model with Generalized Iterative
// Scaling. Labels keep the order in which they first appear in samples, and all
// numeric loops walk slices in that order, so a fixed corpus and fixed params
// always produce the same model.
func Train(samples []Sample, params TrainingParams) (*Model, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyCorpus
	}
	if params.Iterations <= 0 {
		return nil, fmt.Errorf("categorizer: iterations must be positive, got %d", params.Iterations)
	}
	if params.Cutoff < 0 {
		return nil, fmt.Errorf("categorizer: cutoff must not be negative, got %d", params.Cutoff)
	}

	outcomeIndex := make(map[string]int)
	var outcomes []string
	predCounts := make(map[string]int)
	var predOrder []string

	for _, s := range samples {
		if s.Category == "" {
			return nil, &CorpusFormatError{Line: s.Line, Reason: "empty category label"}
		}
		if _, ok := outcomeIndex[s.Category]; !ok {
			outcomeIndex[s.Category] = len(outcomes)
			outcomes = append(outcomes, s.Category)
		}
		for _, tok := range s.Tokens {
			p := featurePrefix + tok
			if _, seen := predCounts[p]; !seen {
				predOrder = append(predOrder, p)
			}
			predCounts[p]++
		}
	}

	predIndex := make(map[string]int, len(predOrder))
	predicates := make([]string, 0, len(predOrder))
	for _, p := range predOrder {
		if predCounts[p] < params.Cutoff {
			continue
		}
		predIndex[p] = len(predicates)
		predicates = append(predicates, p)
	}

	events := make([]event, 0, len(samples))
	correction := 0.0
	for _, s := range samples {
		ev := buildEvent(predIndex, s.Tokens)
		ev.outcome = outcomeIndex[s.Category]
		if ev.total > correction {
			correction = ev.total
		}
		events = append(events, ev)
	}

	numOutcomes := len(outcomes)
	weights := make([][]float64, len(predicates))
	observed := make([][]float64, len(predicates))
	expected := make([][]float64, len(predicates))
	for i := range predicates {
		weights[i] = make([]float64, numOutcomes)
		observed[i] = make([]float64, numOutcomes)
		expected[i] = make([]float64, numOutcomes)
	}
	for _, ev := range events {
		for j, pi := range ev.preds {
			observed[pi][ev.outcome] += ev.counts[j]
		}
	}

	m := &Model{
		outcomes:   outcomes,
		predicates: predicates,
		predIndex:  predIndex,
		weights:    weights,
	}

	log.WithFields(log.Fields{
		"samples":    len(samples),
		"outcomes":   numOutcomes,
		"predicates": len(predicates),
		"dropped":    len(predOrder) - len(predicates),
	}).Debug("categorizer: indexed training events")

	// Nothing to fit: every distribution is already what the data says.
	if numOutcomes == 1 || correction == 0 {
		return m, nil
	}

	probs := make([]float64, numOutcomes)
	prevLL := 0.0
	for iter := 1; iter <= params.Iterations; iter++ {
		for pi := range expected {
			clear(expected[pi])
		}

		ll := 0.0
		for _, ev := range events {
			m.eval(ev.preds, ev.counts, probs)
			for j, pi := range ev.preds {
				for o := 0; o < numOutcomes; o++ {
					if observed[pi][o] > 0 {
						expected[pi][o] += ev.counts[j] * probs[o]
					}
				}
			}
			ll += math.Log(math.Max(probs[ev.outcome], math.SmallestNonzeroFloat64))
		}

		// Only (predicate, outcome) pairs that occur in the corpus carry weight.
		for pi := range weights {
			for o := 0; o < numOutcomes; o++ {
				if observed[pi][o] == 0 || expected[pi][o] <= 0 {
					continue
				}
				weights[pi][o] += (math.Log(observed[pi][o]) - math.Log(expected[pi][o])) / correction
			}
		}

		if iter%50 == 0 {
			log.Debugf("categorizer: iteration %d log-likelihood %.6f", iter, ll)
		}
		if iter > 1 && math.Abs(ll-prevLL) < convergenceThreshold {
			log.Debugf("categorizer: converged after %d iterations (log-likelihood %.6f)", iter, ll)
			break
		}
		prevLL = ll
	}

	return m, nil
}

// buildEvent counts retained predicates in first-occurrence order.
func buildEvent(predIndex map[string]int, tokens []string) event {
	var ev event
	pos := make(map[int]int, len(tokens))
	for _, tok := range tokens {
		pi, ok := predIndex[featurePrefix+tok]
		if !ok {
			continue
		}
		if j, seen := pos[pi]; seen {
			ev.counts[j]++
		} else {
			pos[pi] = len(ev.preds)
			ev.preds = append(ev.preds, pi)
			ev.counts = append(ev.counts, 1)
		}
		ev.total++
	}
	return ev
}
