package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"intentbot/internal/fileingest"
	"intentbot/pkg/categorizer"
)

// corpusExt is the extension of corpus files in a corpus directory.
const corpusExt = ".txt"

// TrainClassifier reads the corpus at corpusPath and trains a classifier on
// it. corpusPath is a corpus file or a directory whose *.txt files are read
// in path order. Every sample's text is run through normalizer first, so the
// model is trained on the same lemma tokens it will see when classifying.
func TrainClassifier(ctx context.Context, normalizer LemmaSource, corpusPath string, params categorizer.TrainingParams) (*categorizer.Model, error) {
	files, err := corpusFiles(ctx, corpusPath)
	if err != nil {
		return nil, err
	}

	var samples []categorizer.Sample
	for _, file := range files {
		fileSamples, err := categorizer.ReadSamplesFile(file)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		for i := range fileSamples {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			lemmas := normalizer.Lemmas(fileSamples[i].Text)
			if len(lemmas) == 0 {
				log.Warnf("%s:%d: no sentence normalized, training on raw tokens", file, fileSamples[i].Line)
				lemmas = lowerAll(fileSamples[i].Tokens)
			}
			fileSamples[i].Tokens = lemmas
		}
		samples = append(samples, fileSamples...)
	}

	start := time.Now()
	model, err := categorizer.Train(samples, params)
	if err != nil {
		return nil, fmt.Errorf("train on %s: %w", corpusPath, err)
	}
	log.WithFields(log.Fields{
		"corpus":     corpusPath,
		"files":      len(files),
		"samples":    len(samples),
		"labels":     len(model.Labels()),
		"predicates": model.NumPredicates(),
		"iterations": params.Iterations,
		"cutoff":     params.Cutoff,
		"took":       time.Since(start).Round(time.Millisecond),
	}).Info("Trained category model")
	return model, nil
}

// ClassifierOptions says where a classifier comes from.
type ClassifierOptions struct {
	Corpus    string
	ModelPath string // cached model; empty disables caching
	Retrain   bool   // ignore an existing cached model
	Params    categorizer.TrainingParams
}

// LoadOrTrainClassifier returns the cached model at opts.ModelPath when it
// exists and opts.Retrain is false. Otherwise it trains on opts.Corpus and,
// if a ModelPath is set, writes the result there.
func LoadOrTrainClassifier(ctx context.Context, normalizer LemmaSource, opts ClassifierOptions) (*categorizer.Model, error) {
	if opts.ModelPath != "" && !opts.Retrain {
		model, err := categorizer.LoadModelFile(opts.ModelPath)
		switch {
		case err == nil:
			log.WithFields(log.Fields{
				"path":   opts.ModelPath,
				"labels": len(model.Labels()),
			}).Info("Loaded cached category model")
			return model, nil
		case errors.Is(err, os.ErrNotExist):
			log.Infof("No cached category model at %s, training", opts.ModelPath)
		default:
			return nil, err
		}
	}

	if opts.Corpus == "" {
		return nil, errors.New("no training corpus configured")
	}
	model, err := TrainClassifier(ctx, normalizer, opts.Corpus, opts.Params)
	if err != nil {
		return nil, err
	}
	if opts.ModelPath != "" {
		if err := model.SaveFile(opts.ModelPath); err != nil {
			return nil, fmt.Errorf("cache category model: %w", err)
		}
		log.Infof("Saved category model to %s", opts.ModelPath)
	}
	return model, nil
}

func corpusFiles(ctx context.Context, corpusPath string) ([]string, error) {
	info, err := os.Stat(corpusPath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{corpusPath}, nil
	}
	metas, err := fileingest.DiscoverFiles(ctx, corpusPath, corpusExt)
	if err != nil {
		return nil, fmt.Errorf("scan corpus directory %s: %w", corpusPath, err)
	}
	if len(metas) == 0 {
		return nil, fmt.Errorf("corpus directory %s has no %s files: %w", corpusPath, corpusExt, categorizer.ErrEmptyCorpus)
	}
	files := make([]string, len(metas))
	for i, m := range metas {
		files[i] = m.Path
	}
	return files, nil
}

func lowerAll(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = strings.ToLower(t)
	}
	return out
}
