package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kljensen/snowball"
	log "github.com/sirupsen/logrus"
)

func (c *Config) Validate() error {
	// Model artifacts
	if c.Models.Sentence == "" || c.Models.Token == "" || c.Models.POS == "" || c.Models.Lemma == "" {
		return errors.New("models.sentence, models.token, models.pos and models.lemma are required")
	}
	if c.Lemmatizer.StemFallback {
		if c.Lemmatizer.Language == "" {
			return errors.New("lemmatizer.language is required when lemmatizer.stem_fallback is true")
		}
		if _, err := snowball.Stem("test", c.Lemmatizer.Language, true); err != nil {
			return fmt.Errorf("lemmatizer.language %q: %w", c.Lemmatizer.Language, err)
		}
	}

	// Classifier
	if c.Classifier.Corpus == "" && c.Classifier.ModelPath == "" {
		return errors.New("classifier.corpus or classifier.model_path is required")
	}
	if c.Classifier.Retrain && c.Classifier.Corpus == "" {
		return errors.New("classifier.corpus is required when classifier.retrain is true")
	}
	if c.Classifier.Iterations <= 0 {
		return errors.New("classifier.iterations must be a positive integer")
	}
	if c.Classifier.Cutoff < 0 {
		return errors.New("classifier.cutoff must not be negative")
	}

	if c.Pipeline.Workers <= 0 {
		return errors.New("pipeline.workers must be a positive integer")
	}

	for label, answer := range c.Answers {
		if strings.TrimSpace(label) == "" {
			return errors.New("answers contains an empty category")
		}
		if answer == "" {
			return fmt.Errorf("answers.%s is empty", label)
		}
	}

	// Database
	if _, _, err := ParseDSN(c.Database.DSN); err != nil {
		return err
	}

	// Worker config
	if c.Worker.Concurrency <= 0 {
		return errors.New("worker.concurrency must be a positive integer")
	}
	if len(c.Worker.Queues) == 0 {
		return errors.New("worker.queues must define at least one queue")
	}
	for name, priority := range c.Worker.Queues {
		if name == "" {
			return errors.New("worker.queues contains an empty queue name")
		}
		if priority <= 0 {
			return fmt.Errorf("worker.queues priority for queue '%s' must be positive", name)
		}
	}

	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	return nil
}
