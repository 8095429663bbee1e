package app

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"intentbot/internal/answers"
	"intentbot/internal/config"
	"intentbot/internal/inputprocessor"
	"intentbot/internal/nlp"
	"intentbot/internal/services"
	"intentbot/internal/store"
	"intentbot/internal/store/local"
	"intentbot/internal/store/primary"
	"intentbot/pkg/categorizer"
)

type App struct {
	Config *config.Config

	Models     *nlp.Models
	Normalizer *nlp.Normalizer
	Classifier *categorizer.Model
	Resolver   *answers.Resolver

	// Store is nil when database.dsn is empty; HistoryStore and JobStore
	// are then nil as well.
	Store        store.Store
	HistoryStore store.HistoryStore
	JobStore     store.JobStore
	// JobClient is nil when redis.address is empty.
	JobClient store.JobClient

	InputProcessor inputprocessor.Processor

	// --- Initialized Services ---
	Responder *services.ResponderService
}

// Options select which parts of the pipeline NewApp builds.
type Options struct {
	// SkipClassifier stops after the models and stores; Responder stays nil.
	// Used by commands that train or only read history.
	SkipClassifier bool
}

// NewApp loads the models, opens the configured stores and builds the
// responder. Anything opened before a failure is closed again.
func NewApp(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app config is nil")
	}
	app := &App{
		Config:         cfg,
		InputProcessor: inputprocessor.New(),
	}

	if err := app.initModels(); err != nil {
		return nil, err
	}
	if err := app.initStore(ctx); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	if err := app.initJobClient(); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	if !opts.SkipClassifier {
		if err := app.initClassifier(ctx); err != nil {
			app.cleanupPartialInit()
			return nil, err
		}
		if err := app.initResponder(); err != nil {
			app.cleanupPartialInit()
			return nil, err
		}
	}

	log.Debug("Application initialization complete.")
	return app, nil
}

// --- Private Helper Methods ---

func (a *App) initModels() error {
	var modelOpts []nlp.Option
	if lang := a.Config.StemLanguage(); lang != "" {
		modelOpts = append(modelOpts, nlp.WithStemFallback(lang))
	}
	models, err := nlp.LoadModels(a.Config.Models, modelOpts...)
	if err != nil {
		return fmt.Errorf("init models: %w", err)
	}
	normalizer, err := nlp.NewNormalizer(models)
	if err != nil {
		return fmt.Errorf("init normalizer: %w", err)
	}
	a.Models = models
	a.Normalizer = normalizer
	a.Resolver = answers.NewResolver(a.Config.Answers, a.Config.ClosingCategory)
	return nil
}

func (a *App) initStore(ctx context.Context) error {
	driver, conn, err := config.ParseDSN(a.Config.Database.DSN)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}

	var s store.Store
	switch driver {
	case config.DriverNone:
		log.Debug("No database configured, classification history disabled.")
		return nil
	case config.DriverPostgres:
		s, err = primary.NewPrimaryStore(ctx, conn)
	case config.DriverSQLite:
		s, err = local.NewLocalStore(ctx, conn)
	}
	if err != nil {
		return fmt.Errorf("init %s store: %w", driver, err)
	}
	a.Store = s
	a.HistoryStore = s
	a.JobStore = s
	return nil
}

func (a *App) initJobClient() error {
	if a.Config.Redis.Address == "" {
		log.Debug("No redis address configured, background jobs disabled.")
		return nil
	}
	a.JobClient = store.NewAsynqJobClient(a.RedisOpt(), a.JobStore)
	return nil
}

// RedisOpt is the asynq connection for redis.address.
func (a *App) RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     a.Config.Redis.Address,
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
	}
}

// ClassifierOptions maps the classifier config section onto training options.
func (a *App) ClassifierOptions() services.ClassifierOptions {
	c := a.Config.Classifier
	return services.ClassifierOptions{
		Corpus:    c.Corpus,
		ModelPath: c.ModelPath,
		Retrain:   c.Retrain,
		Params:    categorizer.TrainingParams{Iterations: c.Iterations, Cutoff: c.Cutoff},
	}
}

func (a *App) initClassifier(ctx context.Context) error {
	model, err := services.LoadOrTrainClassifier(ctx, a.Normalizer, a.ClassifierOptions())
	if err != nil {
		return fmt.Errorf("init classifier: %w", err)
	}
	a.Classifier = model

	var unanswered []string
	for _, label := range a.Resolver.Missing(model.Labels()) {
		// The closing category ends a conversation and needs no reply.
		if label != a.Resolver.ClosingCategory() {
			unanswered = append(unanswered, label)
		}
	}
	if len(unanswered) > 0 {
		log.Warnf("No answer configured for categories: %v", unanswered)
	}
	return nil
}

func (a *App) initResponder() error {
	responder, err := services.NewResponderService(services.ResponderDeps{
		Normalizer: a.Normalizer,
		Classifier: a.Classifier,
		Resolver:   a.Resolver,
		History:    a.HistoryStore,
		Workers:    a.Config.Pipeline.Workers,
	})
	if err != nil {
		return fmt.Errorf("init responder: %w", err)
	}
	a.Responder = responder
	return nil
}

// Close releases the job client and the store.
func (a *App) Close() error {
	var firstErr error
	if a.JobClient != nil {
		if err := a.JobClient.Close(); err != nil {
			firstErr = err
		}
		a.JobClient = nil
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		a.Store = nil
	}
	return firstErr
}

func (a *App) cleanupPartialInit() {
	if err := a.Close(); err != nil {
		log.WithError(err).Warn("Error closing resources after failed initialization")
	}
}
