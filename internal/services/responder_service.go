package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"intentbot/internal/answers"
	"intentbot/internal/models"
	"intentbot/internal/nlp"
	"intentbot/internal/store"
	"intentbot/internal/util"
	"intentbot/pkg/categorizer"
)

// PingCommand makes the bot answer with its round-trip time instead of classifying.
const PingCommand = "!ping"

// SentenceResult is the pipeline outcome for one sentence. Err is set when the
// sentence failed; Stage is the last stage it completed.
type SentenceResult struct {
	Index    int      `json:"index"`
	Text     string   `json:"text"`
	Start    int      `json:"start"`
	End      int      `json:"end"`
	Tokens   []string `json:"tokens"`
	Tags     []string `json:"tags"`
	Lemmas   []string `json:"lemmas"`
	Category string   `json:"category,omitempty"`
	Score    float64  `json:"score"`
	Stage    Stage    `json:"stage"`
	Err      error    `json:"-"`
	Error    string   `json:"error,omitempty"`
}

// MessageResult holds the sentence results of one message in sentence order.
type MessageResult struct {
	Text      string           `json:"text"`
	Sentences []SentenceResult `json:"sentences"`
}

// Classified converts the results for the answer resolver.
func (r *MessageResult) Classified() []answers.Classified {
	out := make([]answers.Classified, len(r.Sentences))
	for i, s := range r.Sentences {
		out[i] = answers.Classified{Category: s.Category, Failed: s.Err != nil}
	}
	return out
}

// Message is one incoming chat message.
type Message struct {
	ID         uuid.UUID
	Text       string
	FromBot    bool
	ReceivedAt time.Time
}

// ReplyResult is the bot's answer to a Message.
type ReplyResult struct {
	MessageID uuid.UUID        `json:"message_id"`
	Reply     string           `json:"reply"`
	Complete  bool             `json:"complete"`
	Misses    []string         `json:"misses,omitempty"`
	Sentences []SentenceResult `json:"sentences"`
}

type ResponderDeps struct {
	Normalizer TextNormalizer
	Classifier categorizer.Categorizer
	Resolver   *answers.Resolver
	History    store.HistoryStore // optional
	Workers    int                // concurrent sentences per message
}

// ResponderService runs messages through normalization, classification and
// answer lookup. It holds no per-message state and is safe for concurrent use.
type ResponderService struct {
	normalizer TextNormalizer
	classifier categorizer.Categorizer
	resolver   *answers.Resolver
	history    store.HistoryStore
	workers    int
}

func NewResponderService(deps ResponderDeps) (*ResponderService, error) {
	if deps.Normalizer == nil {
		return nil, errors.New("responder: normalizer is required")
	}
	if deps.Classifier == nil {
		return nil, errors.New("responder: classifier is required")
	}
	if deps.Resolver == nil {
		return nil, errors.New("responder: answer resolver is required")
	}
	workers := deps.Workers
	if workers <= 0 {
		workers = 1
	}
	return &ResponderService{
		normalizer: deps.Normalizer,
		classifier: deps.Classifier,
		resolver:   deps.Resolver,
		history:    deps.History,
		workers:    workers,
	}, nil
}

// Labels returns the categories the classifier can produce.
func (s *ResponderService) Labels() []string {
	return s.classifier.Labels()
}

// Resolver returns the answer resolver.
func (s *ResponderService) Resolver() *answers.Resolver {
	return s.resolver
}

// ClassifyMessage classifies every sentence of text. Sentences run
// concurrently; a failing sentence only marks its own result. The only error
// returned is ctx's.
func (s *ResponderService) ClassifyMessage(ctx context.Context, text string) (*MessageResult, error) {
	cleaned := util.CleanText(text)
	sentences := s.normalizer.DetectSentences(cleaned)
	results := make([]SentenceResult, len(sentences))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, sent := range sentences {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.classifySentence(i, sent)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &MessageResult{Text: cleaned, Sentences: results}, nil
}

func (s *ResponderService) classifySentence(index int, sent nlp.Sentence) SentenceResult {
	res := SentenceResult{
		Index: index,
		Text:  sent.Text,
		Start: sent.Start,
		End:   sent.End,
		Stage: StageSegmented,
	}
	logger := log.WithField("sentence", index)

	res.Tokens = s.normalizer.Tokenize(sent.Text)
	res.Stage = StageTokenized

	tags, err := s.normalizer.TagPartsOfSpeech(res.Tokens)
	if err != nil {
		return failed(res, err, logger)
	}
	res.Tags = tags
	res.Stage = StageTagged

	lemmas, err := s.normalizer.Lemmatize(res.Tokens, res.Tags)
	if err != nil {
		return failed(res, err, logger)
	}
	res.Lemmas = lemmas
	res.Stage = StageLemmatized

	res.Category, res.Score = s.classifier.Classify(res.Lemmas)
	res.Stage = StageClassified
	logger.WithField("score", res.Score).Debugf("Category: %s", res.Category)
	return res
}

func failed(res SentenceResult, err error, logger *log.Entry) SentenceResult {
	res.Err = err
	res.Error = err.Error()
	logger.WithError(err).WithField("stage", res.Stage).Warnf("Skipping sentence %q", res.Text)
	return res
}

// Reply classifies msg and composes the answer. Messages from the bot itself
// and empty messages are ignored with models.ErrBotMessage and
// models.ErrEmptyMessage. The history write, when configured, never fails
// the reply.
func (s *ResponderService) Reply(ctx context.Context, msg Message) (*ReplyResult, error) {
	if msg.FromBot {
		return nil, models.ErrBotMessage
	}
	if strings.TrimSpace(msg.Text) == "" {
		return nil, models.ErrEmptyMessage
	}
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if strings.TrimSpace(msg.Text) == PingCommand {
		return &ReplyResult{MessageID: msg.ID, Reply: Pong(msg.ReceivedAt), Sentences: []SentenceResult{}}, nil
	}

	result, err := s.ClassifyMessage(ctx, msg.Text)
	if err != nil {
		return nil, err
	}
	composed := s.resolver.Compose(result.Classified())

	reply := &ReplyResult{
		MessageID: msg.ID,
		Reply:     composed.Text,
		Complete:  composed.Complete,
		Misses:    composed.Misses,
		Sentences: result.Sentences,
	}
	if reply.Complete {
		log.WithField("message_id", msg.ID).Info("Conversation complete")
	}

	if s.history != nil {
		if err := s.history.RecordClassifications(ctx, s.historyRecords(msg.ID, result)); err != nil {
			log.WithError(err).WithField("message_id", msg.ID).Warn("Failed to record classification history")
		}
	}
	return reply, nil
}

func (s *ResponderService) historyRecords(messageID uuid.UUID, result *MessageResult) []*models.ClassificationRecord {
	records := make([]*models.ClassificationRecord, len(result.Sentences))
	for i, sent := range result.Sentences {
		r := &models.ClassificationRecord{
			MessageID:     messageID,
			SentenceIndex: sent.Index,
			Sentence:      sent.Text,
			Lemmas:        strings.Join(sent.Lemmas, " "),
			Score:         sent.Score,
		}
		if sent.Err != nil {
			msg := sent.Err.Error()
			r.Error = &msg
		} else {
			category := sent.Category
			r.Category = &category
			if answer, err := s.resolver.Resolve(category); err == nil {
				r.Answer = &answer
			}
		}
		records[i] = r
	}
	return records
}

// Pong answers PingCommand with the time elapsed since received.
func Pong(received time.Time) string {
	if received.IsZero() {
		received = time.Now()
	}
	return fmt.Sprintf("Pong: %d ms", time.Since(received).Milliseconds())
}
