// Package answers maps category labels to canned replies.
package answers

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// DefaultClosingCategory ends a conversation when a sentence is classified into it.
const DefaultClosingCategory = "conversation-complete"

// Table maps a category label to its reply. Lookup is exact-match.
type Table map[string]string

// DefaultTable returns the stock replies.
func DefaultTable() Table {
	return Table{
		"greeting":              "Hello, how can I help you?",
		"product-inquiry":       "Product is a Porsche 911 GT2 RS.",
		"price-inquiry":         "Price is $300,000",
		"conversation-continue": "What else can I help you with?",
		"nice-ending":           "Goodbye!",
		"cfa":                   "Chik-Fil-a",
	}
}

// LookupMissError is returned when no reply is configured for a label.
type LookupMissError struct {
	Category string
}

func (e *LookupMissError) Error() string {
	return fmt.Sprintf("answers: no reply for category %q", e.Category)
}

// Classified is the part of a sentence classification the resolver needs.
type Classified struct {
	Category string
	Failed   bool
}

// Reply is the composed answer to one message.
type Reply struct {
	Text     string   `json:"text"`
	Complete bool     `json:"complete"`
	Answers  []string `json:"answers"`
	Misses   []string `json:"misses,omitempty"`
}

// Resolver looks replies up in a Table.
type Resolver struct {
	table   Table
	closing string
}

// NewResolver copies table so later changes to the caller's map are not seen.
// An empty closing category means DefaultClosingCategory.
func NewResolver(table Table, closing string) *Resolver {
	t := make(Table, len(table))
	for k, v := range table {
		t[k] = v
	}
	if closing == "" {
		closing = DefaultClosingCategory
	}
	return &Resolver{table: t, closing: closing}
}

// ClosingCategory returns the label that completes a conversation.
func (r *Resolver) ClosingCategory() string {
	return r.closing
}

// Resolve returns the reply configured for category.
func (r *Resolver) Resolve(category string) (string, error) {
	answer, ok := r.table[category]
	if !ok {
		return "", &LookupMissError{Category: category}
	}
	return answer, nil
}

// Compose joins the replies for results in order, separated by single spaces.
// Failed sentences and labels without a reply add nothing to the text.
func (r *Resolver) Compose(results []Classified) Reply {
	reply := Reply{Answers: []string{}}
	for _, res := range results {
		if res.Failed {
			continue
		}
		if res.Category == r.closing {
			reply.Complete = true
		}
		answer, err := r.Resolve(res.Category)
		if err != nil {
			if res.Category != r.closing {
				log.WithError(err).Debug("No answer for category")
			}
			reply.Misses = append(reply.Misses, res.Category)
			continue
		}
		reply.Answers = append(reply.Answers, answer)
	}
	reply.Text = strings.Join(reply.Answers, " ")
	return reply
}

// Missing returns the labels, in the given order, that have no reply.
func (r *Resolver) Missing(labels []string) []string {
	var missing []string
	for _, l := range labels {
		if _, ok := r.table[l]; !ok {
			missing = append(missing, l)
		}
	}
	return missing
}
