// Package intent classifies free-text commands into a closed set of intents.
//
// Classification walks an ordered rule table once. The first rule whose
// Match returns true wins and its Extract builds the parameters; there is no
// scoring and no backtracking. Rule order is therefore part of the contract:
// reordering the table changes which intent an ambiguous input receives.
package intent

import (
	"strings"

	"github.com/doeshing/voicectl/internal/domain"
	"github.com/doeshing/voicectl/internal/ports"
)

// Rule pairs a predicate with the intent it selects and its parameter extractor.
type Rule struct {
	Name    string
	Intent  domain.Intent
	Match   func(text string) bool
	Extract func(text string) domain.Params
}

// Classifier evaluates rules in order.
type Classifier struct {
	rules []Rule
}

// NewClassifier builds a classifier over rules. With no rules it uses DefaultRules.
func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: append([]Rule(nil), rules...)}
}

// Rules returns a copy of the rule table in evaluation order.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Classify implements ports.IntentClassifier. Every input maps to exactly one intent.
func (c *Classifier) Classify(text string) (domain.Intent, domain.Params) {
	normalized := Normalize(text)
	if normalized == "" {
		return domain.IntentUnrecognized, domain.Params{}
	}
	for _, rule := range c.rules {
		if rule.Match == nil || !rule.Match(normalized) {
			continue
		}
		params := domain.Params{}
		if rule.Extract != nil {
			if extracted := rule.Extract(normalized); extracted != nil {
				params = extracted
			}
		}
		return rule.Intent, params
	}
	return domain.IntentUnrecognized, domain.Params{}
}

// Normalize lower-cases and trims text and collapses inner whitespace.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

var _ ports.IntentClassifier = (*Classifier)(nil)
