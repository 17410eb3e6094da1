package triage

import (
	"strings"

	"github.com/spec-kit/triage-service/internal/config"
	"github.com/spec-kit/triage-service/internal/domain"
)

// Pattern is one weighted case-insensitive substring to look for.
type Pattern struct {
	Text   string
	Weight float64
}

// Rule scores one category. Rules are evaluated in declaration order; on a
// score tie the first-declared rule wins, which keeps classification
// deterministic.
type Rule struct {
	Category     domain.TicketCategory
	BasePriority domain.TicketPriority
	Patterns     []Pattern
	// FullScore is the raw score treated as a fully confident match.
	// Confidence is raw/FullScore clamped to [0,1]. Zero means the sum of
	// all pattern weights.
	FullScore float64
}

func (r Rule) fullScore() float64 {
	if r.FullScore > 0 {
		return r.FullScore
	}
	var sum float64
	for _, p := range r.Patterns {
		sum += p.Weight
	}
	return sum
}

// Classifier maps free text to category, priority, and confidence using an
// ordered weighted keyword rule set. Stateless per call.
type Classifier struct {
	rules           []Rule
	severityTerms   []Pattern
	minScore        float64
	confidenceFloor float64
}

// NewClassifier builds a classifier from the default rule set and deployment
// tuning parameters.
func NewClassifier(cfg config.TriageConfig) *Classifier {
	return NewClassifierWithRules(cfg, DefaultRules(), SeverityUpgradeTerms())
}

// NewClassifierWithRules builds a classifier from an explicit rule set.
func NewClassifierWithRules(cfg config.TriageConfig, rules []Rule, severityTerms []Pattern) *Classifier {
	return &Classifier{
		rules:           rules,
		severityTerms:   severityTerms,
		minScore:        cfg.MinScore,
		confidenceFloor: cfg.ConfidenceFloor,
	}
}

// Classify never fails. When no rule scores at or above the minimum score it
// returns the other/medium fallback with the configured confidence floor.
func (c *Classifier) Classify(text string) domain.ClassificationResult {
	lowered := strings.ToLower(text)

	var (
		winner    *Rule
		bestScore float64
		matched   []string
	)
	for i := range c.rules {
		score, keywords := c.rules[i].match(lowered)
		if score > bestScore {
			winner = &c.rules[i]
			bestScore = score
			matched = keywords
		}
	}

	if winner == nil || bestScore < c.minScore {
		return domain.ClassificationResult{
			Category:        domain.CategoryOther,
			Priority:        domain.TicketPriorityMedium,
			Confidence:      c.confidenceFloor,
			MatchedKeywords: nil,
		}
	}

	confidence := bestScore / winner.fullScore()
	if confidence > 1 {
		confidence = 1
	}

	priority := winner.BasePriority
	if upgraded, terms := c.severityUpgrade(lowered); upgraded.Rank() > priority.Rank() {
		priority = upgraded
		matched = append(matched, terms...)
	}

	return domain.ClassificationResult{
		Category:        winner.Category,
		Priority:        priority,
		Confidence:      confidence,
		MatchedKeywords: matched,
	}
}

func (r Rule) match(lowered string) (float64, []string) {
	var score float64
	var matched []string
	for _, p := range r.Patterns {
		if strings.Contains(lowered, p.Text) {
			score += p.Weight
			matched = append(matched, p.Text)
		}
	}
	return score, matched
}

// severityUpgrade returns critical when an outage-class term is present,
// regardless of the winning category. Priorities are only ever raised here.
func (c *Classifier) severityUpgrade(lowered string) (domain.TicketPriority, []string) {
	var terms []string
	for _, p := range c.severityTerms {
		if strings.Contains(lowered, p.Text) {
			terms = append(terms, p.Text)
		}
	}
	if len(terms) == 0 {
		return domain.TicketPriorityLow, nil
	}
	return domain.TicketPriorityCritical, terms
}
