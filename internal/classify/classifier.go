package classify

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"PodcastCurator/internal/domain"
	"PodcastCurator/internal/logging"
)

// Classifier scores a candidate's textual metadata for single-host,
// scripted, self-written content. Classify is a pure function of the
// candidate: no I/O, no randomness, identical output on repeated calls.
type Classifier struct {
	indicators Indicators
	policy     ScoringPolicy
	logger     *slog.Logger
}

// New builds a classifier from indicator sets and a scoring policy.
func New(indicators Indicators, policy ScoringPolicy, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Classifier{indicators: indicators, policy: policy, logger: logger}
}

// Classify evaluates one candidate.
func (c *Classifier) Classify(candidate domain.Candidate) domain.ClassificationResult {
	title := strings.ToLower(candidate.Title)
	author := strings.ToLower(candidate.Author)
	description := strings.ToLower(stripHTML(candidate.Description))
	combined := title + " " + description

	evidence := []string{}
	issues := []string{}

	authorScore := c.scoreAuthor(candidate.Author, author, &evidence, &issues)
	contentScore := c.scoreContent(combined, &evidence, &issues)
	scriptedScore := c.scoreScripted(combined, &evidence)

	p := c.policy
	result := domain.ClassificationResult{
		Candidate:     candidate,
		AuthorScore:   authorScore,
		ContentScore:  contentScore,
		ScriptedScore: scriptedScore,
		Confidence: authorScore*p.AuthorWeight +
			contentScore*p.ContentWeight +
			scriptedScore*p.ScriptedWeight,
		IsSingleHost: authorScore > p.SingleHostAuthorMin && contentScore > p.SingleHostContentMin,
		IsScripted:   scriptedScore > p.ScriptedMin,
		Evidence:     evidence,
		Issues:       issues,
	}
	result.IsSelfWritten = authorScore > p.SelfWrittenAuthorMin && result.IsSingleHost

	c.logger.Debug("classified candidate",
		"title", candidate.Title,
		"author_score", authorScore,
		"content_score", contentScore,
		"scripted_score", scriptedScore,
		"qualified", result.Qualified())

	return result
}

// scoreAuthor starts from 1.0 and subtracts capped penalties for
// organization and multi-person indicators, then adds the personal-name
// bonus. Result is clamped to [0,1].
func (c *Classifier) scoreAuthor(rawAuthor, author string, evidence, issues *[]string) float64 {
	if strings.TrimSpace(author) == "" {
		*issues = append(*issues, "no author field provided")
		return 0.0
	}

	score := 1.0

	orgPenalty := 0.0
	for _, indicator := range c.indicators.Org {
		if strings.Contains(author, indicator) {
			orgPenalty += c.policy.OrgPenalty
			*issues = append(*issues, fmt.Sprintf("organization indicator in author: %q", indicator))
		}
	}
	if orgPenalty > c.policy.OrgPenaltyCap {
		orgPenalty = c.policy.OrgPenaltyCap
	}
	score -= orgPenalty

	multiPenalty := 0.0
	for _, indicator := range c.indicators.MultiPerson {
		if strings.Contains(author, indicator) {
			multiPenalty += c.policy.MultiPenalty
			*issues = append(*issues, fmt.Sprintf("multi-person indicator in author: %q", indicator))
		}
	}
	if multiPenalty > c.policy.MultiPenaltyCap {
		multiPenalty = c.policy.MultiPenaltyCap
	}
	score -= multiPenalty

	if c.looksLikePersonalName(rawAuthor) {
		score += c.policy.PersonalNameBonus
		*evidence = append(*evidence, fmt.Sprintf("personal name pattern: %q", rawAuthor))
	}

	return clamp01(score)
}

// scoreContent weighs positive single-host terms against multi-host
// terms, with ambiguous interview-type terms counting as half-strength
// negatives. No indicators at all yields the neutral midpoint.
func (c *Classifier) scoreContent(combined string, evidence, issues *[]string) float64 {
	positive := 0
	for _, indicator := range c.indicators.SingleHostPositive {
		if strings.Contains(combined, indicator) {
			positive++
			*evidence = append(*evidence, fmt.Sprintf("single host indicator: %q", indicator))
		}
	}

	negative := 0
	for _, term := range c.indicators.MultiHostNegative {
		if strings.Contains(combined, term) {
			negative++
			*issues = append(*issues, fmt.Sprintf("multi-host indicator: %q", term))
		}
	}

	ambiguous := 0
	for _, term := range c.indicators.Ambiguous {
		if strings.Contains(combined, term) {
			ambiguous++
		}
	}

	adjustedNegative := float64(negative) + 0.5*float64(ambiguous)
	if float64(positive)+adjustedNegative == 0 {
		return 0.5
	}

	score := float64(positive) / (float64(positive) + adjustedNegative)
	if score < 0.1 {
		// A single strong negative must not zero the score outright.
		score = 0.1
	}
	return score
}

// scoreScripted maps the scripted-keyword hit count through a step
// function. Absence of keywords is weak evidence: most podcasts are at
// least partially scripted, so zero hits stays neutral.
func (c *Classifier) scoreScripted(combined string, evidence *[]string) float64 {
	hits := 0
	for _, indicator := range c.indicators.Scripted {
		if strings.Contains(combined, indicator) {
			hits++
			*evidence = append(*evidence, fmt.Sprintf("scripted indicator: %q", indicator))
		}
	}

	switch {
	case hits >= 3:
		return 0.9
	case hits == 2:
		return 0.75
	case hits == 1:
		return 0.6
	default:
		return 0.5
	}
}

// looksLikePersonalName accepts "First Last" shaped author fields,
// allowing one leading honorific and up to four tokens.
func (c *Classifier) looksLikePersonalName(name string) bool {
	words := strings.Fields(name)
	if len(words) == 0 {
		return false
	}

	first := strings.ToLower(words[0])
	for _, title := range c.indicators.Honorifics {
		if first == title {
			if len(words) >= 3 {
				words = words[1:]
			}
			break
		}
	}

	if len(words) < 2 || len(words) > 4 {
		return false
	}

	for _, word := range words {
		clean := strings.TrimRight(word, ".")
		if clean == "" || !alphabetic(clean) {
			return false
		}
		if !unicode.IsUpper([]rune(clean)[0]) {
			return false
		}
	}

	lower := strings.ToLower(name)
	for _, term := range c.indicators.NonPersonal {
		if strings.Contains(lower, term) {
			return false
		}
	}

	return true
}

func alphabetic(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// stripHTML flattens embedded markup in podcast descriptions so keyword
// scanning sees plain text. Falls back to the raw string on parse
// failure.
func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
