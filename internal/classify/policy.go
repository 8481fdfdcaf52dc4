package classify

import "fmt"

// ScoringPolicy is a named set of composition weights, verdict
// thresholds, and author-field penalties. Stages select a policy instead
// of duplicating constants.
type ScoringPolicy struct {
	Name string

	// Composition weights over the three sub-scores; must sum to 1.
	AuthorWeight   float64
	ContentWeight  float64
	ScriptedWeight float64

	// Verdict thresholds, applied to sub-scores only.
	SingleHostAuthorMin  float64
	SingleHostContentMin float64
	ScriptedMin          float64
	SelfWrittenAuthorMin float64

	// Author-field penalties and bonus.
	OrgPenalty        float64
	OrgPenaltyCap     float64
	MultiPenalty      float64
	MultiPenaltyCap   float64
	PersonalNameBonus float64
}

// FullPolicy weighs all three sub-scores; used by the main
// classification stage.
func FullPolicy() ScoringPolicy {
	p := basePolicy()
	p.Name = "full"
	p.AuthorWeight = 0.5
	p.ContentWeight = 0.3
	p.ScriptedWeight = 0.2
	return p
}

// AuthorLeaningPolicy drops the scripted term; used by the verification
// stage, which cares about authorship only.
func AuthorLeaningPolicy() ScoringPolicy {
	p := basePolicy()
	p.Name = "author-leaning"
	p.AuthorWeight = 0.7
	p.ContentWeight = 0.3
	p.ScriptedWeight = 0
	return p
}

// PolicyByName resolves a configured policy name.
func PolicyByName(name string) (ScoringPolicy, error) {
	switch name {
	case "", "full":
		return FullPolicy(), nil
	case "author-leaning":
		return AuthorLeaningPolicy(), nil
	}
	return ScoringPolicy{}, fmt.Errorf("unknown scoring policy %q", name)
}

func basePolicy() ScoringPolicy {
	return ScoringPolicy{
		SingleHostAuthorMin:  0.4,
		SingleHostContentMin: 0.3,
		ScriptedMin:          0.4,
		SelfWrittenAuthorMin: 0.3,
		OrgPenalty:           0.3,
		OrgPenaltyCap:        0.8,
		MultiPenalty:         0.4,
		MultiPenaltyCap:      0.9,
		PersonalNameBonus:    0.3,
	}
}
