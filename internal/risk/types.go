package risk

import "github.com/abhisek/mamacheck/internal/knowledge"

// Band is a severity band of the keyword tables.
type Band string

const (
	BandHigh    Band = "high"
	BandMedium  Band = "medium"
	BandLow     Band = "low"
	BandNeutral Band = "neutral" // shadows negated mentions, never scores
)

// Weight is the score contribution of one phrase in the band.
func (b Band) Weight() int {
	switch b {
	case BandHigh:
		return 3
	case BandMedium:
		return 2
	case BandLow:
		return 1
	default:
		return 0
	}
}

// MaxDisplayScore caps the score reported in an Assessment. Tier decisions
// use the uncapped value.
const MaxDisplayScore = 10

// MaxMatchedFactors caps Assessment.MatchedFactors.
const MaxMatchedFactors = 3

// Factor is one matched keyword phrase and its contribution.
type Factor struct {
	Phrase string `json:"phrase"`
	Band   Band   `json:"band"`
	Weight int    `json:"weight"`
}

// RiskScore is the raw result of keyword classification.
type RiskScore struct {
	Value         int      // uncapped sum of factor weights
	Factors       []Factor // detection order: high band, then medium, then low
	HighRiskFound bool
}

// Display returns Value capped at MaxDisplayScore.
func (s RiskScore) Display() int {
	return min(s.Value, MaxDisplayScore)
}

// Assessment is the fixed-shape triage result consumed by the HTTP layer,
// the report renderer and the CLI. Every field is always present;
// DetectedCondition is null when no condition pattern matched.
type Assessment struct {
	RiskTier          knowledge.Tier `json:"riskTier"`
	RiskScore         int            `json:"riskScore"`
	MatchedFactors    []Factor       `json:"matchedFactors"`
	Explanation       string         `json:"explanation"`
	Recommendation    string         `json:"recommendation"`
	UrgentCareNeeded  bool           `json:"urgentCareNeeded"`
	DetectedCondition *string        `json:"detectedCondition"`
}

// Condition returns the detected condition id, or "" when none.
func (a Assessment) Condition() string {
	if a.DetectedCondition == nil {
		return ""
	}
	return *a.DetectedCondition
}
