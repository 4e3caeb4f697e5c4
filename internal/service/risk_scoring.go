package service

import "github.com/noah-isme/policy-digest-api/internal/models"

// Score brackets used by the document filter and the popup summary.
const (
	BracketHigh   = "high"
	BracketMedium = "medium"
	BracketLow    = "low"

	highRiskFloor   = 70
	mediumRiskFloor = 40
)

var riskWeights = map[models.RiskLevel]int{
	models.RiskSafe:    20,
	models.RiskCaution: 60,
	models.RiskHigh:    90,
}

// OverallRisk aggregates clause risk levels into a 0-100 score: the mean of
// the per-level weights rounded half-up, or 0 for no clauses.
func OverallRisk(clauses []models.PolicyClause) int {
	if len(clauses) == 0 {
		return 0
	}
	total := 0
	for _, clause := range clauses {
		total += riskWeights[clause.RiskLevel]
	}
	n := len(clauses)
	return (2*total + n) / (2 * n)
}

// RiskLabel returns the human label for a clause level.
func RiskLabel(level models.RiskLevel) string {
	switch level {
	case models.RiskHigh:
		return "High Risk"
	case models.RiskCaution:
		return "Medium Risk"
	default:
		return "Low Risk"
	}
}

// RiskMarker is the glyph shown next to highlighted clauses.
func RiskMarker(level models.RiskLevel) string {
	switch level {
	case models.RiskHigh:
		return "🚨"
	case models.RiskCaution:
		return "⚠️"
	default:
		return "✅"
	}
}

// BadgeVariant maps a clause level to the UI badge style.
func BadgeVariant(level models.RiskLevel) string {
	switch level {
	case models.RiskHigh:
		return "destructive"
	case models.RiskCaution:
		return "secondary"
	default:
		return "default"
	}
}

// ScoreBracket classifies a document score: high above 70, medium from 40 to
// 70 inclusive, low below 40.
func ScoreBracket(score int) string {
	switch {
	case score > highRiskFloor:
		return BracketHigh
	case score >= mediumRiskFloor:
		return BracketMedium
	default:
		return BracketLow
	}
}

// ScoreSummary returns the one-line verdict shown in the extension popup.
func ScoreSummary(score int) string {
	switch {
	case score > highRiskFloor:
		return "High risk policy with concerning clauses"
	case score > mediumRiskFloor:
		return "Moderate risk with some concerns"
	default:
		return "Low risk policy"
	}
}

// IsHighRisk reports whether a document score counts towards the high-risk total.
func IsHighRisk(score int) bool {
	return score > highRiskFloor
}
