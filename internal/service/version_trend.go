package service

import "github.com/noah-isme/policy-digest-api/internal/models"

// Trend is the direction of a version's score against the preceding version.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendSame Trend = "same"
)

// CompareTrend returns nil when there is no previous version to compare with.
func CompareTrend(current int, previous *int) *Trend {
	if previous == nil {
		return nil
	}
	var t Trend
	switch {
	case current > *previous:
		t = TrendUp
	case current < *previous:
		t = TrendDown
	default:
		t = TrendSame
	}
	return &t
}

// VersionTrends computes the trend of each version, ordered newest first,
// against the next older one. The oldest version has no trend.
func VersionTrends(versions []models.DocumentVersion) []*Trend {
	trends := make([]*Trend, len(versions))
	for i := range versions {
		if i+1 < len(versions) {
			previous := versions[i+1].RiskScore
			trends[i] = CompareTrend(versions[i].RiskScore, &previous)
		}
	}
	return trends
}

// TotalModifications sums added and modified clauses across versions.
func TotalModifications(versions []models.DocumentVersion) int {
	total := 0
	for _, v := range versions {
		total += v.ClausesAdded + v.ClausesModified
	}
	return total
}
