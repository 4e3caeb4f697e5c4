// Package seed holds the demo dataset the service ships with: four analysed
// policy documents, the version history of the first one, default alert
// settings and the demo account.
package seed

import (
	"time"

	"github.com/noah-isme/policy-digest-api/internal/models"
)

const sampleTermsContent = `
Terms of Service

1. Acceptance of Terms
By accessing and using this service, you accept and agree to be bound by the terms and provision of this agreement.

2. Arbitration Clause
Any disputes arising under this agreement must be resolved through binding arbitration rather than in court.

3. Data Collection
We collect personal information including your name, email address, IP address, browsing history, and device information.

4. Data Sharing
We may share your personal data with third-party partners for marketing and analytics purposes.

5. Service Changes
We reserve the right to modify or discontinue the service at any time without notice.

6. Liability Limitation
In no event shall the company be liable for any indirect, incidental, special, consequential or punitive damages.

7. Termination
We may terminate your account at any time for any reason without prior notice.

8. Governing Law
This agreement shall be governed by the laws of Delaware.
`

// Clauses returns the analysed clauses of the sample terms of service.
func Clauses() []models.PolicyClause {
	return []models.PolicyClause{
		{
			ID:          "clause-1",
			Text:        "Any disputes arising under this agreement must be resolved through binding arbitration rather than in court.",
			RiskLevel:   models.RiskHigh,
			Category:    "Dispute Resolution",
			Description: "Mandatory arbitration clauses limit your right to sue in court and may favor the company.",
			Position:    models.ClausePosition{Start: 156, End: 256},
		},
		{
			ID:          "clause-2",
			Text:        "We collect personal information including your name, email address, IP address, browsing history, and device information.",
			RiskLevel:   models.RiskCaution,
			Category:    "Data Collection",
			Description: "Extensive data collection including browsing history and device fingerprinting.",
			Position:    models.ClausePosition{Start: 280, End: 410},
		},
		{
			ID:          "clause-3",
			Text:        "We may share your personal data with third-party partners for marketing and analytics purposes.",
			RiskLevel:   models.RiskHigh,
			Category:    "Data Sharing",
			Description: "Broad data sharing permissions with third parties for commercial purposes.",
			Position:    models.ClausePosition{Start: 430, End: 525},
		},
		{
			ID:          "clause-4",
			Text:        "We reserve the right to modify or discontinue the service at any time without notice.",
			RiskLevel:   models.RiskCaution,
			Category:    "Service Changes",
			Description: "Service can be changed or terminated without user notification.",
			Position:    models.ClausePosition{Start: 550, End: 635},
		},
		{
			ID:          "clause-5",
			Text:        "We may terminate your account at any time for any reason without prior notice.",
			RiskLevel:   models.RiskHigh,
			Category:    "Account Termination",
			Description: "Account can be terminated without cause or notice.",
			Position:    models.ClausePosition{Start: 750, End: 828},
		},
	}
}

// Documents returns the demo documents. now is used as the scan date of the
// document that is still processing.
func Documents(now time.Time) []models.PolicyDocument {
	return []models.PolicyDocument{
		{
			ID:        "doc-1",
			Title:     "Facebook Terms of Service",
			URL:       "https://facebook.com/terms",
			Content:   sampleTermsContent,
			RiskScore: 78,
			Clauses:   withDocument("doc-1", Clauses()),
			Version:   3,
			ScanDate:  date(2024, time.January, 15),
			Status:    models.StatusProcessed,
		},
		{
			ID:        "doc-2",
			Title:     "Google Privacy Policy",
			URL:       "https://policies.google.com/privacy",
			Content:   "Privacy Policy content...",
			RiskScore: 65,
			Clauses:   withDocument("doc-2", Clauses()[:3]),
			Version:   2,
			ScanDate:  date(2024, time.January, 10),
			Status:    models.StatusProcessed,
		},
		{
			ID:        "doc-3",
			Title:     "Microsoft Service Agreement",
			URL:       "https://microsoft.com/servicesagreement",
			Content:   "Service Agreement content...",
			RiskScore: 42,
			Clauses:   withDocument("doc-3", Clauses()[:2]),
			Version:   1,
			ScanDate:  date(2024, time.January, 8),
			Status:    models.StatusProcessed,
		},
		{
			ID:        "doc-4",
			Title:     "Spotify Terms and Conditions",
			URL:       "https://spotify.com/terms",
			Content:   "Processing...",
			RiskScore: 0,
			Clauses:   []models.PolicyClause{},
			Version:   1,
			ScanDate:  now.UTC(),
			Status:    models.StatusProcessing,
		},
	}
}

// Versions returns the version history of doc-1, newest first.
func Versions() []models.DocumentVersion {
	return []models.DocumentVersion{
		{
			ID:         "ver-1",
			DocumentID: "doc-1",
			Version:    3,
			ScanDate:   date(2024, time.January, 15),
			RiskScore:  78,
			Changes: []string{
				"Added mandatory arbitration clause",
				"Expanded data sharing permissions",
				"Removed user notification requirements",
			},
			ClausesAdded:    2,
			ClausesRemoved:  0,
			ClausesModified: 3,
		},
		{
			ID:         "ver-2",
			DocumentID: "doc-1",
			Version:    2,
			ScanDate:   date(2023, time.December, 1),
			RiskScore:  65,
			Changes: []string{
				"Updated data collection practices",
				"Modified termination conditions",
			},
			ClausesAdded:    1,
			ClausesRemoved:  1,
			ClausesModified: 2,
		},
		{
			ID:              "ver-3",
			DocumentID:      "doc-1",
			Version:         1,
			ScanDate:        date(2023, time.October, 15),
			RiskScore:       45,
			Changes:         []string{"Initial document scan"},
			ClausesAdded:    8,
			ClausesRemoved:  0,
			ClausesModified: 0,
		},
	}
}

// AlertSettings returns the defaults applied to users without saved settings.
func AlertSettings() models.AlertSettings {
	return models.AlertSettings{
		EmailAlerts:     true,
		RiskThreshold:   models.RiskCaution,
		DocumentUpdates: true,
		WeeklyDigest:    false,
	}
}

func withDocument(documentID string, clauses []models.PolicyClause) []models.PolicyClause {
	out := make([]models.PolicyClause, len(clauses))
	for i, clause := range clauses {
		clause.DocumentID = documentID
		clause.Ordinal = i
		out[i] = clause
	}
	return out
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
