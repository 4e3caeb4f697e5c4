package dto

import (
	"time"

	"github.com/noah-isme/policy-digest-api/internal/models"
)

// DocumentSummary is the list view of a document without its content.
type DocumentSummary struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	URL         string                `json:"url"`
	RiskScore   int                   `json:"riskScore"`
	RiskBracket string                `json:"riskBracket"`
	ClauseCount int                   `json:"clauseCount"`
	Version     int                   `json:"version"`
	ScanDate    time.Time             `json:"scanDate"`
	Status      models.DocumentStatus `json:"status"`
}

// DocumentListMeta reports how many documents matched out of the full set.
type DocumentListMeta struct {
	Total    int `json:"total"`
	Matched  int `json:"matched"`
	Returned int `json:"returned"`
}

// DashboardResponse is the dashboard overview payload.
type DashboardResponse struct {
	TotalDocuments  int               `json:"totalDocuments"`
	AverageRisk     int               `json:"averageRisk"`
	HighRiskCount   int               `json:"highRiskCount"`
	ProcessedCount  int               `json:"processedCount"`
	RecentDocuments []DocumentSummary `json:"recentDocuments"`
	RiskBreakdown   RiskBreakdown     `json:"riskBreakdown"`
	TopConcerns     []CategoryCount   `json:"topConcerns"`
	GeneratedAt     time.Time         `json:"generatedAt"`
}

// RiskBreakdown counts clauses per risk level across all documents.
type RiskBreakdown struct {
	Safe    int `json:"safe"`
	Caution int `json:"caution"`
	High    int `json:"high"`
}

// CategoryCount is a clause category with its number of occurrences.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// DocumentHistoryResponse is the version timeline of a document.
type DocumentHistoryResponse struct {
	Document DocumentSummary `json:"document"`
	Versions []VersionEntry  `json:"versions"`
	Summary  HistorySummary  `json:"summary"`
}

// VersionEntry is a version with its trend against the next older one.
type VersionEntry struct {
	models.DocumentVersion
	Trend     *string `json:"trend"`
	IsCurrent bool    `json:"isCurrent"`
}

// HistorySummary aggregates the timeline. ChangeSinceLast is null when the
// document has a single version.
type HistorySummary struct {
	TotalVersions      int  `json:"totalVersions"`
	CurrentRisk        int  `json:"currentRisk"`
	ChangeSinceLast    *int `json:"changeSinceLast"`
	TotalModifications int  `json:"totalModifications"`
}

// UpdateAlertSettingsRequest is a partial settings change.
type UpdateAlertSettingsRequest struct {
	EmailAlerts     *bool   `json:"emailAlerts"`
	RiskThreshold   *string `json:"riskThreshold" validate:"omitempty,oneof=safe caution high"`
	DocumentUpdates *bool   `json:"documentUpdates"`
	WeeklyDigest    *bool   `json:"weeklyDigest"`
}

// ExportDocumentsRequest selects the export format and the list filter.
type ExportDocumentsRequest struct {
	Format string `json:"format" validate:"required,oneof=csv pdf"`
	Search string `json:"search"`
	Risk   string `json:"risk" validate:"omitempty,oneof=all high medium low"`
	Status string `json:"status" validate:"omitempty,oneof=all processed processing failed"`
}

// ExportResponse points at a generated export.
type ExportResponse struct {
	ID          string    `json:"id"`
	Format      string    `json:"format"`
	Filename    string    `json:"filename"`
	RowCount    int       `json:"rowCount"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
