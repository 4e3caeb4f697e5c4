package dto

import (
	"time"

	"github.com/noah-isme/policy-digest-api/internal/models"
)

// PageDetectionResponse tells the extension whether a page has a known policy.
type PageDetectionResponse struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	HasPolicy  bool   `json:"hasPolicy"`
	DocumentID string `json:"documentId,omitempty"`
}

// PopupResponse is the extension popup summary for a page.
type PopupResponse struct {
	DocumentID        string          `json:"documentId"`
	Title             string          `json:"title"`
	URL               string          `json:"url"`
	RiskScore         int             `json:"riskScore"`
	RiskBracket       string          `json:"riskBracket"`
	Summary           string          `json:"summary"`
	ClauseCount       int             `json:"clauseCount"`
	ConcerningClauses int             `json:"concerningClauses"`
	TopClauses        []ClauseExcerpt `json:"topClauses"`
	ScanDate          time.Time       `json:"scanDate"`
}

// ClauseExcerpt is a shortened clause for the popup.
type ClauseExcerpt struct {
	ID        string           `json:"id"`
	Category  string           `json:"category"`
	RiskLevel models.RiskLevel `json:"riskLevel"`
	Label     string           `json:"label"`
	Marker    string           `json:"marker"`
	Excerpt   string           `json:"excerpt"`
}

// HighlightsResponse lists the inline highlights for a page.
type HighlightsResponse struct {
	DocumentID string      `json:"documentId"`
	URL        string      `json:"url"`
	Highlights []Highlight `json:"highlights"`
}

// Highlight is one clause rendered inline on the page.
type Highlight struct {
	ClauseID     string                `json:"clauseId"`
	Text         string                `json:"text"`
	Category     string                `json:"category"`
	Description  string                `json:"description"`
	RiskLevel    models.RiskLevel      `json:"riskLevel"`
	Label        string                `json:"label"`
	Marker       string                `json:"marker"`
	BadgeVariant string                `json:"badgeVariant"`
	Position     models.ClausePosition `json:"position"`
}

// StartScanRequest asks for a page to be scanned.
type StartScanRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// ScanResponse is a snapshot of a scan task.
type ScanResponse struct {
	ID         string      `json:"id"`
	URL        string      `json:"url"`
	State      string      `json:"state"`
	StartedAt  time.Time   `json:"startedAt"`
	FinishedAt *time.Time  `json:"finishedAt,omitempty"`
	Result     *ScanResult `json:"result,omitempty"`
}

// ScanResult is produced by a completed scan.
type ScanResult struct {
	DocumentID        string `json:"documentId"`
	RiskScore         int    `json:"riskScore"`
	ConcerningClauses int    `json:"concerningClauses"`
	Summary           string `json:"summary"`
	Message           string `json:"message"`
}
