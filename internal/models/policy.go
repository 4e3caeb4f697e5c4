package models

import "time"

// RiskLevel classifies a single clause.
type RiskLevel string

const (
	RiskSafe    RiskLevel = "safe"
	RiskCaution RiskLevel = "caution"
	RiskHigh    RiskLevel = "high"
)

// RiskLevels lists every valid level from least to most severe.
var RiskLevels = []RiskLevel{RiskSafe, RiskCaution, RiskHigh}

// Valid reports whether l is one of the closed set of levels.
func (l RiskLevel) Valid() bool {
	switch l {
	case RiskSafe, RiskCaution, RiskHigh:
		return true
	}
	return false
}

// DocumentStatus is the processing state of a scanned document.
type DocumentStatus string

const (
	StatusProcessed  DocumentStatus = "processed"
	StatusProcessing DocumentStatus = "processing"
	StatusFailed     DocumentStatus = "failed"
)

// Valid reports whether s is one of the closed set of statuses.
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusProcessed, StatusProcessing, StatusFailed:
		return true
	}
	return false
}

// ClausePosition is a character span within a document's content.
type ClausePosition struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Valid reports whether the span is non-empty and non-negative.
func (p ClausePosition) Valid() bool {
	return p.Start >= 0 && p.Start < p.End
}

// PolicyClause is one detected clause span within a document.
type PolicyClause struct {
	ID          string         `db:"id" json:"id"`
	DocumentID  string         `db:"document_id" json:"-"`
	Ordinal     int            `db:"ordinal" json:"-"`
	Text        string         `db:"text" json:"text"`
	RiskLevel   RiskLevel      `db:"risk_level" json:"riskLevel"`
	Category    string         `db:"category" json:"category"`
	Description string         `db:"description" json:"description"`
	Position    ClausePosition `db:"-" json:"position"`
}

// PolicyDocument is an analysed policy page.
type PolicyDocument struct {
	ID        string         `db:"id" json:"id"`
	Title     string         `db:"title" json:"title"`
	URL       string         `db:"url" json:"url"`
	Content   string         `db:"content" json:"content"`
	RiskScore int            `db:"risk_score" json:"riskScore"`
	Clauses   []PolicyClause `db:"-" json:"clauses"`
	Version   int            `db:"version" json:"version"`
	ScanDate  time.Time      `db:"scan_date" json:"scanDate"`
	Status    DocumentStatus `db:"status" json:"status"`
}

// DocumentVersion is a point-in-time snapshot of a document's analysis.
type DocumentVersion struct {
	ID              string    `db:"id" json:"id"`
	DocumentID      string    `db:"document_id" json:"documentId"`
	Version         int       `db:"version" json:"version"`
	ScanDate        time.Time `db:"scan_date" json:"scanDate"`
	RiskScore       int       `db:"risk_score" json:"riskScore"`
	Changes         []string  `db:"-" json:"changes"`
	ClausesAdded    int       `db:"clauses_added" json:"clausesAdded"`
	ClausesRemoved  int       `db:"clauses_removed" json:"clausesRemoved"`
	ClausesModified int       `db:"clauses_modified" json:"clausesModified"`
}

// AlertSettings are a user's notification preferences. Values are treated as
// immutable: use Apply to derive an updated copy.
type AlertSettings struct {
	EmailAlerts     bool      `db:"email_alerts" json:"emailAlerts"`
	RiskThreshold   RiskLevel `db:"risk_threshold" json:"riskThreshold"`
	DocumentUpdates bool      `db:"document_updates" json:"documentUpdates"`
	WeeklyDigest    bool      `db:"weekly_digest" json:"weeklyDigest"`
}

// AlertSettingsUpdate is a partial change; nil fields are left untouched.
type AlertSettingsUpdate struct {
	EmailAlerts     *bool
	RiskThreshold   *RiskLevel
	DocumentUpdates *bool
	WeeklyDigest    *bool
}

// Empty reports whether the update changes nothing.
func (u AlertSettingsUpdate) Empty() bool {
	return u.EmailAlerts == nil && u.RiskThreshold == nil && u.DocumentUpdates == nil && u.WeeklyDigest == nil
}

// Apply returns a copy of s with the update applied. s is not modified.
func (s AlertSettings) Apply(u AlertSettingsUpdate) AlertSettings {
	next := s
	if u.EmailAlerts != nil {
		next.EmailAlerts = *u.EmailAlerts
	}
	if u.RiskThreshold != nil {
		next.RiskThreshold = *u.RiskThreshold
	}
	if u.DocumentUpdates != nil {
		next.DocumentUpdates = *u.DocumentUpdates
	}
	if u.WeeklyDigest != nil {
		next.WeeklyDigest = *u.WeeklyDigest
	}
	return next
}

// UserAlertSettings is the persisted form of AlertSettings.
type UserAlertSettings struct {
	UserID string `db:"user_id"`
	AlertSettings
	UpdatedAt time.Time `db:"updated_at"`
}
