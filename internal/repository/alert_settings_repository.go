package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/policy-digest-api/internal/models"
)

// AlertSettingsRepository stores per-user alert preferences.
type AlertSettingsRepository struct {
	db *sqlx.DB
}

// NewAlertSettingsRepository creates a new instance of AlertSettingsRepository.
func NewAlertSettingsRepository(db *sqlx.DB) *AlertSettingsRepository {
	return &AlertSettingsRepository{db: db}
}

// Get returns the saved settings for a user or sql.ErrNoRows.
func (r *AlertSettingsRepository) Get(ctx context.Context, userID string) (*models.UserAlertSettings, error) {
	const query = `SELECT user_id, email_alerts, risk_threshold, document_updates, weekly_digest, updated_at FROM alert_settings WHERE user_id = $1`
	var settings models.UserAlertSettings
	if err := r.db.GetContext(ctx, &settings, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get alert settings: %w", err)
	}
	return &settings, nil
}

// Upsert replaces the saved settings for a user.
func (r *AlertSettingsRepository) Upsert(ctx context.Context, settings *models.UserAlertSettings) error {
	const query = `INSERT INTO alert_settings (user_id, email_alerts, risk_threshold, document_updates, weekly_digest, updated_at)
VALUES (:user_id, :email_alerts, :risk_threshold, :document_updates, :weekly_digest, :updated_at)
ON CONFLICT (user_id) DO UPDATE SET email_alerts = EXCLUDED.email_alerts, risk_threshold = EXCLUDED.risk_threshold,
document_updates = EXCLUDED.document_updates, weekly_digest = EXCLUDED.weekly_digest, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, settings); err != nil {
		return fmt.Errorf("upsert alert settings: %w", err)
	}
	return nil
}
