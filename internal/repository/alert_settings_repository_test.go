package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/policy-digest-api/internal/models"
)

func TestGetAlertSettings(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAlertSettingsRepository(db)

	now := time.Now()
	mock.ExpectQuery("FROM alert_settings WHERE user_id = \\$1").
		WithArgs("user-demo").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "email_alerts", "risk_threshold", "document_updates", "weekly_digest", "updated_at"}).
			AddRow("user-demo", false, "high", true, true, now))

	settings, err := repo.Get(context.Background(), "user-demo")
	require.NoError(t, err)
	assert.False(t, settings.EmailAlerts)
	assert.Equal(t, models.RiskHigh, settings.RiskThreshold)
	assert.True(t, settings.WeeklyDigest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAlertSettingsMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAlertSettingsRepository(db)

	mock.ExpectQuery("FROM alert_settings").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUpsertAlertSettings(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAlertSettingsRepository(db)

	mock.ExpectExec("INSERT INTO alert_settings").
		WithArgs("user-demo", true, models.RiskCaution, true, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), &models.UserAlertSettings{
		UserID:        "user-demo",
		AlertSettings: models.AlertSettings{EmailAlerts: true, RiskThreshold: models.RiskCaution, DocumentUpdates: true},
		UpdatedAt:     time.Now(),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
