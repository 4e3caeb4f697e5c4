package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/policy-digest-api/internal/dto"
	"github.com/noah-isme/policy-digest-api/internal/models"
	appErrors "github.com/noah-isme/policy-digest-api/pkg/errors"
)

type alertSettingsRepository interface {
	Get(ctx context.Context, userID string) (*models.UserAlertSettings, error)
	Upsert(ctx context.Context, settings *models.UserAlertSettings) error
}

// SettingsService reads and updates per-user alert settings. Users without
// saved settings get the defaults.
type SettingsService struct {
	repo      alertSettingsRepository
	defaults  models.AlertSettings
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewSettingsService constructs the settings service.
func NewSettingsService(repo alertSettingsRepository, defaults models.AlertSettings, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, defaults: defaults, validator: validate, logger: logger, now: time.Now}
}

// Get returns the settings of a user.
func (s *SettingsService) Get(ctx context.Context, userID string) (models.AlertSettings, error) {
	if userID == "" {
		return models.AlertSettings{}, appErrors.Clone(appErrors.ErrUnauthorized, "user is required")
	}
	saved, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s.defaults, nil
		}
		return models.AlertSettings{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load alert settings")
	}
	return saved.AlertSettings, nil
}

// Update applies a partial change and persists the resulting settings.
func (s *SettingsService) Update(ctx context.Context, userID string, req dto.UpdateAlertSettingsRequest) (models.AlertSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.AlertSettings{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "riskThreshold must be one of safe, caution, high")
	}
	update := models.AlertSettingsUpdate{
		EmailAlerts:     req.EmailAlerts,
		DocumentUpdates: req.DocumentUpdates,
		WeeklyDigest:    req.WeeklyDigest,
	}
	if req.RiskThreshold != nil {
		level := models.RiskLevel(*req.RiskThreshold)
		update.RiskThreshold = &level
	}

	current, err := s.Get(ctx, userID)
	if err != nil {
		return models.AlertSettings{}, err
	}
	if update.Empty() {
		return current, nil
	}

	next := current.Apply(update)
	record := &models.UserAlertSettings{UserID: userID, AlertSettings: next, UpdatedAt: s.now().UTC()}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return models.AlertSettings{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save alert settings")
	}
	s.logger.Info("alert settings updated",
		zap.String("user_id", userID),
		zap.String("risk_threshold", string(next.RiskThreshold)),
		zap.Bool("email_alerts", next.EmailAlerts))
	return next, nil
}
