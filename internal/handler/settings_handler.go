package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/policy-digest-api/internal/dto"
	"github.com/noah-isme/policy-digest-api/internal/models"
	appErrors "github.com/noah-isme/policy-digest-api/pkg/errors"
	"github.com/noah-isme/policy-digest-api/pkg/response"
)

type settingsService interface {
	Get(ctx context.Context, userID string) (models.AlertSettings, error)
	Update(ctx context.Context, userID string, req dto.UpdateAlertSettingsRequest) (models.AlertSettings, error)
}

// SettingsHandler exposes the caller's alert settings.
type SettingsHandler struct {
	service settingsService
}

// NewSettingsHandler constructs the handler.
func NewSettingsHandler(service settingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// Get godoc
// @Summary Get alert settings
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	settings, err := h.service.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// Update godoc
// @Summary Update alert settings
// @Description Partial update. Omitted fields keep their current value.
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body dto.UpdateAlertSettingsRequest true "Changed settings"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /settings [patch]
func (h *SettingsHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpdateAlertSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid settings payload"))
		return
	}
	settings, err := h.service.Update(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}
