package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/policy-digest-api/internal/models"
	"github.com/noah-isme/policy-digest-api/internal/repository"
	"github.com/noah-isme/policy-digest-api/internal/seed"
	"github.com/noah-isme/policy-digest-api/internal/service"
)

func newSettingsHandler() *SettingsHandler {
	store := repository.NewMemoryStore()
	return NewSettingsHandler(service.NewSettingsService(store.AlertSettings(), seed.AlertSettings(), nil, nil))
}

func TestSettingsHandlerGetDefaults(t *testing.T) {
	handler := newSettingsHandler()

	c, w := newJSONContext(http.MethodGet, "/settings", nil)
	withUser(c, "user-demo")
	handler.Get(c)

	require.Equal(t, http.StatusOK, w.Code)
	var settings models.AlertSettings
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &settings))
	assert.Equal(t, seed.AlertSettings(), settings)
}

func TestSettingsHandlerRequiresUser(t *testing.T) {
	handler := newSettingsHandler()

	c, w := newJSONContext(http.MethodGet, "/settings", nil)
	handler.Get(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = newJSONContext(http.MethodPatch, "/settings", map[string]bool{"weeklyDigest": true})
	handler.Update(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSettingsHandlerUpdatePersists(t *testing.T) {
	handler := newSettingsHandler()

	c, w := newJSONContext(http.MethodPatch, "/settings", map[string]interface{}{"riskThreshold": "high", "weeklyDigest": true})
	withUser(c, "user-demo")
	handler.Update(c)
	require.Equal(t, http.StatusOK, w.Code)

	c, w = newJSONContext(http.MethodGet, "/settings", nil)
	withUser(c, "user-demo")
	handler.Get(c)
	var settings models.AlertSettings
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &settings))
	assert.Equal(t, models.RiskHigh, settings.RiskThreshold)
	assert.True(t, settings.WeeklyDigest)
	assert.True(t, settings.EmailAlerts)
}

func TestSettingsHandlerUpdateRejectsUnknownThreshold(t *testing.T) {
	handler := newSettingsHandler()

	c, w := newJSONContext(http.MethodPatch, "/settings", map[string]string{"riskThreshold": "extreme"})
	withUser(c, "user-demo")
	handler.Update(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
