package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/policy-digest-api/internal/models"
)

func TestAuditLogsSuccessfulRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{UserID: "user-demo"})
	})
	router.PATCH("/settings", Audit(zap.New(core), "update", "alert_settings"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.POST("/fail", Audit(zap.New(core), "create", "export"), func(c *gin.Context) {
		c.Status(http.StatusBadRequest)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/settings", nil))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/fail", nil))

	entries := logs.FilterMessage("audit").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "update", fields["action"])
	assert.Equal(t, "alert_settings", fields["resource"])
	assert.Equal(t, "user-demo", fields["user_id"])
	assert.Equal(t, "/settings", fields["path"])
}
