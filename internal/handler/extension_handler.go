package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/policy-digest-api/internal/dto"
	appErrors "github.com/noah-isme/policy-digest-api/pkg/errors"
	"github.com/noah-isme/policy-digest-api/pkg/response"
)

type extensionService interface {
	DetectPage(ctx context.Context, pageURL string) (*dto.PageDetectionResponse, error)
	Popup(ctx context.Context, pageURL string) (*dto.PopupResponse, error)
	Highlights(ctx context.Context, pageURL string) (*dto.HighlightsResponse, error)
}

type scanService interface {
	Start(ctx context.Context, pageURL string) (*dto.ScanResponse, error)
	Get(ctx context.Context, id string) (*dto.ScanResponse, error)
	Cancel(ctx context.Context, id string) (*dto.ScanResponse, error)
}

// ExtensionHandler serves the data behind the browser extension popup and
// inline highlights.
type ExtensionHandler struct {
	extension extensionService
	scans     scanService
}

// NewExtensionHandler constructs the handler.
func NewExtensionHandler(extension extensionService, scans scanService) *ExtensionHandler {
	return &ExtensionHandler{extension: extension, scans: scans}
}

// Page godoc
// @Summary Detect a policy on the current page
// @Tags Extension
// @Produce json
// @Param url query string false "Page URL"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /extension/page [get]
func (h *ExtensionHandler) Page(c *gin.Context) {
	result, err := h.extension.DetectPage(c.Request.Context(), strings.TrimSpace(c.Query("url")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Popup godoc
// @Summary Popup risk summary for a page
// @Tags Extension
// @Produce json
// @Param url query string false "Page URL"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /extension/popup [get]
func (h *ExtensionHandler) Popup(c *gin.Context) {
	result, err := h.extension.Popup(c.Request.Context(), strings.TrimSpace(c.Query("url")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Highlights godoc
// @Summary Inline clause highlights for a page
// @Tags Extension
// @Produce json
// @Param url query string false "Page URL"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /extension/highlights [get]
func (h *ExtensionHandler) Highlights(c *gin.Context) {
	result, err := h.extension.Highlights(c.Request.Context(), strings.TrimSpace(c.Query("url")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// StartScan godoc
// @Summary Start a page scan
// @Description Queues a scan that completes after a short delay. Poll or cancel it by id.
// @Tags Extension
// @Accept json
// @Produce json
// @Param payload body dto.StartScanRequest true "Page to scan"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /extension/scans [post]
func (h *ExtensionHandler) StartScan(c *gin.Context) {
	if h.scans == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "scan service not configured"))
		return
	}
	var req dto.StartScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid scan payload"))
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "url is required"))
		return
	}
	scan, err := h.scans.Start(c.Request.Context(), strings.TrimSpace(req.URL))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, scan)
}

// GetScan godoc
// @Summary Scan status
// @Tags Extension
// @Produce json
// @Param id path string true "Scan ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /extension/scans/{id} [get]
func (h *ExtensionHandler) GetScan(c *gin.Context) {
	if h.scans == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "scan service not configured"))
		return
	}
	scan, err := h.scans.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scan, nil)
}

// CancelScan godoc
// @Summary Cancel a running scan
// @Tags Extension
// @Produce json
// @Param id path string true "Scan ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /extension/scans/{id} [delete]
func (h *ExtensionHandler) CancelScan(c *gin.Context) {
	if h.scans == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "scan service not configured"))
		return
	}
	scan, err := h.scans.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scan, nil)
}
