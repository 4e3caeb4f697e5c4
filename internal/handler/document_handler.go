package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/policy-digest-api/internal/dto"
	"github.com/noah-isme/policy-digest-api/internal/models"
	"github.com/noah-isme/policy-digest-api/internal/service"
	appErrors "github.com/noah-isme/policy-digest-api/pkg/errors"
	"github.com/noah-isme/policy-digest-api/pkg/response"
)

const defaultDocumentPageSize = 20

type documentService interface {
	List(ctx context.Context, filter models.DocumentFilter) ([]dto.DocumentSummary, *models.Pagination, *dto.DocumentListMeta, error)
	Get(ctx context.Context, id string) (*models.PolicyDocument, error)
}

type historyService interface {
	History(ctx context.Context, documentID string) (*dto.DocumentHistoryResponse, error)
}

type exportService interface {
	Export(ctx context.Context, userID string, req dto.ExportDocumentsRequest) (*dto.ExportResponse, error)
	Open(token string) (*service.ExportDownload, error)
}

// DocumentHandler exposes the analysed document list, detail, history and exports.
type DocumentHandler struct {
	documents documentService
	history   historyService
	exports   exportService
}

// NewDocumentHandler constructs the handler.
func NewDocumentHandler(documents documentService, history historyService, exports exportService) *DocumentHandler {
	return &DocumentHandler{documents: documents, history: history, exports: exports}
}

// List godoc
// @Summary List analysed documents
// @Description Filter by search text, risk bracket and status. Meta carries the unfiltered total.
// @Tags Documents
// @Produce json
// @Param search query string false "Case-insensitive match on title or URL"
// @Param risk query string false "all, high, medium or low"
// @Param status query string false "all, processed, processing or failed"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		response.Error(c, err)
		return
	}
	limit, err := queryInt(c, "limit", defaultDocumentPageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := models.DocumentFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Risk:     strings.ToLower(strings.TrimSpace(c.Query("risk"))),
		Status:   strings.ToLower(strings.TrimSpace(c.Query("status"))),
		Page:     page,
		PageSize: limit,
	}

	items, pagination, listMeta, err := h.documents.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := responseMeta(c)
	meta["total"] = listMeta.Total
	meta["matched"] = listMeta.Matched
	meta["returned"] = listMeta.Returned
	response.JSON(c, http.StatusOK, items, pagination, meta)
}

// Get godoc
// @Summary Get document detail
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.documents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// History godoc
// @Summary Document version history
// @Description Versions newest first with risk trends and a change summary
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /documents/{id}/history [get]
func (h *DocumentHandler) History(c *gin.Context) {
	if h.history == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "history service not configured"))
		return
	}
	history, err := h.history.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}

// Export godoc
// @Summary Export documents
// @Description Render the filtered document list as CSV or PDF and return a signed download link
// @Tags Documents
// @Accept json
// @Produce json
// @Param payload body dto.ExportDocumentsRequest true "Export request"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /documents/export [post]
func (h *DocumentHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ExportDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}
	req.Format = strings.ToLower(strings.TrimSpace(req.Format))

	result, err := h.exports.Export(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Download godoc
// @Summary Download an export via signed token
// @Tags Documents
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /export/{token} [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export service not configured"))
		return
	}
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	download, err := h.exports.Open(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close() //nolint:errcheck
	response.Attachment(c, download.Filename, download.ContentType, download.File)
}
