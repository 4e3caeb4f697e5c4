package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/policy-digest-api/internal/dto"
	"github.com/noah-isme/policy-digest-api/internal/models"
	appErrors "github.com/noah-isme/policy-digest-api/pkg/errors"
	"github.com/noah-isme/policy-digest-api/pkg/export"
	"github.com/noah-isme/policy-digest-api/pkg/storage"
)

// Export formats.
const (
	ExportCSV = "csv"
	ExportPDF = "pdf"
)

type fileStorage interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type renderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportDownload is an opened export ready to stream. The caller closes File.
type ExportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
}

// ExportService renders the document list to files and hands out signed
// download links for them.
type ExportService struct {
	documents documentSource
	storage   fileStorage
	signer    *storage.SignedURLSigner
	renderers map[string]renderer
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportConfig
	now       func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(documents documentSource, files fileStorage, signer *storage.SignedURLSigner, metrics *MetricsService, logger *zap.Logger, cfg ExportConfig) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &ExportService{
		documents: documents,
		storage:   files,
		signer:    signer,
		renderers: map[string]renderer{
			ExportCSV: export.NewCSVExporter(),
			ExportPDF: export.NewPDFExporter(),
		},
		metrics:   metrics,
		validator: validator.New(),
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Export renders the filtered document list and stores it for download.
func (s *ExportService) Export(ctx context.Context, userID string, req dto.ExportDocumentsRequest) (*dto.ExportResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export request")
	}
	render := s.renderers[req.Format]

	docs, err := s.documents.All(ctx)
	if err != nil {
		return nil, err
	}
	docs = FilterDocuments(docs, models.DocumentFilter{Search: req.Search, Risk: req.Risk, Status: req.Status})

	payload, err := render.Render(documentDataset(docs))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	id := uuid.NewString()
	filename := s.filename(userID, req.Format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}
	token, expiresAt, err := s.signer.Sign(id, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export link")
	}

	s.metrics.ExportGenerated(req.Format)
	s.logger.Info("export generated",
		zap.String("export_id", id),
		zap.String("user_id", userID),
		zap.String("format", req.Format),
		zap.Int("rows", len(docs)))

	return &dto.ExportResponse{
		ID:          id,
		Format:      req.Format,
		Filename:    filepath.Base(relPath),
		RowCount:    len(docs),
		DownloadURL: fmt.Sprintf("%s/export/%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token),
		ExpiresAt:   expiresAt,
	}, nil
}

// Open verifies a download token and opens the referenced file.
func (s *ExportService) Open(token string) (*ExportDownload, error) {
	obj, err := s.signer.Verify(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}
	file, err := s.storage.Open(obj.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export")
	}
	contentType := "application/octet-stream"
	if r, ok := s.renderers[strings.TrimPrefix(filepath.Ext(obj.Path), ".")]; ok {
		contentType = r.ContentType()
	}
	return &ExportDownload{File: file, Filename: filepath.Base(obj.Path), ContentType: contentType}, nil
}

// Cleanup removes exports older than ttl, or the configured TTL when ttl <= 0.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	removed, err := s.storage.CleanupOlderThan(ttl)
	if err != nil {
		return nil, err
	}
	if len(removed) > 0 {
		s.logger.Info("expired exports removed", zap.Int("count", len(removed)))
	}
	return removed, nil
}

func (s *ExportService) filename(userID, format string) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("policy-documents_%s_%s.%s", sanitizeFilename(userID), timestamp, format)
}

func documentDataset(docs []models.PolicyDocument) export.Dataset {
	rows := make([][]string, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, []string{
			doc.Title,
			doc.URL,
			strconv.Itoa(doc.RiskScore),
			ScoreBracket(doc.RiskScore),
			string(doc.Status),
			strconv.Itoa(doc.Version),
			strconv.Itoa(len(doc.Clauses)),
			doc.ScanDate.UTC().Format("2006-01-02"),
		})
	}
	return export.Dataset{
		Title:   "Policy Documents",
		Headers: []string{"Title", "URL", "Risk Score", "Risk Bracket", "Status", "Version", "Clauses", "Scan Date"},
		Rows:    rows,
	}
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "anonymous"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 64 {
		return result[:64]
	}
	return result
}
