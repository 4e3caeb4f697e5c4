package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/policy-digest-api/internal/dto"
	"github.com/noah-isme/policy-digest-api/internal/models"
	appErrors "github.com/noah-isme/policy-digest-api/pkg/errors"
)

type documentRepository interface {
	List(ctx context.Context) ([]models.PolicyDocument, error)
	FindByID(ctx context.Context, id string) (*models.PolicyDocument, error)
}

// DocumentService serves analysed documents. Risk scores are recomputed from
// the clauses on every read so a stored score can never drift from them.
type DocumentService struct {
	repo   documentRepository
	logger *zap.Logger
}

// NewDocumentService constructs the document service.
func NewDocumentService(repo documentRepository, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{repo: repo, logger: logger}
}

// All returns every document in dataset order.
func (s *DocumentService) All(ctx context.Context) ([]models.PolicyDocument, error) {
	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load documents")
	}
	for i := range docs {
		s.deriveScore(&docs[i])
	}
	return docs, nil
}

// List filters and paginates the document list.
func (s *DocumentService) List(ctx context.Context, filter models.DocumentFilter) ([]dto.DocumentSummary, *models.Pagination, *dto.DocumentListMeta, error) {
	if err := ValidateDocumentFilter(filter); err != nil {
		return nil, nil, nil, err
	}
	docs, err := s.All(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	matched := FilterDocuments(docs, filter)
	page := paginate(matched, filter.Page, filter.PageSize)

	items := make([]dto.DocumentSummary, len(page))
	for i, doc := range page {
		items[i] = Summarize(doc)
	}

	pageNum := filter.Page
	if pageNum < 1 {
		pageNum = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = len(matched)
	}
	pagination := &models.Pagination{Page: pageNum, PageSize: size, TotalCount: len(matched)}
	meta := &dto.DocumentListMeta{Total: len(docs), Matched: len(matched), Returned: len(items)}
	return items, pagination, meta, nil
}

// Get returns a single document with its clauses.
func (s *DocumentService) Get(ctx context.Context, id string) (*models.PolicyDocument, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "document id is required")
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	s.deriveScore(doc)
	return doc, nil
}

func (s *DocumentService) deriveScore(doc *models.PolicyDocument) {
	derived := OverallRisk(doc.Clauses)
	if derived != doc.RiskScore {
		s.logger.Debug("stored risk score differs from clauses",
			zap.String("document_id", doc.ID),
			zap.Int("stored", doc.RiskScore),
			zap.Int("derived", derived))
	}
	doc.RiskScore = derived
}

// Summarize converts a document to its list view.
func Summarize(doc models.PolicyDocument) dto.DocumentSummary {
	return dto.DocumentSummary{
		ID:          doc.ID,
		Title:       doc.Title,
		URL:         doc.URL,
		RiskScore:   doc.RiskScore,
		RiskBracket: ScoreBracket(doc.RiskScore),
		ClauseCount: len(doc.Clauses),
		Version:     doc.Version,
		ScanDate:    doc.ScanDate,
		Status:      doc.Status,
	}
}
