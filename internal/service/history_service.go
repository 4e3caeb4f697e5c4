package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/policy-digest-api/internal/dto"
	"github.com/noah-isme/policy-digest-api/internal/models"
	appErrors "github.com/noah-isme/policy-digest-api/pkg/errors"
)

type documentGetter interface {
	Get(ctx context.Context, id string) (*models.PolicyDocument, error)
}

type versionRepository interface {
	ListByDocument(ctx context.Context, documentID string) ([]models.DocumentVersion, error)
}

// HistoryService builds the version timeline of a document.
type HistoryService struct {
	documents documentGetter
	versions  versionRepository
	logger    *zap.Logger
}

// NewHistoryService constructs the history service.
func NewHistoryService(documents documentGetter, versions versionRepository, logger *zap.Logger) *HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryService{documents: documents, versions: versions, logger: logger}
}

// History returns the versions of a document newest first, each with its
// trend against the next older version.
func (s *HistoryService) History(ctx context.Context, documentID string) (*dto.DocumentHistoryResponse, error) {
	doc, err := s.documents.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	versions, err := s.versions.ListByDocument(ctx, doc.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document versions")
	}

	trends := VersionTrends(versions)
	entries := make([]dto.VersionEntry, len(versions))
	for i, v := range versions {
		entry := dto.VersionEntry{DocumentVersion: v, IsCurrent: v.Version == doc.Version}
		if trends[i] != nil {
			t := string(*trends[i])
			entry.Trend = &t
		}
		entries[i] = entry
	}

	summary := dto.HistorySummary{
		TotalVersions:      len(versions),
		CurrentRisk:        doc.RiskScore,
		TotalModifications: TotalModifications(versions),
	}
	if len(versions) > 1 {
		change := doc.RiskScore - versions[1].RiskScore
		summary.ChangeSinceLast = &change
	}

	return &dto.DocumentHistoryResponse{
		Document: Summarize(*doc),
		Versions: entries,
		Summary:  summary,
	}, nil
}
