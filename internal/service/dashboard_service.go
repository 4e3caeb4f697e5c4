package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/policy-digest-api/internal/dto"
	"github.com/noah-isme/policy-digest-api/internal/models"
)

const dashboardCacheKey = "dash:summary"

type documentSource interface {
	All(ctx context.Context) ([]models.PolicyDocument, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL     time.Duration
	RecentLimit  int
	ConcernLimit int
}

// DashboardService composes the overview shown on the dashboard page.
type DashboardService struct {
	documents documentSource
	cache     *CacheService
	logger    *zap.Logger
	now       func() time.Time
	cfg       DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(documents documentSource, cache *CacheService, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 3
	}
	if cfg.ConcernLimit <= 0 {
		cfg.ConcernLimit = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{documents: documents, cache: cache, logger: logger, now: time.Now, cfg: cfg}
}

// Summary returns the dashboard payload and whether it came from cache.
func (s *DashboardService) Summary(ctx context.Context) (*dto.DashboardResponse, bool, error) {
	if cached, hit, err := s.tryCache(ctx); err == nil && hit {
		return cached, true, nil
	}

	docs, err := s.documents.All(ctx)
	if err != nil {
		return nil, false, err
	}
	summary := s.compose(docs)
	s.persistCache(ctx, summary)
	return summary, false, nil
}

// Invalidate drops the cached summary.
func (s *DashboardService) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx, "dash:*")
}

func (s *DashboardService) compose(docs []models.PolicyDocument) *dto.DashboardResponse {
	summary := &dto.DashboardResponse{
		TotalDocuments:  len(docs),
		RecentDocuments: make([]dto.DocumentSummary, 0, s.cfg.RecentLimit),
		TopConcerns:     []dto.CategoryCount{},
		GeneratedAt:     s.now().UTC(),
	}

	scoreTotal := 0
	concerns := map[string]int{}
	for i, doc := range docs {
		scoreTotal += doc.RiskScore
		if IsHighRisk(doc.RiskScore) {
			summary.HighRiskCount++
		}
		if doc.Status == models.StatusProcessed {
			summary.ProcessedCount++
		}
		if i < s.cfg.RecentLimit {
			summary.RecentDocuments = append(summary.RecentDocuments, Summarize(doc))
		}
		for _, clause := range doc.Clauses {
			switch clause.RiskLevel {
			case models.RiskHigh:
				summary.RiskBreakdown.High++
			case models.RiskCaution:
				summary.RiskBreakdown.Caution++
			default:
				summary.RiskBreakdown.Safe++
			}
			if clause.RiskLevel != models.RiskSafe {
				concerns[clause.Category]++
			}
		}
	}
	if len(docs) > 0 {
		summary.AverageRisk = (2*scoreTotal + len(docs)) / (2 * len(docs))
	}

	for category, count := range concerns {
		summary.TopConcerns = append(summary.TopConcerns, dto.CategoryCount{Category: category, Count: count})
	}
	sort.Slice(summary.TopConcerns, func(i, j int) bool {
		a, b := summary.TopConcerns[i], summary.TopConcerns[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Category < b.Category
	})
	if len(summary.TopConcerns) > s.cfg.ConcernLimit {
		summary.TopConcerns = summary.TopConcerns[:s.cfg.ConcernLimit]
	}
	return summary
}

func (s *DashboardService) tryCache(ctx context.Context) (*dto.DashboardResponse, bool, error) {
	if s.cache == nil {
		return nil, false, nil
	}
	var cached dto.DashboardResponse
	hit, err := s.cache.Get(ctx, dashboardCacheKey, &cached)
	if err != nil || !hit {
		return nil, false, err
	}
	return &cached, true, nil
}

func (s *DashboardService) persistCache(ctx context.Context, value *dto.DashboardResponse) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, dashboardCacheKey, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", dashboardCacheKey), zap.Error(err))
	}
}
