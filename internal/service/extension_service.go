package service

import (
	"context"
	"net/url"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/noah-isme/policy-digest-api/internal/dto"
	"github.com/noah-isme/policy-digest-api/internal/models"
	appErrors "github.com/noah-isme/policy-digest-api/pkg/errors"
)

// DefaultPageURL stands in for the active browser tab when none is given.
const DefaultPageURL = "https://facebook.com/terms"

const (
	popupClauseLimit = 3
	excerptLength    = 100
)

// ExtensionService backs the browser extension popup and inline overlay.
type ExtensionService struct {
	documents documentSource
	logger    *zap.Logger
}

// NewExtensionService constructs the extension service.
func NewExtensionService(documents documentSource, logger *zap.Logger) *ExtensionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExtensionService{documents: documents, logger: logger}
}

// DetectPage reports whether a known policy lives at pageURL.
func (s *ExtensionService) DetectPage(ctx context.Context, pageURL string) (*dto.PageDetectionResponse, error) {
	pageURL, err := normalizePageURL(pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := s.lookup(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return &dto.PageDetectionResponse{URL: pageURL, Title: hostOf(pageURL), HasPolicy: false}, nil
	}
	return &dto.PageDetectionResponse{URL: pageURL, Title: doc.Title, HasPolicy: true, DocumentID: doc.ID}, nil
}

// Popup returns the popup summary for the policy at pageURL.
func (s *ExtensionService) Popup(ctx context.Context, pageURL string) (*dto.PopupResponse, error) {
	doc, err := s.requireDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	top := TopConcerningClauses(doc.Clauses, popupClauseLimit)
	excerpts := make([]dto.ClauseExcerpt, len(top))
	for i, clause := range top {
		excerpts[i] = dto.ClauseExcerpt{
			ID:        clause.ID,
			Category:  clause.Category,
			RiskLevel: clause.RiskLevel,
			Label:     RiskLabel(clause.RiskLevel),
			Marker:    RiskMarker(clause.RiskLevel),
			Excerpt:   Truncate(clause.Text, excerptLength),
		}
	}
	return &dto.PopupResponse{
		DocumentID:        doc.ID,
		Title:             doc.Title,
		URL:               doc.URL,
		RiskScore:         doc.RiskScore,
		RiskBracket:       ScoreBracket(doc.RiskScore),
		Summary:           ScoreSummary(doc.RiskScore),
		ClauseCount:       len(doc.Clauses),
		ConcerningClauses: countConcerning(doc.Clauses),
		TopClauses:        excerpts,
		ScanDate:          doc.ScanDate,
	}, nil
}

// Highlights returns every clause of the policy at pageURL as an inline highlight.
func (s *ExtensionService) Highlights(ctx context.Context, pageURL string) (*dto.HighlightsResponse, error) {
	doc, err := s.requireDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	highlights := make([]dto.Highlight, len(doc.Clauses))
	for i, clause := range doc.Clauses {
		highlights[i] = dto.Highlight{
			ClauseID:     clause.ID,
			Text:         clause.Text,
			Category:     clause.Category,
			Description:  clause.Description,
			RiskLevel:    clause.RiskLevel,
			Label:        RiskLabel(clause.RiskLevel),
			Marker:       RiskMarker(clause.RiskLevel),
			BadgeVariant: BadgeVariant(clause.RiskLevel),
			Position:     clause.Position,
		}
	}
	return &dto.HighlightsResponse{DocumentID: doc.ID, URL: doc.URL, Highlights: highlights}, nil
}

// Resolve returns the document known at pageURL or a validation error when
// the page has no policy.
func (s *ExtensionService) Resolve(ctx context.Context, pageURL string) (*models.PolicyDocument, error) {
	return s.requireDocument(ctx, pageURL)
}

func (s *ExtensionService) requireDocument(ctx context.Context, pageURL string) (*models.PolicyDocument, error) {
	pageURL, err := normalizePageURL(pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := s.lookup(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no policy detected on this page")
	}
	return doc, nil
}

func (s *ExtensionService) lookup(ctx context.Context, pageURL string) (*models.PolicyDocument, error) {
	docs, err := s.documents.All(ctx)
	if err != nil {
		return nil, err
	}
	key := urlKey(pageURL)
	for i := range docs {
		if urlKey(docs[i].URL) == key {
			return &docs[i], nil
		}
	}
	s.logger.Debug("no policy for page", zap.String("url", pageURL))
	return nil, nil
}

// TopConcerningClauses returns up to limit non-safe clauses in document order.
func TopConcerningClauses(clauses []models.PolicyClause, limit int) []models.PolicyClause {
	out := make([]models.PolicyClause, 0, limit)
	for _, clause := range clauses {
		if len(out) == limit {
			break
		}
		if clause.RiskLevel != models.RiskSafe {
			out = append(out, clause)
		}
	}
	return out
}

// Truncate shortens text to at most n runes followed by "...".
func Truncate(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n]) + "..."
}

func countConcerning(clauses []models.PolicyClause) int {
	n := 0
	for _, clause := range clauses {
		if clause.RiskLevel != models.RiskSafe {
			n++
		}
	}
	return n
}

func normalizePageURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultPageURL, nil
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", appErrors.Clone(appErrors.ErrValidation, "url must be an absolute http(s) URL")
	}
	return raw, nil
}

// urlKey reduces a URL to host and path so that scheme, a leading www., a
// trailing slash, query and fragment do not affect matching.
func urlKey(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return strings.ToLower(raw)
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	path := strings.TrimRight(parsed.EscapedPath(), "/")
	return host + path
}

func hostOf(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return parsed.Hostname()
}
