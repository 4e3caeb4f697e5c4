package service

import (
	"strings"

	"github.com/noah-isme/policy-digest-api/internal/models"
	appErrors "github.com/noah-isme/policy-digest-api/pkg/errors"
)

// ValidateDocumentFilter rejects selector values outside the known sets.
func ValidateDocumentFilter(filter models.DocumentFilter) error {
	switch filter.Risk {
	case "", models.FilterAll, BracketHigh, BracketMedium, BracketLow:
	default:
		return appErrors.Clone(appErrors.ErrValidation, "risk must be one of all, high, medium, low")
	}
	if filter.Status != "" && filter.Status != models.FilterAll && !models.DocumentStatus(filter.Status).Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "status must be one of all, processed, processing, failed")
	}
	if filter.Page < 0 || filter.PageSize < 0 {
		return appErrors.Clone(appErrors.ErrValidation, "page and limit must not be negative")
	}
	return nil
}

// FilterDocuments keeps the documents whose title or URL contains the search
// text (case-insensitive), whose score falls in the requested bracket and
// whose status matches. Input order is preserved.
func FilterDocuments(docs []models.PolicyDocument, filter models.DocumentFilter) []models.PolicyDocument {
	if filter.Unfiltered() {
		return docs
	}
	search := strings.ToLower(filter.Search)
	out := make([]models.PolicyDocument, 0, len(docs))
	for _, doc := range docs {
		if search != "" &&
			!strings.Contains(strings.ToLower(doc.Title), search) &&
			!strings.Contains(strings.ToLower(doc.URL), search) {
			continue
		}
		if filter.Risk != "" && filter.Risk != models.FilterAll && ScoreBracket(doc.RiskScore) != filter.Risk {
			continue
		}
		if filter.Status != "" && filter.Status != models.FilterAll && string(doc.Status) != filter.Status {
			continue
		}
		out = append(out, doc)
	}
	return out
}

// paginate slices items for the 1-based page. A non-positive size returns all
// remaining items.
func paginate[T any](items []T, page, size int) []T {
	if size <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
