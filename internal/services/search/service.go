// Package search ranks catalog products for a free-text query, preferring
// the assistant backend and falling back to substring matching.
package search

import (
	"context"
	"strings"

	"github.com/deepgram/shopfront/internal/metrics"
	"github.com/deepgram/shopfront/internal/services/catalog"
	"github.com/deepgram/shopfront/internal/services/chat"
	"github.com/deepgram/shopfront/pkg/logger"
)

const (
	// TextSearchReason labels every result produced without the backend.
	TextSearchReason = "Text search"
	// DefaultResultCount is how many products are shown when nothing matches.
	DefaultResultCount = 4
)

// Matcher is the backend search capability.
type Matcher interface {
	MatchSearch(ctx context.Context, query string, cat *catalog.Catalog, language string) chat.SearchResult
}

type Service struct {
	matcher Matcher
}

// NewService searches with matcher; nil always uses the text fallback.
func NewService(matcher Matcher) *Service {
	return &Service{matcher: matcher}
}

// Search never fails. Backend ids are returned in backend order; otherwise
// substring matches in catalog order; otherwise the first products.
func (s *Service) Search(ctx context.Context, query string, cat *catalog.Catalog, language string) chat.SearchResult {
	if s.matcher != nil {
		result := s.matcher.MatchSearch(ctx, query, cat, language)
		if len(result.IDs) > 0 {
			logger.Debug(logger.SEARCH, "Backend matched %d products for %q", len(result.IDs), query)
			metrics.SearchResults.WithLabelValues("backend").Inc()
			return chat.SearchResult{IDs: append([]string{}, result.IDs...), Reason: result.Reason}
		}
	}

	if ids := TextMatch(query, cat); len(ids) > 0 {
		metrics.SearchResults.WithLabelValues("text").Inc()
		return chat.SearchResult{IDs: ids, Reason: TextSearchReason}
	}

	metrics.SearchResults.WithLabelValues("default").Inc()
	return chat.SearchResult{IDs: defaultIDs(cat), Reason: TextSearchReason}
}

// TextMatch returns ids of products whose name, description or category
// contains query, ignoring case.
func TextMatch(query string, cat *catalog.Catalog) []string {
	ids := []string{}
	if cat == nil {
		return ids
	}

	needle := strings.ToLower(query)
	for _, p := range cat.Products() {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) ||
			strings.Contains(strings.ToLower(p.Category), needle) {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func defaultIDs(cat *catalog.Catalog) []string {
	ids := []string{}
	if cat == nil {
		return ids
	}
	for i, p := range cat.Products() {
		if i == DefaultResultCount {
			break
		}
		ids = append(ids, p.ID)
	}
	return ids
}
