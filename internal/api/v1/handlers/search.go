package handlers

import (
	"net/http"

	"github.com/deepgram/shopfront/internal/config"
	"github.com/deepgram/shopfront/internal/services/catalog"
	"github.com/deepgram/shopfront/internal/services/search"
	"github.com/deepgram/shopfront/internal/services/session"
	"github.com/deepgram/shopfront/pkg/httpext"
	"github.com/deepgram/shopfront/pkg/logger"
)

type searchResponse struct {
	Query    string            `json:"query"`
	IDs      []string          `json:"ids"`
	Reason   string            `json:"reason"`
	Products []catalog.Product `json:"products"`
}

// HandleSearch ranks products for ?q=, passed to the matcher verbatim. The
// language comes from ?lang=, then the session cookie, then the default.
func HandleSearch(searchService *search.Service, sessions *session.Service, cat *catalog.Catalog, w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if len(query) > 200 {
		httpext.JsonError(w, "Query too long", http.StatusBadRequest)
		return
	}

	language := r.URL.Query().Get("lang")
	if language == "" {
		language = config.DefaultLanguage
		if claims, err := sessions.ValidateSession(r); err == nil && claims != nil {
			language = claims.Locale
		}
	}

	result := searchService.Search(r.Context(), query, cat, config.LookupLocale(language).Language)
	logger.Debug(logger.HANDLER, "Search %q returned %d products (%s)", query, len(result.IDs), result.Reason)

	products := make([]catalog.Product, 0, len(result.IDs))
	for _, id := range result.IDs {
		if p, ok := cat.ByID(id); ok {
			products = append(products, p)
		}
	}
	httpext.JsonResponse(w, http.StatusOK, searchResponse{
		Query:    query,
		IDs:      result.IDs,
		Reason:   result.Reason,
		Products: products,
	})
}
