package handlers

import (
	"net/http"

	"github.com/deepgram/shopfront/internal/services/catalog"
	"github.com/deepgram/shopfront/pkg/httpext"
	"github.com/gorilla/mux"
)

// HandleListProducts lists the catalog, optionally filtered by ?category=.
func HandleListProducts(cat *catalog.Catalog, w http.ResponseWriter, r *http.Request) {
	products := cat.Products()
	if category := r.URL.Query().Get("category"); category != "" {
		products = cat.ByCategory(category)
	}
	httpext.JsonResponse(w, http.StatusOK, map[string]interface{}{"products": products})
}

func HandleGetProduct(cat *catalog.Catalog, w http.ResponseWriter, r *http.Request) {
	product, ok := cat.ByID(mux.Vars(r)["id"])
	if !ok {
		httpext.JsonError(w, "Product not found", http.StatusNotFound)
		return
	}
	httpext.JsonResponse(w, http.StatusOK, product)
}

func HandleListCategories(cat *catalog.Catalog, w http.ResponseWriter, r *http.Request) {
	httpext.JsonResponse(w, http.StatusOK, map[string]interface{}{"categories": cat.Categories()})
}
