package handlers

import (
	"net/http"

	v1mware "github.com/deepgram/shopfront/internal/api/v1/middleware"
	"github.com/deepgram/shopfront/internal/services"
	"github.com/gorilla/mux"
)

func RegisterV1Routes(router *mux.Router, services *services.Services) {
	// v1 routes
	v1 := router.PathPrefix("/v1").Subrouter()
	v1.Use(v1mware.RateLimit("global"))

	// Public v1 routes (no session required)
	v1publicRouter := v1.NewRoute().Subrouter()
	v1publicRouter.Handle("/session", v1mware.RateLimit("session")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HandleCreateSession(services.GetSessionService(), w, r)
	}))).Methods("POST")
	v1publicRouter.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		HandleListProducts(services.GetCatalog(), w, r)
	}).Methods("GET")
	v1publicRouter.HandleFunc("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		HandleGetProduct(services.GetCatalog(), w, r)
	}).Methods("GET")
	v1publicRouter.HandleFunc("/categories", func(w http.ResponseWriter, r *http.Request) {
		HandleListCategories(services.GetCatalog(), w, r)
	}).Methods("GET")
	v1publicRouter.Handle("/search", v1mware.RateLimit("search")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HandleSearch(services.GetSearchService(), services.GetSessionService(), services.GetCatalog(), w, r)
	}))).Methods("GET")

	// Session-bound v1 routes
	v1sessionRouter := v1.NewRoute().Subrouter()
	v1sessionRouter.Use(v1mware.RequireSession(services.GetSessionService()))

	v1sessionRouter.HandleFunc("/session/locale", func(w http.ResponseWriter, r *http.Request) {
		HandleSetLocale(services.GetSessionService(), w, r)
	}).Methods("PUT")

	cartHandlers := NewCartHandlers(services.GetCartService(), services.GetConnectionManager())
	v1cartRouter := v1sessionRouter.PathPrefix("/cart").Subrouter()
	v1cartRouter.Use(v1mware.RateLimit("cart"))
	v1cartRouter.HandleFunc("", cartHandlers.HandleGet).Methods("GET")
	v1cartRouter.HandleFunc("", cartHandlers.HandleClear).Methods("DELETE")
	v1cartRouter.HandleFunc("/items", cartHandlers.HandleAddItem).Methods("POST")
	v1cartRouter.HandleFunc("/items/{id}", cartHandlers.HandleSetQuantity).Methods("PUT")
	v1cartRouter.HandleFunc("/items/{id}", cartHandlers.HandleRemoveItem).Methods("DELETE")
	v1sessionRouter.HandleFunc("/wishlist/{id}", cartHandlers.HandleToggleWishlist).Methods("POST")

	v1sessionRouter.Handle("/assistant/ws", v1mware.RateLimit("assistant_ws")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HandleAssistantWebSocket(services, w, r)
	}))).Methods("GET")
}
