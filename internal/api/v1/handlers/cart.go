package handlers

import (
	"errors"
	"net/http"

	v1mware "github.com/deepgram/shopfront/internal/api/v1/middleware"
	"github.com/deepgram/shopfront/internal/assistant"
	"github.com/deepgram/shopfront/internal/connections"
	"github.com/deepgram/shopfront/internal/services/cart"
	"github.com/deepgram/shopfront/pkg/httpext"
	"github.com/deepgram/shopfront/pkg/logger"
	"github.com/gorilla/mux"
)

type cartResponse struct {
	Items    []cart.Line `json:"items"`
	Wishlist []string    `json:"wishlist"`
	Count    int         `json:"count"`
	Subtotal float64     `json:"subtotal"`
}

// CartHandlers serves the session cart and mirrors every change to the
// session's open assistant sockets.
type CartHandlers struct {
	cart    *cart.Service
	sockets *connections.Manager
}

func NewCartHandlers(cartService *cart.Service, sockets *connections.Manager) *CartHandlers {
	return &CartHandlers{cart: cartService, sockets: sockets}
}

func (h *CartHandlers) respond(w http.ResponseWriter, r *http.Request, state *cart.State, changed bool) {
	if changed && h.sockets != nil {
		h.sockets.Broadcast(v1mware.GetSession(r).SessionID, assistant.CartEvent(state))
	}
	count, subtotal := h.cart.Totals(state)
	httpext.JsonResponse(w, http.StatusOK, cartResponse{
		Items:    state.Items,
		Wishlist: state.Wishlist,
		Count:    count,
		Subtotal: subtotal,
	})
}

func (h *CartHandlers) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrUnknownProduct):
		httpext.JsonError(w, "Product not found", http.StatusNotFound)
	case errors.Is(err, cart.ErrOutOfStock):
		httpext.JsonError(w, "Product out of stock", http.StatusConflict)
	default:
		logger.Error(logger.HANDLER, "Cart operation failed: %v", err)
		httpext.JsonError(w, "Cart unavailable", http.StatusInternalServerError)
	}
}

func (h *CartHandlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	state, err := h.cart.Get(r.Context(), v1mware.GetSession(r).SessionID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, r, state, false)
}

func (h *CartHandlers) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id" validate:"required"`
		Quantity  int    `json:"quantity" validate:"omitempty,gte=1,lte=99"`
	}
	if err := httpext.DecodeJSON(r, &req); err != nil {
		httpext.BadRequest(w, err)
		return
	}

	state, err := h.cart.Add(r.Context(), v1mware.GetSession(r).SessionID, req.ProductID, req.Quantity)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, r, state, true)
}

func (h *CartHandlers) HandleSetQuantity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity" validate:"gte=0,lte=99"`
	}
	if err := httpext.DecodeJSON(r, &req); err != nil {
		httpext.BadRequest(w, err)
		return
	}

	state, err := h.cart.SetQuantity(r.Context(), v1mware.GetSession(r).SessionID, mux.Vars(r)["id"], req.Quantity)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, r, state, true)
}

func (h *CartHandlers) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	state, err := h.cart.Remove(r.Context(), v1mware.GetSession(r).SessionID, mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, r, state, true)
}

func (h *CartHandlers) HandleToggleWishlist(w http.ResponseWriter, r *http.Request) {
	state, err := h.cart.ToggleWishlist(r.Context(), v1mware.GetSession(r).SessionID, mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, r, state, true)
}

func (h *CartHandlers) HandleClear(w http.ResponseWriter, r *http.Request) {
	sessionID := v1mware.GetSession(r).SessionID
	if err := h.cart.Clear(r.Context(), sessionID); err != nil {
		h.fail(w, err)
		return
	}
	state, err := h.cart.Get(r.Context(), sessionID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, r, state, true)
}
