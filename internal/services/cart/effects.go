package cart

import (
	"context"
	"time"

	"github.com/deepgram/shopfront/pkg/logger"
)

// Effects turns assistant side-effect requests into cart mutations and
// navigation notifications for one browsing session. Calls never block the
// caller on their outcome.
type Effects struct {
	cart       *Service
	sessionID  string
	onChange   func(*State)
	onNavigate func(productID string)
}

func NewEffects(cart *Service, sessionID string, onChange func(*State), onNavigate func(string)) *Effects {
	return &Effects{cart: cart, sessionID: sessionID, onChange: onChange, onNavigate: onNavigate}
}

func (e *Effects) RequestAddToCart(productID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		state, err := e.cart.Add(ctx, e.sessionID, productID, 1)
		if err != nil {
			logger.Warn(logger.CART, "Assistant add-to-cart for %s failed: %v", productID, err)
			return
		}
		if e.onChange != nil {
			e.onChange(state)
		}
	}()
}

func (e *Effects) RequestNavigateToProduct(productID string) {
	if e.onNavigate != nil {
		e.onNavigate(productID)
	}
}
