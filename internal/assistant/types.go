// Package assistant defines the websocket protocol spoken between the
// storefront page and its assistant controller.
package assistant

import (
	"encoding/json"
	"fmt"

	"github.com/deepgram/shopfront/internal/services/cart"
	"github.com/deepgram/shopfront/internal/services/widget"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Command is a message from the page to the controller. Recorded utterances
// travel separately as binary frames.
type Command struct {
	Type      string `json:"type" validate:"required,oneof=mount open close dismiss_peek choose_action input submit toggle listen set_locale dismiss_alert add_to_cart open_product"`
	Action    string `json:"action,omitempty" validate:"omitempty,oneof=chat voice gift"`
	Text      string `json:"text,omitempty" validate:"required_if=Type submit,max=2000"`
	Language  string `json:"language,omitempty" validate:"required_if=Type set_locale"`
	ProductID string `json:"product_id,omitempty" validate:"required_if=Type add_to_cart,required_if=Type open_product"`
}

// ParseCommand decodes and validates one text frame.
func ParseCommand(data []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, fmt.Errorf("malformed command: %w", err)
	}
	if err := validate.Struct(cmd); err != nil {
		return Command{}, fmt.Errorf("invalid %q command: %w", cmd.Type, err)
	}
	return cmd, nil
}

const (
	CommandMount        = "mount"
	CommandOpen         = "open"
	CommandClose        = "close"
	CommandDismissPeek  = "dismiss_peek"
	CommandChooseAction = "choose_action"
	CommandInput        = "input"
	CommandSubmit       = "submit"
	CommandToggle       = "toggle"
	CommandListen       = "listen"
	CommandSetLocale    = "set_locale"
	CommandDismissAlert = "dismiss_alert"
	CommandAddToCart    = "add_to_cart"
	CommandOpenProduct  = "open_product"
)

// Event is a message from the controller to the page.
type Event struct {
	Type       string        `json:"type"`
	State      *widget.State `json:"state,omitempty"`
	Cart       *cart.State   `json:"cart,omitempty"`
	ProductID  string        `json:"product_id,omitempty"`
	Audio      string        `json:"audio,omitempty"`
	SampleRate int           `json:"sample_rate,omitempty"`
	Channels   int           `json:"channels,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// Event types
const (
	EventState    = "state"
	EventCart     = "cart"
	EventNavigate = "navigate"
	EventAudio    = "audio"
	EventError    = "error"
)

func StateEvent(s widget.State) Event {
	return Event{Type: EventState, State: &s}
}

func CartEvent(s *cart.State) Event {
	return Event{Type: EventCart, Cart: s}
}

func NavigateEvent(productID string) Event {
	return Event{Type: EventNavigate, ProductID: productID}
}

func ErrorEvent(message string) Event {
	return Event{Type: EventError, Error: message}
}
