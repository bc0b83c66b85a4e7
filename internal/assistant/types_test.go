package assistant

import (
	"encoding/json"
	"testing"

	"github.com/deepgram/shopfront/internal/services/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		frame   string
		want    Command
		wantErr bool
	}{
		{name: "open", frame: `{"type":"open"}`, want: Command{Type: CommandOpen}},
		{name: "submit", frame: `{"type":"submit","text":"show me mugs"}`, want: Command{Type: CommandSubmit, Text: "show me mugs"}},
		{name: "submit without text", frame: `{"type":"submit"}`, wantErr: true},
		{name: "gift action", frame: `{"type":"choose_action","action":"gift"}`, want: Command{Type: CommandChooseAction, Action: "gift"}},
		{name: "unknown action", frame: `{"type":"choose_action","action":"deals"}`, wantErr: true},
		{name: "locale", frame: `{"type":"set_locale","language":"es"}`, want: Command{Type: CommandSetLocale, Language: "es"}},
		{name: "locale without language", frame: `{"type":"set_locale"}`, wantErr: true},
		{name: "cart without product", frame: `{"type":"add_to_cart"}`, wantErr: true},
		{name: "navigate", frame: `{"type":"open_product","product_id":"p-002"}`, want: Command{Type: CommandOpenProduct, ProductID: "p-002"}},
		{name: "unknown type", frame: `{"type":"reboot"}`, wantErr: true},
		{name: "malformed", frame: `{"type":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand([]byte(tt.frame))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStateEventShape(t *testing.T) {
	data, err := json.Marshal(StateEvent(widget.State{Version: 3, Mode: widget.ModeChat, Messages: []widget.Message{}}))
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "state", raw["type"])
	state := raw["state"].(map[string]interface{})
	assert.Equal(t, "chat", state["mode"])
	assert.EqualValues(t, 3, state["version"])
	assert.NotContains(t, raw, "cart")
}
