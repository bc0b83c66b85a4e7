package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	v1mware "github.com/deepgram/shopfront/internal/api/v1/middleware"
	"github.com/deepgram/shopfront/internal/assistant"
	"github.com/deepgram/shopfront/internal/config"
	"github.com/deepgram/shopfront/internal/connections"
	"github.com/deepgram/shopfront/internal/services"
	"github.com/deepgram/shopfront/internal/services/audio"
	"github.com/deepgram/shopfront/internal/services/cart"
	"github.com/deepgram/shopfront/internal/services/session"
	"github.com/deepgram/shopfront/internal/services/transcription"
	"github.com/deepgram/shopfront/internal/services/widget"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// TODO: restrict to the storefront origin once it is configurable
			return true
		},
	}
)

// socketPlayer forwards decoded speech to the page and holds the turn for
// the clip's duration, so isSpeaking tracks what the shopper hears.
type socketPlayer struct {
	client *connections.Client
}

func (p *socketPlayer) Play(ctx context.Context, buf *audio.Buffer) error {
	err := p.client.WriteJSON(assistant.Event{
		Type:       assistant.EventAudio,
		Audio:      buf.Base64(),
		SampleRate: buf.SampleRate,
		Channels:   buf.Channels(),
	})
	if err != nil {
		return err
	}

	timer := time.NewTimer(buf.Duration())
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// assistantSocket drives one controller from one websocket.
type assistantSocket struct {
	ctx        context.Context
	client     *connections.Client
	sessions   *session.Service
	source     *transcription.ChannelSource
	format     string
	controller *widget.Controller

	mu     sync.Mutex
	claims *session.SessionClaims
}

// HandleAssistantWebSocket attaches an assistant controller to the caller's
// browsing session. Text frames carry commands; binary frames carry one
// recorded utterance each, in the container named by ?audio_format=.
func HandleAssistantWebSocket(svc *services.Services, w http.ResponseWriter, r *http.Request) {
	claims := v1mware.GetSession(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to upgrade assistant socket")
		return
	}

	manager := svc.GetConnectionManager()
	client := manager.AddConnection(conn, claims.SessionID)
	defer func() {
		manager.RemoveConnection(conn)
		conn.Close()
	}()
	client.KeepAlive()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := &assistantSocket{
		ctx:      ctx,
		client:   client,
		sessions: svc.GetSessionService(),
		source:   transcription.NewChannelSource(),
		format:   r.URL.Query().Get("audio_format"),
		claims:   claims,
	}

	var listener widget.Listener
	if oa := svc.GetOpenAIService(); oa != nil {
		listener = transcription.NewAdapter(transcription.NewWhisperRecognizer(oa.GetClient(), s.source))
	}

	sessionID := claims.SessionID
	effects := cart.NewEffects(svc.GetCartService(), sessionID,
		func(state *cart.State) { manager.Broadcast(sessionID, assistant.CartEvent(state)) },
		func(productID string) { s.send(assistant.NavigateEvent(productID)) },
	)

	s.controller = widget.NewController(ctx, widget.Config{
		Backend:       svc.GetChatService(),
		Catalog:       svc.GetCatalog(),
		Listener:      listener,
		Speaker:       audio.NewCodec(&socketPlayer{client: client}),
		Effects:       effects,
		Language:      claims.Locale,
		PeekDismissed: claims.PeekDismissed,
		PeekDelay:     config.GetPeekDelay(),
		OnChange:      s.onChange,
	})
	defer s.controller.Shutdown()

	log.Info().Str("session_id", sessionID).Str("language", claims.Locale).Msg("Assistant socket connected")
	s.send(assistant.StateEvent(s.controller.Snapshot()))
	s.readLoop()
	log.Info().Str("session_id", sessionID).Msg("Assistant socket closed")
}

func (s *assistantSocket) send(ev assistant.Event) {
	if err := s.client.WriteJSON(ev); err != nil {
		log.Debug().Err(err).Str("event", ev.Type).Msg("Failed to write assistant event")
	}
}

func (s *assistantSocket) onChange(state widget.State) {
	s.send(assistant.StateEvent(state))
	s.persist(state)
}

// persist records locale and peek changes on the browsing session so a
// reload restores them.
func (s *assistantSocket) persist(state widget.State) {
	s.mu.Lock()
	if s.claims.Locale == state.Language && s.claims.PeekDismissed == state.PeekDismissed {
		s.mu.Unlock()
		return
	}
	s.claims.Locale = state.Language
	s.claims.PeekDismissed = state.PeekDismissed
	claims := *s.claims
	s.mu.Unlock()

	if err := s.sessions.Save(s.ctx, &claims); err != nil {
		log.Warn().Err(err).Str("session_id", claims.SessionID).Msg("Failed to persist assistant preferences")
	}
}

func (s *assistantSocket) readLoop() {
	conn := s.client.Conn()
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("Unexpected assistant socket closure")
			}
			return
		}

		switch messageType {
		case websocket.BinaryMessage:
			if !s.source.Push(transcription.Utterance{Data: data, Format: s.format}) {
				s.send(assistant.ErrorEvent("an utterance is already being transcribed"))
			}
		case websocket.TextMessage:
			cmd, err := assistant.ParseCommand(data)
			if err != nil {
				s.send(assistant.ErrorEvent(err.Error()))
				continue
			}
			s.dispatch(cmd)
		}
	}
}

// dispatch applies cmd. Commands that wait on the backend run in their own
// goroutine so the socket keeps reading, e.g. an utterance upload. They run
// on the socket's context: each backend call carries its own timeout, and
// playback must outlive them.
func (s *assistantSocket) dispatch(cmd assistant.Command) {
	c := s.controller
	switch cmd.Type {
	case assistant.CommandMount:
		c.Mount()
	case assistant.CommandOpen:
		c.Open()
	case assistant.CommandClose:
		c.Close()
	case assistant.CommandDismissPeek:
		c.DismissPeek()
	case assistant.CommandChooseAction:
		go c.ChooseAction(s.ctx, widget.QuickAction(cmd.Action))
	case assistant.CommandInput:
		c.SetInput(cmd.Text)
	case assistant.CommandSubmit:
		go c.Submit(s.ctx, cmd.Text)
	case assistant.CommandToggle:
		c.Toggle()
	case assistant.CommandListen:
		c.Listen()
	case assistant.CommandSetLocale:
		go c.SetLocale(s.ctx, cmd.Language)
	case assistant.CommandDismissAlert:
		c.DismissAlert()
	case assistant.CommandAddToCart:
		if !c.AddToCart(cmd.ProductID) {
			s.send(assistant.ErrorEvent("unknown product " + cmd.ProductID))
		}
	case assistant.CommandOpenProduct:
		if !c.OpenProduct(cmd.ProductID) {
			s.send(assistant.ErrorEvent("unknown product " + cmd.ProductID))
		}
	}
}

