// Package widget implements the assistant session controller: the panel's
// mode state machine, the message transcript and the turn pipeline that ties
// the backend, speech input and audio output together.
package widget

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/deepgram/shopfront/internal/config"
	"github.com/deepgram/shopfront/internal/metrics"
	"github.com/deepgram/shopfront/internal/services/catalog"
	"github.com/deepgram/shopfront/internal/services/chat"
	"github.com/deepgram/shopfront/internal/services/transcription"
	"github.com/deepgram/shopfront/pkg/logger"
)

// Backend is the assistant backend the controller talks to.
type Backend interface {
	NewSession(ctx context.Context, locale config.Locale, cat *catalog.Catalog) (*chat.Session, error)
	Converse(ctx context.Context, session *chat.Session, text string) (string, error)
	SynthesizeSpeech(ctx context.Context, text, language string) string
}

// Listener is the speech input capability.
type Listener interface {
	StartListening(ctx context.Context, localeTag string) (<-chan transcription.Event, error)
	Stop()
}

// Speaker plays synthesized speech.
type Speaker interface {
	DecodeAndPlay(ctx context.Context, payload string, sampleRate, channels int) bool
}

// Effects receives the controller's only outward side effects.
type Effects interface {
	RequestAddToCart(productID string)
	RequestNavigateToProduct(productID string)
}

type QuickAction string

const (
	ActionChat  QuickAction = "chat"
	ActionVoice QuickAction = "voice"
	ActionGift  QuickAction = "gift"
)

// State is a snapshot of the controller. Version increases with every change.
type State struct {
	Version          uint64    `json:"version"`
	Mode             Mode      `json:"mode"`
	Messages         []Message `json:"messages"`
	IsTyping         bool      `json:"isTyping"`
	IsListening      bool      `json:"isListening"`
	IsSpeaking       bool      `json:"isSpeaking"`
	PendingInputText string    `json:"pendingInputText"`
	Alert            string    `json:"alert,omitempty"`
	PeekDismissed    bool      `json:"peekDismissed"`
	Language         string    `json:"language"`
	Greeting         string    `json:"greeting,omitempty"`
}

type Config struct {
	Backend  Backend
	Catalog  *catalog.Catalog
	Listener Listener
	Speaker  Speaker
	Effects  Effects

	Language      string
	PeekDismissed bool
	PeekDelay     time.Duration
	// AfterFunc schedules the peek timer; defaults to time.AfterFunc.
	AfterFunc func(d time.Duration, f func()) (stop func() bool)
	// OnChange receives a snapshot after every state change.
	OnChange func(State)
}

type Controller struct {
	ctx    context.Context
	cancel context.CancelFunc

	backend  Backend
	catalog  *catalog.Catalog
	listener Listener
	speaker  Speaker
	effects  Effects

	peekDelay time.Duration
	afterFunc func(time.Duration, func()) func() bool
	onChange  func(State)

	// sessionMu serialises session creation so at most one is ever installed.
	sessionMu sync.Mutex
	// startMu serialises listening starts.
	startMu sync.Mutex

	mu         sync.Mutex
	state      State
	locale     config.Locale
	session    *chat.Session
	generation uint64
	listenSeq  uint64
	armed      uint64 // listenSeq of the live listening session, 0 when none
	pending    int    // turns accepted and not yet finished, speech included
	stopPeek   func() bool
}

// NewController builds a controller in the closed mode and opens the first
// backend session. The controller's background work ends with ctx or Shutdown.
func NewController(ctx context.Context, cfg Config) *Controller {
	ctx, cancel := context.WithCancel(ctx)

	locale := config.LookupLocale(cfg.Language)
	c := &Controller{
		ctx:       ctx,
		cancel:    cancel,
		backend:   cfg.Backend,
		catalog:   cfg.Catalog,
		listener:  cfg.Listener,
		speaker:   cfg.Speaker,
		effects:   cfg.Effects,
		peekDelay: cfg.PeekDelay,
		afterFunc: cfg.AfterFunc,
		onChange:  cfg.OnChange,
		locale:    locale,
		state: State{
			Mode:          ModeClosed,
			Messages:      []Message{},
			PeekDismissed: cfg.PeekDismissed,
			Language:      locale.Language,
		},
	}
	if c.afterFunc == nil {
		c.afterFunc = func(d time.Duration, f func()) func() bool {
			return time.AfterFunc(d, f).Stop
		}
	}
	if c.peekDelay <= 0 {
		c.peekDelay = 3 * time.Second
	}

	if _, err := c.ensureSession(ctx, 0); err != nil {
		logger.Warn(logger.ASSISTANT, "Initial assistant session unavailable: %v", err)
	}
	return c
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() State {
	s := c.state
	s.Messages = append([]Message{}, c.state.Messages...)
	return s
}

// SessionID identifies the live backend session, or "" while none exists.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.ID()
}

// changedLocked bumps the version and returns the snapshot to publish.
func (c *Controller) changedLocked() State {
	c.state.Version++
	return c.snapshotLocked()
}

func (c *Controller) publish(s State) {
	if c.onChange != nil {
		c.onChange(s)
	}
}

// transitionLocked applies t, reporting whether the mode changed.
func (c *Controller) transitionLocked(t Trigger) bool {
	to, ok := next(c.state.Mode, t, len(c.state.Messages) > 0)
	if !ok {
		return false
	}
	if to != c.state.Mode {
		logger.Debug(logger.ASSISTANT, "Mode %s -> %s on %s", c.state.Mode, to, t)
	}
	c.state.Mode = to
	return true
}

// Mount starts the peek timer unless peek was dismissed in this browsing session.
func (c *Controller) Mount() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.PeekDismissed || c.state.Mode != ModeClosed || c.stopPeek != nil {
		return
	}
	c.stopPeek = c.afterFunc(c.peekDelay, c.showPeek)
}

func (c *Controller) showPeek() {
	c.mu.Lock()
	if c.state.PeekDismissed || !c.transitionLocked(TriggerPeekTimer) {
		c.mu.Unlock()
		return
	}
	c.state.Greeting = c.locale.Greeting
	s := c.changedLocked()
	c.mu.Unlock()
	c.publish(s)
}

// DismissPeek collapses the greeting bubble for the rest of the browsing session.
func (c *Controller) DismissPeek() bool {
	c.mu.Lock()
	if !c.transitionLocked(TriggerDismissPeek) {
		c.mu.Unlock()
		return false
	}
	c.dismissPeekLocked()
	s := c.changedLocked()
	c.mu.Unlock()
	c.publish(s)
	return true
}

func (c *Controller) dismissPeekLocked() {
	c.state.PeekDismissed = true
	c.state.Greeting = ""
	if c.stopPeek != nil {
		c.stopPeek()
	}
}

// Open shows the panel, resuming the conversation if one exists.
func (c *Controller) Open() bool {
	c.mu.Lock()
	if !c.transitionLocked(TriggerOpen) {
		c.mu.Unlock()
		return false
	}
	c.dismissPeekLocked()
	s := c.changedLocked()
	c.mu.Unlock()
	c.publish(s)
	return true
}

// Close hides the panel. The transcript is kept.
func (c *Controller) Close() bool {
	c.mu.Lock()
	if !c.transitionLocked(TriggerClose) {
		c.mu.Unlock()
		return false
	}
	c.stopListeningLocked()
	s := c.changedLocked()
	c.mu.Unlock()
	c.publish(s)
	return true
}

// ChooseAction handles a quick-action shortcut. Voice may be chosen from the
// launcher directly; the others require the initial panel.
func (c *Controller) ChooseAction(ctx context.Context, action QuickAction) bool {
	switch action {
	case ActionChat:
		return c.simpleTransition(TriggerChooseChat)
	case ActionVoice:
		c.mu.Lock()
		if !c.transitionLocked(TriggerChooseVoice) {
			c.mu.Unlock()
			return false
		}
		c.dismissPeekLocked()
		s := c.changedLocked()
		c.mu.Unlock()
		c.publish(s)
		c.startListening()
		return true
	case ActionGift:
		c.mu.Lock()
		if c.state.Mode != ModeInitial || c.state.IsTyping {
			c.mu.Unlock()
			return false
		}
		request := c.locale.GiftRequest
		c.mu.Unlock()
		return c.submit(ctx, request, true)
	}
	return false
}

// Toggle switches between text and voice conversation. Entering voice
// engages the microphone.
func (c *Controller) Toggle() bool {
	c.mu.Lock()
	if !c.transitionLocked(TriggerToggle) {
		c.mu.Unlock()
		return false
	}
	voice := c.state.Mode == ModeVoice
	if !voice {
		c.stopListeningLocked()
	}
	s := c.changedLocked()
	c.mu.Unlock()
	c.publish(s)

	if voice {
		c.startListening()
	}
	return true
}

// SetInput records draft text. Typing in the initial panel starts a chat.
func (c *Controller) SetInput(text string) bool {
	c.mu.Lock()
	if !c.transitionLocked(TriggerInput) {
		c.mu.Unlock()
		return false
	}
	c.state.PendingInputText = text
	s := c.changedLocked()
	c.mu.Unlock()
	c.publish(s)
	return true
}

func (c *Controller) simpleTransition(t Trigger) bool {
	c.mu.Lock()
	if !c.transitionLocked(t) {
		c.mu.Unlock()
		return false
	}
	s := c.changedLocked()
	c.mu.Unlock()
	c.publish(s)
	return true
}

// DismissAlert clears a pending alert.
func (c *Controller) DismissAlert() {
	c.mu.Lock()
	if c.state.Alert == "" {
		c.mu.Unlock()
		return
	}
	c.state.Alert = ""
	s := c.changedLocked()
	c.mu.Unlock()
	c.publish(s)
}

// Submit runs one turn and blocks until it completes, including speech in
// voice mode. It returns false without touching the transcript when the text
// is blank, the panel is not open, or another turn is in flight.
func (c *Controller) Submit(ctx context.Context, text string) bool {
	return c.submit(ctx, text, false)
}

type turnOutcome string

const (
	outcomeReply    turnOutcome = "reply"
	outcomeFallback turnOutcome = "fallback"
	outcomeRetry    turnOutcome = "retry"
	outcomeStale    turnOutcome = "stale"
)

func (c *Controller) submit(ctx context.Context, text string, gift bool) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	c.mu.Lock()
	if c.state.IsTyping || !c.state.Mode.Open() {
		c.mu.Unlock()
		return false
	}
	if c.armed != 0 || c.state.IsListening {
		// Typed input takes over from a pending utterance.
		c.stopListeningLocked()
	}
	c.pending++
	defer c.turnDone()
	if c.state.Mode == ModeInitial {
		c.transitionLocked(TriggerChooseChat)
	}
	c.state.Messages = append(c.state.Messages, newMessage(RoleUser, text, c.catalog))
	c.state.IsTyping = true
	c.state.PendingInputText = ""
	gen := c.generation
	locale := c.locale
	s := c.changedLocked()
	c.mu.Unlock()
	c.publish(s)

	reply, outcome := c.converse(ctx, gen, locale, text, gift)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		logger.Debug(logger.ASSISTANT, "Discarding reply for superseded session")
		metrics.AssistantTurns.WithLabelValues(string(outcomeStale)).Inc()
		return true
	}
	c.state.Messages = append(c.state.Messages, newMessage(RoleAssistant, reply, c.catalog))
	c.state.IsTyping = false
	voice := c.state.Mode == ModeVoice
	s = c.changedLocked()
	c.mu.Unlock()
	c.publish(s)
	metrics.AssistantTurns.WithLabelValues(string(outcome)).Inc()

	if voice {
		c.speak(ctx, gen, reply, locale)
	}
	return true
}

func (c *Controller) converse(ctx context.Context, gen uint64, locale config.Locale, text string, gift bool) (string, turnOutcome) {
	session, err := c.ensureSession(ctx, gen)
	if err == nil {
		var reply string
		reply, err = c.backend.Converse(ctx, session, text)
		if err == nil {
			return reply, outcomeReply
		}
	}

	if errors.Is(err, chat.ErrBackendUnavailable) {
		if gift || strings.Contains(strings.ToLower(text), "gift") {
			return locale.GiftFollowUp, outcomeFallback
		}
		return locale.Fallback, outcomeFallback
	}

	logger.Warn(logger.ASSISTANT, "Assistant turn failed: %v", err)
	return locale.Retry, outcomeRetry
}

func (c *Controller) speak(ctx context.Context, gen uint64, reply string, locale config.Locale) {
	if c.speaker == nil {
		return
	}
	audio := c.backend.SynthesizeSpeech(ctx, reply, locale.Language)
	if audio == "" {
		metrics.SpeechPlayback.WithLabelValues("skipped").Inc()
		return
	}

	c.mu.Lock()
	if gen != c.generation || c.state.Mode != ModeVoice {
		c.mu.Unlock()
		return
	}
	c.state.IsSpeaking = true
	s := c.changedLocked()
	c.mu.Unlock()
	c.publish(s)

	played := c.speaker.DecodeAndPlay(ctx, audio, config.SpeechSampleRate, 1)
	if played {
		metrics.SpeechPlayback.WithLabelValues("played").Inc()
	} else {
		metrics.SpeechPlayback.WithLabelValues("failed").Inc()
	}

	c.mu.Lock()
	if gen != c.generation || !c.state.IsSpeaking {
		c.mu.Unlock()
		return
	}
	c.state.IsSpeaking = false
	s = c.changedLocked()
	c.mu.Unlock()
	c.publish(s)
}

// ensureSession returns the live session for gen, creating it if needed. A
// session created for a superseded generation is never installed.
func (c *Controller) ensureSession(ctx context.Context, gen uint64) (*chat.Session, error) {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return nil, errors.New("session superseded")
	}
	if c.session != nil {
		session := c.session
		c.mu.Unlock()
		return session, nil
	}
	locale := c.locale
	c.mu.Unlock()

	session, err := c.backend.NewSession(ctx, locale, c.catalog)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return nil, errors.New("session superseded")
	}
	c.session = session
	return session, nil
}

// SetLocale replaces the backend session with one bound to language. Turns
// still in flight against the old session are discarded when they return.
func (c *Controller) SetLocale(ctx context.Context, language string) {
	locale := config.LookupLocale(language)

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.session = nil
	c.locale = locale
	c.state.Language = locale.Language
	c.state.IsTyping = false
	c.state.IsSpeaking = false
	c.stopListeningLocked()
	if c.state.Greeting != "" {
		c.state.Greeting = locale.Greeting
	}
	s := c.changedLocked()
	c.mu.Unlock()
	c.publish(s)

	if _, err := c.ensureSession(ctx, gen); err != nil {
		logger.Warn(logger.ASSISTANT, "Assistant session for %s unavailable: %v", locale.Name, err)
	}
}

// Listen re-engages the microphone in voice mode.
func (c *Controller) Listen() bool {
	c.mu.Lock()
	ok := c.state.Mode == ModeVoice && !c.state.IsTyping
	c.mu.Unlock()
	if !ok {
		return false
	}
	return c.startListening()
}

func (c *Controller) startListening() bool {
	c.startMu.Lock()
	defer c.startMu.Unlock()

	c.mu.Lock()
	if c.state.IsTyping {
		c.mu.Unlock()
		logger.Debug(logger.ASSISTANT, "Not listening while a turn is in flight")
		return false
	}
	c.listenSeq++
	seq := c.listenSeq
	gen := c.generation
	tag := c.locale.SpeechTag
	c.mu.Unlock()

	var events <-chan transcription.Event
	err := transcription.ErrCapabilityUnavailable
	if c.listener != nil {
		events, err = c.listener.StartListening(c.ctx, tag)
	}
	if err != nil {
		logger.Info(logger.ASSISTANT, "Voice input unavailable: %v", err)
		c.mu.Lock()
		c.state.Alert = c.locale.VoiceAlert
		c.state.IsListening = false
		if c.state.Mode == ModeVoice {
			c.transitionLocked(TriggerToggle)
		}
		s := c.changedLocked()
		c.mu.Unlock()
		c.publish(s)
		return false
	}

	c.mu.Lock()
	live := seq == c.listenSeq
	if live {
		c.armed = seq
	} else {
		// Stopped while the session was starting.
		c.listener.Stop()
	}
	c.mu.Unlock()

	go c.consume(seq, gen, events)
	return live
}

func (c *Controller) consume(seq, gen uint64, events <-chan transcription.Event) {
	var transcript string
	for ev := range events {
		switch ev.Type {
		case transcription.EventStart:
			c.setListening(seq, true)
		case transcription.EventResult:
			transcript = ev.Transcript
		case transcription.EventError:
			logger.Debug(logger.ASSISTANT, "Transcription error: %v", ev.Err)
		case transcription.EventEnd:
			c.setListening(seq, false)
		}
	}

	c.mu.Lock()
	if c.armed == seq {
		c.armed = 0
	}
	current := transcript != "" && seq == c.listenSeq && gen == c.generation && c.state.Mode == ModeVoice
	if current {
		// Held across the hand-off so Busy never reports idle in between.
		c.pending++
	}
	c.mu.Unlock()

	if current {
		defer c.turnDone()
		c.Submit(c.ctx, transcript)
	}
}

func (c *Controller) turnDone() {
	c.mu.Lock()
	c.pending--
	c.mu.Unlock()
}

// Busy reports whether a turn is still running, including speech playback
// and a transcript about to be submitted.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending > 0
}

// Listening reports whether a listening session is armed or capturing.
func (c *Controller) Listening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.armed != 0 || c.state.IsListening
}

func (c *Controller) setListening(seq uint64, listening bool) {
	c.mu.Lock()
	if seq != c.listenSeq || c.state.IsListening == listening {
		c.mu.Unlock()
		return
	}
	c.state.IsListening = listening
	s := c.changedLocked()
	c.mu.Unlock()
	c.publish(s)
}

func (c *Controller) stopListeningLocked() {
	c.listenSeq++
	c.armed = 0
	c.state.IsListening = false
	if c.listener != nil {
		c.listener.Stop()
	}
}

// AddToCart forwards a cart request for a known product.
func (c *Controller) AddToCart(productID string) bool {
	if c.effects == nil || c.catalog == nil || !c.catalog.Contains(productID) {
		return false
	}
	c.effects.RequestAddToCart(productID)
	return true
}

// OpenProduct forwards a navigation request for a known product.
func (c *Controller) OpenProduct(productID string) bool {
	if c.effects == nil || c.catalog == nil || !c.catalog.Contains(productID) {
		return false
	}
	c.effects.RequestNavigateToProduct(productID)
	return true
}

// Shutdown stops timers and speech input and ends background work.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	if c.stopPeek != nil {
		c.stopPeek()
	}
	c.stopListeningLocked()
	c.mu.Unlock()
	c.cancel()
}
