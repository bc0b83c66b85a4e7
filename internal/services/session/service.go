package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/deepgram/shopfront/internal/config"
	"github.com/deepgram/shopfront/internal/infrastructure/redis"
	"github.com/deepgram/shopfront/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const cookieLifetime = 7 * 24 * time.Hour

var errInvalidToken = errors.New("invalid session token")

// SessionClaims identify a shopper's browsing session. Only the id fields
// are trusted from the cookie; Locale and PeekDismissed are read back from
// the store.
type SessionClaims struct {
	jwt.RegisteredClaims
	SessionID     string `json:"sid"`
	Locale        string `json:"loc"`
	PeekDismissed bool   `json:"peek,omitempty"`
}

type Service struct {
	store Store
}

func NewService(redisService *redis.Service) *Service {
	logger.Info(logger.SERVICE, "Initialising session service")
	return &Service{store: newStore(redisService)}
}

// CreateSession starts a session in language and sets its cookie on w.
func (s *Service) CreateSession(ctx context.Context, w http.ResponseWriter, language string) (*SessionClaims, error) {
	now := time.Now()
	id := uuid.NewString()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cookieLifetime)),
		},
		SessionID: id,
		Locale:    language,
	}

	if err := s.UpdateSession(ctx, w, claims); err != nil {
		return nil, err
	}
	logger.Debug(logger.SERVICE, "Created browsing session %s", id)
	return claims, nil
}

// UpdateSession persists changed claims and reissues the cookie.
func (s *Service) UpdateSession(ctx context.Context, w http.ResponseWriter, claims *SessionClaims) error {
	if err := s.Save(ctx, claims); err != nil {
		return err
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(config.GetJWTSecret())
	if err != nil {
		return err
	}
	http.SetCookie(w, sessionCookie(signed, time.Now().Add(cookieLifetime)))
	return nil
}

// Save persists claims without touching the cookie, for callers holding
// no response writer such as an open websocket.
func (s *Service) Save(ctx context.Context, claims *SessionClaims) error {
	claims.Locale = config.LookupLocale(claims.Locale).Language
	return s.store.Set(ctx, claims.SessionID, claims)
}

// Get returns the stored claims for sessionID, or nil when unknown.
func (s *Service) Get(ctx context.Context, sessionID string) (*SessionClaims, error) {
	return s.store.Get(ctx, sessionID)
}

// ValidateSession resolves the request's cookie to its stored claims. A
// request without a cookie yields nil claims and no error.
func (s *Service) ValidateSession(r *http.Request) (*SessionClaims, error) {
	sessionID, err := cookieSessionID(r)
	if err != nil || sessionID == "" {
		return nil, err
	}
	return s.store.Get(r.Context(), sessionID)
}

// ClearSession forgets the stored session and expires the cookie.
func (s *Service) ClearSession(w http.ResponseWriter, r *http.Request) {
	if sessionID, err := cookieSessionID(r); err == nil && sessionID != "" {
		if err := s.store.Delete(r.Context(), sessionID); err != nil {
			logger.Warn(logger.SERVICE, "Failed to delete session %s: %v", sessionID, err)
		}
	}
	http.SetCookie(w, sessionCookie("", time.Now().Add(-time.Hour)))
}

func sessionCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     config.GetSessionCookieName(),
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

func cookieSessionID(r *http.Request) (string, error) {
	cookie, err := r.Cookie(config.GetSessionCookieName())
	if errors.Is(err, http.ErrNoCookie) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return config.GetJWTSecret(), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.SessionID == "" {
		return "", errInvalidToken
	}
	return claims.SessionID, nil
}
