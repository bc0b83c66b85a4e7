package handlers

import (
	"net/http"
	"strings"

	v1mware "github.com/deepgram/shopfront/internal/api/v1/middleware"
	"github.com/deepgram/shopfront/internal/config"
	"github.com/deepgram/shopfront/internal/services/session"
	"github.com/deepgram/shopfront/pkg/httpext"
	"github.com/deepgram/shopfront/pkg/logger"
)

type sessionResponse struct {
	SessionID          string   `json:"session_id"`
	Language           string   `json:"language"`
	PeekDismissed      bool     `json:"peek_dismissed"`
	SupportedLanguages []string `json:"supported_languages"`
}

func toSessionResponse(claims *session.SessionClaims) sessionResponse {
	return sessionResponse{
		SessionID:          claims.SessionID,
		Language:           claims.Locale,
		PeekDismissed:      claims.PeekDismissed,
		SupportedLanguages: config.SupportedLanguages(),
	}
}

// HandleCreateSession returns the caller's browsing session, starting one
// when the request carries no valid cookie.
func HandleCreateSession(sessions *session.Service, w http.ResponseWriter, r *http.Request) {
	var req struct {
		Language string `json:"language" validate:"omitempty,max=16"`
	}
	if err := httpext.DecodeJSON(r, &req); err != nil {
		httpext.BadRequest(w, err)
		return
	}

	if claims, err := sessions.ValidateSession(r); err == nil && claims != nil {
		httpext.JsonResponse(w, http.StatusOK, toSessionResponse(claims))
		return
	}

	language := req.Language
	if language == "" {
		language = preferredLanguage(r)
	}

	claims, err := sessions.CreateSession(r.Context(), w, language)
	if err != nil {
		logger.Error(logger.HANDLER, "Failed to create browsing session: %v", err)
		httpext.JsonError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	httpext.JsonResponse(w, http.StatusCreated, toSessionResponse(claims))
}

// HandleSetLocale switches the session's UI language.
func HandleSetLocale(sessions *session.Service, w http.ResponseWriter, r *http.Request) {
	var req struct {
		Language string `json:"language" validate:"required,max=16"`
	}
	if err := httpext.DecodeJSON(r, &req); err != nil {
		httpext.BadRequest(w, err)
		return
	}

	claims := v1mware.GetSession(r)
	claims.Locale = req.Language
	if err := sessions.UpdateSession(r.Context(), w, claims); err != nil {
		logger.Error(logger.HANDLER, "Failed to update session locale: %v", err)
		httpext.JsonError(w, "Failed to update session", http.StatusInternalServerError)
		return
	}
	httpext.JsonResponse(w, http.StatusOK, toSessionResponse(claims))
}

// preferredLanguage takes the first Accept-Language entry.
func preferredLanguage(r *http.Request) string {
	header := r.Header.Get("Accept-Language")
	if header == "" {
		return config.DefaultLanguage
	}
	first := strings.Split(header, ",")[0]
	return strings.TrimSpace(strings.Split(first, ";")[0])
}
