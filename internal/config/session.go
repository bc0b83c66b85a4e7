package config

import "sync"

// Session cookies are HS256 JWTs. The secret and cookie name are process
// globals so tests can swap them and restore the previous value.
var (
	sessionMu         sync.RWMutex
	jwtSecret         = []byte(GetEnvOrDefault("JWT_SECRET", "shopfront-development-secret"))
	sessionCookieName = GetEnvOrDefault("SESSION_COOKIE_NAME", "shopfront_session")
)

func GetJWTSecret() []byte {
	sessionMu.RLock()
	defer sessionMu.RUnlock()
	return jwtSecret
}

// SetJWTSecret replaces the signing secret and returns a func restoring it.
func SetJWTSecret(secret []byte) func() {
	return swap(&jwtSecret, secret)
}

func GetSessionCookieName() string {
	sessionMu.RLock()
	defer sessionMu.RUnlock()
	return sessionCookieName
}

func SetSessionCookieName(name string) func() {
	return swap(&sessionCookieName, name)
}

func swap[T any](target *T, value T) func() {
	sessionMu.Lock()
	previous := *target
	*target = value
	sessionMu.Unlock()

	return func() {
		sessionMu.Lock()
		*target = previous
		sessionMu.Unlock()
	}
}
