package config

import "time"

type SessionConfig interface {
	GetSessionSecret() string
	GetSessionCookieName() string
	GetSessionMaxAge() time.Duration
}

type SecurityConfig interface {
	GetRefreshRateLimit() (requests int, window time.Duration)
}

type Session struct{}

var _ SessionConfig = Session{}

// GetSessionSecret falls back to NEXTAUTH_SECRET so the storefront's existing env file works unchanged.
func (Session) GetSessionSecret() string {
	return GetEnv("SESSION_SECRET", GetEnv("NEXTAUTH_SECRET", ""))
}

func (Session) GetSessionCookieName() string {
	return GetEnv("SESSION_COOKIE_NAME", "storefront.session-token")
}

func (Session) GetSessionMaxAge() time.Duration {
	return GetEnvDuration("SESSION_MAX_AGE", 30*24*time.Hour) // 30 days
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetRefreshRateLimit() (int, time.Duration) {
	return GetEnvInt("RATELIMIT_REFRESH_REQUESTS", 20), GetEnvDuration("RATELIMIT_REFRESH_WINDOW_SEC", time.Minute)
}
