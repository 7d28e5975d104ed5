package config

import "time"

type Config interface {
	EnvConfig
	CorsConfig
	BackendConfig
	SessionConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetSupportedLocales() []string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

// BackendConfig describes the remote storefront API. Values are read from the
// environment on every call so a changed BACKEND_API_URL is picked up per request.
type BackendConfig interface {
	GetBackendAPIURL() string
	GetBackendTimeout() time.Duration
	GetRefreshTimeout() time.Duration
	GetSettingsRetryInterval() time.Duration
}

type mainConfig struct {
	EnvVars
	Cors
	Backend
	Session
	Security
}

func New() Config {
	return mainConfig{}
}
