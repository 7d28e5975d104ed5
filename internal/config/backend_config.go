package config

import (
	"strings"
	"time"
)

const backendURLVar = "BACKEND_API_URL"

type Backend struct{}

var _ BackendConfig = Backend{}

// GetBackendAPIURL returns the backend base URL without a trailing slash.
// NEXT_PUBLIC_API_URL is honoured for deployments sharing the storefront's env file.
func (Backend) GetBackendAPIURL() string {
	url := GetEnv(backendURLVar, GetEnv("NEXT_PUBLIC_API_URL", "http://localhost:8000/api"))
	return strings.TrimRight(url, "/")
}

func (Backend) GetBackendTimeout() time.Duration {
	return GetEnvDuration("BACKEND_TIMEOUT", 10*time.Second)
}

// GetRefreshTimeout bounds a shared session refresh so a hung backend call
// cannot keep the in-flight slot occupied forever.
func (Backend) GetRefreshTimeout() time.Duration {
	return GetEnvDuration("REFRESH_TIMEOUT", 15*time.Second)
}

// GetSettingsRetryInterval is how long a locale whose settings fetch failed
// answers with that failure before the backend is asked again.
func (Backend) GetSettingsRetryInterval() time.Duration {
	return GetEnvDuration("SETTINGS_RETRY_INTERVAL", 5*time.Second)
}
