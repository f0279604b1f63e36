// Package config holds details like routing and other configs for the app
package config

import (
	"os"
	"strings"
	"time"
)

type AppConfiger interface {
	GetPort() string
	GetAPIURL() string
	GetSessionSecret() string
	GetLogLevel() string
	GetBackendPort() string
	GetDBURL() string
	GetExecTimeout() time.Duration
}

// Env returns the trimmed value of key, or def when it is unset or blank.
func Env(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

// EnvDuration parses key as a time.Duration. Unparseable or non-positive
// values fall back to def.
func EnvDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(Env(key, ""))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
