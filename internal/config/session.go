package config

import (
	"sync"

	"github.com/kelseyhightower/envconfig"
)

type SessionConfig struct {
	// Driver is one of sqlite, postgres or memory.
	Driver string `envconfig:"SESSION_DB_DRIVER" default:"sqlite"`
	// DSN defaults to a local file for sqlite and to the DB_* settings for
	// postgres.
	DSN        string `envconfig:"SESSION_DB_DSN"`
	CookieName string `envconfig:"SESSION_COOKIE" default:"ats_sid"`
	Key        string `envconfig:"SESSION_KEY" default:"default"`
	// CacheSize caps the authenticated sessions the portal keeps in memory.
	CacheSize int `envconfig:"SESSION_CACHE_SIZE" default:"10000"`
}

var (
	sessionConfig *SessionConfig
	sessionOnce   sync.Once
)

func LoadSessionConfig() *SessionConfig {
	sessionOnce.Do(func() {
		sessionConfig = &SessionConfig{}
		envconfig.MustProcess("", sessionConfig)
	})
	return sessionConfig
}
