package config

import (
	"strings"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// BackendConfig points the client at the REST backend that owns jobs,
// resumes, scoring and authentication.
type BackendConfig struct {
	URL     string        `envconfig:"BACKEND_URL" default:"http://localhost:8000"`
	Timeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"30s"`
}

var (
	backendConfig *BackendConfig
	backendOnce   sync.Once
)

func LoadBackendConfig() *BackendConfig {
	backendOnce.Do(func() {
		backendConfig = &BackendConfig{}
		envconfig.MustProcess("", backendConfig)
		backendConfig.URL = strings.TrimRight(backendConfig.URL, "/")
	})
	return backendConfig
}
