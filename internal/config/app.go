package config

import (
	"sync"

	"github.com/kelseyhightower/envconfig"
)

type AppConfig struct {
	Name    string `envconfig:"APP_NAME" default:"ATS Portal"`
	Env     string `envconfig:"APP_ENV" default:"development"`
	Port    string `envconfig:"APP_PORT" default:":3000"`
	BaseURL string `envconfig:"APP_URL"`
}

var (
	appConfig *AppConfig
	appOnce   sync.Once
)

func LoadAppConfig() *AppConfig {
	appOnce.Do(func() {
		appConfig = &AppConfig{}
		envconfig.MustProcess("", appConfig)
	})
	return appConfig
}

func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}
