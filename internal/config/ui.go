package config

import (
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type UIConfig struct {
	PageSize          int           `envconfig:"UI_PAGE_SIZE" default:"10"`
	SearchDebounce    time.Duration `envconfig:"UI_SEARCH_DEBOUNCE" default:"500ms"`
	JobSearchDebounce time.Duration `envconfig:"UI_JOB_SEARCH_DEBOUNCE" default:"300ms"`
	RedirectDelay     time.Duration `envconfig:"UI_REDIRECT_DELAY" default:"2s"`
}

var (
	uiConfig *UIConfig
	uiOnce   sync.Once
)

func LoadUIConfig() *UIConfig {
	uiOnce.Do(func() {
		uiConfig = &UIConfig{}
		envconfig.MustProcess("", uiConfig)
		if uiConfig.PageSize <= 0 {
			uiConfig.PageSize = 10
		}
	})
	return uiConfig
}
