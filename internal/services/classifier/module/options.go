package module

import (
	"time"

	"modguard/internal/platform/config"

	openai "github.com/sashabaranov/go-openai"
)

// Options holds configuration settings for the classifier module
type Options struct {
	APIKey    string
	BaseURL   string
	Model     string
	Timeout   time.Duration
	CacheSize int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	cf := cfg.Prefix("CORE_CLASSIFIER_")
	return Options{
		APIKey:    cf.MayString("API_KEY", ""),
		BaseURL:   cf.MayString("BASE_URL", ""),
		Model:     cf.MayString("MODEL", openai.GPT4oMini),
		Timeout:   cf.MayDuration("TIMEOUT", 5*time.Second),
		CacheSize: cf.MayInt("CACHE_SIZE", 1024),
	}
}
