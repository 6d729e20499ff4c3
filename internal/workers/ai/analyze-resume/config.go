// internal/workers/ai/analyze-resume/config.go
package analyzeresume

import (
	"time"

	"job-portal/internal/common/config"
)

type Config struct {
	Timeout       time.Duration
	MaxTextLength int
}

func LoadConfig(cfg *config.Config) *Config {
	timeout := time.Duration(cfg.APIs.GenAI.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Config{
		Timeout:       timeout,
		MaxTextLength: 50000,
	}
}
