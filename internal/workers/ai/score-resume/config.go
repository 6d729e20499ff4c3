// internal/workers/ai/score-resume/config.go
package scoreresume

import (
	"time"

	"job-portal/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	timeout := time.Duration(cfg.APIs.GenAI.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Config{Timeout: timeout}
}
