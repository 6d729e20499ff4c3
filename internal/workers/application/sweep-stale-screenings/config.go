// internal/workers/application/sweep-stale-screenings/config.go
package sweepstalescreenings

import (
	"time"

	"job-portal/internal/common/config"
)

type Config struct {
	Interval    time.Duration
	StaleAfter  time.Duration
	BatchSize   int
	MaxAttempts int
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Interval:    config.GetDuration(cfg.Screening.SweepInterval),
		StaleAfter:  config.GetDuration(cfg.Screening.StaleAfter),
		BatchSize:   cfg.Screening.SweepBatch,
		MaxAttempts: cfg.Screening.MaxAttempts,
	}
}
