// internal/workers/data-access/search-jobs/config.go
package searchjobs

import (
	"time"

	"job-portal/internal/common/config"
)

type Config struct {
	Index   string
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	timeout := config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Config{
		Index:   cfg.Database.Elasticsearch.JobsIndex,
		Timeout: timeout,
	}
}
