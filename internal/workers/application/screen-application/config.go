// internal/workers/application/screen-application/config.go
package screenapplication

import (
	"time"

	"job-portal/internal/common/config"
)

type Config struct {
	// RunTimeout bounds one dispatcher run, scoring included.
	RunTimeout time.Duration
	// WriteTimeout bounds the terminal status write, which outlives a timed-out run.
	WriteTimeout time.Duration
	// NotifyInline sends the decision notification from the run itself. The
	// zeebe backend leaves it to the process's send-notification task.
	NotifyInline bool
}

func LoadConfig(cfg *config.Config) *Config {
	runTimeout := time.Duration(cfg.Screening.RunTimeout) * time.Millisecond
	if runTimeout <= 0 {
		runTimeout = 2 * time.Minute
	}
	writeTimeout := time.Duration(cfg.Screening.WriteTimeout) * time.Millisecond
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &Config{
		RunTimeout:   runTimeout,
		WriteTimeout: writeTimeout,
		NotifyInline: cfg.Screening.Backend != config.ScreeningBackendZeebe,
	}
}
