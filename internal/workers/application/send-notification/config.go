// internal/workers/application/send-notification/config.go
package sendnotification

import (
	"time"

	"job-portal/internal/common/config"
)

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	Timeout      time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	aws := cfg.Integrations.AWS
	timeout := config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Config{
		EmailEnabled: cfg.Notifications.Email.Enabled && aws.SES.Enabled && aws.SES.FromEmail != "",
		SMSEnabled:   cfg.Notifications.SMS.Enabled && aws.SNS.Enabled,
		FromEmail:    aws.SES.FromEmail,
		Timeout:      timeout,
	}
}
