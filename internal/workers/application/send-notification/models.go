// internal/workers/application/send-notification/models.go
package sendnotification

import "job-portal/internal/models"

type Input struct {
	ApplicationID     string                   `json:"applicationId"`
	ApplicationStatus models.ApplicationStatus `json:"applicationStatus"`
	// StatusWritten comes from the screening task; false means nothing changed.
	StatusWritten     *bool                    `json:"statusWritten,omitempty"`
}

type Output struct {
	NotificationID string   `json:"notificationId"`
	Status         string   `json:"status"` // "sent", "failed", "disabled"
	Channels       []string `json:"channels,omitempty"`
	SentAt         string   `json:"sentAt"` // ISO 8601
}

const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

var templates = map[models.ApplicationStatus]models.NotificationTemplate{
	models.StatusApplied: {
		Type:    "application_applied",
		Subject: "Your application for {{jobTitle}} moved forward",
		Body: "Hi {{firstName}},\n\nGood news: your application for {{jobTitle}} at {{companyName}} " +
			"passed our initial screening and has been sent to the employer.\n\nApplication: {{applicationId}}",
	},
	models.StatusRejected: {
		Type:    "application_rejected",
		Subject: "Update on your application for {{jobTitle}}",
		Body: "Hi {{firstName}},\n\nThank you for applying to {{jobTitle}} at {{companyName}}. " +
			"After reviewing your resume we will not be moving forward this time.\n\nApplication: {{applicationId}}",
	},
}

const smsTemplate = "{{companyName}}: your application for {{jobTitle}} passed screening."
