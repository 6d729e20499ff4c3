// internal/workers/application/send-notification/notifier.go
package sendnotification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	awsx "job-portal/internal/common/aws"
	"job-portal/internal/common/logger"
	"job-portal/internal/common/metrics"
	"job-portal/internal/models"
	"job-portal/internal/repository"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"
)

const TaskType = "send-notification"

var (
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
	ErrUnknownDecision        = errors.New("UNKNOWN_DECISION")
)

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type RecipientStore interface {
	DecisionRecipient(ctx context.Context, applicationID string) (*models.DecisionRecipient, error)
}

// Notifier tells applicants about screening decisions by email and, for
// applications that pass, by SMS.
type Notifier struct {
	config    *Config
	store     RecipientStore
	sesClient SESService
	snsClient SNSService
	logger    logger.Logger
}

// NewNotifier builds the notifier. Either client may be nil, which disables its channel.
func NewNotifier(config *Config, store RecipientStore, sesClient SESService, snsClient SNSService, log logger.Logger) *Notifier {
	return &Notifier{
		config:    config,
		store:     store,
		sesClient: sesClient,
		snsClient: snsClient,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// NotifyDecision sends the decision notification and reports a failed send as an error.
func (n *Notifier) NotifyDecision(ctx context.Context, applicationID string, status models.ApplicationStatus) error {
	output, err := n.Execute(ctx, &Input{ApplicationID: applicationID, ApplicationStatus: status})
	if err != nil {
		return err
	}
	if output.Status == StatusFailed {
		return fmt.Errorf("%w: application %s", ErrNotificationSendFailed, applicationID)
	}
	return nil
}

func (n *Notifier) Execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, n.config.Timeout)
	defer cancel()
	return n.execute(ctx, input)
}

func (n *Notifier) execute(ctx context.Context, input *Input) (*Output, error) {
	tmpl, ok := templates[input.ApplicationStatus]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDecision, input.ApplicationStatus)
	}

	output := &Output{
		NotificationID: uuid.New().String(),
		Status:         StatusDisabled,
		SentAt:         time.Now().UTC().Format(time.RFC3339),
	}

	emailOn := n.config.EmailEnabled && n.sesClient != nil
	smsOn := n.config.SMSEnabled && n.snsClient != nil && input.ApplicationStatus == models.StatusApplied
	if !emailOn && !smsOn {
		return output, nil
	}

	recipient, err := n.store.DecisionRecipient(ctx, input.ApplicationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			n.logger.Warn("recipient not found", map[string]interface{}{
				"applicationId": input.ApplicationID,
			})
			return output, nil
		}
		return nil, fmt.Errorf("%w: load recipient: %v", ErrNotificationSendFailed, err)
	}

	data := map[string]interface{}{
		"applicationId": recipient.ApplicationID,
		"firstName":     recipient.FirstName,
		"jobTitle":      recipient.JobTitle,
		"companyName":   recipient.CompanyName,
	}

	failed := false

	if emailOn && recipient.Email != "" {
		subject := renderTemplate(tmpl.Subject, data)
		body := renderTemplate(tmpl.Body, data)
		if _, err := n.sesClient.SendEmail(ctx, awsx.NewTextEmail(n.config.FromEmail, recipient.Email, subject, body)); err != nil {
			failed = true
			metrics.NotificationsSent.WithLabelValues(ChannelEmail, StatusFailed).Inc()
			n.logger.Error("email send failed", map[string]interface{}{
				"error":         err,
				"applicationId": input.ApplicationID,
			})
		} else {
			output.Channels = append(output.Channels, ChannelEmail)
			metrics.NotificationsSent.WithLabelValues(ChannelEmail, StatusSent).Inc()
		}
	}

	if smsOn && recipient.Phone != "" {
		if _, err := n.snsClient.Publish(ctx, awsx.NewSMS(recipient.Phone, renderTemplate(smsTemplate, data))); err != nil {
			failed = true
			metrics.NotificationsSent.WithLabelValues(ChannelSMS, StatusFailed).Inc()
			n.logger.Error("SMS send failed", map[string]interface{}{
				"error":         err,
				"applicationId": input.ApplicationID,
			})
		} else {
			output.Channels = append(output.Channels, ChannelSMS)
			metrics.NotificationsSent.WithLabelValues(ChannelSMS, StatusSent).Inc()
		}
	}

	switch {
	case failed:
		output.Status = StatusFailed
	case len(output.Channels) > 0:
		output.Status = StatusSent
	}

	n.logger.Info("decision notification processed", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"decision":      input.ApplicationStatus,
		"status":        output.Status,
		"channels":      output.Channels,
	})
	return output, nil
}

// renderTemplate substitutes {{key}} placeholders and drops any left unresolved.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl
	for k, v := range data {
		value := ""
		if v != nil {
			value = fmt.Sprint(v)
		}
		result = strings.ReplaceAll(result, "{{"+k+"}}", value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+2:]
	}
	return result
}
