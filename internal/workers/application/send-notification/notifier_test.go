// internal/workers/application/send-notification/notifier_test.go
package sendnotification

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"job-portal/internal/common/logger"
	"job-portal/internal/models"
	"job-portal/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	calls         []*ses.SendEmailInput
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.calls = append(m.calls, params)
	if m.SendEmailFunc == nil {
		return &ses.SendEmailOutput{}, nil
	}
	return m.SendEmailFunc(ctx, params, optFns...)
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	calls       []*sns.PublishInput
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.calls = append(m.calls, params)
	if m.PublishFunc == nil {
		return &sns.PublishOutput{}, nil
	}
	return m.PublishFunc(ctx, params, optFns...)
}

type fakeRecipients struct {
	recipient *models.DecisionRecipient
	err       error
}

func (f *fakeRecipients) DecisionRecipient(ctx context.Context, applicationID string) (*models.DecisionRecipient, error) {
	return f.recipient, f.err
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		EmailEnabled: true,
		SMSEnabled:   true,
		FromEmail:    "noreply@jobportal.example",
		Timeout:      5 * time.Second,
	}
}

func testRecipient() *models.DecisionRecipient {
	return &models.DecisionRecipient{
		ApplicationID: "app-1",
		FirstName:     "Ada",
		Email:         "ada@example.com",
		Phone:         "+4915112345678",
		JobTitle:      "Senior Go engineer",
		CompanyName:   "Acme",
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestNotifier_Execute_Applied(t *testing.T) {
	sesMock := &MockSESService{}
	snsMock := &MockSNSService{}
	n := NewNotifier(createTestConfig(), &fakeRecipients{recipient: testRecipient()}, sesMock, snsMock, logger.NewTestLogger(t))

	out, err := n.Execute(context.Background(), &Input{ApplicationID: "app-1", ApplicationStatus: models.StatusApplied})
	require.NoError(t, err)

	assert.Equal(t, StatusSent, out.Status)
	assert.Equal(t, []string{ChannelEmail, ChannelSMS}, out.Channels)
	assert.NotEmpty(t, out.NotificationID)

	require.Len(t, sesMock.calls, 1)
	email := sesMock.calls[0]
	assert.Equal(t, "noreply@jobportal.example", *email.Source)
	assert.Equal(t, []string{"ada@example.com"}, email.Destination.ToAddresses)
	assert.Equal(t, "Your application for Senior Go engineer moved forward", *email.Message.Subject.Data)
	assert.Contains(t, *email.Message.Body.Text.Data, "Hi Ada")
	assert.Contains(t, *email.Message.Body.Text.Data, "Acme")

	require.Len(t, snsMock.calls, 1)
	assert.Equal(t, "+4915112345678", *snsMock.calls[0].PhoneNumber)
}

func TestNotifier_Execute_RejectedSkipsSMS(t *testing.T) {
	sesMock := &MockSESService{}
	snsMock := &MockSNSService{}
	n := NewNotifier(createTestConfig(), &fakeRecipients{recipient: testRecipient()}, sesMock, snsMock, logger.NewTestLogger(t))

	out, err := n.Execute(context.Background(), &Input{ApplicationID: "app-1", ApplicationStatus: models.StatusRejected})
	require.NoError(t, err)

	assert.Equal(t, StatusSent, out.Status)
	assert.Equal(t, []string{ChannelEmail}, out.Channels)
	assert.Empty(t, snsMock.calls)
	assert.Contains(t, *sesMock.calls[0].Message.Subject.Data, "Update on your application")
}

func TestNotifier_Execute_ChannelsDisabled(t *testing.T) {
	cfg := createTestConfig()
	cfg.EmailEnabled = false
	cfg.SMSEnabled = false
	recipients := &fakeRecipients{err: errors.New("must not be called")}

	out, err := NewNotifier(cfg, recipients, nil, nil, logger.NewTestLogger(t)).
		Execute(context.Background(), &Input{ApplicationID: "app-1", ApplicationStatus: models.StatusApplied})
	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, out.Status)
}

func TestNotifier_Execute_RecipientMissing(t *testing.T) {
	recipients := &fakeRecipients{err: fmt.Errorf("%w: application app-1", repository.ErrNotFound)}
	sesMock := &MockSESService{}

	out, err := NewNotifier(createTestConfig(), recipients, sesMock, nil, logger.NewTestLogger(t)).
		Execute(context.Background(), &Input{ApplicationID: "app-1", ApplicationStatus: models.StatusRejected})
	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, out.Status)
	assert.Empty(t, sesMock.calls)
}

// ==========================
// Error Handling Tests
// ==========================

func TestNotifier_Execute_SendFailures(t *testing.T) {
	sesMock := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("Throttling: Maximum sending rate exceeded")
		},
	}
	snsMock := &MockSNSService{}
	n := NewNotifier(createTestConfig(), &fakeRecipients{recipient: testRecipient()}, sesMock, snsMock, logger.NewTestLogger(t))

	out, err := n.Execute(context.Background(), &Input{ApplicationID: "app-1", ApplicationStatus: models.StatusApplied})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, out.Status)
	assert.Equal(t, []string{ChannelSMS}, out.Channels, "sms still goes out when email fails")
}

func TestNotifier_Execute_UnknownDecision(t *testing.T) {
	n := NewNotifier(createTestConfig(), &fakeRecipients{recipient: testRecipient()}, nil, nil, logger.NewTestLogger(t))

	_, err := n.Execute(context.Background(), &Input{ApplicationID: "app-1", ApplicationStatus: models.StatusScreening})
	assert.True(t, errors.Is(err, ErrUnknownDecision))
}

func TestNotifier_NotifyDecision(t *testing.T) {
	t.Run("sent", func(t *testing.T) {
		n := NewNotifier(createTestConfig(), &fakeRecipients{recipient: testRecipient()}, &MockSESService{}, nil, logger.NewTestLogger(t))
		assert.NoError(t, n.NotifyDecision(context.Background(), "app-1", models.StatusRejected))
	})

	t.Run("failed send is an error", func(t *testing.T) {
		sesMock := &MockSESService{
			SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
				return nil, errors.New("MessageRejected")
			},
		}
		n := NewNotifier(createTestConfig(), &fakeRecipients{recipient: testRecipient()}, sesMock, nil, logger.NewTestLogger(t))
		err := n.NotifyDecision(context.Background(), "app-1", models.StatusRejected)
		assert.True(t, errors.Is(err, ErrNotificationSendFailed))
	})

	t.Run("recipient lookup error", func(t *testing.T) {
		n := NewNotifier(createTestConfig(), &fakeRecipients{err: errors.New("connection refused")}, &MockSESService{}, nil, logger.NewTestLogger(t))
		err := n.NotifyDecision(context.Background(), "app-1", models.StatusApplied)
		assert.True(t, errors.Is(err, ErrNotificationSendFailed))
	})
}

// ==========================
// Integration With Record Store
// ==========================

func TestNotifier_Execute_WithApplicationStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	log := logger.NewTestLogger(t)
	store := repository.NewApplicationStore(db, nil, time.Minute, log)

	mock.ExpectQuery(`JOIN users u ON u.id = a.user_id`).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "email", "phone", "title", "name"}).
			AddRow("app-1", "Ada", "ada@example.com", "", "Senior Go engineer", "Acme"))

	sesMock := &MockSESService{}
	snsMock := &MockSNSService{}
	out, err := NewNotifier(createTestConfig(), store, sesMock, snsMock, log).
		Execute(context.Background(), &Input{ApplicationID: "app-1", ApplicationStatus: models.StatusApplied})
	require.NoError(t, err)

	assert.Equal(t, []string{ChannelEmail}, out.Channels, "no phone on file")
	assert.Empty(t, snsMock.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Template Tests
// ==========================

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		data map[string]interface{}
		want string
	}{
		{"simple", "Hi {{firstName}}", map[string]interface{}{"firstName": "Ada"}, "Hi Ada"},
		{"missing placeholder dropped", "Hi {{firstName}}{{suffix}}!", map[string]interface{}{"firstName": "Ada"}, "Hi Ada!"},
		{"non string value", "Score {{score}}", map[string]interface{}{"score": 92}, "Score 92"},
		{"nil value", "[{{x}}]", map[string]interface{}{"x": nil}, "[]"},
		{"unterminated", "Hi {{name", map[string]interface{}{}, "Hi {{name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderTemplate(tt.tmpl, tt.data))
		})
	}
}
