// internal/models/notification.go
package models

// DecisionRecipient is the applicant contact data needed to announce a screening decision.
type DecisionRecipient struct {
	ApplicationID string `json:"applicationId" db:"application_id"`
	FirstName     string `json:"firstName" db:"first_name"`
	Email         string `json:"email" db:"email"`
	Phone         string `json:"phone" db:"phone"`
	JobTitle      string `json:"jobTitle" db:"title"`
	CompanyName   string `json:"companyName" db:"company_name"`
}

type NotificationTemplate struct {
	Type    string `json:"type"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
