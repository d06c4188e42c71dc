package models

import (
	"text/template"
	"time"
)

// Well-known email template names seeded at installation time.
const (
	TemplateLecturerReviewNotice = "Lecturer Review Notice"
	TemplateStudentReminder      = "Student Reminder"
	TemplatePublishingNotice     = "Publishing Notice"
	TemplateLoginKeyCreated      = "Login Key Created"
	TemplateEvaluationStarted    = "Evaluation Started"
)

// EmailTemplate holds the subject and body of a notification mail in Go
// text/template syntax.
type EmailTemplate struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"size:1024;uniqueIndex;not null" json:"name"`
	Subject string `gorm:"size:1024;not null" json:"subject"`
	Body    string `gorm:"type:text;not null" json:"body"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate ensures subject and body compile as templates before they are
// accepted for storage.
func (t EmailTemplate) Validate() error {
	if _, err := template.New("subject").Parse(t.Subject); err != nil {
		return err
	}
	if _, err := template.New("body").Parse(t.Body); err != nil {
		return err
	}
	return nil
}
