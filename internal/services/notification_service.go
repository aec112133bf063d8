// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/plantcert/pvp-backend/internal/config"
	"github.com/plantcert/pvp-backend/internal/models"
)

// NotificationService sends deadline and renewal reminder emails. All sends
// are fire-and-forget from the caller's perspective.
type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

// SendTaskDeadlineReminder mails the recipient about an imminent task.
func (s *NotificationService) SendTaskDeadlineReminder(user *models.User, task *models.Task) error {
	tmpl := s.getEmailTemplate("task_deadline")

	data := map[string]interface{}{
		"Username":       user.Username,
		"TaskTitle":      task.Title,
		"DueDate":        task.DueDate.Format("2 January 2006"),
		"ApplicationURL": fmt.Sprintf("%s/applications/%s", s.config.Frontend.BaseURL, task.ApplicationID),
	}

	subject := fmt.Sprintf("Deadline approaching: %s", task.Title)
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, subject, body)
}

// SendRenewalDueReminder mails the recipient about an upcoming annuity.
func (s *NotificationService) SendRenewalDueReminder(user *models.User, term *models.RenewalTerm) error {
	tmpl := s.getEmailTemplate("renewal_due")

	data := map[string]interface{}{
		"Username":       user.Username,
		"Year":           term.Year,
		"DueDate":        term.DueDate.Format("2 January 2006"),
		"Amount":         fmt.Sprintf("%.2f %s", term.Amount, term.CurrencyCode),
		"ApplicationURL": fmt.Sprintf("%s/applications/%s/maintenance", s.config.Frontend.BaseURL, term.ApplicationID),
	}

	subject := fmt.Sprintf("Renewal fee due: year %d", term.Year)
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, subject, body)
}

func (s *NotificationService) getEmailTemplate(name string) EmailTemplate {
	switch name {
	case "task_deadline":
		return EmailTemplate{
			Subject: "Deadline approaching",
			Body: `<p>Hello {{.Username}},</p>
<p>The task <strong>{{.TaskTitle}}</strong> is due on {{.DueDate}}.</p>
<p><a href="{{.ApplicationURL}}">View the application</a></p>`,
		}
	case "renewal_due":
		return EmailTemplate{
			Subject: "Renewal fee due",
			Body: `<p>Hello {{.Username}},</p>
<p>The year {{.Year}} renewal fee of {{.Amount}} is due on {{.DueDate}}.</p>
<p><a href="{{.ApplicationURL}}">View the maintenance schedule</a></p>`,
		}
	default:
		return EmailTemplate{
			Subject: "Notification",
			Body:    `<p>Hello {{.Username}},</p>`,
		}
	}
}

func (s *NotificationService) renderTemplate(tmplBody string, data map[string]interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(tmplBody)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPUsername == "" {
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("SMTP not configured, skipping email")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.config.Email.FromName, s.config.Email.FromEmail, to, subject, body)

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	if err := smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
