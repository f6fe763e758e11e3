package mailer

import (
	"errors"
	"strings"

	"github.com/oksasatya/go-jwt-account-service/pkg/mailer/templates"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template (+Data) or Subject with Text/HTML must be set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // registration_confirm, password_reset
	Data     map[string]any `json:"data,omitempty"`
}

var (
	ErrNoRecipient = errors.New("email job: missing recipient")
	ErrNoContent   = errors.New("email job: missing template or content")
)

// Normalize trims the job fields and checks it can be rendered.
func (j *EmailJob) Normalize() error {
	j.To = strings.TrimSpace(j.To)
	j.Template = strings.ToLower(strings.TrimSpace(j.Template))
	if j.To == "" {
		if v, ok := j.Data["RecipientEmail"].(string); ok {
			j.To = strings.TrimSpace(v)
		}
	}
	if j.To == "" {
		return ErrNoRecipient
	}
	if j.Template != "" {
		if !templates.Known(j.Template) {
			return ErrNoContent
		}
		return nil
	}
	if j.Subject == "" || (j.Text == "" && j.HTML == "") {
		return ErrNoContent
	}
	return nil
}

// Content renders the job into subject, text and html bodies.
func (j *EmailJob) Content() (subject, text, html string, err error) {
	if j.Template == "" {
		return j.Subject, j.Text, j.HTML, nil
	}
	return templates.Render(j.Template, j.Data)
}
