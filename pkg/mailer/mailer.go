package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-jwt-account-service/config"
	"github.com/oksasatya/go-jwt-account-service/pkg/helpers"
	"github.com/oksasatya/go-jwt-account-service/pkg/mailer/templates"
)

// Kind selects the account mail to send.
type Kind string

const (
	KindRegistrationConfirm Kind = templates.RegistrationConfirm
	KindPasswordReset       Kind = templates.PasswordReset
)

// Message is one token-carrying account mail.
type Message struct {
	Kind      Kind
	To        string
	Name      string
	Token     string
	ExpiresAt time.Time
	TTL       time.Duration
}

// Mailer delivers account mails.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Publisher is the subset of helpers.RabbitPublisher used for queuing.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueMailer renders nothing itself; it enqueues an EmailJob for cmd/email_worker.
type QueueMailer struct {
	pub Publisher
	cfg *config.Config
}

func NewQueueMailer(pub Publisher, cfg *config.Config) *QueueMailer {
	return &QueueMailer{pub: pub, cfg: cfg}
}

// Job builds the queue payload for msg.
func (q *QueueMailer) Job(msg Message) (EmailJob, error) {
	opts := []templates.Option{templates.WithExpiresAt(msg.ExpiresAt), templates.WithTTL(msg.TTL)}
	var data map[string]any
	switch msg.Kind {
	case KindRegistrationConfirm:
		data = templates.NewRegistrationConfirmData(q.cfg, msg.Name, msg.To, msg.Token, opts...)
	case KindPasswordReset:
		data = templates.NewPasswordResetData(q.cfg, msg.Name, msg.To, msg.Token, opts...)
	default:
		return EmailJob{}, fmt.Errorf("mailer: unknown kind %q", msg.Kind)
	}
	return EmailJob{To: msg.To, Template: string(msg.Kind), Data: data}, nil
}

func (q *QueueMailer) Send(ctx context.Context, msg Message) error {
	job, err := q.Job(msg)
	if err != nil {
		return err
	}
	if err := q.pub.PublishJSON(ctx, job); err != nil {
		return fmt.Errorf("mailer: publish %s: %w", msg.Kind, err)
	}
	return nil
}

// LogMailer only logs the mail; used when MAIL_SEND_ENABLED=false.
type LogMailer struct {
	Log *logrus.Logger
}

func (l LogMailer) Send(_ context.Context, msg Message) error {
	l.Log.WithFields(logrus.Fields{
		"kind":       msg.Kind,
		"to":         msg.To,
		"token":      helpers.MaskToken(msg.Token),
		"expires_at": msg.ExpiresAt.UTC().Format(time.RFC3339),
	}).Info("mail sending disabled; skipping delivery")
	return nil
}
