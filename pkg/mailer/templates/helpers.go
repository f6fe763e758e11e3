package templates

import (
	"time"

	"github.com/oksasatya/go-jwt-account-service/config"
)

// Option pattern
type Option func(*EmailData)

func WithActionURL(url string) Option { return func(d *EmailData) { d.ActionURL = url } }

func WithExpiresAt(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04 MST")
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(d *EmailData) { d.TTLMinutes = int(ttl / time.Minute) }
}

// NewBaseEmailData fills the common fields from config, then applies opts.
func NewBaseEmailData(cfg *config.Config, typ, name, recipient string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		RecipientEmail: recipient,
		Type:           typ,
		CompanyName:    cfg.CompanyName,
		AppName:        cfg.AppName,
		SupportURL:     cfg.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// NewRegistrationConfirmData builds the data of the address verification mail.
func NewRegistrationConfirmData(cfg *config.Config, name, email, token string, opts ...Option) map[string]any {
	opts = append([]Option{WithActionURL(cfg.VerifyURL(token))}, opts...)
	return ToMap(NewBaseEmailData(cfg, RegistrationConfirm, name, email, opts...))
}

// NewPasswordResetData builds the data of the password reminder mail.
func NewPasswordResetData(cfg *config.Config, name, email, token string, opts ...Option) map[string]any {
	opts = append([]Option{WithActionURL(cfg.ReminderURL(token))}, opts...)
	return ToMap(NewBaseEmailData(cfg, PasswordReset, name, email, opts...))
}
