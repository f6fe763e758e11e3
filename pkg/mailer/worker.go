package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Deliverer sends a normalized job.
type Deliverer interface {
	Deliver(ctx context.Context, job EmailJob) error
}

// Outcome tells the consumer how to settle a queue message.
type Outcome int

const (
	Ack     Outcome = iota // delivered
	Drop                   // malformed or rejected; nack without requeue
	Requeue                // transient send failure; nack with requeue
)

func (o Outcome) String() string {
	switch o {
	case Ack:
		return "ack"
	case Drop:
		return "drop"
	default:
		return "requeue"
	}
}

// Process decodes, validates, renders and delivers one queued message.
// Malformed jobs and permanent rejections are dropped; other delivery errors are requeued.
func Process(ctx context.Context, body []byte, d Deliverer) (Outcome, error) {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return Drop, fmt.Errorf("decode job: %w", err)
	}
	if err := job.Normalize(); err != nil {
		return Drop, err
	}
	if _, _, _, err := job.Content(); err != nil {
		return Drop, fmt.Errorf("render %s: %w", job.Template, err)
	}
	if err := d.Deliver(ctx, job); err != nil {
		if Permanent(err) {
			return Drop, fmt.Errorf("send rejected: %w", err)
		}
		return Requeue, fmt.Errorf("send: %w", err)
	}
	return Ack, nil
}

// Permanent reports whether a delivery error would fail the same way on retry:
// an invalid message, or a 4xx answer about the message itself. Credential,
// timeout and rate-limit answers stay retryable.
func Permanent(err error) bool {
	if errors.Is(err, mg.ErrInvalidMessage) {
		return true
	}
	var resp *mg.UnexpectedResponseError
	if !errors.As(err, &resp) {
		return false
	}
	switch resp.Actual {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return resp.Actual >= 400 && resp.Actual < 500
}
