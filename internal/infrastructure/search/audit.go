package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AuditEvent is one account transition outcome.
type AuditEvent struct {
	Action  string    `json:"action"`
	Outcome string    `json:"outcome"`
	UserID  string    `json:"user_id,omitempty"`
	Email   string    `json:"email,omitempty"`
	At      time.Time `json:"at"`
}

// AuditIndexer writes audit events to Elasticsearch. Failures are logged, never returned
// to the account flows. A nil client turns it into a no-op.
type AuditIndexer struct {
	ES      *elasticsearch.Client
	Index   string
	Logger  *logrus.Logger
	Timeout time.Duration
}

func NewAuditIndexer(es *elasticsearch.Client, index string, logger *logrus.Logger) *AuditIndexer {
	return &AuditIndexer{ES: es, Index: index, Logger: logger, Timeout: 3 * time.Second}
}

// Enabled reports whether events are actually shipped.
func (a *AuditIndexer) Enabled() bool {
	return a != nil && a.ES != nil && a.Index != ""
}

func (a *AuditIndexer) Record(ctx context.Context, ev AuditEvent) {
	if !a.Enabled() {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	if err := a.index(ctx, ev); err != nil && a.Logger != nil {
		a.Logger.WithError(err).WithField("action", ev.Action).Warn("audit index failed")
	}
}

func (a *AuditIndexer) index(ctx context.Context, ev AuditEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      a.Index,
		DocumentID: uuid.NewString(),
		Body:       bytes.NewReader(b),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()
	res, err := req.Do(c, a.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index response: %s", res.Status())
	}
	return nil
}
