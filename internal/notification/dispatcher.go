// Package notification delivers RFQ invitations to vendors after the
// distribution transaction commits. Delivery is best effort: one attempt
// per vendor, no retries, and no failure ever touches the stored records.
package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/procura/internal/observability/metrics"
	"github.com/smallbiznis/procura/internal/providers/email"
	"go.uber.org/zap"
)

const maxConcurrentDeliveries = 5

// Intent is one pending delivery, emitted by the RFQ service post-commit.
type Intent struct {
	VendorRequestID string
	VendorKey       string
	VendorLabel     string
	Email           string
	Deliverable     bool
	QuoteTitle      string
	ResponseURL     string
	ExpiresAt       time.Time
}

// Outcome is the per-vendor delivery result, in intent order.
type Outcome struct {
	VendorRequestID string
	VendorKey       string
	Email           string
	Success         bool
	Skipped         bool
	Error           *string
}

type Dispatcher interface {
	Dispatch(ctx context.Context, intents []Intent) []Outcome
}

type dispatcher struct {
	log      *zap.Logger
	provider email.Provider
	metrics  *metrics.Metrics
}

func NewDispatcher(log *zap.Logger, provider email.Provider, m *metrics.Metrics) Dispatcher {
	return &dispatcher{
		log:      log.Named("notification.dispatcher"),
		provider: provider,
		metrics:  m,
	}
}

// Dispatch fans out one attempt per intent with bounded concurrency.
// Undeliverable intents are skipped without an attempt. Each attempt is
// independent; a failure never affects the others.
func (d *dispatcher) Dispatch(ctx context.Context, intents []Intent) []Outcome {
	outcomes := make([]Outcome, len(intents))

	sem := make(chan struct{}, maxConcurrentDeliveries)
	var wg sync.WaitGroup

	for i, intent := range intents {
		outcomes[i] = Outcome{
			VendorRequestID: intent.VendorRequestID,
			VendorKey:       intent.VendorKey,
			Email:           intent.Email,
		}

		if !intent.Deliverable {
			outcomes[i].Skipped = true
			reason := "undeliverable"
			outcomes[i].Error = &reason
			d.metrics.RecordEmailOutcome(ctx, "skipped")
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, intent Intent) {
			defer wg.Done()
			defer func() { <-sem }()

			attemptID := ulid.Make().String()
			err := d.deliver(ctx, intent)
			if err != nil {
				msg := err.Error()
				outcomes[i].Error = &msg
				d.metrics.RecordEmailOutcome(ctx, "failed")
				d.log.Warn("rfq delivery failed",
					zap.String("attempt_id", attemptID),
					zap.String("vendor_request_id", intent.VendorRequestID),
					zap.Error(err),
				)
				return
			}

			outcomes[i].Success = true
			d.metrics.RecordEmailOutcome(ctx, "sent")
			d.log.Info("rfq delivered",
				zap.String("attempt_id", attemptID),
				zap.String("vendor_request_id", intent.VendorRequestID),
			)
		}(i, intent)
	}

	wg.Wait()
	return outcomes
}

func (d *dispatcher) deliver(ctx context.Context, intent Intent) error {
	subject := fmt.Sprintf("Request for quote: %s", intent.QuoteTitle)
	body, err := renderInvitation(intent)
	if err != nil {
		return err
	}
	return d.provider.Send(ctx, []string{intent.Email}, subject, body)
}

var invitationTmpl = template.Must(template.New("rfq_invitation").Parse(`<html>
<body>
<p>Hello {{.VendorLabel}},</p>
<p>You have received a request for quote: <strong>{{.QuoteTitle}}</strong>.</p>
<p><a href="{{.ResponseURL}}">Review the request and submit your quote</a></p>
<p>This link expires on {{.ExpiresAt.Format "Jan 2, 2006"}}.</p>
</body>
</html>`))

func renderInvitation(intent Intent) (string, error) {
	var buf bytes.Buffer
	if err := invitationTmpl.Execute(&buf, intent); err != nil {
		return "", err
	}
	return buf.String(), nil
}
