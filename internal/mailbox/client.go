// Package mailbox submits signed envelopes to the Agentverse mailbox
// service and classifies the outcome of each attempt.
package mailbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/foldspace-protocol/foldspace/internal/envelope"
)

// Envelope kinds reported in delivery statuses.
const (
	KindChatMessage         = "chat_message"
	KindChatAcknowledgement = "chat_acknowledgement"
)

// Transport is the delivery transport label for mailbox submissions.
const Transport = "agentverse_mailbox"

// Delivery status values.
const (
	StatusSubmitted = "submitted"
	StatusFailed    = "failed"
)

// Aggregate send statuses reported by the chat adapter.
const (
	SendDisabled        = "mailbox_disabled"
	SendConstructFailed = "mailbox_construct_failed"
	SendSubmitted       = "mailbox_submitted"
	SendFailed          = "mailbox_failed"
	SendPartial         = "mailbox_partial"
)

const (
	submitTimeout       = 10 * time.Second
	payloadPreviewMax   = 600
	responsePreviewMax  = 300
	responseBodyReadMax = 64 * 1024
)

// DeliveryStatus records the outcome of one envelope submission attempt.
// Submissions are never retried automatically.
type DeliveryStatus struct {
	Status      string `json:"status"`
	Destination string `json:"destination"`
	Transport   string `json:"transport"`
	MessageType string `json:"messageType"`
	Detail      string `json:"detail,omitempty"`
}

// Client submits envelopes to a fixed mailbox endpoint.
type Client struct {
	submitURL  string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a mailbox client. apiKey may be empty, in which case
// requests are sent without authorization.
func NewClient(submitURL, apiKey string, logger zerolog.Logger) *Client {
	return &Client{
		submitURL:  submitURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: submitTimeout},
		logger:     logger,
	}
}

// Submit serializes the envelope and POSTs it to the mailbox endpoint.
// Exactly one attempt is made; every outcome is folded into the returned
// DeliveryStatus rather than an error. The call blocks for up to the
// submission timeout.
func (c *Client) Submit(ctx context.Context, env *envelope.Envelope, kind string) DeliveryStatus {
	status := DeliveryStatus{
		Status:      StatusFailed,
		Destination: env.Target,
		Transport:   Transport,
		MessageType: kind,
	}

	if !env.Signed() {
		status.Detail = envelope.ErrNotSigned.Error()
		c.logger.Error().Str("envelopeType", kind).Msg("refusing to submit unsigned envelope")
		return status
	}

	payload, err := json.Marshal(env)
	if err != nil {
		status.Detail = err.Error()
		return status
	}

	c.logger.Info().
		Str("url", c.submitURL).
		Str("sender", env.Sender).
		Str("target", env.Target).
		Str("session", env.Session.String()).
		Str("schemaDigest", env.SchemaDigest).
		Str("protocolDigest", env.ProtocolDigest).
		Str("envelopeType", kind).
		Str("payloadPreview", truncate(string(payload), payloadPreviewMax)).
		Msg("submitting envelope")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.submitURL, bytes.NewReader(payload))
	if err != nil {
		status.Detail = err.Error()
		return status
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		status.Detail = err.Error()
		c.logger.Error().
			Str("url", c.submitURL).
			Str("envelopeType", kind).
			Err(err).
			Msg("network error while submitting envelope")
		return status
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadMax))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		status.Status = StatusSubmitted
		status.Detail = ""
		c.logger.Info().
			Int("status", resp.StatusCode).
			Int("responseBytes", len(body)).
			Str("responsePreview", truncate(string(body), responsePreviewMax)).
			Str("envelopeType", kind).
			Msg("envelope submitted")
		return status
	}

	detail := string(body)
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}
	status.Detail = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, detail)
	c.logger.Error().
		Int("status", resp.StatusCode).
		Str("body", truncate(string(body), responsePreviewMax)).
		Str("url", c.submitURL).
		Str("envelopeType", kind).
		Msg("mailbox rejected envelope")
	return status
}

// AggregateStatus folds per-envelope delivery statuses into the overall
// send status. No statuses means no envelope could even be built.
func AggregateStatus(statuses []DeliveryStatus) string {
	if len(statuses) == 0 {
		return SendConstructFailed
	}

	successes := 0
	for _, s := range statuses {
		if s.Status == StatusSubmitted {
			successes++
		}
	}
	switch {
	case successes == len(statuses):
		return SendSubmitted
	case successes == 0:
		return SendFailed
	default:
		return SendPartial
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
