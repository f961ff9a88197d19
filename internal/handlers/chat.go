package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/foldspace-protocol/foldspace/internal/chat"
	"github.com/foldspace-protocol/foldspace/internal/config"
	"github.com/foldspace-protocol/foldspace/internal/envelope"
	"github.com/foldspace-protocol/foldspace/internal/journal"
	"github.com/foldspace-protocol/foldspace/internal/mailbox"
	"github.com/foldspace-protocol/foldspace/internal/metrics"
)

const previewMax = 200

type outboundEnvelope struct {
	env  *envelope.Envelope
	kind string
}

// Chat handles an inbound chat envelope: parse it, build and submit the
// acknowledgement and reply envelopes, and report per-envelope delivery
// statuses. Only a parse failure surfaces as an error status; downstream
// failures are captured in the response body.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var env envelope.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		h.Error(w, http.StatusBadRequest, fmt.Sprintf("invalid envelope: %v", err))
		return
	}

	h.logger.Info().
		Str("sender", env.Sender).
		Str("session", env.Session.String()).
		Msg("envelope received")

	msg, err := chat.ParseMessage(&env)
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to parse envelope")
		h.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	messageText := msg.Text()
	preview := truncate(messageText, previewMax)
	h.logger.Info().
		Str("messageId", msg.MsgID.String()).
		Str("preview", preview).
		Msg("parsed chat message")

	replyText := PlaceholderReply
	if h.cfg.ChatResponder == config.ResponderKnowledge && h.knowledge != nil {
		replyText = h.knowledge.HandleUserText(messageText)
		metrics.FAQLookups.WithLabelValues(h.faqMatchKind(replyText)).Inc()
	}

	ackMetadata := map[string]string{
		"placeholder":          "true",
		"placeholder_response": replyText,
		"received_at":          time.Now().UTC().Format(time.RFC3339),
		"message_id":           msg.MsgID.String(),
	}
	if env.Session != uuid.Nil {
		ackMetadata["session"] = env.Session.String()
	}
	if env.Sender != "" {
		ackMetadata["sender"] = env.Sender
	}
	if preview != "" {
		ackMetadata["message_preview"] = preview
	}
	if messageText == "" {
		ackMetadata["placeholder_reason"] = "empty_message"
	}

	var warnings []string
	var statuses []mailbox.DeliveryStatus
	sendStatus := mailbox.SendDisabled

	if h.identity != nil {
		var outbound []outboundEnvelope

		ackEnv, err := chat.BuildAck(&env, msg, ackMetadata, h.identity)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to build acknowledgement envelope: %v", err))
			h.logger.Error().Err(err).Msg("error constructing acknowledgement")
		} else {
			outbound = append(outbound, outboundEnvelope{ackEnv, mailbox.KindChatAcknowledgement})
		}

		replyEnv, err := chat.BuildReply(&env, replyText, h.identity)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to build chat reply envelope: %v", err))
			h.logger.Error().Err(err).Msg("error constructing reply envelope")
		} else {
			outbound = append(outbound, outboundEnvelope{replyEnv, mailbox.KindChatMessage})
		}

		for _, item := range outbound {
			status := h.mailbox.Submit(r.Context(), item.env, item.kind)
			statuses = append(statuses, status)
			metrics.EnvelopeSubmissions.WithLabelValues(item.kind, status.Status).Inc()
			if status.Status != mailbox.StatusSubmitted && status.Detail != "" {
				warnings = append(warnings, fmt.Sprintf("%s submission failed: %s", item.kind, status.Detail))
			}
			h.recordDelivery(r, status)
		}

		sendStatus = mailbox.AggregateStatus(statuses)
	} else {
		warnings = append(warnings, "AGENT_SEED_PHRASE missing; outbound placeholder skipped.")
		h.logger.Warn().Msg("agent identity missing; outbound placeholder skipped")
	}

	metrics.ChatRequests.WithLabelValues(sendStatus).Inc()

	extra := map[string]any{
		"placeholderResponse": replyText,
		"messagePreview":      preview,
		"sendStatus":          sendStatus,
		"ackMetadata":         ackMetadata,
		"sender":              env.Sender,
		"session":             env.Session.String(),
	}
	if env.Recipient != nil {
		extra["recipient"] = *env.Recipient
	}
	if env.Protocol != nil {
		extra["protocol"] = *env.Protocol
	}
	if env.Trace != nil {
		extra["trace"] = *env.Trace
	}
	if len(statuses) > 0 {
		extra["deliveryStatuses"] = statuses
	}
	if len(warnings) > 0 {
		extra["warning"] = strings.Join(warnings, " | ")
	}

	h.JSON(w, http.StatusOK, placeholderResponse("/chat", http.MethodPost, extra))
}

// faqMatchKind classifies a knowledge reply for metrics.
func (h *Handler) faqMatchKind(reply string) string {
	switch {
	case reply == h.knowledge.InstructionText():
		return "instruction"
	case strings.HasPrefix(reply, "Foldspace T2V references for"):
		return "chunk"
	default:
		return "echo"
	}
}

// recordDelivery persists a delivery status when a journal is configured.
// Journal failures only warn; they never affect the response.
func (h *Handler) recordDelivery(r *http.Request, status mailbox.DeliveryStatus) {
	if h.journal == nil {
		return
	}
	rec := &journal.Record{
		Status:      status.Status,
		Destination: status.Destination,
		Transport:   status.Transport,
		MessageType: status.MessageType,
		Detail:      status.Detail,
	}
	if err := h.journal.Record(r.Context(), rec); err != nil {
		h.logger.Warn().Err(err).Msg("failed to journal delivery status")
	}
}
