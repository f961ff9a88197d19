// Package chat implements the agent chat protocol payloads and the
// envelope builders for acknowledgements and replies.
package chat

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/foldspace-protocol/foldspace/internal/envelope"
	"github.com/foldspace-protocol/foldspace/internal/identity"
)

// Content item discriminators.
const (
	ContentTypeText         = "text"
	ContentTypeStartSession = "start-session"
	ContentTypeEndSession   = "end-session"
)

// ProtocolName identifies the chat protocol in its digest manifest.
const ProtocolName = "AgentChatProtocol:0.3.0"

var ErrSchemaMismatch = errors.New("envelope schema digest does not match ChatMessage")

// ContentItem is one element of a chat message body. Text is set only
// for "text" items; session markers carry no payload.
type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ChatMessage carries zero or more content items between agents.
type ChatMessage struct {
	MsgID     uuid.UUID     `json:"msg_id"`
	Timestamp time.Time     `json:"timestamp"`
	Content   []ContentItem `json:"content"`
}

// Text returns the concatenation of all text segments.
func (m *ChatMessage) Text() string {
	var b strings.Builder
	for _, item := range m.Content {
		if item.Type == ContentTypeText {
			b.WriteString(item.Text)
		}
	}
	return b.String()
}

// HasStartSession reports whether the message opens a session.
func (m *ChatMessage) HasStartSession() bool {
	for _, item := range m.Content {
		if item.Type == ContentTypeStartSession {
			return true
		}
	}
	return false
}

// ChatAcknowledgement confirms receipt of a chat message. Metadata is an
// open string mapping attached by the acknowledging agent.
type ChatAcknowledgement struct {
	Timestamp         time.Time         `json:"timestamp"`
	AcknowledgedMsgID uuid.UUID         `json:"acknowledged_msg_id"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

// NewTextMessage builds a chat message holding a single text item,
// optionally followed by an end-session marker.
func NewTextMessage(text string, endSession bool) ChatMessage {
	content := []ContentItem{{Type: ContentTypeText, Text: text}}
	if endSession {
		content = append(content, ContentItem{Type: ContentTypeEndSession})
	}
	return ChatMessage{
		MsgID:     uuid.New(),
		Timestamp: time.Now().UTC(),
		Content:   content,
	}
}

// Canonical model schemas. The digest covers the model name and its
// field set, so it is stable across process runs.
var (
	MessageSchemaDigest = buildSchemaDigest("ChatMessage", []string{"msg_id", "timestamp", "content"})
	AckSchemaDigest     = buildSchemaDigest("ChatAcknowledgement", []string{"timestamp", "acknowledged_msg_id", "metadata"})
	ProtocolDigest      = buildProtocolDigest(ProtocolName, MessageSchemaDigest, AckSchemaDigest)
)

func buildSchemaDigest(model string, fields []string) string {
	sorted := append([]string(nil), fields...)
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(model + "{" + strings.Join(sorted, ",") + "}"))
	return "model:" + hex.EncodeToString(sum[:])
}

func buildProtocolDigest(name string, modelDigests ...string) string {
	sorted := append([]string(nil), modelDigests...)
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(name + "|" + strings.Join(sorted, "|")))
	return "proto:" + hex.EncodeToString(sum[:])
}

// ParseMessage decodes a ChatMessage from an inbound envelope, checking
// the schema digest when the envelope carries one.
func ParseMessage(env *envelope.Envelope) (*ChatMessage, error) {
	if env.SchemaDigest != "" && env.SchemaDigest != MessageSchemaDigest {
		return nil, fmt.Errorf("%w: got %s", ErrSchemaMismatch, env.SchemaDigest)
	}
	var msg ChatMessage
	if err := env.DecodePayload(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// BuildAck constructs a signed acknowledgement envelope addressed back to
// the sender of the incoming envelope. Version and session are copied
// from the incoming envelope; sender and target are swapped.
func BuildAck(incoming *envelope.Envelope, msg *ChatMessage, metadata map[string]string, id *identity.Identity) (*envelope.Envelope, error) {
	ack := ChatAcknowledgement{
		Timestamp:         time.Now().UTC(),
		AcknowledgedMsgID: msg.MsgID,
		Metadata:          metadata,
	}
	env := &envelope.Envelope{
		Version:        incoming.Version,
		Sender:         id.Address(),
		Target:         incoming.Sender,
		Session:        incoming.Session,
		SchemaDigest:   AckSchemaDigest,
		ProtocolDigest: ProtocolDigest,
	}
	if err := env.EncodePayload(ack); err != nil {
		return nil, err
	}
	if err := env.Sign(id); err != nil {
		return nil, err
	}
	return env, nil
}

// BuildReply constructs a signed chat message envelope carrying the reply
// text as a single text content item, addressed back to the sender of
// the incoming envelope.
func BuildReply(incoming *envelope.Envelope, replyText string, id *identity.Identity) (*envelope.Envelope, error) {
	msg := NewTextMessage(replyText, false)
	env := &envelope.Envelope{
		Version:        incoming.Version,
		Sender:         id.Address(),
		Target:         incoming.Sender,
		Session:        incoming.Session,
		SchemaDigest:   MessageSchemaDigest,
		ProtocolDigest: ProtocolDigest,
	}
	if err := env.EncodePayload(msg); err != nil {
		return nil, err
	}
	if err := env.Sign(id); err != nil {
		return nil, err
	}
	return env, nil
}
