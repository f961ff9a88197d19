// Package envelope implements the signed transport wrapper carried
// between agent addresses through the Agentverse mailbox.
package envelope

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/foldspace-protocol/foldspace/internal/identity"
)

var (
	ErrNotSigned      = errors.New("envelope is not signed")
	ErrSenderMismatch = errors.New("envelope sender does not match signing identity")
	ErrEmptyPayload   = errors.New("envelope has no payload")
)

// Envelope wraps a typed payload with routing and schema identifiers.
// Recipient, Protocol and Trace are optional metadata some clients set;
// they default to null and are echoed back untouched.
type Envelope struct {
	Version        int       `json:"version"`
	Sender         string    `json:"sender"`
	Target         string    `json:"target"`
	Session        uuid.UUID `json:"session"`
	SchemaDigest   string    `json:"schema_digest"`
	ProtocolDigest string    `json:"protocol_digest,omitempty"`
	Payload        string    `json:"payload,omitempty"`
	Expires        *int64    `json:"expires,omitempty"`
	Nonce          *uint64   `json:"nonce,omitempty"`
	Signature      string    `json:"signature,omitempty"`

	Recipient *string `json:"recipient,omitempty"`
	Protocol  *string `json:"protocol,omitempty"`
	Trace     *string `json:"trace,omitempty"`
}

// EncodePayload serializes v to JSON and stores it base64-encoded.
func (e *Envelope) EncodePayload(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	e.Payload = base64.StdEncoding.EncodeToString(data)
	return nil
}

// DecodePayload unmarshals the base64 payload into v.
func (e *Envelope) DecodePayload(v any) error {
	if e.Payload == "" {
		return ErrEmptyPayload
	}
	data, err := base64.StdEncoding.DecodeString(e.Payload)
	if err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse payload: %w", err)
	}
	return nil
}

// digest computes the canonical hash covering every populated field that
// the signature protects. Fields are pipe-joined in a fixed order.
func (e *Envelope) digest() []byte {
	parts := []string{
		strconv.Itoa(e.Version),
		e.Sender,
		e.Target,
		e.Session.String(),
		e.SchemaDigest,
		e.ProtocolDigest,
		e.Payload,
	}
	if e.Expires != nil {
		parts = append(parts, strconv.FormatInt(*e.Expires, 10))
	}
	if e.Nonce != nil {
		parts = append(parts, strconv.FormatUint(*e.Nonce, 10))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return sum[:]
}

// Sign signs the fully-populated envelope with the given identity. The
// sender must already be the identity's address; an envelope must never
// be submitted unsigned.
func (e *Envelope) Sign(id *identity.Identity) error {
	if e.Sender != id.Address() {
		return ErrSenderMismatch
	}
	if e.Payload == "" {
		return ErrEmptyPayload
	}
	e.Signature = id.Sign(e.digest())
	return nil
}

// Verify checks the signature against the public key embedded in the
// sender address.
func (e *Envelope) Verify() error {
	if !e.Signed() {
		return ErrNotSigned
	}
	return identity.Verify(e.Sender, e.digest(), e.Signature)
}

// Signed reports whether the envelope carries a signature.
func (e *Envelope) Signed() bool {
	return e.Signature != ""
}
