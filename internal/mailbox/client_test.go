package mailbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/foldspace-protocol/foldspace/internal/envelope"
	"github.com/foldspace-protocol/foldspace/internal/identity"
)

func signedEnvelope(t *testing.T) *envelope.Envelope {
	t.Helper()
	id, err := identity.FromSeed("mailbox test seed", 0)
	if err != nil {
		t.Fatal(err)
	}
	env := &envelope.Envelope{
		Version: 1,
		Sender:  id.Address(),
		Target:  "agent1destination",
		Session: uuid.New(),
	}
	if err := env.EncodePayload(map[string]string{"hello": "world"}); err != nil {
		t.Fatal(err)
	}
	if err := env.Sign(id); err != nil {
		t.Fatal(err)
	}
	return env
}

func TestSubmitSuccess(t *testing.T) {
	var gotAuth, gotContentType string
	var gotBody envelope.Envelope
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	env := signedEnvelope(t)
	client := NewClient(srv.URL, "secret-key", zerolog.Nop())
	status := client.Submit(context.Background(), env, KindChatMessage)

	if status.Status != StatusSubmitted {
		t.Fatalf("status = %q, want %q (detail: %s)", status.Status, StatusSubmitted, status.Detail)
	}
	if status.Detail != "" {
		t.Fatalf("successful submission must have empty detail, got %q", status.Detail)
	}
	if status.Destination != env.Target {
		t.Fatalf("destination = %q, want %q", status.Destination, env.Target)
	}
	if status.Transport != Transport || status.MessageType != KindChatMessage {
		t.Fatalf("unexpected status labels: %+v", status)
	}
	if gotAuth != "Bearer secret-key" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Fatalf("Content-Type = %q", gotContentType)
	}
	if gotBody.Signature != env.Signature {
		t.Fatal("submitted envelope must carry the signature")
	}
}

func TestSubmitNoAuthHeaderWithoutKey(t *testing.T) {
	var sawAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", zerolog.Nop())
	client.Submit(context.Background(), signedEnvelope(t), KindChatMessage)
	if sawAuth {
		t.Fatal("Authorization header must be absent when no API key is set")
	}
}

func TestSubmitServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"mailbox exploded"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", zerolog.Nop())
	status := client.Submit(context.Background(), signedEnvelope(t), KindChatAcknowledgement)

	if status.Status != StatusFailed {
		t.Fatalf("status = %q, want %q", status.Status, StatusFailed)
	}
	if !strings.Contains(status.Detail, "500") {
		t.Fatalf("detail %q missing status code", status.Detail)
	}
	if !strings.Contains(status.Detail, "mailbox exploded") {
		t.Fatalf("detail %q missing response body", status.Detail)
	}
}

func TestSubmitEmptyErrorBodyUsesStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", zerolog.Nop())
	status := client.Submit(context.Background(), signedEnvelope(t), KindChatMessage)

	if status.Status != StatusFailed {
		t.Fatalf("status = %q", status.Status)
	}
	if !strings.Contains(status.Detail, http.StatusText(http.StatusBadGateway)) {
		t.Fatalf("detail %q missing status text", status.Detail)
	}
}

func TestSubmitNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewClient(srv.URL, "", zerolog.Nop())
	status := client.Submit(context.Background(), signedEnvelope(t), KindChatMessage)

	if status.Status != StatusFailed {
		t.Fatalf("status = %q, want %q", status.Status, StatusFailed)
	}
	if status.Detail == "" {
		t.Fatal("network failure must carry a detail")
	}
}

func TestSubmitRefusesUnsigned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unsigned envelope must never reach the mailbox")
	}))
	defer srv.Close()

	env := signedEnvelope(t)
	env.Signature = ""

	client := NewClient(srv.URL, "", zerolog.Nop())
	status := client.Submit(context.Background(), env, KindChatMessage)

	if status.Status != StatusFailed {
		t.Fatalf("status = %q, want %q", status.Status, StatusFailed)
	}
	if !strings.Contains(status.Detail, "not signed") {
		t.Fatalf("detail %q should mention missing signature", status.Detail)
	}
}

func TestAggregateStatus(t *testing.T) {
	ok := DeliveryStatus{Status: StatusSubmitted}
	bad := DeliveryStatus{Status: StatusFailed}

	cases := []struct {
		name     string
		statuses []DeliveryStatus
		want     string
	}{
		{"none built", nil, SendConstructFailed},
		{"all submitted", []DeliveryStatus{ok, ok}, SendSubmitted},
		{"all failed", []DeliveryStatus{bad, bad}, SendFailed},
		{"mixed", []DeliveryStatus{ok, bad}, SendPartial},
		{"single success", []DeliveryStatus{ok}, SendSubmitted},
		{"single failure", []DeliveryStatus{bad}, SendFailed},
	}
	for _, tc := range cases {
		if got := AggregateStatus(tc.statuses); got != tc.want {
			t.Errorf("%s: AggregateStatus = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate left short string altered: %q", got)
	}
	if got := truncate("abcdefghij", 4); got != "abcd..." {
		t.Fatalf("truncate = %q", got)
	}
}
