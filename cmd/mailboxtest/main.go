// Command mailboxtest submits a signed chat message envelope to the
// Agentverse mailbox. By default it loops the message back to the
// derived agent address, so credentials and connectivity can be
// validated quickly. Override -target to reach a different agent.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/foldspace-protocol/foldspace/internal/chat"
	"github.com/foldspace-protocol/foldspace/internal/config"
	"github.com/foldspace-protocol/foldspace/internal/envelope"
	"github.com/foldspace-protocol/foldspace/internal/identity"
	"github.com/foldspace-protocol/foldspace/internal/mailbox"
)

func main() {
	target := flag.String("target", "", "Agentverse handle to receive the message (default: own address)")
	message := flag.String("message", "Hello from mailboxtest!", "Text content to send")
	session := flag.String("session", "", "Optional session UUID; random when omitted")
	version := flag.Int("version", 1, "Envelope version to use")
	baseURL := flag.String("base-url", "", "Override Agentverse base URL")
	timeout := flag.Duration("timeout", 10*time.Second, "HTTP timeout")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()

	cfg := config.Load()
	if *baseURL != "" {
		cfg.AgentverseBaseURL = *baseURL
		if cfg.AgentverseBaseURL[len(cfg.AgentverseBaseURL)-1] != '/' {
			cfg.AgentverseBaseURL += "/"
		}
	}

	if cfg.AgentverseAPIKey == "" {
		fmt.Fprintln(os.Stderr, "AGENTVERSE_API_KEY is required.")
		os.Exit(1)
	}
	if cfg.AgentSeedPhrase == "" {
		fmt.Fprintln(os.Stderr, "AGENT_SEED_PHRASE is required.")
		os.Exit(1)
	}

	id, err := identity.FromSeed(cfg.AgentSeedPhrase, 0)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to derive agent identity")
	}

	sessionID := uuid.New()
	if *session != "" {
		sessionID, err = uuid.Parse(*session)
		if err != nil {
			logger.Fatal().Err(err).Str("session", *session).Msg("invalid session UUID")
		}
	}

	destination := *target
	if destination == "" {
		destination = id.Address()
	}

	msg := chat.NewTextMessage(*message, false)
	env := &envelope.Envelope{
		Version:        *version,
		Sender:         id.Address(),
		Target:         destination,
		Session:        sessionID,
		SchemaDigest:   chat.MessageSchemaDigest,
		ProtocolDigest: chat.ProtocolDigest,
	}
	if err := env.EncodePayload(msg); err != nil {
		logger.Fatal().Err(err).Msg("failed to encode payload")
	}
	if err := env.Sign(id); err != nil {
		logger.Fatal().Err(err).Msg("failed to sign envelope")
	}

	client := mailbox.NewClient(cfg.SubmitURL(), cfg.AgentverseAPIKey, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	status := client.Submit(ctx, env, mailbox.KindChatMessage)
	if status.Status != mailbox.StatusSubmitted {
		logger.Fatal().Str("detail", status.Detail).Msg("submission failed")
	}

	fmt.Printf("Envelope submitted to %s (session %s)\n", destination, sessionID)
}
