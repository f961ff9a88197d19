// Command register performs a one-shot chat agent registration with
// Agentverse. It fails fast when the required secrets are missing.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/foldspace-protocol/foldspace/internal/config"
	"github.com/foldspace-protocol/foldspace/internal/identity"
	"github.com/foldspace-protocol/foldspace/internal/registration"
)

func main() {
	name := flag.String("name", "T2V Chat", "Registration name for the agent")
	endpoint := flag.String("endpoint", "", "Public endpoint that receives chat envelopes")
	timeout := flag.Duration("timeout", 30*time.Second, "Registration request timeout")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()

	if *endpoint == "" {
		fmt.Fprintln(os.Stderr, "Usage: register -endpoint <url> [-name <name>]")
		os.Exit(1)
	}

	cfg := config.Load()

	// Registration requires real credentials; abort instead of degrading.
	if cfg.AgentverseAPIKey == "" {
		fmt.Fprintln(os.Stderr, "Environment variable AGENTVERSE_API_KEY is required to register the agent.")
		os.Exit(1)
	}
	if cfg.AgentSeedPhrase == "" {
		fmt.Fprintln(os.Stderr, "Environment variable AGENT_SEED_PHRASE is required to register the agent.")
		os.Exit(1)
	}

	id, err := identity.FromSeed(cfg.AgentSeedPhrase, 0)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to derive agent identity")
	}

	client := registration.NewClient(cfg.AgentverseBaseURL, cfg.AgentverseAPIKey, id, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := client.RegisterChatAgent(ctx, *name, *endpoint); err != nil {
		logger.Fatal().Err(err).Msg("registration failed")
	}

	fmt.Printf("Registered %q at %s\n", *name, *endpoint)
}
