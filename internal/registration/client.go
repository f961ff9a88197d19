// Package registration registers agents with the Agentverse service
// using a challenge/response proof of identity ownership.
package registration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/foldspace-protocol/foldspace/internal/identity"
)

const requestTimeout = 30 * time.Second

// Client talks to the Agentverse registration API.
type Client struct {
	baseURL    string
	apiKey     string
	identity   *identity.Identity
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a registration client. baseURL must end with a slash.
func NewClient(baseURL, apiKey string, id *identity.Identity, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		identity:   id,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

type challengeRequest struct {
	Address string `json:"address"`
}

type challengeResponse struct {
	Challenge string `json:"challenge"`
}

type registerRequest struct {
	Address           string `json:"address"`
	Challenge         string `json:"challenge"`
	ChallengeResponse string `json:"challenge_response"`
	Endpoint          string `json:"endpoint"`
	AgentType         string `json:"agent_type"`
	Name              string `json:"name"`
	Active            bool   `json:"active"`
}

// RegisterChatAgent registers the identity as a chat agent reachable at
// the given endpoint: request a challenge for the agent address, sign
// it, and submit the response together with the endpoint.
func (c *Client) RegisterChatAgent(ctx context.Context, name, endpoint string) error {
	challenge, err := c.requestChallenge(ctx)
	if err != nil {
		return fmt.Errorf("request challenge: %w", err)
	}

	req := registerRequest{
		Address:           c.identity.Address(),
		Challenge:         challenge,
		ChallengeResponse: c.identity.Sign([]byte(challenge)),
		Endpoint:          endpoint,
		AgentType:         "custom",
		Name:              name,
		Active:            true,
	}

	if err := c.post(ctx, "v1/agents", req, nil); err != nil {
		return fmt.Errorf("register agent: %w", err)
	}

	c.logger.Info().
		Str("name", name).
		Str("address", c.identity.Address()).
		Str("endpoint", endpoint).
		Msg("agent registered")
	return nil
}

func (c *Client) requestChallenge(ctx context.Context) (string, error) {
	var resp challengeResponse
	if err := c.post(ctx, "v1/auth/challenge", challengeRequest{Address: c.identity.Address()}, &resp); err != nil {
		return "", err
	}
	if resp.Challenge == "" {
		return "", fmt.Errorf("empty challenge in response")
	}
	return resp.Challenge, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(respBody, &errResp)
		detail := errResp.Error
		if detail == "" {
			detail = string(respBody)
		}
		return fmt.Errorf("agentverse error %d: %s", resp.StatusCode, detail)
	}

	if out != nil {
		return json.Unmarshal(respBody, out)
	}
	return nil
}
