package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/foldspace-protocol/foldspace/internal/config"
	"github.com/foldspace-protocol/foldspace/internal/identity"
	"github.com/foldspace-protocol/foldspace/internal/journal"
	"github.com/foldspace-protocol/foldspace/internal/knowledge"
	"github.com/foldspace-protocol/foldspace/internal/mailbox"
)

// PlaceholderReply is the default reply text for inbound chat messages.
const PlaceholderReply = "Message received"

// Handler contains shared dependencies for all HTTP handlers. Identity,
// journal, and redis may be nil; the dependent features degrade.
type Handler struct {
	cfg       *config.Config
	identity  *identity.Identity
	mailbox   *mailbox.Client
	journal   journal.Journal
	knowledge *knowledge.Store
	redis     *redis.Client
	logger    zerolog.Logger
}

// NewHandler creates a new Handler with the given dependencies.
func NewHandler(cfg *config.Config, id *identity.Identity, mb *mailbox.Client, jnl journal.Journal, kb *knowledge.Store, rdb *redis.Client, logger zerolog.Logger) *Handler {
	return &Handler{
		cfg:       cfg,
		identity:  id,
		mailbox:   mb,
		journal:   jnl,
		knowledge: kb,
		redis:     rdb,
		logger:    logger,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// placeholderResponse builds the stub response body shared by all
// placeholder routes. Nil and empty extras are omitted.
func placeholderResponse(endpoint, method string, extra map[string]any) map[string]any {
	body := map[string]any{
		"endpoint": endpoint,
		"method":   method,
		"status":   "placeholder",
		"message":  "Foldspace stub response.",
	}
	for k, v := range extra {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		body[k] = v
	}
	return body
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
