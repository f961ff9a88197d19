package handlers

import (
	"context"
	"net/http"
	"time"
)

const version = "0.1.0"

// Check represents the status of a health check.
type Check struct {
	Status  string `json:"status"`            // "pass" or "fail"
	Latency string `json:"latency,omitempty"` // e.g., "2ms"
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status       string           `json:"status"` // "ok" or "degraded"
	Version      string           `json:"version"`
	AgentAddress string           `json:"agent_address,omitempty"`
	Checks       map[string]Check `json:"checks,omitempty"`
	Timestamp    string           `json:"timestamp"`
}

// Health handles the health check endpoint. Only configured backends are
// checked; the journal and redis are both optional.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]Check)
	allHealthy := true

	if h.journal != nil {
		start := time.Now()
		if err := h.journal.Ping(ctx); err != nil {
			checks["journal"] = Check{Status: "fail", Message: "connection failed"}
			allHealthy = false
		} else {
			checks["journal"] = Check{Status: "pass", Latency: time.Since(start).String()}
		}
	}

	if h.redis != nil {
		start := time.Now()
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = Check{Status: "fail", Message: "connection failed"}
			allHealthy = false
		} else {
			checks["redis"] = Check{Status: "pass", Latency: time.Since(start).String()}
		}
	}

	status := "ok"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	var address string
	if h.identity != nil {
		address = h.identity.Address()
	}

	h.JSON(w, statusCode, HealthResponse{
		Status:       status,
		Version:      version,
		AgentAddress: address,
		Checks:       checks,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	})
}

// Root handles the root endpoint.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, map[string]string{
		"message": "Foldspace Protocol chat adapter is running.",
	})
}

// Status handles the legacy liveness endpoint.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, map[string]string{
		"status": "OK - Agent is running",
	})
}
