package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// PricingRequest is the optional body for POST /request_pricing.
type PricingRequest struct {
	Input map[string]any `json:"input"`
}

// PaymentRequest carries payment verification/settlement inputs.
type PaymentRequest struct {
	Payload      map[string]any `json:"payload"`
	Requirements map[string]any `json:"requirements"`
	Options      map[string]any `json:"options"`
}

// AgentverseRegisterRequest is the body for the registration stub.
// Both camelCase and snake_case field spellings are accepted.
type AgentverseRegisterRequest struct {
	Address             string `json:"address"`
	Challenge           string `json:"challenge"`
	ChallengeResponse   string `json:"challengeResponse"`
	ChallengeResponseSC string `json:"challenge_response"`
	AgentType           string `json:"agentType"`
	AgentTypeSC         string `json:"agent_type"`
	Endpoint            string `json:"endpoint"`
	Prefix              string `json:"prefix"`
}

// GetPricing returns 402 with a fresh session id on every call.
func (h *Handler) GetPricing(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusPaymentRequired, placeholderResponse("/request_pricing", http.MethodGet, map[string]any{
		"sessionId": uuid.NewString(),
		"input":     r.URL.Query().Get("input"),
	}))
}

// PostPricing returns 402 with a fresh session id on every call.
func (h *Handler) PostPricing(w http.ResponseWriter, r *http.Request) {
	var req PricingRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	extra := map[string]any{"sessionId": uuid.NewString()}
	if req.Input != nil {
		extra["input"] = req.Input
	}
	h.JSON(w, http.StatusPaymentRequired, placeholderResponse("/request_pricing", http.MethodPost, extra))
}

// GetSession echoes the session id.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, placeholderResponse("/sessions/{sessionId}", http.MethodGet, map[string]any{
		"sessionId": chi.URLParam(r, "sessionID"),
	}))
}

// PostSessionPayment requires payload and requirements fields.
func (h *Handler) PostSessionPayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Payload == nil || req.Requirements == nil {
		h.Error(w, http.StatusBadRequest, "payload and requirements are required")
		return
	}

	h.JSON(w, http.StatusOK, placeholderResponse("/sessions/{sessionId}/payment", http.MethodPost, map[string]any{
		"sessionId":    chi.URLParam(r, "sessionID"),
		"payload":      req.Payload,
		"requirements": req.Requirements,
	}))
}

// FacilitatorResources echoes the request body.
func (h *Handler) FacilitatorResources(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	h.JSON(w, http.StatusOK, placeholderResponse("/facilitator/resources", http.MethodPost, map[string]any{
		"request": body,
	}))
}

// FacilitatorSupported lists the supported facilitator kinds.
func (h *Handler) FacilitatorSupported(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, placeholderResponse("/facilitator/supported", http.MethodGet, map[string]any{
		"kinds": []string{"local_stub"},
	}))
}

// PaymentEcho returns a handler echoing payload/requirements for the
// given payments endpoint.
func (h *Handler) PaymentEcho(endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.Error(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		extra := map[string]any{}
		if req.Payload != nil {
			extra["payload"] = req.Payload
		}
		if req.Requirements != nil {
			extra["requirements"] = req.Requirements
		}
		h.JSON(w, http.StatusOK, placeholderResponse(endpoint, http.MethodPost, extra))
	}
}

// AgentverseRegister validates the registration stub request.
func (h *Handler) AgentverseRegister(w http.ResponseWriter, r *http.Request) {
	var req AgentverseRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	challengeResponse := req.ChallengeResponse
	if challengeResponse == "" {
		challengeResponse = req.ChallengeResponseSC
	}
	if req.Address == "" || req.Challenge == "" || challengeResponse == "" {
		h.Error(w, http.StatusBadRequest, "address, challenge, and challengeResponse are required")
		return
	}

	agentType := req.AgentType
	if agentType == "" {
		agentType = req.AgentTypeSC
	}

	h.JSON(w, http.StatusOK, placeholderResponse("/agentverse/register", http.MethodPost, map[string]any{
		"address":   req.Address,
		"endpoint":  req.Endpoint,
		"agentType": agentType,
	}))
}
