package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	srverrors "github.com/serenolabs/sereno/internal/server/errors"
	"github.com/serenolabs/sereno/internal/server/logger"
	"github.com/serenolabs/sereno/internal/server/metrics"
)

// Completer defines the completion operations the assistant handler needs.
type Completer interface {
	Complete(ctx context.Context, text, imageB64 string) (string, error)
	Soften(ctx context.Context, text string) (string, error)
}

// Canned fallback texts for provider failures. The AI routes are fail-soft:
// a provider outage degrades to these responses and never surfaces as a 5xx.
const (
	fallbackComplete = "I had a technical difficulty processing that right now. Let's try again in a moment."
	fallbackSoften   = "I couldn't soften the text right now. Please try again in a moment."
	fallbackSocial   = "One good strategy is to use short sentences and long pauses. Want to tell me more details?"
)

// AssistantHandler proxies conversational requests to the completion
// provider.
type AssistantHandler struct {
	completer Completer
	maxBody   int64
}

// NewAssistantHandler creates a new AssistantHandler.
func NewAssistantHandler(completer Completer, maxBody int64) *AssistantHandler {
	return &AssistantHandler{
		completer: completer,
		maxBody:   maxBody,
	}
}

type assistantRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

type assistantResponse struct {
	Response string `json:"response"`
}

// Complete forwards text and an optional base64 image to the provider.
// POST /api/ia
func (h *AssistantHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req assistantRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if req.Text == "" && req.Image == "" {
		respondJSON(w, http.StatusOK, assistantResponse{Response: "No text received."})
		return
	}

	reply, err := h.completer.Complete(r.Context(), req.Text, req.Image)
	if err != nil {
		h.failSoft(w, r, err, fallbackComplete)
		return
	}

	respondJSON(w, http.StatusOK, assistantResponse{Response: reply})
}

type softenRequest struct {
	Text string `json:"text"`
}

// Soften rewrites a blunt phrase politely.
// POST /api/soften
func (h *AssistantHandler) Soften(w http.ResponseWriter, r *http.Request) {
	var req softenRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if req.Text == "" {
		respondError(w, r, srverrors.NewInvalidInput("text is required"))
		return
	}

	reply, err := h.completer.Soften(r.Context(), req.Text)
	if err != nil {
		h.failSoft(w, r, err, fallbackSoften)
		return
	}

	respondJSON(w, http.StatusOK, assistantResponse{Response: reply})
}

type socialHelperRequest struct {
	Situation string `json:"situation"`
}

// SocialHelper suggests a social strategy for a described situation. The
// assistant suggests strategies only, never diagnoses.
// POST /api/social-helper
func (h *AssistantHandler) SocialHelper(w http.ResponseWriter, r *http.Request) {
	var req socialHelperRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if req.Situation == "" {
		respondJSON(w, http.StatusOK, assistantResponse{Response: "Can you tell me a little about the situation?"})
		return
	}

	reply, err := h.completer.Complete(r.Context(), "Suggest a social strategy for this situation: "+req.Situation, "")
	if err != nil {
		h.failSoft(w, r, err, fallbackSocial)
		return
	}

	respondJSON(w, http.StatusOK, assistantResponse{Response: reply})
}

// failSoft records the upstream failure and degrades to canned text with a
// 200 status.
func (h *AssistantHandler) failSoft(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	metrics.ObserveUpstreamFailure()
	logger.WithContext(r.Context()).Warn("completion provider failed, serving fallback", zap.Error(err))
	respondJSON(w, http.StatusOK, assistantResponse{Response: fallback})
}
