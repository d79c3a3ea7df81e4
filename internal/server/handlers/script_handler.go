package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/serenolabs/sereno/internal/server/auth"
	srverrors "github.com/serenolabs/sereno/internal/server/errors"
	"github.com/serenolabs/sereno/internal/server/repository"
)

// ScriptRepository defines the script data access the handler needs.
type ScriptRepository interface {
	CreateScript(ctx context.Context, ownerID int64, title, message string, category *string) (*repository.Script, error)
	ListScriptsByOwner(ctx context.Context, ownerID int64) ([]repository.Script, error)
	DeleteScript(ctx context.Context, ownerID, scriptID int64) error
}

// defaultScripts is the fixed read-only set served to anonymous callers.
// Never persisted; IDs are stable but meaningless outside this list.
var defaultScripts = []scriptResponse{
	{ID: 1, Title: "Ask for time", Message: "I need a minute, please.", Category: strPtr("General")},
	{ID: 2, Title: "Bothersome noise", Message: "The noise is making me uncomfortable.", Category: strPtr("Environment")},
	{ID: 3, Title: "Help", Message: "Could you help me with this?", Category: strPtr("General")},
}

func strPtr(s string) *string { return &s }

// ScriptHandler serves social-script CRUD.
type ScriptHandler struct {
	scripts ScriptRepository
	maxBody int64
}

// NewScriptHandler creates a new ScriptHandler.
func NewScriptHandler(scripts ScriptRepository, maxBody int64) *ScriptHandler {
	return &ScriptHandler{
		scripts: scripts,
		maxBody: maxBody,
	}
}

type scriptResponse struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Category  *string    `json:"category,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type createScriptRequest struct {
	Title    string  `json:"title"`
	Message  string  `json:"message"`
	Category *string `json:"category"`
}

// List returns the caller's scripts, or the fixed default set for anonymous
// callers. Anonymous responses never contain a persisted row.
// GET /scripts
func (h *ScriptHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if !identity.Authenticated {
		respondJSON(w, http.StatusOK, defaultScripts)
		return
	}

	scripts, err := h.scripts.ListScriptsByOwner(r.Context(), identity.UserID)
	if err != nil {
		respondError(w, r, srverrors.NewInternal("failed to list scripts", err))
		return
	}

	out := make([]scriptResponse, 0, len(scripts))
	for _, s := range scripts {
		out = append(out, toScriptResponse(s))
	}
	respondJSON(w, http.StatusOK, out)
}

// Create stores a new script owned by the caller.
// POST /scripts (authenticated)
func (h *ScriptHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())

	var req createScriptRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if req.Title == "" || req.Message == "" {
		respondError(w, r, srverrors.NewInvalidInput("title and message are required"))
		return
	}

	script, err := h.scripts.CreateScript(r.Context(), identity.UserID, req.Title, req.Message, req.Category)
	if err != nil {
		respondError(w, r, srverrors.NewInternal("failed to create script", err))
		return
	}

	respondJSON(w, http.StatusCreated, toScriptResponse(*script))
}

// Delete removes one of the caller's scripts. A script that does not exist
// and a script owned by someone else fail identically.
// DELETE /scripts/{id} (authenticated)
func (h *ScriptHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())

	scriptID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, r, srverrors.NewInvalidInput("invalid script id"))
		return
	}

	if err := h.scripts.DeleteScript(r.Context(), identity.UserID, scriptID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, r, srverrors.NewNotFound("script not found"))
			return
		}
		respondError(w, r, srverrors.NewInternal("failed to delete script", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toScriptResponse(s repository.Script) scriptResponse {
	createdAt := s.CreatedAt
	return scriptResponse{
		ID:        s.ID,
		Title:     s.Title,
		Message:   s.Message,
		Category:  s.Category,
		CreatedAt: &createdAt,
	}
}
