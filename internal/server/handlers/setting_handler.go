package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/serenolabs/sereno/internal/server/auth"
	srverrors "github.com/serenolabs/sereno/internal/server/errors"
	"github.com/serenolabs/sereno/internal/server/repository"
)

// SettingRepository defines the settings data access the handler needs.
type SettingRepository interface {
	UpsertSetting(ctx context.Context, ownerID int64, settings string) (*repository.Setting, error)
	GetSettingByOwner(ctx context.Context, ownerID int64) (*repository.Setting, error)
}

// defaultSettings is returned to anonymous callers and to authenticated
// users who have never stored settings.
var defaultSettings = map[string]any{
	"theme":           "soft",
	"sound_threshold": 0.65,
	"animations":      false,
	"data_logging":    false,
}

// SettingHandler serves the one-per-user settings document.
type SettingHandler struct {
	settings SettingRepository
	maxBody  int64
}

// NewSettingHandler creates a new SettingHandler.
func NewSettingHandler(settings SettingRepository, maxBody int64) *SettingHandler {
	return &SettingHandler{
		settings: settings,
		maxBody:  maxBody,
	}
}

type upsertSettingResponse struct {
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Get returns the caller's stored settings, or the defaults when the caller
// is anonymous or has never stored any. Stored and default settings are
// served in the same bare-object shape.
// GET /settings
func (h *SettingHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if !identity.Authenticated {
		respondJSON(w, http.StatusOK, defaultSettings)
		return
	}

	setting, err := h.settings.GetSettingByOwner(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondJSON(w, http.StatusOK, defaultSettings)
			return
		}
		respondError(w, r, srverrors.NewInternal("failed to get settings", err))
		return
	}

	respondJSON(w, http.StatusOK, json.RawMessage(setting.Settings))
}

// Upsert stores the request body as the caller's settings document. The
// blob is opaque to the server: any JSON object is accepted as-is. Create
// and overwrite are a single atomic operation in the repository.
// POST /settings (authenticated)
func (h *SettingHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())

	var blob map[string]any
	if err := decodeJSON(w, r, h.maxBody, &blob); err != nil {
		respondError(w, r, err)
		return
	}

	serialized, err := json.Marshal(blob)
	if err != nil {
		respondError(w, r, srverrors.NewInternal("failed to serialize settings", err))
		return
	}

	setting, err := h.settings.UpsertSetting(r.Context(), identity.UserID, string(serialized))
	if err != nil {
		respondError(w, r, srverrors.NewInternal("failed to store settings", err))
		return
	}

	respondJSON(w, http.StatusOK, upsertSettingResponse{
		Status:    "ok",
		UpdatedAt: setting.UpdatedAt,
	})
}
