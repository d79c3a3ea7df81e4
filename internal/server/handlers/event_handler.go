package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/serenolabs/sereno/internal/server/auth"
	srverrors "github.com/serenolabs/sereno/internal/server/errors"
	"github.com/serenolabs/sereno/internal/server/repository"
)

// EventRepository defines the event data access the handler needs.
type EventRepository interface {
	CreateEvent(ctx context.Context, ownerID *int64, deviceID *string, eventType string, value *float64, recordedAt time.Time) (*repository.Event, error)
	ListEventsByOwner(ctx context.Context, ownerID int64, limit int) ([]repository.Event, error)
}

// EventHandler serves append-only sensor/log event ingestion.
type EventHandler struct {
	events    EventRepository
	maxBody   int64
	listLimit int
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(events EventRepository, maxBody int64, listLimit int) *EventHandler {
	if listLimit <= 0 {
		listLimit = 100
	}
	return &EventHandler{
		events:    events,
		maxBody:   maxBody,
		listLimit: listLimit,
	}
}

type createEventRequest struct {
	EventType string   `json:"event_type"`
	DeviceID  *string  `json:"device_id"`
	Value     *float64 `json:"value"`
	Timestamp string   `json:"timestamp"`
}

type createEventResponse struct {
	Status     string    `json:"status"`
	ID         int64     `json:"id"`
	RecordedAt time.Time `json:"recorded_at"`
}

type eventResponse struct {
	ID         int64     `json:"id"`
	EventType  string    `json:"event_type"`
	DeviceID   *string   `json:"device_id,omitempty"`
	Value      *float64  `json:"value,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Create appends an event. Anonymous events are stored without an owner.
// The client timestamp is honored when it parses as RFC 3339; otherwise the
// server ingestion time is used.
// POST /events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if req.EventType == "" {
		respondError(w, r, srverrors.NewInvalidInput("event_type is required"))
		return
	}

	recordedAt := time.Now()
	if req.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, req.Timestamp); err == nil {
			recordedAt = parsed
		}
	}

	var ownerID *int64
	if identity := auth.IdentityFromContext(r.Context()); identity.Authenticated {
		ownerID = &identity.UserID
	}

	event, err := h.events.CreateEvent(r.Context(), ownerID, req.DeviceID, req.EventType, req.Value, recordedAt)
	if err != nil {
		respondError(w, r, srverrors.NewInternal("failed to store event", err))
		return
	}

	respondJSON(w, http.StatusCreated, createEventResponse{
		Status:     "logged",
		ID:         event.ID,
		RecordedAt: event.RecordedAt,
	})
}

// List returns the caller's events, newest first. Anonymous callers get an
// empty list; events without an owner are not retrievable over HTTP.
// GET /events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if !identity.Authenticated {
		respondJSON(w, http.StatusOK, []eventResponse{})
		return
	}

	events, err := h.events.ListEventsByOwner(r.Context(), identity.UserID, h.listLimit)
	if err != nil {
		respondError(w, r, srverrors.NewInternal("failed to list events", err))
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse{
			ID:         e.ID,
			EventType:  e.EventType,
			DeviceID:   e.DeviceID,
			Value:      e.Value,
			RecordedAt: e.RecordedAt,
		})
	}
	respondJSON(w, http.StatusOK, out)
}
