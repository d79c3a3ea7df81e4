package handlers

import (
	"net/http"

	"github.com/serenolabs/sereno/internal/server/sensor"
)

// SensorHandler serves the anonymous sensory-trigger heuristics.
type SensorHandler struct {
	maxBody int64
}

// NewSensorHandler creates a new SensorHandler.
func NewSensorHandler(maxBody int64) *SensorHandler {
	return &SensorHandler{maxBody: maxBody}
}

type sensorCheckRequest struct {
	Sound      *float64 `json:"sound"`
	Brightness *float64 `json:"brightness"`
}

type sensorCheckResponse struct {
	SoundAlert      bool     `json:"sound_alert"`
	BrightnessAlert bool     `json:"brightness_alert"`
	Tips            []string `json:"tips"`
}

// Check evaluates ambient readings against the alert thresholds. Readings
// are processed anonymously and never stored.
// POST /api/sensor-check
func (h *SensorHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req sensorCheckRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, r, err)
		return
	}

	check := sensor.Evaluate(sensor.Reading{
		Sound:      req.Sound,
		Brightness: req.Brightness,
	})

	respondJSON(w, http.StatusOK, sensorCheckResponse{
		SoundAlert:      check.SoundAlert,
		BrightnessAlert: check.BrightnessAlert,
		Tips:            check.Tips,
	})
}
