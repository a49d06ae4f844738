package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"dispatch-route-service/internal/api/dto"
	"dispatch-route-service/internal/services"
)

// StopHandler exposes the per-stop status endpoint used by driver clients.
type StopHandler struct {
	Tracker *services.StopTracker
	Log     zerolog.Logger
}

func (h *StopHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	stopID, err := pathID(r, "stopID")
	if err != nil {
		writeError(w, r, h.Log, http.StatusBadRequest, err.Error())
		return
	}

	var req dto.StopStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Log, http.StatusBadRequest, err.Error())
		return
	}
	if req.Status == "" {
		writeError(w, r, h.Log, http.StatusBadRequest, "status is required")
		return
	}

	stop, err := h.Tracker.UpdateStatus(r.Context(), stopID, req.Status, req.Notes)
	if err != nil {
		writeDomainError(w, r, h.Log, err)
		return
	}

	writeJSON(w, r, h.Log, http.StatusOK, stopResponse(stop))
}
