package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stanstork/meeting-trigger/internal/models"
	"github.com/stanstork/meeting-trigger/internal/trigger"
)

type InvitationUpdateHandler interface {
	Handle(ctx context.Context, update models.InvitationUpdate) (trigger.Result, error)
}

// EventHandler accepts invitation update events pushed over HTTP and runs
// them through the acceptance handler synchronously.
type EventHandler struct {
	handler InvitationUpdateHandler
	logger  zerolog.Logger
}

func NewEventHandler(handler InvitationUpdateHandler, logger zerolog.Logger) *EventHandler {
	return &EventHandler{
		handler: handler,
		logger:  logger.With().Str("handler", "event").Logger(),
	}
}

// PushInvitationUpdate answers 500 when the meeting write fails so the
// sender retries delivery.
func (h *EventHandler) PushInvitationUpdate(w http.ResponseWriter, r *http.Request) {
	invitationID := strings.TrimSpace(mux.Vars(r)["invitationID"])
	if invitationID == "" {
		http.Error(w, "Invitation ID is required", http.StatusBadRequest)
		return
	}

	var payload struct {
		Before models.InvitationSnapshot `json:"before"`
		After  models.InvitationSnapshot `json:"after"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	result, err := h.handler.Handle(r.Context(), models.InvitationUpdate{
		InvitationID: invitationID,
		Before:       payload.Before,
		After:        payload.After,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("invitation_id", invitationID).Msg("failed to handle invitation update")
		http.Error(w, "Failed to create meeting", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
