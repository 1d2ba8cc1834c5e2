package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stanstork/meeting-trigger/internal/models"
)

type MeetingReader interface {
	Get(ctx context.Context, id string) (models.Meeting, error)
	ListByInvitation(ctx context.Context, invitationID string) ([]models.Meeting, error)
}

type MeetingHandler struct {
	repo   MeetingReader
	logger zerolog.Logger
}

func NewMeetingHandler(repo MeetingReader, logger zerolog.Logger) *MeetingHandler {
	return &MeetingHandler{
		repo:   repo,
		logger: logger.With().Str("handler", "meeting").Logger(),
	}
}

func (h *MeetingHandler) Get(w http.ResponseWriter, r *http.Request) {
	meetingID := strings.TrimSpace(mux.Vars(r)["meetingID"])
	if meetingID == "" {
		http.Error(w, "Meeting ID is required", http.StatusBadRequest)
		return
	}

	meeting, err := h.repo.Get(r.Context(), meetingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Meeting not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("meeting_id", meetingID).Msg("failed to load meeting")
		http.Error(w, "Failed to load meeting", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, meeting)
}

func (h *MeetingHandler) ListByInvitation(w http.ResponseWriter, r *http.Request) {
	invitationID := strings.TrimSpace(mux.Vars(r)["invitationID"])
	if invitationID == "" {
		http.Error(w, "Invitation ID is required", http.StatusBadRequest)
		return
	}

	meetings, err := h.repo.ListByInvitation(r.Context(), invitationID)
	if err != nil {
		h.logger.Error().Err(err).Str("invitation_id", invitationID).Msg("failed to list meetings")
		http.Error(w, "Failed to list meetings", http.StatusInternalServerError)
		return
	}
	if meetings == nil {
		meetings = []models.Meeting{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"meetings": meetings,
	})
}
