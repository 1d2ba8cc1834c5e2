// Package trigger turns invitation acceptances into meetings.
package trigger

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stanstork/meeting-trigger/internal/metrics"
	"github.com/stanstork/meeting-trigger/internal/models"
)

// DefaultScheduleOffset is how far after creation a new meeting is scheduled.
const DefaultScheduleOffset = 7 * 24 * time.Hour

// Skip reasons reported in Result.Reason.
const (
	ReasonNotAccepted      = "not_accepted"
	ReasonAlreadyScheduled = "already_scheduled"
)

// Result is returned to whoever delivered the event. It is informational
// only; a failed write is reported as an error, never as a Result.
type Result struct {
	Success   bool   `json:"success"`
	MeetingID string `json:"meetingId,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// MeetingStore is the subset of the meeting repository the handler writes to.
type MeetingStore interface {
	Create(ctx context.Context, meeting models.Meeting) (models.Meeting, error)
	ListByInvitation(ctx context.Context, invitationID string) ([]models.Meeting, error)
}

type Option func(*Handler)

// WithClock replaces time.Now as the source of "now" for scheduledFor.
func WithClock(clock func() time.Time) Option {
	return func(h *Handler) {
		if clock != nil {
			h.clock = clock
		}
	}
}

func WithScheduleOffset(offset time.Duration) Option {
	return func(h *Handler) {
		if offset > 0 {
			h.offset = offset
		}
	}
}

// WithDeduplication makes the handler look for a meeting already created
// from the same invitation before inserting. The lookup and the insert are
// not atomic, so concurrent deliveries can still both insert.
func WithDeduplication(enabled bool) Option {
	return func(h *Handler) {
		h.dedupe = enabled
	}
}

// Handler is the invitation acceptance handler. It keeps no state between
// calls and is safe for concurrent use.
type Handler struct {
	store  MeetingStore
	logger zerolog.Logger
	clock  func() time.Time
	offset time.Duration
	dedupe bool
}

func NewHandler(store MeetingStore, logger zerolog.Logger, opts ...Option) *Handler {
	h := &Handler{
		store:  store,
		logger: logger.With().Str("component", "acceptance_handler").Logger(),
		clock:  time.Now,
		offset: DefaultScheduleOffset,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle creates one meeting when the update moves the invitation into
// accepted, and is a no-op for every other transition.
func (h *Handler) Handle(ctx context.Context, update models.InvitationUpdate) (Result, error) {
	start := time.Now()
	defer func() {
		metrics.ObserveHandleDuration(time.Since(start).Seconds())
	}()

	logger := h.logger.With().Str("invitation_id", update.InvitationID).Logger()
	logger.Info().
		Str("before_status", string(update.Before.Status)).
		Str("after_status", string(update.After.Status)).
		Msg("invitation updated")

	if !update.BecameAccepted() {
		logger.Info().Msg("status not accepted, skipping meeting creation")
		metrics.RecordTriggerOutcome(metrics.OutcomeSkipped)
		return Result{Success: false, Reason: ReasonNotAccepted}, nil
	}

	if h.dedupe {
		existing, err := h.store.ListByInvitation(ctx, update.InvitationID)
		if err != nil {
			logger.Error().Err(err).Msg("failed to look up existing meetings")
			metrics.RecordTriggerOutcome(metrics.OutcomeFailed)
			return Result{}, errors.Wrapf(err, "look up meetings for invitation %s", update.InvitationID)
		}
		if len(existing) > 0 {
			logger.Info().Str("meeting_id", existing[0].ID).Msg("meeting already scheduled for invitation")
			metrics.RecordTriggerOutcome(metrics.OutcomeDuplicate)
			return Result{Success: false, Reason: ReasonAlreadyScheduled, MeetingID: existing[0].ID}, nil
		}
	}

	participants := []string{update.After.SenderID, update.After.ReceiverID}
	meeting, err := h.store.Create(ctx, models.Meeting{
		Participants:          participants,
		ScheduledFor:          h.clock().Add(h.offset),
		CreatedFromInvitation: update.InvitationID,
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to create meeting")
		metrics.RecordTriggerOutcome(metrics.OutcomeFailed)
		return Result{}, errors.Wrapf(err, "create meeting for invitation %s", update.InvitationID)
	}

	logger.Info().
		Str("meeting_id", meeting.ID).
		Strs("participants", participants).
		Time("scheduled_for", meeting.ScheduledFor).
		Msg("meeting created")
	metrics.RecordTriggerOutcome(metrics.OutcomeCreated)
	return Result{Success: true, MeetingID: meeting.ID}, nil
}
