package activities

import (
	"context"

	"go.temporal.io/sdk/activity"

	"github.com/stanstork/meeting-trigger/internal/models"
	"github.com/stanstork/meeting-trigger/internal/trigger"
)

type UpdateHandler interface {
	Handle(ctx context.Context, update models.InvitationUpdate) (trigger.Result, error)
}

type Activities struct {
	Handler UpdateHandler
}

// HandleInvitationUpdateActivity runs the acceptance handler. A returned
// error fails the attempt and lets the retry policy schedule another one.
func (a *Activities) HandleInvitationUpdateActivity(ctx context.Context, update models.InvitationUpdate) (trigger.Result, error) {
	logger := activity.GetLogger(ctx)
	info := activity.GetInfo(ctx)
	logger.Info("Handling invitation update", "InvitationID", update.InvitationID, "Attempt", info.Attempt)

	result, err := a.Handler.Handle(ctx, update)
	if err != nil {
		logger.Error("Invitation update attempt failed", "InvitationID", update.InvitationID, "Attempt", info.Attempt, "error", err)
		return trigger.Result{}, err
	}
	return result, nil
}
