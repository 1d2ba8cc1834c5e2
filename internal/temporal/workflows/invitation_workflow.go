package workflows

import (
	"time"

	sdktemporal "go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/stanstork/meeting-trigger/internal/temporal"
	"github.com/stanstork/meeting-trigger/internal/temporal/activities"
	"github.com/stanstork/meeting-trigger/internal/trigger"
)

// InvitationUpdateWorkflow delivers one invitation update to the acceptance
// handler, retrying failed meeting writes with exponential backoff.
func InvitationUpdateWorkflow(ctx workflow.Context, event temporal.InvitationEvent) (trigger.Result, error) {
	maxAttempts := event.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = temporal.DefaultMaxAttempts
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: temporal.DefaultActivityTimeout,
		RetryPolicy: &sdktemporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    maxAttempts,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	logger := workflow.GetLogger(ctx)
	logger.Info("Starting invitation update workflow", "InvitationID", event.Update.InvitationID,
		"BeforeStatus", event.Update.Before.Status, "AfterStatus", event.Update.After.Status)

	var a *activities.Activities
	var result trigger.Result
	if err := workflow.ExecuteActivity(ctx, a.HandleInvitationUpdateActivity, event.Update).Get(ctx, &result); err != nil {
		logger.Error("Invitation update could not be handled.", "InvitationID", event.Update.InvitationID, "error", err)
		return trigger.Result{}, err
	}

	logger.Info("Invitation update workflow completed.", "InvitationID", event.Update.InvitationID,
		"Success", result.Success, "MeetingID", result.MeetingID, "Reason", result.Reason)
	return result, nil
}
