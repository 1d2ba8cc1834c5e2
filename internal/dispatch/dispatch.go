// Package dispatch hands invitation updates to the acceptance handler,
// either in-process or through a durable Temporal workflow.
package dispatch

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	tc "go.temporal.io/sdk/client"

	"github.com/stanstork/meeting-trigger/internal/models"
	"github.com/stanstork/meeting-trigger/internal/temporal"
	"github.com/stanstork/meeting-trigger/internal/temporal/workflows"
	"github.com/stanstork/meeting-trigger/internal/trigger"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, update models.InvitationUpdate) error
}

type UpdateHandler interface {
	Handle(ctx context.Context, update models.InvitationUpdate) (trigger.Result, error)
}

// Direct runs the handler synchronously. Failures are returned to the
// caller and are not retried.
type Direct struct {
	handler UpdateHandler
}

func NewDirect(handler UpdateHandler) *Direct {
	return &Direct{handler: handler}
}

func (d *Direct) Dispatch(ctx context.Context, update models.InvitationUpdate) error {
	_, err := d.handler.Handle(ctx, update)
	return err
}

// WorkflowStarter is satisfied by the Temporal client.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options tc.StartWorkflowOptions, workflow interface{}, args ...interface{}) (tc.WorkflowRun, error)
}

// Temporal starts one InvitationUpdateWorkflow per update and returns once
// the workflow is accepted by the server.
type Temporal struct {
	client      WorkflowStarter
	taskQueue   string
	maxAttempts int32
	logger      zerolog.Logger
}

func NewTemporal(client WorkflowStarter, taskQueue string, maxAttempts int32, logger zerolog.Logger) *Temporal {
	if taskQueue == "" {
		taskQueue = temporal.DefaultTaskQueue
	}
	return &Temporal{
		client:      client,
		taskQueue:   taskQueue,
		maxAttempts: maxAttempts,
		logger:      logger.With().Str("component", "temporal_dispatcher").Logger(),
	}
}

func (t *Temporal) Dispatch(ctx context.Context, update models.InvitationUpdate) error {
	// Every delivery gets its own workflow; duplicates are handled (or not)
	// by the handler, not by workflow ID reuse.
	opts := tc.StartWorkflowOptions{
		ID:        temporal.WorkflowIDPrefix + update.InvitationID + "-" + uuid.NewString(),
		TaskQueue: t.taskQueue,
	}

	run, err := t.client.ExecuteWorkflow(ctx, opts, workflows.InvitationUpdateWorkflow, temporal.InvitationEvent{
		Update:      update,
		MaxAttempts: t.maxAttempts,
	})
	if err != nil {
		return errors.Wrapf(err, "start workflow for invitation %s", update.InvitationID)
	}

	t.logger.Info().
		Str("invitation_id", update.InvitationID).
		Str("workflow_id", run.GetID()).
		Str("run_id", run.GetRunID()).
		Msg("invitation update workflow started")
	return nil
}
