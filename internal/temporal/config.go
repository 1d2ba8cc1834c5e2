package temporal

import (
	"time"

	"github.com/stanstork/meeting-trigger/internal/models"
)

// DefaultTaskQueue is the task queue used when none is configured.
const DefaultTaskQueue = "MEETING_TRIGGER"

// WorkflowIDPrefix is the prefix of every invitation update workflow ID.
const WorkflowIDPrefix = "invitation-update-"

// DefaultActivityTimeout bounds a single attempt of the meeting insert.
const DefaultActivityTimeout = time.Minute

// DefaultMaxAttempts caps activity retries when the event does not set one.
const DefaultMaxAttempts = 10

// InvitationEvent is the input of InvitationUpdateWorkflow.
type InvitationEvent struct {
	Update models.InvitationUpdate
	// MaxAttempts of zero means DefaultMaxAttempts.
	MaxAttempts int32
}
