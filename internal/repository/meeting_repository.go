package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stanstork/meeting-trigger/internal/models"
)

type MeetingRepository interface {
	Create(ctx context.Context, meeting models.Meeting) (models.Meeting, error)
	Get(ctx context.Context, id string) (models.Meeting, error)
	ListByInvitation(ctx context.Context, invitationID string) ([]models.Meeting, error)
}

type meetingRepository struct {
	db *sql.DB
}

func NewMeetingRepository(db *sql.DB) MeetingRepository {
	return &meetingRepository{db: db}
}

// Create inserts a meeting. created_at is always assigned by the database;
// an empty ID is replaced with a fresh UUID.
func (r *meetingRepository) Create(ctx context.Context, meeting models.Meeting) (models.Meeting, error) {
	const query = `
		INSERT INTO meetings (id, participants, scheduled_for, created_from_invitation)
		VALUES ($1, $2, $3, $4)
		RETURNING id, participants, scheduled_for, created_at, created_from_invitation
	`

	if meeting.ID == "" {
		meeting.ID = uuid.NewString()
	}

	row := r.db.QueryRowContext(ctx, query,
		meeting.ID,
		pq.Array(meeting.Participants),
		meeting.ScheduledFor,
		meeting.CreatedFromInvitation,
	)
	created, err := scanMeeting(row)
	if err != nil {
		return models.Meeting{}, errors.Wrap(err, "insert meeting")
	}
	return created, nil
}

func (r *meetingRepository) Get(ctx context.Context, id string) (models.Meeting, error) {
	const query = `
		SELECT id, participants, scheduled_for, created_at, created_from_invitation
		FROM meetings
		WHERE id = $1
	`
	return scanMeeting(r.db.QueryRowContext(ctx, query, id))
}

func (r *meetingRepository) ListByInvitation(ctx context.Context, invitationID string) ([]models.Meeting, error) {
	const query = `
		SELECT id, participants, scheduled_for, created_at, created_from_invitation
		FROM meetings
		WHERE created_from_invitation = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, invitationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meetings []models.Meeting
	for rows.Next() {
		meeting, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, meeting)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return meetings, nil
}

func scanMeeting(scanner interface {
	Scan(dest ...interface{}) error
}) (models.Meeting, error) {
	var (
		meeting      models.Meeting
		participants pq.StringArray
	)
	if err := scanner.Scan(
		&meeting.ID,
		&participants,
		&meeting.ScheduledFor,
		&meeting.CreatedAt,
		&meeting.CreatedFromInvitation,
	); err != nil {
		return models.Meeting{}, err
	}
	meeting.Participants = []string(participants)
	return meeting, nil
}
