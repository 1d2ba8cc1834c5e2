package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stanstork/meeting-trigger/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var meetingColumns = []string{"id", "participants", "scheduled_for", "created_at", "created_from_invitation"}

func newMockRepo(t *testing.T) (MeetingRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMeetingRepository(db), mock
}

func TestCreateMeeting(t *testing.T) {
	repo, mock := newMockRepo(t)
	scheduled := time.Date(2026, 10, 23, 12, 0, 0, 0, time.UTC)
	created := time.Date(2026, 10, 16, 12, 0, 1, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO meetings`).
		WithArgs("m-1", `{"A","B"}`, scheduled, "inv-1").
		WillReturnRows(sqlmock.NewRows(meetingColumns).
			AddRow("m-1", "{A,B}", scheduled, created, "inv-1"))

	meeting, err := repo.Create(context.Background(), models.Meeting{
		ID:                    "m-1",
		Participants:          []string{"A", "B"},
		ScheduledFor:          scheduled,
		CreatedFromInvitation: "inv-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "m-1", meeting.ID)
	assert.Equal(t, []string{"A", "B"}, meeting.Participants)
	assert.Equal(t, created, meeting.CreatedAt)
	assert.Equal(t, "inv-1", meeting.CreatedFromInvitation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMeetingGeneratesID(t *testing.T) {
	repo, mock := newMockRepo(t)
	scheduled := time.Date(2026, 10, 23, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO meetings`).
		WithArgs(sqlmock.AnyArg(), `{"A","B"}`, scheduled, "inv-1").
		WillReturnRows(sqlmock.NewRows(meetingColumns).
			AddRow("generated", "{A,B}", scheduled, scheduled, "inv-1"))

	meeting, err := repo.Create(context.Background(), models.Meeting{
		Participants:          []string{"A", "B"},
		ScheduledFor:          scheduled,
		CreatedFromInvitation: "inv-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "generated", meeting.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMeetingError(t *testing.T) {
	repo, mock := newMockRepo(t)
	boom := errors.New("permission denied")

	mock.ExpectQuery(`INSERT INTO meetings`).WillReturnError(boom)

	_, err := repo.Create(context.Background(), models.Meeting{
		Participants:          []string{"A", "B"},
		CreatedFromInvitation: "inv-1",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "insert meeting")
}

func TestGetMeetingNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT (.+) FROM meetings WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(meetingColumns))

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListByInvitation(t *testing.T) {
	repo, mock := newMockRepo(t)
	ts := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM meetings WHERE created_from_invitation = \$1`).
		WithArgs("inv-1").
		WillReturnRows(sqlmock.NewRows(meetingColumns).
			AddRow("m-2", "{A,B}", ts.Add(7*24*time.Hour), ts.Add(time.Minute), "inv-1").
			AddRow("m-1", "{A,B}", ts.Add(7*24*time.Hour), ts, "inv-1"))

	meetings, err := repo.ListByInvitation(context.Background(), "inv-1")
	require.NoError(t, err)
	require.Len(t, meetings, 2)
	assert.Equal(t, "m-2", meetings[0].ID)
	assert.Equal(t, "m-1", meetings[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
