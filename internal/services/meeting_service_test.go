package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "github.com/workhivehq/workhive/pkg/errors"
)

func newMeetingService(t *testing.T, db *gorm.DB, clock func() time.Time) *MeetingService {
	t.Helper()

	projects := newProjectService(t, db)
	opts := []MeetingOption{}
	if clock != nil {
		opts = append(opts, WithMeetingClock(clock))
	}
	meetings, err := NewMeetingService(db, projects, opts...)
	require.NoError(t, err)
	return meetings
}

func TestScheduleMeetingValidatesWindow(t *testing.T) {
	db := newTestDB(t)
	meetings := newMeetingService(t, db, nil)

	owner := seedOwner(t, db, "acme-owner", "Acme")
	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	meeting, err := meetings.Schedule(context.Background(), ScheduleMeetingInput{
		OrganizerID: owner.ID,
		Title:       "Weekly sync",
		StartsAt:    start,
		EndsAt:      start.Add(time.Hour),
		Agenda:      map[string]any{"items": []string{"roadmap", "hiring"}},
	})
	require.NoError(t, err)
	require.Nil(t, meeting.ProjectID)
	require.NotEmpty(t, meeting.Agenda)

	_, err = meetings.Schedule(context.Background(), ScheduleMeetingInput{
		OrganizerID: owner.ID,
		Title:       "Backwards",
		StartsAt:    start,
		EndsAt:      start.Add(-time.Hour),
	})
	requireAppErrorCode(t, err, apperrors.ErrBadRequest.Code)
}

func TestScheduleProjectMeetingRequiresParticipation(t *testing.T) {
	db := newTestDB(t)
	meetings := newMeetingService(t, db, nil)

	owner := seedOwner(t, db, "acme-owner", "Acme")
	member := seedMember(t, db, "worker")
	outsider := seedMember(t, db, "outsider")
	affiliate(t, db, member, owner)

	project := seedProject(t, db, owner, "P1")
	seedProjectMember(t, db, project, member)

	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	meeting, err := meetings.Schedule(context.Background(), ScheduleMeetingInput{
		OrganizerID: member.ID,
		ProjectID:   &project.ID,
		Title:       "Standup",
		StartsAt:    start,
		EndsAt:      start.Add(15 * time.Minute),
	})
	require.NoError(t, err)
	require.NotNil(t, meeting.ProjectID)

	_, err = meetings.Schedule(context.Background(), ScheduleMeetingInput{
		OrganizerID: outsider.ID,
		ProjectID:   &project.ID,
		Title:       "Crash the party",
		StartsAt:    start,
		EndsAt:      start.Add(time.Hour),
	})
	requireAppErrorCode(t, err, apperrors.ErrForbidden.Code)
}

func TestCancelMeeting(t *testing.T) {
	db := newTestDB(t)
	meetings := newMeetingService(t, db, nil)

	owner := seedOwner(t, db, "acme-owner", "Acme")
	other := seedMember(t, db, "other")
	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	meeting, err := meetings.Schedule(context.Background(), ScheduleMeetingInput{
		OrganizerID: owner.ID,
		Title:       "Weekly sync",
		StartsAt:    start,
		EndsAt:      start.Add(time.Hour),
	})
	require.NoError(t, err)

	err = meetings.Cancel(context.Background(), other.ID, meeting.ID)
	requireAppErrorCode(t, err, apperrors.ErrForbidden.Code)

	require.NoError(t, meetings.Cancel(context.Background(), owner.ID, meeting.ID))
	err = meetings.Cancel(context.Background(), owner.ID, meeting.ID)
	requireAppErrorCode(t, err, apperrors.ErrInvalidState.Code)
}

func TestListUpcomingForOrganizerSkipsPastAndCanceled(t *testing.T) {
	db := newTestDB(t)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	meetings := newMeetingService(t, db, func() time.Time { return current })

	owner := seedOwner(t, db, "acme-owner", "Acme")

	past, err := meetings.Schedule(context.Background(), ScheduleMeetingInput{
		OrganizerID: owner.ID,
		Title:       "Past",
		StartsAt:    current.Add(-2 * time.Hour),
		EndsAt:      current.Add(-time.Hour),
	})
	require.NoError(t, err)
	_ = past

	canceled, err := meetings.Schedule(context.Background(), ScheduleMeetingInput{
		OrganizerID: owner.ID,
		Title:       "Canceled",
		StartsAt:    current.Add(time.Hour),
		EndsAt:      current.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, meetings.Cancel(context.Background(), owner.ID, canceled.ID))

	upcoming, err := meetings.Schedule(context.Background(), ScheduleMeetingInput{
		OrganizerID: owner.ID,
		Title:       "Upcoming",
		StartsAt:    current.Add(3 * time.Hour),
		EndsAt:      current.Add(4 * time.Hour),
	})
	require.NoError(t, err)

	listed, err := meetings.ListUpcomingForOrganizer(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, upcoming.ID, listed[0].ID)
}
