package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/workhivehq/workhive/internal/models"
	apperrors "github.com/workhivehq/workhive/pkg/errors"
)

func newTaskService(t *testing.T, db *gorm.DB) *TaskService {
	t.Helper()

	projects := newProjectService(t, db)
	audit, err := NewAuditService(db)
	require.NoError(t, err)
	tasks, err := NewTaskService(db, projects, audit)
	require.NoError(t, err)
	return tasks
}

func TestCreateTaskAndStatusFlow(t *testing.T) {
	db := newTestDB(t)
	tasks := newTaskService(t, db)

	owner := seedOwner(t, db, "acme-owner", "Acme")
	project := seedProject(t, db, owner, "P1")

	task, err := tasks.Create(context.Background(), CreateTaskInput{
		ProjectID: project.ID,
		Title:     "Write the launch checklist",
	})
	require.NoError(t, err)
	require.Equal(t, models.TaskStatusTodo, task.Status)
	require.Nil(t, task.AssigneeID)

	task, err = tasks.UpdateStatus(context.Background(), task.ID, models.TaskStatusInProgress)
	require.NoError(t, err)
	require.Equal(t, models.TaskStatusInProgress, task.Status)

	_, err = tasks.UpdateStatus(context.Background(), task.ID, "archived")
	requireAppErrorCode(t, err, apperrors.ErrBadRequest.Code)
}

func TestCreateTaskRejectsArchivedProjects(t *testing.T) {
	db := newTestDB(t)
	tasks := newTaskService(t, db)

	owner := seedOwner(t, db, "acme-owner", "Acme")
	project := seedProject(t, db, owner, "P1")
	require.NoError(t, db.Model(project).Update("is_archived", true).Error)

	_, err := tasks.Create(context.Background(), CreateTaskInput{
		ProjectID: project.ID,
		Title:     "Too late",
	})
	requireAppErrorCode(t, err, apperrors.ErrInvalidState.Code)
}

func TestAssignTaskRequiresProjectParticipation(t *testing.T) {
	db := newTestDB(t)
	tasks := newTaskService(t, db)

	owner := seedOwner(t, db, "acme-owner", "Acme")
	member := seedMember(t, db, "worker")
	outsider := seedMember(t, db, "outsider")
	affiliate(t, db, member, owner)

	project := seedProject(t, db, owner, "P1")
	seedProjectMember(t, db, project, member)

	task, err := tasks.Create(context.Background(), CreateTaskInput{
		ProjectID: project.ID,
		Title:     "Review designs",
	})
	require.NoError(t, err)

	task, err = tasks.Assign(context.Background(), task.ID, member.ID)
	require.NoError(t, err)
	require.NotNil(t, task.AssigneeID)
	require.Equal(t, member.ID, *task.AssigneeID)

	// The project owner counts as a participant.
	task, err = tasks.Assign(context.Background(), task.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, owner.ID, *task.AssigneeID)

	_, err = tasks.Assign(context.Background(), task.ID, outsider.ID)
	requireAppErrorCode(t, err, ErrAssigneeNotParticipant.Code)

	task, err = tasks.Assign(context.Background(), task.ID, "")
	require.NoError(t, err)
	require.Nil(t, task.AssigneeID)
}

func TestListTasksByProjectWithStatusFilter(t *testing.T) {
	db := newTestDB(t)
	tasks := newTaskService(t, db)

	owner := seedOwner(t, db, "acme-owner", "Acme")
	project := seedProject(t, db, owner, "P1")

	first, err := tasks.Create(context.Background(), CreateTaskInput{ProjectID: project.ID, Title: "one"})
	require.NoError(t, err)
	_, err = tasks.Create(context.Background(), CreateTaskInput{ProjectID: project.ID, Title: "two"})
	require.NoError(t, err)

	_, err = tasks.UpdateStatus(context.Background(), first.ID, models.TaskStatusDone)
	require.NoError(t, err)

	all, err := tasks.ListByProject(context.Background(), project.ID, "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	done, err := tasks.ListByProject(context.Background(), project.ID, models.TaskStatusDone)
	require.NoError(t, err)
	require.Len(t, done, 1)
	require.Equal(t, first.ID, done[0].ID)
}

func TestDeleteTask(t *testing.T) {
	db := newTestDB(t)
	tasks := newTaskService(t, db)

	owner := seedOwner(t, db, "acme-owner", "Acme")
	project := seedProject(t, db, owner, "P1")

	task, err := tasks.Create(context.Background(), CreateTaskInput{ProjectID: project.ID, Title: "ephemeral"})
	require.NoError(t, err)

	require.NoError(t, tasks.Delete(context.Background(), task.ID))
	err = tasks.Delete(context.Background(), task.ID)
	requireAppErrorCode(t, err, ErrTaskNotFound.Code)
}
