package services

import (
	"context"
	"log"
	"time"

	dto "task-assign.com/task-assign/internal/data_models"
	apperrors "task-assign.com/task-assign/internal/errors"
	model "task-assign.com/task-assign/internal/models"
	repository "task-assign.com/task-assign/internal/repositories"
)

// NameResolver maps user ids to display names; unknown ids are left out.
type NameResolver interface {
	Names(ctx context.Context, ids []uint64) map[uint64]string
}

// DueReminder is an open task whose reminder is due, with the users to remind.
type DueReminder struct {
	TaskID  uint64
	DueDate time.Time
	UserIDs []uint64
}

func (r DueReminder) cursor() *repository.ReminderCursor {
	return &repository.ReminderCursor{DueDate: r.DueDate, TaskID: r.TaskID}
}

// QueryService builds the read-only task lists shown to a user. On a storage
// failure every list method returns an empty, non-nil slice together with
// the error, so callers can render an empty state and still report the cause.
type QueryService struct {
	tasks  *repository.TaskRepository
	ledger *AssignmentService
	names  NameResolver
}

func NewQueryService(tasks *repository.TaskRepository, ledger *AssignmentService, names NameResolver) *QueryService {
	return &QueryService{
		tasks:  tasks,
		ledger: ledger,
		names:  names,
	}
}

// WorkQueue lists the user's open tasks, newest first.
func (s *QueryService) WorkQueue(ctx context.Context, userID uint64) ([]dto.TaskView, error) {
	return s.list(ctx, "work", repository.TaskFilter{UserID: userID}, repository.OrderNewest)
}

// UrgentQueue lists open urgent tasks by due date, undated last.
func (s *QueryService) UrgentQueue(ctx context.Context, userID uint64) ([]dto.TaskView, error) {
	return s.list(ctx, "urgent", repository.TaskFilter{UserID: userID, UrgentOnly: true}, repository.OrderDueDate)
}

// ReminderQueue lists open tasks with an active reminder by due date, undated last.
func (s *QueryService) ReminderQueue(ctx context.Context, userID uint64) ([]dto.TaskView, error) {
	return s.list(ctx, "reminder", repository.TaskFilter{UserID: userID, ReminderOnly: true}, repository.OrderDueDate)
}

// CompletedList lists the user's completed tasks, most recently completed first.
func (s *QueryService) CompletedList(ctx context.Context, userID uint64) ([]dto.TaskView, error) {
	return s.list(ctx, "completed", repository.TaskFilter{UserID: userID, Completed: true}, repository.OrderRecentlyCompleted)
}

func (s *QueryService) list(ctx context.Context, name string, f repository.TaskFilter, order repository.TaskOrder) ([]dto.TaskView, error) {
	tasks, err := s.tasks.ListAssigned(ctx, f, order)
	if err != nil {
		log.Printf("%s queue for user %d failed: %v", name, f.UserID, err)
		return []dto.TaskView{}, apperrors.Storage(err)
	}

	names := s.names.Names(ctx, referencedUsers(tasks))

	views := make([]dto.TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, dto.NewTaskView(t, names))
	}
	return views, nil
}

// DueReminders finds open tasks with an active reminder due on or before the
// calendar day of asOf (UTC), with their assignees. It returns at most limit
// reminders ordered by due date then id, starting after the cursor when one
// is given.
func (s *QueryService) DueReminders(ctx context.Context, asOf time.Time, after *repository.ReminderCursor, limit int) ([]DueReminder, error) {
	day := asOf.UTC()
	cutoff := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)

	tasks, err := s.tasks.ListDueReminders(ctx, cutoff, after, limit)
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	due := make([]DueReminder, 0, len(tasks))
	for _, t := range tasks {
		userIDs, err := s.ledger.AssignmentsFor(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		due = append(due, DueReminder{TaskID: t.ID, DueDate: *t.DueDate, UserIDs: userIDs})
	}
	return due, nil
}

func referencedUsers(tasks []model.Task) []uint64 {
	ids := make([]uint64, 0, len(tasks)*2)
	for _, t := range tasks {
		ids = append(ids, t.AssignedBy)
		if t.CompletedBy != nil {
			ids = append(ids, *t.CompletedBy)
		}
	}
	return uniqueIDs(ids)
}
