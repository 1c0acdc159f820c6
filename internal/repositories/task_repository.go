package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "task-assign.com/task-assign/internal/errors"
	model "task-assign.com/task-assign/internal/models"
)

type TaskRepository struct {
	db *gorm.DB
}

// TaskFilter narrows ListAssigned to one user's tasks in one completion state.
type TaskFilter struct {
	UserID       uint64
	Completed    bool
	UrgentOnly   bool
	ReminderOnly bool
}

type TaskOrder int

const (
	// OrderNewest sorts by created_at descending.
	OrderNewest TaskOrder = iota
	// OrderDueDate sorts by due_date ascending with undated tasks last,
	// then created_at descending.
	OrderDueDate
	// OrderRecentlyCompleted sorts by completed_at descending.
	OrderRecentlyCompleted
)

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) WithTx(tx *gorm.DB) *TaskRepository {
	return &TaskRepository{db: tx}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *TaskRepository) FindByID(ctx context.Context, id uint64) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// MarkCompleted sets the completion fields only while the task is still open.
// It reports false when no open task with that id exists; the caller decides
// whether that means "unknown" or "already completed".
func (r *TaskRepository) MarkCompleted(ctx context.Context, id, userID uint64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND completed = ?", id, false).
		Updates(map[string]interface{}{
			"completed":    true,
			"completed_by": userID,
			"completed_at": at,
		})

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ClearReminder reports whether the reminder was still active.
func (r *TaskRepository) ClearReminder(ctx context.Context, id uint64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND has_reminder = ?", id, true).
		Update("has_reminder", false)

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *TaskRepository) ListAssigned(ctx context.Context, f TaskFilter, order TaskOrder) ([]model.Task, error) {
	query := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("tasks.*").
		Joins("JOIN task_assignments ON task_assignments.task_id = tasks.id").
		Where("task_assignments.user_id = ? AND tasks.completed = ?", f.UserID, f.Completed)

	if f.UrgentOnly {
		query = query.Where("tasks.is_urgent = ?", true)
	}
	if f.ReminderOnly {
		query = query.Where("tasks.has_reminder = ?", true)
	}

	switch order {
	case OrderDueDate:
		query = query.Order("tasks.due_date IS NULL").
			Order("tasks.due_date ASC").
			Order("tasks.created_at DESC")
	case OrderRecentlyCompleted:
		query = query.Order("tasks.completed_at DESC")
	default:
		query = query.Order("tasks.created_at DESC")
	}

	var tasks []model.Task
	if err := query.Order("tasks.id DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ReminderCursor is the (due_date, id) of the last row of a ListDueReminders page.
type ReminderCursor struct {
	DueDate time.Time
	TaskID  uint64
}

// ListDueReminders returns open tasks with an active reminder whose due date
// falls before the given cutoff, oldest due date first. A non-nil cursor
// continues after the row it names.
func (r *TaskRepository) ListDueReminders(ctx context.Context, before time.Time, after *ReminderCursor, limit int) ([]model.Task, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}

	query := r.db.WithContext(ctx).
		Where("completed = ? AND has_reminder = ? AND due_date IS NOT NULL AND due_date < ?", false, true, before)
	if after != nil {
		query = query.Where("(due_date > ? OR (due_date = ? AND id > ?))", after.DueDate, after.DueDate, after.TaskID)
	}
	query = query.Order("due_date asc").Order("id asc").Limit(limit)

	var tasks []model.Task

	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).Count(&n).Error
	return n, err
}
