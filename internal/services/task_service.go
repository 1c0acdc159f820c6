package services

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	apperrors "task-assign.com/task-assign/internal/errors"
	"task-assign.com/task-assign/internal/events"
	"task-assign.com/task-assign/internal/metrics"
	model "task-assign.com/task-assign/internal/models"
	repository "task-assign.com/task-assign/internal/repositories"
)

// EventSink receives lifecycle events after a write has committed.
type EventSink interface {
	Enqueue(e events.Event) bool
}

type discardSink struct{}

func (discardSink) Enqueue(events.Event) bool { return true }

type CreateTaskInput struct {
	Title       string
	Description string
	AssignedBy  uint64
	AssignedTo  []uint64
	DueDate     *string
	HasReminder bool
	IsUrgent    bool
}

// TaskService owns the task lifecycle: creation with its assignments,
// completion, and reminder suppression.
type TaskService struct {
	db     *gorm.DB
	tasks  *repository.TaskRepository
	users  *repository.UserRepository
	ledger *AssignmentService
	events EventSink
}

func NewTaskService(
	db *gorm.DB,
	tasks *repository.TaskRepository,
	users *repository.UserRepository,
	ledger *AssignmentService,
	sink EventSink,
) *TaskService {
	if sink == nil {
		sink = discardSink{}
	}
	return &TaskService{
		db:     db,
		tasks:  tasks,
		users:  users,
		ledger: ledger,
		events: sink,
	}
}

// CreateTask inserts the task and its assignment rows in one transaction.
// It returns the task and the de-duplicated assignee ids.
func (s *TaskService) CreateTask(ctx context.Context, in CreateTaskInput) (*model.Task, []uint64, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, nil, err
	}
	if len(uniqueIDs(in.AssignedTo)) == 0 {
		return nil, nil, apperrors.ErrAssigneesRequired
	}
	dueDate, err := parseDueDate(in.DueDate)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	task := &model.Task{
		Title:       title,
		Description: in.Description,
		AssignedBy:  in.AssignedBy,
		DueDate:     dueDate,
		HasReminder: in.HasReminder,
		IsUrgent:    in.IsUrgent,
		CreatedAt:   now,
	}

	var assignees []uint64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.users.WithTx(tx).FindByID(ctx, in.AssignedBy); err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				return apperrors.Validation("assigned_by %d does not resolve to a known user", in.AssignedBy)
			}
			return err
		}

		if err := s.tasks.WithTx(tx).Create(ctx, task); err != nil {
			return err
		}

		assignees, err = s.ledger.WithTx(tx).Assign(ctx, task.ID, in.AssignedTo, now)
		return err
	})
	if err != nil {
		return nil, nil, apperrors.Storage(err)
	}

	metrics.TasksCreated.Inc()
	log.Printf("task %d created by user %d for %v", task.ID, task.AssignedBy, assignees)
	s.publish(events.New(events.TaskCreated, task.ID, task.AssignedBy))

	return task, assignees, nil
}

// CompleteTask is a compare-and-set on completed=false: of two racing
// completions exactly one succeeds, the other gets ErrTaskAlreadyCompleted.
func (s *TaskService) CompleteTask(ctx context.Context, taskID, userID uint64) error {
	if err := s.authorize(ctx, s.db, taskID, userID); err != nil {
		return err
	}

	ok, err := s.tasks.MarkCompleted(ctx, taskID, userID, time.Now().UTC())
	if err != nil {
		return apperrors.Storage(err)
	}
	if !ok {
		metrics.CompletionConflicts.Inc()
		return apperrors.ErrTaskAlreadyCompleted
	}

	metrics.TasksCompleted.Inc()
	log.Printf("task %d completed by user %d", taskID, userID)
	s.publish(events.New(events.TaskCompleted, taskID, userID))
	return nil
}

// StopReminder clears has_reminder and, when alsoComplete is set, completes
// the task in the same transaction. It does not fail on a task that is
// already completed; the original completion fields are kept. Events are
// only emitted for the fields that actually changed.
func (s *TaskService) StopReminder(ctx context.Context, taskID, userID uint64, alsoComplete bool) error {
	clearedNow, completedNow := false, false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.authorize(ctx, tx, taskID, userID); err != nil {
			return err
		}

		tasks := s.tasks.WithTx(tx)
		cleared, err := tasks.ClearReminder(ctx, taskID)
		if err != nil {
			return err
		}
		clearedNow = cleared

		if alsoComplete {
			ok, err := tasks.MarkCompleted(ctx, taskID, userID, time.Now().UTC())
			if err != nil {
				return err
			}
			completedNow = ok
		}
		return nil
	})
	if err != nil {
		return apperrors.Storage(err)
	}

	if clearedNow {
		metrics.RemindersStopped.Inc()
		s.publish(events.New(events.ReminderStopped, taskID, userID))
	}
	if completedNow {
		metrics.TasksCompleted.Inc()
		log.Printf("task %d completed by user %d while stopping reminder", taskID, userID)
		s.publish(events.New(events.TaskCompleted, taskID, userID))
	}
	return nil
}

// authorize checks that the task and the acting user exist and that the user
// is one of the task's assignees.
func (s *TaskService) authorize(ctx context.Context, db *gorm.DB, taskID, userID uint64) error {
	if _, err := s.tasks.WithTx(db).FindByID(ctx, taskID); err != nil {
		return apperrors.Storage(err)
	}
	if _, err := s.users.WithTx(db).FindByID(ctx, userID); err != nil {
		return apperrors.Storage(err)
	}

	assigned, err := s.ledger.WithTx(db).IsAssigned(ctx, taskID, userID)
	if err != nil {
		return err
	}
	if !assigned {
		return apperrors.ErrNotAssigned
	}
	return nil
}

func (s *TaskService) publish(e events.Event) {
	if !s.events.Enqueue(e) {
		log.Printf("event %s for task %d dropped: dispatch queue full", e.Type, e.TaskID)
	}
}
