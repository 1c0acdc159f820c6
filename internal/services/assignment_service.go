package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	apperrors "task-assign.com/task-assign/internal/errors"
	repository "task-assign.com/task-assign/internal/repositories"
)

// AssignmentService is the ledger of which users a task was assigned to.
// Rows are only ever added, and only together with the task they belong to.
type AssignmentService struct {
	repo  *repository.AssignmentRepository
	users *repository.UserRepository
}

func NewAssignmentService(repo *repository.AssignmentRepository, users *repository.UserRepository) *AssignmentService {
	return &AssignmentService{
		repo:  repo,
		users: users,
	}
}

func (s *AssignmentService) WithTx(tx *gorm.DB) *AssignmentService {
	return &AssignmentService{
		repo:  s.repo.WithTx(tx),
		users: s.users.WithTx(tx),
	}
}

// Assign records one row per distinct user. Callers run it on a transaction
// scoped service (WithTx) so a failure here rolls back the task as well.
func (s *AssignmentService) Assign(ctx context.Context, taskID uint64, userIDs []uint64, at time.Time) ([]uint64, error) {
	ids := uniqueIDs(userIDs)
	if len(ids) == 0 {
		return nil, apperrors.ErrAssigneesRequired
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(users) != len(ids) {
		known := make(map[uint64]struct{}, len(users))
		for _, u := range users {
			known[u.ID] = struct{}{}
		}
		for _, id := range ids {
			if _, ok := known[id]; !ok {
				return nil, apperrors.Validation("assignee %d does not resolve to a known user", id)
			}
		}
	}

	if err := s.repo.CreateBatch(ctx, taskID, ids, at); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *AssignmentService) AssignmentsFor(ctx context.Context, taskID uint64) ([]uint64, error) {
	ids, err := s.repo.UserIDsForTask(ctx, taskID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return ids, nil
}

func (s *AssignmentService) TasksFor(ctx context.Context, userID uint64) ([]uint64, error) {
	ids, err := s.repo.TaskIDsForUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return ids, nil
}

func (s *AssignmentService) IsAssigned(ctx context.Context, taskID, userID uint64) (bool, error) {
	ok, err := s.repo.Exists(ctx, taskID, userID)
	if err != nil {
		return false, apperrors.Storage(err)
	}
	return ok, nil
}
