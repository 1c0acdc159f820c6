package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	model "task-assign.com/task-assign/internal/models"
)

type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) WithTx(tx *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: tx}
}

// CreateBatch inserts one row per user. userIDs must already be unique.
func (r *AssignmentRepository) CreateBatch(ctx context.Context, taskID uint64, userIDs []uint64, at time.Time) error {
	rows := make([]model.TaskAssignment, 0, len(userIDs))
	for _, userID := range userIDs {
		rows = append(rows, model.TaskAssignment{
			TaskID:     taskID,
			UserID:     userID,
			AssignedAt: at,
		})
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *AssignmentRepository) UserIDsForTask(ctx context.Context, taskID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&model.TaskAssignment{}).
		Where("task_id = ?", taskID).
		Order("user_id asc").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *AssignmentRepository) TaskIDsForUser(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&model.TaskAssignment{}).
		Where("user_id = ?", userID).
		Order("task_id asc").
		Pluck("task_id", &ids).Error
	return ids, err
}

func (r *AssignmentRepository) Exists(ctx context.Context, taskID, userID uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.TaskAssignment{}).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *AssignmentRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.TaskAssignment{}).Count(&n).Error
	return n, err
}
