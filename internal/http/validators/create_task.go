package validators

import (
	"strings"

	dto "task-assign.com/task-assign/internal/data_models"
	apperrors "task-assign.com/task-assign/internal/errors"
)

func ValidateCreateTaskRequest(r *dto.CreateTaskRequest) error {
	if strings.TrimSpace(r.Title) == "" {
		return apperrors.ErrTitleRequired
	}
	if len(r.AssignedTo) == 0 {
		return apperrors.ErrAssigneesRequired
	}
	if r.AssignedBy == 0 {
		return apperrors.Validation("assigned_by is required")
	}
	return nil
}
