package validators

import (
	"strings"

	dto "task-assign.com/task-assign/internal/data_models"
	apperrors "task-assign.com/task-assign/internal/errors"
)

func ValidateSignupRequest(r *dto.SignupRequest) error {
	if strings.TrimSpace(r.DisplayName) == "" {
		return apperrors.Validation("display_name is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		return apperrors.Validation("email is required")
	}
	if strings.TrimSpace(r.Password) == "" {
		return apperrors.Validation("password is required")
	}
	return nil
}

func ValidateLoginRequest(r *dto.LoginRequest) error {
	if strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return apperrors.Validation("email and password are required")
	}
	return nil
}
