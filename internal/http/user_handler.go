package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	dto "task-assign.com/task-assign/internal/data_models"
	apperrors "task-assign.com/task-assign/internal/errors"
	"task-assign.com/task-assign/internal/http/validators"
	"task-assign.com/task-assign/internal/services"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Signup(c echo.Context) error {
	var req dto.SignupRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ErrInvalidJSON
	}
	if err := validators.ValidateSignupRequest(&req); err != nil {
		return err
	}

	user, err := h.users.Signup(c.Request().Context(), req.DisplayName, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, dto.NewUserView(*user))
}

func (h *UserHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ErrInvalidJSON
	}
	if err := validators.ValidateLoginRequest(&req); err != nil {
		return err
	}

	result, err := h.users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.LoginResponse{
		User:  dto.NewUserView(*result.User),
		Token: result.Token,
	})
}

// ListUsers supports ?exclude={id} so a client can hide the current user.
func (h *UserHandler) ListUsers(c echo.Context) error {
	var exclude uint64
	if raw := c.QueryParam("exclude"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return apperrors.Validation("exclude must be a user id")
		}
		exclude = id
	}

	users, err := h.users.ListUsers(c.Request().Context(), exclude)
	if err != nil {
		return err
	}

	views := make([]dto.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, dto.NewUserView(u))
	}
	return c.JSON(http.StatusOK, views)
}
