package http

import (
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "task-assign.com/task-assign/internal/errors"
)

func idParam(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.Validation("%s must be a positive integer", name)
	}
	return id, nil
}
