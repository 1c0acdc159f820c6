package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "task-assign.com/task-assign/internal/errors"
)

// ErrorHandler renders every failure as {"error": ..., "kind": ...}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, kind, message := describe(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Request().Method, c.Path(), err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	if werr := c.JSON(status, echo.Map{"error": message, "kind": kind}); werr != nil {
		log.Printf("failed to write error response: %v", werr)
	}
}

func describe(err error) (int, string, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		kind := "http"
		switch he.Code {
		case http.StatusNotFound:
			kind = string(apperrors.KindNotFound)
		case http.StatusTooManyRequests:
			kind = "rate_limited"
		case http.StatusBadRequest:
			kind = string(apperrors.KindValidation)
		}
		return he.Code, kind, fmt.Sprint(he.Message)
	}
	return apperrors.StatusCode(err), string(apperrors.KindOf(err)), apperrors.Message(err)
}
