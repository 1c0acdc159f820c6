package middleware

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"task-assign.com/task-assign/internal/auth"
	apperrors "task-assign.com/task-assign/internal/errors"
)

const actingUserKey = "acting_user_id"

// ActingUser reads a bearer token, when present, and binds its user id to
// the request. With required set, requests without a valid token are
// rejected. A :userId route parameter must match the token's user.
func ActingUser(tokens *auth.TokenManager, required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" || tokens == nil {
				if required {
					return apperrors.ErrInvalidToken
				}
				return next(c)
			}

			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				return apperrors.ErrInvalidToken
			}
			userID, err := tokens.Parse(strings.TrimSpace(raw))
			if err != nil {
				return apperrors.ErrInvalidToken
			}
			c.Set(actingUserKey, userID)

			if param := c.Param("userId"); param != "" && param != strconv.FormatUint(userID, 10) {
				return apperrors.Forbidden("token does not belong to user %s", param)
			}

			return next(c)
		}
	}
}

func ActingUserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(actingUserKey).(uint64)
	return id, ok
}

// RequireActingUser fails when a token was presented for someone other than
// userID. Requests without a token pass; ActingUser already enforced whether
// one was needed.
func RequireActingUser(c echo.Context, userID uint64) error {
	if id, ok := ActingUserID(c); ok && id != userID {
		return apperrors.Forbidden("token does not belong to user %d", userID)
	}
	return nil
}
