package errors

import "net/http"

var ErrNotAssigned = &Exception{
	Kind:       KindForbidden,
	Message:    "user is not assigned to this task",
	StatusCode: http.StatusForbidden,
}
