package errors

import "net/http"

var ErrTaskAlreadyCompleted = &Exception{
	Kind:       KindState,
	Message:    "task already completed",
	StatusCode: http.StatusConflict,
}
