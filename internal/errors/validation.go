package errors

import "net/http"

var ErrTitleRequired = &Exception{
	Kind:       KindValidation,
	Message:    "title is required",
	StatusCode: http.StatusBadRequest,
}

var ErrAssigneesRequired = &Exception{
	Kind:       KindValidation,
	Message:    "at least one assignee is required",
	StatusCode: http.StatusBadRequest,
}

var ErrInvalidDueDate = &Exception{
	Kind:       KindValidation,
	Message:    "due_date must be a calendar date (YYYY-MM-DD)",
	StatusCode: http.StatusBadRequest,
}

var ErrInvalidJSON = &Exception{
	Kind:       KindValidation,
	Message:    "invalid JSON payload",
	StatusCode: http.StatusBadRequest,
}
