package errors

import "net/http"

var ErrInvalidCredentials = &Exception{
	Kind:       KindUnauthorized,
	Message:    "invalid email or password",
	StatusCode: http.StatusUnauthorized,
}

var ErrEmailTaken = &Exception{
	Kind:       KindConflict,
	Message:    "email already registered",
	StatusCode: http.StatusConflict,
}

var ErrInvalidToken = &Exception{
	Kind:       KindUnauthorized,
	Message:    "missing or invalid bearer token",
	StatusCode: http.StatusUnauthorized,
}
