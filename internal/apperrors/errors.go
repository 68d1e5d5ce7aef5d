package apperrors

import (
	"errors"
	"net/http"
)

// Sentinel errors for every failure the API reports deliberately. Services
// wrap these with %w so handlers can map them with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrUsernameTaken      = errors.New("username already in use")
	ErrEmailTaken         = errors.New("email already in use")
	ErrForbidden          = errors.New("forbidden")
	ErrSelfRequest        = errors.New("cannot send a friend request to yourself")
	ErrAlreadyRequested   = errors.New("friend request already sent")
	ErrAlreadyFriends     = errors.New("already friends")
	ErrNoSuchRequest      = errors.New("no pending friend request")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTransient          = errors.New("storage temporarily unavailable")
)

// Status returns the HTTP status code for err.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUsernameTaken), errors.Is(err, ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrSelfRequest),
		errors.Is(err, ErrAlreadyRequested),
		errors.Is(err, ErrAlreadyFriends),
		errors.Is(err, ErrNoSuchRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrTransient):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
