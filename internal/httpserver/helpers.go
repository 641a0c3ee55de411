package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rx3lixir/ambient/internal/db"
	"github.com/rx3lixir/ambient/internal/dsp"
)

// APIError represents the structure of error responses
type APIError struct {
	Error string `json:"error"`
}

// respondJSON sends a JSON response with the given status code
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.log.Error("Failed to encode JSON response", "error", err)
		}
	}
}

// respondError sends an error response with appropriate status code
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, APIError{Error: message})
}

// handleError maps an error to its HTTP response
func (s *Server) handleError(w http.ResponseWriter, err error) {
	var validationErr *ValidationErr
	if errors.As(err, &validationErr) || errors.Is(err, dsp.ErrInvalidParameter) {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var notFoundErr *NotFoundErr
	if errors.As(err, &notFoundErr) || errors.Is(err, db.ErrAssetNotFound) {
		s.respondError(w, http.StatusNotFound, err.Error())
		return
	}

	var unauthorizedErr *UnauthorizedErr
	if errors.As(err, &unauthorizedErr) {
		s.respondError(w, http.StatusUnauthorized, unauthorizedErr.Error())
		return
	}

	var forbiddenErr *ForbiddenErr
	if errors.As(err, &forbiddenErr) {
		s.respondError(w, http.StatusForbidden, forbiddenErr.Error())
		return
	}

	var unavailableErr *UnavailableErr
	if errors.As(err, &unavailableErr) {
		s.respondError(w, http.StatusServiceUnavailable, unavailableErr.Error())
		return
	}

	// Default to 500 for unknown errors
	s.log.Error("Internal server error", "error", err)
	s.respondError(w, http.StatusInternalServerError, "An unexpected error occurred")
}

type ValidationErr struct {
	Message string
}

func (e *ValidationErr) Error() string {
	return e.Message
}

func NewValidationError(message string) error {
	return &ValidationErr{
		Message: message,
	}
}

type NotFoundErr struct {
	Message string
}

func (e *NotFoundErr) Error() string {
	return e.Message
}

func NewNotFoundError(message string) error {
	return &NotFoundErr{
		Message: message,
	}
}

type UnauthorizedErr struct {
	Message string
}

func (e *UnauthorizedErr) Error() string {
	return e.Message
}

func NewUnauthorizedError(message string) error {
	return &UnauthorizedErr{
		Message: message,
	}
}

type ForbiddenErr struct {
	Message string
}

func (e *ForbiddenErr) Error() string {
	return e.Message
}

func NewForbiddenError(message string) error {
	return &ForbiddenErr{
		Message: message,
	}
}

type UnavailableErr struct {
	Message string
}

func (e *UnavailableErr) Error() string {
	return e.Message
}

func NewUnavailableError(message string) error {
	return &UnavailableErr{
		Message: message,
	}
}
