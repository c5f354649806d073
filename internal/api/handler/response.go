package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"collection-engine/internal/api/handler/dto"
	"collection-engine/internal/domain/actor"
	"collection-engine/internal/pkg/apperrors"
)

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	// Row cells keep their literal digits instead of becoming float64.
	decoder.UseNumber()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

// statusFor maps an error chain onto an HTTP status and a stable error code.
func statusFor(err error) (int, string) {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, apperrors.ErrUnsupportedFileType):
		return http.StatusUnsupportedMediaType, "UNSUPPORTED_FILE_TYPE"
	case errors.Is(err, apperrors.ErrEmptyFile):
		return http.StatusUnprocessableEntity, "EMPTY_FILE"
	case errors.Is(err, apperrors.ErrMalformedFile):
		return http.StatusUnprocessableEntity, "MALFORMED_FILE"
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_FAILED"
	case errors.Is(err, apperrors.ErrInvalidArgument):
		return http.StatusBadRequest, "INVALID_ARGUMENT"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

func respondError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	message, field := err.Error(), ""

	var validationError *apperrors.ValidationError
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &validationError):
		message, field = validationError.Message, validationError.Field
	case status == http.StatusNotFound:
		message = "Resource not found."
	case status == http.StatusInternalServerError:
		if errors.As(err, &appErr) {
			message = appErr.Message
		} else {
			message = "An unexpected error occurred."
		}
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	respondJSON(w, status, dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Code:    code,
			Message: message,
			Field:   field,
		},
	})
}

// actorFrom returns the caller stored by the auth middleware. A missing actor is the zero
// value, which the services reject.
func actorFrom(r *http.Request) actor.Actor {
	who, _ := actor.FromContext(r.Context())
	return who
}
