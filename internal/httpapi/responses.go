package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"midtownwebserver/internal/domain"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: message}})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteDomainError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		WriteJSON(w, http.StatusBadRequest, errorEnvelope{Error: apiError{
			Code:    "validation_error",
			Message: "invalid request",
			Details: verr.Fields,
		}})
		return
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		WriteError(w, http.StatusBadRequest, "validation_error", "invalid request")
	case errors.Is(err, domain.ErrTokenInvalid):
		WriteError(w, http.StatusBadRequest, "token_invalid", "invalid or expired token")
	case errors.Is(err, domain.ErrCannotDeleteSelf):
		WriteError(w, http.StatusBadRequest, "cannot_delete_self", "you cannot delete your own account")
	case errors.Is(err, domain.ErrEmailTaken):
		WriteError(w, http.StatusConflict, "email_taken", "email already registered")
	case errors.Is(err, domain.ErrSlugTaken):
		WriteError(w, http.StatusConflict, "slug_taken", "slug already in use")
	case errors.Is(err, domain.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
	case errors.Is(err, domain.ErrUserDeactivated):
		WriteError(w, http.StatusForbidden, "user_disabled", "account is deactivated")
	case errors.Is(err, domain.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		WriteError(w, http.StatusForbidden, "forbidden", "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, domain.ErrEmailDelivery):
		WriteError(w, http.StatusInternalServerError, "email_delivery_failed", "email could not be sent")
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
