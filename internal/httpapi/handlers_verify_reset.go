package httpapi

import (
	"net/http"
	"strings"
	"time"

	"midtownwebserver/internal/domain"
	"midtownwebserver/internal/service"
)

func (a *api) handleAuthVerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.PathValue("token"))
	if token == "" {
		WriteDomainError(w, domain.ErrTokenInvalid)
		return
	}

	u, err := a.authSvc.VerifyEmail(r.Context(), token)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toUserResponse(u))
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (a *api) handleAuthForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	email := service.NormalizeEmail(req.Email)
	if !validEmail(email) {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"email": "must be a valid email"}))
		return
	}

	now := time.Now()
	ip := clientIP(r)
	if !a.limiter.Allow("forgot:ip:"+ip, now) || !a.limiter.Allow("forgot:email:"+email, now) {
		WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many attempts")
		return
	}

	if err := a.authSvc.ForgotPassword(r.Context(), email); err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"message": "reset email sent"})
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

func (a *api) handleAuthResetPassword(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.PathValue("token"))
	if token == "" {
		WriteDomainError(w, domain.ErrTokenInvalid)
		return
	}

	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}
	if len(req.Password) < minPasswordLength {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"password": "must be at least 6 characters"}))
		return
	}

	u, sessionToken, err := a.authSvc.ResetPassword(r.Context(), token, req.Password)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	a.writeSession(w, http.StatusOK, u, sessionToken)
}
