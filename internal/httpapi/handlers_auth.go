package httpapi

import (
	"net/http"
	"strings"
	"time"

	"midtownwebserver/internal/auth"
	"midtownwebserver/internal/domain"
	"midtownwebserver/internal/service"
)

type userResponse struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone,omitempty"`
	Role          string     `json:"role"`
	IsActive      bool       `json:"is_active"`
	EmailVerified bool       `json:"email_verified"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		Role:          string(u.Role),
		IsActive:      u.IsActive,
		EmailVerified: u.EmailVerified,
		LastLogin:     u.LastLogin,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func (a *api) writeSession(w http.ResponseWriter, status int, u domain.User, token string) {
	auth.SetSessionCookie(w, token, a.sessionTTL, a.cookieSecure)
	WriteJSON(w, status, sessionResponse{Token: token, User: toUserResponse(u)})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (a *api) handleAuthRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	fields := map[string]string{}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = service.NormalizeEmail(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" {
		fields["name"] = "required"
	}
	if !validEmail(req.Email) {
		fields["email"] = "must be a valid email"
	}
	if !validPhone(req.Phone) {
		fields["phone"] = "must be a valid phone number"
	}
	if len(req.Password) < minPasswordLength {
		fields["password"] = "must be at least 6 characters"
	}
	if len(fields) > 0 {
		WriteDomainError(w, domain.NewValidationError(fields))
		return
	}

	u, token, err := a.authSvc.Register(r.Context(), req.Name, req.Email, req.Phone, req.Password)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	a.writeSession(w, http.StatusCreated, u, token)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *api) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	req.Email = service.NormalizeEmail(req.Email)
	if req.Email == "" || req.Password == "" {
		WriteDomainError(w, domain.NewValidationError(map[string]string{
			"email":    "required",
			"password": "required",
		}))
		return
	}

	now := time.Now()
	ip := clientIP(r)
	if !a.limiter.Allow("login:ip:"+ip, now) || !a.limiter.Allow("login:email:"+req.Email, now) {
		WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many attempts")
		return
	}

	u, token, err := a.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	a.writeSession(w, http.StatusOK, u, token)
}

func (a *api) handleAuthLogout(w http.ResponseWriter, _ *http.Request) {
	auth.ClearSessionCookie(w, a.cookieSecure)
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleAuthMe(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}
	WriteJSON(w, http.StatusOK, toUserResponse(u))
}

type updateDetailsRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (a *api) handleAuthUpdateDetails(w http.ResponseWriter, r *http.Request) {
	cur, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req updateDetailsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	fields := map[string]string{}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = service.NormalizeEmail(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" {
		fields["name"] = "required"
	}
	if !validEmail(req.Email) {
		fields["email"] = "must be a valid email"
	}
	if !validPhone(req.Phone) {
		fields["phone"] = "must be a valid phone number"
	}
	if len(fields) > 0 {
		WriteDomainError(w, domain.NewValidationError(fields))
		return
	}

	u, err := a.authSvc.UpdateDetails(r.Context(), cur.ID, req.Name, req.Email, req.Phone)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toUserResponse(u))
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (a *api) handleAuthUpdatePassword(w http.ResponseWriter, r *http.Request) {
	cur, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req updatePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	if req.CurrentPassword == "" {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"current_password": "required"}))
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"new_password": "must be at least 6 characters"}))
		return
	}

	token, err := a.authSvc.UpdatePassword(r.Context(), cur.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	a.writeSession(w, http.StatusOK, cur, token)
}
