package httpapi

import (
	"net/http"
	"strconv"

	"midtownwebserver/internal/domain"
	"midtownwebserver/internal/service"
)

const defaultUserPageSize = 50

func (a *api) handleAdminUsersList(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultUserPageSize)
	if limit < 1 || limit > 200 {
		limit = defaultUserPageSize
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	users, err := a.adminSvc.ListUsers(r.Context(), limit, offset)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	WriteJSON(w, http.StatusOK, map[string]any{"count": len(out), "users": out})
}

func (a *api) handleAdminUsersGet(w http.ResponseWriter, r *http.Request) {
	u, err := a.adminSvc.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toUserResponse(u))
}

type adminUpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

func (a *api) handleAdminUsersUpdate(w http.ResponseWriter, r *http.Request) {
	var req adminUpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	upd := domain.UserUpdate{
		Name:     req.Name,
		Phone:    req.Phone,
		IsActive: req.IsActive,
	}
	if req.Email != nil {
		email := service.NormalizeEmail(*req.Email)
		if !validEmail(email) {
			WriteDomainError(w, domain.NewValidationError(map[string]string{"email": "must be a valid email"}))
			return
		}
		upd.Email = &email
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		upd.Role = &role
	}

	u, err := a.adminSvc.UpdateUser(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toUserResponse(u))
}

func (a *api) handleAdminUsersToggleActive(w http.ResponseWriter, r *http.Request) {
	u, err := a.adminSvc.ToggleUserActive(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toUserResponse(u))
}

func (a *api) handleAdminUsersDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	if err := a.adminSvc.DeleteUser(r.Context(), actor.ID, r.PathValue("id")); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type roleStatsResponse struct {
	Role     string `json:"role"`
	Count    int64  `json:"count"`
	Active   int64  `json:"active"`
	Inactive int64  `json:"inactive"`
}

type userStatsResponse struct {
	Total    int64               `json:"total"`
	Active   int64               `json:"active"`
	Inactive int64               `json:"inactive"`
	NewToday int64               `json:"new_today"`
	ByRole   []roleStatsResponse `json:"by_role"`
}

func (a *api) handleAdminUsersStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.adminSvc.UserStats(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	resp := userStatsResponse{
		Total:    stats.Total,
		Active:   stats.Active,
		Inactive: stats.Inactive,
		NewToday: stats.NewToday,
		ByRole:   make([]roleStatsResponse, 0, len(stats.ByRole)),
	}
	for _, rs := range stats.ByRole {
		resp.ByRole = append(resp.ByRole, roleStatsResponse{
			Role:     string(rs.Role),
			Count:    rs.Count,
			Active:   rs.Active,
			Inactive: rs.Inactive,
		})
	}
	WriteJSON(w, http.StatusOK, resp)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
