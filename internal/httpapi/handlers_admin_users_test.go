package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"midtownwebserver/internal/domain"
	"midtownwebserver/internal/service"
)

func newAdminTestAPI(users *stubAdminUsersStore) *api {
	return &api{
		adminSvc: &service.AdminService{Users: users},
	}
}

func asAdmin(req *http.Request, id string) *http.Request {
	u := domain.User{ID: id, Role: domain.RoleAdmin, IsActive: true}
	return req.WithContext(context.WithValue(req.Context(), authUserKey, u))
}

func TestAdminUsersDeleteSelf(t *testing.T) {
	users := &stubAdminUsersStore{
		t: t,
		getUserByIDFunc: func(_ context.Context, id string) (domain.User, error) {
			return domain.User{ID: id, Role: domain.RoleAdmin}, nil
		},
	}
	a := newAdminTestAPI(users)

	req := httptest.NewRequest(http.MethodDelete, "/v1/admin/users/admin-1", nil)
	req.SetPathValue("id", "admin-1")
	req = asAdmin(req, "admin-1")
	rr := httptest.NewRecorder()
	a.handleAdminUsersDelete(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rr.Code)
	}

	var envelope errorEnvelope
	if err := json.NewDecoder(rr.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != "cannot_delete_self" {
		t.Fatalf("unexpected error code: %s", envelope.Error.Code)
	}
}

func TestAdminUsersDelete(t *testing.T) {
	deleted := ""
	users := &stubAdminUsersStore{
		t: t,
		getUserByIDFunc: func(_ context.Context, id string) (domain.User, error) {
			return domain.User{ID: id}, nil
		},
		deleteUserFunc: func(_ context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	a := newAdminTestAPI(users)

	req := httptest.NewRequest(http.MethodDelete, "/v1/admin/users/user-2", nil)
	req.SetPathValue("id", "user-2")
	req = asAdmin(req, "admin-1")
	rr := httptest.NewRecorder()
	a.handleAdminUsersDelete(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if deleted != "user-2" {
		t.Fatalf("expected user-2 deleted, got %q", deleted)
	}
}

func TestAdminUsersListPagination(t *testing.T) {
	users := &stubAdminUsersStore{
		t: t,
		listUsersFunc: func(_ context.Context, limit, offset int) ([]domain.User, error) {
			if limit != 25 || offset != 50 {
				t.Fatalf("unexpected pagination: limit=%d offset=%d", limit, offset)
			}
			return []domain.User{{ID: "user-1"}}, nil
		},
	}
	a := newAdminTestAPI(users)

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/users?limit=25&offset=50", nil)
	req = asAdmin(req, "admin-1")
	rr := httptest.NewRecorder()
	a.handleAdminUsersList(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}

func TestAdminUsersUpdate(t *testing.T) {
	var got domain.UserUpdate
	users := &stubAdminUsersStore{
		t: t,
		adminUpdateUserFunc: func(_ context.Context, id string, upd domain.UserUpdate) (domain.User, error) {
			if id != "user-2" {
				t.Fatalf("unexpected id: %s", id)
			}
			got = upd
			return domain.User{ID: id, Role: domain.RoleModerator}, nil
		},
	}
	a := newAdminTestAPI(users)

	req := httptest.NewRequest(http.MethodPut, "/v1/admin/users/user-2",
		strings.NewReader(`{"role":"moderator","is_active":false}`))
	req.SetPathValue("id", "user-2")
	req = asAdmin(req, "admin-1")
	rr := httptest.NewRecorder()
	a.handleAdminUsersUpdate(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rr.Code, rr.Body.String())
	}
	if got.Role == nil || *got.Role != domain.RoleModerator {
		t.Fatalf("expected role update, got %+v", got.Role)
	}
	if got.IsActive == nil || *got.IsActive {
		t.Fatalf("expected is_active=false update")
	}
	if got.Name != nil || got.Email != nil || got.Phone != nil {
		t.Fatalf("untouched fields must stay nil")
	}
}

func TestAdminUsersUpdateRejectsUnknownRole(t *testing.T) {
	a := newAdminTestAPI(&stubAdminUsersStore{t: t})

	req := httptest.NewRequest(http.MethodPut, "/v1/admin/users/user-2",
		strings.NewReader(`{"role":"owner"}`))
	req.SetPathValue("id", "user-2")
	req = asAdmin(req, "admin-1")
	rr := httptest.NewRecorder()
	a.handleAdminUsersUpdate(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}

func TestAdminUsersStats(t *testing.T) {
	users := &stubAdminUsersStore{
		t: t,
		statsFunc: func(_ context.Context, _ time.Time) (domain.UserStats, error) {
			return domain.UserStats{
				Total:    10,
				Active:   8,
				Inactive: 2,
				NewToday: 1,
				ByRole: []domain.RoleStats{
					{Role: domain.RoleAdmin, Count: 1, Active: 1},
					{Role: domain.RoleUser, Count: 9, Active: 7, Inactive: 2},
				},
			}, nil
		},
	}
	a := newAdminTestAPI(users)

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/users/stats", nil)
	req = asAdmin(req, "admin-1")
	rr := httptest.NewRecorder()
	a.handleAdminUsersStats(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}

	var resp userStatsResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 10 || resp.NewToday != 1 || len(resp.ByRole) != 2 {
		t.Fatalf("unexpected stats: %+v", resp)
	}
}
